package stubserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/molinosatl/invdash/internal/models"
)

const productoSelect = `
	SELECT p.id, p.marca, p.referencia, p.serial, p.procesador, p.ram, p.disco_duro,
	       p.tipo_producto_id, COALESCE(t.nombre, ''),
	       p.is_active, p.fecha_retiro
	FROM productos p
	LEFT JOIN catalog_items t ON t.id = p.tipo_producto_id AND t.tipo = 'equipo_tipos'`

func scanProducto(row interface{ Scan(...any) error }) (models.Producto, error) {
	var p models.Producto
	err := row.Scan(&p.ID, &p.Marca, &p.Referencia, &p.Serial, &p.Procesador, &p.Ram, &p.DiscoDuro,
		&p.TipoProductoID, &p.TipoProducto,
		&p.IsActive, &p.FechaRetiro)
	return p, err
}

func (s *Server) handleListProductos(w http.ResponseWriter, r *http.Request) {
	query := productoSelect
	var args []any
	if search := r.URL.Query().Get("search"); search != "" {
		query += ` WHERE p.marca LIKE ? OR p.referencia LIKE ? OR p.serial LIKE ?`
		term := "%" + search + "%"
		args = append(args, term, term, term)
	}
	query += ` ORDER BY p.marca, p.referencia`

	rows, err := s.DB.Query(query, args...)
	if err != nil {
		s.internalError(w, err)
		return
	}
	defer rows.Close()

	productos := []models.Producto{}
	for rows.Next() {
		p, err := scanProducto(rows)
		if err != nil {
			s.internalError(w, err)
			return
		}
		productos = append(productos, p)
	}
	writeJSON(w, http.StatusOK, productos)
}

func (s *Server) handleGetProducto(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	p, err := scanProducto(s.DB.QueryRow(productoSelect+` WHERE p.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		writeDetail(w, http.StatusNotFound, "Recurso no encontrado")
		return
	}
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleCreateProducto(w http.ResponseWriter, r *http.Request) {
	var in models.ProductoInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusBadRequest, "Cuerpo de la petición inválido")
		return
	}
	if err := models.Validar(in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	res, err := s.DB.Exec(`INSERT INTO productos (marca, referencia, serial, procesador, ram, disco_duro, tipo_producto_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.Marca, in.Referencia, in.Serial, in.Procesador, in.Ram, in.DiscoDuro, in.TipoProductoID)
	if err != nil {
		s.internalError(w, err)
		return
	}
	id, _ := res.LastInsertId()
	p, err := scanProducto(s.DB.QueryRow(productoSelect+` WHERE p.id = ?`, id))
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleUpdateProducto(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var in models.ProductoInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusBadRequest, "Cuerpo de la petición inválido")
		return
	}
	if err := models.Validar(in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	res, err := s.DB.Exec(`UPDATE productos SET marca = ?, referencia = ?, serial = ?, procesador = ?, ram = ?, disco_duro = ?, tipo_producto_id = ? WHERE id = ?`,
		in.Marca, in.Referencia, in.Serial, in.Procesador, in.Ram, in.DiscoDuro, in.TipoProductoID, id)
	if err != nil {
		s.internalError(w, err)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeDetail(w, http.StatusNotFound, "Recurso no encontrado")
		return
	}
	p, err := scanProducto(s.DB.QueryRow(productoSelect+` WHERE p.id = ?`, id))
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProducto(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var n int
	if err := s.DB.QueryRow(`SELECT COUNT(*) FROM inventory WHERE producto_id = ? AND is_active = 1`, id).Scan(&n); err != nil {
		s.internalError(w, err)
		return
	}
	if n > 0 {
		writeDetail(w, http.StatusConflict, "El producto está asignado en inventario")
		return
	}
	res, err := s.DB.Exec(`DELETE FROM productos WHERE id = ?`, id)
	if err != nil {
		s.internalError(w, err)
		return
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		writeDetail(w, http.StatusNotFound, "Recurso no encontrado")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
