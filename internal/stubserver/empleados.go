package stubserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/molinosatl/invdash/internal/models"
)

const empleadoSelect = `
	SELECT e.id, e.nombre,
	       e.area_id, COALESCE(a.nombre, ''),
	       e.cargo_id, COALESCE(c.nombre, ''),
	       e.empresa_id, COALESCE(em.nombre, ''),
	       e.ciudad_id, COALESCE(ci.nombre, ''),
	       e.is_active, e.fecha_retiro
	FROM empleados e
	LEFT JOIN catalog_items a  ON a.id = e.area_id    AND a.tipo = 'areas'
	LEFT JOIN catalog_items c  ON c.id = e.cargo_id   AND c.tipo = 'cargos'
	LEFT JOIN catalog_items em ON em.id = e.empresa_id AND em.tipo = 'empresas'
	LEFT JOIN catalog_items ci ON ci.id = e.ciudad_id  AND ci.tipo = 'ciudades'`

func scanEmpleado(row interface{ Scan(...any) error }) (models.Empleado, error) {
	var e models.Empleado
	err := row.Scan(&e.ID, &e.Nombre,
		&e.AreaID, &e.Area,
		&e.CargoID, &e.Cargo,
		&e.EmpresaID, &e.Empresa,
		&e.CiudadID, &e.Ciudad,
		&e.IsActive, &e.FechaRetiro)
	return e, err
}

func (s *Server) handleListEmpleados(w http.ResponseWriter, r *http.Request) {
	query := empleadoSelect
	var args []any
	if search := r.URL.Query().Get("search"); search != "" {
		query += ` WHERE e.nombre LIKE ?`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY e.nombre`

	rows, err := s.DB.Query(query, args...)
	if err != nil {
		s.internalError(w, err)
		return
	}
	defer rows.Close()

	empleados := []models.Empleado{}
	for rows.Next() {
		e, err := scanEmpleado(rows)
		if err != nil {
			s.internalError(w, err)
			return
		}
		empleados = append(empleados, e)
	}
	writeJSON(w, http.StatusOK, empleados)
}

func (s *Server) handleGetEmpleado(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	e, err := scanEmpleado(s.DB.QueryRow(empleadoSelect+` WHERE e.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		writeDetail(w, http.StatusNotFound, "Recurso no encontrado")
		return
	}
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleCreateEmpleado(w http.ResponseWriter, r *http.Request) {
	var in models.EmpleadoInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusBadRequest, "Cuerpo de la petición inválido")
		return
	}
	if err := models.Validar(in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	res, err := s.DB.Exec(`INSERT INTO empleados (nombre, area_id, cargo_id, empresa_id, ciudad_id) VALUES (?, ?, ?, ?, ?)`,
		in.Nombre, in.AreaID, in.CargoID, in.EmpresaID, in.CiudadID)
	if err != nil {
		s.internalError(w, err)
		return
	}
	id, _ := res.LastInsertId()
	e, err := scanEmpleado(s.DB.QueryRow(empleadoSelect+` WHERE e.id = ?`, id))
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleUpdateEmpleado(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var in models.EmpleadoInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusBadRequest, "Cuerpo de la petición inválido")
		return
	}
	if err := models.Validar(in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	res, err := s.DB.Exec(`UPDATE empleados SET nombre = ?, area_id = ?, cargo_id = ?, empresa_id = ?, ciudad_id = ? WHERE id = ?`,
		in.Nombre, in.AreaID, in.CargoID, in.EmpresaID, in.CiudadID, id)
	if err != nil {
		s.internalError(w, err)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeDetail(w, http.StatusNotFound, "Recurso no encontrado")
		return
	}
	e, err := scanEmpleado(s.DB.QueryRow(empleadoSelect+` WHERE e.id = ?`, id))
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleDeleteEmpleado(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var n int
	if err := s.DB.QueryRow(`SELECT COUNT(*) FROM inventory WHERE empleado_id = ? AND is_active = 1`, id).Scan(&n); err != nil {
		s.internalError(w, err)
		return
	}
	if n > 0 {
		writeDetail(w, http.StatusConflict, "El empleado tiene asignaciones activas en inventario")
		return
	}
	res, err := s.DB.Exec(`DELETE FROM empleados WHERE id = ?`, id)
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

// handleToggle flips the soft-delete flag on empleados or productos.
// Retiring records the date; reactivating clears it.
func (s *Server) handleToggle(table string, active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		fecha := ""
		if !active {
			fecha = time.Now().Format("2006-01-02")
		}
		res, err := s.DB.Exec(`UPDATE `+table+` SET is_active = ?, fecha_retiro = ? WHERE id = ?`, active, fecha, id)
		if err != nil {
			s.internalError(w, err)
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			writeDetail(w, http.StatusNotFound, "Recurso no encontrado")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
