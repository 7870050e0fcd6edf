package stubserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/molinosatl/invdash/internal/models"
	"github.com/molinosatl/invdash/internal/report"
)

const asignacionSelect = `
	SELECT i.id, i.empleado_id, i.producto_id, i.sede_id, i.quien_entrega, i.observacion,
	       i.fecha_entrega, i.fecha_retiro, i.is_active,
	       e.nombre, e.ciudad_id,
	       p.marca, p.referencia, p.serial, p.tipo_producto_id
	FROM inventory i
	JOIN empleados e ON e.id = i.empleado_id
	JOIN productos p ON p.id = i.producto_id`

func scanAsignacion(row interface{ Scan(...any) error }) (models.Asignacion, error) {
	var (
		a    models.Asignacion
		emp  models.Empleado
		prod models.Producto
		sede sql.NullInt64
	)
	err := row.Scan(&a.ID, &a.EmpleadoID, &a.ProductoID, &sede, &a.QuienEntrega, &a.Observacion,
		&a.FechaEntrega, &a.FechaRetiro, &a.IsActive,
		&emp.Nombre, &emp.CiudadID,
		&prod.Marca, &prod.Referencia, &prod.Serial, &prod.TipoProductoID)
	if err != nil {
		return a, err
	}
	if sede.Valid {
		v := int(sede.Int64)
		a.SedeID = &v
	}
	emp.ID = a.EmpleadoID
	prod.ID = a.ProductoID
	a.Empleado = &emp
	a.Producto = &prod
	return a, nil
}

func (s *Server) handleListInventory(w http.ResponseWriter, r *http.Request) {
	query := asignacionSelect
	var args []any
	if raw := r.URL.Query().Get("empleado_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, "empleado_id inválido")
			return
		}
		query += ` WHERE i.empleado_id = ?`
		args = append(args, id)
	}
	query += ` ORDER BY i.id DESC`

	rows, err := s.DB.Query(query, args...)
	if err != nil {
		s.internalError(w, err)
		return
	}
	defer rows.Close()

	items := []models.Asignacion{}
	for rows.Next() {
		a, err := scanAsignacion(rows)
		if err != nil {
			s.internalError(w, err)
			return
		}
		items = append(items, a)
	}
	writeJSON(w, http.StatusOK, items)
}

// rejection is a business-rule refusal with the HTTP status it maps to.
type rejection struct {
	status int
	detail string
}

func (e *rejection) Error() string { return e.detail }

// insertAsignacion applies the assignment rules shared by the JSON
// endpoint and the bulk upload: both records must exist and be active,
// and a product can only be actively assigned once to the same employee.
func (s *Server) insertAsignacion(in models.AsignacionInput) (*models.Asignacion, error) {
	if err := models.Validar(in); err != nil {
		return nil, &rejection{http.StatusUnprocessableEntity, err.Error()}
	}

	var active bool
	err := s.DB.QueryRow(`SELECT is_active FROM empleados WHERE id = ?`, in.EmpleadoID).Scan(&active)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !active) {
		return nil, &rejection{http.StatusUnprocessableEntity, "El empleado no existe o está retirado"}
	}
	if err != nil {
		return nil, err
	}
	err = s.DB.QueryRow(`SELECT is_active FROM productos WHERE id = ?`, in.ProductoID).Scan(&active)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !active) {
		return nil, &rejection{http.StatusUnprocessableEntity, "El producto no existe o está retirado"}
	}
	if err != nil {
		return nil, err
	}

	var n int
	err = s.DB.QueryRow(`SELECT COUNT(*) FROM inventory WHERE empleado_id = ? AND producto_id = ? AND is_active = 1`,
		in.EmpleadoID, in.ProductoID).Scan(&n)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, &rejection{http.StatusConflict, "El empleado ya tiene asignado este producto"}
	}

	res, err := s.DB.Exec(`INSERT INTO inventory (empleado_id, producto_id, sede_id, quien_entrega, observacion, fecha_entrega)
		VALUES (?, ?, ?, ?, ?, ?)`,
		in.EmpleadoID, in.ProductoID, in.SedeID, in.QuienEntrega, in.Observacion, time.Now().Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	id, _ := res.LastInsertId()
	a, err := scanAsignacion(s.DB.QueryRow(asignacionSelect+` WHERE i.id = ?`, id))
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Server) handleCreateAsignacion(w http.ResponseWriter, r *http.Request) {
	var in models.AsignacionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusBadRequest, "Cuerpo de la petición inválido")
		return
	}
	a, err := s.insertAsignacion(in)
	if err != nil {
		var rej *rejection
		if errors.As(err, &rej) {
			writeDetail(w, rej.status, rej.detail)
			return
		}
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleUpdateAsignacion(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var in models.AsignacionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusBadRequest, "Cuerpo de la petición inválido")
		return
	}
	if err := models.Validar(in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	res, err := s.DB.Exec(`UPDATE inventory SET empleado_id = ?, producto_id = ?, sede_id = ?, quien_entrega = ?, observacion = ? WHERE id = ?`,
		in.EmpleadoID, in.ProductoID, in.SedeID, in.QuienEntrega, in.Observacion, id)
	if err != nil {
		s.internalError(w, err)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeDetail(w, http.StatusNotFound, "Recurso no encontrado")
		return
	}
	a, err := scanAsignacion(s.DB.QueryRow(asignacionSelect+` WHERE i.id = ?`, id))
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleDeleteAsignacion(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	res, err := s.DB.Exec(`DELETE FROM inventory WHERE id = ?`, id)
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

func (s *Server) handleRetirarAsignacion(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	fecha := r.URL.Query().Get("fecha_retiro")
	if fecha == "" {
		fecha = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", fecha); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "fecha_retiro debe tener formato AAAA-MM-DD")
		return
	}
	res, err := s.DB.Exec(`UPDATE inventory SET is_active = 0, fecha_retiro = ? WHERE id = ?`, fecha, id)
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

func (s *Server) handleActivarAsignacion(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	res, err := s.DB.Exec(`UPDATE inventory SET is_active = 1, fecha_retiro = '' WHERE id = ?`, id)
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

// handleUploadMasivo ingests an upload-masivo workbook. Rows are
// processed independently; one bad row does not abort the rest.
func (s *Server) handleUploadMasivo(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeDetail(w, http.StatusBadRequest, "Cuerpo de la petición inválido")
		return
	}
	f, _, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Falta el archivo")
		return
	}
	defer f.Close()

	wb, err := excelize.OpenReader(f)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "El archivo no es un libro de Excel válido")
		return
	}
	defer wb.Close()

	sheet := wb.GetSheetName(0)
	for _, name := range wb.GetSheetList() {
		if name == report.UploadSheet {
			sheet = name
			break
		}
	}
	rows, err := wb.GetRows(sheet)
	if err != nil || len(rows) == 0 {
		writeDetail(w, http.StatusUnprocessableEntity, "El libro está vacío")
		return
	}

	col := map[string]int{}
	for i, name := range rows[0] {
		col[name] = i
	}
	get := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	result := models.UploadResult{}
	for n, rec := range rows[1:] {
		rowNum := n + 2
		empleadoID, err1 := strconv.Atoi(get(rec, "empleado_id"))
		productoID, err2 := strconv.Atoi(get(rec, "producto_id"))
		if err1 != nil || err2 != nil {
			result.FailedRows = append(result.FailedRows, models.UploadRowError{Row: rowNum, Error: "empleado_id y producto_id deben ser números"})
			continue
		}
		in := models.AsignacionInput{
			EmpleadoID:   empleadoID,
			ProductoID:   productoID,
			QuienEntrega: get(rec, "quien_entrega"),
			Observacion:  get(rec, "observacion"),
		}
		if raw := get(rec, "sede_id"); raw != "" {
			sede, err := strconv.Atoi(raw)
			if err != nil {
				result.FailedRows = append(result.FailedRows, models.UploadRowError{Row: rowNum, Error: "sede_id debe ser un número"})
				continue
			}
			in.SedeID = &sede
		}
		if _, err := s.insertAsignacion(in); err != nil {
			result.FailedRows = append(result.FailedRows, models.UploadRowError{Row: rowNum, Error: err.Error()})
			continue
		}
		result.Created++
	}
	writeJSON(w, http.StatusOK, result)
}
