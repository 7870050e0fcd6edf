package stubserver

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const reporteSheet = "Reporte"

var reporteHeader = []string{
	"ID", "Empleado", "Producto", "Referencia", "Serial",
	"Quien Entrega", "Observación", "Fecha Entrega", "Fecha Retiro", "Estado",
}

// handleReporteExcel renders every assignment into a workbook and streams
// it to the caller.
func (s *Server) handleReporteExcel(w http.ResponseWriter, r *http.Request) {
	rows, err := s.DB.Query(`
		SELECT i.id, e.nombre, p.marca, p.referencia, p.serial,
		       i.quien_entrega, i.observacion, i.fecha_entrega, i.fecha_retiro, i.is_active
		FROM inventory i
		JOIN empleados e ON e.id = i.empleado_id
		JOIN productos p ON p.id = i.producto_id
		ORDER BY i.id`)
	if err != nil {
		s.internalError(w, err)
		return
	}
	defer rows.Close()

	var data [][]string
	for rows.Next() {
		var (
			id                                                                   int
			empleado, marca, referencia, serial, entrega, obs, fEntrega, fRetiro string
			active                                                               bool
		)
		if err := rows.Scan(&id, &empleado, &marca, &referencia, &serial, &entrega, &obs, &fEntrega, &fRetiro, &active); err != nil {
			s.internalError(w, err)
			return
		}
		estado := "activo"
		if !active {
			estado = "retirado"
		}
		data = append(data, []string{
			fmt.Sprintf("%d", id), empleado, marca, referencia, serial,
			entrega, obs, fEntrega, fRetiro, estado,
		})
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(reporteSheet)
	if err != nil {
		s.internalError(w, err)
		return
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		s.internalError(w, err)
		return
	}
	for i, header := range reporteHeader {
		cell := fmt.Sprintf("%s1", string(rune('A'+i)))
		f.SetCellValue(reporteSheet, cell, header)
		f.SetCellStyle(reporteSheet, cell, cell, headerStyle)
	}
	for rowIdx, row := range data {
		for colIdx, value := range row {
			cell := fmt.Sprintf("%s%d", string(rune('A'+colIdx)), rowIdx+2)
			f.SetCellValue(reporteSheet, cell, value)
		}
	}
	f.DeleteSheet("Sheet1")

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="reporte_inventario.xlsx"`)
	if err := f.Write(w); err != nil {
		s.Log.Error("writing workbook", zap.Error(err))
	}
}

// handlePDF serves the delivery or return certificate for one
// assignment.
func (s *Server) handlePDF(retiro bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		var (
			empleado, marca, referencia, serial, entrega, fEntrega, fRetiro string
		)
		err := s.DB.QueryRow(`
			SELECT e.nombre, p.marca, p.referencia, p.serial, i.quien_entrega, i.fecha_entrega, i.fecha_retiro
			FROM inventory i
			JOIN empleados e ON e.id = i.empleado_id
			JOIN productos p ON p.id = i.producto_id
			WHERE i.id = ?`, id).
			Scan(&empleado, &marca, &referencia, &serial, &entrega, &fEntrega, &fRetiro)
		if errors.Is(err, sql.ErrNoRows) {
			writeDetail(w, http.StatusNotFound, "Recurso no encontrado")
			return
		}
		if err != nil {
			s.internalError(w, err)
			return
		}

		title := "ACTA DE ENTREGA DE EQUIPO"
		fecha := fEntrega
		if retiro {
			if fRetiro == "" {
				writeDetail(w, http.StatusConflict, "La asignación sigue activa")
				return
			}
			title = "ACTA DE DEVOLUCION DE EQUIPO"
			fecha = fRetiro
		}
		lines := []string{
			title,
			"",
			fmt.Sprintf("Asignacion No. %d", id),
			fmt.Sprintf("Empleado: %s", empleado),
			fmt.Sprintf("Equipo: %s %s", marca, referencia),
			fmt.Sprintf("Serial: %s", serial),
			fmt.Sprintf("Entregado por: %s", entrega),
			fmt.Sprintf("Fecha: %s", fecha),
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="acta_%d.pdf"`, id))
		w.Write(minimalPDF(lines))
	}
}
