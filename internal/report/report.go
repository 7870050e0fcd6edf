// Package report builds and reads the Excel workbooks that move through
// the bulk-upload and report endpoints.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/molinosatl/invdash/internal/models"
)

// UploadSheet is the sheet name the backend expects on upload-masivo
// workbooks.
const UploadSheet = "Asignaciones"

// UploadHeader is the column order of an upload-masivo workbook.
var UploadHeader = []string{"empleado_id", "producto_id", "sede_id", "quien_entrega", "observacion"}

// BuildUploadWorkbook renders assignment rows into an upload-masivo
// workbook.
func BuildUploadWorkbook(rows []models.AsignacionInput) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(UploadSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}
	for i, header := range UploadHeader {
		cell := fmt.Sprintf("%s1", string(rune('A'+i)))
		f.SetCellValue(UploadSheet, cell, header)
		f.SetCellStyle(UploadSheet, cell, cell, headerStyle)
	}

	for i, row := range rows {
		sede := ""
		if row.SedeID != nil {
			sede = strconv.Itoa(*row.SedeID)
		}
		values := []any{row.EmpleadoID, row.ProductoID, sede, row.QuienEntrega, row.Observacion}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(UploadSheet, cell, &values); err != nil {
			return nil, err
		}
	}

	f.DeleteSheet("Sheet1")

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadUploadCSV parses a CSV file with the UploadHeader columns into
// assignment rows, validating each one. It is the bridge between a plain
// spreadsheet export and the workbook the backend wants.
func ReadUploadCSV(r io.Reader) ([]models.AsignacionInput, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("leyendo encabezado: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"empleado_id", "producto_id"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("falta la columna %q", required)
		}
	}

	get := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var rows []models.AsignacionInput
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		empleadoID, err := strconv.Atoi(get(rec, "empleado_id"))
		if err != nil {
			return nil, fmt.Errorf("fila %d: empleado_id no es un número", line)
		}
		productoID, err := strconv.Atoi(get(rec, "producto_id"))
		if err != nil {
			return nil, fmt.Errorf("fila %d: producto_id no es un número", line)
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
				return nil, fmt.Errorf("fila %d: sede_id no es un número", line)
			}
			in.SedeID = &sede
		}
		if err := models.Validar(in); err != nil {
			return nil, fmt.Errorf("fila %d: %w", line, err)
		}
		rows = append(rows, in)
	}
	return rows, nil
}

// Summary describes a downloaded report workbook.
type Summary struct {
	Sheet  string
	Header []string
	Rows   int
}

// Summarize opens a downloaded /reporte/excel workbook and reports its
// first sheet, header row and data row count, so the shell can confirm
// what it just saved.
func Summarize(data []byte) (*Summary, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("el archivo no es un libro de Excel válido: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	s := &Summary{Sheet: sheet}
	if len(rows) > 0 {
		s.Header = rows[0]
		s.Rows = len(rows) - 1
	}
	return s, nil
}
