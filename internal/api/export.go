package api

import (
	"context"
	"fmt"
	"net/http"
)

// Binary exports. The backend renders these; the client just downloads
// the bytes and hands them to the caller to save.

// ReporteExcel downloads the full assignment report workbook.
func (c *Client) ReporteExcel(ctx context.Context) ([]byte, error) {
	return c.do(ctx, http.MethodGet, "/reporte/excel", nil, "", nil)
}

// PDFAsignacion downloads the signed delivery certificate for one
// assignment.
func (c *Client) PDFAsignacion(ctx context.Context, id int) ([]byte, error) {
	return c.do(ctx, http.MethodGet, fmt.Sprintf("/inventory/%d/pdf-asignacion", id), nil, "", nil)
}

// PDFRetiro downloads the return certificate for one assignment.
func (c *Client) PDFRetiro(ctx context.Context, id int) ([]byte, error) {
	return c.do(ctx, http.MethodGet, fmt.Sprintf("/inventory/%d/pdf-retiro", id), nil, "", nil)
}
