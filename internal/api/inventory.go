package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/molinosatl/invdash/internal/models"
)

// Inventory lists assignments, optionally restricted to one employee.
func (c *Client) Inventory(ctx context.Context, empleadoID int) ([]models.Asignacion, error) {
	var query url.Values
	if empleadoID > 0 {
		query = url.Values{"empleado_id": {strconv.Itoa(empleadoID)}}
	}
	var out []models.Asignacion
	if err := c.doJSON(ctx, http.MethodGet, "/inventory/", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAsignacion assigns one product to one employee. The backend
// rejects duplicates (same product already assigned) with a 409 conflict;
// IsDuplicate distinguishes those from hard failures.
func (c *Client) CreateAsignacion(ctx context.Context, in models.AsignacionInput) (*models.Asignacion, error) {
	if err := models.Validar(in); err != nil {
		return nil, &Error{Kind: KindValidation, Message: err.Error()}
	}
	var out models.Asignacion
	if err := c.doJSON(ctx, http.MethodPost, "/inventory/", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateAsignacion replaces an assignment's record.
func (c *Client) UpdateAsignacion(ctx context.Context, id int, in models.AsignacionInput) (*models.Asignacion, error) {
	if err := models.Validar(in); err != nil {
		return nil, &Error{Kind: KindValidation, Message: err.Error()}
	}
	var out models.Asignacion
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/inventory/%d", id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RetirarAsignacion retires an assignment, recording fechaRetiro
// (YYYY-MM-DD) when given; the backend defaults to today otherwise.
func (c *Client) RetirarAsignacion(ctx context.Context, id int, fechaRetiro string) error {
	var query url.Values
	if fechaRetiro != "" {
		query = url.Values{"fecha_retiro": {fechaRetiro}}
	}
	return c.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/inventory/%d/retirar", id), query, nil, nil)
}

// ActivarAsignacion reactivates a retired assignment.
func (c *Client) ActivarAsignacion(ctx context.Context, id int) error {
	return c.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/inventory/%d/activar", id), nil, nil, nil)
}

// AssignOutcome is the result of one POST within a bulk assignment.
type AssignOutcome struct {
	ProductoID int
	Asignacion *models.Asignacion
	Err        error
}

// BulkResult aggregates the outcomes of a bulk assignment. The batch is
// not transactional: some products may be assigned while others fail.
type BulkResult struct {
	Outcomes []AssignOutcome
}

// Exitos counts the products that were assigned.
func (r BulkResult) Exitos() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err == nil {
			n++
		}
	}
	return n
}

// Duplicados counts the products rejected as already assigned.
func (r BulkResult) Duplicados() int {
	n := 0
	for _, o := range r.Outcomes {
		if IsDuplicate(o.Err) {
			n++
		}
	}
	return n
}

// Fallos counts the products that failed for any other reason.
func (r BulkResult) Fallos() int {
	return len(r.Outcomes) - r.Exitos() - r.Duplicados()
}

// AssignProductos assigns several products to the same employee: one
// independent POST per product, no client-side deduplication and no
// rollback. Every product is attempted even when an earlier one fails;
// the caller reconciles partial success from the returned outcomes.
func (c *Client) AssignProductos(ctx context.Context, base models.AsignacionInput, productoIDs []int) BulkResult {
	res := BulkResult{Outcomes: make([]AssignOutcome, 0, len(productoIDs))}
	for _, id := range productoIDs {
		in := base
		in.ProductoID = id
		a, err := c.CreateAsignacion(ctx, in)
		res.Outcomes = append(res.Outcomes, AssignOutcome{ProductoID: id, Asignacion: a, Err: err})
	}
	return res
}

// UploadMasivo sends a bulk-assignment workbook to the backend as a
// multipart upload and returns the backend's per-row result.
func (c *Client) UploadMasivo(ctx context.Context, filename string, r io.Reader) (*models.UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	raw, err := c.do(ctx, http.MethodPost, "/inventory/upload-masivo", nil, mw.FormDataContentType(), &buf)
	if err != nil {
		return nil, err
	}
	var out models.UploadResult
	if err := decodeJSON(raw, "/inventory/upload-masivo", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
