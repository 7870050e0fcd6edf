package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/molinosatl/invdash/internal/models"
)

// Empleados lists employees, optionally filtered by a search term.
func (c *Client) Empleados(ctx context.Context, search string) ([]models.Empleado, error) {
	var query url.Values
	if search != "" {
		query = url.Values{"search": {search}}
	}
	var out []models.Empleado
	if err := c.doJSON(ctx, http.MethodGet, "/empleados/", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Empleado fetches one employee by id.
func (c *Client) Empleado(ctx context.Context, id int) (*models.Empleado, error) {
	var out models.Empleado
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/empleados/%d", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateEmpleado registers a new employee.
func (c *Client) CreateEmpleado(ctx context.Context, in models.EmpleadoInput) (*models.Empleado, error) {
	if err := models.Validar(in); err != nil {
		return nil, &Error{Kind: KindValidation, Message: err.Error()}
	}
	var out models.Empleado
	if err := c.doJSON(ctx, http.MethodPost, "/empleados/", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateEmpleado replaces an employee's record.
func (c *Client) UpdateEmpleado(ctx context.Context, id int, in models.EmpleadoInput) (*models.Empleado, error) {
	if err := models.Validar(in); err != nil {
		return nil, &Error{Kind: KindValidation, Message: err.Error()}
	}
	var out models.Empleado
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/empleados/%d", id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteEmpleado removes an employee outright. Most flows should use
// RetirarEmpleado instead so history is kept.
func (c *Client) DeleteEmpleado(ctx context.Context, id int) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/empleados/%d", id), nil, nil, nil)
}

// RetirarEmpleado marks an employee as retired.
func (c *Client) RetirarEmpleado(ctx context.Context, id int) error {
	return c.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/empleados/%d/retirar", id), nil, nil, nil)
}

// ActivarEmpleado brings a retired employee back.
func (c *Client) ActivarEmpleado(ctx context.Context, id int) error {
	return c.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/empleados/%d/activar", id), nil, nil, nil)
}
