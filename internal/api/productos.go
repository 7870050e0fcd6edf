package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/molinosatl/invdash/internal/models"
)

// Productos lists products, optionally filtered by a search term.
func (c *Client) Productos(ctx context.Context, search string) ([]models.Producto, error) {
	var query url.Values
	if search != "" {
		query = url.Values{"search": {search}}
	}
	var out []models.Producto
	if err := c.doJSON(ctx, http.MethodGet, "/productos/", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Producto fetches one product by id.
func (c *Client) Producto(ctx context.Context, id int) (*models.Producto, error) {
	var out models.Producto
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/productos/%d", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateProducto registers a new product.
func (c *Client) CreateProducto(ctx context.Context, in models.ProductoInput) (*models.Producto, error) {
	if err := models.Validar(in); err != nil {
		return nil, &Error{Kind: KindValidation, Message: err.Error()}
	}
	var out models.Producto
	if err := c.doJSON(ctx, http.MethodPost, "/productos/", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProducto replaces a product's record.
func (c *Client) UpdateProducto(ctx context.Context, id int, in models.ProductoInput) (*models.Producto, error) {
	if err := models.Validar(in); err != nil {
		return nil, &Error{Kind: KindValidation, Message: err.Error()}
	}
	var out models.Producto
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/productos/%d", id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProducto removes a product outright.
func (c *Client) DeleteProducto(ctx context.Context, id int) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/productos/%d", id), nil, nil, nil)
}

// RetirarProducto marks a product as retired from the inventory.
func (c *Client) RetirarProducto(ctx context.Context, id int) error {
	return c.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/productos/%d/retirar", id), nil, nil, nil)
}

// ActivarProducto brings a retired product back into circulation.
func (c *Client) ActivarProducto(ctx context.Context, id int) error {
	return c.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/productos/%d/activar", id), nil, nil, nil)
}
