package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/molinosatl/invdash/internal/models"
)

func catalogPath(tipo models.CatalogTipo) (string, error) {
	if !tipo.Valid() {
		return "", &Error{Kind: KindValidation, Message: fmt.Sprintf("catálogo desconocido: %s", tipo)}
	}
	return "/" + string(tipo) + "/", nil
}

// Catalog lists every item of the given reference catalog.
func (c *Client) Catalog(ctx context.Context, tipo models.CatalogTipo) ([]models.CatalogItem, error) {
	path, err := catalogPath(tipo)
	if err != nil {
		return nil, err
	}
	var out []models.CatalogItem
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCatalogItem adds an item to a reference catalog.
func (c *Client) CreateCatalogItem(ctx context.Context, tipo models.CatalogTipo, in models.CatalogInput) (*models.CatalogItem, error) {
	path, err := catalogPath(tipo)
	if err != nil {
		return nil, err
	}
	if err := models.Validar(in); err != nil {
		return nil, &Error{Kind: KindValidation, Message: err.Error()}
	}
	var out models.CatalogItem
	if err := c.doJSON(ctx, http.MethodPost, path, nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCatalogItem renames a catalog item.
func (c *Client) UpdateCatalogItem(ctx context.Context, tipo models.CatalogTipo, id int, in models.CatalogInput) (*models.CatalogItem, error) {
	if !tipo.Valid() {
		return nil, &Error{Kind: KindValidation, Message: fmt.Sprintf("catálogo desconocido: %s", tipo)}
	}
	if err := models.Validar(in); err != nil {
		return nil, &Error{Kind: KindValidation, Message: err.Error()}
	}
	var out models.CatalogItem
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/%s/%d", tipo, id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteCatalogItem removes a catalog item.
func (c *Client) DeleteCatalogItem(ctx context.Context, tipo models.CatalogTipo, id int) error {
	if !tipo.Valid() {
		return &Error{Kind: KindValidation, Message: fmt.Sprintf("catálogo desconocido: %s", tipo)}
	}
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/%s/%d", tipo, id), nil, nil, nil)
}
