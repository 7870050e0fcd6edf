package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/molinosatl/invdash/internal/models"
)

// Users lists every user account. Admin only on the backend side.
func (c *Client) Users(ctx context.Context) ([]models.UserProfile, error) {
	var out []models.UserProfile
	if err := c.doJSON(ctx, http.MethodGet, "/users/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateUser registers a new user account.
func (c *Client) CreateUser(ctx context.Context, in models.UserInput) (*models.UserProfile, error) {
	if err := models.Validar(in); err != nil {
		return nil, &Error{Kind: KindValidation, Message: err.Error()}
	}
	var out models.UserProfile
	if err := c.doJSON(ctx, http.MethodPost, "/users/", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateUser updates a user account. An empty Password keeps the
// current one.
func (c *Client) UpdateUser(ctx context.Context, id int, in models.UserInput) (*models.UserProfile, error) {
	if err := models.Validar(in); err != nil {
		return nil, &Error{Kind: KindValidation, Message: err.Error()}
	}
	var out models.UserProfile
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/users/%d", id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
