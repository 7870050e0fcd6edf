// Package api implements the client for the inventory backend. Every
// request the application makes flows through one method, do, which
// attaches the bearer token, interprets HTTP status uniformly and maps
// failures onto the error taxonomy in errors.go. The typed resource
// methods are thin wrappers and add no handling of their own.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/molinosatl/invdash/internal/session"
)

// DefaultTimeout matches the dashboard's 30s request timeout.
const DefaultTimeout = 30 * time.Second

// Client talks to the inventory backend.
type Client struct {
	baseURL string
	http    *http.Client
	session session.Store
	log     *zap.Logger

	// onUnauthorized is invoked after a 401 has cleared the session,
	// so the front-end can return to its login screen.
	onUnauthorized func()
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger attaches a structured logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithOnUnauthorized registers the hook run after a 401 clears the
// session.
func WithOnUnauthorized(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// New returns a client for the backend at baseURL, reading and clearing
// credentials through sess.
func New(baseURL string, sess session.Store, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		session: sess,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do executes one round trip and returns the raw response body. The token
// is read fresh from the session store on every call, never cached. On
// 401 the session is cleared and the unauthorized hook runs before the
// error is returned; no other failure has side effects. Nothing is ever
// retried.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, contentType string, body io.Reader) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	c.log.Debug("request", zap.String("method", method), zap.String("path", path))

	resp, err := c.http.Do(req)
	if err != nil {
		terr := transportError(err)
		c.log.Warn("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, terr
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// Token rejected: force the logged-out state before the
		// caller sees the error. Clearing twice is harmless.
		_ = c.session.Clear()
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return nil, &Error{Kind: KindAuth, Message: msgUnauthorized, Status: resp.StatusCode}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := statusError(resp.StatusCode, raw)
		c.log.Warn("request rejected",
			zap.String("method", method), zap.String("path", path),
			zap.Int("status", resp.StatusCode), zap.String("detail", apiErr.Message))
		return nil, apiErr
	}
	return raw, nil
}

// doJSON sends an optional JSON payload and decodes the JSON response
// into out. An empty 2xx body leaves out untouched.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, payload, out any) error {
	var (
		body        io.Reader
		contentType string
	)
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
		contentType = "application/json"
	}

	raw, err := c.do(ctx, method, path, query, contentType, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decodeJSON(raw, path, out)
}

// decodeJSON unmarshals a 2xx body into out. Empty bodies (some DELETE
// and PATCH endpoints return nothing) are a successful no-op, not a
// parse error.
func decodeJSON(raw []byte, path string, out any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decodificando respuesta de %s: %w", path, err)
	}
	return nil
}

// statusError maps a non-2xx, non-401 response onto the error taxonomy,
// extracting the backend's "detail" field when the body parses.
func statusError(status int, raw []byte) *Error {
	var body struct {
		Detail string `json:"detail"`
	}
	detail := ""
	if err := json.Unmarshal(raw, &body); err == nil {
		detail = strings.TrimSpace(body.Detail)
	}

	switch {
	case status >= 500:
		msg := detail
		if msg == "" {
			msg = msgServerError
		}
		return &Error{Kind: KindServer, Message: msg, Status: status}
	case detail != "":
		return &Error{Kind: KindValidation, Message: detail, Status: status}
	default:
		// 4xx without a parsable detail body.
		return &Error{Kind: KindServer, Message: msgServerError, Status: status}
	}
}

// transportError maps a failed round trip (no HTTP response) onto the
// error taxonomy, separating timeouts from other connectivity failures.
func transportError(err error) *Error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &Error{Kind: KindTimeout, Message: msgTimeout}
	}
	return &Error{Kind: KindNetwork, Message: msgNetworkError}
}
