package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/molinosatl/invdash/internal/models"
)

// memStore is an in-memory session.Store double.
type memStore struct {
	mu    sync.Mutex
	token string
	user  *models.UserProfile
}

func (m *memStore) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *memStore) User() *models.UserProfile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user
}

func (m *memStore) Set(token string, u *models.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.user = token, u
	return nil
}

func (m *memStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.user = "", nil
	return nil
}

func (m *memStore) IsAuthenticated() bool { return m.Token() != "" }

func (m *memStore) IsAdmin() bool {
	u := m.User()
	return u != nil && u.IsAdmin
}

func newTestClient(t *testing.T, handler http.Handler, opts ...Option) (*Client, *memStore) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	sess := &memStore{}
	return New(srv.URL, sess, opts...), sess
}

func TestDo_NoToken_NoAuthorizationHeader(t *testing.T) {
	var gotAuth string
	var hasAuth bool
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth, hasAuth = r.Header.Get("Authorization"), len(r.Header.Values("Authorization")) > 0
		w.Write([]byte(`[]`))
	}))

	_, err := c.Empleados(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, hasAuth, "anonymous request must carry no Authorization header, got %q", gotAuth)
}

func TestDo_TokenReadFreshPerCall(t *testing.T) {
	var seen []string
	c, sess := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		w.Write([]byte(`[]`))
	}))

	require.NoError(t, sess.Set("first", &models.UserProfile{Username: "u"}))
	_, err := c.Productos(context.Background(), "")
	require.NoError(t, err)

	require.NoError(t, sess.Set("second", &models.UserProfile{Username: "u"}))
	_, err = c.Productos(context.Background(), "")
	require.NoError(t, err)

	require.Equal(t, []string{"Bearer first", "Bearer second"}, seen)
}

func TestDo_Unauthorized_ClearsSessionAndSignals(t *testing.T) {
	redirected := false
	c, sess := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"token expirado"}`, http.StatusUnauthorized)
	}), WithOnUnauthorized(func() { redirected = true }))

	require.NoError(t, sess.Set("stale", &models.UserProfile{Username: "u", IsAdmin: true}))

	_, err := c.Inventory(context.Background(), 0)
	require.Error(t, err)
	assert.True(t, IsAuth(err), "401 must surface as an auth error, got %v", err)
	assert.False(t, sess.IsAuthenticated(), "session must be cleared after a 401")
	assert.Nil(t, sess.User())
	assert.True(t, redirected, "unauthorized hook must run")
}

func TestDo_EmptyBodySuccess(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	require.NoError(t, c.DeleteEmpleado(context.Background(), 7))
	require.NoError(t, c.RetirarProducto(context.Background(), 7))
}

func TestDo_DetailExtraction(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind Kind
		wantMsg  string
	}{
		{
			name:     "4xx with detail",
			status:   http.StatusConflict,
			body:     `{"detail":"El empleado ya tiene asignado este producto"}`,
			wantKind: KindValidation,
			wantMsg:  "El empleado ya tiene asignado este producto",
		},
		{
			name:     "4xx without parsable body",
			status:   http.StatusBadRequest,
			body:     `<html>bad gateway</html>`,
			wantKind: KindServer,
			wantMsg:  msgServerError,
		},
		{
			name:     "5xx with detail",
			status:   http.StatusInternalServerError,
			body:     `{"detail":"db caída"}`,
			wantKind: KindServer,
			wantMsg:  "db caída",
		},
		{
			name:     "5xx unparsable",
			status:   http.StatusBadGateway,
			body:     `oops`,
			wantKind: KindServer,
			wantMsg:  msgServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			_, err := c.Empleados(context.Background(), "")
			require.Error(t, err)
			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.wantKind, apiErr.Kind)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
			assert.Equal(t, tt.status, apiErr.Status)
		})
	}
}

func TestDo_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // connection refused from here on
	c := New(srv.URL, &memStore{})

	_, err := c.Empleados(context.Background(), "")
	require.Error(t, err)
	assert.True(t, IsNetwork(err) || IsTimeout(err), "transport failure must map to network/timeout, got %v", err)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Zero(t, apiErr.Status, "no HTTP response means no status")
}

func TestDo_Timeout(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}), WithTimeout(20*time.Millisecond))

	_, err := c.Productos(context.Background(), "")
	require.Error(t, err)
	assert.True(t, IsTimeout(err), "slow backend must surface as timeout, got %v", err)
}

func TestConcurrentGets_NoCrossContamination(t *testing.T) {
	mux := http.NewServeMux()
	for _, tipo := range []string{"areas", "empresas", "cargos"} {
		tipo := tipo
		mux.HandleFunc("/"+tipo+"/", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode([]models.CatalogItem{{ID: 1, Nombre: tipo}})
		})
	}
	c, sess := newTestClient(t, mux)
	require.NoError(t, sess.Set("tok", &models.UserProfile{Username: "u"}))

	var wg sync.WaitGroup
	results := make(map[models.CatalogTipo][]models.CatalogItem)
	var mu sync.Mutex
	for _, tipo := range []models.CatalogTipo{models.CatalogAreas, models.CatalogEmpresas, models.CatalogCargos} {
		wg.Add(1)
		go func(tipo models.CatalogTipo) {
			defer wg.Done()
			items, err := c.Catalog(context.Background(), tipo)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			results[tipo] = items
			mu.Unlock()
		}(tipo)
	}
	wg.Wait()

	for tipo, items := range results {
		require.Len(t, items, 1)
		assert.Equal(t, string(tipo), items[0].Nombre)
	}
}

func TestLogin_Success(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "admin", r.PostForm.Get("username"))
		assert.Equal(t, "admin123", r.PostForm.Get("password"))
		json.NewEncoder(w).Encode(map[string]string{"access_token": "abc"})
	})
	mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(models.UserProfile{Username: "admin", FullName: "Administrador", IsAdmin: true})
	})
	c, sess := newTestClient(t, mux)

	profile, err := c.Login(context.Background(), "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "abc", sess.Token())
	assert.True(t, sess.IsAuthenticated())
	assert.True(t, sess.IsAdmin())
	assert.Equal(t, "Administrador", profile.FullName)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	c, sess := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Credenciales incorrectas"})
	}))

	_, err := c.Login(context.Background(), "admin", "wrong")
	require.Error(t, err)
	assert.True(t, IsAuth(err))
	assert.Equal(t, "Credenciales incorrectas", err.Error())
	assert.False(t, sess.IsAuthenticated(), "failed login must leave the session anonymous")
}

func TestLogin_ProfileFallback(t *testing.T) {
	// Login succeeds but /users/me fails: the session keeps a minimal
	// profile with just the username.
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"access_token": "abc"})
	})
	mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"no disponible"}`, http.StatusInternalServerError)
	})
	c, sess := newTestClient(t, mux)

	profile, err := c.Login(context.Background(), "clerk", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "clerk", profile.Username)
	assert.True(t, sess.IsAuthenticated())
	assert.False(t, sess.IsAdmin())
}

func TestAssignProductos_PartialFailure(t *testing.T) {
	c, sess := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in models.AsignacionInput
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		switch in.ProductoID {
		case 2:
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]string{"detail": "El empleado ya tiene asignado este producto"})
		case 3:
			http.Error(w, `{"detail":"error interno"}`, http.StatusInternalServerError)
		default:
			json.NewEncoder(w).Encode(models.Asignacion{ID: 10, EmpleadoID: in.EmpleadoID, ProductoID: in.ProductoID, IsActive: true})
		}
	}))
	require.NoError(t, sess.Set("tok", &models.UserProfile{Username: "u"}))

	res := c.AssignProductos(context.Background(), models.AsignacionInput{EmpleadoID: 5, QuienEntrega: "bodega"}, []int{1, 2, 3})
	require.Len(t, res.Outcomes, 3, "every product must be attempted")
	assert.Equal(t, 1, res.Exitos())
	assert.Equal(t, 1, res.Duplicados())
	assert.Equal(t, 1, res.Fallos())
	assert.True(t, IsDuplicate(res.Outcomes[1].Err))
	assert.True(t, IsServer(res.Outcomes[2].Err))
}

func TestCreateEmpleado_LocalValidation(t *testing.T) {
	called := false
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	_, err := c.CreateEmpleado(context.Background(), models.EmpleadoInput{Nombre: ""})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.False(t, called, "invalid payloads must be rejected before any request is sent")
}

func TestUploadMasivo_Multipart(t *testing.T) {
	c, sess := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		f, hdr, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		assert.Equal(t, "asignaciones.xlsx", hdr.Filename)
		json.NewEncoder(w).Encode(models.UploadResult{Created: 2, FailedRows: []models.UploadRowError{{Row: 4, Error: "empleado no existe"}}})
	}))
	require.NoError(t, sess.Set("tok", &models.UserProfile{Username: "u"}))

	res, err := c.UploadMasivo(context.Background(), "asignaciones.xlsx", bytes.NewBufferString("fake-xlsx"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
	require.Len(t, res.FailedRows, 1)
	assert.Equal(t, 4, res.FailedRows[0].Row)
}
