// Package stubserver is a development double of the inventory backend.
// It implements the same HTTP surface the real service exposes — login,
// catalogs, empleados, productos, inventory, users and exports — on top
// of an embedded sqlite database, so the client and its integration
// tests never need the production API.
package stubserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/molinosatl/invdash/internal/models"
)

// Server wires the handlers to their database.
type Server struct {
	DB  *sql.DB
	Log *zap.Logger
}

// New returns a stub server over db.
func New(db *sql.DB, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{DB: db, Log: log}
}

// Router builds the full route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.withRequestLogging)

	r.Post("/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Route("/users", func(r chi.Router) {
			r.Get("/me", s.handleMe)
			r.With(s.requireAdmin).Get("/", s.handleListUsers)
			r.With(s.requireAdmin).Post("/", s.handleCreateUser)
			r.With(s.requireAdmin).Put("/{id}", s.handleUpdateUser)
		})

		for _, tipo := range models.Catalogs {
			tipo := string(tipo)
			r.Route("/"+tipo, func(r chi.Router) {
				r.Get("/", s.handleListCatalog(tipo))
				r.Post("/", s.handleCreateCatalog(tipo))
				r.Put("/{id}", s.handleUpdateCatalog(tipo))
				r.Delete("/{id}", s.handleDeleteCatalog(tipo))
			})
		}

		r.Route("/empleados", func(r chi.Router) {
			r.Get("/", s.handleListEmpleados)
			r.Post("/", s.handleCreateEmpleado)
			r.Get("/{id}", s.handleGetEmpleado)
			r.Put("/{id}", s.handleUpdateEmpleado)
			r.Delete("/{id}", s.handleDeleteEmpleado)
			r.Patch("/{id}/retirar", s.handleToggle("empleados", false))
			r.Patch("/{id}/activar", s.handleToggle("empleados", true))
		})

		r.Route("/productos", func(r chi.Router) {
			r.Get("/", s.handleListProductos)
			r.Post("/", s.handleCreateProducto)
			r.Get("/{id}", s.handleGetProducto)
			r.Put("/{id}", s.handleUpdateProducto)
			r.Delete("/{id}", s.handleDeleteProducto)
			r.Patch("/{id}/retirar", s.handleToggle("productos", false))
			r.Patch("/{id}/activar", s.handleToggle("productos", true))
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", s.handleListInventory)
			r.Post("/", s.handleCreateAsignacion)
			r.Put("/{id}", s.handleUpdateAsignacion)
			r.Delete("/{id}", s.handleDeleteAsignacion)
			r.Patch("/{id}/retirar", s.handleRetirarAsignacion)
			r.Patch("/{id}/activar", s.handleActivarAsignacion)
			r.Post("/upload-masivo", s.handleUploadMasivo)
			r.Get("/{id}/pdf-asignacion", s.handlePDF(false))
			r.Get("/{id}/pdf-retiro", s.handlePDF(true))
		})

		r.Get("/reporte/excel", s.handleReporteExcel)
	})

	return r
}

// withRequestLogging logs one line per request.
func (s *Server) withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.Log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(start)),
		)
	})
}

type ctxKey string

const userKey ctxKey = "user"

// requireAuth enforces bearer authentication. The token must exist in
// the tokens table; on success the account is stored in the request
// context for downstream handlers.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeDetail(w, http.StatusUnauthorized, "No autorizado")
			return
		}
		var u models.UserProfile
		err := s.DB.QueryRow(`
			SELECT u.id, u.username, u.full_name, u.is_admin, u.is_active
			FROM tokens t JOIN users u ON u.id = t.user_id
			WHERE t.token = ?`, token).
			Scan(&u.ID, &u.Username, &u.FullName, &u.IsAdmin, &u.IsActive)
		if err != nil || !u.IsActive {
			writeDetail(w, http.StatusUnauthorized, "No autorizado")
			return
		}
		ctx := context.WithValue(r.Context(), userKey, &u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin gates the user-administration endpoints.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := currentUser(r.Context())
		if u == nil || !u.IsAdmin {
			writeDetail(w, http.StatusForbidden, "Operación no permitida")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func currentUser(ctx context.Context) *models.UserProfile {
	u, _ := ctx.Value(userKey).(*models.UserProfile)
	return u
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDetail writes an error in the backend's {"detail": ...} shape.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
