package stubserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/molinosatl/invdash/internal/models"
)

// handleLogin implements the password-grant login: form-urlencoded
// credentials in, bearer token out. This is the only unauthenticated
// route.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusBadRequest, "Cuerpo de la petición inválido")
		return
	}
	username := strings.TrimSpace(r.PostForm.Get("username"))
	password := r.PostForm.Get("password")
	if username == "" || password == "" {
		writeDetail(w, http.StatusBadRequest, "usuario y contraseña son obligatorios")
		return
	}

	var (
		u    models.UserProfile
		hash string
	)
	err := s.DB.QueryRow(`SELECT id, username, full_name, password_hash, is_admin, is_active FROM users WHERE username = ?`, username).
		Scan(&u.ID, &u.Username, &u.FullName, &hash, &u.IsAdmin, &u.IsActive)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil) {
		writeDetail(w, http.StatusUnauthorized, "Credenciales incorrectas")
		return
	}
	if err != nil {
		s.internalError(w, err)
		return
	}
	if !u.IsActive {
		writeDetail(w, http.StatusUnauthorized, "Usuario inactivo")
		return
	}

	token := uuid.NewString()
	if _, err := s.DB.Exec(`INSERT INTO tokens (token, user_id) VALUES (?, ?)`, token, u.ID); err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.LoginResponse{AccessToken: token, TokenType: "bearer", User: &u})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentUser(r.Context()))
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	rows, err := s.DB.Query(`SELECT id, username, full_name, is_admin, is_active FROM users ORDER BY username`)
	if err != nil {
		s.internalError(w, err)
		return
	}
	defer rows.Close()

	users := []models.UserProfile{}
	for rows.Next() {
		var u models.UserProfile
		if err := rows.Scan(&u.ID, &u.Username, &u.FullName, &u.IsAdmin, &u.IsActive); err != nil {
			s.internalError(w, err)
			return
		}
		users = append(users, u)
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var in models.UserInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusBadRequest, "Cuerpo de la petición inválido")
		return
	}
	if err := models.Validar(in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if in.Password == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "password es obligatorio")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		s.internalError(w, err)
		return
	}
	res, err := s.DB.Exec(`INSERT INTO users (username, full_name, password_hash, is_admin) VALUES (?, ?, ?, ?)`,
		in.Username, in.FullName, string(hash), in.IsAdmin)
	if err != nil {
		if isUniqueViolation(err) {
			writeDetail(w, http.StatusConflict, "El usuario ya existe")
			return
		}
		s.internalError(w, err)
		return
	}
	id, _ := res.LastInsertId()
	writeJSON(w, http.StatusCreated, models.UserProfile{
		ID: int(id), Username: in.Username, FullName: in.FullName, IsAdmin: in.IsAdmin, IsActive: true,
	})
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var in models.UserInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusBadRequest, "Cuerpo de la petición inválido")
		return
	}
	if err := models.Validar(in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	isActive := true
	if in.IsActive != nil {
		isActive = *in.IsActive
	}
	res, err := s.DB.Exec(`UPDATE users SET username = ?, full_name = ?, is_admin = ?, is_active = ? WHERE id = ?`,
		in.Username, in.FullName, in.IsAdmin, isActive, id)
	if err != nil {
		if isUniqueViolation(err) {
			writeDetail(w, http.StatusConflict, "El usuario ya existe")
			return
		}
		s.internalError(w, err)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeDetail(w, http.StatusNotFound, "Recurso no encontrado")
		return
	}
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			s.internalError(w, err)
			return
		}
		if _, err := s.DB.Exec(`UPDATE users SET password_hash = ? WHERE id = ?`, string(hash), id); err != nil {
			s.internalError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, models.UserProfile{
		ID: id, Username: in.Username, FullName: in.FullName, IsAdmin: in.IsAdmin, IsActive: isActive,
	})
}

// idParam parses the {id} route parameter, writing the error response
// itself when the value is not a number.
func idParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeDetail(w, http.StatusUnprocessableEntity, "Identificador inválido")
		return 0, false
	}
	return id, true
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.Log.Error("handler failed", zap.Error(err))
	writeDetail(w, http.StatusInternalServerError, "Error del servidor. Por favor intente más tarde")
}

// isUniqueViolation sniffs sqlite's constraint error text; the driver
// does not export a typed error for it.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
