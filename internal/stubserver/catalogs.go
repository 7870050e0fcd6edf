package stubserver

import (
	"encoding/json"
	"net/http"

	"github.com/molinosatl/invdash/internal/models"
)

// The five reference catalogs share one table and one set of handlers,
// parameterized by tipo.

func (s *Server) handleListCatalog(tipo string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := s.DB.Query(`SELECT id, nombre FROM catalog_items WHERE tipo = ? ORDER BY nombre`, tipo)
		if err != nil {
			s.internalError(w, err)
			return
		}
		defer rows.Close()

		items := []models.CatalogItem{}
		for rows.Next() {
			var it models.CatalogItem
			if err := rows.Scan(&it.ID, &it.Nombre); err != nil {
				s.internalError(w, err)
				return
			}
			items = append(items, it)
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func (s *Server) handleCreateCatalog(tipo string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in models.CatalogInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeDetail(w, http.StatusBadRequest, "Cuerpo de la petición inválido")
			return
		}
		if err := models.Validar(in); err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		res, err := s.DB.Exec(`INSERT INTO catalog_items (tipo, nombre) VALUES (?, ?)`, tipo, in.Nombre)
		if err != nil {
			if isUniqueViolation(err) {
				writeDetail(w, http.StatusConflict, "Ya existe un elemento con ese nombre")
				return
			}
			s.internalError(w, err)
			return
		}
		id, _ := res.LastInsertId()
		writeJSON(w, http.StatusCreated, models.CatalogItem{ID: int(id), Nombre: in.Nombre})
	}
}

func (s *Server) handleUpdateCatalog(tipo string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		var in models.CatalogInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeDetail(w, http.StatusBadRequest, "Cuerpo de la petición inválido")
			return
		}
		if err := models.Validar(in); err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		res, err := s.DB.Exec(`UPDATE catalog_items SET nombre = ? WHERE id = ? AND tipo = ?`, in.Nombre, id, tipo)
		if err != nil {
			if isUniqueViolation(err) {
				writeDetail(w, http.StatusConflict, "Ya existe un elemento con ese nombre")
				return
			}
			s.internalError(w, err)
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			writeDetail(w, http.StatusNotFound, "Recurso no encontrado")
			return
		}
		writeJSON(w, http.StatusOK, models.CatalogItem{ID: id, Nombre: in.Nombre})
	}
}

func (s *Server) handleDeleteCatalog(tipo string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		res, err := s.DB.Exec(`DELETE FROM catalog_items WHERE id = ? AND tipo = ?`, id, tipo)
		if err != nil {
			s.internalError(w, err)
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			writeDetail(w, http.StatusNotFound, "Recurso no encontrado")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
