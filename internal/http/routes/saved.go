package routes

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	appmw "github.com/briangreenhill/polisci/internal/http/middleware"
	"github.com/briangreenhill/polisci/internal/navigation"
	"github.com/briangreenhill/polisci/internal/saved"
)

type saveRequest struct {
	Kind    string          `json:"kind"`
	Title   string          `json:"title"`
	Payload json.RawMessage `json:"payload"`
}

func (s *Server) handleListSaved(w http.ResponseWriter, r *http.Request) {
	userID, _ := appmw.UserID(r.Context())
	items, err := s.Saved.List(r.Context(), userID)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, "could not load saved items", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if !s.decode(w, r, &req) {
		return
	}
	kind, ok := navigation.ParseKind(req.Kind)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "unknown entity kind"})
		return
	}
	p, err := navigation.DecodePayload(kind, req.Payload)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, "invalid entity reference", err)
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = fmt.Sprint(p)
	}
	// store the normalized payload
	raw, err := json.Marshal(p)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, "could not save item", err)
		return
	}

	userID, _ := appmw.UserID(r.Context())
	item, err := s.Saved.Save(r.Context(), saved.Item{
		UserID:  userID,
		Kind:    string(kind),
		Title:   title,
		Payload: raw,
	})
	switch {
	case errors.Is(err, saved.ErrInvalid):
		s.fail(w, r, http.StatusBadRequest, "invalid saved item", err)
	case err != nil:
		s.fail(w, r, http.StatusInternalServerError, "could not save item", err)
	default:
		writeJSON(w, http.StatusCreated, item)
	}
}

func (s *Server) handleDeleteSaved(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid id"})
		return
	}

	userID, _ := appmw.UserID(r.Context())
	switch err := s.Saved.Delete(r.Context(), userID, id); {
	case errors.Is(err, saved.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "saved item not found"})
	case err != nil:
		s.fail(w, r, http.StatusInternalServerError, "could not delete item", err)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}
