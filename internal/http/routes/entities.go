package routes

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/hlog"

	"github.com/briangreenhill/polisci/internal/encyclopedia"
	"github.com/briangreenhill/polisci/internal/jobs"
	"github.com/briangreenhill/polisci/internal/navigation"
)

// pathParam returns the unescaped, trimmed URL parameter. chi routes on
// RawPath when it is set, so the segment is still escaped in that case.
func pathParam(r *http.Request, name string) (string, bool) {
	v := chi.URLParam(r, name)
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(v)
		if err != nil {
			return "", false
		}
		v = unescaped
	}
	return strings.TrimSpace(v), true
}

// handleEntity serves /entities/{kind}/{id}. Party takes ?country= and
// Reader takes ?author= alongside the id.
func (s *Server) handleEntity(w http.ResponseWriter, r *http.Request) {
	kind, ok := navigation.ParseKindNamespace(chi.URLParam(r, "kind"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "unknown entity kind"})
		return
	}

	id, ok := pathParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid entity id"})
		return
	}
	q := r.URL.Query()
	var p navigation.Payload
	switch kind {
	case navigation.KindParty:
		p = navigation.PartyRef{Name: id, Country: strings.TrimSpace(q.Get("country"))}
	case navigation.KindReader:
		p = navigation.ReaderRef{Title: id, Author: strings.TrimSpace(q.Get("author"))}
	default:
		p = navigation.Name(id)
	}

	res, err := s.Content.Lookup(r.Context(), kind, p)
	if err != nil {
		s.lookupFailed(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAlmanac(w http.ResponseWriter, r *http.Request) {
	raw, ok := pathParam(r, "date")
	day, err := encyclopedia.ParseDay(raw, s.now())
	if !ok || err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: encyclopedia.ErrBadDate.Error()})
		return
	}
	c, err := s.Content.Almanac(r.Context(), day)
	if err != nil {
		s.lookupFailed(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleQuiz(w http.ResponseWriter, r *http.Request) {
	topic, ok := pathParam(r, "topic")
	if !ok || topic == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "topic required"})
		return
	}
	n := 0
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "n must be a positive integer"})
			return
		}
		n = parsed
	}

	c, err := s.Content.Quiz(r.Context(), topic, n)
	if err != nil {
		s.lookupFailed(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDossier(w http.ResponseWriter, r *http.Request) {
	subject, ok := pathParam(r, "subject")
	if !ok || subject == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "subject required"})
		return
	}
	c, err := s.Content.Dossier(r.Context(), subject)
	if err != nil {
		s.lookupFailed(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type prefetchRequest struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

type prefetchView struct {
	Queued bool   `json:"queued"`
	TaskID string `json:"task_id,omitempty"`
}

func (s *Server) handlePrefetch(w http.ResponseWriter, r *http.Request) {
	if s.Queue == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "prefetch queue unavailable"})
		return
	}

	var req prefetchRequest
	if !s.decode(w, r, &req) {
		return
	}
	kind, ok := navigation.ParseKind(req.Kind)
	if !ok {
		kind, ok = navigation.ParseKindNamespace(req.Kind)
	}
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "unknown entity kind"})
		return
	}
	p, err := navigation.DecodePayload(kind, req.Payload)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, "invalid entity reference", err)
		return
	}

	info, err := jobs.EnqueuePrefetch(r.Context(), s.Queue, kind, p)
	switch {
	case errors.Is(err, asynq.ErrDuplicateTask):
		writeJSON(w, http.StatusAccepted, prefetchView{Queued: false})
	case err != nil:
		s.fail(w, r, http.StatusServiceUnavailable, "could not queue prefetch", err)
	default:
		hlog.FromRequest(r).Info().Str("task_id", info.ID).Str("queue", info.Queue).Msg("prefetch queued")
		writeJSON(w, http.StatusAccepted, prefetchView{Queued: true, TaskID: info.ID})
	}
}
