package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/briangreenhill/polisci/internal/encyclopedia"
	"github.com/briangreenhill/polisci/internal/navigation"
)

type navRequest struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type navView struct {
	Tab     navigation.Tab    `json:"tab"`
	Depth   int               `json:"depth"`
	Overlay *navigation.Entry `json:"overlay"`
	Changed bool              `json:"changed"`
}

type overlayView struct {
	Overlay navigation.Entry    `json:"overlay"`
	Content encyclopedia.Result `json:"content"`
}

// stack returns the session's navigation stack, rebuilding it from the
// session snapshot when this process has not seen the session yet
func (s *Server) stack(ctx context.Context) *navigation.Stack {
	id := s.Sess.GetString(ctx, sessNavID)
	if id == "" {
		id = uuid.NewString()
		s.Sess.Put(ctx, sessNavID, id)
	}

	var saved *navigation.State
	if raw := s.Sess.GetBytes(ctx, sessNavState); len(raw) > 0 {
		var st navigation.State
		if err := json.Unmarshal(raw, &st); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("discarding unreadable navigation state")
		} else {
			saved = &st
		}
	}
	return s.Stacks.Load(id, saved)
}

func (s *Server) persist(ctx context.Context, st *navigation.Stack) {
	raw, err := json.Marshal(st.Snapshot())
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("encode navigation state")
		return
	}
	s.Sess.Put(ctx, sessNavState, raw)
}

func view(st *navigation.Stack, changed bool) navView {
	v := navView{Tab: st.Tab(), Depth: st.Len(), Changed: changed}
	if e, ok := st.Current(); ok {
		v.Overlay = &e
	}
	return v
}

func (s *Server) handleNavState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, view(s.stack(r.Context()), false))
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req navRequest
	if !s.decode(w, r, &req) {
		return
	}

	var payload navigation.Payload
	if kind, ok := navigation.ParseKind(req.Type); ok {
		p, err := navigation.DecodePayload(kind, req.Payload)
		if err != nil {
			s.fail(w, r, http.StatusBadRequest, "invalid payload for "+string(kind), err)
			return
		}
		payload = p
	}

	ctx := r.Context()
	st := s.stack(ctx)
	eff := st.Navigate(req.Type, payload)

	if eff.LoggedOut {
		s.logout(ctx)
		writeJSON(w, http.StatusOK, view(navigation.NewStack(), true))
		return
	}
	if eff.Changed {
		s.persist(ctx, st)
	}
	writeJSON(w, http.StatusOK, view(st, eff.Changed))
}

// handleOverlay resolves the visible overlay. A result that arrives after
// the stack changed is discarded with 409 so the client never shows
// content for an overlay the user already left.
func (s *Server) handleOverlay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	st := s.stack(ctx)
	entry, ok := st.Current()
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "no overlay open"})
		return
	}

	tok := st.Token()
	res, err := s.Content.Lookup(ctx, entry.Kind, entry.Payload)
	if err != nil {
		s.lookupFailed(w, r, err)
		return
	}
	if !st.Live(tok) {
		hlog.FromRequest(r).Info().Str("kind", string(entry.Kind)).Msg("discarding stale overlay content")
		writeJSON(w, http.StatusConflict, errorBody{Error: "navigation changed"})
		return
	}
	writeJSON(w, http.StatusOK, overlayView{Overlay: entry, Content: res})
}

func (s *Server) lookupFailed(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, encyclopedia.ErrUnknownKind):
		s.fail(w, r, http.StatusNotFound, "unknown entity kind", err)
	case errors.Is(err, navigation.ErrBadPayload):
		s.fail(w, r, http.StatusBadRequest, "invalid entity reference", err)
	case errors.Is(err, context.Canceled):
		s.fail(w, r, http.StatusServiceUnavailable, "request canceled", err)
	default:
		s.fail(w, r, http.StatusInternalServerError, "content lookup failed", err)
	}
}
