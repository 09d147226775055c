package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	scs "github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/briangreenhill/polisci/internal/encyclopedia"
	appmw "github.com/briangreenhill/polisci/internal/http/middleware"
	"github.com/briangreenhill/polisci/internal/jobs"
	"github.com/briangreenhill/polisci/internal/navigation"
	"github.com/briangreenhill/polisci/internal/saved"
)

// Session keys
const (
	sessUserID   = "user_id"
	sessUserName = "user_name"
	sessNavID    = "nav_id"
	sessNavState = "nav_state"
)

const maxBodyBytes = 64 << 10

// Content is the encyclopedia surface the API serves
type Content interface {
	Lookup(ctx context.Context, kind navigation.Kind, p navigation.Payload) (encyclopedia.Result, error)
	Almanac(ctx context.Context, date time.Time) (encyclopedia.Content[encyclopedia.AlmanacEntry], error)
	Quiz(ctx context.Context, topic string, n int) (encyclopedia.Content[encyclopedia.Quiz], error)
	Dossier(ctx context.Context, subject string) (encyclopedia.Content[encyclopedia.Dossier], error)
}

type Server struct {
	Router  *chi.Mux
	Sess    *scs.SessionManager
	Content Content
	Saved   saved.Store
	Queue   jobs.Enqueuer // nil disables /prefetch
	Stacks  *navigation.Sessions
	Logger  zerolog.Logger
	now     func() time.Time
}

type ServerOptions struct {
	Sess    *scs.SessionManager
	Content Content
	Saved   saved.Store
	Queue   jobs.Enqueuer
	Logger  zerolog.Logger
}

func New(opts ServerOptions) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(hlog.NewHandler(opts.Logger))
	r.Use(hlog.RequestIDHandler("req_id", "X-Request-Id"))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(chimw.Recoverer)

	s := &Server{
		Router:  r,
		Sess:    opts.Sess,
		Content: opts.Content,
		Saved:   opts.Saved,
		Queue:   opts.Queue,
		Stacks:  navigation.NewSessions(navigation.WithIdleTimeout(sessionTTL(opts.Sess))),
		Logger:  opts.Logger,
		now:     time.Now,
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("ok")); err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("write health check response")
		}
	})

	r.Group(func(pr chi.Router) {
		pr.Use(s.sessionToContext)

		pr.Post("/login", s.handleLogin)
		pr.Post("/logout", s.handleLogout)

		pr.Get("/nav", s.handleNavState)
		pr.Post("/nav", s.handleNavigate)
		pr.Get("/nav/overlay", s.handleOverlay)

		pr.Get("/entities/{kind}/{id}", s.handleEntity)
		pr.Get("/almanac/{date}", s.handleAlmanac)
		pr.Get("/quiz/{topic}", s.handleQuiz)
		pr.Get("/dossier/{subject}", s.handleDossier)
		pr.Post("/prefetch", s.handlePrefetch)

		pr.Group(func(ar chi.Router) {
			ar.Use(appmw.RequireUser)
			ar.Get("/saved", s.handleListSaved)
			ar.Post("/saved", s.handleSave)
			ar.Delete("/saved/{id}", s.handleDeleteSaved)
		})
	})

	return s
}

// Handler returns the router wrapped with session loading
func (s *Server) Handler() http.Handler {
	return s.Sess.LoadAndSave(s.Router)
}

func (s *Server) sessionToContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := s.Sess.GetString(r.Context(), sessUserID); id != "" {
			r = r.WithContext(appmw.WithUserID(r.Context(), id))
			hlog.FromRequest(r).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("user_id", id)
			})
		}
		next.ServeHTTP(w, r)
	})
}

type loginRequest struct {
	Name string `json:"name"`
}

type userView struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decode(w, r, &req) {
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = "Guest"
	}

	if err := s.Sess.RenewToken(r.Context()); err != nil {
		s.fail(w, r, http.StatusInternalServerError, "could not start session", err)
		return
	}
	id := "guest-" + uuid.NewString()
	s.Sess.Put(r.Context(), sessUserID, id)
	s.Sess.Put(r.Context(), sessUserName, name)

	hlog.FromRequest(r).Info().Str("user_id", id).Msg("guest login")
	writeJSON(w, http.StatusOK, userView{UserID: id, Name: name})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// sessionTTL is how long a stack can sit untouched before its session
// has certainly expired
func sessionTTL(sm *scs.SessionManager) time.Duration {
	if sm.IdleTimeout > 0 && sm.IdleTimeout < sm.Lifetime {
		return sm.IdleTimeout
	}
	return sm.Lifetime
}

// logout clears the user and the navigation stack
func (s *Server) logout(ctx context.Context) {
	if id := s.Sess.GetString(ctx, sessNavID); id != "" {
		s.Stacks.Drop(id)
	}
	if err := s.Sess.Destroy(ctx); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("destroy session")
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// fail logs err and writes msg. err is never sent to the client.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, msg string, err error) {
	ev := hlog.FromRequest(r).Warn()
	if status >= http.StatusInternalServerError {
		ev = hlog.FromRequest(r).Error()
	}
	ev.Err(err).Int("status", status).Msg(msg)
	writeJSON(w, status, errorBody{Error: msg})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		s.fail(w, r, http.StatusBadRequest, "invalid request body", err)
		return false
	}
	return true
}
