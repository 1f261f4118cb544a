package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/kilka221/assistant/internal/infra/logging"
	"github.com/kilka221/assistant/internal/usecase"
)

// Server exposes the state engine to the out-of-process view layer.
// All rendering, styling and modal flows live in the client; this API
// is the only way the view may mutate session state.
type Server struct {
	identities usecase.IdentityUseCase
	sessions   usecase.SessionManager
	policies   map[string]string // lang -> disclaimer text
	auth       *AuthManager
	log        *zerolog.Logger
}

func NewServer(
	identities usecase.IdentityUseCase,
	sessions usecase.SessionManager,
	policies map[string]string,
	auth *AuthManager,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		identities: identities,
		sessions:   sessions,
		policies:   policies,
		auth:       auth,
		log:        logger,
	}
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(traceContext)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/policy", s.handlePolicy)

		r.Get("/identities", s.handleListIdentities)
		r.Post("/identities", s.handleCreateIdentity)
		r.Delete("/identities/{id}", s.handleDeleteIdentity)

		r.Post("/session/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)
			r.Get("/session", s.handleGetSession)
			r.Post("/session/logout", s.handleLogout)
			r.Post("/session/messages", s.handleSubmitMessage)
			r.Post("/session/story", s.handleActivateStory)
			r.Put("/session/profile", s.handleUpdateProfile)
			r.Post("/session/subscribe", s.handleSubscribe)
		})
	})
	return r
}

type ctxKey string

const ctxSession ctxKey = "session"

// traceContext carries the chi request id into the logging context so
// log lines from deeper layers correlate with the request.
func traceContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reqID := middleware.GetReqID(r.Context()); reqID != "" {
			r = r.WithContext(logging.WithTraceID(r.Context(), reqID))
		}
		next.ServeHTTP(w, r)
	})
}

// requireSession resolves the cookie to the active engine session.
// A valid token for a superseded or logged-out session still yields 401.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.auth.FromRequest(r)
		if err != nil {
			jsonError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		sess, err := s.sessions.Active(claims.IdentityID)
		if err != nil {
			jsonError(w, http.StatusUnauthorized, "session expired")
			return
		}
		ctx := logging.WithIdentityID(r.Context(), claims.IdentityID)
		ctx = context.WithValue(ctx, ctxSession, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(r *http.Request) *usecase.Session {
	s, _ := r.Context().Value(ctxSession).(*usecase.Session)
	return s
}
