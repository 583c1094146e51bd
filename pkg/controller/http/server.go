package http

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/riskdeck/pkg/domain/model"
	"github.com/secmon-lab/riskdeck/pkg/usecase"
	"github.com/secmon-lab/riskdeck/pkg/utils/logging"
)

// DefaultMaxUploadSize bounds the size of an uploaded workbook
const DefaultMaxUploadSize int64 = 32 << 20

// SessionUseCase is the part of the session use case the API needs
type SessionUseCase interface {
	Open(ctx context.Context, name string, r io.Reader) (*model.Session, error)
	Get(ctx context.Context, id model.SessionID) (*model.Session, error)
	Portfolio(ctx context.Context, id model.SessionID) (*usecase.Portfolio, error)
	List(ctx context.Context) ([]*model.Session, error)
	Close(ctx context.Context, id model.SessionID) error
}

type Server struct {
	router        *chi.Mux
	sessions      SessionUseCase
	registry      *model.SchemaRegistry
	maxUploadSize int64
}

type Options func(*Server)

// WithSchemaRegistry sets the workbook layout reported by /api/schemas
func WithSchemaRegistry(registry *model.SchemaRegistry) Options {
	return func(s *Server) {
		s.registry = registry
	}
}

// WithMaxUploadSize sets the largest accepted workbook upload in bytes
func WithMaxUploadSize(n int64) Options {
	return func(s *Server) {
		s.maxUploadSize = n
	}
}

func New(sessions SessionUseCase, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:        r,
		sessions:      sessions,
		registry:      model.DefaultSchemaRegistry(),
		maxUploadSize: DefaultMaxUploadSize,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/schemas", schemasHandler(s.registry))

		r.Route("/sessions", func(r chi.Router) {
			r.With(limitBody(s.maxUploadSize)).Post("/", openSessionHandler(s.sessions, s.maxUploadSize))
			r.Get("/", listSessionsHandler(s.sessions))

			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", getSessionHandler(s.sessions))
				r.Delete("/", closeSessionHandler(s.sessions))
				r.Get("/summary", summaryHandler(s.sessions))
				r.Get("/risks", risksHandler(s.sessions))
				r.Get("/profile", profileHandler(s.sessions))
				r.Get("/simulate", simulateHandler(s.sessions))
				r.Get("/indicators", indicatorsHandler(s.sessions))
				r.Get("/findings", findingsHandler(s.sessions))
			})
		})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.From(r.Context()).Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
