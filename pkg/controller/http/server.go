package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dakala/h5p-xapi/pkg/domain/model"
)

// StatementRecorder is the slice of the usecase layer the ingest endpoint
// needs.
type StatementRecorder interface {
	RecordStatement(ctx context.Context, raw []byte, userID *int64) (*model.Summary, error)
}

// ListenerSettings is what the browser-side listener fetches to decide
// which statements to forward.
type ListenerSettings struct {
	Debug               bool     `json:"debug"`
	CaptureAllTypes     bool     `json:"captureAllTypes"`
	CaptureAllowedTypes []string `json:"captureAllowedTypes"`
}

type Server struct {
	router           *chi.Mux
	recorder         StatementRecorder
	ingestToken      string
	listenerSettings ListenerSettings
	metricsHandler   http.Handler
	maxBodyBytes     int64
}

type Options func(*Server)

// WithIngestToken sets the shared secret the listener must present.
// Serving without a token rejects every ingest call.
func WithIngestToken(token string) Options {
	return func(s *Server) {
		s.ingestToken = token
	}
}

func WithListenerSettings(settings ListenerSettings) Options {
	return func(s *Server) {
		s.listenerSettings = settings
	}
}

// WithMetrics mounts the given handler on /metrics.
func WithMetrics(handler http.Handler) Options {
	return func(s *Server) {
		s.metricsHandler = handler
	}
}

// WithMaxBodyBytes caps the accepted statement payload size.
func WithMaxBodyBytes(n int64) Options {
	return func(s *Server) {
		s.maxBodyBytes = n
	}
}

func New(recorder StatementRecorder, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:       r,
		recorder:     recorder,
		maxBodyBytes: 1 << 20,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Route("/xapi", func(r chi.Router) {
		r.Get("/settings", listenerSettingsHandler(s.listenerSettings))

		r.Group(func(r chi.Router) {
			r.Use(ingestAuth(s.ingestToken))
			r.Post("/statement", statementHandler(s.recorder, s.maxBodyBytes))
		})
	})

	if s.metricsHandler != nil {
		r.Get("/metrics", s.metricsHandler.ServeHTTP)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
