// Package api exposes condition management and on-demand screening over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"SessionScreener/internal/activation"
	"SessionScreener/internal/catalog"
	"SessionScreener/internal/metrics"
	"SessionScreener/internal/screener"
)

// Server is the HTTP front end of the screener.
type Server struct {
	router     *mux.Router
	server     *http.Server
	pipeline   *screener.Pipeline
	activation *activation.Manager
	catalog    *catalog.Catalog
	metrics    *metrics.Registry
	universe   Universe
	loc        *time.Location
	now        func() time.Time
}

// Universe is the ticker list used when a request names none.
type Universe struct {
	Tickers  []string
	Selected []string
}

// Deps are the collaborators the handlers need.
type Deps struct {
	Pipeline   *screener.Pipeline
	Activation *activation.Manager
	Catalog    *catalog.Catalog
	Metrics    *metrics.Registry // nil disables /metrics
	Universe   Universe
	Location   *time.Location
}

// NewServer builds the router. The server listens on addr once Start is called.
func NewServer(addr string, d Deps) *Server {
	s := &Server{
		router:     mux.NewRouter(),
		pipeline:   d.Pipeline,
		activation: d.Activation,
		catalog:    d.Catalog,
		metrics:    d.Metrics,
		universe:   d.Universe,
		loc:        d.Location,
		now:        time.Now,
	}
	s.setupRoutes()
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.requestLoggingMiddleware)

	s.router.HandleFunc("/healthz", s.health).Methods(http.MethodGet)
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	s.router.HandleFunc("/conditions", s.listConditions).Methods(http.MethodGet)
	s.router.HandleFunc("/conditions", s.clearConditions).Methods(http.MethodDelete)
	s.router.HandleFunc("/conditions/{id:[0-9]+}", s.setCondition).Methods(http.MethodPut)

	s.router.HandleFunc("/screenings", s.runScreening).Methods(http.MethodPost)
	s.router.HandleFunc("/runs/latest", s.latestRun).Methods(http.MethodGet)

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, errors.New("not found"))
	})
}

// Handler returns the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

type requestIDKey struct{}

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.New().String()[:8]
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func (s *Server) requestLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapper, r)

		id, _ := r.Context().Value(requestIDKey{}).(string)
		log.Debug().
			Str("request_id", id).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapper.statusCode).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	log.Info().Str("addr", s.server.Addr).Msg("http server listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("shutting down http server")
	return s.server.Shutdown(ctx)
}
