// Package server exposes the combination dashboard over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/KaramelBytes/medcombo/internal/logging"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const requestIDHeader = "X-Request-ID"

// Config holds listener settings.
type Config struct {
	Port int
}

// Server holds the router and HTTP listener.
type Server struct {
	cfg        Config
	httpServer *http.Server
	router     *mux.Router
	log        *slog.Logger
}

// New wires the API handler under /api.
func New(cfg Config, h *Handler) *Server {
	s := &Server{
		cfg:    cfg,
		router: mux.NewRouter(),
		log:    logging.New("server"),
	}
	s.router.Use(s.requestID)
	api := s.router.PathPrefix("/api").Subrouter()
	h.RegisterRoutes(api)
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Start begins listening for HTTP connections. It returns nil after Stop,
// including when Stop ran first.
func (s *Server) Start() error {
	s.log.Info("listening", "addr", fmt.Sprintf("http://localhost:%d", s.cfg.Port))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// requestID tags every response with an X-Request-ID, reusing the caller's when present.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		s.log.Debug("request", "method", r.Method, "path", r.URL.Path, "status", rec.status,
			"request_id", id, "duration", time.Since(start))
	})
}
