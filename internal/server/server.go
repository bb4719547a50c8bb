// Package server exposes the command boundary over HTTP on a unix socket so
// the launcher and editor programs share one backend process.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/atomicstack/tmux-prompts/internal/apperror"
	"github.com/atomicstack/tmux-prompts/internal/boundary"
)

const maxBodyBytes = 4 << 20

// ErrorResponse is the body of every failed command.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type commandFunc func(ctx context.Context, body []byte) (any, error)

// Server routes commands to a boundary implementation.
type Server struct {
	router   *chi.Mux
	commands map[string]commandFunc
	logger   zerolog.Logger
	shutdown chan struct{}
}

// New builds the router for cmds.
func New(cmds boundary.Commands, logger zerolog.Logger) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		logger:   logger,
		shutdown: make(chan struct{}),
	}
	s.commands = commandTable(cmds)
	s.setupRoutes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ShutdownRequested is closed once a client asks the daemon to stop.
func (s *Server) ShutdownRequested() <-chan struct{} {
	return s.shutdown
}

func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(requestLogger(s.logger))

	s.router.Route("/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/shutdown", s.handleShutdown)
		r.Post("/commands/{name}", s.handleCommand)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.logger, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleShutdown(w http.ResponseWriter, _ *http.Request) {
	select {
	case <-s.shutdown:
	default:
		close(s.shutdown)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	fn, ok := s.commands[name]
	if !ok {
		writeError(w, s.logger, apperror.NotFound("command", name))
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, s.logger, apperror.ValidationFailed("body", fmt.Sprintf("read body: %v", err)))
		return
	}
	result, err := fn(r.Context(), body)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if result == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, result)
}

// ListenUnix removes a stale socket file and listens on path.
func ListenUnix(path string) (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create socket directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		conn, derr := net.DialTimeout("unix", path, 200*time.Millisecond)
		if derr == nil {
			conn.Close()
			return nil, fmt.Errorf("daemon already listening on %s", path)
		}
		if rerr := os.Remove(path); rerr != nil {
			return nil, fmt.Errorf("remove stale socket: %w", rerr)
		}
	}
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", path, err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		ln.Close()
		return nil, fmt.Errorf("restrict socket permissions: %w", err)
	}
	return ln, nil
}

// Serve runs until ctx is cancelled or a shutdown is requested, then drains
// in-flight requests.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	case <-s.shutdown:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, logger zerolog.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperror.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, apperror.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperror.ErrConflict):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).Msg("command failed")
	}
	writeJSON(w, logger, status, ErrorResponse{Error: apperror.Kind(err), Message: err.Error()})
}
