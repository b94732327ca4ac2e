// Package server is the HTTP front door: a minimal go-chi router
// exposing the single Execute operation over pkg/corehandler, plus a
// health endpoint that reports whether the sandbox interpreter is
// reachable.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kadirpekel/agentcore/pkg/coreerr"
	"github.com/kadirpekel/agentcore/pkg/corehandler"
)

// HealthChecker is the subset of sandbox.Adapter the health endpoint uses.
type HealthChecker interface {
	HealthCheck() bool
}

// Server wraps a corehandler.Handler in an HTTP API.
type Server struct {
	handler *corehandler.Handler
	sandbox HealthChecker
	logger  *slog.Logger
	router  chi.Router
	httpSrv *http.Server
}

func New(addr string, handler *corehandler.Handler, sandbox HealthChecker, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{handler: handler, sandbox: sandbox, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Post("/v1/execute", s.handleExecute)
	r.Get("/healthz", s.handleHealth)
	s.router = r

	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// ListenAndServe blocks until the server stops or an error occurs.
func (s *Server) ListenAndServe() error {
	return s.httpSrv.ListenAndServe()
}

// Shutdown gracefully drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req corehandler.ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		kind := string(coreerr.KindValidation)
		writeJSON(w, corehandler.StatusForKind(kind), corehandler.ExecuteResponse{
			Success: false,
			Error:   &corehandler.ExecuteError{Kind: kind, Message: "invalid JSON body: " + err.Error()},
		})
		return
	}

	resp := s.handler.Execute(r.Context(), req)

	status := http.StatusOK
	if !resp.Success && resp.Error != nil {
		status = corehandler.StatusForKind(resp.Error.Kind)
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	healthy := s.sandbox == nil || s.sandbox.HealthCheck()
	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]bool{"healthy": healthy})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
