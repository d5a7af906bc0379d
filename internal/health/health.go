// Package health provides HTTP health check and admin endpoints.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/fd1az/quote-engine/internal/delay"
	"github.com/fd1az/quote-engine/internal/logger"
)

// Status represents the health check response.
type Status struct {
	Status    string           `json:"status"`
	Checks    map[string]Check `json:"checks"`
	Version   string           `json:"version,omitempty"`
	Timestamp string           `json:"timestamp"`
}

// Check represents an individual health check.
type Check struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// CheckFunc is a function that performs a health check.
type CheckFunc func(ctx context.Context) (bool, string)

// DelayOverrides is the writable side of the live delay store.
type DelayOverrides interface {
	Set(scope delay.Scope, key string, value any)
	Delete(scope delay.Scope, key string)
}

// Server provides health check HTTP endpoints.
type Server struct {
	port      int
	version   string
	logger    logger.LoggerInterface
	overrides DelayOverrides
	checks    map[string]CheckFunc
	mu        sync.RWMutex
	server    *http.Server
}

// NewServer creates a new health check server. overrides may be nil, in
// which case the admin routes are not mounted.
func NewServer(port int, version string, overrides DelayOverrides, log logger.LoggerInterface) *Server {
	return &Server{
		port:      port,
		version:   version,
		logger:    log,
		overrides: overrides,
		checks:    make(map[string]CheckFunc),
	}
}

// RegisterCheck registers a health check function.
func (s *Server) RegisterCheck(name string, check CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks[name] = check
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.HandleFunc("GET /live", s.handleLive)

	if s.overrides != nil {
		mux.HandleFunc("PUT /admin/delays/{scope}", s.handleSetDelay)
		mux.HandleFunc("PUT /admin/delays/{scope}/{key}", s.handleSetDelay)
		mux.HandleFunc("DELETE /admin/delays/{scope}", s.handleDeleteDelay)
		mux.HandleFunc("DELETE /admin/delays/{scope}/{key}", s.handleDeleteDelay)
	}
	return mux
}

// Start starts the health check server.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(context.Background(), "health server failed", "port", s.port, "error", err)
		}
	}()

	return nil
}

// Stop gracefully stops the health check server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) snapshot() map[string]CheckFunc {
	s.mu.RLock()
	defer s.mu.RUnlock()
	checks := make(map[string]CheckFunc, len(s.checks))
	for k, v := range s.checks {
		checks[k] = v
	}
	return checks
}

// handleHealth returns full health status with all checks.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := Status{
		Status:    "ok",
		Checks:    make(map[string]Check),
		Version:   s.version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	allHealthy := true
	for name, check := range s.snapshot() {
		healthy, msg := check(ctx)
		status.Checks[name] = Check{
			Healthy: healthy,
			Message: msg,
		}
		if !healthy {
			allHealthy = false
		}
	}

	code := http.StatusOK
	if !allHealthy {
		status.Status = "degraded"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(status)
}

// handleReady returns whether the service is ready to receive traffic.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	for _, check := range s.snapshot() {
		if healthy, _ := check(ctx); !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("not ready"))
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}

// handleLive returns whether the service is alive (simple liveness probe).
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("alive"))
}

type delayBody struct {
	Value any `json:"value"`
}

// handleSetDelay stores a raw override; the policy decides at lookup time
// whether the value is usable.
func (s *Server) handleSetDelay(w http.ResponseWriter, r *http.Request) {
	scope, ok := parseScope(r.PathValue("scope"))
	if !ok {
		http.Error(w, "unknown scope", http.StatusNotFound)
		return
	}

	var body delayBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Value == nil {
		http.Error(w, "body must be {\"value\": <milliseconds>}", http.StatusBadRequest)
		return
	}

	key := r.PathValue("key")
	s.overrides.Set(scope, key, body.Value)
	s.logger.Info(r.Context(), "delay override set", "scope", scope, "key", key, "value", body.Value)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteDelay(w http.ResponseWriter, r *http.Request) {
	scope, ok := parseScope(r.PathValue("scope"))
	if !ok {
		http.Error(w, "unknown scope", http.StatusNotFound)
		return
	}

	key := r.PathValue("key")
	s.overrides.Delete(scope, key)
	s.logger.Info(r.Context(), "delay override removed", "scope", scope, "key", key)
	w.WriteHeader(http.StatusNoContent)
}

func parseScope(s string) (delay.Scope, bool) {
	switch scope := delay.Scope(s); scope {
	case delay.ScopeCEX, delay.ScopeDEX, delay.ScopeToken, delay.ScopeBatch, delay.ScopeTimeout:
		return scope, true
	}
	return "", false
}
