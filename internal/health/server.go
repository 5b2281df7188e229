// Package health serves the container probes for the win-probability
// daemon: liveness, build identity, and a readiness check covering the
// stats store, the live params file and the version store.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/ballpark-live/internal/liveparams"
)

// DatabaseChecker verifies the stats store connection is usable
type DatabaseChecker interface {
	HealthCheck(ctx context.Context) error
}

// Config holds the probe server wiring
type Config struct {
	ServiceName string
	Version     string
	Commit      string
	Port        string
	Logger      *logrus.Logger
	DB          DatabaseChecker   // nil when the daemon runs estimate-only
	Params      *liveparams.Store // live params file backing the estimator
	VersionRoot string            // version store root, checked for accessibility
}

// ProbeResponse is the JSON body shared by all probe endpoints
type ProbeResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Version   string            `json:"version,omitempty"`
	Commit    string            `json:"commit,omitempty"`
	Timestamp string            `json:"timestamp,omitempty"`
	Checks    map[string]string `json:"checks,omitempty"`
	Duration  string            `json:"duration,omitempty"`
}

// Server answers the probe endpoints on its own port
type Server struct {
	cfg    Config
	port   string
	server *http.Server
	mu     sync.RWMutex
	ready  bool
}

// NewServer creates a probe server. The port falls back to HEALTH_PORT,
// then 8081; the estimate API owns 8080.
func NewServer(cfg Config) *Server {
	port := cfg.Port
	if port == "" {
		port = os.Getenv("HEALTH_PORT")
	}
	if port == "" {
		port = "8081"
	}

	return &Server{cfg: cfg, port: port}
}

// SetReady marks the daemon as ready to take traffic
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// IsReady returns the manual readiness flag
func (s *Server) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Routes returns the probe handler
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/live", s.handleLive)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	return mux
}

// Start serves the probes in the background until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         ":" + s.port,
		Handler:      s.Routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if s.cfg.Logger != nil {
			s.cfg.Logger.WithFields(logrus.Fields{
				"port":    s.port,
				"service": s.cfg.ServiceName,
			}).Info("Health probe server starting")
		}
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.cfg.Logger != nil {
				s.cfg.Logger.WithError(err).Error("Health probe server error")
			}
		}
	}()

	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()

	return nil
}

// Shutdown gracefully stops the probe server
func (s *Server) Shutdown() error {
	if s.server == nil {
		return nil
	}
	if s.cfg.Logger != nil {
		s.cfg.Logger.Info("Health probe server shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// handleLive answers the kubernetes liveness probe
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeProbe(w, http.StatusOK, ProbeResponse{
		Status:  "ok",
		Service: s.cfg.ServiceName,
	})
}

// handleHealth reports build identity alongside basic liveness
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeProbe(w, http.StatusOK, ProbeResponse{
		Status:    "ok",
		Service:   s.cfg.ServiceName,
		Version:   s.cfg.Version,
		Commit:    s.cfg.Commit,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// handleReady runs the dependency checks. The estimate path serves
// defaults without a live params file and without a database, so those
// states report as degraded notes, not readiness failures; only a broken
// database connection or an unreadable path blocks traffic.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	checks := make(map[string]string)
	healthy := true

	if s.IsReady() {
		checks["service"] = "ok"
	} else {
		checks["service"] = "not_ready"
		healthy = false
	}

	if s.cfg.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := s.cfg.DB.HealthCheck(ctx); err != nil {
			checks["database"] = fmt.Sprintf("error: %v", err)
			healthy = false
		} else {
			checks["database"] = "ok"
		}
	}

	if s.cfg.Params != nil {
		checks["live_params"] = checkPath(s.cfg.Params.Path(), "defaults")
		if hasError(checks["live_params"]) {
			healthy = false
		}
	}

	if s.cfg.VersionRoot != "" {
		checks["version_root"] = checkPath(s.cfg.VersionRoot, "empty")
		if hasError(checks["version_root"]) {
			healthy = false
		}
	}

	resp := ProbeResponse{
		Service:  s.cfg.ServiceName,
		Checks:   checks,
		Duration: time.Since(start).String(),
	}

	if healthy {
		resp.Status = "ok"
		writeProbe(w, http.StatusOK, resp)
		return
	}
	resp.Status = "not_ready"
	writeProbe(w, http.StatusServiceUnavailable, resp)
}

// checkPath stats a dependency path. A missing path is the named benign
// state; any other stat failure is an error.
func checkPath(path, whenMissing string) string {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return whenMissing
		}
		return fmt.Sprintf("error: %v", err)
	}
	return "ok"
}

func hasError(check string) bool {
	return len(check) >= 5 && check[:5] == "error"
}

func writeProbe(w http.ResponseWriter, status int, resp ProbeResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
