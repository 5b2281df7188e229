// Package service exposes the live win-probability estimate API.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/ballpark-live/internal/config"
	"github.com/yourusername/ballpark-live/internal/liveparams"
	"github.com/yourusername/ballpark-live/internal/logger"
	"github.com/yourusername/ballpark-live/internal/metrics"
	"github.com/yourusername/ballpark-live/internal/models"
	"github.com/yourusername/ballpark-live/internal/stream"
	"github.com/yourusername/ballpark-live/internal/winprob"
)

// EstimateRequest is the request body for one live frame
type EstimateRequest struct {
	GameID     string   `json:"game_id" validate:"required"`
	Inning     int      `json:"inning" validate:"required,gte=1"`
	Outs       int      `json:"outs" validate:"gte=0,lte=2"`
	PPregame   float64  `json:"p_pregame" validate:"gte=0,lte=1"`
	PState     float64  `json:"p_state" validate:"gte=0,lte=1"`
	PPrev      *float64 `json:"p_prev,omitempty"`
	ScoreEvent bool     `json:"score_event"`
	Source     string   `json:"source" validate:"omitempty,oneof=model fallback"`
}

// errorResponse is the JSON error envelope
type errorResponse struct {
	Error string `json:"error"`
}

// Server serves the live estimate API, the admin reload endpoint and the
// websocket estimate stream
type Server struct {
	cfg         config.ServerConfig
	estimator   *winprob.Estimator
	params      *liveparams.Store
	hub         *stream.Hub
	validate    *validator.Validate
	estimateLog *logger.EstimateLogger
	logger      *logrus.Logger
	httpServer  *http.Server
}

// NewServer wires the estimate API. hub may be nil when streaming is disabled.
func NewServer(cfg config.ServerConfig, estimator *winprob.Estimator, params *liveparams.Store, hub *stream.Hub, log *logrus.Logger) *Server {
	return &Server{
		cfg:         cfg,
		estimator:   estimator,
		params:      params,
		hub:         hub,
		validate:    validator.New(),
		estimateLog: logger.NewEstimateLogger(log),
		logger:      log,
	}
}

// Routes returns the HTTP handler for the API surface
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/estimate", s.handleEstimate)
	mux.HandleFunc("/admin/reload", s.handleReload)
	if s.hub != nil {
		mux.Handle("/v1/stream", s.hub)
	}
	return mux
}

// Start runs the HTTP server until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	readTimeout := time.Duration(s.cfg.ReadTimeoutSeconds) * time.Second
	writeTimeout := time.Duration(s.cfg.WriteTimeoutSeconds) * time.Second
	if readTimeout == 0 {
		readTimeout = 5 * time.Second
	}
	if writeTimeout == 0 {
		// the websocket stream holds its connection past this timeout;
		// net/http only applies it to plain handlers' response writes
		writeTimeout = 10 * time.Second
	}

	s.httpServer = &http.Server{
		Addr:         s.cfg.Address,
		Handler:      s.Routes(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("address", s.cfg.Address).Info("Estimate API listening")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("estimate API failed: %w", err)
	case <-ctx.Done():
		return s.Shutdown()
	}
}

// Shutdown gracefully stops the HTTP server and the stream hub
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.hub != nil {
		s.hub.Shutdown(ctx)
	}
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// handleEstimate computes one win-probability frame. The estimate path never
// fails on configuration or calibration problems; only malformed requests
// are rejected.
func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req EstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	est := s.estimator.Estimate(winprob.Frame{
		GameID:     req.GameID,
		Inning:     req.Inning,
		Outs:       req.Outs,
		PPregame:   req.PPregame,
		PState:     req.PState,
		PPrev:      req.PPrev,
		ScoreEvent: req.ScoreEvent,
		Source:     models.EstimateSource(req.Source),
	})
	elapsed := time.Since(start)

	metrics.RecordEstimate(elapsed.Seconds())
	s.estimateLog.LogEstimate(est.GameID, est.Inning, est.Outs, string(est.Phase),
		est.PMixed, est.PFinal, string(est.Confidence), float64(elapsed.Microseconds())/1000.0)

	if s.hub != nil {
		s.hub.Broadcast(est)
	}

	writeJSON(w, http.StatusOK, est)
}

// handleReload drops the live parameters cache so the next estimate re-reads
// the config file. Called by operators and by the rollback monitor.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	s.params.Invalidate()
	metrics.RecordParamsReload()
	s.estimateLog.LogParamsReload("admin_endpoint")

	writeJSON(w, http.StatusOK, map[string]string{"status": "reloaded"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
