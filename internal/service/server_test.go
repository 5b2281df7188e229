package service

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/ballpark-live/internal/config"
	"github.com/yourusername/ballpark-live/internal/liveparams"
	"github.com/yourusername/ballpark-live/internal/models"
	"github.com/yourusername/ballpark-live/internal/winprob"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	// nonexistent path: the store serves the built-in defaults
	store := liveparams.NewStore(filepath.Join(t.TempDir(), "live_params.json"), log)
	estimator := winprob.NewEstimator(store, log)

	return NewServer(config.ServerConfig{Address: ":0"}, estimator, store, nil, log)
}

func postJSON(t *testing.T, handler http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestEstimateEndpoint(t *testing.T) {
	server := newTestServer(t)
	handler := server.Routes()

	rec := postJSON(t, handler, "/v1/estimate", EstimateRequest{
		GameID:   "2026-07-01-HAN-YOG",
		Inning:   7,
		Outs:     1,
		PPregame: 0.55,
		PState:   0.70,
		Source:   "model",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var est models.Estimate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &est))
	assert.Equal(t, "2026-07-01-HAN-YOG", est.GameID)
	assert.Equal(t, models.PhaseLate, est.Phase)
	assert.Greater(t, est.PFinal, 0.0)
	assert.Less(t, est.PFinal, 1.0)
	// inning 7 puts more weight on the live state than the pregame prior
	assert.Greater(t, est.PMixed, 0.55)
}

func TestEstimateEndpointRejectsBadBody(t *testing.T) {
	server := newTestServer(t)
	handler := server.Routes()

	req := httptest.NewRequest(http.MethodPost, "/v1/estimate", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEstimateEndpointValidatesFields(t *testing.T) {
	server := newTestServer(t)
	handler := server.Routes()

	// outs out of range
	rec := postJSON(t, handler, "/v1/estimate", EstimateRequest{
		GameID:   "g1",
		Inning:   3,
		Outs:     5,
		PPregame: 0.5,
		PState:   0.5,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// missing game id
	rec = postJSON(t, handler, "/v1/estimate", EstimateRequest{
		Inning:   3,
		PPregame: 0.5,
		PState:   0.5,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEstimateEndpointMethodNotAllowed(t *testing.T) {
	server := newTestServer(t)
	handler := server.Routes()

	req := httptest.NewRequest(http.MethodGet, "/v1/estimate", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestReloadEndpoint(t *testing.T) {
	server := newTestServer(t)
	handler := server.Routes()

	rec := postJSON(t, handler, "/admin/reload", struct{}{})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "reloaded")
}
