package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/ballpark-live/internal/liveparams"
)

type stubDB struct {
	err error
}

func (s *stubDB) HealthCheck(ctx context.Context) error { return s.err }

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func probe(t *testing.T, s *Server, path string) (int, ProbeResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)

	var resp ProbeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec.Code, resp
}

func TestLiveAlwaysOK(t *testing.T) {
	s := NewServer(Config{ServiceName: "ballpark-live", Logger: testLogger()})

	code, resp := probe(t, s, "/live")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "ballpark-live", resp.Service)
}

func TestHealthReportsBuildIdentity(t *testing.T) {
	s := NewServer(Config{
		ServiceName: "ballpark-live",
		Version:     "1.4.0",
		Commit:      "abc123",
		Logger:      testLogger(),
	})

	code, resp := probe(t, s, "/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "1.4.0", resp.Version)
	assert.Equal(t, "abc123", resp.Commit)
}

func TestReadyBeforeSetReadyFails(t *testing.T) {
	s := NewServer(Config{ServiceName: "ballpark-live", Logger: testLogger()})

	code, resp := probe(t, s, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "not_ready", resp.Checks["service"])
}

func TestReadyChecksAllDependencies(t *testing.T) {
	dir := t.TempDir()
	paramsPath := filepath.Join(dir, "live_params.json")
	require.NoError(t, os.WriteFile(paramsPath, []byte("{}"), 0o644))
	versionRoot := filepath.Join(dir, "versions")
	require.NoError(t, os.MkdirAll(versionRoot, 0o755))

	s := NewServer(Config{
		ServiceName: "ballpark-live",
		Logger:      testLogger(),
		DB:          &stubDB{},
		Params:      liveparams.NewStore(paramsPath, testLogger()),
		VersionRoot: versionRoot,
	})
	s.SetReady(true)

	code, resp := probe(t, s, "/ready")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", resp.Checks["service"])
	assert.Equal(t, "ok", resp.Checks["database"])
	assert.Equal(t, "ok", resp.Checks["live_params"])
	assert.Equal(t, "ok", resp.Checks["version_root"])
}

func TestReadyFailsOnBrokenDatabase(t *testing.T) {
	s := NewServer(Config{
		ServiceName: "ballpark-live",
		Logger:      testLogger(),
		DB:          &stubDB{err: errors.New("connection refused")},
	})
	s.SetReady(true)

	code, resp := probe(t, s, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, resp.Checks["database"], "error")
}

func TestReadyToleratesMissingParamsAndEmptyVersionRoot(t *testing.T) {
	dir := t.TempDir()
	s := NewServer(Config{
		ServiceName: "ballpark-live",
		Logger:      testLogger(),
		Params:      liveparams.NewStore(filepath.Join(dir, "missing.json"), testLogger()),
		VersionRoot: filepath.Join(dir, "versions"),
	})
	s.SetReady(true)

	// Missing params file means the estimator serves defaults; an absent
	// version root just means nothing was committed yet. Neither blocks.
	code, resp := probe(t, s, "/ready")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "defaults", resp.Checks["live_params"])
	assert.Equal(t, "empty", resp.Checks["version_root"])
}

func TestDefaultPortAvoidsAPIServer(t *testing.T) {
	t.Setenv("HEALTH_PORT", "")
	s := NewServer(Config{ServiceName: "ballpark-live", Logger: testLogger()})
	assert.Equal(t, "8081", s.port)
}
