package monitor

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRollingMetrics(t *testing.T) {
	body := `# HELP winprob_logloss_10m Rolling log loss
# TYPE winprob_logloss_10m gauge
winprob_logloss_10m 0.6421
winprob_brier_10m 0.2102
some_other_metric 42
`
	metrics, err := parseRollingMetrics(strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, 0.6421, metrics.LogLoss)
	assert.Equal(t, 0.2102, metrics.Brier)
}

func TestParseRollingMetricsWithLabels(t *testing.T) {
	body := `winprob_logloss_10m{league="NPB"} 0.55
winprob_brier_10m{league="NPB"} 0.19
`
	metrics, err := parseRollingMetrics(strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, 0.55, metrics.LogLoss)
	assert.Equal(t, 0.19, metrics.Brier)
}

func TestParseRollingMetricsMissingSeries(t *testing.T) {
	body := "winprob_logloss_10m 0.55\n"
	_, err := parseRollingMetrics(strings.NewReader(body))
	require.Error(t, err)
}

func TestHTTPMetricsSourceFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("winprob_logloss_10m 0.70\nwinprob_brier_10m 0.24\n"))
	}))
	defer server.Close()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	source := NewHTTPMetricsSource(server.URL, logger)

	metrics, err := source.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.70, metrics.LogLoss)
	assert.Equal(t, 0.24, metrics.Brier)
}

func TestHTTPMetricsSourceLogsFetchedSample(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("winprob_logloss_10m 0.61\nwinprob_brier_10m 0.21\n"))
	}))
	defer server.Close()

	logger := logrus.New()
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.SetLevel(logrus.DebugLevel)
	logger.SetFormatter(&logrus.JSONFormatter{})

	source := NewHTTPMetricsSource(server.URL, logger)
	_, err := source.Fetch(context.Background())
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, 0.61, entry["logloss"])
	assert.Equal(t, 0.21, entry["brier"])
}
