// Package monitor watches rolling production quality metrics and rolls
// the serving stack back to the prior model/config version on sustained
// regression.
package monitor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
)

// Metric series names expected on the production metrics endpoint
const (
	MetricLogLoss10m = "winprob_logloss_10m"
	MetricBrier10m   = "winprob_brier_10m"
)

// RollingMetrics is one sample of the trailing-window quality series
type RollingMetrics struct {
	LogLoss float64
	Brier   float64
}

// MetricsSource supplies the current rolling quality metrics
type MetricsSource interface {
	Fetch(ctx context.Context) (*RollingMetrics, error)
}

// HTTPMetricsSource scrapes a text metrics endpoint exposing `name value`
// lines, Prometheus-exposition style.
type HTTPMetricsSource struct {
	url    string
	client *retryablehttp.Client
	logger *logrus.Logger
}

// NewHTTPMetricsSource creates a source scraping the given URL
func NewHTTPMetricsSource(url string, logger *logrus.Logger) *HTTPMetricsSource {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.Logger = nil

	return &HTTPMetricsSource{
		url:    url,
		client: client,
		logger: logger,
	}
}

// Fetch scrapes and parses the two rolling series. Both must be present;
// a missing series is an error so the tick counts as no-data rather than
// reading a stale zero as perfect quality.
func (s *HTTPMetricsSource) Fetch(ctx context.Context) (*RollingMetrics, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build metrics request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("metrics endpoint unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("metrics endpoint returned status %d", resp.StatusCode)
	}

	sample, err := parseRollingMetrics(resp.Body)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"logloss": sample.LogLoss,
		"brier":   sample.Brier,
	}).Debug("Rolling quality metrics fetched")

	return sample, nil
}

// parseRollingMetrics scans `name value` pairs, ignoring comments and
// series it does not know about
func parseRollingMetrics(r io.Reader) (*RollingMetrics, error) {
	var (
		metrics     RollingMetrics
		haveLogLoss bool
		haveBrier   bool
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		value, err := strconv.ParseFloat(fields[len(fields)-1], 64)
		if err != nil {
			continue
		}

		// Labels may follow the name; match on the bare series name
		name := fields[0]
		if idx := strings.IndexByte(name, '{'); idx >= 0 {
			name = name[:idx]
		}

		switch name {
		case MetricLogLoss10m:
			metrics.LogLoss = value
			haveLogLoss = true
		case MetricBrier10m:
			metrics.Brier = value
			haveBrier = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan metrics body: %w", err)
	}

	if !haveLogLoss || !haveBrier {
		return nil, fmt.Errorf("metrics endpoint missing required series %s/%s", MetricLogLoss10m, MetricBrier10m)
	}
	return &metrics, nil
}
