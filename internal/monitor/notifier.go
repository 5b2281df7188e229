package monitor

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
)

// ReloadNotifier asks the serving process to drop its live params cache
// after a rollback. Notification failure is an operational alert, never
// fatal to the rollback itself.
type ReloadNotifier interface {
	NotifyReload(ctx context.Context) error
}

// HTTPReloadNotifier posts to the serving process's admin reload
// endpoint. The call retries with backoff so a transient network blip
// right after a rollback does not leave stale parameters cached.
type HTTPReloadNotifier struct {
	url    string
	client *retryablehttp.Client
	logger *logrus.Logger
}

// NewHTTPReloadNotifier creates a notifier targeting the given reload URL
func NewHTTPReloadNotifier(url string, logger *logrus.Logger) *HTTPReloadNotifier {
	client := retryablehttp.NewClient()
	client.RetryMax = 4
	client.RetryWaitMin = 250 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.Logger = nil

	return &HTTPReloadNotifier{
		url:    url,
		client: client,
		logger: logger,
	}
}

// NotifyReload posts the reload request
func (n *HTTPReloadNotifier) NotifyReload(ctx context.Context) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, n.url, nil)
	if err != nil {
		return fmt.Errorf("failed to build reload request: %w", err)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("reload notification failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("reload endpoint returned status %d", resp.StatusCode)
	}

	n.logger.WithField("url", n.url).Info("Serving process notified to reload live params")
	return nil
}
