package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// WebhookNotifier posts a best-effort notification when a user is
// created. Failures are logged and never propagated to the caller.
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
	logger     Logger
}

// NewWebhookNotifier creates a notifier. An empty URL disables it.
func NewWebhookNotifier(url string, opts ...WebhookOption) *WebhookNotifier {
	n := &WebhookNotifier{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(n)
		}
	}

	return n
}

// WebhookOption configures the notifier.
type WebhookOption func(*WebhookNotifier)

// WithWebhookHTTPClient sets a custom HTTP client.
func WithWebhookHTTPClient(client *http.Client) WebhookOption {
	return func(n *WebhookNotifier) {
		if client != nil {
			n.httpClient = client
		}
	}
}

// WithWebhookLogger sets the logger.
func WithWebhookLogger(logger Logger) WebhookOption {
	return func(n *WebhookNotifier) {
		n.logger = normalizeLogger(logger)
	}
}

// NotifyUserCreated posts {"email": ...} to the configured URL. Intended
// to run detached from the surrounding request.
func (n *WebhookNotifier) NotifyUserCreated(ctx context.Context, email string) {
	if n == nil || n.url == "" {
		return
	}

	body, err := json.Marshal(map[string]string{"email": email})
	if err != nil {
		n.logger.Error("user created webhook: encode payload: %v", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		n.logger.Error("user created webhook: build request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		n.logger.Error("user created webhook: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		n.logger.Error("user created webhook: unexpected status %d", resp.StatusCode)
	}
}
