// Package credentials implements the credentials identity provider. It
// does not authenticate locally: the submitted credentials are forwarded
// to an external verification host and the returned payload becomes the
// user profile.
package credentials

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goliatone/go-identity/provider"
)

// apiKeyHeader carries the shared secret on verification requests.
const apiKeyHeader = "X-API-Key"

// Config holds the external verification host settings.
type Config struct {
	HostURL string
	APIKey  string

	HTTPClient *http.Client
}

// Provider implements provider.Provider for credential sign-in.
type Provider struct {
	config     Config
	httpClient *http.Client
}

// New creates a new credentials provider.
func New(cfg Config) *Provider {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &Provider{
		config:     cfg,
		httpClient: client,
	}
}

// Name implements provider.Provider.
func (p *Provider) Name() string { return "credentials" }

// Kind implements provider.Provider.
func (p *Provider) Kind() provider.Kind { return provider.KindCredentials }

// Verify forwards the submitted credential fields to the external host.
// A non-200 response means the credentials were rejected.
func (p *Provider) Verify(ctx context.Context, fields map[string]string) (*provider.Profile, error) {
	payload, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.HostURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, p.config.APIKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("credentials: verification failed with status %d", resp.StatusCode)
	}

	var user credentialsUser
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("credentials: decode verification response: %w", err)
	}
	if user.ID == "" {
		return nil, fmt.Errorf("credentials: verification response is missing an id")
	}

	return &provider.Profile{
		ProviderUserID: user.ID,
		Provider:       p.Name(),
		Email:          user.Email,
		EmailVerified:  user.Email != "",
		Name:           user.Name,
		Image:          user.Image,
	}, nil
}

type credentialsUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Image string `json:"image"`
}
