// Package gitlab implements the GitLab identity provider. It is the
// one provider exposing group membership, consumed by the sign-in
// pipeline's required-groups stage.
package gitlab

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-identity/provider"
)

// groupsPageSize is the fixed page size for group listing.
const groupsPageSize = 100

// nextPageHeader signals a further page when non-blank.
const nextPageHeader = "X-Next-Page"

// Config holds GitLab OAuth configuration. BaseURL supports self-hosted
// installations.
type Config struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
	BaseURL      string
	DisplayName  string
	Scopes       []string

	HTTPClient *http.Client
}

// DefaultScopes returns the default GitLab scopes.
func DefaultScopes() []string {
	return []string{"read_api"}
}

// Provider implements provider.OAuthProvider for GitLab.
type Provider struct {
	config     Config
	httpClient *http.Client
}

// New creates a new GitLab provider.
func New(cfg Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://gitlab.com"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = DefaultScopes()
	}

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
func (p *Provider) Name() string { return "gitlab" }

// Kind implements provider.Provider.
func (p *Provider) Kind() provider.Kind { return provider.KindOAuth }

// DisplayName is the configured human-readable provider label.
func (p *Provider) DisplayName() string {
	if p.config.DisplayName != "" {
		return p.config.DisplayName
	}
	return "GitLab"
}

// AuthCodeURL implements provider.OAuthProvider.
func (p *Provider) AuthCodeURL(state string) string {
	params := url.Values{
		"client_id":     {p.config.ClientID},
		"redirect_uri":  {p.config.CallbackURL},
		"response_type": {"code"},
		"scope":         {strings.Join(p.config.Scopes, " ")},
		"state":         {state},
	}
	return p.config.BaseURL + "/oauth/authorize?" + params.Encode()
}

// Exchange implements provider.OAuthProvider.
func (p *Provider) Exchange(ctx context.Context, code string) (*provider.Token, error) {
	data := url.Values{
		"client_id":     {p.config.ClientID},
		"client_secret": {p.config.ClientSecret},
		"code":          {code},
		"grant_type":    {"authorization_code"},
		"redirect_uri":  {p.config.CallbackURL},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.BaseURL+"/oauth/token", strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var tokenResp tokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, fmt.Errorf("gitlab: decode token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || tokenResp.Error != "" {
		return nil, fmt.Errorf("gitlab: token exchange failed: %s %s", tokenResp.Error, tokenResp.ErrorDesc)
	}
	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("gitlab: missing access token")
	}

	token := &provider.Token{
		AccessToken:  tokenResp.AccessToken,
		TokenType:    tokenResp.TokenType,
		RefreshToken: tokenResp.RefreshToken,
		Scope:        tokenResp.Scope,
	}
	if tokenResp.ExpiresIn > 0 {
		token.ExpiresAt = time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	}

	return token, nil
}

// UserInfo implements provider.OAuthProvider.
func (p *Provider) UserInfo(ctx context.Context, token *provider.Token) (*provider.Profile, error) {
	body, _, err := p.get(ctx, p.config.BaseURL+"/api/v4/user", token.AccessToken)
	if err != nil {
		return nil, err
	}

	var user gitlabUser
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("gitlab: decode user response: %w", err)
	}

	return &provider.Profile{
		ProviderUserID: strconv.FormatInt(user.ID, 10),
		Provider:       p.Name(),
		Email:          user.Email,
		EmailVerified:  user.ConfirmedAt != "",
		Name:           user.Name,
		Image:          user.AvatarURL,
	}, nil
}

// ListGroups pages through the authenticated user's groups, following
// the X-Next-Page header until no further page is indicated. It returns
// the flat list of group full paths.
func (p *Provider) ListGroups(ctx context.Context, accessToken string) ([]string, error) {
	var names []string

	page := "1"
	for page != "" {
		endpoint := fmt.Sprintf("%s/api/v4/groups?per_page=%d&page=%s", p.config.BaseURL, groupsPageSize, url.QueryEscape(page))

		body, header, err := p.get(ctx, endpoint, accessToken)
		if err != nil {
			return nil, err
		}

		var groups []gitlabGroup
		if err := json.Unmarshal(body, &groups); err != nil {
			return nil, fmt.Errorf("gitlab: decode groups response: %w", err)
		}

		for _, group := range groups {
			names = append(names, group.FullPath)
		}

		page = strings.TrimSpace(header.Get(nextPageHeader))
	}

	return names, nil
}

func (p *Provider) get(ctx context.Context, endpoint, accessToken string) ([]byte, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("gitlab: request to %s failed with status %d", endpoint, resp.StatusCode)
	}

	return body, resp.Header, nil
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
	ExpiresIn    int64  `json:"expires_in"`
	Error        string `json:"error"`
	ErrorDesc    string `json:"error_description"`
}

type gitlabUser struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	AvatarURL   string `json:"avatar_url"`
	ConfirmedAt string `json:"confirmed_at"`
}

type gitlabGroup struct {
	ID       int64  `json:"id"`
	FullPath string `json:"full_path"`
}
