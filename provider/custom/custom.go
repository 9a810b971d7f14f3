// Package custom implements a configurable OAuth/OIDC provider. Profile
// fields are extracted from the userinfo document (or the id_token
// claims) through dot-separated field paths, so arbitrary identity
// hosts can be mapped without code changes.
package custom

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/goliatone/go-identity/provider"
)

// FieldPaths maps profile attributes to dot-separated paths into the
// userinfo document.
type FieldPaths struct {
	ID    string
	Name  string
	Email string
	Image string
}

// DefaultFieldPaths follow the standard OIDC claim names.
func DefaultFieldPaths() FieldPaths {
	return FieldPaths{
		ID:    "sub",
		Name:  "name",
		Email: "email",
		Image: "picture",
	}
}

// Config holds the custom provider configuration. When UserInfoURL is
// empty the profile is read from the id_token, validated against the
// issuer's JWKS.
type Config struct {
	ProviderName string
	ClientID     string
	ClientSecret string
	CallbackURL  string
	Issuer       string
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
	JWKSURL      string
	Scopes       []string
	Paths        FieldPaths

	HTTPClient *http.Client
}

// Provider implements provider.OAuthProvider for a custom identity host.
type Provider struct {
	config     Config
	httpClient *http.Client
	jwks       *keyfunc.JWKS
}

// New creates a new custom provider.
func New(cfg Config) *Provider {
	if cfg.ProviderName == "" {
		cfg.ProviderName = "custom"
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{"openid", "email", "profile"}
	}
	if cfg.Paths == (FieldPaths{}) {
		cfg.Paths = DefaultFieldPaths()
	}
	if cfg.Issuer != "" {
		issuer := strings.TrimRight(cfg.Issuer, "/")
		if cfg.AuthURL == "" {
			cfg.AuthURL = issuer + "/authorize"
		}
		if cfg.TokenURL == "" {
			cfg.TokenURL = issuer + "/oauth/token"
		}
		if cfg.JWKSURL == "" {
			cfg.JWKSURL = issuer + "/.well-known/jwks.json"
		}
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
func (p *Provider) Name() string { return p.config.ProviderName }

// Kind implements provider.Provider.
func (p *Provider) Kind() provider.Kind { return provider.KindOAuth }

// AuthCodeURL implements provider.OAuthProvider.
func (p *Provider) AuthCodeURL(state string) string {
	params := url.Values{
		"client_id":     {p.config.ClientID},
		"redirect_uri":  {p.config.CallbackURL},
		"response_type": {"code"},
		"scope":         {strings.Join(p.config.Scopes, " ")},
		"state":         {state},
	}
	return p.config.AuthURL + "?" + params.Encode()
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

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%s: decode token response: %w", p.Name(), err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: token exchange failed with status %d", p.Name(), resp.StatusCode)
	}

	accessToken, _ := raw["access_token"].(string)
	if accessToken == "" {
		return nil, fmt.Errorf("%s: missing access token", p.Name())
	}

	token := &provider.Token{
		AccessToken: accessToken,
		Raw:         raw,
	}
	if s, ok := raw["token_type"].(string); ok {
		token.TokenType = s
	}
	if s, ok := raw["refresh_token"].(string); ok {
		token.RefreshToken = s
	}
	if s, ok := raw["id_token"].(string); ok {
		token.IDToken = s
	}
	if s, ok := raw["scope"].(string); ok {
		token.Scope = s
	}
	if expiresIn, ok := raw["expires_in"].(float64); ok && expiresIn > 0 {
		token.ExpiresAt = time.Now().Add(time.Duration(expiresIn) * time.Second)
	}

	return token, nil
}

// UserInfo implements provider.OAuthProvider.
func (p *Provider) UserInfo(ctx context.Context, token *provider.Token) (*provider.Profile, error) {
	var doc map[string]any
	var err error

	if p.config.UserInfoURL != "" {
		doc, err = p.fetchUserInfo(ctx, token.AccessToken)
	} else {
		doc, err = p.claimsFromIDToken(token.IDToken)
	}
	if err != nil {
		return nil, err
	}

	id := stringAtPath(doc, p.config.Paths.ID)
	if id == "" {
		return nil, fmt.Errorf("%s: profile is missing %q", p.Name(), p.config.Paths.ID)
	}

	return &provider.Profile{
		ProviderUserID: id,
		Provider:       p.Name(),
		Email:          stringAtPath(doc, p.config.Paths.Email),
		Name:           stringAtPath(doc, p.config.Paths.Name),
		Image:          stringAtPath(doc, p.config.Paths.Image),
		Raw:            doc,
	}, nil
}

func (p *Provider) fetchUserInfo(ctx context.Context, accessToken string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.UserInfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

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
		return nil, fmt.Errorf("%s: userinfo request failed with status %d", p.Name(), resp.StatusCode)
	}

	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%s: decode userinfo response: %w", p.Name(), err)
	}

	return doc, nil
}

// claimsFromIDToken validates the id_token signature against the
// issuer's JWKS and returns its claims.
func (p *Provider) claimsFromIDToken(idToken string) (map[string]any, error) {
	if idToken == "" {
		return nil, fmt.Errorf("%s: no userinfo endpoint and no id_token", p.Name())
	}

	if p.jwks == nil {
		if p.config.JWKSURL == "" {
			return nil, fmt.Errorf("%s: no JWKS URL configured", p.Name())
		}
		jwks, err := keyfunc.Get(p.config.JWKSURL, keyfunc.Options{
			Client: p.httpClient,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: load JWKS: %w", p.Name(), err)
		}
		p.jwks = jwks
	}

	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(idToken, claims, p.jwks.Keyfunc); err != nil {
		return nil, fmt.Errorf("%s: validate id_token: %w", p.Name(), err)
	}

	return map[string]any(claims), nil
}

// stringAtPath walks a dot-separated path into the document.
func stringAtPath(doc map[string]any, path string) string {
	if path == "" {
		return ""
	}

	parts := strings.Split(path, ".")
	current := any(doc)

	for _, part := range parts {
		node, ok := current.(map[string]any)
		if !ok {
			return ""
		}
		current, ok = node[part]
		if !ok {
			return ""
		}
	}

	switch v := current.(type) {
	case string:
		return v
	case float64:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", v), "0"), ".")
	default:
		return ""
	}
}
