// Package provider declares the identity providers the authentication
// library can be configured with. The registry is a declarative list of
// (predicate, builder) pairs evaluated once at process start.
package provider

import (
	"context"
	"time"
)

// Kind classifies how a provider authenticates.
type Kind string

const (
	// KindOAuth providers run an authorization-code handshake
	KindOAuth Kind = "oauth"
	// KindEmail providers sign users in via one-time email links
	KindEmail Kind = "email"
	// KindCredentials providers exchange credentials with an external host
	KindCredentials Kind = "credentials"
)

// Provider is an enabled identity provider.
type Provider interface {
	Name() string
	Kind() Kind
}

// OAuthProvider drives an external authorization-code flow.
type OAuthProvider interface {
	Provider

	// AuthCodeURL returns the URL to redirect users for authorization.
	AuthCodeURL(state string) string

	// Exchange trades an authorization code for an access token.
	Exchange(ctx context.Context, code string) (*Token, error)

	// UserInfo fetches the user's profile using the access token.
	UserInfo(ctx context.Context, token *Token) (*Profile, error)
}

// Token is an OAuth2 token response.
type Token struct {
	AccessToken  string
	TokenType    string
	RefreshToken string
	IDToken      string
	Scope        string
	ExpiresAt    time.Time
	Raw          map[string]any
}

// Profile is normalized user information from a provider.
type Profile struct {
	ProviderUserID string
	Provider       string
	Email          string
	EmailVerified  bool
	Name           string
	Image          string
	Raw            map[string]any
}
