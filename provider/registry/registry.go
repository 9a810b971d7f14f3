// Package registry holds the declarative list of identity providers.
// Each entry pairs an enablement predicate with a builder; the enabled
// set is computed once from configuration at process start, never per
// request.
package registry

import (
	identity "github.com/goliatone/go-identity"
	"github.com/goliatone/go-identity/provider"
	"github.com/goliatone/go-identity/provider/credentials"
	"github.com/goliatone/go-identity/provider/custom"
	"github.com/goliatone/go-identity/provider/email"
	"github.com/goliatone/go-identity/provider/github"
	"github.com/goliatone/go-identity/provider/gitlab"
	"github.com/goliatone/go-identity/provider/google"
)

// Registration declares a provider and the configuration that turns
// it on.
type Registration struct {
	Name    string
	Enabled func(cfg *identity.Config) bool
	Build   func(cfg *identity.Config) provider.Provider
}

// Registrations is the full provider catalog. Order is the order
// providers are presented to clients.
func Registrations() []Registration {
	return []Registration{
		{
			Name: "github",
			Enabled: func(cfg *identity.Config) bool {
				return cfg.GitHubClientID != "" && cfg.GitHubClientSecret != ""
			},
			Build: func(cfg *identity.Config) provider.Provider {
				return github.New(github.Config{
					ClientID:     cfg.GitHubClientID,
					ClientSecret: cfg.GitHubClientSecret,
				})
			},
		},
		{
			Name: "google",
			Enabled: func(cfg *identity.Config) bool {
				return cfg.GoogleClientID != "" && cfg.GoogleClientSecret != ""
			},
			Build: func(cfg *identity.Config) provider.Provider {
				return google.New(google.Config{
					ClientID:     cfg.GoogleClientID,
					ClientSecret: cfg.GoogleClientSecret,
				})
			},
		},
		{
			Name: "gitlab",
			Enabled: func(cfg *identity.Config) bool {
				return cfg.GitLabClientID != "" && cfg.GitLabClientSecret != ""
			},
			Build: func(cfg *identity.Config) provider.Provider {
				return gitlab.New(gitlab.Config{
					ClientID:     cfg.GitLabClientID,
					ClientSecret: cfg.GitLabClientSecret,
					BaseURL:      cfg.GitLabBaseURL,
					DisplayName:  cfg.GitLabName,
				})
			},
		},
		{
			Name: "custom",
			Enabled: func(cfg *identity.Config) bool {
				return cfg.CustomOAuthClientID != "" && cfg.CustomOAuthClientSecret != ""
			},
			Build: func(cfg *identity.Config) provider.Provider {
				return custom.New(custom.Config{
					ProviderName: cfg.CustomOAuthName,
					ClientID:     cfg.CustomOAuthClientID,
					ClientSecret: cfg.CustomOAuthClientSecret,
					Issuer:       cfg.CustomOAuthIssuer,
					AuthURL:      cfg.CustomOAuthAuthURL,
					TokenURL:     cfg.CustomOAuthTokenURL,
					UserInfoURL:  cfg.CustomOAuthUserInfoURL,
					Scopes:       cfg.CustomOAuthScopes,
					Paths: custom.FieldPaths{
						ID:    cfg.CustomOAuthIDPath,
						Name:  cfg.CustomOAuthNamePath,
						Email: cfg.CustomOAuthEmailPath,
						Image: cfg.CustomOAuthImagePath,
					},
				})
			},
		},
		{
			Name: "email",
			Enabled: func(cfg *identity.Config) bool {
				return cfg.SMTPFrom != ""
			},
			Build: func(cfg *identity.Config) provider.Provider {
				return email.New(cfg.SMTPFrom)
			},
		},
		{
			Name: "credentials",
			Enabled: func(cfg *identity.Config) bool {
				return cfg.CredentialsHostURL != "" && cfg.CredentialsAPIKey != ""
			},
			Build: func(cfg *identity.Config) provider.Provider {
				return credentials.New(credentials.Config{
					HostURL: cfg.CredentialsHostURL,
					APIKey:  cfg.CredentialsAPIKey,
				})
			},
		},
	}
}

// BuildEnabled evaluates the catalog against cfg and builds every
// enabled provider, in catalog order.
func BuildEnabled(cfg *identity.Config) []provider.Provider {
	var providers []provider.Provider
	for _, reg := range Registrations() {
		if reg.Enabled(cfg) {
			providers = append(providers, reg.Build(cfg))
		}
	}
	return providers
}
