// Package email implements the magic-link identity provider. The
// provider itself carries no transport logic; it marks email sign-in as
// enabled and records the sender address the mailer should use.
package email

import "github.com/goliatone/go-identity/provider"

// Provider implements provider.Provider for one-time email links.
type Provider struct {
	from string
}

// New creates a new email provider sending from the given address.
func New(from string) *Provider {
	return &Provider{from: from}
}

// Name implements provider.Provider.
func (p *Provider) Name() string { return "email" }

// Kind implements provider.Provider.
func (p *Provider) Kind() provider.Kind { return provider.KindEmail }

// From is the sender address for sign-in links.
func (p *Provider) From() string { return p.from }
