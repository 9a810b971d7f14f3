// Package signin decides whether a single login attempt is allowed.
//
// The decision procedure is an ordered pipeline of independent stages.
// Each stage returns allow, deny, or an error with a distinct reason;
// denials are deliberately opaque to the caller, errors (rate limited,
// sign ups disabled) surface to the user as dedicated pages.
package signin

import (
	"context"

	identity "github.com/goliatone/go-identity"
)

// Attempt carries everything known about one sign-in attempt.
type Attempt struct {
	// Email of the user signing in
	Email string
	// Provider is the identity provider name for this attempt
	Provider string
	// HasAccount reports whether an external-identity payload is
	// present; without one the pipeline fails closed
	HasAccount bool
	// IsNewUser is the absence of a prior-creation marker on the
	// incoming user payload
	IsNewUser bool
	// RateLimited is set by the HTTP entry handler when the caller
	// exceeded the sign-in window
	RateLimited bool
	// AccessToken is the provider token, used for group lookups
	AccessToken string
	// UserID is set for returning users
	UserID string
	// ClientIP is the caller address the limiter keyed on
	ClientIP string
}

// Decision is the outcome of a single stage.
type Decision struct {
	Allowed bool
	Err     error
}

// Allow lets the attempt continue to the next stage.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny refuses the attempt without exposing the reason.
func Deny() Decision {
	return Decision{}
}

// Fail refuses the attempt with a reason that surfaces to the caller.
func Fail(err error) Decision {
	return Decision{Err: err}
}

// Stage is one predicate of the decision procedure.
type Stage interface {
	Name() string
	Evaluate(ctx context.Context, attempt *Attempt) Decision
}

// Pipeline evaluates stages in order, short-circuiting on the first
// deny or error.
type Pipeline struct {
	stages []Stage
	logger identity.Logger
}

// PipelineOption configures the pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(logger identity.Logger) PipelineOption {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPipeline creates a pipeline over the given stages. Order matters.
func NewPipeline(stages []Stage, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{stages: stages}

	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}

	return p
}

// Authorize runs the attempt through every stage. It returns (false, nil)
// for a plain deny and a non-nil error for rejections that render as
// dedicated error pages.
func (p *Pipeline) Authorize(ctx context.Context, attempt *Attempt) (bool, error) {
	if attempt == nil || !attempt.HasAccount {
		return false, nil
	}

	for _, stage := range p.stages {
		decision := stage.Evaluate(ctx, attempt)
		if decision.Err != nil {
			if p.logger != nil {
				p.logger.Debug("sign-in stage %s rejected %s: %v", stage.Name(), attempt.Email, decision.Err)
			}
			return false, decision.Err
		}
		if !decision.Allowed {
			if p.logger != nil {
				p.logger.Debug("sign-in stage %s denied %s", stage.Name(), attempt.Email)
			}
			return false, nil
		}
	}

	return true, nil
}
