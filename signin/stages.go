package signin

import (
	"context"
	"strings"
	"time"

	identity "github.com/goliatone/go-identity"
)

// InvitationLookup is the slice of the invitation resolver the gate needs.
type InvitationLookup interface {
	GetNewUserInvitations(ctx context.Context, email string) (*identity.NewUserInvitations, error)
}

// GroupLister pages through a provider's group listing for the
// authenticated user.
type GroupLister interface {
	ListGroups(ctx context.Context, accessToken string) ([]string, error)
}

// RateLimitStage converts the entry handler's rate-limited tag into a
// distinct error so callers can tell it apart from a credential denial.
type RateLimitStage struct{}

func (RateLimitStage) Name() string { return "rate-limit" }

func (RateLimitStage) Evaluate(_ context.Context, attempt *Attempt) Decision {
	if attempt.RateLimited {
		return Fail(identity.ErrRateLimited)
	}
	return Allow()
}

// DisposableEmailStage denies first-time sign-ins from throwaway-mailbox
// domains. Admin allow-listed emails bypass the check.
type DisposableEmailStage struct {
	Enabled   bool
	Policy    identity.SignupPolicy
	Blocklist DomainBlocklist
}

func (DisposableEmailStage) Name() string { return "disposable-email" }

func (s DisposableEmailStage) Evaluate(ctx context.Context, attempt *Attempt) Decision {
	if !s.Enabled || !attempt.IsNewUser || s.Policy.IsAdmin(attempt.Email) {
		return Allow()
	}

	if s.Blocklist == nil {
		return Allow()
	}

	domains, err := s.Blocklist.FetchDomains(ctx)
	if err != nil {
		return Fail(err)
	}

	at := strings.LastIndex(attempt.Email, "@")
	if at < 0 {
		return Deny()
	}

	if _, blocked := domains[strings.ToLower(attempt.Email[at+1:])]; blocked {
		return Deny()
	}

	return Allow()
}

// SignupGateStage rejects first-time sign-ins while sign ups are frozen,
// unless the email is allow-listed or holds a pending invitation. The
// rejection is an error, not a deny: it renders as its own page.
type SignupGateStage struct {
	Policy      identity.SignupPolicy
	Invitations InvitationLookup
}

func (SignupGateStage) Name() string { return "signup-gate" }

func (s SignupGateStage) Evaluate(ctx context.Context, attempt *Attempt) Decision {
	if !attempt.IsNewUser || !s.Policy.Disabled || s.Policy.IsAdmin(attempt.Email) {
		return Allow()
	}

	invites, err := s.Invitations.GetNewUserInvitations(ctx, attempt.Email)
	if err != nil {
		return Fail(err)
	}

	if invites.IsEmpty() {
		return Fail(identity.ErrSignupDisabled)
	}

	return Allow()
}

// GroupStage requires a non-empty intersection between the user's
// provider groups and the configured required set. Providers without a
// configured set are vacuously allowed.
type GroupStage struct {
	Provider string
	Required []string
	Groups   GroupLister
}

func (GroupStage) Name() string { return "required-groups" }

func (s GroupStage) Evaluate(ctx context.Context, attempt *Attempt) Decision {
	if attempt.Provider != s.Provider || len(s.Required) == 0 || s.Groups == nil {
		return Allow()
	}

	groups, err := s.Groups.ListGroups(ctx, attempt.AccessToken)
	if err != nil {
		return Fail(err)
	}

	// Case-sensitive exact match on purpose.
	required := make(map[string]struct{}, len(s.Required))
	for _, name := range s.Required {
		required[name] = struct{}{}
	}

	for _, group := range groups {
		if _, ok := required[group]; ok {
			return Allow()
		}
	}

	return Deny()
}

// LoginActivityStage records the returning-user login event. New-user
// side effects belong to the adapter's CreateUser, not here.
type LoginActivityStage struct {
	Sink identity.ActivitySink
}

func (LoginActivityStage) Name() string { return "login-activity" }

func (s LoginActivityStage) Evaluate(ctx context.Context, attempt *Attempt) Decision {
	if attempt.IsNewUser || s.Sink == nil {
		return Allow()
	}

	_ = s.Sink.Record(ctx, identity.ActivityEvent{
		EventType:  identity.ActivityEventLoginSuccess,
		UserID:     attempt.UserID,
		OccurredAt: time.Now(),
		Metadata: map[string]any{
			"provider": attempt.Provider,
		},
	})

	return Allow()
}
