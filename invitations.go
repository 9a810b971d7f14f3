package identity

import (
	"context"

	"github.com/uptrace/bun"
)

// NewUserInvitations holds every pending grant for an email address.
type NewUserInvitations struct {
	Invitations          []*Invitation
	WorkspaceInvitations []*WorkspaceInvitation
}

// IsEmpty reports whether no pending grant exists for the email.
func (n *NewUserInvitations) IsEmpty() bool {
	if n == nil {
		return true
	}
	return len(n.Invitations) == 0 && len(n.WorkspaceInvitations) == 0
}

// InvitationResolver looks up pending invitations by invitee email. It is
// a pure lookup, shared by the store adapter and the sign-up gate.
type InvitationResolver struct {
	db *bun.DB
}

// NewInvitationResolver creates a new resolver.
func NewInvitationResolver(db *bun.DB) *InvitationResolver {
	return &InvitationResolver{db: db}
}

// GetNewUserInvitations returns pending direct and workspace invitations
// for the given email. Absence of rows is an empty result, not an error.
func (r *InvitationResolver) GetNewUserInvitations(ctx context.Context, email string) (*NewUserInvitations, error) {
	result := &NewUserInvitations{}

	err := r.db.NewSelect().
		Model(&result.Invitations).
		Where("email = ?", email).
		Scan(ctx)
	if err != nil {
		return nil, wrapStoreError(err, "failed to resolve invitations")
	}

	err = r.db.NewSelect().
		Model(&result.WorkspaceInvitations).
		Where("email = ?", email).
		Scan(ctx)
	if err != nil {
		return nil, wrapStoreError(err, "failed to resolve workspace invitations")
	}

	return result, nil
}
