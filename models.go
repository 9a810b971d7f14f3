package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// WorkspaceRole is the role a user holds within a workspace
type WorkspaceRole = string

const (
	// WorkspaceRoleAdmin can manage members, billing and settings
	WorkspaceRoleAdmin WorkspaceRole = "admin"
	// WorkspaceRoleMember can view and edit workspace resources
	WorkspaceRoleMember WorkspaceRole = "member"
	// WorkspaceRoleGuest has read-only access
	WorkspaceRoleGuest WorkspaceRole = "guest"
)

// CollaborationRole is the role granted on a single shared resource
type CollaborationRole = string

const (
	CollaborationRoleRead  CollaborationRole = "read"
	CollaborationRoleWrite CollaborationRole = "write"
	CollaborationRoleFull  CollaborationRole = "full"
)

// User is the identity record created on first successful sign-in
type User struct {
	bun.BaseModel        `bun:"table:users,alias:usr"`
	ID                   uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email                string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Name                 string     `bun:"name" json:"name,omitempty"`
	Image                string     `bun:"image" json:"image,omitempty"`
	EmailVerifiedAt      *time.Time `bun:"email_verified_at,nullzero" json:"email_verified_at,omitempty"`
	Company              string     `bun:"company" json:"company,omitempty"`
	ReferralSource       string     `bun:"referral_source" json:"referral_source,omitempty"`
	OnboardingCategories []string   `bun:"onboarding_categories,type:jsonb" json:"onboarding_categories,omitempty"`
	GraphNavigation      string     `bun:"graph_navigation" json:"graph_navigation,omitempty"`
	GroupInviteEmails    bool       `bun:"group_invite_emails" json:"group_invite_emails,omitempty"`
	LastActivityAt       *time.Time `bun:"last_activity_at,nullzero" json:"last_activity_at,omitempty"`
	CreatedAt            *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt            *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Account links a user to an external identity provider. A
// (provider, provider_account_id) pair is globally unique.
type Account struct {
	bun.BaseModel     `bun:"table:accounts,alias:acc"`
	ID                uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID            uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	Type              string     `bun:"type" json:"type,omitempty"`
	Provider          string     `bun:"provider,notnull" json:"provider,omitempty"`
	ProviderAccountID string     `bun:"provider_account_id,notnull" json:"provider_account_id,omitempty"`
	AccessToken       string     `bun:"access_token" json:"access_token,omitempty"`
	RefreshToken      string     `bun:"refresh_token" json:"refresh_token,omitempty"`
	IDToken           string     `bun:"id_token" json:"id_token,omitempty"`
	ExpiresAt         *time.Time `bun:"expires_at,nullzero" json:"expires_at,omitempty"`
	Scope             string     `bun:"scope" json:"scope,omitempty"`
	TokenType         string     `bun:"token_type" json:"token_type,omitempty"`
	SessionState      string     `bun:"session_state" json:"session_state,omitempty"`
	CreatedAt         *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Session is a server-side session record keyed by an opaque token
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:ses"`
	SessionToken  string    `bun:"session_token,pk" json:"session_token,omitempty"`
	UserID        uuid.UUID `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	Expires       time.Time `bun:"expires,notnull" json:"expires,omitempty"`
}

// VerificationToken is a one-time sign-in code. It is consumed exactly
// once via an atomic fetch-and-delete, or expires unused.
type VerificationToken struct {
	bun.BaseModel `bun:"table:verification_tokens,alias:vtk"`
	Identifier    string    `bun:"identifier,pk" json:"identifier,omitempty"`
	Token         string    `bun:"token,pk" json:"token,omitempty"`
	Expires       time.Time `bun:"expires,notnull" json:"expires,omitempty"`
}

// Invitation is a pending grant on a single shared resource, keyed by
// the invitee email. Converted into a Collaboration at user creation.
type Invitation struct {
	bun.BaseModel `bun:"table:invitations,alias:inv"`
	ID            uuid.UUID         `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email         string            `bun:"email,notnull" json:"email,omitempty"`
	ResourceID    uuid.UUID         `bun:"resource_id,notnull,type:uuid" json:"resource_id,omitempty"`
	Role          CollaborationRole `bun:"role,notnull" json:"role,omitempty"`
	CreatedAt     *time.Time        `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// WorkspaceInvitation is a pending workspace membership keyed by the
// invitee email. Converted into a WorkspaceMember at user creation.
type WorkspaceInvitation struct {
	bun.BaseModel `bun:"table:workspace_invitations,alias:wsi"`
	ID            uuid.UUID     `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email         string        `bun:"email,notnull" json:"email,omitempty"`
	WorkspaceID   uuid.UUID     `bun:"workspace_id,notnull,type:uuid" json:"workspace_id,omitempty"`
	Role          WorkspaceRole `bun:"role,notnull" json:"role,omitempty"`
	CreatedAt     *time.Time    `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Workspace is a collaboration scope to which users are granted roles
type Workspace struct {
	bun.BaseModel `bun:"table:workspaces,alias:wsp"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Plan          string     `bun:"plan" json:"plan,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// WorkspaceMember grants a user a role within a workspace
type WorkspaceMember struct {
	bun.BaseModel `bun:"table:workspace_members,alias:wsm"`
	WorkspaceID   uuid.UUID     `bun:"workspace_id,pk,type:uuid" json:"workspace_id,omitempty"`
	UserID        uuid.UUID     `bun:"user_id,pk,type:uuid" json:"user_id,omitempty"`
	Role          WorkspaceRole `bun:"role,notnull" json:"role,omitempty"`
	CreatedAt     *time.Time    `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Collaboration grants a user a role on a single shared resource
type Collaboration struct {
	bun.BaseModel `bun:"table:collaborations,alias:col"`
	ResourceID    uuid.UUID         `bun:"resource_id,pk,type:uuid" json:"resource_id,omitempty"`
	UserID        uuid.UUID         `bun:"user_id,pk,type:uuid" json:"user_id,omitempty"`
	Role          CollaborationRole `bun:"role,notnull" json:"role,omitempty"`
	CreatedAt     *time.Time        `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// APIToken is the default access credential created with every new user
type APIToken struct {
	bun.BaseModel `bun:"table:api_tokens,alias:tok"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	OwnerID       uuid.UUID  `bun:"owner_id,notnull,type:uuid" json:"owner_id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Token         string     `bun:"token,notnull,unique" json:"token,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}
