package identity

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// SignupPolicy gates first-time user creation.
type SignupPolicy struct {
	// Disabled freezes new sign ups globally
	Disabled bool
	// AdminEmails bypass the freeze and the disposable-email rejection
	AdminEmails []string
}

// IsAdmin reports whether email is on the admin allow-list.
func (p SignupPolicy) IsAdmin(email string) bool {
	for _, admin := range p.AdminEmails {
		if strings.EqualFold(strings.TrimSpace(admin), email) {
			return true
		}
	}
	return false
}

// Adapter satisfies the persistence contract expected by the
// authentication library: user, account, session and verification-token
// CRUD against the relational store. Point lookups return a nil record
// on absence, never an error.
type Adapter struct {
	db       *bun.DB
	users    repository.Repository[*User]
	invites  *InvitationResolver
	activity ActivitySink
	webhook  *WebhookNotifier
	logger   Logger
	policy   SignupPolicy
}

// AdapterOption configures the adapter.
type AdapterOption func(*Adapter)

// NewAdapter creates a store adapter bound to db.
func NewAdapter(db *bun.DB, policy SignupPolicy, opts ...AdapterOption) *Adapter {
	users := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	a := &Adapter{
		db:       db,
		users:    users,
		invites:  NewInvitationResolver(db),
		activity: noopActivitySink{},
		logger:   defLogger{},
		policy:   policy,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}

	return a
}

// WithActivitySink sets the telemetry sink.
func WithActivitySink(sink ActivitySink) AdapterOption {
	return func(a *Adapter) {
		a.activity = normalizeActivitySink(sink)
	}
}

// WithWebhookNotifier sets the best-effort user-created webhook.
func WithWebhookNotifier(n *WebhookNotifier) AdapterOption {
	return func(a *Adapter) {
		a.webhook = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger Logger) AdapterOption {
	return func(a *Adapter) {
		a.logger = normalizeLogger(logger)
	}
}

// WithInvitationResolver overrides the default resolver.
func WithInvitationResolver(r *InvitationResolver) AdapterOption {
	return func(a *Adapter) {
		if r != nil {
			a.invites = r
		}
	}
}

// CreateUser persists a first-time user. It enforces the signup policy,
// creates the default access credential, and either creates a personal
// workspace with the admin role or joins the workspaces the email was
// invited to. Resolved direct invitations become collaborations.
func (a *Adapter) CreateUser(ctx context.Context, user *User) (*User, error) {
	if user == nil || strings.TrimSpace(user.Email) == "" {
		return nil, ErrMissingEmail
	}

	invites, err := a.invites.GetNewUserInvitations(ctx, user.Email)
	if err != nil {
		return nil, err
	}

	if a.policy.Disabled && !a.policy.IsAdmin(user.Email) && invites.IsEmpty() {
		return nil, ErrSignupDisabled
	}

	prepareUserDefaults(user)

	var workspace *Workspace

	err = a.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		created, err := a.users.CreateTx(ctx, tx, user)
		if err != nil {
			return wrapStoreError(err, "could not create user")
		}
		user = created

		token := &APIToken{
			ID:      uuid.New(),
			OwnerID: user.ID,
			Name:    "Default",
			Token:   generateOpaqueToken(),
		}
		if _, err := tx.NewInsert().Model(token).Exec(ctx); err != nil {
			return wrapStoreError(err, "could not create default api token")
		}

		if len(invites.WorkspaceInvitations) == 0 {
			workspace = &Workspace{
				ID:   uuid.New(),
				Name: workspaceNameFor(user),
				Plan: "free",
			}
			if _, err := tx.NewInsert().Model(workspace).Exec(ctx); err != nil {
				return wrapStoreError(err, "could not create workspace")
			}

			member := &WorkspaceMember{
				WorkspaceID: workspace.ID,
				UserID:      user.ID,
				Role:        WorkspaceRoleAdmin,
			}
			if _, err := tx.NewInsert().Model(member).Exec(ctx); err != nil {
				return wrapStoreError(err, "could not create workspace membership")
			}
		} else {
			if err := a.joinInvitedWorkspacesTx(ctx, tx, user, invites.WorkspaceInvitations); err != nil {
				return err
			}
		}

		return a.convertInvitationsTx(ctx, tx, user, invites.Invitations)
	})
	if err != nil {
		return nil, err
	}

	if workspace != nil {
		_ = a.activity.Record(ctx, ActivityEvent{
			EventType:  ActivityEventWorkspaceCreated,
			UserID:     user.ID.String(),
			OccurredAt: time.Now(),
			Metadata: map[string]any{
				"workspace_id": workspace.ID.String(),
			},
		})
	}

	_ = a.activity.Record(ctx, ActivityEvent{
		EventType:  ActivityEventUserCreated,
		UserID:     user.ID.String(),
		OccurredAt: time.Now(),
		Metadata: map[string]any{
			"email": user.Email,
		},
	})

	if a.webhook != nil {
		// Detached on purpose: webhook failures must never fail sign up.
		go a.webhook.NotifyUserCreated(context.WithoutCancel(ctx), user.Email)
	}

	return user, nil
}

// GetUser returns the user by id, nil when absent.
func (a *Adapter) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	user, err := a.users.GetByID(ctx, id.String())
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, wrapStoreError(err, "could not get user")
	}
	return user, nil
}

// GetUserByEmail returns the user by email, nil when absent.
func (a *Adapter) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	user := &User{}
	err := a.db.NewSelect().
		Model(user).
		Where("email = ?", email).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, wrapStoreError(err, "could not get user by email")
	}
	return user, nil
}

// GetUserByAccount joins through the linked account, nil when no link exists.
func (a *Adapter) GetUserByAccount(ctx context.Context, provider, providerAccountID string) (*User, error) {
	user := &User{}
	err := a.db.NewSelect().
		Model(user).
		Join("JOIN accounts AS acc ON acc.user_id = usr.id").
		Where("acc.provider = ? AND acc.provider_account_id = ?", provider, providerAccountID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, wrapStoreError(err, "could not get user by account")
	}
	return user, nil
}

// UpdateUser merges the provided non-zero fields into the stored record.
func (a *Adapter) UpdateUser(ctx context.Context, user *User) (*User, error) {
	if user == nil || user.ID == uuid.Nil {
		return nil, errors.New("user id is required", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest)
	}

	now := time.Now()
	user.UpdatedAt = &now

	updated, err := a.users.UpdateTx(ctx, a.db, user,
		repository.UpdateByID(user.ID.String()),
		repository.UpdateSkipZeroValues(),
	)
	if err != nil {
		return nil, wrapStoreError(err, "could not update user")
	}

	return updated, nil
}

// DeleteUser removes the user record. Cascades are the store's concern.
func (a *Adapter) DeleteUser(ctx context.Context, id uuid.UUID) error {
	_, err := a.db.NewDelete().
		Model((*User)(nil)).
		Where("id = ?", id.String()).
		Exec(ctx)
	return wrapStoreError(err, "could not delete user")
}

// TouchLastActivity stamps the user's last_activity_at. The intended
// trigger point is unconfirmed, so nothing in this package calls it yet;
// hosts that settle on read-time refresh can wire it on session reads.
func (a *Adapter) TouchLastActivity(ctx context.Context, id uuid.UUID) error {
	_, err := a.db.NewUpdate().
		Model((*User)(nil)).
		Set("last_activity_at = ?", time.Now()).
		Where("id = ?", id.String()).
		Exec(ctx)
	return wrapStoreError(err, "could not update last activity")
}

func (a *Adapter) joinInvitedWorkspacesTx(ctx context.Context, tx bun.Tx, user *User, invites []*WorkspaceInvitation) error {
	for _, invite := range invites {
		member := &WorkspaceMember{
			WorkspaceID: invite.WorkspaceID,
			UserID:      user.ID,
			Role:        invite.Role,
		}
		if _, err := tx.NewInsert().Model(member).Exec(ctx); err != nil {
			return wrapStoreError(err, "could not join invited workspace")
		}

		_, err := tx.NewDelete().
			Model((*WorkspaceInvitation)(nil)).
			Where("id = ?", invite.ID.String()).
			Exec(ctx)
		if err != nil {
			return wrapStoreError(err, "could not consume workspace invitation")
		}
	}
	return nil
}

func (a *Adapter) convertInvitationsTx(ctx context.Context, tx bun.Tx, user *User, invites []*Invitation) error {
	for _, invite := range invites {
		collab := &Collaboration{
			ResourceID: invite.ResourceID,
			UserID:     user.ID,
			Role:       invite.Role,
		}
		if _, err := tx.NewInsert().Model(collab).Exec(ctx); err != nil {
			return wrapStoreError(err, "could not convert invitation")
		}

		_, err := tx.NewDelete().
			Model((*Invitation)(nil)).
			Where("id = ?", invite.ID.String()).
			Exec(ctx)
		if err != nil {
			return wrapStoreError(err, "could not consume invitation")
		}
	}
	return nil
}

func prepareUserDefaults(user *User) {
	if user == nil {
		return
	}

	if user.ID == uuid.Nil {
		if id, err := hashid.NewUUID(user.Email); err == nil {
			user.ID = id
		} else {
			user.ID = uuid.New()
		}
	}
}

func workspaceNameFor(user *User) string {
	name := strings.TrimSpace(user.Name)
	if name == "" && strings.Contains(user.Email, "@") {
		name = strings.Split(user.Email, "@")[0]
	}
	if name == "" {
		return "My workspace"
	}
	return name + "'s workspace"
}

func generateOpaqueToken() string {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return uuid.NewString()
	}
	return hex.EncodeToString(buf)
}
