package identity

import (
	"context"
)

// CreateSession inserts a session row keyed by its opaque token.
func (a *Adapter) CreateSession(ctx context.Context, session *Session) (*Session, error) {
	if _, err := a.db.NewInsert().Model(session).Exec(ctx); err != nil {
		return nil, wrapStoreError(err, "could not create session")
	}
	return session, nil
}

// GetSessionWithUser returns the session and its owning user, both nil
// when the token is unknown.
func (a *Adapter) GetSessionWithUser(ctx context.Context, sessionToken string) (*Session, *User, error) {
	session := &Session{}
	err := a.db.NewSelect().
		Model(session).
		Where("session_token = ?", sessionToken).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil, nil
		}
		return nil, nil, wrapStoreError(err, "could not get session")
	}

	user, err := a.GetUser(ctx, session.UserID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, nil
	}

	return session, user, nil
}

// UpdateSession refreshes a session keyed by token, nil when absent.
func (a *Adapter) UpdateSession(ctx context.Context, session *Session) (*Session, error) {
	res, err := a.db.NewUpdate().
		Model(session).
		Column("user_id", "expires").
		Where("session_token = ?", session.SessionToken).
		Exec(ctx)
	if err != nil {
		return nil, wrapStoreError(err, "could not update session")
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, nil
	}

	return session, nil
}

// DeleteSession removes the session row.
func (a *Adapter) DeleteSession(ctx context.Context, sessionToken string) error {
	_, err := a.db.NewDelete().
		Model((*Session)(nil)).
		Where("session_token = ?", sessionToken).
		Exec(ctx)
	return wrapStoreError(err, "could not delete session")
}
