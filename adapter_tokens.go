package identity

import (
	"context"
)

// CreateVerificationToken inserts a one-time sign-in code.
func (a *Adapter) CreateVerificationToken(ctx context.Context, token *VerificationToken) (*VerificationToken, error) {
	if _, err := a.db.NewInsert().Model(token).Exec(ctx); err != nil {
		return nil, wrapStoreError(err, "could not create verification token")
	}
	return token, nil
}

// UseVerificationToken consumes the matching token with an atomic
// fetch-and-delete. A second consumption of the same pair observes nil,
// not an error: re-using a sign-in link is an expected race, not a fault.
func (a *Adapter) UseVerificationToken(ctx context.Context, identifier, token string) (*VerificationToken, error) {
	record := &VerificationToken{}
	err := a.db.NewDelete().
		Model(record).
		Where("identifier = ? AND token = ?", identifier, token).
		Returning("*").
		Scan(ctx)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, wrapStoreError(err, "could not consume verification token")
	}
	return record, nil
}
