package identity

import (
	"context"

	"github.com/google/uuid"
)

// LinkAccount inserts an external-identity link. A duplicate
// (provider, provider_account_id) pair surfaces the store's uniqueness
// violation unchanged.
func (a *Adapter) LinkAccount(ctx context.Context, account *Account) error {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}

	_, err := a.db.NewInsert().Model(account).Exec(ctx)
	return wrapStoreError(err, "could not link account")
}

// UnlinkAccount deletes the matching account link. Deleting a missing
// link is a no-op.
func (a *Adapter) UnlinkAccount(ctx context.Context, provider, providerAccountID string) error {
	_, err := a.db.NewDelete().
		Model((*Account)(nil)).
		Where("provider = ? AND provider_account_id = ?", provider, providerAccountID).
		Exec(ctx)
	return wrapStoreError(err, "could not unlink account")
}

// GetAccountsByUser returns every provider link owned by the user.
func (a *Adapter) GetAccountsByUser(ctx context.Context, userID uuid.UUID) ([]*Account, error) {
	var accounts []*Account
	err := a.db.NewSelect().
		Model(&accounts).
		Where("user_id = ?", userID.String()).
		Scan(ctx)
	if err != nil {
		return nil, wrapStoreError(err, "could not list accounts")
	}
	return accounts, nil
}
