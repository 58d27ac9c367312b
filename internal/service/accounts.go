package service

import (
	"context"
	"fmt"

	"github.com/pennybook/pennybook/internal/common"
	"github.com/pennybook/pennybook/internal/model"
)

// CreateAccount creates an account with the given opening balance. The
// opening balance seeds Balance directly without a transaction row, so it
// never shows up in income or expense totals.
func (r *Recorder) CreateAccount(ctx context.Context, account model.Account) (*model.Account, error) {
	if err := account.Validate(); err != nil {
		return nil, common.NewUserError("invalid account", err)
	}
	account.Balance = model.Round2(account.Balance)
	return r.storage.CreateAccount(ctx, &account)
}

// RenameAccount changes an account's display name.
func (r *Recorder) RenameAccount(ctx context.Context, id int64, name string) error {
	return r.mutateAccount(ctx, id, func(account *model.Account) error {
		account.Name = name
		return account.Validate()
	})
}

// SetAccountColor changes an account's color tag.
func (r *Recorder) SetAccountColor(ctx context.Context, id int64, colorTag int64) error {
	return r.mutateAccount(ctx, id, func(account *model.Account) error {
		account.ColorTag = colorTag
		return nil
	})
}

// mutateAccount applies an edit to a freshly loaded account record under
// the account lock, so it cannot clobber a concurrent reconciliation.
func (r *Recorder) mutateAccount(ctx context.Context, id int64, edit func(*model.Account) error) error {
	release := r.locks.acquire(id)
	defer release()

	account, err := r.storage.GetAccountByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load account %d: %w", id, err)
	}
	if err := edit(account); err != nil {
		return common.NewUserError("invalid account", err)
	}
	return r.storage.UpdateAccount(ctx, account)
}
