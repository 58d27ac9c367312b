package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/pennybook/pennybook/internal/common"
	"github.com/pennybook/pennybook/internal/model"
)

// CreateAccount inserts a new account and returns it with its assigned id.
// The balance at creation time is the account's implicit opening balance.
func (s *SQLiteStorage) CreateAccount(ctx context.Context, account *model.Account) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateAccount(account); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (name, balance, income_total, expense_total, color_tag)
		VALUES (?, ?, ?, ?, ?)
	`, account.Name,
		storeDecimal(account.Balance),
		storeDecimal(account.IncomeTotal),
		storeDecimal(account.ExpenseTotal),
		account.ColorTag,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert account: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get account id: %w", err)
	}

	created := *account
	created.ID = id

	slog.Info("created account", "id", id, "name", account.Name)
	return &created, nil
}

// GetAccountByID retrieves a single account.
func (s *SQLiteStorage) GetAccountByID(ctx context.Context, id int64) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}
	return getAccountTx(ctx, s.db, id)
}

func getAccountTx(ctx context.Context, q queryable, id int64) (*model.Account, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, name, balance, income_total, expense_total, color_tag, created_at
		FROM accounts
		WHERE id = ?
	`, id)

	account, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// GetAccountByName retrieves an account by its display name. Names are not
// required to be unique; the oldest match wins.
func (s *SQLiteStorage) GetAccountByName(ctx context.Context, name string) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, balance, income_total, expense_total, color_tag, created_at
		FROM accounts
		WHERE name = ?
		ORDER BY id
		LIMIT 1
	`, name)

	account, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account by name: %w", err)
	}
	return account, nil
}

// GetAccounts returns all accounts, oldest first.
func (s *SQLiteStorage) GetAccounts(ctx context.Context) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, balance, income_total, expense_total, color_tag, created_at
		FROM accounts
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		account, scanErr := scanAccount(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan account: %w", scanErr)
		}
		accounts = append(accounts, *account)
	}

	return accounts, rows.Err()
}

// UpdateAccount replaces the stored record for the account's id.
func (s *SQLiteStorage) UpdateAccount(ctx context.Context, account *model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAccount(account); err != nil {
		return err
	}
	if err := validateID(account.ID, "account.ID"); err != nil {
		return err
	}
	return updateAccountTx(ctx, s.db, account)
}

func updateAccountTx(ctx context.Context, q queryable, account *model.Account) error {
	result, err := q.ExecContext(ctx, `
		UPDATE accounts
		SET name = ?, balance = ?, income_total = ?, expense_total = ?, color_tag = ?
		WHERE id = ?
	`, account.Name,
		storeDecimal(account.Balance),
		storeDecimal(account.IncomeTotal),
		storeDecimal(account.ExpenseTotal),
		account.ColorTag,
		account.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

// saveAccountsTx writes a set of reconciled account records inside an
// existing transaction, so a multi-account adjustment lands atomically.
func saveAccountsTx(ctx context.Context, tx *sql.Tx, accounts []model.Account) error {
	for i := range accounts {
		if err := updateAccountTx(ctx, tx, &accounts[i]); err != nil {
			return fmt.Errorf("account %d: %w", accounts[i].ID, err)
		}
	}
	return nil
}

// DeleteAccount removes an account; its transactions go with it via the
// schema's cascade. Sibling transfer legs on other accounts are the service
// layer's responsibility and must be unwound before calling this.
func (s *SQLiteStorage) DeleteAccount(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}

	slog.Info("deleted account", "id", id)
	return nil
}

// scannable covers *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

func scanAccount(row scannable) (*model.Account, error) {
	var account model.Account
	var balance, incomeTotal, expenseTotal string

	err := row.Scan(
		&account.ID,
		&account.Name,
		&balance,
		&incomeTotal,
		&expenseTotal,
		&account.ColorTag,
		&account.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	account.Balance = scanDecimal(balance, "accounts.balance")
	account.IncomeTotal = scanDecimal(incomeTotal, "accounts.income_total")
	account.ExpenseTotal = scanDecimal(expenseTotal, "accounts.expense_total")
	return &account, nil
}
