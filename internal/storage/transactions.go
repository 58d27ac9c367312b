package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/pennybook/pennybook/internal/common"
	"github.com/pennybook/pennybook/internal/ledger"
	"github.com/pennybook/pennybook/internal/model"
	"github.com/pennybook/pennybook/internal/service"
)

// InsertTransaction writes a new transaction row together with the
// reconciled account records, in one database transaction. Either the row
// and every account adjustment land, or nothing does.
func (s *SQLiteStorage) InsertTransaction(ctx context.Context, txn *model.Transaction, accounts []model.Account) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateTransaction(txn); err != nil {
		return nil, err
	}

	saved := *txn
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		id, err := insertTransactionTx(ctx, tx, txn)
		if err != nil {
			return err
		}
		saved.ID = id
		return saveAccountsTx(ctx, tx, accounts)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("recorded transaction",
		"id", saved.ID, "type", saved.Type, "amount", saved.Amount.StringFixed(2))
	return &saved, nil
}

// InsertTransferPair writes both legs of a new transfer plus the reconciled
// accounts atomically. The legs come back with assigned ids and a shared
// pair id (the out leg's row id).
func (s *SQLiteStorage) InsertTransferPair(ctx context.Context, out, in *model.Transaction, accounts []model.Account) (*model.Transaction, *model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, nil, err
	}
	if err := validateTransaction(out); err != nil {
		return nil, nil, fmt.Errorf("out leg: %w", err)
	}
	if err := validateTransaction(in); err != nil {
		return nil, nil, fmt.Errorf("in leg: %w", err)
	}

	savedOut, savedIn := *out, *in
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		outID, err := insertTransactionTx(ctx, tx, out)
		if err != nil {
			return fmt.Errorf("out leg: %w", err)
		}
		inID, err := insertTransactionTx(ctx, tx, in)
		if err != nil {
			return fmt.Errorf("in leg: %w", err)
		}

		// Both legs share the out leg's row id as their pair id.
		if _, err := tx.ExecContext(ctx, `
			UPDATE transactions SET pair_id = ? WHERE id IN (?, ?)
		`, outID, outID, inID); err != nil {
			return fmt.Errorf("failed to link transfer pair: %w", err)
		}

		savedOut.ID, savedOut.PairID = outID, outID
		savedIn.ID, savedIn.PairID = inID, outID
		return saveAccountsTx(ctx, tx, accounts)
	})
	if err != nil {
		return nil, nil, err
	}

	slog.Info("recorded transfer",
		"pair_id", savedOut.PairID,
		"from_account", savedOut.AccountID,
		"to_account", savedIn.AccountID,
		"amount", savedOut.Amount.StringFixed(2))
	return &savedOut, &savedIn, nil
}

func insertTransactionTx(ctx context.Context, tx *sql.Tx, txn *model.Transaction) (int64, error) {
	result, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (title, amount, type, date, details, account_id, category_id, pair_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, txn.Title,
		storeDecimal(txn.Amount),
		string(txn.Type),
		txn.Date,
		txn.Details,
		txn.AccountID,
		txn.CategoryID,
		txn.PairID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert transaction: %w", err)
	}
	return result.LastInsertId()
}

// UpdateTransaction replaces a transaction row and writes the reconciled
// accounts atomically.
func (s *SQLiteStorage) UpdateTransaction(ctx context.Context, txn *model.Transaction, accounts []model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}
	if err := validateID(txn.ID, "transaction.ID"); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := updateTransactionTx(ctx, tx, txn); err != nil {
			return err
		}
		return saveAccountsTx(ctx, tx, accounts)
	})
}

// UpdateTransferPair replaces both legs of a transfer and writes the
// reconciled accounts atomically.
func (s *SQLiteStorage) UpdateTransferPair(ctx context.Context, out, in *model.Transaction, accounts []model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(out); err != nil {
		return fmt.Errorf("out leg: %w", err)
	}
	if err := validateTransaction(in); err != nil {
		return fmt.Errorf("in leg: %w", err)
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := updateTransactionTx(ctx, tx, out); err != nil {
			return fmt.Errorf("out leg: %w", err)
		}
		if err := updateTransactionTx(ctx, tx, in); err != nil {
			return fmt.Errorf("in leg: %w", err)
		}
		return saveAccountsTx(ctx, tx, accounts)
	})
}

func updateTransactionTx(ctx context.Context, tx *sql.Tx, txn *model.Transaction) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE transactions
		SET title = ?, amount = ?, type = ?, date = ?, details = ?,
		    account_id = ?, category_id = ?, pair_id = ?
		WHERE id = ?
	`, txn.Title,
		storeDecimal(txn.Amount),
		string(txn.Type),
		txn.Date,
		txn.Details,
		txn.AccountID,
		txn.CategoryID,
		txn.PairID,
		txn.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
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

// DeleteTransaction removes a transaction row and writes the reconciled
// accounts atomically.
func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, id int64, accounts []model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete transaction: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check delete result: %w", err)
		}
		if affected == 0 {
			return common.ErrNotFound
		}
		return saveAccountsTx(ctx, tx, accounts)
	})
}

// DeleteTransferPair removes both legs of a transfer pair and writes the
// reconciled accounts atomically.
func (s *SQLiteStorage) DeleteTransferPair(ctx context.Context, pairID int64, accounts []model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(pairID, "pairID"); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE pair_id = ?`, pairID)
		if err != nil {
			return fmt.Errorf("failed to delete transfer pair: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check delete result: %w", err)
		}
		if affected == 0 {
			return common.ErrNotFound
		}
		return saveAccountsTx(ctx, tx, accounts)
	})
}

// GetTransactionByID retrieves a single transaction by ID.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id int64) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, amount, type, date, details, account_id, category_id, pair_id
		FROM transactions
		WHERE id = ?
	`, id)

	txn, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return txn, nil
}

// GetTransactionPair returns both legs of a transfer pair, out leg first.
func (s *SQLiteStorage) GetTransactionPair(ctx context.Context, pairID int64) (*model.Transaction, *model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, nil, err
	}
	if err := validateID(pairID, "pairID"); err != nil {
		return nil, nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, amount, type, date, details, account_id, category_id, pair_id
		FROM transactions
		WHERE pair_id = ?
		ORDER BY id
	`, pairID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query transfer pair: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out, in *model.Transaction
	for rows.Next() {
		txn, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, nil, fmt.Errorf("failed to scan transfer leg: %w", scanErr)
		}
		switch txn.Type {
		case model.TypeTransferOut:
			out = txn
		case model.TypeTransferIn:
			in = txn
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	if out == nil && in == nil {
		return nil, nil, common.ErrNotFound
	}
	if out == nil || in == nil {
		return nil, nil, fmt.Errorf("%w: pair %d", common.ErrUnpairedTransfer, pairID)
	}
	return out, in, nil
}

// GetTransactions returns transactions matching the filter, newest first.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, title, amount, type, date, details, account_id, category_id, pair_id
		FROM transactions
		WHERE 1=1`
	query, args := appendFilter(query, "", filter)
	query += ` ORDER BY date DESC, id DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", scanErr)
		}
		transactions = append(transactions, *txn)
	}

	return transactions, rows.Err()
}

// GetTransactionRows returns transactions joined with their account and
// category, the shape the grouping projections consume. A deleted category
// surfaces with a zero id and a "(deleted)" name rather than dropping the
// transaction.
func (s *SQLiteStorage) GetTransactionRows(ctx context.Context, filter service.TransactionFilter) ([]ledger.Row, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT t.id, t.title, t.amount, t.type, t.date, t.details, t.account_id, t.category_id, t.pair_id,
		       a.id, a.name, a.balance, a.income_total, a.expense_total, a.color_tag, a.created_at,
		       COALESCE(c.id, 0), COALESCE(c.name, '(deleted)'), COALESCE(c.color_tag, 0)
		FROM transactions t
		JOIN accounts a ON t.account_id = a.id
		LEFT JOIN categories c ON t.category_id = c.id
		WHERE 1=1`
	query, args := appendFilter(query, "t.", filter)
	query += ` ORDER BY t.date DESC, t.id DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction rows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []ledger.Row
	for rows.Next() {
		var r ledger.Row
		var amount, balance, incomeTotal, expenseTotal string

		err := rows.Scan(
			&r.Transaction.ID,
			&r.Transaction.Title,
			&amount,
			&r.Transaction.Type,
			&r.Transaction.Date,
			&r.Transaction.Details,
			&r.Transaction.AccountID,
			&r.Transaction.CategoryID,
			&r.Transaction.PairID,
			&r.Account.ID,
			&r.Account.Name,
			&balance,
			&incomeTotal,
			&expenseTotal,
			&r.Account.ColorTag,
			&r.Account.CreatedAt,
			&r.Category.ID,
			&r.Category.Name,
			&r.Category.ColorTag,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}

		r.Transaction.Amount = scanDecimal(amount, "transactions.amount")
		r.Account.Balance = scanDecimal(balance, "accounts.balance")
		r.Account.IncomeTotal = scanDecimal(incomeTotal, "accounts.income_total")
		r.Account.ExpenseTotal = scanDecimal(expenseTotal, "accounts.expense_total")
		result = append(result, r)
	}

	return result, rows.Err()
}

// GetTransactionsByAccount returns every transaction referencing an account,
// oldest first. Used when cascading an account delete.
func (s *SQLiteStorage) GetTransactionsByAccount(ctx context.Context, accountID int64) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(accountID, "accountID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, amount, type, date, details, account_id, category_id, pair_id
		FROM transactions
		WHERE account_id = ?
		ORDER BY id
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions by account: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", scanErr)
		}
		transactions = append(transactions, *txn)
	}

	return transactions, rows.Err()
}

// appendFilter extends a WHERE clause with the filter's conditions. prefix
// is the table alias ("t." in joined queries, "" otherwise).
func appendFilter(query, prefix string, filter service.TransactionFilter) (string, []any) {
	var args []any
	if filter.AccountID != nil {
		query += " AND " + prefix + "account_id = ?"
		args = append(args, *filter.AccountID)
	}
	if filter.CategoryID != nil {
		query += " AND " + prefix + "category_id = ?"
		args = append(args, *filter.CategoryID)
	}
	if filter.StartDate != nil {
		query += " AND " + prefix + "date >= ?"
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		query += " AND " + prefix + "date < ?"
		args = append(args, *filter.EndDate)
	}
	return query, args
}

func scanTransaction(row scannable) (*model.Transaction, error) {
	var txn model.Transaction
	var amount string

	err := row.Scan(
		&txn.ID,
		&txn.Title,
		&amount,
		&txn.Type,
		&txn.Date,
		&txn.Details,
		&txn.AccountID,
		&txn.CategoryID,
		&txn.PairID,
	)
	if err != nil {
		return nil, err
	}

	txn.Amount = scanDecimal(amount, "transactions.amount")
	return &txn, nil
}
