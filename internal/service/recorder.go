package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pennybook/pennybook/internal/common"
	"github.com/pennybook/pennybook/internal/ledger"
	"github.com/pennybook/pennybook/internal/model"
)

// Recorder orchestrates transaction mutations: it reads the affected
// account snapshots, runs the reconciliation engine, and hands the results
// to storage as one atomic write. At most one reconciliation is in flight
// per account id.
type Recorder struct {
	storage Storage
	locks   *accountLocks
}

// NewRecorder creates a Recorder over the given storage.
func NewRecorder(storage Storage) *Recorder {
	return &Recorder{
		storage: storage,
		locks:   newAccountLocks(),
	}
}

// TransferDetails describes one logical transfer between two accounts. A
// transfer materializes as a transfer-out row on the source account and a
// transfer-in row on the destination, kept paired through edits.
type TransferDetails struct {
	Date          time.Time
	Title         string
	Details       string
	Amount        decimal.Decimal
	FromAccountID int64
	ToAccountID   int64
}

func (d *TransferDetails) legs() (model.Transaction, model.Transaction) {
	out := model.Transaction{
		Title:      d.Title,
		Amount:     d.Amount,
		Type:       model.TypeTransferOut,
		Date:       d.Date,
		Details:    d.Details,
		AccountID:  d.FromAccountID,
		CategoryID: model.TransferCategoryID,
	}
	in := out
	in.Type = model.TypeTransferIn
	in.AccountID = d.ToAccountID
	return out, in
}

// snapshot loads the requested accounts into a ledger set. Accounts that no
// longer exist are skipped; the engine logs and skips their legs.
func (r *Recorder) snapshot(ctx context.Context, ids ...int64) (ledger.AccountSet, error) {
	set := make(ledger.AccountSet, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := set[id]; ok {
			continue
		}
		account, err := r.storage.GetAccountByID(ctx, id)
		if errors.Is(err, common.ErrNotFound) {
			slog.Warn("referenced account no longer exists", "account_id", id)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load account %d: %w", id, err)
		}
		set[id] = *account
	}
	return set, nil
}

func accountsSlice(set ledger.AccountSet) []model.Account {
	accounts := make([]model.Account, 0, len(set))
	for _, account := range set {
		accounts = append(accounts, account)
	}
	return accounts
}

// RecordTransaction validates and persists a new income or expense
// transaction along with the reconciled account record.
func (r *Recorder) RecordTransaction(ctx context.Context, txn model.Transaction) (*model.Transaction, error) {
	if txn.IsTransfer() {
		return nil, common.NewUserError("transfers are recorded with RecordTransfer", nil)
	}
	if err := txn.Validate(); err != nil {
		return nil, common.NewUserError("invalid transaction", err)
	}

	release := r.locks.acquire(txn.AccountID)
	defer release()

	set, err := r.snapshot(ctx, txn.AccountID)
	if err != nil {
		return nil, err
	}
	if _, ok := set[txn.AccountID]; !ok {
		return nil, fmt.Errorf("%w: %d", common.ErrAccountNotFound, txn.AccountID)
	}

	updated := ledger.ApplyCreate(txn, set)
	return r.storage.InsertTransaction(ctx, &txn, accountsSlice(updated))
}

// UpdateTransaction edits an income or expense transaction in place,
// reversing its old effect and applying the new one as a single net write
// per touched account. Type changes and account moves are permitted;
// converting to or from a transfer is not.
func (r *Recorder) UpdateTransaction(ctx context.Context, txn model.Transaction) error {
	if txn.IsTransfer() {
		return common.NewUserError("transfers are edited with UpdateTransfer", nil)
	}
	if err := txn.Validate(); err != nil {
		return common.NewUserError("invalid transaction", err)
	}

	oldTxn, err := r.storage.GetTransactionByID(ctx, txn.ID)
	if err != nil {
		return fmt.Errorf("failed to load transaction %d: %w", txn.ID, err)
	}
	if oldTxn.IsTransfer() {
		return common.NewUserError("transfers are edited with UpdateTransfer", nil)
	}

	release := r.locks.acquire(oldTxn.AccountID, txn.AccountID)
	defer release()

	set, err := r.snapshot(ctx, oldTxn.AccountID, txn.AccountID)
	if err != nil {
		return err
	}
	if _, ok := set[txn.AccountID]; !ok {
		return fmt.Errorf("%w: %d", common.ErrAccountNotFound, txn.AccountID)
	}

	updated := ledger.ApplyUpdate(*oldTxn, txn, set)
	return r.storage.UpdateTransaction(ctx, &txn, accountsSlice(updated))
}

// DeleteTransaction removes a transaction and reverses its effect. A
// transfer leg routes through the pair delete so the sibling leg and both
// accounts unwind together.
func (r *Recorder) DeleteTransaction(ctx context.Context, id int64) error {
	txn, err := r.storage.GetTransactionByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load transaction %d: %w", id, err)
	}
	if txn.IsTransfer() {
		return r.DeleteTransfer(ctx, txn.PairID)
	}

	release := r.locks.acquire(txn.AccountID)
	defer release()

	set, err := r.snapshot(ctx, txn.AccountID)
	if err != nil {
		return err
	}

	updated := ledger.ApplyDelete(*txn, set)
	return r.storage.DeleteTransaction(ctx, id, accountsSlice(updated))
}

// RecordTransfer persists a new transfer pair: a transfer-out on the
// source account and a transfer-in on the destination, written atomically.
// A self-transfer is accepted and nets to zero.
func (r *Recorder) RecordTransfer(ctx context.Context, details TransferDetails) (*model.Transaction, *model.Transaction, error) {
	out, in := details.legs()
	if err := out.Validate(); err != nil {
		return nil, nil, common.NewUserError("invalid transfer", err)
	}
	if err := in.Validate(); err != nil {
		return nil, nil, common.NewUserError("invalid transfer", err)
	}

	release := r.locks.acquire(details.FromAccountID, details.ToAccountID)
	defer release()

	set, err := r.snapshot(ctx, details.FromAccountID, details.ToAccountID)
	if err != nil {
		return nil, nil, err
	}
	if _, ok := set[details.FromAccountID]; !ok {
		return nil, nil, fmt.Errorf("%w: %d", common.ErrAccountNotFound, details.FromAccountID)
	}
	if _, ok := set[details.ToAccountID]; !ok {
		return nil, nil, fmt.Errorf("%w: %d", common.ErrAccountNotFound, details.ToAccountID)
	}

	updated := ledger.ApplyTransferCreate(out, in, set)
	return r.storage.InsertTransferPair(ctx, &out, &in, accountsSlice(updated))
}

// UpdateTransfer edits a transfer pair: both legs are reconciled against
// the old and new endpoints, touching up to four accounts, each at most
// once.
func (r *Recorder) UpdateTransfer(ctx context.Context, pairID int64, details TransferDetails) error {
	oldOut, oldIn, err := r.storage.GetTransactionPair(ctx, pairID)
	if err != nil {
		return fmt.Errorf("failed to load transfer pair %d: %w", pairID, err)
	}

	newOut, newIn := details.legs()
	newOut.ID, newOut.PairID = oldOut.ID, oldOut.PairID
	newIn.ID, newIn.PairID = oldIn.ID, oldIn.PairID
	if err := newOut.Validate(); err != nil {
		return common.NewUserError("invalid transfer", err)
	}
	if err := newIn.Validate(); err != nil {
		return common.NewUserError("invalid transfer", err)
	}

	release := r.locks.acquire(oldOut.AccountID, oldIn.AccountID, newOut.AccountID, newIn.AccountID)
	defer release()

	set, err := r.snapshot(ctx, oldOut.AccountID, oldIn.AccountID, newOut.AccountID, newIn.AccountID)
	if err != nil {
		return err
	}
	if _, ok := set[newOut.AccountID]; !ok {
		return fmt.Errorf("%w: %d", common.ErrAccountNotFound, newOut.AccountID)
	}
	if _, ok := set[newIn.AccountID]; !ok {
		return fmt.Errorf("%w: %d", common.ErrAccountNotFound, newIn.AccountID)
	}

	updated := ledger.ApplyTransferUpdate(*oldOut, *oldIn, newOut, newIn, set)
	return r.storage.UpdateTransferPair(ctx, &newOut, &newIn, accountsSlice(updated))
}

// DeleteTransfer removes both legs of a transfer pair and reverses both
// account adjustments.
func (r *Recorder) DeleteTransfer(ctx context.Context, pairID int64) error {
	out, in, err := r.storage.GetTransactionPair(ctx, pairID)
	if err != nil {
		return fmt.Errorf("failed to load transfer pair %d: %w", pairID, err)
	}

	release := r.locks.acquire(out.AccountID, in.AccountID)
	defer release()

	set, err := r.snapshot(ctx, out.AccountID, in.AccountID)
	if err != nil {
		return err
	}

	updated := ledger.ApplyTransferDelete(*out, *in, set)
	return r.storage.DeleteTransferPair(ctx, pairID, accountsSlice(updated))
}

// DeleteAccount removes an account and all of its transactions. Transfer
// pairs straddling this account and another are fully unwound first, so
// the surviving accounts get their balances back before the cascade takes
// the rows away.
func (r *Recorder) DeleteAccount(ctx context.Context, id int64) error {
	txns, err := r.storage.GetTransactionsByAccount(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load account transactions: %w", err)
	}

	unwound := make(map[int64]bool)
	for _, txn := range txns {
		if !txn.IsTransfer() || unwound[txn.PairID] {
			continue
		}
		unwound[txn.PairID] = true
		if err := r.DeleteTransfer(ctx, txn.PairID); err != nil && !errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("failed to unwind transfer pair %d: %w", txn.PairID, err)
		}
	}

	release := r.locks.acquire(id)
	defer release()
	return r.storage.DeleteAccount(ctx, id)
}
