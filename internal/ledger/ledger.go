// Package ledger implements the balance reconciliation engine: pure
// computation of the account mutations caused by creating, editing, or
// deleting transactions. It performs no I/O and never trusts a stored
// balance to already reflect the pending change; every delta is derived
// explicitly from old vs. new transaction state.
package ledger

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/pennybook/pennybook/internal/model"
)

// AccountSet is a snapshot of accounts keyed by account id.
type AccountSet map[int64]model.Account

// Clone returns a shallow copy of the set. Decimal values are immutable, so
// a shallow copy is safe.
func (s AccountSet) Clone() AccountSet {
	out := make(AccountSet, len(s))
	for id, acc := range s {
		out[id] = acc
	}
	return out
}

// reconciler accumulates adjustments against working copies of the affected
// accounts. Each account appears at most once in the result, so an update
// that reverses and reapplies on the same account surfaces as a single net
// write.
type reconciler struct {
	snapshot AccountSet
	touched  AccountSet
}

func newReconciler(accounts AccountSet) *reconciler {
	return &reconciler{snapshot: accounts, touched: make(AccountSet)}
}

func (r *reconciler) account(id int64) (model.Account, bool) {
	if acc, ok := r.touched[id]; ok {
		return acc, true
	}
	acc, ok := r.snapshot[id]
	return acc, ok
}

// adjust applies the effect of txn scaled by sign: +1 applies it, -1
// reverses it. A missing account is skipped with a warning rather than
// failing; there is no recovery action meaningful to a single local user.
func (r *reconciler) adjust(txn model.Transaction, sign int64) {
	acc, ok := r.account(txn.AccountID)
	if !ok {
		slog.Warn("skipping adjustment for missing account",
			"account_id", txn.AccountID,
			"transaction_id", txn.ID,
			"type", txn.Type)
		return
	}

	amount := txn.Amount.Mul(decimal.NewFromInt(sign))

	switch txn.Type {
	case model.TypeIncome:
		acc.Balance = model.Round2(acc.Balance.Add(amount))
		acc.IncomeTotal = model.Round2(acc.IncomeTotal.Add(amount))
	case model.TypeExpense:
		acc.Balance = model.Round2(acc.Balance.Sub(amount))
		acc.ExpenseTotal = model.Round2(acc.ExpenseTotal.Add(amount))
	case model.TypeTransferOut:
		// Transfers move money without counting as income or expense,
		// so the running totals stay untouched.
		acc.Balance = model.Round2(acc.Balance.Sub(amount))
	case model.TypeTransferIn:
		acc.Balance = model.Round2(acc.Balance.Add(amount))
	}

	r.touched[txn.AccountID] = acc
}

func (r *reconciler) result() AccountSet {
	return r.touched
}

// ApplyCreate computes the account mutations caused by inserting a new
// income or expense transaction. The input snapshot must contain the
// targeted account; the transaction must already be validated.
func ApplyCreate(txn model.Transaction, accounts AccountSet) AccountSet {
	r := newReconciler(accounts)
	r.adjust(txn, 1)
	return r.result()
}

// ApplyUpdate computes the account mutations caused by editing a
// transaction in place. The old effect is fully reversed and the new effect
// fully applied, even when only the amount changed, so type changes and
// account moves fall out of the same path. An account that is both the old
// and new target receives one merged net adjustment.
func ApplyUpdate(oldTxn, newTxn model.Transaction, accounts AccountSet) AccountSet {
	r := newReconciler(accounts)
	r.adjust(oldTxn, -1)
	r.adjust(newTxn, 1)
	return r.result()
}

// ApplyDelete computes the account mutations caused by removing a
// transaction: the exact reversal of ApplyCreate.
func ApplyDelete(txn model.Transaction, accounts AccountSet) AccountSet {
	r := newReconciler(accounts)
	r.adjust(txn, -1)
	return r.result()
}

// ApplyTransferCreate computes the mutations for a new transfer pair. The
// source balance decreases and the destination balance increases by the
// transfer amount. A self-transfer computes both adjustments against the
// same account and nets to exactly zero, appearing once in the result.
func ApplyTransferCreate(out, in model.Transaction, accounts AccountSet) AccountSet {
	r := newReconciler(accounts)
	r.adjust(out, 1)
	r.adjust(in, 1)
	return r.result()
}

// ApplyTransferUpdate reconciles an edit to a transfer pair against both
// the old and the new legs. Up to four distinct accounts can be touched
// when both endpoints change; accounts in both the old and new pair merge
// into a single net adjustment.
func ApplyTransferUpdate(oldOut, oldIn, newOut, newIn model.Transaction, accounts AccountSet) AccountSet {
	r := newReconciler(accounts)
	r.adjust(oldOut, -1)
	r.adjust(oldIn, -1)
	r.adjust(newOut, 1)
	r.adjust(newIn, 1)
	return r.result()
}

// ApplyTransferDelete reverses both legs of a transfer pair. Deleting
// either leg of a pair must route through this so the sibling leg and both
// accounts are unwound together.
func ApplyTransferDelete(out, in model.Transaction, accounts AccountSet) AccountSet {
	r := newReconciler(accounts)
	r.adjust(out, -1)
	r.adjust(in, -1)
	return r.result()
}
