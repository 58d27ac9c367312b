// Package model defines the record types shared across the application.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType describes the direction of a recorded money movement.
type TransactionType string

const (
	// TypeIncome adds money to an account.
	TypeIncome TransactionType = "income"
	// TypeExpense removes money from an account.
	TypeExpense TransactionType = "expense"
	// TypeTransferOut is the source leg of a transfer pair.
	TypeTransferOut TransactionType = "transfer_out"
	// TypeTransferIn is the destination leg of a transfer pair.
	TypeTransferIn TransactionType = "transfer_in"
)

// Validation errors shared by the model types.
var (
	ErrEmptyName     = errors.New("name cannot be blank")
	ErrEmptyTitle    = errors.New("title cannot be blank")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidType   = errors.New("invalid transaction type")
	ErrZeroDate      = errors.New("date cannot be zero")
	ErrNoAccount     = errors.New("transaction requires an account")
	ErrNoCategory    = errors.New("transaction requires a category")
)

// Transaction represents a single recorded money movement. Amount is always
// non-negative; the direction comes from Type. Transfer legs carry the
// reserved transfer category and share a PairID with their sibling leg.
type Transaction struct {
	Date       time.Time
	Title      string
	Details    string
	Amount     decimal.Decimal
	Type       TransactionType
	ID         int64
	AccountID  int64
	CategoryID int64
	// PairID links the two legs of a transfer pair; zero for income/expense.
	PairID int64
}

// IsTransfer reports whether the transaction is a leg of a transfer pair.
func (t *Transaction) IsTransfer() bool {
	return t.Type == TypeTransferOut || t.Type == TypeTransferIn
}

// Day truncates the transaction date to calendar-day granularity, which is
// the resolution used for grouping and display.
func (t *Transaction) Day() time.Time {
	y, m, d := t.Date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Date.Location())
}

// Validate checks that the transaction is well-formed enough to persist.
// Callers run this before handing the transaction to the ledger.
func (t *Transaction) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	switch t.Type {
	case TypeIncome, TypeExpense, TypeTransferOut, TypeTransferIn:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidType, t.Type)
	}
	if t.Amount.IsNegative() || t.Amount.IsZero() {
		return fmt.Errorf("%w: must be positive", ErrInvalidAmount)
	}
	if t.Date.IsZero() {
		return ErrZeroDate
	}
	if t.AccountID == 0 {
		return ErrNoAccount
	}
	if t.IsTransfer() {
		if t.CategoryID != TransferCategoryID {
			return fmt.Errorf("%w: transfer legs use the reserved transfer category", ErrNoCategory)
		}
	} else if t.CategoryID == 0 {
		return ErrNoCategory
	}
	return nil
}
