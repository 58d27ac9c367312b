package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a named money pool with a running balance.
//
// Balance is the live running value; the opening balance is simply whatever
// Balance held at creation time, before any transaction was applied. There is
// no separate opening-balance field, so a corrupted stored balance cannot be
// recovered by replay.
type Account struct {
	CreatedAt    time.Time
	Name         string
	Balance      decimal.Decimal
	IncomeTotal  decimal.Decimal
	ExpenseTotal decimal.Decimal
	ID           int64
	ColorTag     int64
}

// Validate checks that the account is well-formed enough to persist.
func (a *Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	return nil
}
