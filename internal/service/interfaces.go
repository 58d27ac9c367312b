// Package service defines the persistence contract and orchestrates the
// read-compute-write sequence around the reconciliation engine.
package service

import (
	"context"
	"time"

	"github.com/pennybook/pennybook/internal/ledger"
	"github.com/pennybook/pennybook/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
type TransactionFilter struct {
	StartDate  *time.Time
	EndDate    *time.Time
	AccountID  *int64
	CategoryID *int64
	Limit      int
}

// Storage defines the contract for the persistence layer.
type Storage interface {
	// Account operations
	CreateAccount(ctx context.Context, account *model.Account) (*model.Account, error)
	GetAccountByID(ctx context.Context, id int64) (*model.Account, error)
	GetAccountByName(ctx context.Context, name string) (*model.Account, error)
	GetAccounts(ctx context.Context) ([]model.Account, error)
	UpdateAccount(ctx context.Context, account *model.Account) error
	DeleteAccount(ctx context.Context, id int64) error

	// Category operations
	CreateCategory(ctx context.Context, name string, colorTag int64) (*model.Category, error)
	GetCategoryByID(ctx context.Context, id int64) (*model.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	GetCategories(ctx context.Context, includeReserved bool) ([]model.Category, error)
	UpdateCategory(ctx context.Context, category *model.Category) error
	DeleteCategory(ctx context.Context, id int64) error

	// Transaction operations. The mutating calls take the reconciled
	// account records and persist row and accounts in one atomic write.
	InsertTransaction(ctx context.Context, txn *model.Transaction, accounts []model.Account) (*model.Transaction, error)
	InsertTransferPair(ctx context.Context, out, in *model.Transaction, accounts []model.Account) (*model.Transaction, *model.Transaction, error)
	UpdateTransaction(ctx context.Context, txn *model.Transaction, accounts []model.Account) error
	UpdateTransferPair(ctx context.Context, out, in *model.Transaction, accounts []model.Account) error
	DeleteTransaction(ctx context.Context, id int64, accounts []model.Account) error
	DeleteTransferPair(ctx context.Context, pairID int64, accounts []model.Account) error
	GetTransactionByID(ctx context.Context, id int64) (*model.Transaction, error)
	GetTransactionPair(ctx context.Context, pairID int64) (*model.Transaction, *model.Transaction, error)
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	GetTransactionRows(ctx context.Context, filter TransactionFilter) ([]ledger.Row, error)
	GetTransactionsByAccount(ctx context.Context, accountID int64) ([]model.Transaction, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}
