package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pennybook/pennybook/internal/common"
	"github.com/pennybook/pennybook/internal/model"
)

func TestCreateAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("create with opening balance", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		account, err := store.CreateAccount(ctx, &model.Account{
			Name:     "Checking",
			Balance:  dec("150.00"),
			ColorTag: 3,
		})
		require.NoError(t, err)
		assert.NotZero(t, account.ID)

		retrieved, err := store.GetAccountByID(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, "Checking", retrieved.Name)
		assert.True(t, retrieved.Balance.Equal(dec("150.00")), "balance = %s", retrieved.Balance)
		assert.True(t, retrieved.IncomeTotal.IsZero())
		assert.True(t, retrieved.ExpenseTotal.IsZero())
		assert.Equal(t, int64(3), retrieved.ColorTag)
		assert.False(t, retrieved.CreatedAt.IsZero())
	})

	t.Run("empty name rejected", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		_, err := store.CreateAccount(ctx, &model.Account{Name: "  "})
		assert.Error(t, err)
	})

	t.Run("duplicate names allowed", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		first := createTestAccount(t, store, "Wallet", "10.00")
		second := createTestAccount(t, store, "Wallet", "20.00")
		assert.NotEqual(t, first.ID, second.ID)

		// Lookup by name returns the oldest match.
		found, err := store.GetAccountByName(ctx, "Wallet")
		require.NoError(t, err)
		assert.Equal(t, first.ID, found.ID)
	})
}

func TestGetAccounts(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	accounts, err := store.GetAccounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, accounts)

	createTestAccount(t, store, "Checking", "100.00")
	createTestAccount(t, store, "Savings", "500.00")

	accounts, err = store.GetAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "Checking", accounts[0].Name)
	assert.Equal(t, "Savings", accounts[1].Name)
}

func TestUpdateAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("update persists all fields", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		account := createTestAccount(t, store, "Checking", "100.00")
		account.Name = "Main checking"
		account.Balance = dec("80.50")
		account.IncomeTotal = dec("200.00")
		account.ExpenseTotal = dec("119.50")
		account.ColorTag = 7

		require.NoError(t, store.UpdateAccount(ctx, account))

		retrieved, err := store.GetAccountByID(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, "Main checking", retrieved.Name)
		assert.True(t, retrieved.Balance.Equal(dec("80.50")))
		assert.True(t, retrieved.IncomeTotal.Equal(dec("200.00")))
		assert.True(t, retrieved.ExpenseTotal.Equal(dec("119.50")))
		assert.Equal(t, int64(7), retrieved.ColorTag)
	})

	t.Run("missing account", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		err := store.UpdateAccount(ctx, &model.Account{ID: 999, Name: "Ghost"})
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestDeleteAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("delete cascades to transactions", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		account := createTestAccount(t, store, "Checking", "100.00")
		category := createTestCategory(t, store, "Food")

		txn, err := store.InsertTransaction(ctx, &model.Transaction{
			Title:      "Lunch",
			Amount:     dec("12.00"),
			Type:       model.TypeExpense,
			Date:       testDate(1),
			AccountID:  account.ID,
			CategoryID: category.ID,
		}, nil)
		require.NoError(t, err)

		require.NoError(t, store.DeleteAccount(ctx, account.ID))

		_, err = store.GetAccountByID(ctx, account.ID)
		assert.ErrorIs(t, err, common.ErrNotFound)

		_, err = store.GetTransactionByID(ctx, txn.ID)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("missing account", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		assert.ErrorIs(t, store.DeleteAccount(ctx, 42), common.ErrNotFound)
	})
}
