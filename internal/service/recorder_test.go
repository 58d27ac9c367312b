package service_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pennybook/pennybook/internal/common"
	"github.com/pennybook/pennybook/internal/model"
	"github.com/pennybook/pennybook/internal/service"
	"github.com/pennybook/pennybook/internal/storage"
)

func createTestRecorder(t *testing.T) (*service.Recorder, *storage.SQLiteStorage, func()) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return service.NewRecorder(store), store, func() { _ = store.Close() }
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testDate(day int) time.Time {
	return time.Date(2024, time.March, day, 12, 0, 0, 0, time.UTC)
}

func assertMoney(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, got.Equal(dec(want)), "amount = %s, want %s (%v)", got, want, msgAndArgs)
}

func setupAccount(t *testing.T, recorder *service.Recorder, name, balance string) *model.Account {
	t.Helper()
	account, err := recorder.CreateAccount(context.Background(), model.Account{
		Name:    name,
		Balance: dec(balance),
	})
	require.NoError(t, err)
	return account
}

func TestRecordTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("income raises balance and income total", func(t *testing.T) {
		recorder, store, cleanup := createTestRecorder(t)
		defer cleanup()

		account := setupAccount(t, recorder, "Checking", "100.00")
		salary, err := store.CreateCategory(ctx, "Salary", 0)
		require.NoError(t, err)

		txn, err := recorder.RecordTransaction(ctx, model.Transaction{
			Title:      "Paycheck",
			Amount:     dec("1500.00"),
			Type:       model.TypeIncome,
			Date:       testDate(1),
			AccountID:  account.ID,
			CategoryID: salary.ID,
		})
		require.NoError(t, err)
		assert.NotZero(t, txn.ID)

		updated, err := store.GetAccountByID(ctx, account.ID)
		require.NoError(t, err)
		assertMoney(t, "1600.00", updated.Balance)
		assertMoney(t, "1500.00", updated.IncomeTotal)
		assertMoney(t, "0.00", updated.ExpenseTotal)
	})

	t.Run("expense can drive balance negative", func(t *testing.T) {
		recorder, store, cleanup := createTestRecorder(t)
		defer cleanup()

		account := setupAccount(t, recorder, "Checking", "10.00")
		food, err := store.CreateCategory(ctx, "Food", 0)
		require.NoError(t, err)

		_, err = recorder.RecordTransaction(ctx, model.Transaction{
			Title:      "Dinner",
			Amount:     dec("35.00"),
			Type:       model.TypeExpense,
			Date:       testDate(2),
			AccountID:  account.ID,
			CategoryID: food.ID,
		})
		require.NoError(t, err)

		updated, err := store.GetAccountByID(ctx, account.ID)
		require.NoError(t, err)
		assertMoney(t, "-25.00", updated.Balance)
		assertMoney(t, "35.00", updated.ExpenseTotal)
	})

	t.Run("unknown account rejected", func(t *testing.T) {
		recorder, _, cleanup := createTestRecorder(t)
		defer cleanup()

		_, err := recorder.RecordTransaction(ctx, model.Transaction{
			Title:      "Paycheck",
			Amount:     dec("10.00"),
			Type:       model.TypeIncome,
			Date:       testDate(1),
			AccountID:  42,
			CategoryID: 2,
		})
		assert.ErrorIs(t, err, common.ErrAccountNotFound)
	})

	t.Run("transfer leg rejected", func(t *testing.T) {
		recorder, _, cleanup := createTestRecorder(t)
		defer cleanup()

		_, err := recorder.RecordTransaction(ctx, model.Transaction{
			Title:      "Sneaky",
			Amount:     dec("10.00"),
			Type:       model.TypeTransferOut,
			Date:       testDate(1),
			AccountID:  1,
			CategoryID: model.TransferCategoryID,
		})
		assert.Error(t, err)
	})
}

func TestUpdateTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("amount change nets out", func(t *testing.T) {
		recorder, store, cleanup := createTestRecorder(t)
		defer cleanup()

		account := setupAccount(t, recorder, "Checking", "100.00")
		food, err := store.CreateCategory(ctx, "Food", 0)
		require.NoError(t, err)

		txn, err := recorder.RecordTransaction(ctx, model.Transaction{
			Title:      "Dinner",
			Amount:     dec("30.00"),
			Type:       model.TypeExpense,
			Date:       testDate(2),
			AccountID:  account.ID,
			CategoryID: food.ID,
		})
		require.NoError(t, err)

		edited := *txn
		edited.Amount = dec("45.00")
		require.NoError(t, recorder.UpdateTransaction(ctx, edited))

		updated, err := store.GetAccountByID(ctx, account.ID)
		require.NoError(t, err)
		assertMoney(t, "55.00", updated.Balance)
		assertMoney(t, "45.00", updated.ExpenseTotal)
	})

	t.Run("type flip moves both totals", func(t *testing.T) {
		recorder, store, cleanup := createTestRecorder(t)
		defer cleanup()

		account := setupAccount(t, recorder, "Checking", "100.00")
		misc, err := store.CreateCategory(ctx, "Misc", 0)
		require.NoError(t, err)

		txn, err := recorder.RecordTransaction(ctx, model.Transaction{
			Title:      "Refund",
			Amount:     dec("30.00"),
			Type:       model.TypeExpense,
			Date:       testDate(2),
			AccountID:  account.ID,
			CategoryID: misc.ID,
		})
		require.NoError(t, err)

		edited := *txn
		edited.Type = model.TypeIncome
		require.NoError(t, recorder.UpdateTransaction(ctx, edited))

		updated, err := store.GetAccountByID(ctx, account.ID)
		require.NoError(t, err)
		assertMoney(t, "130.00", updated.Balance)
		assertMoney(t, "30.00", updated.IncomeTotal)
		assertMoney(t, "0.00", updated.ExpenseTotal)
	})

	t.Run("account move adjusts both accounts", func(t *testing.T) {
		recorder, store, cleanup := createTestRecorder(t)
		defer cleanup()

		checking := setupAccount(t, recorder, "Checking", "100.00")
		savings := setupAccount(t, recorder, "Savings", "50.00")
		food, err := store.CreateCategory(ctx, "Food", 0)
		require.NoError(t, err)

		txn, err := recorder.RecordTransaction(ctx, model.Transaction{
			Title:      "Dinner",
			Amount:     dec("20.00"),
			Type:       model.TypeExpense,
			Date:       testDate(2),
			AccountID:  checking.ID,
			CategoryID: food.ID,
		})
		require.NoError(t, err)

		edited := *txn
		edited.AccountID = savings.ID
		require.NoError(t, recorder.UpdateTransaction(ctx, edited))

		gotChecking, err := store.GetAccountByID(ctx, checking.ID)
		require.NoError(t, err)
		assertMoney(t, "100.00", gotChecking.Balance)
		assertMoney(t, "0.00", gotChecking.ExpenseTotal)

		gotSavings, err := store.GetAccountByID(ctx, savings.ID)
		require.NoError(t, err)
		assertMoney(t, "30.00", gotSavings.Balance)
		assertMoney(t, "20.00", gotSavings.ExpenseTotal)
	})
}

func TestDeleteTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("delete reverses the effect", func(t *testing.T) {
		recorder, store, cleanup := createTestRecorder(t)
		defer cleanup()

		account := setupAccount(t, recorder, "Checking", "100.00")
		food, err := store.CreateCategory(ctx, "Food", 0)
		require.NoError(t, err)

		txn, err := recorder.RecordTransaction(ctx, model.Transaction{
			Title:      "Dinner",
			Amount:     dec("30.00"),
			Type:       model.TypeExpense,
			Date:       testDate(2),
			AccountID:  account.ID,
			CategoryID: food.ID,
		})
		require.NoError(t, err)

		require.NoError(t, recorder.DeleteTransaction(ctx, txn.ID))

		updated, err := store.GetAccountByID(ctx, account.ID)
		require.NoError(t, err)
		assertMoney(t, "100.00", updated.Balance)
		assertMoney(t, "0.00", updated.ExpenseTotal)

		_, err = store.GetTransactionByID(ctx, txn.ID)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("deleting a transfer leg removes the pair", func(t *testing.T) {
		recorder, store, cleanup := createTestRecorder(t)
		defer cleanup()

		checking := setupAccount(t, recorder, "Checking", "100.00")
		savings := setupAccount(t, recorder, "Savings", "50.00")

		out, in, err := recorder.RecordTransfer(ctx, service.TransferDetails{
			Date:          testDate(3),
			Title:         "To savings",
			Amount:        dec("25.00"),
			FromAccountID: checking.ID,
			ToAccountID:   savings.ID,
		})
		require.NoError(t, err)

		// Deleting either leg unwinds both.
		require.NoError(t, recorder.DeleteTransaction(ctx, in.ID))

		_, err = store.GetTransactionByID(ctx, out.ID)
		assert.ErrorIs(t, err, common.ErrNotFound)
		_, err = store.GetTransactionByID(ctx, in.ID)
		assert.ErrorIs(t, err, common.ErrNotFound)

		gotChecking, err := store.GetAccountByID(ctx, checking.ID)
		require.NoError(t, err)
		assertMoney(t, "100.00", gotChecking.Balance)

		gotSavings, err := store.GetAccountByID(ctx, savings.ID)
		require.NoError(t, err)
		assertMoney(t, "50.00", gotSavings.Balance)
	})
}

func TestRecordTransfer(t *testing.T) {
	ctx := context.Background()

	t.Run("both legs and balances move", func(t *testing.T) {
		recorder, store, cleanup := createTestRecorder(t)
		defer cleanup()

		checking := setupAccount(t, recorder, "Checking", "100.00")
		savings := setupAccount(t, recorder, "Savings", "50.00")

		out, in, err := recorder.RecordTransfer(ctx, service.TransferDetails{
			Date:          testDate(3),
			Title:         "To savings",
			Amount:        dec("25.00"),
			FromAccountID: checking.ID,
			ToAccountID:   savings.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, out.PairID, in.PairID)
		assert.Equal(t, model.TransferCategoryID, out.CategoryID)
		assert.Equal(t, model.TransferCategoryID, in.CategoryID)

		gotChecking, err := store.GetAccountByID(ctx, checking.ID)
		require.NoError(t, err)
		assertMoney(t, "75.00", gotChecking.Balance)
		assertMoney(t, "0.00", gotChecking.IncomeTotal)
		assertMoney(t, "0.00", gotChecking.ExpenseTotal)

		gotSavings, err := store.GetAccountByID(ctx, savings.ID)
		require.NoError(t, err)
		assertMoney(t, "75.00", gotSavings.Balance)
		assertMoney(t, "0.00", gotSavings.IncomeTotal)
	})

	t.Run("self transfer nets to zero", func(t *testing.T) {
		recorder, store, cleanup := createTestRecorder(t)
		defer cleanup()

		account := setupAccount(t, recorder, "Checking", "100.00")

		_, _, err := recorder.RecordTransfer(ctx, service.TransferDetails{
			Date:          testDate(3),
			Title:         "Round trip",
			Amount:        dec("40.00"),
			FromAccountID: account.ID,
			ToAccountID:   account.ID,
		})
		require.NoError(t, err)

		updated, err := store.GetAccountByID(ctx, account.ID)
		require.NoError(t, err)
		assertMoney(t, "100.00", updated.Balance)
	})

	t.Run("unknown destination rejected", func(t *testing.T) {
		recorder, _, cleanup := createTestRecorder(t)
		defer cleanup()

		checking := setupAccount(t, recorder, "Checking", "100.00")

		_, _, err := recorder.RecordTransfer(ctx, service.TransferDetails{
			Date:          testDate(3),
			Title:         "Nowhere",
			Amount:        dec("25.00"),
			FromAccountID: checking.ID,
			ToAccountID:   99,
		})
		assert.ErrorIs(t, err, common.ErrAccountNotFound)
	})
}

func TestUpdateTransfer(t *testing.T) {
	ctx := context.Background()

	t.Run("amount change", func(t *testing.T) {
		recorder, store, cleanup := createTestRecorder(t)
		defer cleanup()

		checking := setupAccount(t, recorder, "Checking", "100.00")
		savings := setupAccount(t, recorder, "Savings", "50.00")

		out, _, err := recorder.RecordTransfer(ctx, service.TransferDetails{
			Date:          testDate(3),
			Title:         "To savings",
			Amount:        dec("25.00"),
			FromAccountID: checking.ID,
			ToAccountID:   savings.ID,
		})
		require.NoError(t, err)

		require.NoError(t, recorder.UpdateTransfer(ctx, out.PairID, service.TransferDetails{
			Date:          testDate(3),
			Title:         "To savings",
			Amount:        dec("40.00"),
			FromAccountID: checking.ID,
			ToAccountID:   savings.ID,
		}))

		gotChecking, err := store.GetAccountByID(ctx, checking.ID)
		require.NoError(t, err)
		assertMoney(t, "60.00", gotChecking.Balance)

		gotSavings, err := store.GetAccountByID(ctx, savings.ID)
		require.NoError(t, err)
		assertMoney(t, "90.00", gotSavings.Balance)
	})

	t.Run("endpoint change touches all four accounts", func(t *testing.T) {
		recorder, store, cleanup := createTestRecorder(t)
		defer cleanup()

		a := setupAccount(t, recorder, "A", "100.00")
		b := setupAccount(t, recorder, "B", "100.00")
		c := setupAccount(t, recorder, "C", "100.00")
		d := setupAccount(t, recorder, "D", "100.00")

		out, _, err := recorder.RecordTransfer(ctx, service.TransferDetails{
			Date:          testDate(3),
			Title:         "Shuffle",
			Amount:        dec("10.00"),
			FromAccountID: a.ID,
			ToAccountID:   b.ID,
		})
		require.NoError(t, err)

		require.NoError(t, recorder.UpdateTransfer(ctx, out.PairID, service.TransferDetails{
			Date:          testDate(4),
			Title:         "Shuffle",
			Amount:        dec("10.00"),
			FromAccountID: c.ID,
			ToAccountID:   d.ID,
		}))

		for id, want := range map[int64]string{
			a.ID: "100.00",
			b.ID: "100.00",
			c.ID: "90.00",
			d.ID: "110.00",
		} {
			account, err := store.GetAccountByID(ctx, id)
			require.NoError(t, err)
			assertMoney(t, want, account.Balance, "account", id)
		}
	})

	t.Run("missing pair", func(t *testing.T) {
		recorder, _, cleanup := createTestRecorder(t)
		defer cleanup()

		err := recorder.UpdateTransfer(ctx, 77, service.TransferDetails{
			Date:          testDate(3),
			Title:         "Ghost",
			Amount:        dec("10.00"),
			FromAccountID: 1,
			ToAccountID:   2,
		})
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestDeleteAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("unwinds transfers into surviving accounts", func(t *testing.T) {
		recorder, store, cleanup := createTestRecorder(t)
		defer cleanup()

		checking := setupAccount(t, recorder, "Checking", "100.00")
		savings := setupAccount(t, recorder, "Savings", "50.00")

		_, _, err := recorder.RecordTransfer(ctx, service.TransferDetails{
			Date:          testDate(3),
			Title:         "To savings",
			Amount:        dec("25.00"),
			FromAccountID: checking.ID,
			ToAccountID:   savings.ID,
		})
		require.NoError(t, err)

		require.NoError(t, recorder.DeleteAccount(ctx, checking.ID))

		_, err = store.GetAccountByID(ctx, checking.ID)
		assert.ErrorIs(t, err, common.ErrNotFound)

		gotSavings, err := store.GetAccountByID(ctx, savings.ID)
		require.NoError(t, err)
		assertMoney(t, "50.00", gotSavings.Balance)

		txns, err := store.GetTransactionsByAccount(ctx, savings.ID)
		require.NoError(t, err)
		assert.Empty(t, txns)
	})

	t.Run("own transactions go with the account", func(t *testing.T) {
		recorder, store, cleanup := createTestRecorder(t)
		defer cleanup()

		account := setupAccount(t, recorder, "Checking", "100.00")
		food, err := store.CreateCategory(ctx, "Food", 0)
		require.NoError(t, err)

		txn, err := recorder.RecordTransaction(ctx, model.Transaction{
			Title:      "Dinner",
			Amount:     dec("30.00"),
			Type:       model.TypeExpense,
			Date:       testDate(2),
			AccountID:  account.ID,
			CategoryID: food.ID,
		})
		require.NoError(t, err)

		require.NoError(t, recorder.DeleteAccount(ctx, account.ID))

		_, err = store.GetTransactionByID(ctx, txn.ID)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestAccountManagement(t *testing.T) {
	ctx := context.Background()

	t.Run("opening balance never counts as income", func(t *testing.T) {
		recorder, _, cleanup := createTestRecorder(t)
		defer cleanup()

		account := setupAccount(t, recorder, "Savings", "500.00")
		assertMoney(t, "500.00", account.Balance)
		assertMoney(t, "0.00", account.IncomeTotal)
	})

	t.Run("rename and recolor", func(t *testing.T) {
		recorder, store, cleanup := createTestRecorder(t)
		defer cleanup()

		account := setupAccount(t, recorder, "Checking", "0.00")
		require.NoError(t, recorder.RenameAccount(ctx, account.ID, "Daily spending"))
		require.NoError(t, recorder.SetAccountColor(ctx, account.ID, 4))

		updated, err := store.GetAccountByID(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, "Daily spending", updated.Name)
		assert.Equal(t, int64(4), updated.ColorTag)
	})

	t.Run("rename to empty rejected", func(t *testing.T) {
		recorder, _, cleanup := createTestRecorder(t)
		defer cleanup()

		account := setupAccount(t, recorder, "Checking", "0.00")
		assert.Error(t, recorder.RenameAccount(ctx, account.ID, "  "))
	})
}
