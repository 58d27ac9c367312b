package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pennybook/pennybook/internal/model"
)

func TestMigrate(t *testing.T) {
	ctx := context.Background()

	t.Run("fresh database reaches expected version", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		var version int
		err := store.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version)
		require.NoError(t, err)
		assert.Equal(t, ExpectedSchemaVersion, version)
	})

	t.Run("migrate is idempotent", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		require.NoError(t, store.Migrate(ctx))
		require.NoError(t, store.Migrate(ctx))
	})

	t.Run("transfer category is seeded", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		cat, err := store.GetCategoryByID(ctx, model.TransferCategoryID)
		require.NoError(t, err)
		assert.Equal(t, model.TransferCategoryName, cat.Name)
		assert.True(t, cat.IsTransferCategory())
	})

	t.Run("survives reopening", func(t *testing.T) {
		tmpDir := t.TempDir()
		dbPath := filepath.Join(tmpDir, "test.db")

		store, err := NewSQLiteStorage(dbPath)
		require.NoError(t, err)
		require.NoError(t, store.Migrate(ctx))

		account, err := store.CreateAccount(ctx, &model.Account{Name: "Checking"})
		require.NoError(t, err)
		require.NoError(t, store.Close())

		reopened, err := NewSQLiteStorage(dbPath)
		require.NoError(t, err)
		defer func() { _ = reopened.Close() }()
		require.NoError(t, reopened.Migrate(ctx))

		retrieved, err := reopened.GetAccountByID(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, "Checking", retrieved.Name)
	})
}

func TestValidation(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	t.Run("zero id rejected", func(t *testing.T) {
		_, err := store.GetAccountByID(context.Background(), 0)
		assert.ErrorIs(t, err, ErrInvalidID)
	})

	t.Run("empty name rejected", func(t *testing.T) {
		_, err := store.GetAccountByName(context.Background(), "   ")
		assert.ErrorIs(t, err, ErrEmptyString)
	})
}
