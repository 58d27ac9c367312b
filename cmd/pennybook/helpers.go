package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/viper"

	"github.com/pennybook/pennybook/internal/common"
	"github.com/pennybook/pennybook/internal/config"
	"github.com/pennybook/pennybook/internal/model"
	"github.com/pennybook/pennybook/internal/service"
	"github.com/pennybook/pennybook/internal/storage"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := config.DatabasePath(viper.GetString("database.path"))

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initRecorder builds the transaction recorder on freshly opened storage.
func initRecorder(ctx context.Context) (*service.Recorder, service.Storage, error) {
	store, err := initStorage(ctx)
	if err != nil {
		return nil, nil, err
	}
	return service.NewRecorder(store), store, nil
}

// resolveAccount accepts an account id or display name.
func resolveAccount(ctx context.Context, store service.Storage, ref string) (*model.Account, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		account, err := store.GetAccountByID(ctx, id)
		if err == nil {
			return account, nil
		}
		if !errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
	}

	account, err := store.GetAccountByName(ctx, ref)
	if errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("%w: %q", common.ErrAccountNotFound, ref)
	}
	return account, err
}

// resolveCategory accepts a category id or name.
func resolveCategory(ctx context.Context, store service.Storage, ref string) (*model.Category, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		category, err := store.GetCategoryByID(ctx, id)
		if err == nil {
			return category, nil
		}
		if !errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
	}

	category, err := store.GetCategoryByName(ctx, ref)
	if errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("%w: %q", common.ErrCategoryNotFound, ref)
	}
	return category, err
}

// parseID reads a numeric row id argument.
func parseID(value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", value)
	}
	return id, nil
}

// parseDate reads a user-supplied date. An empty value means today.
func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Now(), nil
	}
	for _, layout := range []string{"2006-01-02", "2006-01-02 15:04"} {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", value)
}

// parseMonth reads a user-supplied month like 2024-03.
func parseMonth(value string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01", value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q (want YYYY-MM)", value)
	}
	return t, nil
}
