package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	t.Run("empty means today", func(t *testing.T) {
		got, err := parseDate("")
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now(), got, time.Minute)
	})

	t.Run("date only", func(t *testing.T) {
		got, err := parseDate("2024-03-05")
		require.NoError(t, err)
		assert.Equal(t, 2024, got.Year())
		assert.Equal(t, time.March, got.Month())
		assert.Equal(t, 5, got.Day())
	})

	t.Run("date and time", func(t *testing.T) {
		got, err := parseDate("2024-03-05 14:30")
		require.NoError(t, err)
		assert.Equal(t, 14, got.Hour())
		assert.Equal(t, 30, got.Minute())
	})

	t.Run("garbage rejected", func(t *testing.T) {
		_, err := parseDate("05/03/2024")
		assert.Error(t, err)
	})
}

func TestParseMonth(t *testing.T) {
	got, err := parseMonth("2024-03")
	require.NoError(t, err)
	assert.Equal(t, 2024, got.Year())
	assert.Equal(t, time.March, got.Month())

	_, err = parseMonth("March 2024")
	assert.Error(t, err)
}

func TestParseID(t *testing.T) {
	id, err := parseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"0", "-3", "abc", ""} {
		_, err := parseID(bad)
		assert.Error(t, err, "input %q", bad)
	}
}
