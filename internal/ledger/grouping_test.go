package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pennybook/pennybook/internal/model"
)

func row(t *testing.T, txnType model.TransactionType, amount string, date time.Time, categoryID int64, categoryName string) Row {
	t.Helper()
	txn := testTxn(t, 1, 1, txnType, amount)
	txn.Date = date
	if !txn.IsTransfer() {
		txn.CategoryID = categoryID
	}
	return Row{
		Transaction: txn,
		Account:     testAccount(t, 1, "0"),
		Category:    model.Category{ID: txn.CategoryID, Name: categoryName},
	}
}

func TestGroupByDay(t *testing.T) {
	day1 := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	day2 := time.Date(2024, 6, 3, 18, 0, 0, 0, time.UTC)

	rows := []Row{
		row(t, model.TypeExpense, "20.00", day1, 2, "Food"),
		row(t, model.TypeIncome, "100.00", day2, 3, "Salary"),
		row(t, model.TypeExpense, "15.50", day2, 2, "Food"),
		row(t, model.TypeTransferOut, "40.00", day2, 0, "Transfer"),
	}

	groups := GroupByDay(rows)
	require.Len(t, groups, 2)

	// Newest day first.
	assert.Equal(t, 3, groups[0].Day.Day())
	assert.Equal(t, 1, groups[1].Day.Day())

	// Income adds, everything else (including transfers out) subtracts.
	assert.Equal(t, "44.50", groups[0].Total.StringFixed(2))
	assert.Len(t, groups[0].Rows, 3)
	assert.Equal(t, "-20.00", groups[1].Total.StringFixed(2))

	// Times within a day collapse to the same group.
	assert.True(t, groups[0].Day.Equal(time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)))
}

func TestGroupByDayEmpty(t *testing.T) {
	assert.Empty(t, GroupByDay(nil))
}

func TestMonthRange(t *testing.T) {
	t.Run("spans a year boundary", func(t *testing.T) {
		months := MonthRange(Month{2023, time.November}, Month{2024, time.February})
		require.Len(t, months, 4)
		assert.Equal(t, Month{2023, time.November}, months[0])
		assert.Equal(t, Month{2023, time.December}, months[1])
		assert.Equal(t, Month{2024, time.January}, months[2])
		assert.Equal(t, Month{2024, time.February}, months[3])
	})

	t.Run("single month", func(t *testing.T) {
		months := MonthRange(Month{2024, time.June}, Month{2024, time.June})
		require.Len(t, months, 1)
	})

	t.Run("inverted range is empty", func(t *testing.T) {
		assert.Nil(t, MonthRange(Month{2024, time.June}, Month{2024, time.May}))
	})
}

func TestGroupByMonth(t *testing.T) {
	june := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	august := time.Date(2024, 8, 2, 0, 0, 0, 0, time.UTC)

	rows := []Row{
		row(t, model.TypeIncome, "1000.00", june, 3, "Salary"),
		row(t, model.TypeExpense, "250.00", june, 2, "Food"),
		row(t, model.TypeTransferIn, "75.00", june, 0, "Transfer"),
		row(t, model.TypeExpense, "99.99", august, 2, "Food"),
	}

	groups := GroupByMonth(rows, Month{2024, time.June}, Month{2024, time.September})
	require.Len(t, groups, 4)

	assert.Equal(t, "1000.00", groups[0].Income.StringFixed(2))
	assert.Equal(t, "250.00", groups[0].Expense.StringFixed(2))
	assert.Len(t, groups[0].Rows, 3) // transfer row present but uncounted

	// Gap month holds a zero-valued placeholder.
	assert.Equal(t, Month{2024, time.July}, groups[1].Month)
	assert.Empty(t, groups[1].Rows)
	assert.Equal(t, "0.00", groups[1].Income.StringFixed(2))
	assert.Equal(t, "0.00", groups[1].Expense.StringFixed(2))

	assert.Equal(t, "99.99", groups[2].Expense.StringFixed(2))

	assert.Empty(t, groups[3].Rows)
}

func TestGroupByMonthIgnoresRowsOutsideRange(t *testing.T) {
	rows := []Row{
		row(t, model.TypeExpense, "10.00", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), 2, "Food"),
	}
	groups := GroupByMonth(rows, Month{2024, time.June}, Month{2024, time.June})
	require.Len(t, groups, 1)
	assert.Empty(t, groups[0].Rows)
}

func TestCategoryBreakdown(t *testing.T) {
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	rows := []Row{
		row(t, model.TypeExpense, "30.00", day, 2, "Food"),
		row(t, model.TypeExpense, "45.00", day, 2, "Food"),
		row(t, model.TypeExpense, "20.00", day, 4, "Fuel"),
		row(t, model.TypeIncome, "500.00", day, 3, "Salary"),
		row(t, model.TypeTransferOut, "100.00", day, 0, "Transfer"),
	}

	slices := CategoryBreakdown(rows)
	require.Len(t, slices, 3)

	// Largest first; transfer legs never appear.
	assert.Equal(t, "Salary", slices[0].Category.Name)
	assert.Equal(t, "500.00", slices[0].Amount.StringFixed(2))
	assert.Equal(t, "Food", slices[1].Category.Name)
	assert.Equal(t, "75.00", slices[1].Amount.StringFixed(2))
	assert.Equal(t, "Fuel", slices[2].Category.Name)
}
