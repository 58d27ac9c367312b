package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pennybook/pennybook/internal/model"
)

// Row is a transaction joined with the account and category it references,
// the shape the browsing and report views consume. Grouping functions are
// pure projections over a fetched list and never mutate their input.
type Row struct {
	Transaction model.Transaction
	Account     model.Account
	Category    model.Category
}

// DayGroup holds one calendar day's transactions and their net total:
// income adds, everything else subtracts.
type DayGroup struct {
	Day   time.Time
	Rows  []Row
	Total decimal.Decimal
}

// GroupByDay groups rows by calendar day, newest day first. Days with no
// transactions are simply absent.
func GroupByDay(rows []Row) []DayGroup {
	byDay := make(map[time.Time]*DayGroup)
	for _, row := range rows {
		day := row.Transaction.Day()
		group, ok := byDay[day]
		if !ok {
			group = &DayGroup{Day: day, Total: decimal.Zero}
			byDay[day] = group
		}
		group.Rows = append(group.Rows, row)
		if row.Transaction.Type == model.TypeIncome {
			group.Total = model.Round2(group.Total.Add(row.Transaction.Amount))
		} else {
			group.Total = model.Round2(group.Total.Sub(row.Transaction.Amount))
		}
	}

	groups := make([]DayGroup, 0, len(byDay))
	for _, group := range byDay {
		groups = append(groups, *group)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Day.After(groups[j].Day)
	})
	return groups
}

// Month identifies a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// Before reports whether m precedes other.
func (m Month) Before(other Month) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}
	return m.Month < other.Month
}

// Next returns the following month.
func (m Month) Next() Month {
	if m.Month == time.December {
		return Month{Year: m.Year + 1, Month: time.January}
	}
	return Month{Year: m.Year, Month: m.Month + 1}
}

// String renders the month as YYYY-MM.
func (m Month) String() string {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

// MonthRange returns every month from from to to inclusive. An inverted
// range yields nil.
func MonthRange(from, to Month) []Month {
	if to.Before(from) {
		return nil
	}
	var months []Month
	for m := from; !to.Before(m); m = m.Next() {
		months = append(months, m)
	}
	return months
}

// MonthGroup holds one calendar month's transactions with income and
// expense sums. Transfers move money but count toward neither sum.
type MonthGroup struct {
	Month   Month
	Rows    []Row
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// GroupByMonth groups rows by calendar month over the inclusive range
// [from, to], oldest first. Months with no transactions are present with
// zero-valued sums so the browsing view can page through a full range.
// Rows outside the range are ignored.
func GroupByMonth(rows []Row, from, to Month) []MonthGroup {
	months := MonthRange(from, to)
	index := make(map[Month]int, len(months))
	groups := make([]MonthGroup, len(months))
	for i, m := range months {
		groups[i] = MonthGroup{Month: m, Income: decimal.Zero, Expense: decimal.Zero}
		index[m] = i
	}

	for _, row := range rows {
		i, ok := index[MonthOf(row.Transaction.Date)]
		if !ok {
			continue
		}
		groups[i].Rows = append(groups[i].Rows, row)
		switch row.Transaction.Type {
		case model.TypeIncome:
			groups[i].Income = model.Round2(groups[i].Income.Add(row.Transaction.Amount))
		case model.TypeExpense:
			groups[i].Expense = model.Round2(groups[i].Expense.Add(row.Transaction.Amount))
		}
	}

	return groups
}

// CategorySlice is one wedge of the category pie: a category and the summed
// amount of its transactions.
type CategorySlice struct {
	Category model.Category
	Amount   decimal.Decimal
}

// CategoryBreakdown sums transaction amounts per category for pie-style
// reporting. Transfer legs are excluded, zero-amount categories are
// dropped, and slices come back largest first.
func CategoryBreakdown(rows []Row) []CategorySlice {
	totals := make(map[int64]*CategorySlice)
	for _, row := range rows {
		if row.Transaction.IsTransfer() {
			continue
		}
		slice, ok := totals[row.Category.ID]
		if !ok {
			slice = &CategorySlice{Category: row.Category, Amount: decimal.Zero}
			totals[row.Category.ID] = slice
		}
		slice.Amount = model.Round2(slice.Amount.Add(row.Transaction.Amount))
	}

	slices := make([]CategorySlice, 0, len(totals))
	for _, slice := range totals {
		if slice.Amount.IsZero() {
			continue
		}
		slices = append(slices, *slice)
	}
	sort.Slice(slices, func(i, j int) bool {
		if !slices[i].Amount.Equal(slices[j].Amount) {
			return slices[i].Amount.GreaterThan(slices[j].Amount)
		}
		return slices[i].Category.Name < slices[j].Category.Name
	})
	return slices
}
