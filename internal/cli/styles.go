// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/pennybook/pennybook/internal/model"
)

var (
	// PrimaryColor is the main theme color.
	PrimaryColor = lipgloss.Color("#7EC8A9")
	// IncomeColor marks amounts flowing in.
	IncomeColor = lipgloss.Color("#4ECDC4")
	// ExpenseColor marks amounts flowing out.
	ExpenseColor = lipgloss.Color("#FF6B6B")
	// TransferColor marks internal moves between accounts.
	TransferColor = lipgloss.Color("#95B8E1")
	// WarningColor indicates warnings or caution messages.
	WarningColor = lipgloss.Color("#FFE66D")
	// SubtleColor indicates less prominent UI elements.
	SubtleColor = lipgloss.Color("#666666")

	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	// SuccessStyle formats success messages.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(IncomeColor)

	// WarningStyle formats warning messages.
	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	// ErrorStyle formats error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ExpenseColor)

	// InfoStyle formats informational messages.
	InfoStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	// SubtleStyle formats less prominent text.
	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	// IncomeStyle formats income amounts.
	IncomeStyle = lipgloss.NewStyle().
			Foreground(IncomeColor)

	// ExpenseStyle formats expense amounts.
	ExpenseStyle = lipgloss.NewStyle().
			Foreground(ExpenseColor)

	// TransferStyle formats transfer amounts.
	TransferStyle = lipgloss.NewStyle().
			Foreground(TransferColor)

	// HeaderStyle is used for table headers.
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))
)

// tagPalette maps account and category color tags to terminal colors. Tags
// wrap around when they run past the palette.
var tagPalette = []lipgloss.Color{
	"#7EC8A9", // green
	"#FF6B6B", // red
	"#FFE66D", // yellow
	"#95B8E1", // blue
	"#C792EA", // purple
	"#F78C6C", // orange
	"#89DDFF", // cyan
	"#F07178", // pink
}

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠"
)

// TagStyle returns a style for the given color tag.
func TagStyle(tag int64) lipgloss.Style {
	if tag < 0 {
		tag = -tag
	}
	return lipgloss.NewStyle().Foreground(tagPalette[tag%int64(len(tagPalette))])
}

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

// FormatError formats an error message with icon.
func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

// FormatTitle formats a section title.
func FormatTitle(title string) string {
	return TitleStyle.Render(title)
}

// FormatAmount renders a monetary amount colored by transaction type: income
// with a plus sign, expense and transfer-out with a minus, transfer-in plain.
func FormatAmount(amount decimal.Decimal, txnType model.TransactionType) string {
	value := model.FormatAmount(amount)
	switch txnType {
	case model.TypeIncome:
		return IncomeStyle.Render("+" + value)
	case model.TypeExpense:
		return ExpenseStyle.Render("-" + value)
	case model.TypeTransferOut:
		return TransferStyle.Render("-" + value)
	case model.TypeTransferIn:
		return TransferStyle.Render("+" + value)
	default:
		return value
	}
}

// FormatBalance renders a balance, flagging negative values.
func FormatBalance(balance decimal.Decimal) string {
	value := model.FormatAmount(balance)
	if balance.IsNegative() {
		return ExpenseStyle.Render(value)
	}
	return value
}
