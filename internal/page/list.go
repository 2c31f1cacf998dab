package page

import (
	"fmt"

	"budget/internal/core"
)

// ListRow is one line of the expense list.
type ListRow struct {
	ID       core.ExpenseID
	Date     string
	Category string
	Amount   string
	Text     string
}

// ListRows renders each expense as "{date} — {category} — {amount}" in the
// order the resource returned them.
func ListRows(expenses []core.Expense, f core.AmountFormatter) []ListRow {
	rows := make([]ListRow, 0, len(expenses))
	for _, e := range expenses {
		amount := core.FormatAmount(f, e.Amount.Value())
		rows = append(rows, ListRow{
			ID:       e.ID,
			Date:     e.Date,
			Category: e.Category,
			Amount:   amount,
			Text:     fmt.Sprintf("%s — %s — %s", e.Date, e.Category, amount),
		})
	}
	return rows
}
