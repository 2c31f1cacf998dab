package core

import (
	"fmt"
	"math"
)

// AmountFormatter renders a monetary amount for display.
type AmountFormatter interface {
	Format(amount float64) string
}

// AggregateResult holds spend per bucket as parallel sequences ready for the
// chart, plus the remaining/overspent outcome.
type AggregateResult struct {
	Labels []string
	Values []float64
	Colors []string

	TotalSpent float64
	Remaining  float64
	// Message is the budget status line. Empty means nothing to report.
	Message string
}

// HasRemaining reports whether a Remaining slice was appended.
func (r AggregateResult) HasRemaining() bool {
	n := len(r.Labels)
	return n > 0 && r.Labels[n-1] == RemainingLabel
}

// Overspent reports whether spend exceeds the salary.
func (r AggregateResult) Overspent() bool {
	return !math.IsNaN(r.Remaining) && !math.IsInf(r.Remaining, 0) && r.Remaining < 0
}

// Aggregate buckets expenses by allocation category and works out what is
// left of salary.
//
// Buckets follow table order and start at zero. Invalid amounts count as
// zero. Each bucket total is rounded to cents before summing. When the
// remainder is non-negative a Remaining entry is appended; when negative no
// slice is added and Message reports the deficit instead. A non-finite
// remainder (salary unset) skips both.
func Aggregate(table *AllocationTable, salary float64, expenses []Expense, f AmountFormatter) AggregateResult {
	sums := make([]float64, table.Len())
	for _, e := range expenses {
		sums[table.Match(e.Category)] += e.Amount.Value()
	}

	res := AggregateResult{
		Labels: make([]string, 0, table.Len()+1),
		Values: make([]float64, 0, table.Len()+1),
		Colors: make([]string, 0, table.Len()+1),
	}
	for i, a := range table.entries {
		v := Round2(sums[i])
		res.Labels = append(res.Labels, a.Category)
		res.Values = append(res.Values, v)
		res.Colors = append(res.Colors, a.Color)
		res.TotalSpent += v
	}

	res.Remaining = Round2(salary - res.TotalSpent)
	if math.IsNaN(res.Remaining) || math.IsInf(res.Remaining, 0) {
		return res
	}
	if res.Remaining >= 0 {
		res.Labels = append(res.Labels, RemainingLabel)
		res.Values = append(res.Values, res.Remaining)
		res.Colors = append(res.Colors, RemainingColor)
		res.Message = ""
		return res
	}
	res.Message = OverBudgetMessage(FormatAmount(f, math.Abs(res.Remaining)))
	return res
}

// OverBudgetMessage builds the status line shown instead of an overspent slice.
func OverBudgetMessage(deficit string) string {
	return fmt.Sprintf("Over budget by %s — reduce spending or increase income.", deficit)
}

// FormatAmount renders v with f, or as "€" plus two decimals when f is nil.
func FormatAmount(f AmountFormatter, v float64) string {
	if f == nil {
		return fmt.Sprintf("€%.2f", v)
	}
	return f.Format(v)
}
