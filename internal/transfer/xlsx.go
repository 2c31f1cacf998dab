package transfer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"budget/internal/core"
)

const (
	ExpensesSheet = "Expenses"
	SummarySheet  = "Summary"
)

// WriteXLSX writes a workbook with the same rows as the CSV export on one
// sheet and, when summary is non-nil, the per-category totals on another.
func WriteXLSX(w io.Writer, expenses []core.Expense, summary *core.AggregateResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ExpensesSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#1f77b4"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return fmt.Errorf("amount style: %w", err)
	}

	for i, h := range Header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(ExpensesSheet, cell, h)
	}
	f.SetCellStyle(ExpensesSheet, "A1", "C1", headerStyle)

	for i, e := range expenses {
		row := i + 2
		f.SetCellValue(ExpensesSheet, fmt.Sprintf("A%d", row), e.Date)
		f.SetCellValue(ExpensesSheet, fmt.Sprintf("B%d", row), e.Category)
		if v := float64(e.Amount); v == core.Finite(v) {
			f.SetCellValue(ExpensesSheet, fmt.Sprintf("C%d", row), v)
		}
		f.SetCellStyle(ExpensesSheet, fmt.Sprintf("C%d", row), fmt.Sprintf("C%d", row), amountStyle)
	}
	f.SetColWidth(ExpensesSheet, "A", "A", 14)
	f.SetColWidth(ExpensesSheet, "B", "B", 22)
	f.SetColWidth(ExpensesSheet, "C", "C", 12)

	if summary != nil {
		if _, err := f.NewSheet(SummarySheet); err != nil {
			return fmt.Errorf("summary sheet: %w", err)
		}
		f.SetCellValue(SummarySheet, "A1", "category")
		f.SetCellValue(SummarySheet, "B1", "total")
		f.SetCellStyle(SummarySheet, "A1", "B1", headerStyle)
		for i, label := range summary.Labels {
			row := i + 2
			f.SetCellValue(SummarySheet, fmt.Sprintf("A%d", row), label)
			f.SetCellValue(SummarySheet, fmt.Sprintf("B%d", row), summary.Values[i])
			f.SetCellStyle(SummarySheet, fmt.Sprintf("B%d", row), fmt.Sprintf("B%d", row), amountStyle)
		}
		if summary.Message != "" {
			f.SetCellValue(SummarySheet, fmt.Sprintf("A%d", len(summary.Labels)+3), summary.Message)
		}
		f.SetColWidth(SummarySheet, "A", "A", 22)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
