// Package transfer moves expense records in and out of the widget as CSV
// text or an Excel workbook.
package transfer

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"budget/internal/core"
)

// Header is the column order used for both export and import.
var Header = []string{"date", "category", "amount"}

// ImportRow is one decoded data row. Fields are raw trimmed text; the import
// flow decides what is submittable.
type ImportRow struct {
	Date     string
	Category string
	Amount   string
}

// Expense converts the row into a creation request.
func (r ImportRow) Expense() core.NewExpense {
	return core.NewExpense{Date: r.Date, Category: r.Category, Amount: r.Amount}
}

// Submittable reports whether the row has both an amount and a category.
func (r ImportRow) Submittable() bool {
	return r.Amount != "" && r.Category != ""
}

// EncodeCSV renders expenses with a header row. Every field is quoted and
// embedded quotes are doubled. Rows are joined with "\n" and there is no
// trailing newline.
func EncodeCSV(expenses []core.Expense) string {
	var b strings.Builder
	b.WriteString(strings.Join(Header, ","))
	for _, e := range expenses {
		b.WriteByte('\n')
		writeField(&b, e.Date)
		b.WriteByte(',')
		writeField(&b, e.Category)
		b.WriteByte(',')
		writeField(&b, FormatAmount(e.Amount))
	}
	return b.String()
}

func writeField(b *strings.Builder, s string) {
	b.WriteByte('"')
	b.WriteString(strings.ReplaceAll(s, `"`, `""`))
	b.WriteByte('"')
}

// FormatAmount writes an amount the shortest way that reads back to the same
// float. Amounts that are not numbers export as an empty field.
func FormatAmount(a core.Amount) string {
	f := float64(a)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

var lineBreak = regexp.MustCompile(`\r?\n`)

// byteOrderMark is prepended by spreadsheet tools saving UTF-8 CSV.
const byteOrderMark = "\ufeff"

// DecodeCSV splits text into rows of trimmed fields. Blank lines are
// dropped. A quote toggles quoted mode and is not kept, except that a doubled
// quote inside a quoted field yields one literal quote. Commas split fields
// only outside quotes. Fields never span lines.
//
// When the first row, lowercased, has cells equal to date, category and
// amount it is treated as a header and dropped; headerSkipped reports that.
func DecodeCSV(text string) (rows [][]string, headerSkipped bool) {
	text = strings.TrimPrefix(text, byteOrderMark)
	for _, line := range lineBreak.Split(text, -1) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		rows = append(rows, splitLine(line))
	}
	if len(rows) > 0 && isHeader(rows[0]) {
		return rows[1:], true
	}
	return rows, false
}

func splitLine(line string) []string {
	var (
		cols     []string
		cur      strings.Builder
		inQuotes bool
	)
	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '"' && inQuotes && i+1 < len(line) && line[i+1] == '"':
			cur.WriteByte('"')
			i++
		case ch == '"':
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			cols = append(cols, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	return append(cols, strings.TrimSpace(cur.String()))
}

func isHeader(row []string) bool {
	seen := make(map[string]bool, len(row))
	for _, c := range row {
		seen[strings.ToLower(c)] = true
	}
	for _, h := range Header {
		if !seen[h] {
			return false
		}
	}
	return true
}

// ImportRows maps decoded rows to (date, category, amount) positionally.
// Missing trailing columns are empty and extra columns are ignored.
func ImportRows(rows [][]string) []ImportRow {
	out := make([]ImportRow, 0, len(rows))
	for _, r := range rows {
		var ir ImportRow
		if len(r) > 0 {
			ir.Date = r[0]
		}
		if len(r) > 1 {
			ir.Category = r[1]
		}
		if len(r) > 2 {
			ir.Amount = r[2]
		}
		out = append(out, ir)
	}
	return out
}
