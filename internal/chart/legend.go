package chart

import "budget/internal/core"

const (
	SubtitleSpent     = "spent"
	SubtitleRemaining = "remaining"
)

// LegendRow is one line under the chart.
type LegendRow struct {
	Label    string
	Color    string
	Value    float64
	Display  string
	Subtitle string
}

// Legend builds one row per label. Missing values or colors render as zero
// and no swatch.
func Legend(labels []string, values []float64, colors []string, f core.AmountFormatter) []LegendRow {
	rows := make([]LegendRow, 0, len(labels))
	for i, label := range labels {
		row := LegendRow{Label: label, Subtitle: SubtitleSpent}
		if i < len(values) {
			row.Value = values[i]
		}
		if i < len(colors) {
			row.Color = colors[i]
		}
		if label == core.RemainingLabel {
			row.Subtitle = SubtitleRemaining
		}
		row.Display = core.FormatAmount(f, row.Value)
		rows = append(rows, row)
	}
	return rows
}
