package http

import (
	"net/http"
	"strconv"
	"strings"

	"budget/internal/chart"
	"budget/internal/core"
)

// parseSize reads the layout measurements the page sends with each refresh.
// Missing or bad values are 0, which makes SurfaceWidth fall back.
func parseSize(r *http.Request) chart.Size {
	q := r.URL.Query()
	return chart.Size{
		Container: queryInt(q.Get("width")),
		Parent:    queryInt(q.Get("parent")),
		Viewport:  queryInt(q.Get("vw")),
	}
}

func queryInt(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// salaryParam applies the blank-or-invalid-is-zero rule to the salary field.
func salaryParam(r *http.Request) float64 {
	return core.ParseSalary(r.URL.Query().Get("salary"))
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 {
			return -1
		}
		return r
	}, s)
}
