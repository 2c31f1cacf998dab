package core

import (
	"fmt"
	"strings"
)

const (
	// FallbackCategory receives every expense whose category is not in the table.
	FallbackCategory = "Misc"

	RemainingLabel = "Remaining"
	RemainingColor = "#2ca02c"
)

// Allocation is one fixed budget bucket. Share is kept for reference; the
// spent chart does not use it.
type Allocation struct {
	Category string
	Share    float64
	Color    string
}

// AllocationTable is the ordered, immutable set of recognised buckets.
type AllocationTable struct {
	entries []Allocation
	index   map[string]int
}

// NewAllocationTable validates entries and builds the case-insensitive index.
// The fallback category must be one of the entries.
func NewAllocationTable(entries []Allocation) (*AllocationTable, error) {
	t := &AllocationTable{
		entries: append([]Allocation(nil), entries...),
		index:   make(map[string]int, len(entries)),
	}
	for i, e := range t.entries {
		name := strings.TrimSpace(e.Category)
		if name == "" {
			return nil, fmt.Errorf("allocation %d: %w", i, ErrEmptyCategory)
		}
		key := strings.ToLower(name)
		if _, dup := t.index[key]; dup {
			return nil, fmt.Errorf("allocation %q: duplicate category", name)
		}
		t.index[key] = i
	}
	if _, ok := t.index[strings.ToLower(FallbackCategory)]; !ok {
		return nil, fmt.Errorf("allocation table must contain %q", FallbackCategory)
	}
	return t, nil
}

// DefaultAllocations returns the built-in table used by the widget.
func DefaultAllocations() *AllocationTable {
	t, err := NewAllocationTable([]Allocation{
		{Category: "Rent", Share: 0.30, Color: "#1f77b4"},
		{Category: "Food", Share: 0.12, Color: "#ff7f0e"},
		{Category: "Transport", Share: 0.08, Color: "#16a085"},
		{Category: "Utilities", Share: 0.08, Color: "#8c564b"},
		{Category: "Entertainment", Share: 0.06, Color: "#e377c2"},
		{Category: "Healthcare", Share: 0.05, Color: "#7f7f7f"},
		{Category: "Education", Share: 0.04, Color: "#17becf"},
		{Category: "Subscriptions", Share: 0.04, Color: "#bcbd22"},
		{Category: "Misc", Share: 0.08, Color: "#d62728"},
	})
	if err != nil {
		panic(err)
	}
	return t
}

// Entries returns a copy of the table in order.
func (t *AllocationTable) Entries() []Allocation {
	return append([]Allocation(nil), t.entries...)
}

// Len returns the number of buckets.
func (t *AllocationTable) Len() int {
	return len(t.entries)
}

// Categories returns the bucket names in table order.
func (t *AllocationTable) Categories() []string {
	out := make([]string, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.Category
	}
	return out
}

// Match returns the position of the bucket for category. Matching is
// case-insensitive and otherwise exact; unknown or empty categories fall back
// to Misc.
func (t *AllocationTable) Match(category string) int {
	if i, ok := t.index[strings.ToLower(category)]; ok {
		return i
	}
	return t.index[strings.ToLower(FallbackCategory)]
}
