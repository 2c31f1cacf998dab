// Package memstore is an in-process implementation of the expenses REST
// resource. Records live in memory and ids are sequential integers starting
// at 1.
package memstore

import (
	"context"
	"errors"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	ErrNotFound        = errors.New("expense not found")
	ErrMissingFields   = errors.New("amount and category are required")
	ErrAmountNotNumber = errors.New("amount must be a number")
)

// Record is the stored form. Ids marshal as JSON numbers.
type Record struct {
	ID       int     `json:"id"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
	Date     string  `json:"date"`
}

// Input is a loosely typed creation request. Nil means the field was absent
// or null.
type Input struct {
	Amount   any
	Category any
	Date     any
}

type Store struct {
	mu     sync.Mutex
	items  []Record
	nextID int
	now    func() time.Time
}

func New() *Store {
	return &Store{nextID: 1, now: time.Now}
}

// List returns a copy of all records in insertion order.
func (s *Store) List(_ context.Context) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

// Add validates in and stores a new record.
//
// Amount accepts JSON numbers and numeric strings. The date is normalised to
// YYYY-MM-DD; a missing or unparseable date becomes today in UTC.
func (s *Store) Add(_ context.Context, in Input) (Record, error) {
	if in.Amount == nil || in.Category == nil {
		return Record{}, ErrMissingFields
	}
	amount, ok := toFloat(in.Amount)
	if !ok {
		return Record{}, ErrAmountNotNumber
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec := Record{
		ID:       s.nextID,
		Amount:   amount,
		Category: toString(in.Category),
		Date:     normalizeDate(in.Date, s.now()),
	}
	s.nextID++
	s.items = append(s.items, rec)
	return rec, nil
}

// Delete removes the record with id.
func (s *Store) Delete(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.items, func(r Record) bool { return r.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	s.items = slices.Delete(s.items, i, i+1)
	return nil
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case int:
		f = float64(x)
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = p
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}

var dateLayouts = []string{
	time.DateOnly,
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

func normalizeDate(v any, now time.Time) string {
	if s, ok := v.(string); ok && s != "" {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.Format(time.DateOnly)
			}
		}
	}
	return now.UTC().Format(time.DateOnly)
}
