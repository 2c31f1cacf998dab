package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

type (
	// ExpenseID identifies a record owned by the expenses resource. The
	// resource may send it as a JSON number or string.
	ExpenseID string

	// Amount is a lenient decimal: numbers, numeric strings and null all
	// decode. Anything that is not a finite number decodes to NaN.
	Amount float64

	Expense struct {
		ID       ExpenseID `json:"id"`
		Date     string    `json:"date"`
		Category string    `json:"category"`
		Amount   Amount    `json:"amount"`
	}

	// NewExpense is the body submitted to create a record. Amount keeps the
	// raw user input so the resource can reject it with its own message.
	NewExpense struct {
		Amount   string
		Category string
		Date     string
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyCategory = errors.New("empty category")
)

func (id *ExpenseID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ExpenseID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ExpenseID(n.String())
	return nil
}

func (id ExpenseID) String() string {
	return string(id)
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*a = Amount(math.NaN())
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = Amount(ParseAmount(s))
	default:
		f, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			*a = Amount(math.NaN())
			return nil
		}
		*a = Amount(f)
	}
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	f := float64(a)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(f, 'f', -1, 64)), nil
}

// Value returns the amount with invalid numbers treated as zero.
func (a Amount) Value() float64 {
	return Finite(float64(a))
}

// MarshalJSON sends a numeric amount as a JSON number, omits a blank one and
// passes anything else through as a string.
func (n NewExpense) MarshalJSON() ([]byte, error) {
	body := map[string]any{"category": n.Category}
	raw := strings.TrimSpace(n.Amount)
	if raw != "" {
		if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			body["amount"] = f
		} else {
			body["amount"] = raw
		}
	}
	if d := strings.TrimSpace(n.Date); d != "" {
		body["date"] = d
	}
	return json.Marshal(body)
}

// Validate reports whether the expense carries the two fields the import
// flow requires before submission.
func (n NewExpense) Validate() error {
	if strings.TrimSpace(n.Amount) == "" {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(n.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}
