package core

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func TestExpenseDecodeLenient(t *testing.T) {
	var items []Expense
	body := `[
		{"id": 1, "date": "2025-01-02", "category": "Rent", "amount": 600},
		{"id": "abc", "date": "2025-01-03", "category": "Food", "amount": "12.50"},
		{"id": 3, "date": "2025-01-04", "category": "Food", "amount": null},
		{"id": 4, "date": "2025-01-05", "category": "Food"}
	]`
	if err := json.Unmarshal([]byte(body), &items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if items[0].ID != "1" || items[1].ID != "abc" {
		t.Fatalf("unexpected ids: %q %q", items[0].ID, items[1].ID)
	}
	if items[0].Amount.Value() != 600 || items[1].Amount.Value() != 12.5 {
		t.Fatalf("unexpected amounts: %v %v", items[0].Amount, items[1].Amount)
	}
	if !math.IsNaN(float64(items[2].Amount)) || items[2].Amount.Value() != 0 {
		t.Fatalf("null amount should be NaN and count as zero, got %v", items[2].Amount)
	}
	if items[3].Amount.Value() != 0 {
		t.Fatalf("missing amount should count as zero, got %v", items[3].Amount)
	}
}

func TestNewExpenseMarshal(t *testing.T) {
	cases := []struct {
		in   NewExpense
		want []string
		not  []string
	}{
		{NewExpense{Amount: "12.5", Category: "Food", Date: "2025-01-01"}, []string{`"amount":12.5`, `"category":"Food"`, `"date":"2025-01-01"`}, nil},
		{NewExpense{Amount: "abc", Category: "Food"}, []string{`"amount":"abc"`}, []string{`"date"`}},
		{NewExpense{Amount: " ", Category: "Food"}, nil, []string{`"amount"`, `"date"`}},
	}
	for i, tc := range cases {
		b, err := json.Marshal(tc.in)
		if err != nil {
			t.Fatalf("case %d marshal: %v", i, err)
		}
		s := string(b)
		for _, w := range tc.want {
			if !strings.Contains(s, w) {
				t.Fatalf("case %d expected %s in %s", i, w, s)
			}
		}
		for _, n := range tc.not {
			if strings.Contains(s, n) {
				t.Fatalf("case %d did not expect %s in %s", i, n, s)
			}
		}
	}
}

func TestNewExpenseValidate(t *testing.T) {
	if err := (NewExpense{Amount: "1", Category: "Food"}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (NewExpense{Amount: "", Category: "Food"}).Validate(); err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if err := (NewExpense{Amount: "1", Category: " "}).Validate(); err != ErrEmptyCategory {
		t.Fatalf("expected ErrEmptyCategory, got %v", err)
	}
}
