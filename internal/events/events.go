// Package events publishes widget activity to an AMQP topic exchange.
package events

import (
	"context"
	"encoding/json"
	"time"
)

// Event types, also used as routing keys.
const (
	TypeExpenseCreated   = "expense.created"
	TypeExpenseDeleted   = "expense.deleted"
	TypeExpensesImported = "expenses.imported"
)

// Event is the JSON body of every message. Only the fields relevant to the
// type are set.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	ExpenseID string    `json:"expense_id,omitempty"`
	Category  string    `json:"category,omitempty"`
	Amount    *float64  `json:"amount,omitempty"`
	BatchID   string    `json:"batch_id,omitempty"`
	Imported  int       `json:"imported,omitempty"`
	Skipped   int       `json:"skipped,omitempty"`
	Failed    int       `json:"failed,omitempty"`
}

func ExpenseCreated(id, category string, amount float64) Event {
	return Event{Type: TypeExpenseCreated, Timestamp: time.Now().UTC(), ExpenseID: id, Category: category, Amount: &amount}
}

func ExpenseDeleted(id string) Event {
	return Event{Type: TypeExpenseDeleted, Timestamp: time.Now().UTC(), ExpenseID: id}
}

func ExpensesImported(batchID string, imported, skipped, failed int) Event {
	return Event{Type: TypeExpensesImported, Timestamp: time.Now().UTC(), BatchID: batchID, Imported: imported, Skipped: skipped, Failed: failed}
}

// ToJSON converts the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher sends events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop drops every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
