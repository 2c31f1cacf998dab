package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rabbitmq/amqp091-go"
)

type fakeChannel struct {
	declared  []string
	kinds     []string
	published []amqp091.Publishing
	keys      []string
	failWith  error
	closed    bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error {
	f.declared = append(f.declared, name)
	f.kinds = append(f.kinds, kind)
	return nil
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestPublisherDeclaresTopicExchange(t *testing.T) {
	ch := &fakeChannel{}
	if _, err := newPublisher(ch, "budget", nil); err != nil {
		t.Fatalf("newPublisher: %v", err)
	}
	if len(ch.declared) != 1 || ch.declared[0] != "budget" || ch.kinds[0] != "topic" {
		t.Fatalf("unexpected declarations %v %v", ch.declared, ch.kinds)
	}
}

func TestPublishRoutesByType(t *testing.T) {
	ch := &fakeChannel{}
	p, _ := newPublisher(ch, "budget", nil)

	if err := p.Publish(context.Background(), ExpenseCreated("7", "Food", 12.5)); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := p.Publish(context.Background(), ExpensesImported("b1", 3, 1, 0)); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if ch.keys[0] != TypeExpenseCreated || ch.keys[1] != TypeExpensesImported {
		t.Fatalf("routing keys = %v", ch.keys)
	}
	msg := ch.published[0]
	if msg.ContentType != "application/json" || msg.DeliveryMode != amqp091.Persistent {
		t.Fatalf("unexpected publishing %+v", msg)
	}
	var got map[string]any
	if err := json.Unmarshal(msg.Body, &got); err != nil {
		t.Fatalf("body not JSON: %v", err)
	}
	if got["expense_id"] != "7" || got["amount"] != 12.5 || got["category"] != "Food" {
		t.Fatalf("unexpected body %v", got)
	}
	if _, ok := got["batch_id"]; ok {
		t.Fatal("batch_id should be omitted for expense.created")
	}
}

func TestPublishWrapsError(t *testing.T) {
	boom := errors.New("boom")
	p, _ := newPublisher(&fakeChannel{failWith: boom}, "budget", nil)
	if err := p.Publish(context.Background(), ExpenseDeleted("1")); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}

func TestCloseClosesChannel(t *testing.T) {
	ch := &fakeChannel{}
	p, _ := newPublisher(ch, "budget", nil)
	if err := p.Close(); err != nil || !ch.closed {
		t.Fatalf("Close: %v closed=%v", err, ch.closed)
	}
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	if err := p.Publish(context.Background(), ExpenseDeleted("1")); err != nil {
		t.Fatalf("Nop.Publish: %v", err)
	}
}
