package memstore

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func fixedStore() *Store {
	s := New()
	s.now = func() time.Time { return time.Date(2025, 3, 4, 23, 30, 0, 0, time.FixedZone("X", -3*3600)) }
	return s
}

func TestAddValidation(t *testing.T) {
	s := fixedStore()
	ctx := context.Background()
	tests := []struct {
		name string
		in   Input
		err  error
	}{
		{"missing amount", Input{Category: "Food"}, ErrMissingFields},
		{"missing category", Input{Amount: 1.0}, ErrMissingFields},
		{"non numeric", Input{Amount: "abc", Category: "Food"}, ErrAmountNotNumber},
		{"bool amount", Input{Amount: true, Category: "Food"}, ErrAmountNotNumber},
		{"nan string", Input{Amount: "NaN", Category: "Food"}, ErrAmountNotNumber},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Add(ctx, tt.in); !errors.Is(err, tt.err) {
				t.Fatalf("err = %v, want %v", err, tt.err)
			}
		})
	}
	if len(s.List(ctx)) != 0 {
		t.Fatal("rejected inputs must not be stored")
	}
}

func TestAddNormalisesAndNumbers(t *testing.T) {
	s := fixedStore()
	ctx := context.Background()

	a, err := s.Add(ctx, Input{Amount: "12.5", Category: "Food", Date: "2025-01-02T10:00:00"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if a.ID != 1 || a.Amount != 12.5 || a.Date != "2025-01-02" {
		t.Fatalf("unexpected record %+v", a)
	}

	b, _ := s.Add(ctx, Input{Amount: 3.0, Category: "Rent", Date: "garbage"})
	if b.ID != 2 || b.Date != "2025-03-05" {
		t.Fatalf("expected id 2 and today's UTC date, got %+v", b)
	}

	c, _ := s.Add(ctx, Input{Amount: 1.0, Category: "Misc"})
	if c.Date != "2025-03-05" {
		t.Fatalf("missing date should default, got %q", c.Date)
	}
}

func TestDeleteKeepsIDsSequential(t *testing.T) {
	s := fixedStore()
	ctx := context.Background()
	s.Add(ctx, Input{Amount: 1.0, Category: "A"})
	s.Add(ctx, Input{Amount: 2.0, Category: "B"})

	if err := s.Delete(ctx, 1); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
	c, _ := s.Add(ctx, Input{Amount: 3.0, Category: "C"})
	if c.ID != 3 {
		t.Fatalf("ids must not be reused, got %d", c.ID)
	}
	items := s.List(ctx)
	if len(items) != 2 || items[0].ID != 2 || items[1].ID != 3 {
		t.Fatalf("unexpected items %+v", items)
	}
}

func TestHandler(t *testing.T) {
	s := fixedStore()
	srv := httptest.NewServer(s.Routes())
	defer srv.Close()

	do := func(method, path, body string) (int, string) {
		t.Helper()
		req, _ := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("%s %s: %v", method, path, err)
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, strings.TrimSpace(string(b))
	}

	if code, body := do(http.MethodGet, "/", ""); code != 200 || body != "[]" {
		t.Fatalf("empty list: %d %q", code, body)
	}
	if code, body := do(http.MethodPost, "/", "not json"); code != 400 || body != "JSON body required" {
		t.Fatalf("bad body: %d %q", code, body)
	}
	if code, body := do(http.MethodPost, "/", `{"category":"Food"}`); code != 400 || body != "amount and category are required" {
		t.Fatalf("missing amount: %d %q", code, body)
	}
	if code, body := do(http.MethodPost, "/", `{"amount":"x","category":"Food"}`); code != 400 || body != "amount must be a number" {
		t.Fatalf("bad amount: %d %q", code, body)
	}
	code, body := do(http.MethodPost, "/", `{"amount":600,"category":"Rent","date":"2025-01-01"}`)
	if code != 201 || !strings.Contains(body, `"id":1`) || !strings.Contains(body, `"date":"2025-01-01"`) {
		t.Fatalf("create: %d %q", code, body)
	}
	if code, body := do(http.MethodDelete, "/abc", ""); code != 404 || body != "expense not found" {
		t.Fatalf("delete bad id: %d %q", code, body)
	}
	if code, body := do(http.MethodDelete, "/1", ""); code != 200 || !strings.Contains(body, "deleted") {
		t.Fatalf("delete: %d %q", code, body)
	}
	if code, _ := do(http.MethodDelete, "/1", ""); code != 404 {
		t.Fatalf("delete twice: %d", code)
	}
}
