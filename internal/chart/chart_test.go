package chart

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/go-echarts/go-echarts/v2/charts"

	"budget/internal/core"
	"budget/internal/log"
)

const assets = "https://cdn.example.test/echarts/"

func sampleAggregate(salary float64) core.AggregateResult {
	return core.Aggregate(core.DefaultAllocations(), salary, []core.Expense{
		{Category: "Rent", Amount: 600},
		{Category: "Food", Amount: 150},
	}, nil)
}

func TestSurfaceWidth(t *testing.T) {
	cases := []struct {
		name string
		size Size
		max  int
		want int
	}{
		{"container wins", Size{Container: 700, Parent: 300, Viewport: 1000}, 520, 700},
		{"parent capped", Size{Parent: 900}, 520, 520},
		{"parent narrow", Size{Parent: 300}, 520, 300},
		{"viewport 40 percent", Size{Viewport: 1000}, 520, 400},
		{"viewport small clamps up", Size{Viewport: 500}, 520, 320},
		{"viewport large clamps down", Size{Viewport: 2000}, 520, 520},
		{"nothing measured", Size{}, 520, 320},
		{"default cap", Size{Parent: 900}, 0, DefaultMaxWidth},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SurfaceWidth(tc.size, tc.max); got != tc.want {
				t.Fatalf("SurfaceWidth(%+v, %d) = %d, want %d", tc.size, tc.max, got, tc.want)
			}
		})
	}
}

func TestLegendSubtitles(t *testing.T) {
	agg := sampleAggregate(2000)
	rows := Legend(agg.Labels, agg.Values, agg.Colors, nil)
	if len(rows) != len(agg.Labels) {
		t.Fatalf("rows = %d, want %d", len(rows), len(agg.Labels))
	}
	if rows[0].Label != "Rent" || rows[0].Display != "€600.00" || rows[0].Subtitle != SubtitleSpent || rows[0].Color != "#1f77b4" {
		t.Fatalf("unexpected first row %+v", rows[0])
	}
	last := rows[len(rows)-1]
	if last.Label != core.RemainingLabel || last.Subtitle != SubtitleRemaining || last.Display != "€1250.00" {
		t.Fatalf("unexpected last row %+v", last)
	}
}

func TestLegendToleratesShortSlices(t *testing.T) {
	rows := Legend([]string{"A", "B"}, []float64{1}, nil, nil)
	if rows[1].Value != 0 || rows[1].Color != "" || rows[1].Display != "€0.00" {
		t.Fatalf("unexpected row %+v", rows[1])
	}
}

func TestRenderNilWidget(t *testing.T) {
	r := NewRenderer(assets, 520, log.Discard())
	res := r.Render(context.Background(), nil, sampleAggregate(2000), Size{}, nil)
	if res.OK || res.Message != MsgNoCanvas || res.Legend != nil {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestRenderWithoutLibrary(t *testing.T) {
	r := NewRenderer("", 520, log.Discard())
	w := NewWidget()
	res := r.Render(context.Background(), w, sampleAggregate(2000), Size{}, nil)
	if res.OK || res.Message != MsgNoLibrary {
		t.Fatalf("unexpected result %+v", res)
	}
	if _, rev := w.Content(); rev != 0 {
		t.Fatalf("widget should be untouched, revision %d", rev)
	}
}

func TestRenderBuildsThenUpdates(t *testing.T) {
	r := NewRenderer(assets, 520, log.Discard())
	w := NewWidget()

	res := r.Render(context.Background(), w, sampleAggregate(2000), Size{Parent: 480}, nil)
	if !res.OK || res.Revision != 1 || res.Message != "" {
		t.Fatalf("first render: %+v", res)
	}
	if w.Width() != 480 {
		t.Fatalf("width = %d, want 480", w.Width())
	}
	content, _ := w.Content()
	html := string(content)
	for _, want := range []string{ChartID, assets, "Remaining", "480px"} {
		if !strings.Contains(html, want) {
			t.Fatalf("rendered document missing %q", want)
		}
	}

	res = r.Render(context.Background(), w, sampleAggregate(500), Size{Container: 900}, nil)
	if !res.OK || res.Revision != 2 {
		t.Fatalf("second render: %+v", res)
	}
	if w.Width() != 480 {
		t.Fatalf("width should be fixed at construction, got %d", w.Width())
	}
	if !strings.HasPrefix(res.Message, "Over budget by €250.00") {
		t.Fatalf("message = %q", res.Message)
	}
	content, _ = w.Content()
	if strings.Contains(string(content), "Remaining") {
		t.Fatal("series should have been replaced, Remaining still present")
	}
	if len(w.pie.MultiSeries) != 1 {
		t.Fatalf("expected a single series, got %d", len(w.pie.MultiSeries))
	}
}

func TestWidgetKeepsEarlierRevisions(t *testing.T) {
	r := NewRenderer(assets, 520, log.Discard())
	w := NewWidget()

	first := r.Render(context.Background(), w, sampleAggregate(2000), Size{Parent: 480}, nil)
	second := r.Render(context.Background(), w, sampleAggregate(500), Size{}, nil)
	if first.Revision != 1 || second.Revision != 2 {
		t.Fatalf("revisions = %d, %d", first.Revision, second.Revision)
	}

	doc, ok := w.Document(1)
	if !ok || !strings.Contains(string(doc), "Remaining") {
		t.Fatalf("revision 1 should still hold the Remaining slice (ok=%v)", ok)
	}
	doc, ok = w.Document(2)
	if !ok || strings.Contains(string(doc), "Remaining") {
		t.Fatalf("revision 2 should be the overspent chart (ok=%v)", ok)
	}
	if _, ok := w.Document(3); ok {
		t.Fatal("revision 3 was never drawn")
	}
}

func TestWidgetEvictsOldRevisions(t *testing.T) {
	r := NewRenderer(assets, 520, log.Discard())
	w := NewWidget()
	for i := 0; i < keptRevisions+1; i++ {
		r.Render(context.Background(), w, sampleAggregate(2000), Size{Parent: 400}, nil)
	}
	if _, ok := w.Document(1); ok {
		t.Fatal("revision 1 should have been evicted")
	}
	if _, ok := w.Document(keptRevisions + 1); !ok {
		t.Fatal("latest revision missing")
	}
}

func TestFailedFirstRenderConstructsAgain(t *testing.T) {
	r := NewRenderer(assets, 520, log.Discard())
	w := NewWidget()

	r.draw = func(*charts.Pie, io.Writer) error { return errors.New("boom") }
	res := r.Render(context.Background(), w, sampleAggregate(2000), Size{Parent: 480}, nil)
	if res.OK || res.Message != MsgRenderFailed {
		t.Fatalf("failed render: %+v", res)
	}
	if w.pie != nil || w.Width() != 0 {
		t.Fatal("widget must not keep a pie that never drew")
	}

	r.draw = func(p *charts.Pie, out io.Writer) error { return p.Render(out) }
	res = r.Render(context.Background(), w, sampleAggregate(2000), Size{Parent: 300}, nil)
	if !res.OK || res.Revision != 1 {
		t.Fatalf("retry render: %+v", res)
	}
	if w.Width() != 300 {
		t.Fatalf("width = %d, want 300 from the retried construction", w.Width())
	}
}
