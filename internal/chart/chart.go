// Package chart draws the spend doughnut and its legend.
package chart

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"budget/internal/cache"
	"budget/internal/core"
	"budget/internal/log"
)

// ChartID is the DOM id of the doughnut inside the rendered document.
const ChartID = "spent-chart"

// User-visible status lines for the failure modes.
const (
	MsgNoCanvas     = "Chart canvas not found in the page."
	MsgNoLibrary    = "Chart library not loaded. Check network connection or console for errors."
	MsgRenderFailed = "Unable to render chart — see logs for details."
)

var ErrNoAssets = errors.New("chart assets host not configured")

// keptRevisions is how many rendered documents a widget keeps so a partial
// can still load the chart drawn for it after a newer refresh.
const keptRevisions = 8

// Widget is the single chart instance owned by the page. It is built on the
// first successful render and updated in place afterwards.
type Widget struct {
	mu       sync.Mutex
	pie      *charts.Pie
	width    int
	content  []byte
	revision int
	docs     *cache.LRU[int, []byte]
}

func NewWidget() *Widget {
	return &Widget{docs: cache.NewLRU[int, []byte](keptRevisions)}
}

// Content returns the last rendered document and its revision. Revision 0
// means nothing has been drawn yet.
func (w *Widget) Content() ([]byte, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]byte(nil), w.content...), w.revision
}

// Document returns the document drawn at revision rev, if it is still kept.
func (w *Widget) Document(rev int) ([]byte, bool) {
	w.mu.Lock()
	docs := w.docs
	w.mu.Unlock()
	if docs == nil {
		return nil, false
	}
	doc, ok := docs.Get(rev)
	if !ok {
		return nil, false
	}
	return append([]byte(nil), doc...), true
}

// Width returns the surface width fixed at construction, or 0.
func (w *Widget) Width() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width
}

// Result is what a render reports back to the page.
type Result struct {
	OK       bool
	Legend   []LegendRow
	Message  string
	Revision int
}

type Renderer struct {
	assetsHost string
	maxWidth   int
	logger     *log.Logger
	draw       func(*charts.Pie, io.Writer) error
}

// NewRenderer returns a renderer that loads echarts from assetsHost. An empty
// host means the library is unavailable and every render reports so.
func NewRenderer(assetsHost string, maxWidth int, logger *log.Logger) *Renderer {
	if logger == nil {
		logger = log.Discard()
	}
	return &Renderer{
		assetsHost: assetsHost,
		maxWidth:   maxWidth,
		logger:     logger.WithComponent(log.ComponentChart),
		draw:       func(p *charts.Pie, w io.Writer) error { return p.Render(w) },
	}
}

// Render draws agg onto widget. Failures are logged and reported through
// Result.Message; they never propagate. On success Message carries the
// aggregate's budget status.
func (r *Renderer) Render(ctx context.Context, widget *Widget, agg core.AggregateResult, size Size, f core.AmountFormatter) (res Result) {
	if widget == nil {
		r.logger.ErrorContext(ctx, "chart widget missing", log.FieldOperation, log.OpRender)
		return Result{Message: MsgNoCanvas}
	}
	if r.assetsHost == "" {
		r.logger.ErrorContext(ctx, "chart library unavailable", log.FieldOperation, log.OpRender, log.FieldError, ErrNoAssets)
		return Result{Message: MsgNoLibrary}
	}

	widget.mu.Lock()
	defer widget.mu.Unlock()

	defer func() {
		if p := recover(); p != nil {
			r.logger.ErrorContext(ctx, "chart render panicked", log.FieldOperation, log.OpRender, log.FieldError, fmt.Sprint(p))
			res = Result{Message: MsgRenderFailed}
		}
	}()

	pie, width := widget.pie, widget.width
	if pie == nil {
		width = SurfaceWidth(size, r.maxWidth)
		pie = r.newPie(width)
	}
	pie.MultiSeries = nil
	pie.AddSeries("spent", pieData(agg),
		charts.WithPieChartOpts(opts.PieChart{Radius: []string{"40%", "75%"}}),
		charts.WithItemStyleOpts(opts.ItemStyle{BorderColor: "#fff", BorderWidth: 1}),
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}),
	)

	var buf bytes.Buffer
	if err := r.draw(pie, &buf); err != nil {
		r.logger.ErrorContext(ctx, "chart render failed", log.FieldOperation, log.OpRender, log.FieldError, err)
		return Result{Message: MsgRenderFailed}
	}
	// The widget only keeps a pie that has drawn successfully.
	widget.pie, widget.width = pie, width
	widget.content = buf.Bytes()
	widget.revision++
	if widget.docs == nil {
		widget.docs = cache.NewLRU[int, []byte](keptRevisions)
	}
	widget.docs.Add(widget.revision, widget.content)

	return Result{
		OK:       true,
		Legend:   Legend(agg.Labels, agg.Values, agg.Colors, f),
		Message:  agg.Message,
		Revision: widget.revision,
	}
}

func (r *Renderer) newPie(width int) *charts.Pie {
	px := strconv.Itoa(width) + "px"
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:  "Spending",
			Width:      px,
			Height:     px,
			ChartID:    ChartID,
			AssetsHost: r.assetsHost,
		}),
		charts.WithAnimation(false),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
	)
	return pie
}

func pieData(agg core.AggregateResult) []opts.PieData {
	items := make([]opts.PieData, 0, len(agg.Labels))
	for i, label := range agg.Labels {
		item := opts.PieData{Name: label}
		if i < len(agg.Values) {
			item.Value = agg.Values[i]
		}
		if i < len(agg.Colors) {
			item.ItemStyle = &opts.ItemStyle{Color: agg.Colors[i]}
		}
		items = append(items, item)
	}
	return items
}
