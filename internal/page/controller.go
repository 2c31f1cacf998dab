// Package page orchestrates a widget refresh: fetch every expense, aggregate,
// then draw the chart and the list.
package page

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"budget/internal/chart"
	"budget/internal/core"
	"budget/internal/events"
	"budget/internal/expenses"
	"budget/internal/log"
	"budget/internal/transfer"
)

var (
	ErrNoFile   = errors.New("no file uploaded")
	ErrEmptyCSV = errors.New("csv has no rows")
)

// Alert texts for the import button.
const (
	MsgNoFile   = "Please choose a CSV file first"
	MsgEmptyCSV = "CSV empty"
)

// ExpenseStore is the REST resource as seen by the page.
type ExpenseStore interface {
	List(ctx context.Context) ([]core.Expense, error)
	Create(ctx context.Context, in core.NewExpense) (core.Expense, error)
	Delete(ctx context.Context, id core.ExpenseID) error
}

// View is everything the page template needs after a refresh.
type View struct {
	Salary    float64
	Aggregate core.AggregateResult
	Chart     chart.Result
	Rows      []ListRow
}

// ImportReport summarises one CSV import.
type ImportReport struct {
	BatchID  string
	Imported int
	Skipped  int
	Failed   int
	Header   bool
}

// Status is the line shown under the import button.
func (r ImportReport) Status() string {
	return fmt.Sprintf("Import complete — %d rows added", r.Imported)
}

type Controller struct {
	store     ExpenseStore
	table     *core.AllocationTable
	renderer  *chart.Renderer
	widget    *chart.Widget
	publisher events.Publisher
	logger    *log.Logger
	newID     func() string
}

// Option customises a Controller.
type Option func(*Controller)

// WithPublisher sends activity events to p.
func WithPublisher(p events.Publisher) Option {
	return func(c *Controller) { c.publisher = p }
}

// WithWidget replaces the chart widget. A nil widget is allowed and makes
// every chart render report a missing canvas.
func WithWidget(w *chart.Widget) Option {
	return func(c *Controller) { c.widget = w }
}

func WithLogger(l *log.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

func NewController(store ExpenseStore, table *core.AllocationTable, renderer *chart.Renderer, opts ...Option) *Controller {
	c := &Controller{
		store:     store,
		table:     table,
		renderer:  renderer,
		widget:    chart.NewWidget(),
		publisher: events.Nop{},
		logger:    log.Discard(),
		newID:     func() string { return uuid.NewString() },
	}
	for _, o := range opts {
		o(c)
	}
	c.logger = c.logger.WithComponent(log.ComponentPage)
	return c
}

// Table returns the allocation table the page aggregates against.
func (c *Controller) Table() *core.AllocationTable { return c.table }

// Widget returns the chart widget the page owns.
func (c *Controller) Widget() *chart.Widget { return c.widget }

// Refresh fetches the full expense set and rebuilds chart and list. A fetch
// failure is returned; chart failures are reported inside the view.
func (c *Controller) Refresh(ctx context.Context, salary float64, f core.AmountFormatter, size chart.Size) (View, error) {
	items, err := c.store.List(ctx)
	if err != nil {
		c.logger.ErrorContext(ctx, "fetch expenses failed", log.FieldOperation, log.OpRefresh, log.FieldError, err)
		return View{Salary: salary}, fmt.Errorf("fetch expenses: %w", err)
	}
	agg := core.Aggregate(c.table, salary, items, f)
	return View{
		Salary:    salary,
		Aggregate: agg,
		Chart:     c.renderer.Render(ctx, c.widget, agg, size, f),
		Rows:      ListRows(items, f),
	}, nil
}

// Add submits one expense. A rejection by the resource comes back as
// *expenses.StatusError whose text is meant to be shown as-is.
func (c *Controller) Add(ctx context.Context, in core.NewExpense) (core.Expense, error) {
	created, err := c.store.Create(ctx, in)
	if err != nil {
		c.logger.WarnContext(ctx, "add expense failed", log.NewFields().
			WithOperation(log.OpCreate).
			WithExpense("", in.Category, in.Amount).
			WithError(err).ToSlice()...)
		return core.Expense{}, err
	}
	c.publish(ctx, events.ExpenseCreated(created.ID.String(), created.Category, created.Amount.Value()))
	return created, nil
}

// AlertText is what the add flow shows the user for err.
func AlertText(err error) string {
	var se *expenses.StatusError
	if errors.As(err, &se) {
		return "Error: " + se.Error()
	}
	return "Error: " + err.Error()
}

// Delete removes an expense. Failures are logged and otherwise ignored; the
// caller refreshes either way.
func (c *Controller) Delete(ctx context.Context, id core.ExpenseID) {
	if err := c.store.Delete(ctx, id); err != nil {
		c.logger.WarnContext(ctx, "delete expense failed",
			log.FieldOperation, log.OpDelete,
			log.FieldExpenseID, id.String(),
			log.FieldError, err)
		return
	}
	c.publish(ctx, events.ExpenseDeleted(id.String()))
}

// Import decodes csvText and posts each submittable row in order, one at a
// time. A failed row is logged and the batch carries on. Only rows the
// resource accepted count as imported.
func (c *Controller) Import(ctx context.Context, csvText string) (ImportReport, error) {
	rows, header := transfer.DecodeCSV(csvText)
	if len(rows) == 0 && !header {
		return ImportReport{}, ErrEmptyCSV
	}

	report := ImportReport{BatchID: c.newID(), Header: header}
	for i, row := range transfer.ImportRows(rows) {
		if !row.Submittable() {
			report.Skipped++
			continue
		}
		if _, err := c.store.Create(ctx, row.Expense()); err != nil {
			report.Failed++
			c.logger.WarnContext(ctx, "import row failed", log.NewFields().
				WithOperation(log.OpImport).
				WithImportRow(report.BatchID, i+1).
				WithExpense("", row.Category, row.Amount).
				WithError(err).ToSlice()...)
			continue
		}
		report.Imported++
	}

	c.logger.InfoContext(ctx, "import finished",
		log.FieldBatchID, report.BatchID,
		log.FieldCount, report.Imported,
		"skipped", report.Skipped,
		"failed", report.Failed)
	c.publish(ctx, events.ExpensesImported(report.BatchID, report.Imported, report.Skipped, report.Failed))
	return report, nil
}

// ImportReader is Import for an uploaded file.
func (c *Controller) ImportReader(ctx context.Context, r io.Reader) (ImportReport, error) {
	if r == nil {
		return ImportReport{}, ErrNoFile
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return ImportReport{}, fmt.Errorf("read upload: %w", err)
	}
	if strings.TrimSpace(string(b)) == "" {
		return ImportReport{}, ErrEmptyCSV
	}
	return c.Import(ctx, string(b))
}

// Export returns every expense as CSV text.
func (c *Controller) Export(ctx context.Context) (string, error) {
	items, err := c.store.List(ctx)
	if err != nil {
		return "", fmt.Errorf("fetch expenses: %w", err)
	}
	return transfer.EncodeCSV(items), nil
}

// ExportXLSX writes every expense, and the per-category totals for salary,
// as an Excel workbook.
func (c *Controller) ExportXLSX(ctx context.Context, w io.Writer, salary float64, f core.AmountFormatter) error {
	items, err := c.store.List(ctx)
	if err != nil {
		return fmt.Errorf("fetch expenses: %w", err)
	}
	agg := core.Aggregate(c.table, salary, items, f)
	return transfer.WriteXLSX(w, items, &agg)
}

// ChartContent returns the last rendered chart document.
func (c *Controller) ChartContent() ([]byte, int) {
	if c.widget == nil {
		return nil, 0
	}
	return c.widget.Content()
}

// ChartDocument returns the chart drawn at revision rev while it is still
// kept by the widget.
func (c *Controller) ChartDocument(rev int) ([]byte, bool) {
	if c.widget == nil {
		return nil, false
	}
	return c.widget.Document(rev)
}

func (c *Controller) publish(ctx context.Context, e events.Event) {
	if err := c.publisher.Publish(ctx, e); err != nil {
		c.logger.WarnContext(ctx, "publish event failed", log.FieldOperation, log.OpPublish, "type", e.Type, log.FieldError, err)
	}
}
