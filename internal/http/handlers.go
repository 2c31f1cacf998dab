package http

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"budget/internal/chart"
	"budget/internal/core"
	"budget/internal/log"
	"budget/internal/page"
)

const (
	maxUploadBytes = 5 << 20
	// framePadding covers the chart document's default body margin.
	framePadding = 24
)

type categoryOption struct {
	Name  string
	Color string
}

type indexData struct {
	Categories []categoryOption
	Today      string
	Locale     string
}

type budgetData struct {
	page.View
	ChartWidth int
	FrameSize  int
	Error      string
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "templates not loaded", log.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.ErrorContext(r.Context(), "template execution failed", "template", name, log.FieldError, err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	entries := s.ctrl.Table().Entries()
	options := make([]categoryOption, len(entries))
	for i, e := range entries {
		options[i] = categoryOption{Name: e.Category, Color: e.Color}
	}
	s.render(w, r, "index.html", indexData{
		Categories: options,
		Today:      time.Now().Format("2006-01-02"),
		Locale:     s.locales.For(r.Header.Get("Accept-Language")).Locale(),
	})
}

// handleBudget re-fetches every expense and renders chart, legend and list.
func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	f := s.locales.For(r.Header.Get("Accept-Language"))
	view, err := s.ctrl.Refresh(r.Context(), salaryParam(r), f, parseSize(r))
	data := budgetData{View: view}
	if err != nil {
		data.Error = "Unable to load expenses."
	}
	if widget := s.ctrl.Widget(); widget != nil {
		data.ChartWidth = widget.Width()
	}
	if data.ChartWidth > 0 {
		data.FrameSize = data.ChartWidth + framePadding
	}
	s.render(w, r, "budget.html", data)
}

// handleChart serves the chart document shown in the budget iframe. A rev
// parameter pins the document drawn for that partial; without it the latest
// is served.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	var (
		content []byte
		found   bool
	)
	if raw := r.URL.Query().Get("rev"); raw != "" {
		rev, err := strconv.Atoi(raw)
		if err == nil && rev > 0 {
			content, found = s.ctrl.ChartDocument(rev)
		}
	} else {
		var rev int
		content, rev = s.ctrl.ChartContent()
		found = rev > 0
	}
	if !found {
		http.Error(w, chart.MsgNoCanvas, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Security-Policy", s.chartCSP)
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(content)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.logger.WarnContext(r.Context(), "parse form failed", log.FieldOperation, log.OpCreate, log.FieldError, err)
		BadRequestError("Invalid request format").Write(w)
		return
	}

	in := core.NewExpense{
		Amount:   sanitizeInput(r.PostForm.Get("amount")),
		Category: sanitizeInput(r.PostForm.Get("category")),
		Date:     sanitizeInput(r.PostForm.Get("date")),
	}
	if _, err := s.ctrl.Add(r.Context(), in); err != nil {
		// Status stays 200 so htmx still processes the trigger.
		NewHTMXResponse().TriggerAlert(page.AlertText(err)).Write(w)
		return
	}
	NewHTMXResponse().
		Status(http.StatusNoContent).
		TriggerFormReset().
		TriggerBudgetRefresh().
		Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := core.ExpenseID(chi.URLParam(r, "id"))
	s.ctrl.Delete(r.Context(), id)
	NewHTMXResponse().
		Status(http.StatusNoContent).
		TriggerBudgetRefresh().
		Write(w)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	text, err := s.ctrl.Export(r.Context())
	if err != nil {
		log.LogError(r.Context(), "export failed", err, log.ComponentHTTP, log.OpExport, nil)
		BadGatewayError("Unable to load expenses").Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="expenses.csv"`)
	_, _ = w.Write([]byte(text))
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	f := s.locales.For(r.Header.Get("Accept-Language"))
	var buf bytes.Buffer
	if err := s.ctrl.ExportXLSX(r.Context(), &buf, salaryParam(r), f); err != nil {
		log.LogError(r.Context(), "xlsx export failed", err, log.ComponentHTTP, log.OpExport, nil)
		BadGatewayError("Unable to export expenses").Write(w)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="expenses.xlsx"`)
	_, _ = buf.WriteTo(w)
}

// handleImport reads the multipart "file" field and posts its rows.
// Rows are posted one at a time, so the server-wide write timeout is lifted
// for this route.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		s.logger.WarnContext(r.Context(), "clear write deadline failed", log.FieldOperation, log.OpImport, log.FieldError, err)
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		s.logger.WarnContext(r.Context(), "parse upload failed", log.FieldOperation, log.OpImport, log.FieldError, err)
		NewHTMXResponse().TriggerAlert("Error: upload too large or malformed").Write(w)
		return
	}

	var report page.ImportReport
	file, _, err := r.FormFile("file")
	if err != nil {
		report, err = s.ctrl.ImportReader(r.Context(), nil)
	} else {
		defer file.Close()
		report, err = s.ctrl.ImportReader(r.Context(), file)
	}

	switch {
	case errors.Is(err, page.ErrNoFile):
		NewHTMXResponse().TriggerAlert(page.MsgNoFile).Write(w)
	case errors.Is(err, page.ErrEmptyCSV):
		NewHTMXResponse().TriggerAlert(page.MsgEmptyCSV).Write(w)
	case err != nil:
		log.LogError(r.Context(), "import failed", err, log.ComponentHTTP, log.OpImport, nil)
		NewHTMXResponse().TriggerAlert("Error: " + err.Error()).Write(w)
	default:
		NewHTMXResponse().
			TriggerImportStatus(report.Status()).
			TriggerBudgetRefresh().
			BodyHTML(`<span class="import-status">` + template.HTMLEscapeString(report.Status()) + `</span>`).
			Write(w)
	}
}
