package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldExpenseID  = "expense_id"
	FieldCategory   = "category"
	FieldAmount     = "amount"
	FieldBatchID    = "batch_id"
	FieldRow        = "row"
	FieldCount      = "count"
)

// Component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentPage     = "page"
	ComponentChart    = "chart"
	ComponentEvents   = "events"
	ComponentSecurity = "security"
	ComponentCurrency = "currency"
)

// Operation names
const (
	OpCreate   = "create"
	OpDelete   = "delete"
	OpImport   = "import"
	OpExport   = "export"
	OpRefresh  = "refresh"
	OpRender   = "render"
	OpPublish  = "publish"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithRequestID(requestID string) LogFields {
	if requestID != "" {
		f[FieldRequestID] = requestID
	}
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithExpense adds the identifying fields of an expense row.
func (f LogFields) WithExpense(id, category string, amount any) LogFields {
	if id != "" {
		f[FieldExpenseID] = id
	}
	f[FieldCategory] = category
	f[FieldAmount] = amount
	return f
}

// WithImportRow tags a record with its import batch and row number.
func (f LogFields) WithImportRow(batchID string, row int) LogFields {
	f[FieldBatchID] = batchID
	f[FieldRow] = row
	return f
}

// WithHTTPResponse adds request/response fields.
func (f LogFields) WithHTTPResponse(method, path string, statusCode int, durationMs int64) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
