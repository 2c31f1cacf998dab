package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"budget/internal/currency"
	"budget/internal/log"
	"budget/internal/middleware/ratelimit"
	"budget/internal/middleware/security"
	"budget/internal/page"
	appweb "budget/web"
)

// Deps are the collaborators the server routes to.
type Deps struct {
	Controller *page.Controller
	Formatter  *currency.Formatter
	// API, when set, is mounted at /api/expenses outside the rate limiter.
	API        http.Handler
	AssetsHost string
	RateLimit  int
	Logger     *log.Logger
}

type Server struct {
	http.Server
	templates  *template.Template
	ctrl       *page.Controller
	locales    *currency.Locales
	limiter    *ratelimit.Limiter
	detector   *security.Detector
	logger     *log.Logger
	chartCSP   string
	shutdownMu sync.Mutex
	shutdown   bool
}

const localeCacheSize = 64

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		ctrl:     deps.Controller,
		locales:  currency.NewLocales(deps.Formatter, localeCacheSize),
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: deps.RateLimit}),
		detector: security.NewDetector(logger),
		logger:   logger,
		chartCSP: security.ChartFrameCSP(deps.AssetsHost),
	}

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("failed parsing templates", log.FieldError, err)
	}
	s.templates = t

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(log.Middleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(s.detector.Middleware)

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.With(security.StaticAssetMiddleware(3600)).Handle("/static/*", static)
	} else {
		logger.Warn("failed to mount embedded static FS", log.FieldError, err)
	}

	if deps.API != nil {
		r.Mount("/api/expenses", deps.API)
	}

	r.Group(func(r chi.Router) {
		r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
		r.Use(s.limiter.Middleware(s.detector.ClientIP, s.onRateLimited))

		r.Get("/", s.handleIndex)
		r.Get("/ui/budget", s.handleBudget)
		r.Get("/ui/chart", s.handleChart)
		r.Post("/expenses", s.handleCreateExpense)
		r.Delete("/expenses/{id}", s.handleDeleteExpense)
		r.Get("/export.csv", s.handleExportCSV)
		r.Get("/export.xlsx", s.handleExportXLSX)
		r.Post("/import", s.handleImport)
	})

	s.Server = http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "rate limit exceeded",
		log.FieldClientIP, s.detector.ClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	TooManyRequestsError("Rate limit exceeded. Please try again later.").
		TriggerAlert("Too many requests. Please wait a minute and try again.").
		Write(w)
}

// Shutdown stops the limiter and drains the HTTP server. Safe to call twice.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownMu.Lock()
	if s.shutdown {
		s.shutdownMu.Unlock()
		return nil
	}
	s.shutdown = true
	s.shutdownMu.Unlock()

	s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}

func (s *Server) shuttingDown() bool {
	s.shutdownMu.Lock()
	defer s.shutdownMu.Unlock()
	return s.shutdown
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil || s.shuttingDown() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
