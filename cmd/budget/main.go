package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"budget/internal/chart"
	"budget/internal/config"
	"budget/internal/core"
	"budget/internal/currency"
	"budget/internal/events"
	"budget/internal/expenses"
	"budget/internal/expenses/memstore"
	apphttp "budget/internal/http"
	"budget/internal/log"
	"budget/internal/page"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.New(log.DefaultConfig()).Error("Failed to load configuration", log.FieldError, err)
		os.Exit(1)
	}

	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Component: log.ComponentApp,
		Output:    os.Stdout,
	})
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", log.FieldError, err)
		os.Exit(1)
	}

	formatter, err := currency.New(cfg.Currency, cfg.Locale)
	if err != nil {
		logger.WithComponent(log.ComponentCurrency).Warn("Falling back to fixed euro format",
			log.FieldError, err, "currency", cfg.Currency, "locale", cfg.Locale)
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.EventsEnabled() {
		amqpPub, err := events.Dial(cfg.AMQPURL, cfg.AMQPExchange, logger)
		if err != nil {
			logger.WithComponent(log.ComponentEvents).Warn("AMQP unavailable, activity events disabled", log.FieldError, err)
		} else {
			defer func() { _ = amqpPub.Close() }()
			publisher = amqpPub
			logger.Info("Publishing activity events", "exchange", cfg.AMQPExchange)
		}
	}

	var api http.Handler
	if cfg.EmbeddedAPI {
		api = memstore.New().Routes()
	}

	store := expenses.NewClient(cfg.ExpensesAPIURL, nil)
	renderer := chart.NewRenderer(cfg.ChartAssetsHost, cfg.ChartMaxWidth, logger)
	controller := page.NewController(store, core.DefaultAllocations(), renderer,
		page.WithPublisher(publisher),
		page.WithLogger(logger),
	)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Controller: controller,
		Formatter:  formatter,
		API:        api,
		AssetsHost: cfg.ChartAssetsHost,
		RateLimit:  cfg.RateLimit,
		Logger:     logger,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting budget server",
			log.FieldOperation, log.OpStartup,
			"port", cfg.Port,
			"expenses_api", cfg.ExpensesAPIURL,
			"embedded_api", cfg.EmbeddedAPI,
			"locale", formatter.Locale())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
