// Package internal provides the application wiring: configuration, client
// construction and the long-running monitor service.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/snapcurator/internal/api"
	"github.com/starford/snapcurator/internal/journal"
	"github.com/starford/snapcurator/internal/monitor"
	"github.com/starford/snapcurator/internal/request"
	"github.com/starford/snapcurator/internal/session"
	"github.com/starford/snapcurator/internal/sse"
	"github.com/starford/snapcurator/internal/views"
	pkgconfig "github.com/starford/snapcurator/pkg/config"
)

// Run starts the collector monitor service with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := NewLogger(cfg.App, os.Stdout)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("backend_url", cfg.Backend.BaseURL),
		slog.String("journal_path", cfg.Journal.Path),
		slog.Duration("monitor_interval", cfg.Monitor.Interval),
		slog.String("log_level", cfg.App.LogLevel.String()))

	broker := sse.NewBroker(cfg.Monitor.Throttle)
	defer broker.Close()

	clientOpts := []request.Option{
		request.WithSessionExpired(func(loginURL string) {
			logger.Warn("backend session expired, update the session cookie",
				slog.String("login_url", loginURL))
			broker.Publish(sse.Event{Type: sse.TypeSessionExpired, Data: map[string]string{"login_url": loginURL}})
		}),
	}

	var history api.History
	if cfg.Journal.Path != "" {
		db, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return fmt.Errorf("init journal: %w", err)
		}
		defer db.Close()
		history = db
		clientOpts = append(clientOpts, request.WithObserver(db.Observer(logger)))
	}

	client, err := NewClient(cfg.Backend, logger, clientOpts...)
	if err != nil {
		return err
	}
	tracker := session.NewTracker(client)
	tracker.Apply(cfg.Backend.CookieName, cfg.Backend.SessionCookie)

	collector := views.NewCollector(client)
	defer collector.Close()
	mon := monitor.New(collector, broker, cfg.Monitor.Interval, logger)

	handler := api.NewHandler(mon, history)
	apiRouter := api.NewRouter(handler, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if mon.Latest().Data == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"waiting for collector status"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return mon.Run(gCtx)
	})

	if app.configPath != "" {
		g.Go(func() error {
			err := session.Watch(gCtx, app.configPath, logger, func() {
				fresh := NewDefaultConfig()
				if err := pkgconfig.Load(app.configPath, fresh); err != nil {
					logger.Warn("config reload failed", slog.String("error", err.Error()))
					return
				}
				if tracker.Apply(fresh.Backend.CookieName, fresh.Backend.SessionCookie) {
					logger.Info("session cookie reloaded")
				}
			})
			if err != nil {
				logger.Warn("session watcher disabled", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		// SSE streams only end when the broker closes.
		broker.Close()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group's context so the monitor and watcher stop
// once the signal handler has shut the server down.
var errShutdown = errors.New("shutdown")
