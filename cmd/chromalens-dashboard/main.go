// Command chromalens-dashboard serves a read-only status page for a
// Chroma deployment: server reachability, version and per-collection
// item counts, plus Prometheus metrics for the dashboard itself.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	chromalens "github.com/chromalens/chromalens-go"
	"github.com/chromalens/chromalens-go/internal/config"
	openaiembed "github.com/chromalens/chromalens-go/internal/embed/openai"
	"github.com/chromalens/chromalens-go/internal/logger"
	"github.com/chromalens/chromalens-go/internal/metrics"
	"github.com/chromalens/chromalens-go/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "chromalens-dashboard:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.JSON)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck // stderr sync failures are unactionable

	log.Info("Starting dashboard",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.Int("port", cfg.Dashboard.Port),
		zap.String("chroma", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)),
	)

	metrics.RegisterEmbeddingMetrics()

	opts := []chromalens.Option{
		chromalens.WithHost(cfg.Server.Host),
		chromalens.WithPort(cfg.Server.Port),
		chromalens.WithTenant(cfg.Scope.Tenant),
		chromalens.WithDatabase(cfg.Scope.Database),
		chromalens.WithTimeout(time.Duration(cfg.Server.TimeoutSec) * time.Second),
		chromalens.WithLogger(logger.Slog(log)),
		chromalens.WithPrometheus(prometheus.DefaultRegisterer),
		// The page reports unreachability itself, so startup must not
		// depend on the server being up.
		chromalens.WithoutConnectionCheck(),
	}
	if cfg.Server.SSL {
		opts = append(opts, chromalens.WithTLS())
	}
	if cfg.Server.InsecureSkipVerify {
		opts = append(opts, chromalens.WithInsecureSkipVerify())
	}
	if cfg.Server.APIKey != "" {
		opts = append(opts, chromalens.WithAPIKey(cfg.Server.APIKey))
	}
	if cfg.Embedding.APIKey != "" {
		opts = append(opts, chromalens.WithEmbedder(openaiembed.NewEmbedder(&openaiembed.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Provider:   cfg.Embedding.Provider,
			Logger:     log,
		})))
	}

	client, err := chromalens.New(context.Background(), opts...)
	if err != nil {
		return err
	}

	dash := newDashboard(clientSource{client: client}, log, cfg.Dashboard.RefreshSec)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(metrics.Middleware())
	r.Get("/", dash.handleIndex)
	r.Get("/collections/{id}", dash.handleCollection)
	r.Get("/query", dash.handleQuery)
	r.Post("/query", dash.handleQuery)
	r.Get("/healthz", dash.handleHealthz)
	r.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", cfg.Dashboard.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Dashboard.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.Dashboard.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Info("Dashboard listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-quit:
		log.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Dashboard.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Error during shutdown", zap.Error(err))
		return err
	}

	log.Info("Dashboard stopped gracefully")
	return nil
}
