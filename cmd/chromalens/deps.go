package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	chromalens "github.com/chromalens/chromalens-go"
	"github.com/chromalens/chromalens-go/internal/config"
	"github.com/chromalens/chromalens-go/internal/embcache"
	openaiembed "github.com/chromalens/chromalens-go/internal/embed/openai"
	"github.com/chromalens/chromalens-go/internal/logger"
)

// deps bundles everything a command needs beyond its own flags.
type deps struct {
	client *chromalens.Client
	cfg    config.Config
	log    *zap.Logger
	cache  *embcache.Cache
}

func (d *deps) Close() {
	if d.cache != nil {
		d.cache.Close()
	}
	if d.log != nil {
		d.log.Sync() //nolint:errcheck // stderr sync failures are unactionable
	}
}

// buildDependencies loads config, layers the global flags on top and
// constructs a connected client.
func buildDependencies(ctx context.Context) (*deps, error) {
	cfg, err := config.Load(globalFlags.configPath)
	if err != nil {
		return nil, err
	}
	applyFlagOverrides(&cfg)

	level := cfg.Logging.Level
	if globalFlags.verbose {
		level = "debug"
	}
	log, err := logger.New(level, cfg.Logging.JSON)
	if err != nil {
		return nil, err
	}

	d := &deps{cfg: cfg, log: log}

	opts := []chromalens.Option{
		chromalens.WithHost(cfg.Server.Host),
		chromalens.WithPort(cfg.Server.Port),
		chromalens.WithTenant(cfg.Scope.Tenant),
		chromalens.WithDatabase(cfg.Scope.Database),
		chromalens.WithTimeout(time.Duration(cfg.Server.TimeoutSec) * time.Second),
		chromalens.WithLogger(logger.Slog(log)),
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
		if cfg.Cache.Addr != "" {
			cache, err := embcache.New(cfg.Cache.Addr, cfg.Cache.Password, time.Duration(cfg.Cache.TTLHours)*time.Hour)
			if err != nil {
				log.Warn("embedding cache unavailable, continuing without it", zap.Error(err))
			} else {
				d.cache = cache
				opts = append(opts, chromalens.WithEmbeddingCache(cache))
			}
		}
	}

	client, err := chromalens.New(ctx, opts...)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("connecting to %s:%d: %w", cfg.Server.Host, cfg.Server.Port, err)
	}
	d.client = client
	return d, nil
}

func applyFlagOverrides(cfg *config.Config) {
	if globalFlags.host != "" {
		cfg.Server.Host = globalFlags.host
	}
	if globalFlags.port > 0 {
		cfg.Server.Port = globalFlags.port
	}
	if globalFlags.tls {
		cfg.Server.SSL = true
	}
	if globalFlags.insecure {
		cfg.Server.InsecureSkipVerify = true
	}
	if globalFlags.apiKey != "" {
		cfg.Server.APIKey = globalFlags.apiKey
	}
	if globalFlags.timeoutSec > 0 {
		cfg.Server.TimeoutSec = globalFlags.timeoutSec
	}
	if globalFlags.tenant != "" {
		cfg.Scope.Tenant = globalFlags.tenant
	}
	if globalFlags.database != "" {
		cfg.Scope.Database = globalFlags.database
	}
}
