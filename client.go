package chromalens

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/chromalens/chromalens-go/internal/ops"
	"github.com/chromalens/chromalens-go/internal/rest"
)

const (
	defaultHost = "localhost"
	defaultPort = 8000

	apiKeyEnv = "CHROMALENS_API_KEY"
)

// Client is the chromalens entry point. All services share one transport
// and one immutable tenant/database scope; per-call overrides never mutate
// the client.
type Client struct {
	system      *ops.System
	tenants     *ops.Tenants
	databases   *ops.Databases
	collections *ops.Collections
	items       *ops.Items

	defaults ops.Defaults
	embedder Embedder
	obs      *observer
}

// New creates a Client and verifies server connectivity with a heartbeat
// probe. Use WithoutConnectionCheck to construct without touching the
// network.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		host: defaultHost,
		port: defaultPort,
	}
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.apiKey == "" {
		cfg.apiKey = os.Getenv(apiKeyEnv)
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	rc, err := rest.NewClient(rest.Config{
		Host:               cfg.host,
		Port:               cfg.port,
		TLS:                cfg.tls,
		InsecureSkipVerify: cfg.insecureSkipVerify,
		APIKey:             cfg.apiKey,
		Headers:            cfg.headers,
		Timeout:            cfg.timeout,
		HTTPClient:         cfg.httpClient,
		Logger:             logger,
	})
	if err != nil {
		return nil, err
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	embedder := cfg.embedder
	if embedder != nil && cfg.embCache != nil {
		embedder = &cachedEmbedder{inner: embedder, cache: cfg.embCache, logger: logger}
	}

	d := rest.NewDispatcher(rc, logger)
	defaults := ops.Defaults{Tenant: cfg.tenant, Database: cfg.database}
	c := &Client{
		system:      ops.NewSystem(d),
		tenants:     ops.NewTenants(d),
		databases:   ops.NewDatabases(d, defaults),
		collections: ops.NewCollections(d, defaults),
		items:       ops.NewItems(d, defaults),
		defaults:    defaults,
		embedder:    embedder,
		obs:         obs,
	}

	if !cfg.skipConnCheck {
		if _, err := c.system.Heartbeat(ctx); err != nil {
			return nil, fmt.Errorf("chromalens: server unreachable: %w", err)
		}
	}
	return c, nil
}

// Heartbeat returns the server's nanosecond heartbeat counter.
func (c *Client) Heartbeat(ctx context.Context) (ns int64, err error) {
	start := time.Now()
	defer func() { c.obs.observe("heartbeat", start, err) }()
	return c.system.Heartbeat(ctx)
}

// Version returns the server version string.
func (c *Client) Version(ctx context.Context) (v string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("version", start, err) }()
	return c.system.Version(ctx)
}

// Reset wipes all server state. The server must run with resets enabled.
func (c *Client) Reset(ctx context.Context) (ok bool, err error) {
	start := time.Now()
	defer func() { c.obs.observe("reset", start, err) }()
	return c.system.Reset(ctx)
}

// PreFlightChecks reports server capability limits such as the maximum
// batch size.
func (c *Client) PreFlightChecks(ctx context.Context) (checks map[string]any, err error) {
	start := time.Now()
	defer func() { c.obs.observe("pre_flight_checks", start, err) }()
	return c.system.PreFlightChecks(ctx)
}

// Tenants returns the tenant administration service.
func (c *Client) Tenants() *TenantService {
	return &TenantService{ops: c.tenants, obs: c.obs}
}

// Databases returns the database administration service.
func (c *Client) Databases() *DatabaseService {
	return &DatabaseService{ops: c.databases, obs: c.obs}
}

// Collections returns the collection lifecycle service.
func (c *Client) Collections() *CollectionService {
	return &CollectionService{ops: c.collections, obs: c.obs}
}

// Items returns the record-level service for a collection, addressed by the
// server-assigned collection id.
func (c *Client) Items(collectionID string) *ItemService {
	return &ItemService{
		collectionID: collectionID,
		ops:          c.items,
		embedder:     c.embedder,
		obs:          c.obs,
	}
}

func scopeOf(opts []CallOption) ops.Scope {
	var s callScope
	for _, o := range opts {
		o.applyCall(&s)
	}
	return ops.Scope{Tenant: s.tenant, Database: s.database}
}
