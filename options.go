package chromalens

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	host               string
	port               int
	tls                bool
	insecureSkipVerify bool
	apiKey             string
	headers            map[string]string
	timeout            time.Duration
	httpClient         *http.Client

	tenant   string
	database string

	embedder Embedder
	embCache EmbeddingCache

	skipConnCheck bool

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithHost sets the server hostname. Default: localhost.
func WithHost(host string) Option {
	return optionFunc(func(c *clientConfig) {
		c.host = host
	})
}

// WithPort sets the server port. Default: 8000.
func WithPort(port int) Option {
	return optionFunc(func(c *clientConfig) {
		c.port = port
	})
}

// WithTLS switches the client to https.
func WithTLS() Option {
	return optionFunc(func(c *clientConfig) {
		c.tls = true
	})
}

// WithInsecureSkipVerify disables TLS certificate verification.
// Use only against servers with self-signed certificates.
func WithInsecureSkipVerify() Option {
	return optionFunc(func(c *clientConfig) {
		c.insecureSkipVerify = true
	})
}

// WithTenant sets the default tenant for every call.
// Default: default_tenant.
func WithTenant(tenant string) Option {
	return optionFunc(func(c *clientConfig) {
		c.tenant = tenant
	})
}

// WithDatabase sets the default database for every call.
// Default: default_database.
func WithDatabase(database string) Option {
	return optionFunc(func(c *clientConfig) {
		c.database = database
	})
}

// WithAPIKey sets the bearer token sent with every request. When unset the
// client falls back to the CHROMALENS_API_KEY environment variable.
func WithAPIKey(key string) Option {
	return optionFunc(func(c *clientConfig) {
		c.apiKey = key
	})
}

// WithTimeout sets the per-request timeout. Default: 60s.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithHeader adds a header sent with every request. Call-specific headers
// with the same name win.
func WithHeader(name, value string) Option {
	return optionFunc(func(c *clientConfig) {
		if c.headers == nil {
			c.headers = map[string]string{}
		}
		c.headers[name] = value
	})
}

// WithHTTPClient replaces the underlying HTTP client. Timeout and TLS
// options are ignored when set.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithEmbedder sets the text embedding provider used by text queries.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithEmbeddingCache caches embedding vectors in front of the embedder.
// No effect without WithEmbedder.
func WithEmbeddingCache(cache EmbeddingCache) Option {
	return optionFunc(func(c *clientConfig) {
		c.embCache = cache
	})
}

// WithoutConnectionCheck skips the heartbeat probe during New.
func WithoutConnectionCheck() Option {
	return optionFunc(func(c *clientConfig) {
		c.skipConnCheck = true
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}

// CallOption overrides the tenant/database scope for a single call.
type CallOption interface {
	applyCall(*callScope)
}

type callOptionFunc func(*callScope)

func (f callOptionFunc) applyCall(s *callScope) { f(s) }

type callScope struct {
	tenant   string
	database string
}

// InTenant addresses the call at the given tenant instead of the default.
func InTenant(tenant string) CallOption {
	return callOptionFunc(func(s *callScope) {
		s.tenant = tenant
	})
}

// InDatabase addresses the call at the given database instead of the
// default.
func InDatabase(database string) CallOption {
	return callOptionFunc(func(s *callScope) {
		s.database = database
	})
}
