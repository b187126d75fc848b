// Package config loads tool configuration for the CLI and the dashboard
// from YAML, with CHROMALENS_* environment variables taking precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the chromalens tool configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Scope     ScopeConfig     `yaml:"scope"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Cache     CacheConfig     `yaml:"cache"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds the Chroma server connection settings.
type ServerConfig struct {
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	SSL                bool   `yaml:"ssl"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
	APIKey             string `yaml:"api_key"`
	TimeoutSec         int    `yaml:"timeout_sec"`
}

// ScopeConfig holds the default tenant and database.
type ScopeConfig struct {
	Tenant   string `yaml:"tenant"`
	Database string `yaml:"database"`
}

// EmbeddingConfig holds the text embedding provider settings.
type EmbeddingConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	Provider   string `yaml:"provider"`
}

// CacheConfig holds the Redis embedding cache settings.
type CacheConfig struct {
	Addr     string `yaml:"addr"` // empty disables the cache
	Password string `yaml:"password"`
	TTLHours int    `yaml:"ttl_hours"`
}

// DashboardConfig holds the dashboard HTTP server settings.
type DashboardConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
	RefreshSec      int `yaml:"refresh_sec"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	JSON  bool   `yaml:"json"`
}

// Load reads configuration from the given YAML file. An empty path falls
// back to the well-known locations; a missing file yields the defaults.
// Environment variables override file values either way.
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		path = findConfigPath()
	}
	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		data = expandEnvVars(data)
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "localhost"
	}
	if c.Server.Port <= 0 {
		c.Server.Port = 8000
	}
	if c.Server.TimeoutSec <= 0 {
		c.Server.TimeoutSec = 60
	}
	if c.Scope.Tenant == "" {
		c.Scope.Tenant = "default_tenant"
	}
	if c.Scope.Database == "" {
		c.Scope.Database = "default_database"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Cache.TTLHours <= 0 {
		c.Cache.TTLHours = 168
	}
	if c.Dashboard.Port <= 0 {
		c.Dashboard.Port = 8080
	}
	if c.Dashboard.ReadTimeoutSec <= 0 {
		c.Dashboard.ReadTimeoutSec = 10
	}
	if c.Dashboard.WriteTimeoutSec <= 0 {
		c.Dashboard.WriteTimeoutSec = 10
	}
	if c.Dashboard.ShutdownSec <= 0 {
		c.Dashboard.ShutdownSec = 10
	}
	if c.Dashboard.RefreshSec <= 0 {
		c.Dashboard.RefreshSec = 15
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Dashboard.Port <= 0 || c.Dashboard.Port > 65535 {
		return fmt.Errorf("dashboard.port must be between 1 and 65535, got %d", c.Dashboard.Port)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}

// applyEnv layers CHROMALENS_* environment variables over file values.
func (c *Config) applyEnv() {
	setString(&c.Server.Host, "CHROMALENS_HOST")
	setInt(&c.Server.Port, "CHROMALENS_PORT")
	setBool(&c.Server.SSL, "CHROMALENS_SSL")
	setString(&c.Server.APIKey, "CHROMALENS_API_KEY")
	setInt(&c.Server.TimeoutSec, "CHROMALENS_TIMEOUT_SEC")
	setString(&c.Scope.Tenant, "CHROMALENS_TENANT")
	setString(&c.Scope.Database, "CHROMALENS_DATABASE")
	setString(&c.Embedding.APIKey, "CHROMALENS_EMBEDDING_API_KEY")
	setString(&c.Embedding.BaseURL, "CHROMALENS_EMBEDDING_BASE_URL")
	setString(&c.Embedding.Model, "CHROMALENS_EMBEDDING_MODEL")
	setString(&c.Cache.Addr, "CHROMALENS_CACHE_ADDR")
	setString(&c.Cache.Password, "CHROMALENS_CACHE_PASSWORD")
	setString(&c.Logging.Level, "CHROMALENS_LOG_LEVEL")
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func setInt(dst *int, env string) {
	if v := os.Getenv(env); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, env string) {
	if v := os.Getenv(env); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

// findConfigPath locates the config file, returning "" when none exists.
func findConfigPath() string {
	candidates := []string{
		filepath.Join("config", "chromalens.yaml"),
		"chromalens.yaml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "chromalens", "config.yaml"))
	}
	for _, path := range candidates {
		if fileExists(path) {
			return path
		}
	}
	return ""
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
