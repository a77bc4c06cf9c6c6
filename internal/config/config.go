// Package config provides configuration loading and management for the storefront API.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"

	"github.com/stacklok/storefront-catalog/internal/catalog"
	"github.com/stacklok/storefront-catalog/internal/filters"
	"github.com/stacklok/storefront-catalog/internal/telemetry"
)

const (
	// EnvPrefix is the prefix of environment variables read by the storefront API
	EnvPrefix = "STOREFRONT"

	// EnvProviderToken holds the provider access token when no tokenFile is configured
	EnvProviderToken = "STOREFRONT_PROVIDER_TOKEN"

	// EnvRedisPassword holds the redis password when no passwordFile is configured
	EnvRedisPassword = "STOREFRONT_REDIS_PASSWORD"
)

const (
	// ProviderTypeAPI fetches the catalog from the upstream catalog service
	ProviderTypeAPI = "api"

	// ProviderTypeFile serves the catalog from a local JSON document
	ProviderTypeFile = "file"
)

const (
	// CacheBackendNone disables response caching
	CacheBackendNone = "none"

	// CacheBackendMemory caches provider responses in process
	CacheBackendMemory = "memory"

	// CacheBackendRedis caches provider responses in redis
	CacheBackendRedis = "redis"
)

const (
	// DefaultStoreName is used when storeName is not set
	DefaultStoreName = "storefront"

	// DefaultProviderTimeout bounds a single provider request
	DefaultProviderTimeout = 10 * time.Second

	// DefaultMaxRetries is the number of retries after a transient provider failure
	DefaultMaxRetries = 2

	// DefaultCacheTTL is how long a cached provider response stays fresh
	DefaultCacheTTL = time.Minute

	// DefaultRedisKeyPrefix namespaces cache keys in a shared redis
	DefaultRedisKeyPrefix = "storefront:"

	// DefaultHiddenTag marks products never shown by the storefront
	DefaultHiddenTag = catalog.DefaultHiddenTag

	// OptionMatchAnyVariant accepts a product when each selected option is offered by some variant
	OptionMatchAnyVariant = string(filters.OptionMatchAnyVariant)

	// OptionMatchSameVariant requires a single variant to satisfy every selected option
	OptionMatchSameVariant = string(filters.OptionMatchSameVariant)
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks; this also cleans the path.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		if !filepath.IsAbs(realPath) && !filepath.IsLocal(realPath) {
			return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
		}

		cfg.path = realPath
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	// StoreName identifies this storefront in logs and telemetry.
	// Defaults to "storefront" if not specified
	StoreName string `yaml:"storeName,omitempty"`

	Provider  ProviderConfig    `yaml:"provider"`
	Cache     *CacheConfig      `yaml:"cache,omitempty"`
	Filtering *FilterConfig     `yaml:"filtering,omitempty"`
	Telemetry *telemetry.Config `yaml:"telemetry,omitempty"`
}

// ProviderConfig selects and configures the catalog provider
type ProviderConfig struct {
	// Type is "api" or "file"
	Type string `yaml:"type"`

	// Type-specific configurations (only the one matching Type may be set)
	API  *APIConfig  `yaml:"api,omitempty"`
	File *FileConfig `yaml:"file,omitempty"`
}

// APIConfig configures the HTTP catalog provider
type APIConfig struct {
	// Endpoint is the base URL of the catalog service, e.g. "https://catalog.example.com/api"
	Endpoint string `yaml:"endpoint"`

	// TokenFile is the path to a file containing the access token
	TokenFile string `yaml:"tokenFile,omitempty"`

	// TokenHeader is the header carrying the access token
	TokenHeader string `yaml:"tokenHeader,omitempty"`

	// Timeout bounds a single request (e.g. "5s"). Defaults to 10s
	Timeout string `yaml:"timeout,omitempty"`

	// MaxRetries is the number of retries after a transient failure. Defaults to 2
	MaxRetries *uint `yaml:"maxRetries,omitempty"`

	// ProductsPath and CollectionsPath locate the result arrays in responses (gjson syntax)
	ProductsPath    string `yaml:"productsPath,omitempty"`
	CollectionsPath string `yaml:"collectionsPath,omitempty"`
}

// FileConfig configures the file catalog provider
type FileConfig struct {
	// Path is the catalog JSON document, absolute or relative to the working directory
	Path string `yaml:"path"`
}

// CacheConfig configures provider response caching
type CacheConfig struct {
	// Backend is "none", "memory" or "redis". Defaults to "none"
	Backend string `yaml:"backend,omitempty"`

	// TTL is how long a response stays fresh (e.g. "30s"). Defaults to 1m
	TTL string `yaml:"ttl,omitempty"`

	Redis *RedisConfig `yaml:"redis,omitempty"`
}

// RedisConfig defines redis connection settings
type RedisConfig struct {
	// Address is "host:port"
	Address string `yaml:"address"`

	DB int `yaml:"db,omitempty"`

	// PasswordFile is the path to a file containing the redis password.
	// Optional; redis without auth is allowed
	PasswordFile string `yaml:"passwordFile,omitempty"`

	KeyPrefix string `yaml:"keyPrefix,omitempty"`
}

// FilterConfig defines storefront filtering behaviour and product visibility rules
type FilterConfig struct {
	// OptionMatch is "any-variant" (default) or "same-variant"
	OptionMatch string `yaml:"optionMatch,omitempty"`

	// HiddenTag marks products that are never listed. Defaults to "nextjs-frontend-hidden"
	HiddenTag string `yaml:"hiddenTag,omitempty"`

	// Handles filters products by handle glob patterns
	Handles *HandleFilterConfig `yaml:"handles,omitempty"`

	// Tags filters products by tag
	Tags *TagFilterConfig `yaml:"tags,omitempty"`
}

// HandleFilterConfig defines handle-based filtering
type HandleFilterConfig struct {
	Include []string `yaml:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`
}

// TagFilterConfig defines tag-based filtering
type TagFilterConfig struct {
	Include []string `yaml:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`
}

// LoadConfig loads and parses configuration from a YAML file
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	if loaderCfg.path == "" {
		return nil, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(loaderCfg.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// GetStoreName returns the store name, using "storefront" if not specified
func (c *Config) GetStoreName() string {
	if c.StoreName == "" {
		return DefaultStoreName
	}
	return c.StoreName
}

// GetToken returns the provider access token using the following priority:
// 1. Read from TokenFile if specified
// 2. Read from the STOREFRONT_PROVIDER_TOKEN environment variable
//
// An empty token is allowed; the provider then sends no token header.
func (a *APIConfig) GetToken() (string, error) {
	return readSecret(a.TokenFile, EnvProviderToken)
}

// GetTimeout returns the request timeout, using DefaultProviderTimeout if not specified
func (a *APIConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(a.Timeout)
	if err != nil || d <= 0 {
		return DefaultProviderTimeout
	}
	return d
}

// GetMaxRetries returns the retry count, using DefaultMaxRetries if not specified
func (a *APIConfig) GetMaxRetries() uint {
	if a.MaxRetries == nil {
		return DefaultMaxRetries
	}
	return *a.MaxRetries
}

// GetBackend returns the cache backend, using "none" if not specified
func (c *CacheConfig) GetBackend() string {
	if c == nil || c.Backend == "" {
		return CacheBackendNone
	}
	return c.Backend
}

// GetTTL returns the cache TTL, using DefaultCacheTTL if not specified
func (c *CacheConfig) GetTTL() time.Duration {
	if c == nil {
		return DefaultCacheTTL
	}
	d, err := time.ParseDuration(c.TTL)
	if err != nil || d <= 0 {
		return DefaultCacheTTL
	}
	return d
}

// GetPassword returns the redis password from PasswordFile, then from the
// STOREFRONT_REDIS_PASSWORD environment variable. Empty means no auth.
func (r *RedisConfig) GetPassword() (string, error) {
	return readSecret(r.PasswordFile, EnvRedisPassword)
}

// GetKeyPrefix returns the key prefix, using "storefront:" if not specified
func (r *RedisConfig) GetKeyPrefix() string {
	if r.KeyPrefix == "" {
		return DefaultRedisKeyPrefix
	}
	return r.KeyPrefix
}

// GetOptionMatch returns the option match mode, using "any-variant" if not specified
func (f *FilterConfig) GetOptionMatch() string {
	if f == nil || f.OptionMatch == "" {
		return OptionMatchAnyVariant
	}
	return f.OptionMatch
}

// GetHiddenTag returns the hidden product tag, using "nextjs-frontend-hidden" if not specified
func (f *FilterConfig) GetHiddenTag() string {
	if f == nil || f.HiddenTag == "" {
		return DefaultHiddenTag
	}
	return f.HiddenTag
}

// readSecret reads a secret from file when path is set, otherwise from envVar.
// File content has surrounding whitespace trimmed.
func readSecret(path, envVar string) (string, error) {
	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return "", fmt.Errorf("failed to read secret from file %s: %w", path, err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	return os.Getenv(envVar), nil
}

// Validate checks the configuration for required fields and consistent settings
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	var errs []error
	if err := validateProvider(&c.Provider); err != nil {
		errs = append(errs, err)
	}
	if err := validateCache(c.Cache); err != nil {
		errs = append(errs, err)
	}
	if err := validateFiltering(c.Filtering); err != nil {
		errs = append(errs, err)
	}
	if err := c.Telemetry.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("telemetry: %w", err))
	}
	return errors.Join(errs...)
}

func validateProvider(p *ProviderConfig) error {
	switch p.Type {
	case ProviderTypeAPI:
		if p.File != nil {
			return fmt.Errorf("provider: file configuration is not allowed when type is %s", p.Type)
		}
		return validateAPIConfig(p.API)
	case ProviderTypeFile:
		if p.API != nil {
			return fmt.Errorf("provider: api configuration is not allowed when type is %s", p.Type)
		}
		if p.File == nil || p.File.Path == "" {
			return fmt.Errorf("provider: file.path is required")
		}
		return nil
	case "":
		return fmt.Errorf("provider.type is required")
	default:
		return fmt.Errorf("provider.type must be %s or %s, got %s", ProviderTypeAPI, ProviderTypeFile, p.Type)
	}
}

func validateAPIConfig(api *APIConfig) error {
	if api == nil || api.Endpoint == "" {
		return fmt.Errorf("provider: api.endpoint is required")
	}
	u, err := url.Parse(api.Endpoint)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("provider: api.endpoint must be an http(s) URL, got %q", api.Endpoint)
	}
	if api.Timeout != "" {
		if _, err := time.ParseDuration(api.Timeout); err != nil {
			return fmt.Errorf("provider: api.timeout must be a valid duration (e.g., '5s'): %w", err)
		}
	}
	return nil
}

func validateCache(c *CacheConfig) error {
	if c == nil {
		return nil
	}
	if c.TTL != "" {
		if _, err := time.ParseDuration(c.TTL); err != nil {
			return fmt.Errorf("cache: ttl must be a valid duration (e.g., '30s', '5m'): %w", err)
		}
	}
	switch c.GetBackend() {
	case CacheBackendNone, CacheBackendMemory:
		return nil
	case CacheBackendRedis:
		if c.Redis == nil || c.Redis.Address == "" {
			return fmt.Errorf("cache: redis.address is required when backend is %s", CacheBackendRedis)
		}
		return nil
	default:
		return fmt.Errorf("cache: backend must be one of %s, %s or %s, got %s",
			CacheBackendNone, CacheBackendMemory, CacheBackendRedis, c.Backend)
	}
}

func validateFiltering(f *FilterConfig) error {
	if f == nil {
		return nil
	}
	switch f.GetOptionMatch() {
	case OptionMatchAnyVariant, OptionMatchSameVariant:
	default:
		return fmt.Errorf("filtering: optionMatch must be %s or %s, got %s",
			OptionMatchAnyVariant, OptionMatchSameVariant, f.OptionMatch)
	}
	if f.Handles == nil {
		return nil
	}
	for _, pattern := range append(append([]string{}, f.Handles.Include...), f.Handles.Exclude...) {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("filtering: invalid handle pattern %q: %w", pattern, err)
		}
	}
	return nil
}
