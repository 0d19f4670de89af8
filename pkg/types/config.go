package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "bookshelf-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// CatalogConfig holds settings for the catalog search stage.
type CatalogConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the number of ranked results a search returns (default 12).
	// The catalog is overfetched at twice this count so filtering and
	// truncation still leave a full page.
	MaxResults int `json:"max_results" yaml:"max_results"`

	// LanguageRestrict narrows catalog queries to a language code (default "ja").
	// Empty disables the restriction.
	LanguageRestrict string `json:"language_restrict" yaml:"language_restrict"`

	// OrderBy is the catalog-side ordering hint (default "relevance").
	OrderBy string `json:"order_by" yaml:"order_by"`

	// APIKey is an optional catalog API key for higher quota.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// CacheSize bounds the in-memory response cache in entries (default 256,
	// 0 uses the default, negative disables caching).
	CacheSize int `json:"cache_size" yaml:"cache_size"`

	// RequestsPerSecond limits outbound catalog calls (default 5).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`

	// MaxRetries is the number of retry attempts for throttled or failed
	// catalog calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// DefaultCatalogConfig returns catalog settings tuned for the Google Books
// volumes API and a Japanese manga shelf.
func DefaultCatalogConfig() CatalogConfig {
	return CatalogConfig{
		HTTPConfig: HTTPConfig{
			Timeout:   15 * time.Second,
			UserAgent: "bookshelf-engine/0.1",
		},
		MaxResults:        DefaultMaxResults,
		LanguageRestrict:  "ja",
		OrderBy:           "relevance",
		CacheSize:         256,
		RequestsPerSecond: 5,
		MaxRetries:        3,
	}
}

// LibraryConfig holds settings for the shelf store.
type LibraryConfig struct {
	// DBPath is the sqlite database path (default "bookshelf.db").
	DBPath string `json:"db_path" yaml:"db_path"`
}

// DefaultLibraryConfig returns the default shelf store settings.
func DefaultLibraryConfig() LibraryConfig {
	return LibraryConfig{DBPath: "bookshelf.db"}
}

// RecommendConfig holds settings for the recommendation stage.
type RecommendConfig struct {
	// Limit is the number of recommendations to return (default 10).
	Limit int `json:"limit" yaml:"limit"`

	// MaxReasonTerms caps the profile terms quoted in a recommendation
	// reason (default 3).
	MaxReasonTerms int `json:"max_reason_terms" yaml:"max_reason_terms"`

	// Epsilon perturbs similarity scores to diversify repeated result pages.
	// The default 0 applies no perturbation and keeps output deterministic.
	Epsilon float64 `json:"epsilon" yaml:"epsilon"`
}

// DefaultRecommendConfig returns the default recommendation settings.
func DefaultRecommendConfig() RecommendConfig {
	return RecommendConfig{Limit: 10, MaxReasonTerms: 3}
}

// ServerConfig holds settings for the HTTP API server.
type ServerConfig struct {
	// Addr is the listen address (default ":8000").
	Addr string `json:"addr" yaml:"addr"`

	// AllowedOrigins lists CORS origins permitted to call the API
	// (default http://localhost:3000, the bookshelf front end).
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins"`

	// RequestsPerMinute is the per-client rate limit (default 120).
	RequestsPerMinute int `json:"requests_per_minute" yaml:"requests_per_minute"`

	// LogLevel sets the minimum server log level (default "info").
	LogLevel string `json:"log_level" yaml:"log_level"`

	// LogFormat selects "console" or "json" server logs (default "console").
	LogFormat string `json:"log_format" yaml:"log_format"`
}

// DefaultServerConfig returns the default HTTP API settings.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:              ":8000",
		AllowedOrigins:    []string{"http://localhost:3000"},
		RequestsPerMinute: 120,
		LogLevel:          "info",
		LogFormat:         "console",
	}
}

// EngineConfig groups all stage configurations for the engine.
type EngineConfig struct {
	Catalog   CatalogConfig   `json:"catalog" yaml:"catalog"`
	Library   LibraryConfig   `json:"library" yaml:"library"`
	Recommend RecommendConfig `json:"recommend" yaml:"recommend"`
	Server    ServerConfig    `json:"server" yaml:"server"`
}

// DefaultEngineConfig groups the per-stage defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Catalog:   DefaultCatalogConfig(),
		Library:   DefaultLibraryConfig(),
		Recommend: DefaultRecommendConfig(),
		Server:    DefaultServerConfig(),
	}
}
