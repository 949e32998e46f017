// Package config provides configuration loading and validation for the reader
// agent.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Defaults applied by Default.
const (
	DefaultListenAddr            = ":8080"
	DefaultLogMode               = "development"
	DefaultGenerationTimeout     = 45 * time.Second
	DefaultGenerationConcurrency = 4
	DefaultGenerateRatePerMinute = 30
	DefaultModelTier             = "standard"
	DefaultCacheTTL              = 7 * 24 * time.Hour
)

// Duration is a time.Duration that reads from JSON as "45s" or as a number of
// seconds.
type Duration time.Duration

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := parseDuration(s)
		if err != nil {
			return err
		}
		*d = Duration(parsed)
		return nil
	}
	var secs float64
	if err := json.Unmarshal(data, &secs); err != nil {
		return fmt.Errorf("duration must be a string like \"45s\" or a number of seconds")
	}
	*d = Duration(time.Duration(secs * float64(time.Second)))
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Config represents the service configuration. It can be loaded from a JSON
// file; environment variables take precedence over file values.
type Config struct {
	// Storage. DatabaseURL and SQLitePath are mutually exclusive.
	DatabaseURL string `json:"database_url,omitempty"`
	SQLitePath  string `json:"sqlite_path,omitempty"`
	RedisAddr   string `json:"redis_addr,omitempty"`

	// Model
	GeminiAPIKey string `json:"gemini_api_key,omitempty"`
	ModelTier    string `json:"model_tier,omitempty"`

	// Generation
	GenerationTimeout     Duration `json:"generation_timeout,omitempty"`
	GenerationConcurrency int      `json:"generation_concurrency,omitempty"`
	GenerateRatePerMinute int      `json:"rate_limit_generate_per_min,omitempty"`
	CacheTTL              Duration `json:"cache_ttl,omitempty"`

	// Server
	ListenAddr     string   `json:"listen_addr,omitempty"`
	AllowedOrigins []string `json:"allowed_origins,omitempty"`
	LogMode        string   `json:"log_mode,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ModelTier:             DefaultModelTier,
		GenerationTimeout:     Duration(DefaultGenerationTimeout),
		GenerationConcurrency: DefaultGenerationConcurrency,
		GenerateRatePerMinute: DefaultGenerateRatePerMinute,
		CacheTTL:              Duration(DefaultCacheTTL),
		ListenAddr:            DefaultListenAddr,
		LogMode:               DefaultLogMode,
	}
}

// Load builds the effective configuration: the optional JSON file at path,
// merged over Default, then overridden by the environment.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	merged := cfg.MergeWithDefaults(Default())
	if err := merged.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// ApplyEnv overrides fields from environment variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	setString := func(name string, dst *string) {
		if v := strings.TrimSpace(getenv(name)); v != "" {
			*dst = v
		}
	}
	setString("DATABASE_URL", &c.DatabaseURL)
	setString("SQLITE_PATH", &c.SQLitePath)
	setString("REDIS_ADDR", &c.RedisAddr)
	setString("GEMINI_API_KEY", &c.GeminiAPIKey)
	setString("MODEL_TIER", &c.ModelTier)
	setString("LISTEN_ADDR", &c.ListenAddr)
	setString("LOG_MODE", &c.LogMode)

	if v := strings.TrimSpace(getenv("ALLOWED_ORIGINS")); v != "" {
		c.AllowedOrigins = nil
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				c.AllowedOrigins = append(c.AllowedOrigins, origin)
			}
		}
	}

	if v := strings.TrimSpace(getenv("GENERATION_TIMEOUT")); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid GENERATION_TIMEOUT: %w", err)
		}
		c.GenerationTimeout = Duration(d)
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"GENERATION_CONCURRENCY", &c.GenerationConcurrency},
		{"RATE_LIMIT_GENERATE_PER_MIN", &c.GenerateRatePerMinute},
	}
	for _, iv := range ints {
		v := strings.TrimSpace(getenv(iv.name))
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %v", iv.name, err)
		}
		*iv.dst = n
	}
	return nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.DatabaseURL != "" && c.SQLitePath != "" {
		return fmt.Errorf("config error: 'database_url' and 'sqlite_path' are mutually exclusive")
	}
	if c.GenerationTimeout <= 0 {
		return fmt.Errorf("config error: 'generation_timeout' must be positive")
	}
	if c.GenerationConcurrency < 1 || c.GenerationConcurrency > 16 {
		return fmt.Errorf("config error: 'generation_concurrency' must be between 1 and 16, got %d", c.GenerationConcurrency)
	}
	if c.GenerateRatePerMinute < 0 {
		return fmt.Errorf("config error: 'rate_limit_generate_per_min' must be non-negative")
	}
	switch c.LogMode {
	case "development", "production", "prod", "dev":
	default:
		return fmt.Errorf("config error: unknown log mode %q", c.LogMode)
	}
	switch strings.ToLower(c.ModelTier) {
	case "lite", "standard", "advanced":
	default:
		return fmt.Errorf("config error: unknown model tier %q", c.ModelTier)
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.DatabaseURL == "" && result.SQLitePath == "" {
		result.DatabaseURL = defaults.DatabaseURL
		result.SQLitePath = defaults.SQLitePath
	}
	if result.RedisAddr == "" {
		result.RedisAddr = defaults.RedisAddr
	}
	if result.GeminiAPIKey == "" {
		result.GeminiAPIKey = defaults.GeminiAPIKey
	}
	if result.ModelTier == "" {
		result.ModelTier = defaults.ModelTier
	}
	if result.ListenAddr == "" {
		result.ListenAddr = defaults.ListenAddr
	}
	if result.LogMode == "" {
		result.LogMode = defaults.LogMode
	}
	if len(result.AllowedOrigins) == 0 {
		result.AllowedOrigins = defaults.AllowedOrigins
	}

	// Numeric fields: use default if zero
	if result.GenerationTimeout == 0 {
		result.GenerationTimeout = defaults.GenerationTimeout
	}
	if result.GenerationConcurrency == 0 {
		result.GenerationConcurrency = defaults.GenerationConcurrency
	}
	if result.GenerateRatePerMinute == 0 {
		result.GenerateRatePerMinute = defaults.GenerateRatePerMinute
	}
	if result.CacheTTL == 0 {
		result.CacheTTL = defaults.CacheTTL
	}

	return result
}

// parseDuration accepts Go duration strings and bare seconds.
func parseDuration(s string) (time.Duration, error) {
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}
