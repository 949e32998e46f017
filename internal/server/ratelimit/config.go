package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultGeneratePerMinute is the generation allowance of one reader.
const DefaultGeneratePerMinute = 20

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Path pattern; a "*" segment matches any single segment
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// LoadConfig loads rate limiting configuration from environment variables.
// generatePerMinute bounds the endpoints that call the model; zero or less
// selects DefaultGeneratePerMinute.
func LoadConfig(generatePerMinute int) *Config {
	enabled := getEnvBool("RATE_LIMIT_ENABLED", true)
	if !enabled {
		return &Config{
			Enabled: false,
		}
	}

	return &Config{
		Enabled:         enabled,
		DefaultLimit:    getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", 600),
		DefaultWindow:   getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Whitelist:       parseList(getEnvString("RATE_LIMIT_WHITELIST", "")),
		Blacklist:       parseList(getEnvString("RATE_LIMIT_BLACKLIST", "")),
		EndpointConfigs: DefaultEndpointConfigs(generatePerMinute),
	}
}

// DefaultEndpointConfigs returns the endpoint-specific limits. Every route that
// can reach the model shares the per-minute generation allowance.
func DefaultEndpointConfigs(generatePerMinute int) []EndpointConfig {
	if generatePerMinute <= 0 {
		generatePerMinute = DefaultGeneratePerMinute
	}
	burst := generatePerMinute / 4
	if burst < 1 {
		burst = 1
	}
	return []EndpointConfig{
		// Generation: strictest limits
		{Path: "/documents/*/transformations", Method: "POST", Limit: generatePerMinute, Window: time.Minute, Burst: burst},
		{Path: "/documents", Method: "POST", Limit: generatePerMinute, Window: time.Minute, Burst: burst},
		{Path: "/profile/assessment", Method: "POST", Limit: generatePerMinute, Window: time.Minute, Burst: burst},

		// Credentials
		{Path: "/readers", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},
		{Path: "/auth/token", Method: "POST", Limit: 30, Window: time.Minute, Burst: 10},

		// Reads and collapse fall back to the default limit; /health is unlimited
	}
}

// getEnvString gets an environment variable as a string with a default value.
func getEnvString(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as an integer with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets an environment variable as a boolean with a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration gets an environment variable as a duration with a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// parseList parses a comma-separated list of client IDs (IPs or reader IDs).
func parseList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			result[item] = true
		}
	}
	return result
}
