// Package llm provides the model configuration and the client abstraction used
// to generate rewritten text and reading-assessment profiles.
package llm

import (
	"fmt"
	"strings"
)

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for simple tasks: classification and short JSON answers
	TierLite ModelTier = "lite"
	// TierStandard is for moderate work: rewriting a document in one style
	TierStandard ModelTier = "standard"
	// TierAdvanced is for the hardest rewrites
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider, the only one implemented.
const ProviderGemini Provider = "gemini"

// DefaultTemperature keeps rewrites close to the source.
const DefaultTemperature float32 = 0.2

// Config holds the model configuration for the application
type Config struct {
	Provider    Provider
	Models      map[ModelTier]string
	Temperature float32
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperature: DefaultTemperature,
	}
}

// ParseTier parses a tier name, case-insensitively.
func ParseTier(s string) (ModelTier, error) {
	switch tier := ModelTier(strings.ToLower(strings.TrimSpace(s))); tier {
	case TierLite, TierStandard, TierAdvanced:
		return tier, nil
	case "":
		return TierStandard, nil
	default:
		return "", fmt.Errorf("unknown model tier %q", s)
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

