// Package llm abstracts the external text-generation service used to draft
// cover letters and free-text answers. The service is treated as unreliable:
// callers must always have a deterministic fallback.
package llm

import "os"

// ModelTier represents the capability level of a model.
type ModelTier string

const (
	// TierLite is for short rewrites and humanization passes.
	TierLite ModelTier = "lite"
	// TierStandard is for drafting cover letters and question answers.
	TierStandard ModelTier = "standard"
)

// Provider represents a text-generation provider.
type Provider string

// ProviderGemini is the Google Gemini provider, the only one wired today.
const ProviderGemini Provider = "gemini"

// Config holds the model configuration.
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
}

// DefaultConfig returns the default Gemini configuration. The standard
// model can be overridden via GEMINI_MODEL.
func DefaultConfig() *Config {
	cfg := &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
		},
	}
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		cfg.Models[TierStandard] = model
	}
	return cfg
}

// GetModel returns the model name for a tier, falling back to the standard
// model when the tier has none configured.
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	return ""
}
