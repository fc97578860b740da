package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.NotEmpty(t, cfg.Models[TierLite])
	assert.NotEmpty(t, cfg.Models[TierStandard])
}

func TestDefaultConfig_ModelOverride(t *testing.T) {
	t.Setenv("GEMINI_MODEL", "gemini-exp")

	cfg := DefaultConfig()
	assert.Equal(t, "gemini-exp", cfg.GetModel(TierStandard))
	// Lite tier is unaffected by the override.
	assert.NotEqual(t, "gemini-exp", cfg.GetModel(TierLite))
}

func TestGetModel_FallsBackToStandard(t *testing.T) {
	cfg := &Config{
		Provider: ProviderGemini,
		Models:   map[ModelTier]string{TierStandard: "gemini-2.5-flash"},
	}

	assert.Equal(t, "gemini-2.5-flash", cfg.GetModel(TierLite))
	assert.Equal(t, "gemini-2.5-flash", cfg.GetModel(ModelTier("unknown")))
}

func TestGetModel_Empty(t *testing.T) {
	cfg := &Config{Provider: ProviderGemini, Models: map[ModelTier]string{}}
	assert.Equal(t, "", cfg.GetModel(TierStandard))
}

func TestNewGeminiClient_RequiresAPIKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), DefaultConfig(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}
