package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/medreport/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/medreport/internal/core/domain"
)

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	settings, err := service.Get()
	require.NoError(t, err)

	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Analysis.Provider, settings.Analysis.Provider)
	assert.Equal(t, defaults.Analysis.Model, settings.Analysis.Model)
	assert.Equal(t, defaults.Analysis.FallbackModels, settings.Analysis.FallbackModels)
	assert.Equal(t, defaults.Analysis.FallbackVisionModels, settings.Analysis.FallbackVisionModels)
	assert.InDelta(t, defaults.Analysis.Temperature, settings.Analysis.Temperature, 1e-9)
	assert.Equal(t, defaults.Simplify.Provider, settings.Simplify.Provider)
	assert.Equal(t, defaults.Retry, settings.Retry)
	assert.Equal(t, defaults.Upload, settings.Upload)
	assert.Equal(t, defaults.References, settings.References)
	assert.Empty(t, settings.Analysis.APIKey)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		"analysis.model":            "gemini-1.5-pro",
		"analysis.fallback_models":  []any{"gemini-1.5-flash"},
		"analysis.temperature":      0.0,
		"simplify.provider":         "anthropic",
		"simplify.model":            "claude-3-5-haiku-latest",
		"embedding.provider":        "openai",
		"embedding.model":           "text-embedding-3-large",
		"retry.max_retries":         5,
		"retry.backoff_seconds":     0.5,
		"upload.max_file_size_mb":   20,
		"upload.allowed_extensions": []string{"pdf"},
		"references.enabled":        false,
		"references.top_k":          7,
	})
	service := NewSettingsService(store, nil)

	settings, err := service.Get()
	require.NoError(t, err)

	assert.Equal(t, "gemini-1.5-pro", settings.Analysis.Model)
	assert.Equal(t, []string{"gemini-1.5-flash"}, settings.Analysis.FallbackModels)
	assert.Zero(t, settings.Analysis.Temperature)
	assert.Equal(t, domain.AIProviderAnthropic, settings.Simplify.Provider)
	assert.Equal(t, "claude-3-5-haiku-latest", settings.Simplify.Model)
	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-large", settings.Embedding.Model)
	assert.Equal(t, 5, settings.Retry.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, settings.Retry.BackoffStep)
	assert.Equal(t, 20, settings.Upload.MaxFileSizeMB)
	assert.Equal(t, []string{"pdf"}, settings.Upload.AllowedExtensions)
	assert.False(t, settings.References.Enabled)
	assert.Equal(t, 7, settings.References.TopK)
}

func TestSettingsService_Get_InvalidProviderReturnsDefault(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{"analysis.provider": "skynet"})
	service := NewSettingsService(store, nil)

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAppSettings().Analysis.Provider, settings.Analysis.Provider)
}

func TestSettingsService_Get_NonDefaultProviderHasNoDefaultFallbacks(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{"analysis.provider": "ollama"})
	service := NewSettingsService(store, nil)

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Nil(t, settings.Analysis.FallbackModels)
	assert.Nil(t, settings.Analysis.FallbackVisionModels)
}

func TestSettingsService_Get_ProviderKeyFallback(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		"keys.gemini":      "env-gemini",
		"keys.openai":      "env-openai",
		"simplify.api_key": "stored-openai",
	})
	service := NewSettingsService(store, nil)

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "env-gemini", settings.Analysis.APIKey)
	assert.Equal(t, "stored-openai", settings.Simplify.APIKey)
}

func TestSettingsService_SaveRoundTrip(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	settings := domain.DefaultAppSettings()
	settings.Analysis.Model = "gemini-1.5-pro"
	settings.Analysis.APIKey = "secret"
	settings.Retry.BackoffStep = 2 * time.Second
	settings.Upload.Dir = "/tmp/reports"
	settings.References.TopK = 5

	require.NoError(t, service.Save(&settings))

	loaded, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "gemini-1.5-pro", loaded.Analysis.Model)
	assert.Equal(t, "secret", loaded.Analysis.APIKey)
	assert.Equal(t, 2*time.Second, loaded.Retry.BackoffStep)
	assert.Equal(t, "/tmp/reports", loaded.Upload.Dir)
	assert.Equal(t, 5, loaded.References.TopK)

	_, stored := store.Get("simplify.api_key")
	assert.False(t, stored, "empty keys are not written")
}

func TestSettingsService_SetAnalysisProvider(t *testing.T) {
	t.Run("switching provider clears fallbacks", func(t *testing.T) {
		service := NewSettingsService(memory.NewConfigStore(), nil)

		require.NoError(t, service.SetAnalysisProvider(domain.AIProviderOllama, "", ""))

		settings, err := service.Get()
		require.NoError(t, err)
		assert.Equal(t, domain.AIProviderOllama, settings.Analysis.Provider)
		assert.Equal(t, domain.DefaultLLMModels()[domain.AIProviderOllama], settings.Analysis.Model)
		assert.Equal(t, "http://localhost:11434", settings.Analysis.BaseURL)
		assert.Empty(t, settings.Analysis.FallbackModels)
		assert.Empty(t, settings.Analysis.FallbackVisionModels)
		assert.Empty(t, settings.Analysis.VisionModel)
	})

	t.Run("api key required", func(t *testing.T) {
		service := NewSettingsService(memory.NewConfigStore(), nil)

		err := service.SetAnalysisProvider(domain.AIProviderOpenAI, "gpt-4o", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "API key required")
	})

	t.Run("environment key satisfies requirement", func(t *testing.T) {
		service := NewSettingsService(memory.NewConfigStore(map[string]any{"keys.openai": "sk-env"}), nil)

		require.NoError(t, service.SetAnalysisProvider(domain.AIProviderOpenAI, "gpt-4o", ""))

		settings, err := service.Get()
		require.NoError(t, err)
		assert.Equal(t, "gpt-4o", settings.Analysis.Model)
		assert.Equal(t, "sk-env", settings.Analysis.APIKey)
		assert.Empty(t, settings.Analysis.BaseURL)
	})

	t.Run("invalid provider", func(t *testing.T) {
		service := NewSettingsService(memory.NewConfigStore(), nil)
		assert.Error(t, service.SetAnalysisProvider("skynet", "", ""))
	})
}

func TestSettingsService_SetSimplifyProvider(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	require.NoError(t, service.SetSimplifyProvider(domain.AIProviderAnthropic, "claude-3-5-haiku-latest", "sk-ant"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderAnthropic, settings.Simplify.Provider)
	assert.Equal(t, "sk-ant", settings.Simplify.APIKey)
	assert.Equal(t, domain.DefaultAppSettings().Analysis.Provider, settings.Analysis.Provider)
}

func TestSettingsService_SetEmbeddingProvider(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOllama, "", ""))
	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, settings.Embedding.Provider)
	assert.Equal(t, domain.DefaultEmbeddingModels()[domain.AIProviderOllama], settings.Embedding.Model)
	assert.True(t, settings.Embedding.IsConfigured())

	err = service.SetEmbeddingProvider(domain.AIProviderGemini, "", "key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not support embeddings")
}

func TestSettingsService_Validate(t *testing.T) {
	t.Run("missing keys", func(t *testing.T) {
		service := NewSettingsService(memory.NewConfigStore(), nil)
		err := service.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "analysis provider")
	})

	t.Run("configured", func(t *testing.T) {
		store := memory.NewConfigStore(map[string]any{"keys.gemini": "g", "keys.openai": "o"})
		assert.NoError(t, NewSettingsService(store, nil).Validate())
	})

	t.Run("simplify missing", func(t *testing.T) {
		store := memory.NewConfigStore(map[string]any{"keys.gemini": "g"})
		err := NewSettingsService(store, nil).Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simplify provider")
	})

	t.Run("empty extensions", func(t *testing.T) {
		store := memory.NewConfigStore(map[string]any{
			"keys.gemini":               "g",
			"keys.openai":               "o",
			"upload.allowed_extensions": []string{},
		})
		err := NewSettingsService(store, nil).Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "allowed_extensions")
	})

	t.Run("references need embedding key", func(t *testing.T) {
		store := memory.NewConfigStore(map[string]any{
			"keys.gemini":        "g",
			"simplify.provider":  "ollama",
			"embedding.provider": "openai",
		})
		err := NewSettingsService(store, nil).Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "embedding provider")
	})
}

func TestSettingsService_ValidateConfig(t *testing.T) {
	t.Run("no validator", func(t *testing.T) {
		service := NewSettingsService(memory.NewConfigStore(), nil)
		assert.NoError(t, service.ValidateAnalysisConfig())
		assert.NoError(t, service.ValidateEmbeddingConfig())
	})

	t.Run("delegates to validator", func(t *testing.T) {
		validator := &mockValidator{err: errors.New("connection refused")}
		service := NewSettingsService(memory.NewConfigStore(), validator)

		assert.Error(t, service.ValidateAnalysisConfig())
		assert.Error(t, service.ValidateEmbeddingConfig())
		assert.Equal(t, 1, validator.llmCalls)
		assert.Equal(t, 1, validator.embedCall)
	})
}

func TestSettingsService_GetDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)
	assert.Equal(t, domain.DefaultAppSettings(), service.GetDefaults())
}

func TestSettingsService_Get_NonDefaultProviderModel(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{"simplify.provider": "anthropic"})
	service := NewSettingsService(store, nil)

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultLLMModels()[domain.AIProviderAnthropic], settings.Simplify.Model)
	assert.Empty(t, settings.Simplify.VisionModel)
}
