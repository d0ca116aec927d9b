package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestAIProvider_IsValid tests all valid and invalid providers
func TestAIProvider_IsValid(t *testing.T) {
	for _, p := range AllLLMProviders() {
		assert.True(t, p.IsValid(), p.String())
	}
	assert.False(t, AIProvider("").IsValid())
	assert.False(t, AIProvider("cohere").IsValid())
}

// TestAIProvider_RequiresAPIKey tests API key requirements
func TestAIProvider_RequiresAPIKey(t *testing.T) {
	assert.True(t, AIProviderOpenAI.RequiresAPIKey())
	assert.True(t, AIProviderAnthropic.RequiresAPIKey())
	assert.True(t, AIProviderGemini.RequiresAPIKey())
	assert.False(t, AIProviderOllama.RequiresAPIKey())
	assert.True(t, AIProviderOllama.IsLocal())
}

// TestAIProvider_Description tests human-readable names
func TestAIProvider_Description(t *testing.T) {
	assert.Equal(t, "Google Gemini (cloud)", AIProviderGemini.Description())
	assert.Equal(t, unknownDescription, AIProvider("x").Description())
}

// TestLLMSettings_IsConfigured tests LLM configuration checks
func TestLLMSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings LLMSettings
		expected bool
	}{
		{"empty", LLMSettings{}, false},
		{"gemini without key", LLMSettings{Provider: AIProviderGemini}, false},
		{"gemini with key", LLMSettings{Provider: AIProviderGemini, APIKey: "k"}, true},
		{"ollama without key", LLMSettings{Provider: AIProviderOllama}, true},
		{"unknown provider", LLMSettings{Provider: "x", APIKey: "k"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.settings.IsConfigured())
		})
	}
}

// TestLLMSettings_EffectiveVisionModel tests vision model fallback
func TestLLMSettings_EffectiveVisionModel(t *testing.T) {
	assert.Equal(t, "a", LLMSettings{Model: "a"}.EffectiveVisionModel())
	assert.Equal(t, "v", LLMSettings{Model: "a", VisionModel: "v"}.EffectiveVisionModel())
}

// TestEmbeddingSettings_IsConfigured tests embedding configuration checks
func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	assert.False(t, EmbeddingSettings{}.IsConfigured())
	assert.True(t, EmbeddingSettings{Provider: AIProviderOllama}.IsConfigured())
	assert.False(t, EmbeddingSettings{Provider: AIProviderOpenAI}.IsConfigured())
	assert.True(t, EmbeddingSettings{Provider: AIProviderOpenAI, APIKey: "k"}.IsConfigured())
	assert.False(t, EmbeddingSettings{Provider: AIProviderGemini, APIKey: "k"}.IsConfigured())
}

// TestUploadSettings tests size and extension helpers
func TestUploadSettings(t *testing.T) {
	u := UploadSettings{MaxFileSizeMB: 10, AllowedExtensions: []string{"pdf", "txt"}}
	assert.Equal(t, int64(10*1024*1024), u.MaxFileSizeBytes())
	assert.True(t, u.IsAllowed("pdf"))
	assert.False(t, u.IsAllowed("exe"))
}

// TestDefaultAppSettings tests defaults
func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, AIProviderGemini, s.Analysis.Provider)
	assert.Equal(t, "gemini-2.0-flash", s.Analysis.Model)
	assert.NotEmpty(t, s.Analysis.FallbackModels)
	assert.Equal(t, 0.1, s.Analysis.Temperature)
	assert.Equal(t, AIProviderOpenAI, s.Simplify.Provider)
	assert.Equal(t, 0.3, s.Simplify.Temperature)
	assert.Equal(t, 3, s.Retry.MaxRetries)
	assert.Equal(t, 3*time.Second, s.Retry.BackoffStep)
	assert.Equal(t, 10, s.Upload.MaxFileSizeMB)
	assert.Equal(t, []string{"pdf", "png", "jpg", "jpeg", "txt"}, s.Upload.AllowedExtensions)
	assert.Equal(t, 3, s.References.TopK)
	assert.False(t, s.Embedding.IsConfigured())
}
