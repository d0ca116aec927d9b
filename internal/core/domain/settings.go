package domain

import (
	"slices"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGemini is Google's Gemini API.
	AIProviderGemini AIProvider = "gemini"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderGemini:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderGemini
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !slices.Contains(AllEmbeddingProviders(), e.Provider) {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds configuration for one LLM role (analysis or simplify).
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the preferred text model.
	Model string

	// VisionModel is the preferred model for image reports.
	// Empty means Model is used.
	VisionModel string

	// FallbackModels are tried in order once Model is rate limited.
	FallbackModels []string

	// FallbackVisionModels are tried in order once VisionModel is rate limited.
	FallbackVisionModels []string

	// BaseURL is the API endpoint override.
	BaseURL string

	// APIKey is the API key (for cloud providers).
	APIKey string

	// Temperature is the sampling temperature sent with each request.
	Temperature float64
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// EffectiveVisionModel returns the vision model, falling back to Model.
func (l LLMSettings) EffectiveVisionModel() string {
	if l.VisionModel != "" {
		return l.VisionModel
	}
	return l.Model
}

// RetrySettings controls rate-limit retries within the fallback loop.
type RetrySettings struct {
	// MaxRetries is the number of attempts per model.
	MaxRetries int

	// BackoffStep is multiplied by the attempt number to get the wait
	// before the next attempt.
	BackoffStep time.Duration
}

// UploadSettings controls where and what may be uploaded.
type UploadSettings struct {
	// Dir is the directory uploaded reports are stored in.
	Dir string

	// MaxFileSizeMB is the upload size limit in megabytes.
	MaxFileSizeMB int

	// AllowedExtensions lists accepted extensions without the dot.
	AllowedExtensions []string
}

// MaxFileSizeBytes returns the size limit in bytes.
func (u UploadSettings) MaxFileSizeBytes() int64 {
	return int64(u.MaxFileSizeMB) * 1024 * 1024
}

// IsAllowed reports whether ext (without the dot) may be uploaded.
func (u UploadSettings) IsAllowed(ext string) bool {
	return slices.Contains(u.AllowedExtensions, ext)
}

// ReferenceSettings controls reference retrieval for analysis.
type ReferenceSettings struct {
	// Enabled turns retrieval on when an embedding provider is configured.
	Enabled bool

	// DocsDir holds the markdown reference documents to ingest.
	DocsDir string

	// TopK is the number of snippets attached to an analysis.
	TopK int
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Analysis configures the model that reads reports.
	Analysis LLMSettings

	// Simplify configures the model that writes the patient summary.
	Simplify LLMSettings

	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// Retry holds rate-limit retry settings.
	Retry RetrySettings

	// Upload holds upload settings.
	Upload UploadSettings

	// References holds reference retrieval settings.
	References ReferenceSettings
}

// Default retry behaviour.
const (
	DefaultMaxRetries  = 3
	DefaultBackoffStep = 3 * time.Second
)

// DefaultAppSettings returns settings with sensible defaults.
// API keys are never defaulted; they come from the config file or environment.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Analysis: LLMSettings{
			Provider:             AIProviderGemini,
			Model:                "gemini-2.0-flash",
			VisionModel:          "gemini-2.0-flash",
			FallbackModels:       []string{"gemini-2.0-flash-lite", "gemini-1.5-flash", "gemini-1.5-flash-8b"},
			FallbackVisionModels: []string{"gemini-1.5-flash", "gemini-1.5-pro"},
			Temperature:          0.1,
		},
		Simplify: LLMSettings{
			Provider:    AIProviderOpenAI,
			Model:       "gpt-4o-mini",
			Temperature: 0.3,
		},
		// Embedding is left unconfigured; references stay off until it is set.
		Embedding: EmbeddingSettings{},
		Retry: RetrySettings{
			MaxRetries:  DefaultMaxRetries,
			BackoffStep: DefaultBackoffStep,
		},
		Upload: UploadSettings{
			Dir:               "uploads",
			MaxFileSizeMB:     10,
			AllowedExtensions: []string{"pdf", "png", "jpg", "jpeg", "txt"},
		},
		References: ReferenceSettings{
			Enabled: true,
			DocsDir: "medical_docs",
			TopK:    3,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderGemini,
		AIProviderOpenAI,
		AIProviderAnthropic,
		AIProviderOllama,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
// Every default here also accepts image input.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGemini:    "gemini-2.0-flash",
		AIProviderOllama:    "llama3.2-vision",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// ChunkingConfig configures how reference documents are split before embedding.
type ChunkingConfig struct {
	// ChunkSize is the target chunk length in characters.
	ChunkSize int

	// Overlap is the number of characters shared between neighbouring chunks.
	Overlap int
}

// DefaultChunkingConfig returns the chunking used for reference ingestion.
func DefaultChunkingConfig() ChunkingConfig {
	return ChunkingConfig{
		ChunkSize: 1000,
		Overlap:   200,
	}
}
