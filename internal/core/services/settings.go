package services

import (
	"fmt"
	"slices"
	"time"

	"github.com/custodia-labs/medreport/internal/core/domain"
	"github.com/custodia-labs/medreport/internal/core/ports/driven"
	"github.com/custodia-labs/medreport/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config sections for the two LLM roles.
const (
	sectionAnalysis = "analysis"
	sectionSimplify = "simplify"
)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider      = "embedding.provider"
	keyEmbedModel         = "embedding.model"
	keyEmbedBaseURL       = "embedding.base_url"
	keyEmbedAPIKey        = "embedding.api_key"
	keyRetryMax           = "retry.max_retries"
	keyRetryBackoff       = "retry.backoff_seconds"
	keyUploadDir          = "upload.dir"
	keyUploadMaxMB        = "upload.max_file_size_mb"
	keyUploadExtensions   = "upload.allowed_extensions"
	keyReferencesEnabled  = "references.enabled"
	keyReferencesDocsDir  = "references.docs_dir"
	keyReferencesTopK     = "references.top_k"
	keyProviderKeysPrefix = "keys."
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	embedProvider := s.getProvider(keyEmbedProvider, defaults.Embedding.Provider)
	settings := &domain.AppSettings{
		Analysis: s.getLLM(sectionAnalysis, defaults.Analysis),
		Simplify: s.getLLM(sectionSimplify, defaults.Simplify),
		Embedding: domain.EmbeddingSettings{
			Provider: embedProvider,
			Model:    s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:   s.apiKey(keyEmbedAPIKey, embedProvider),
		},
		Retry: domain.RetrySettings{
			MaxRetries:  s.getInt(keyRetryMax, defaults.Retry.MaxRetries),
			BackoffStep: s.getSeconds(keyRetryBackoff, defaults.Retry.BackoffStep),
		},
		Upload: domain.UploadSettings{
			Dir:               s.getString(keyUploadDir, defaults.Upload.Dir),
			MaxFileSizeMB:     s.getInt(keyUploadMaxMB, defaults.Upload.MaxFileSizeMB),
			AllowedExtensions: s.getStrings(keyUploadExtensions, defaults.Upload.AllowedExtensions),
		},
		References: domain.ReferenceSettings{
			Enabled: s.getBool(keyReferencesEnabled, defaults.References.Enabled),
			DocsDir: s.getString(keyReferencesDocsDir, defaults.References.DocsDir),
			TopK:    s.getInt(keyReferencesTopK, defaults.References.TopK),
		},
	}

	return settings, nil
}

// Save persists application settings.
// Empty API keys are not written so environment keys are never shadowed.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := s.saveLLM(sectionAnalysis, settings.Analysis); err != nil {
		return err
	}
	if err := s.saveLLM(sectionSimplify, settings.Simplify); err != nil {
		return err
	}

	values := []struct {
		key   string
		value any
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyRetryMax, settings.Retry.MaxRetries},
		{keyRetryBackoff, settings.Retry.BackoffStep.Seconds()},
		{keyUploadDir, settings.Upload.Dir},
		{keyUploadMaxMB, settings.Upload.MaxFileSizeMB},
		{keyUploadExtensions, settings.Upload.AllowedExtensions},
		{keyReferencesEnabled, settings.References.Enabled},
		{keyReferencesDocsDir, settings.References.DocsDir},
		{keyReferencesTopK, settings.References.TopK},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}

	return nil
}

func (s *SettingsService) saveLLM(section string, llm domain.LLMSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{section + ".provider", llm.Provider.String()},
		{section + ".model", llm.Model},
		{section + ".vision_model", llm.VisionModel},
		{section + ".fallback_models", nonNil(llm.FallbackModels)},
		{section + ".fallback_vision_models", nonNil(llm.FallbackVisionModels)},
		{section + ".base_url", llm.BaseURL},
		{section + ".temperature", llm.Temperature},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if llm.APIKey != "" {
		if err := s.configStore.Set(section+".api_key", llm.APIKey); err != nil {
			return fmt.Errorf("save %s api_key: %w", section, err)
		}
	}
	return nil
}

// SetAnalysisProvider configures the model used to analyse reports.
func (s *SettingsService) SetAnalysisProvider(provider domain.AIProvider, model, apiKey string) error {
	return s.setLLMProvider(sectionAnalysis, provider, model, apiKey)
}

// SetSimplifyProvider configures the model used to simplify analyses.
func (s *SettingsService) SetSimplifyProvider(provider domain.AIProvider, model, apiKey string) error {
	return s.setLLMProvider(sectionSimplify, provider, model, apiKey)
}

func (s *SettingsService) setLLMProvider(section string, provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	// Validate API key if required, allowing keys supplied by the environment
	if provider.RequiresAPIKey() && apiKey == "" && s.providerKey(provider) == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	llm := &settings.Analysis
	if section == sectionSimplify {
		llm = &settings.Simplify
	}

	if llm.Provider != provider {
		// Fallback lists name models of the previous provider
		llm.FallbackModels = nil
		llm.FallbackVisionModels = nil
		llm.VisionModel = ""
	}
	llm.Provider = provider

	// Set model - use provided or default
	if model != "" {
		llm.Model = model
	} else if defaultModel, ok := domain.DefaultLLMModels()[provider]; ok {
		llm.Model = defaultModel
	}

	// Set base URL based on provider type
	if provider.IsLocal() {
		if llm.BaseURL == "" {
			llm.BaseURL = "http://localhost:11434"
		}
	} else {
		llm.BaseURL = ""
	}

	llm.APIKey = apiKey

	return s.Save(settings)
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" && s.providerKey(provider) == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider

	if model != "" {
		settings.Embedding.Model = model
	} else if defaultModel, ok := domain.DefaultEmbeddingModels()[provider]; ok {
		settings.Embedding.Model = defaultModel
	}

	if provider.IsLocal() {
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = "http://localhost:11434"
		}
	} else {
		settings.Embedding.BaseURL = ""
	}

	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks that the current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Analysis.IsConfigured() {
		return fmt.Errorf("analysis provider %q is not configured (missing API key?)", settings.Analysis.Provider)
	}
	if !settings.Simplify.IsConfigured() {
		return fmt.Errorf("simplify provider %q is not configured (missing API key?)", settings.Simplify.Provider)
	}
	if settings.Retry.MaxRetries <= 0 {
		return fmt.Errorf("retry.max_retries must be positive, got %d", settings.Retry.MaxRetries)
	}
	if settings.Upload.MaxFileSizeMB <= 0 {
		return fmt.Errorf("upload.max_file_size_mb must be positive, got %d", settings.Upload.MaxFileSizeMB)
	}
	if len(settings.Upload.AllowedExtensions) == 0 {
		return fmt.Errorf("upload.allowed_extensions must not be empty")
	}
	if settings.References.Enabled && settings.Embedding.Provider != "" && !settings.Embedding.IsConfigured() {
		return fmt.Errorf("references require embedding provider %q to be configured", settings.Embedding.Provider)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateAnalysisConfig validates the analysis LLM configuration by pinging the provider.
func (s *SettingsService) ValidateAnalysisConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.Analysis)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getLLM(section string, defaults domain.LLMSettings) domain.LLMSettings {
	provider := s.getProvider(section+".provider", defaults.Provider)

	// Default model lists only make sense for the default provider
	model := defaults.Model
	visionModel, fallbacks, vision := defaults.VisionModel, defaults.FallbackModels, defaults.FallbackVisionModels
	if provider != defaults.Provider {
		model = domain.DefaultLLMModels()[provider]
		visionModel, fallbacks, vision = "", nil, nil
	}

	llm := domain.LLMSettings{
		Provider:    provider,
		Model:       s.getString(section+".model", model),
		VisionModel: s.getString(section+".vision_model", visionModel),
		BaseURL:     s.configStore.GetString(section + ".base_url"),
		APIKey:      s.apiKey(section+".api_key", provider),
		Temperature: s.getFloat(section+".temperature", defaults.Temperature),
	}

	llm.FallbackModels = s.getStrings(section+".fallback_models", fallbacks)
	llm.FallbackVisionModels = s.getStrings(section+".fallback_vision_models", vision)

	return llm
}

// apiKey returns the key stored under key, or the provider-wide key.
func (s *SettingsService) apiKey(key string, provider domain.AIProvider) string {
	if v := s.configStore.GetString(key); v != "" {
		return v
	}
	return s.providerKey(provider)
}

func (s *SettingsService) providerKey(provider domain.AIProvider) string {
	return s.configStore.GetString(keyProviderKeysPrefix + provider.String())
}

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getSeconds(key string, defaultVal time.Duration) time.Duration {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	secs := s.configStore.GetFloat(key)
	if secs <= 0 {
		return defaultVal
	}
	return time.Duration(secs * float64(time.Second))
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getStrings(key string, defaultVal []string) []string {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return nonNil(s.configStore.GetStringSlice(key))
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
