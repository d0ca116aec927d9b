package driving

import "github.com/custodia-labs/medreport/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetAnalysisProvider configures the model used to analyse reports.
	SetAnalysisProvider(provider domain.AIProvider, model, apiKey string) error

	// SetSimplifyProvider configures the model used to simplify analyses.
	SetSimplifyProvider(provider domain.AIProvider, model, apiKey string) error

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// Validate checks that the current settings are usable.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
	ValidateEmbeddingConfig() error

	// ValidateAnalysisConfig validates the analysis LLM configuration by pinging the provider.
	ValidateAnalysisConfig() error
}
