// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/custodia-labs/medreport/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/medreport/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/medreport/internal/adapters/driven/llm/anthropic"
	geminillm "github.com/custodia-labs/medreport/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/custodia-labs/medreport/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/medreport/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/medreport/internal/core/domain"
	"github.com/custodia-labs/medreport/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the AI services built from application settings.
type InitResult struct {
	AnalysisLLM      driven.LLMService
	SimplifyLLM      driven.LLMService
	EmbeddingService driven.EmbeddingService
	Warnings         []string // Non-fatal issues; the affected feature is disabled.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.AnalysisLLM != nil {
		r.AnalysisLLM.Close()
	}
	if r.SimplifyLLM != nil {
		r.SimplifyLLM.Close()
	}
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
}

// Init builds every AI service the settings describe.
// Unconfigured or failing services are left nil with a warning so that the
// remaining features keep working. Connectivity is not checked here.
func Init(ctx context.Context, settings *domain.AppSettings) *InitResult {
	result := &InitResult{}

	analysis, err := CreateLLMService(ctx, &settings.Analysis)
	switch {
	case err != nil:
		result.Warnings = append(result.Warnings, fmt.Sprintf("analysis model: %v", err))
	case analysis == nil:
		result.Warnings = append(result.Warnings,
			"analysis model not configured. Run 'medreport settings analysis' to fix")
	default:
		result.AnalysisLLM = analysis
	}

	simplify, err := CreateLLMService(ctx, &settings.Simplify)
	switch {
	case err != nil:
		result.Warnings = append(result.Warnings, fmt.Sprintf("simplify model: %v", err))
	case simplify == nil:
		result.Warnings = append(result.Warnings,
			"simplify model not configured. Run 'medreport settings simplify' to fix")
	default:
		result.SimplifyLLM = simplify
	}

	embedding, err := CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("embedding: %v", err))
	}
	result.EmbeddingService = embedding

	return result
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateEmbeddingService(
	ctx context.Context, settings *domain.EmbeddingSettings,
) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'medreport settings embedding' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'medreport settings embedding' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}
	return svc, nil
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
func ValidateEmbeddingConfig(ctx context.Context, settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// ValidateLLMConfig validates an LLM configuration by creating a service and pinging it.
func ValidateLLMConfig(ctx context.Context, settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(ctx, settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateEmbeddingService builds the embedding adapter for settings.
// It returns nil, nil when no provider is configured, and an error for
// providers that have no embedding API.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, nil
	}
	if settings.Provider == domain.AIProviderAnthropic || settings.Provider == domain.AIProviderGemini {
		return nil, fmt.Errorf("%s does not support embeddings, use ollama or openai", settings.Provider)
	}
	if !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil
	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
	}
	return nil, fmt.Errorf("%w: embedding provider %s", domain.ErrUnsupportedType, settings.Provider)
}

// CreateLLMService builds the chat adapter for settings, or nil, nil when
// the role is not configured.
func CreateLLMService(_ context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	key, url, model := settings.APIKey, settings.BaseURL, settings.Model
	switch settings.Provider {
	case domain.AIProviderGemini:
		return geminillm.NewLLMService(geminillm.Config{APIKey: key, BaseURL: url, Model: model})
	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{APIKey: key, BaseURL: url, Model: model})
	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{APIKey: key, BaseURL: url, Model: model})
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{BaseURL: url, Model: model}), nil
	}
	return nil, fmt.Errorf("%w: LLM provider %s", domain.ErrUnsupportedType, settings.Provider)
}
