package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/medreport/internal/core/domain"
	"github.com/custodia-labs/medreport/internal/core/ports/driven"
	"github.com/custodia-labs/medreport/internal/core/ports/driving"
	"github.com/custodia-labs/medreport/internal/logger"
)

// Ensure SimplifyService implements the interface.
var _ driving.SimplifyService = (*SimplifyService)(nil)

// SimplifyService rewrites analyses in patient-friendly language.
type SimplifyService struct {
	generator *FallbackGenerator
	prompts   driven.PromptStore
	settings  domain.LLMSettings
}

// NewSimplifyService creates a new simplify service.
func NewSimplifyService(
	generator *FallbackGenerator,
	prompts driven.PromptStore,
	settings domain.LLMSettings,
) *SimplifyService {
	return &SimplifyService{
		generator: generator,
		prompts:   prompts,
		settings:  settings,
	}
}

// Simplify produces a plain-language report from an analysis summary and findings.
func (s *SimplifyService) Simplify(
	ctx context.Context, summary string, findings []domain.Finding, fileID string,
) (*domain.SimplifiedReport, error) {
	logger.Section("Simplification")

	if findings == nil {
		findings = []domain.Finding{}
	}
	findingsJSON, err := json.MarshalIndent(findings, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode findings: %w", err)
	}

	system, err := s.prompts.Load(driven.PromptSimplifySystem)
	if err != nil {
		return nil, fmt.Errorf("load prompt: %w", err)
	}
	userTmpl, err := s.prompts.Load(driven.PromptSimplifyUser)
	if err != nil {
		return nil, fmt.Errorf("load prompt: %w", err)
	}

	raw, err := s.generator.Generate(ctx, GenerationRequest{
		Model:     s.settings.Model,
		Fallbacks: s.settings.FallbackModels,
		Prompt: driven.Prompt{
			System: system,
			User:   fmt.Sprintf(userTmpl, summary, findingsJSON),
		},
		Options: driven.GenerateOptions{
			Temperature: s.settings.Temperature,
			JSON:        true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("simplify: %w", err)
	}

	payload, err := ParseModelResponse(raw)
	if err != nil {
		logger.Warn("Unparseable simplify response (%d bytes)", len(raw))
		return nil, err
	}

	report := BuildSimplifiedReport(payload, fileID, summary)
	logger.Info("Simplified %s: %d abnormalities, %d questions",
		fileID, len(report.Abnormalities), len(report.FollowupQuestions))
	return report, nil
}
