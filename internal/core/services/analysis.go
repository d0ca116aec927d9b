package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/medreport/internal/core/domain"
	"github.com/custodia-labs/medreport/internal/core/ports/driven"
	"github.com/custodia-labs/medreport/internal/core/ports/driving"
	"github.com/custodia-labs/medreport/internal/logger"
)

// Ensure AnalysisService implements the interface.
var _ driving.AnalysisService = (*AnalysisService)(nil)

// AnalysisService extracts structured findings from medical reports.
type AnalysisService struct {
	generator   *FallbackGenerator
	prompts     driven.PromptStore
	settings    domain.LLMSettings
	fileStore   driven.FileStore
	normalisers driven.NormaliserRegistry
	references  driving.ReferenceService
}

// NewAnalysisService creates a new analysis service.
// The generator and prompt store are required.
func NewAnalysisService(
	generator *FallbackGenerator,
	prompts driven.PromptStore,
	settings domain.LLMSettings,
) *AnalysisService {
	return &AnalysisService{
		generator: generator,
		prompts:   prompts,
		settings:  settings,
	}
}

// SetFileStore sets the store uploaded reports are read from.
// Required for AnalyzeFile.
func (s *AnalysisService) SetFileStore(store driven.FileStore) {
	s.fileStore = store
}

// SetNormalisers sets the registry used to extract text in AnalyzeFile.
func (s *AnalysisService) SetNormalisers(registry driven.NormaliserRegistry) {
	s.normalisers = registry
}

// SetReferenceService enables reference context on text analyses.
// Nil disables it.
func (s *AnalysisService) SetReferenceService(refs driving.ReferenceService) {
	s.references = refs
}

// AnalyzeText analyses extracted report text.
func (s *AnalysisService) AnalyzeText(ctx context.Context, text, fileID string) (*domain.AnalysisResult, error) {
	logger.Section("Text Analysis")
	start := time.Now()

	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("analyse %s: %w", fileID, domain.ErrNoText)
	}

	system, err := s.prompts.Load(driven.PromptTextAnalysisSystem)
	if err != nil {
		return nil, fmt.Errorf("load prompt: %w", err)
	}
	userTmpl, err := s.prompts.Load(driven.PromptTextAnalysisUser)
	if err != nil {
		return nil, fmt.Errorf("load prompt: %w", err)
	}

	raw, err := s.generator.Generate(ctx, GenerationRequest{
		Model:     s.settings.Model,
		Fallbacks: s.settings.FallbackModels,
		Prompt: driven.Prompt{
			System: system,
			User:   fmt.Sprintf(userTmpl, text),
		},
		Options: s.options(),
	})
	if err != nil {
		return nil, fmt.Errorf("text analysis: %w", err)
	}

	payload, err := ParseModelResponse(raw)
	if err != nil {
		logger.Warn("Unparseable analysis response (%d bytes)", len(raw))
		return nil, err
	}

	result := BuildAnalysisResult(payload, fileID, &text)
	s.attachReferences(ctx, result, text)

	logger.Info("Analysed %s: %d findings, %d abnormal in %s",
		fileID, len(result.Findings), len(result.AbnormalFindings()), time.Since(start).Round(time.Millisecond))
	return result, nil
}

// AnalyzeImage analyses a report image with a vision model.
func (s *AnalysisService) AnalyzeImage(
	ctx context.Context, image []byte, mimeType, fileID string,
) (*domain.AnalysisResult, error) {
	logger.Section("Image Analysis")
	start := time.Now()

	if len(image) == 0 {
		return nil, fmt.Errorf("analyse %s: empty image: %w", fileID, domain.ErrInvalidInput)
	}

	system, err := s.prompts.Load(driven.PromptImageAnalysisSystem)
	if err != nil {
		return nil, fmt.Errorf("load prompt: %w", err)
	}
	user, err := s.prompts.Load(driven.PromptImageAnalysisUser)
	if err != nil {
		return nil, fmt.Errorf("load prompt: %w", err)
	}

	raw, err := s.generator.Generate(ctx, GenerationRequest{
		Model:     s.settings.EffectiveVisionModel(),
		Fallbacks: s.settings.FallbackVisionModels,
		Prompt:    driven.Prompt{System: system, User: user},
		Image:     &driven.Image{Data: image, MIMEType: mimeType},
		Options:   s.options(),
	})
	if err != nil {
		return nil, fmt.Errorf("image analysis: %w", err)
	}

	payload, err := ParseModelResponse(raw)
	if err != nil {
		logger.Warn("Unparseable vision response (%d bytes)", len(raw))
		return nil, err
	}

	result := BuildAnalysisResult(payload, fileID, nil)

	logger.Info("Analysed %s from image: %d findings in %s",
		fileID, len(result.Findings), time.Since(start).Round(time.Millisecond))
	return result, nil
}

// AnalyzeFile analyses a previously uploaded report.
// Files with extractable text take the text path; images and scanned
// PDFs go to the vision model.
func (s *AnalysisService) AnalyzeFile(ctx context.Context, fileID string) (*domain.AnalysisResult, error) {
	if s.fileStore == nil {
		return nil, errors.New("file store not configured")
	}

	file, err := s.fileStore.Find(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("locate upload %s: %w", fileID, err)
	}

	fileType, err := domain.DetectFileType(file.Filename)
	if err != nil {
		return nil, err
	}
	logger.Debug("File %s (%s) detected as %s", fileID, file.Filename, fileType)

	if text, ok := s.extract(ctx, fileType, file); ok {
		return s.AnalyzeText(ctx, text, fileID)
	}
	if fileType == domain.FileTypeText {
		return nil, fmt.Errorf("%w: %s is empty", domain.ErrNoText, file.Filename)
	}

	data, err := s.fileStore.Read(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("read upload %s: %w", fileID, err)
	}
	return s.AnalyzeImage(ctx, data, visionMIMEType(fileType, file.Filename), fileID)
}

// extract returns the file's text, or false when the file should be read
// by the vision model instead.
func (s *AnalysisService) extract(ctx context.Context, fileType domain.FileType, file *domain.StoredFile) (string, bool) {
	if fileType == domain.FileTypeImage || s.normalisers == nil {
		return "", false
	}

	result, err := s.normalisers.Normalise(ctx, fileType, file)
	if err != nil {
		if !errors.Is(err, domain.ErrNoText) {
			logger.Warn("Text extraction failed for %s, using vision: %v", file.Filename, err)
		}
		return "", false
	}
	if strings.TrimSpace(result.Text) == "" {
		return "", false
	}
	return result.Text, true
}

// attachReferences fills the reference context. Retrieval problems never
// fail the analysis.
func (s *AnalysisService) attachReferences(ctx context.Context, result *domain.AnalysisResult, text string) {
	if s.references == nil {
		return
	}

	refCtx, err := s.references.Enhance(ctx, text, result.Summary)
	if err != nil {
		logger.Warn("Reference lookup skipped: %v", err)
		return
	}
	result.ReferenceContext = refCtx
}

func (s *AnalysisService) options() driven.GenerateOptions {
	return driven.GenerateOptions{
		Temperature: s.settings.Temperature,
		JSON:        true,
	}
}

// visionMIMEType picks the MIME type sent with a file on the vision path.
func visionMIMEType(fileType domain.FileType, filename string) string {
	if fileType == domain.FileTypePDF {
		return "application/pdf"
	}
	return domain.ImageMIMEType(filename)
}
