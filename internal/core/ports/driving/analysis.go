package driving

import (
	"context"

	"github.com/custodia-labs/medreport/internal/core/domain"
)

// AnalysisService turns a medical report into structured findings.
type AnalysisService interface {
	// AnalyzeText analyses extracted report text.
	// The result carries the input as RawText.
	AnalyzeText(ctx context.Context, text, fileID string) (*domain.AnalysisResult, error)

	// AnalyzeImage analyses a report image with a vision model.
	AnalyzeImage(ctx context.Context, image []byte, mimeType, fileID string) (*domain.AnalysisResult, error)

	// AnalyzeFile analyses a previously uploaded report, choosing the text
	// or vision path from its type and extracted content.
	AnalyzeFile(ctx context.Context, fileID string) (*domain.AnalysisResult, error)
}
