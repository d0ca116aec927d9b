package driving

import (
	"context"

	"github.com/custodia-labs/medreport/internal/core/domain"
)

// SimplifyService rewrites an analysis in patient-friendly language.
type SimplifyService interface {
	// Simplify produces a plain-language report from an analysis summary and
	// its findings.
	Simplify(ctx context.Context, summary string, findings []domain.Finding, fileID string) (*domain.SimplifiedReport, error)
}
