package driving

import (
	"context"

	"github.com/custodia-labs/medreport/internal/core/domain"
)

// UploadService accepts report files for later analysis.
type UploadService interface {
	// Upload validates and stores a report, extracting its text when possible.
	Upload(ctx context.Context, filename string, data []byte) (*domain.UploadResult, error)
}
