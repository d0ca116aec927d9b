package driven

import (
	"context"

	"github.com/custodia-labs/medreport/internal/core/domain"
)

// Normaliser extracts plain text from a stored report file.
// Each normaliser handles specific file types (e.g., PDF, plain text).
type Normaliser interface {
	// SupportedFileTypes returns the file types this normaliser handles.
	SupportedFileTypes() []domain.FileType

	// Priority returns the selection priority (higher = preferred).
	Priority() int

	// Normalise extracts the text of the file.
	// Returns domain.ErrNoText when the file holds no extractable text,
	// which routes the report to vision analysis.
	Normalise(ctx context.Context, file *domain.StoredFile) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation.
type NormaliseResult struct {
	// Text is the extracted report text.
	Text string

	// Pages is the number of pages read, when the format has pages.
	Pages int
}
