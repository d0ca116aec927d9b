// Package image claims image reports so they are routed to vision analysis.
package image

import (
	"context"
	"fmt"

	"github.com/custodia-labs/medreport/internal/core/domain"
	"github.com/custodia-labs/medreport/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser never extracts text; images are read by the vision model.
type Normaliser struct{}

// New creates a new image normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedFileTypes returns the file types this normaliser handles.
func (n *Normaliser) SupportedFileTypes() []domain.FileType {
	return []domain.FileType{domain.FileTypeImage}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 1
}

// Normalise always returns domain.ErrNoText.
func (n *Normaliser) Normalise(_ context.Context, file *domain.StoredFile) (*driven.NormaliseResult, error) {
	if file == nil {
		return nil, domain.ErrInvalidInput
	}
	return nil, fmt.Errorf("%w: %s is an image", domain.ErrNoText, file.Filename)
}
