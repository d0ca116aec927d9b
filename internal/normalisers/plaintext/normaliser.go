// Package plaintext reads text reports as they are.
package plaintext

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/medreport/internal/core/domain"
	"github.com/custodia-labs/medreport/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text reports.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedFileTypes returns the file types this normaliser handles.
func (n *Normaliser) SupportedFileTypes() []domain.FileType {
	return []domain.FileType{domain.FileTypeText}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 5
}

// Normalise reads the file as UTF-8. Invalid byte sequences are replaced.
func (n *Normaliser) Normalise(_ context.Context, file *domain.StoredFile) (*driven.NormaliseResult, error) {
	if file == nil {
		return nil, domain.ErrInvalidInput
	}

	data, err := os.ReadFile(file.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file.Filename, err)
	}

	text := string(data)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "�")
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoText, file.Filename)
	}

	return &driven.NormaliseResult{Text: text}, nil
}
