// Package pdf extracts report text from PDF files with poppler's pdftotext.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/custodia-labs/medreport/internal/core/domain"
	"github.com/custodia-labs/medreport/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// ErrPDFToolNotFound is returned when pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

const toolName = "pdftotext"

// CommandRunner runs an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// Normaliser extracts text from PDFs page by page.
type Normaliser struct {
	runner CommandRunner
}

// New creates a PDF normaliser backed by the pdftotext binary.
func New() *Normaliser {
	return &Normaliser{runner: execRunner{}}
}

// NewWithRunner creates a PDF normaliser with a custom command runner.
func NewWithRunner(runner CommandRunner) *Normaliser {
	return &Normaliser{runner: runner}
}

// CheckAvailable reports whether pdftotext can be found.
func CheckAvailable() error {
	if _, err := lookPath(toolName); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions describes how to install pdftotext.
func InstallInstructions() string {
	return `pdftotext is required to read text from PDF reports.

  macOS:         brew install poppler
  Debian/Ubuntu: sudo apt install poppler-utils
  Fedora:        sudo dnf install poppler-utils

Without it, PDFs are sent to the vision model.`
}

// SupportedFileTypes returns the file types this normaliser handles.
func (n *Normaliser) SupportedFileTypes() []domain.FileType {
	return []domain.FileType{domain.FileTypePDF}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts the text of every page. Pages are separated by form
// feeds in pdftotext output; each non-empty page becomes a
// "--- Page N ---" block. A PDF with no text at all (a scan) yields
// domain.ErrNoText.
func (n *Normaliser) Normalise(ctx context.Context, file *domain.StoredFile) (*driven.NormaliseResult, error) {
	if file == nil {
		return nil, domain.ErrInvalidInput
	}
	if err := CheckAvailable(); err != nil {
		return nil, err
	}

	out, err := n.runner.Run(ctx, toolName, "-layout", "-enc", "UTF-8", file.Path, "-")
	if err != nil {
		return nil, fmt.Errorf("pdftotext failed: %w", err)
	}

	text, pages := formatPages(string(out))
	if text == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoText, file.Filename)
	}
	return &driven.NormaliseResult{Text: text, Pages: pages}, nil
}

// formatPages splits pdftotext output into pages and labels the ones with
// text. It returns the joined text and the total page count.
func formatPages(out string) (string, int) {
	raw := strings.Split(strings.TrimRight(out, "\f\n"), "\f")

	blocks := make([]string, 0, len(raw))
	for i, page := range raw {
		page = strings.TrimSpace(page)
		if page == "" {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("--- Page %d ---\n%s", i+1, page))
	}
	return strings.Join(blocks, "\n\n"), len(raw)
}
