// Package chunker splits reference documents into overlapping chunks,
// preferring markdown section and paragraph boundaries over hard cuts.
package chunker

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/medreport/internal/core/domain"
	"github.com/custodia-labs/medreport/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.PostProcessor = (*Processor)(nil)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// DefaultSeparators are tried in order; later ones only split pieces that
// are still too large.
var DefaultSeparators = []string{"\n---\n", "\n## ", "\n### ", "\n\n", "\n", " "}

// Processor splits document content on a hierarchy of separators.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize  int
	overlap    int
	separators []string
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithSeparators replaces the separator hierarchy.
func WithSeparators(seps ...string) Option {
	return func(p *Processor) {
		if len(seps) > 0 {
			p.separators = seps
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: DefaultSeparators,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// NewFromConfig creates a processor from chunking settings.
func NewFromConfig(cfg domain.ChunkingConfig) *Processor {
	return New(WithChunkSize(cfg.ChunkSize), WithOverlap(cfg.Overlap))
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the document content into chunks without embeddings.
func (p *Processor) Process(_ context.Context, doc *domain.ReferenceDocument) ([]domain.ReferenceChunk, error) {
	if strings.TrimSpace(doc.Content) == "" {
		// Empty content produces no chunks
		return nil, nil
	}

	texts := p.Split(doc.Content)
	now := time.Now()
	chunks := make([]domain.ReferenceChunk, 0, len(texts))
	for i, text := range texts {
		chunks = append(chunks, domain.ReferenceChunk{
			ID:        uuid.New().String(),
			Source:    doc.Source,
			Path:      doc.Path,
			Content:   text,
			Position:  i,
			CreatedAt: now,
		})
	}

	return chunks, nil
}

// Split breaks text into pieces of at most chunkSize characters.
func (p *Processor) Split(text string) []string {
	return p.split(text, p.separators)
}

func (p *Processor) split(text string, separators []string) []string {
	sep, rest := pickSeparator(text, separators)

	var out, small []string
	for _, piece := range splitKeep(text, sep) {
		if runeLen(piece) <= p.chunkSize {
			small = append(small, piece)
			continue
		}

		out = append(out, p.merge(small)...)
		small = nil

		if len(rest) > 0 {
			out = append(out, p.split(piece, rest)...)
		} else {
			out = append(out, p.hardSplit(piece)...)
		}
	}

	return append(out, p.merge(small)...)
}

// merge joins adjacent small pieces into chunks, carrying up to overlap
// characters of trailing pieces into the next chunk.
func (p *Processor) merge(pieces []string) []string {
	var out, window []string
	total := 0

	for _, piece := range pieces {
		n := runeLen(piece)
		if total+n > p.chunkSize && len(window) > 0 {
			if chunk := strings.TrimSpace(strings.Join(window, "")); chunk != "" {
				out = append(out, chunk)
			}
			for len(window) > 0 && (total > p.overlap || total+n > p.chunkSize) {
				total -= runeLen(window[0])
				window = window[1:]
			}
		}
		window = append(window, piece)
		total += n
	}

	if chunk := strings.TrimSpace(strings.Join(window, "")); chunk != "" {
		out = append(out, chunk)
	}
	return out
}

// hardSplit cuts text into fixed windows when no separator applies.
func (p *Processor) hardSplit(text string) []string {
	runes := []rune(text)
	step := p.chunkSize - p.overlap

	var out []string
	for start := 0; start < len(runes); start += step {
		end := min(start+p.chunkSize, len(runes))
		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			out = append(out, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return out
}

// pickSeparator returns the first separator present in text and the
// separators after it. An empty separator means no separator applies.
func pickSeparator(text string, separators []string) (string, []string) {
	for i, sep := range separators {
		if sep != "" && strings.Contains(text, sep) {
			return sep, separators[i+1:]
		}
	}
	return "", nil
}

// splitKeep splits text on sep, keeping sep at the start of each following piece.
func splitKeep(text, sep string) []string {
	if sep == "" {
		return []string{text}
	}

	parts := strings.Split(text, sep)
	out := make([]string, 0, len(parts))
	for i, part := range parts {
		if i > 0 {
			part = sep + part
		}
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func runeLen(s string) int {
	return len([]rune(s))
}
