package normalisers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/medreport/internal/core/domain"
	"github.com/custodia-labs/medreport/internal/core/ports/driven"
	"github.com/custodia-labs/medreport/internal/logger"
	"github.com/custodia-labs/medreport/internal/normalisers/image"
	"github.com/custodia-labs/medreport/internal/normalisers/pdf"
	"github.com/custodia-labs/medreport/internal/normalisers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry selects normalisers by file type, highest priority first.
type Registry struct {
	mu          sync.RWMutex
	normalisers map[domain.FileType][]driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		normalisers: make(map[domain.FileType][]driven.Normaliser),
	}
}

// NewDefaultRegistry creates a registry holding every built-in normaliser.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(pdf.New())
	r.Register(plaintext.New())
	r.Register(image.New())
	return r
}

// Register adds a normaliser under each file type it supports.
func (r *Registry) Register(normaliser driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, fileType := range normaliser.SupportedFileTypes() {
		existing := r.normalisers[fileType]
		list := make([]driven.Normaliser, 0, len(existing)+1)
		list = append(list, existing...)
		list = append(list, normaliser)
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Priority() > list[j].Priority()
		})
		r.normalisers[fileType] = list
	}
}

// SupportedFileTypes returns the registered file types in a stable order.
func (r *Registry) SupportedFileTypes() []domain.FileType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]domain.FileType, 0, len(r.normalisers))
	for fileType := range r.normalisers {
		types = append(types, fileType)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Normalise runs the candidates for fileType in priority order. A candidate
// that fails for any reason other than domain.ErrNoText hands over to the
// next one.
func (r *Registry) Normalise(
	ctx context.Context,
	fileType domain.FileType,
	file *domain.StoredFile,
) (*driven.NormaliseResult, error) {
	r.mu.RLock()
	candidates := r.normalisers[fileType]
	r.mu.RUnlock()

	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no normaliser for %s", domain.ErrUnsupportedType, fileType)
	}

	var lastErr error
	for _, n := range candidates {
		result, err := n.Normalise(ctx, file)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, domain.ErrNoText) || ctx.Err() != nil {
			return nil, err
		}
		logger.Debug("normaliser for %s failed: %v", fileType, err)
		lastErr = err
	}
	return nil, lastErr
}
