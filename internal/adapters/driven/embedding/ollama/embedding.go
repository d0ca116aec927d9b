// Package ollama provides an embedding service adapter using Ollama.
package ollama

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/medreport/internal/adapters/driven/jsonapi"
	"github.com/custodia-labs/medreport/internal/core/domain"
	"github.com/custodia-labs/medreport/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultModel      = "nomic-embed-text"
	DefaultTimeout    = 60 * time.Second
	DefaultDimensions = 768

	// MaxBatchSize is the number of inputs sent per /api/embed request.
	MaxBatchSize = 32

	// DefaultRequestsPerSecond keeps a local server responsive during ingestion.
	DefaultRequestsPerSecond = 10.0
)

// Config holds configuration for the Ollama embedding service.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the embedding model to use (default: nomic-embed-text).
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration

	// Dimensions overrides the vector size for models missing from the
	// known-model table.
	Dimensions int

	// RequestsPerSecond limits outgoing requests (default: 10).
	RequestsPerSecond float64
}

// EmbeddingService generates embeddings using Ollama.
type EmbeddingService struct {
	api        *jsonapi.Client
	model      string
	dimensions int
	limiter    *rate.Limiter
}

// embedRequest is the Ollama /api/embed request format.
type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// embedResponse is the Ollama /api/embed response format.
type embedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
	Error      string      `json:"error,omitempty"`
}

// tagsResponse lists the models pulled on the server.
type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// NewEmbeddingService creates a new Ollama embedding service.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	dims := cfg.Dimensions
	if dims == 0 {
		dims = domain.EmbeddingDimensions()[strings.TrimSuffix(cfg.Model, ":latest")]
	}
	if dims == 0 {
		dims = DefaultDimensions
	}

	return &EmbeddingService{
		api: jsonapi.New(jsonapi.Config{
			Provider: "ollama",
			BaseURL:  cfg.BaseURL,
			Timeout:  cfg.Timeout,
		}),
		model:      cfg.Model,
		dimensions: dims,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
	}
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch generates embeddings for multiple texts.
// Inputs are sent in slices of MaxBatchSize, paced by the rate limiter.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += MaxBatchSize {
		end := min(start+MaxBatchSize, len(texts))
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
		batch, err := s.embed(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed texts %d-%d: %w", start, end-1, err)
		}
		out = append(out, batch...)
	}
	return out, nil
}

func (s *EmbeddingService) embed(ctx context.Context, texts []string) ([][]float32, error) {
	var parsed embedResponse
	if err := s.api.Post(ctx, "/api/embed", embedRequest{Model: s.model, Input: texts}, &parsed); err != nil {
		return nil, err
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("ollama: %s", parsed.Error)
	}
	if len(parsed.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama: got %d embeddings for %d inputs", len(parsed.Embeddings), len(texts))
	}

	vecs := make([][]float32, len(parsed.Embeddings))
	for i, raw := range parsed.Embeddings {
		vec := make([]float32, len(raw))
		for j, v := range raw {
			vec[j] = float32(v)
		}
		vecs[i] = vec
	}
	return vecs, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping lists the server's models and fails when the configured model has
// not been pulled.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	var tags tagsResponse
	if err := s.api.Get(ctx, "/api/tags", &tags); err != nil {
		return fmt.Errorf("ollama: ping failed: %w", err)
	}
	for _, m := range tags.Models {
		if m.Name == s.model || strings.TrimSuffix(m.Name, ":latest") == s.model {
			return nil
		}
	}
	return fmt.Errorf("ollama: model %q not found, run 'ollama pull %s'", s.model, s.model)
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
