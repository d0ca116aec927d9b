// Package openai embeds reference chunks with the OpenAI embeddings API.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
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
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "text-embedding-3-small"
	DefaultTimeout = 60 * time.Second

	// MaxBatchSize is the number of inputs sent per /embeddings request.
	MaxBatchSize = 100

	// DefaultRequestsPerSecond paces batch requests during ingestion.
	DefaultRequestsPerSecond = 5.0

	fallbackDimensions = 1536
)

// Config holds configuration for the OpenAI embedding service.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL points at OpenAI or a compatible server.
	BaseURL string

	// Model is the embedding model (default: text-embedding-3-small).
	Model string

	// Timeout bounds each HTTP request (default: 60s).
	Timeout time.Duration

	// Dimensions shortens text-embedding-3 vectors. Zero keeps the model's size.
	Dimensions int

	// RequestsPerSecond limits outgoing requests (default: 5).
	RequestsPerSecond float64
}

// EmbeddingService generates embeddings using OpenAI API.
type EmbeddingService struct {
	api        *jsonapi.Client
	model      string
	dimensions int
	// sendDimensions is set when the caller asked for shortened vectors.
	sendDimensions bool
	limiter        *rate.Limiter
}

type embeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

// NewEmbeddingService creates a new OpenAI embedding service.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: API key is required")
	}
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

	dimensions := cfg.Dimensions
	if dimensions == 0 {
		dimensions = domain.EmbeddingDimensions()[cfg.Model]
	}
	if dimensions == 0 {
		dimensions = fallbackDimensions
	}

	return &EmbeddingService{
		api: jsonapi.New(jsonapi.Config{
			Provider:  "openai",
			BaseURL:   cfg.BaseURL,
			Timeout:   cfg.Timeout,
			Header:    http.Header{"Authorization": {"Bearer " + cfg.APIKey}},
			ErrorText: errorMessage,
		}),
		model:          cfg.Model,
		dimensions:     dimensions,
		sendDimensions: cfg.Dimensions > 0 && strings.HasPrefix(cfg.Model, "text-embedding-3-"),
		limiter:        rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
	}, nil
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
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
		batch, err := s.embed(ctx, texts[start:min(start+MaxBatchSize, len(texts))])
		if err != nil {
			return nil, err
		}
		out = append(out, batch...)
	}
	return out, nil
}

// embed sends one /embeddings request and orders the vectors by input index.
func (s *EmbeddingService) embed(ctx context.Context, texts []string) ([][]float32, error) {
	payload := embeddingRequest{Model: s.model, Input: texts}
	if s.sendDimensions {
		payload.Dimensions = s.dimensions
	}
	var parsed embeddingResponse
	if err := s.api.Post(ctx, "/embeddings", payload, &parsed); err != nil {
		return nil, err
	}

	vecs := make([][]float32, len(texts))
	for _, d := range parsed.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, fmt.Errorf("openai: embedding index %d out of range", d.Index)
		}
		vec := make([]float32, len(d.Embedding))
		for i, v := range d.Embedding {
			vec[i] = float32(v)
		}
		vecs[d.Index] = vec
	}
	for i, vec := range vecs {
		if vec == nil {
			return nil, fmt.Errorf("openai: no embedding returned for input %d", i)
		}
	}
	return vecs, nil
}

// errorMessage pulls error.message out of an OpenAI error body.
func errorMessage(body []byte) string {
	var e struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &e) != nil {
		return ""
	}
	return e.Error.Message
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping checks the API key against /models without running inference.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if err := s.api.Get(ctx, "/models", nil); err != nil {
		return fmt.Errorf("openai: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
