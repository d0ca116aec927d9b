package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a file type or provider that is not handled.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrFileTooLarge indicates an upload exceeds the configured size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrNoText indicates a report has no extractable text and must be
	// analysed from its image instead.
	ErrNoText = errors.New("no extractable text")

	// Model Response Errors.

	// ErrMalformedResponse indicates the model's reply, after fence stripping,
	// is not syntactically valid JSON. Retrying the same request may succeed.
	ErrMalformedResponse = errors.New("malformed model response")

	// ErrProviderExhausted indicates every candidate model exhausted its
	// retry budget against rate limiting.
	ErrProviderExhausted = errors.New("all models exhausted")

	// ErrRateLimited indicates the provider rejected a call for rate or quota reasons.
	ErrRateLimited = errors.New("rate limited")

	// Service Availability Errors.

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Reference retrieval is disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrReferencesUnavailable indicates the reference store is not configured.
	ErrReferencesUnavailable = errors.New("reference store unavailable")
)
