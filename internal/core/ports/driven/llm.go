// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// LLMService provides the two model capabilities report analysis needs:
// plain text generation and generation over an image.
//
// The model argument selects which model serves the call so that a single
// client can walk a fallback list. An empty model means the service default.
//
// Implementations may include:
//   - Google Gemini
//   - OpenAI (GPT-4o family)
//   - Anthropic (Claude)
//   - Ollama (local vision models)
//
// Errors should carry the provider's HTTP status or message text so that
// rate limiting ("429", "quota", ...) can be recognised by the caller.
type LLMService interface {
	// GenerateText produces a completion for a system and user prompt pair.
	GenerateText(ctx context.Context, model string, prompt Prompt, opts GenerateOptions) (string, error)

	// GenerateVision produces a completion for a prompt pair plus one image.
	GenerateVision(ctx context.Context, model string, prompt Prompt, image Image, opts GenerateOptions) (string, error)

	// ProviderName returns the provider identifier (e.g. "gemini").
	ProviderName() string

	// ModelName returns the default model used when none is given.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// Prompt is a system instruction plus the user turn.
type Prompt struct {
	// System is sent as the system instruction. May be empty.
	System string

	// User is the user message text.
	User string
}

// Image is an inline image attached to a vision request.
type Image struct {
	// Data is the raw image bytes.
	Data []byte

	// MIMEType is the image MIME type (e.g. "image/png").
	MIMEType string
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate. Zero means provider default.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// JSON asks the provider to constrain output to a JSON object where supported.
	JSON bool
}
