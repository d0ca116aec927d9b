// Package ollama implements driven.LLMService against a local Ollama
// server's /api/chat endpoint.
package ollama

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/custodia-labs/medreport/internal/adapters/driven/jsonapi"
	"github.com/custodia-labs/medreport/internal/core/domain"
	"github.com/custodia-labs/medreport/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL  = "http://localhost:11434"
	DefaultLLMModel = "llama3.2-vision"

	// DefaultLLMTimeout is generous because local vision models are slow.
	DefaultLLMTimeout = 300 * time.Second
)

// LLMConfig configures an LLMService. No key is needed.
type LLMConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService runs non-streaming chat requests.
type LLMService struct {
	api   *jsonapi.Client
	model string
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Format   string        `json:"format,omitempty"`
	Options  *options      `json:"options,omitempty"`
}

type options struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// chatMessage carries images as bare base64 strings; Ollama sniffs the format.
type chatMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Error   string      `json:"error,omitempty"`
}

// NewLLMService returns an Ollama-backed LLMService.
func NewLLMService(cfg LLMConfig) *LLMService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	return &LLMService{
		api: jsonapi.New(jsonapi.Config{
			Provider:  string(domain.AIProviderOllama),
			BaseURL:   cfg.BaseURL,
			Timeout:   cfg.Timeout,
			ErrorText: errorMessage,
		}),
		model: cfg.Model,
	}
}

func (s *LLMService) GenerateText(
	ctx context.Context, model string, prompt driven.Prompt, opts driven.GenerateOptions,
) (string, error) {
	return s.chat(ctx, model, prompt, nil, opts)
}

// GenerateVision sends the image bytes without a MIME type.
func (s *LLMService) GenerateVision(
	ctx context.Context, model string, prompt driven.Prompt, image driven.Image, opts driven.GenerateOptions,
) (string, error) {
	return s.chat(ctx, model, prompt, []string{base64.StdEncoding.EncodeToString(image.Data)}, opts)
}

func (s *LLMService) chat(
	ctx context.Context, model string, prompt driven.Prompt, images []string, opts driven.GenerateOptions,
) (string, error) {
	if model == "" {
		model = s.model
	}

	req := chatRequest{Model: model}
	if prompt.System != "" {
		req.Messages = append(req.Messages, chatMessage{Role: "system", Content: prompt.System})
	}
	req.Messages = append(req.Messages, chatMessage{Role: "user", Content: prompt.User, Images: images})
	if opts.JSON {
		req.Format = "json"
	}
	if opts.MaxTokens > 0 || opts.Temperature > 0 {
		req.Options = &options{NumPredict: opts.MaxTokens, Temperature: opts.Temperature}
	}

	var resp chatResponse
	if err := s.api.Post(ctx, "/api/chat", req, &resp); err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", fmt.Errorf("ollama: %s", resp.Error)
	}
	return resp.Message.Content, nil
}

// errorMessage unwraps Ollama's {"error": "..."} bodies.
func errorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) != nil {
		return ""
	}
	return e.Error
}

func (s *LLMService) ProviderName() string {
	return string(domain.AIProviderOllama)
}

// ModelName returns the model used when a call passes no model.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping checks the server answers /api/tags.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.api.Get(ctx, "/api/tags", nil)
}

func (s *LLMService) Close() error {
	return nil
}
