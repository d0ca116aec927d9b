// Package anthropic implements driven.LLMService with the Anthropic
// Messages API.
package anthropic

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/medreport/internal/adapters/driven/jsonapi"
	"github.com/custodia-labs/medreport/internal/core/domain"
	"github.com/custodia-labs/medreport/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-3-5-sonnet-latest"
	DefaultTimeout   = 120 * time.Second
	DefaultMaxTokens = 4096

	anthropicVersion = "2023-06-01"
)

// Config configures an LLMService. APIKey is required.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService talks to /v1/messages. The API has no JSON response mode,
// so GenerateOptions.JSON relies on the prompt alone.
type LLMService struct {
	api   *jsonapi.Client
	model string
}

type messagesRequest struct {
	Model       string    `json:"model"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature *float64  `json:"temperature,omitempty"`
}

type message struct {
	Role    string  `json:"role"`
	Content []block `json:"content"`
}

// block is a text block or a base64 image block.
type block struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type messagesResponse struct {
	Content    []block `json:"content"`
	StopReason string  `json:"stop_reason"`
}

// NewLLMService returns an Anthropic-backed LLMService.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic: API key is required")
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

	return &LLMService{
		api: jsonapi.New(jsonapi.Config{
			Provider: string(domain.AIProviderAnthropic),
			BaseURL:  cfg.BaseURL,
			Timeout:  cfg.Timeout,
			Header: http.Header{
				"X-Api-Key":         {cfg.APIKey},
				"Anthropic-Version": {anthropicVersion},
			},
			ErrorText: errorMessage,
		}),
		model: cfg.Model,
	}, nil
}

// GenerateText sends the user prompt as a single text block.
func (s *LLMService) GenerateText(
	ctx context.Context, model string, prompt driven.Prompt, opts driven.GenerateOptions,
) (string, error) {
	return s.send(ctx, model, prompt.System, []block{{Type: "text", Text: prompt.User}}, opts)
}

// GenerateVision puts the image block before the instructions.
func (s *LLMService) GenerateVision(
	ctx context.Context, model string, prompt driven.Prompt, image driven.Image, opts driven.GenerateOptions,
) (string, error) {
	img := block{Type: "image", Source: &imageSource{
		Type:      "base64",
		MediaType: image.MIMEType,
		Data:      base64.StdEncoding.EncodeToString(image.Data),
	}}
	return s.send(ctx, model, prompt.System, []block{img, {Type: "text", Text: prompt.User}}, opts)
}

func (s *LLMService) send(
	ctx context.Context, model, system string, content []block, opts driven.GenerateOptions,
) (string, error) {
	if model == "" {
		model = s.model
	}
	req := messagesRequest{
		Model:     model,
		System:    system,
		Messages:  []message{{Role: "user", Content: content}},
		MaxTokens: opts.MaxTokens,
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = DefaultMaxTokens
	}
	if opts.Temperature > 0 {
		req.Temperature = &opts.Temperature
	}

	var resp messagesResponse
	if err := s.api.Post(ctx, "/v1/messages", req, &resp); err != nil {
		return "", err
	}

	var text strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			text.WriteString(b.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("anthropic: no text content returned (stop reason %q)", resp.StopReason)
	}
	return text.String(), nil
}

// errorMessage renders {"error":{"type","message"}} as "type: message".
func errorMessage(body []byte) string {
	var e struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &e) != nil || e.Error.Type == "" {
		return ""
	}
	return e.Error.Type + ": " + e.Error.Message
}

func (s *LLMService) ProviderName() string {
	return string(domain.AIProviderAnthropic)
}

// ModelName returns the model used when a call passes no model.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists models, which checks the key without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.api.Get(ctx, "/v1/models", nil)
}

func (s *LLMService) Close() error {
	return nil
}
