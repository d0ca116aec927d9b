// Package openai implements driven.LLMService with the OpenAI chat
// completions API. Any server speaking the same API works via BaseURL.
package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/custodia-labs/medreport/internal/adapters/driven/jsonapi"
	"github.com/custodia-labs/medreport/internal/core/domain"
	"github.com/custodia-labs/medreport/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL    = "https://api.openai.com/v1"
	DefaultLLMModel   = "gpt-4o-mini"
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig configures an LLMService. APIKey is required.
type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService talks to /chat/completions.
type LLMService struct {
	api   *jsonapi.Client
	model string
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	MaxTokens      int           `json:"max_tokens,omitempty"`
	Temperature    *float64      `json:"temperature,omitempty"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format,omitempty"`
}

// chatMessage content is a string, or a []part for vision turns.
type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type part struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL *struct {
		URL string `json:"url"`
	} `json:"image_url,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewLLMService returns an OpenAI-backed LLMService.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: API key is required")
	}
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
			Provider:  string(domain.AIProviderOpenAI),
			BaseURL:   cfg.BaseURL,
			Timeout:   cfg.Timeout,
			Header:    http.Header{"Authorization": {"Bearer " + cfg.APIKey}},
			ErrorText: errorMessage,
		}),
		model: cfg.Model,
	}, nil
}

// GenerateText sends the prompt as system and user messages.
func (s *LLMService) GenerateText(
	ctx context.Context, model string, prompt driven.Prompt, opts driven.GenerateOptions,
) (string, error) {
	return s.complete(ctx, model, prompt.System, prompt.User, opts)
}

// GenerateVision attaches the image to the user turn as a base64 data URI.
func (s *LLMService) GenerateVision(
	ctx context.Context, model string, prompt driven.Prompt, image driven.Image, opts driven.GenerateOptions,
) (string, error) {
	img := part{Type: "image_url"}
	img.ImageURL = &struct {
		URL string `json:"url"`
	}{URL: "data:" + image.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(image.Data)}

	return s.complete(ctx, model, prompt.System, []part{{Type: "text", Text: prompt.User}, img}, opts)
}

func (s *LLMService) complete(
	ctx context.Context, model, system string, user any, opts driven.GenerateOptions,
) (string, error) {
	if model == "" {
		model = s.model
	}

	req := chatRequest{Model: model, MaxTokens: opts.MaxTokens}
	if system != "" {
		req.Messages = append(req.Messages, chatMessage{Role: "system", Content: system})
	}
	req.Messages = append(req.Messages, chatMessage{Role: "user", Content: user})
	if opts.Temperature > 0 {
		req.Temperature = &opts.Temperature
	}
	if opts.JSON {
		req.ResponseFormat = &struct {
			Type string `json:"type"`
		}{Type: "json_object"}
	}

	var resp chatResponse
	if err := s.api.Post(ctx, "/chat/completions", req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: no response choices returned")
	}
	return resp.Choices[0].Message.Content, nil
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

func (s *LLMService) ProviderName() string {
	return string(domain.AIProviderOpenAI)
}

// ModelName returns the model used when a call passes no model.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists models, which checks the key without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.api.Get(ctx, "/models", nil)
}

func (s *LLMService) Close() error {
	return nil
}
