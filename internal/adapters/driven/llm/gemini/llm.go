// Package gemini provides an LLM service adapter using the Google Gemini API.
package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/medreport/internal/adapters/driven/jsonapi"
	"github.com/custodia-labs/medreport/internal/core/domain"
	"github.com/custodia-labs/medreport/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-2.0-flash"
	DefaultTimeout = 120 * time.Second

	apiVersion   = "/v1beta/"
	apiKeyHeader = "X-Goog-Api-Key"
	jsonMIMEType = "application/json"
)

// Config holds configuration for the Gemini LLM service.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// BaseURL is the API endpoint (default: https://generativelanguage.googleapis.com).
	BaseURL string

	// Model is the default model (default: gemini-2.0-flash).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// LLMService provides LLM operations using the Gemini generateContent API.
type LLMService struct {
	api   *jsonapi.Client
	model string
}

type generateContentRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

// part holds either text or an inline base64 blob.
type part struct {
	Text       string `json:"text,omitempty"`
	InlineData *blob  `json:"inlineData,omitempty"`
}

type blob struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature,omitempty"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content      *content `json:"content"`
		FinishReason string   `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// NewLLMService creates a new Gemini LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: API key is required")
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
			Provider:      string(domain.AIProviderGemini),
			BaseURL:       cfg.BaseURL,
			Timeout:       cfg.Timeout,
			Header:        http.Header{apiKeyHeader: {cfg.APIKey}},
			CheckResponse: checkResponse,
		}),
		model: cfg.Model,
	}, nil
}

// GenerateText produces a completion for a system and user prompt.
func (s *LLMService) GenerateText(
	ctx context.Context, model string, prompt driven.Prompt, opts driven.GenerateOptions,
) (string, error) {
	return s.generate(ctx, model, prompt.System, []part{{Text: prompt.User}}, opts)
}

// GenerateVision produces a completion over an inline image part.
func (s *LLMService) GenerateVision(
	ctx context.Context, model string, prompt driven.Prompt, image driven.Image, opts driven.GenerateOptions,
) (string, error) {
	parts := []part{
		{Text: prompt.User},
		{InlineData: &blob{
			MimeType: image.MIMEType,
			Data:     base64.StdEncoding.EncodeToString(image.Data),
		}},
	}
	return s.generate(ctx, model, prompt.System, parts, opts)
}

func (s *LLMService) generate(
	ctx context.Context, model, system string, parts []part, opts driven.GenerateOptions,
) (string, error) {
	if model == "" {
		model = s.model
	}

	req := generateContentRequest{
		Contents: []content{{Role: "user", Parts: parts}},
		GenerationConfig: &generationConfig{
			Temperature:     opts.Temperature,
			MaxOutputTokens: opts.MaxTokens,
		},
	}
	if system != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: system}}}
	}
	if opts.JSON {
		req.GenerationConfig.ResponseMimeType = jsonMIMEType
	}

	var resp generateContentResponse
	if err := s.api.Post(ctx, apiVersion+modelResource(model)+":generateContent", req, &resp); err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("gemini: prompt blocked: %s", resp.PromptFeedback.BlockReason)
		}
		return "", errors.New("gemini: no candidates returned")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return "", fmt.Errorf("gemini: empty candidate (finish reason %s)", candidate.FinishReason)
	}

	var text strings.Builder
	for _, p := range candidate.Content.Parts {
		text.WriteString(p.Text)
	}
	return text.String(), nil
}

// ProviderName returns "gemini".
func (s *LLMService) ProviderName() string {
	return string(domain.AIProviderGemini)
}

// ModelName returns the default model.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the API key by fetching the default model's metadata.
func (s *LLMService) Ping(ctx context.Context) error {
	if err := s.api.Get(ctx, apiVersion+modelResource(s.model), nil); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}

// modelResource returns the "models/<name>" resource name.
func modelResource(model string) string {
	if strings.HasPrefix(model, "models/") {
		return model
	}
	return "models/" + model
}

// checkResponse decodes Google's error envelope and marks throttling.
func checkResponse(resp *http.Response) error {
	err := googleapi.CheckResponse(resp)
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w", err, domain.ErrRateLimited)
	}
	return err
}
