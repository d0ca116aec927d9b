package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/medreport/internal/core/domain"
	"github.com/custodia-labs/medreport/internal/core/ports/driven"
)

// llmCall records one request seen by mockLLMService.
type llmCall struct {
	model  string
	prompt driven.Prompt
	image  *driven.Image
	opts   driven.GenerateOptions
}

// mockLLMService replays scripted responses per model.
// Each model's script is consumed in order; an exhausted script repeats
// its last entry.
type mockLLMService struct {
	mu      sync.Mutex
	model   string
	scripts map[string][]mockReply
	calls   []llmCall
}

type mockReply struct {
	text string
	err  error
}

func newMockLLM(defaultModel string) *mockLLMService {
	return &mockLLMService{
		model:   defaultModel,
		scripts: make(map[string][]mockReply),
	}
}

func (m *mockLLMService) on(model string, replies ...mockReply) *mockLLMService {
	m.scripts[model] = append(m.scripts[model], replies...)
	return m
}

func (m *mockLLMService) reply(model string) (string, error) {
	script := m.scripts[model]
	if len(script) == 0 {
		return "", fmt.Errorf("unexpected model %s", model)
	}
	r := script[0]
	if len(script) > 1 {
		m.scripts[model] = script[1:]
	}
	return r.text, r.err
}

func (m *mockLLMService) GenerateText(
	_ context.Context, model string, prompt driven.Prompt, opts driven.GenerateOptions,
) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, llmCall{model: model, prompt: prompt, opts: opts})
	return m.reply(model)
}

func (m *mockLLMService) GenerateVision(
	_ context.Context, model string, prompt driven.Prompt, image driven.Image, opts driven.GenerateOptions,
) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	img := image
	m.calls = append(m.calls, llmCall{model: model, prompt: prompt, image: &img, opts: opts})
	return m.reply(model)
}

func (m *mockLLMService) ProviderName() string { return "mock" }

func (m *mockLLMService) ModelName() string { return m.model }

func (m *mockLLMService) Ping(_ context.Context) error { return nil }

func (m *mockLLMService) Close() error { return nil }

func (m *mockLLMService) calledModels() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	for i, c := range m.calls {
		out[i] = c.model
	}
	return out
}

// sleepRecorder captures requested waits without sleeping.
type sleepRecorder struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (r *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.waits = append(r.waits, d)
	return nil
}

// mockPromptStore serves fixed templates.
type mockPromptStore struct {
	prompts map[string]string
	err     error
}

func newMockPromptStore() *mockPromptStore {
	return &mockPromptStore{prompts: map[string]string{
		driven.PromptTextAnalysisSystem:  "analyse text",
		driven.PromptTextAnalysisUser:    "REPORT:\n%s",
		driven.PromptImageAnalysisSystem: "analyse image",
		driven.PromptImageAnalysisUser:   "read this image",
		driven.PromptSimplifySystem:      "simplify",
		driven.PromptSimplifyUser:        "SUMMARY:\n%s\nFINDINGS:\n%s",
	}}
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	p, ok := m.prompts[name]
	if !ok {
		return "", fmt.Errorf("prompt %q not found", name)
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

// mockEmbeddingService embeds text by keyword presence so similarity is predictable.
type mockEmbeddingService struct {
	keywords []string
	err      error
	batches  int
}

func (m *mockEmbeddingService) vector(text string) []float32 {
	v := make([]float32, len(m.keywords)+1)
	v[len(m.keywords)] = 0.01
	for i, kw := range m.keywords {
		if strings.Contains(strings.ToLower(text), strings.ToLower(kw)) {
			v[i] = 1
		}
	}
	return v
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.vector(text), nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.batches++
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vector(t)
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int { return len(m.keywords) + 1 }

func (m *mockEmbeddingService) ModelName() string { return "mock-embed" }

func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }

func (m *mockEmbeddingService) Close() error { return nil }

// mockNormaliserRegistry returns canned text per file type.
type mockNormaliserRegistry struct {
	text map[domain.FileType]string
	err  error
}

func (m *mockNormaliserRegistry) Normalise(
	_ context.Context, fileType domain.FileType, _ *domain.StoredFile,
) (*driven.NormaliseResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	text, ok := m.text[fileType]
	if !ok {
		return nil, domain.ErrUnsupportedType
	}
	if text == "" {
		return nil, domain.ErrNoText
	}
	return &driven.NormaliseResult{Text: text}, nil
}

func (m *mockNormaliserRegistry) Register(_ driven.Normaliser) {}

func (m *mockNormaliserRegistry) SupportedFileTypes() []domain.FileType {
	return []domain.FileType{domain.FileTypePDF, domain.FileTypeText}
}

// mockReferenceService returns a fixed context.
type mockReferenceService struct {
	context string
	err     error
	calls   int
}

func (m *mockReferenceService) Ingest(_ context.Context, _ string) (int, error) { return 0, nil }

func (m *mockReferenceService) IngestSource(_ context.Context, _ driven.ReferenceSource) (int, error) {
	return 0, nil
}

func (m *mockReferenceService) Query(_ context.Context, _ string, _ int) ([]domain.ReferenceSnippet, error) {
	return nil, nil
}

func (m *mockReferenceService) Enhance(_ context.Context, _, _ string) (string, error) {
	m.calls++
	return m.context, m.err
}

func (m *mockReferenceService) Stats(_ context.Context) (*domain.ReferenceStats, error) {
	return &domain.ReferenceStats{}, nil
}

// mockValidator records validation requests.
type mockValidator struct {
	err       error
	llmCalls  int
	embedCall int
}

func (m *mockValidator) ValidateEmbedding(_ *domain.EmbeddingSettings) error {
	m.embedCall++
	return m.err
}

func (m *mockValidator) ValidateLLM(_ *domain.LLMSettings) error {
	m.llmCalls++
	return m.err
}

var (
	errRateLimited = errors.New("googleapi: Error 429: Resource has been exhausted (e.g. check quota)")
	errAuth        = errors.New("googleapi: Error 403: API key not valid")
)
