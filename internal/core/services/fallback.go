package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/medreport/internal/core/domain"
	"github.com/custodia-labs/medreport/internal/core/ports/driven"
	"github.com/custodia-labs/medreport/internal/logger"
)

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the default Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// rateLimitMarkers are matched case-insensitively against provider errors.
var rateLimitMarkers = []string{"429", "rate", "quota", "limit"}

// IsRateLimitError reports whether err looks like throttling or quota exhaustion.
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, domain.ErrRateLimited) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range rateLimitMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// GenerationRequest is one logical model call.
type GenerationRequest struct {
	// Model is tried first. Empty means the service default.
	Model string

	// Fallbacks are tried in order after Model exhausts its retries.
	Fallbacks []string

	// Prompt is the system and user text.
	Prompt driven.Prompt

	// Image switches the request to the vision capability when set.
	Image *driven.Image

	// Options are passed through to the provider.
	Options driven.GenerateOptions
}

// FallbackGenerator issues a request against an ordered list of models.
//
// Rate-limit errors are retried on the same model with linearly growing
// waits (step, 2*step, ...). Once a model's attempts are used up the next
// candidate is tried without waiting. Any other error is returned at once.
// Each call owns its own loop; there is no budget shared between calls.
type FallbackGenerator struct {
	llm         driven.LLMService
	maxRetries  int
	backoffStep time.Duration
	sleep       Sleeper
}

// NewFallbackGenerator creates a generator with the given retry policy.
// Non-positive values fall back to the defaults.
func NewFallbackGenerator(llm driven.LLMService, retry domain.RetrySettings) *FallbackGenerator {
	g := &FallbackGenerator{
		llm:         llm,
		maxRetries:  retry.MaxRetries,
		backoffStep: retry.BackoffStep,
		sleep:       SleepContext,
	}
	if g.maxRetries <= 0 {
		g.maxRetries = domain.DefaultMaxRetries
	}
	if g.backoffStep <= 0 {
		g.backoffStep = domain.DefaultBackoffStep
	}
	return g
}

// SetSleeper replaces the wait function. Used by tests.
func (g *FallbackGenerator) SetSleeper(s Sleeper) {
	g.sleep = s
}

// Candidates returns the models a request will try, in order.
// Fallbacks equal to the preferred model, or repeated, are dropped.
func Candidates(preferred string, fallbacks []string) []string {
	out := []string{preferred}
	seen := map[string]bool{preferred: true}
	for _, m := range fallbacks {
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}

// Generate returns the first successful completion across all candidates.
// Returns domain.ErrProviderExhausted once every model has been rate
// limited on every attempt.
func (g *FallbackGenerator) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	if g == nil || g.llm == nil {
		return "", domain.ErrLLMUnavailable
	}

	preferred := req.Model
	if preferred == "" {
		preferred = g.llm.ModelName()
	}
	models := Candidates(preferred, req.Fallbacks)

	var lastErr error
	for _, model := range models {
		for attempt := 0; attempt < g.maxRetries; attempt++ {
			text, err := g.call(ctx, model, req)
			if err == nil {
				if attempt > 0 || model != preferred {
					logger.Info("Model %s succeeded on attempt %d", model, attempt+1)
				}
				return text, nil
			}

			if !IsRateLimitError(err) {
				return "", err
			}
			lastErr = err

			if attempt < g.maxRetries-1 {
				wait := time.Duration(attempt+1) * g.backoffStep
				logger.Warn("Rate limited on %s (attempt %d/%d), retrying in %s",
					model, attempt+1, g.maxRetries, wait)
				if err := g.sleep(ctx, wait); err != nil {
					return "", err
				}
			}
		}
		logger.Warn("Model %s exhausted %d attempts, trying next model", model, g.maxRetries)
	}

	return "", fmt.Errorf(
		"%w: tried %s, last error: %v; wait a minute and try again, or verify your API key and quota",
		domain.ErrProviderExhausted, strings.Join(models, ", "), lastErr,
	)
}

func (g *FallbackGenerator) call(ctx context.Context, model string, req GenerationRequest) (string, error) {
	if req.Image != nil {
		return g.llm.GenerateVision(ctx, model, req.Prompt, *req.Image, req.Options)
	}
	return g.llm.GenerateText(ctx, model, req.Prompt, req.Options)
}
