package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanmayhire99/finrag/internal/core/domain"
	"github.com/tanmayhire99/finrag/internal/core/ports/driven"
)

// stubCompletion counts calls and returns a canned document or error.
type stubCompletion struct {
	model string
	text  string
	err   error
	calls int
}

var _ driven.CompletionService = (*stubCompletion)(nil)

func (s *stubCompletion) Complete(ctx context.Context, system, user string, opts driven.CompletionOptions) (string, error) {
	s.calls++
	return s.text, s.err
}

func (s *stubCompletion) ModelName() string              { return s.model }
func (s *stubCompletion) Ping(ctx context.Context) error { return nil }
func (s *stubCompletion) Close() error                   { return nil }

func TestHyDE_ExpandsQuery(t *testing.T) {
	completion := &stubCompletion{model: "gpt-4o-mini", text: "Hypothetical annual report discussing revenue growth drivers."}
	translator := NewHyDETranslator(DefaultHyDEConfig(), completion)

	exp, err := translator.Expand(context.Background(), "what drove revenue growth?")
	require.NoError(t, err)

	assert.Equal(t, "what drove revenue growth?", exp.Original)
	assert.Equal(t, completion.text, exp.Expanded)
	assert.False(t, exp.Cached)
	assert.False(t, exp.Degraded)
}

func TestHyDE_CacheHitsProviderOnce(t *testing.T) {
	completion := &stubCompletion{model: "gpt-4o-mini", text: "Expanded document."}
	translator := NewHyDETranslator(DefaultHyDEConfig(), completion)
	ctx := context.Background()

	first, err := translator.Expand(ctx, "same query")
	require.NoError(t, err)
	second, err := translator.Expand(ctx, "same query")
	require.NoError(t, err)

	assert.Equal(t, 1, completion.calls)
	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Expanded, second.Expanded)

	// A different query misses the cache.
	_, err = translator.Expand(ctx, "different query")
	require.NoError(t, err)
	assert.Equal(t, 2, completion.calls)
}

func TestHyDE_CacheDisabled(t *testing.T) {
	cfg := DefaultHyDEConfig()
	cfg.CacheResponses = false
	completion := &stubCompletion{model: "gpt-4o-mini", text: "Expanded."}
	translator := NewHyDETranslator(cfg, completion)
	ctx := context.Background()

	_, err := translator.Expand(ctx, "q")
	require.NoError(t, err)
	_, err = translator.Expand(ctx, "q")
	require.NoError(t, err)

	assert.Equal(t, 2, completion.calls)
}

func TestHyDE_Disabled(t *testing.T) {
	cfg := DefaultHyDEConfig()
	cfg.Enabled = false
	completion := &stubCompletion{model: "gpt-4o-mini", text: "never used"}
	translator := NewHyDETranslator(cfg, completion)

	exp, err := translator.Expand(context.Background(), "raw query")
	require.NoError(t, err)

	assert.Equal(t, "raw query", exp.Expanded)
	assert.Zero(t, completion.calls)
}

func TestHyDE_NilCompletionService(t *testing.T) {
	translator := NewHyDETranslator(DefaultHyDEConfig(), nil)

	exp, err := translator.Expand(context.Background(), "raw query")
	require.NoError(t, err)
	assert.Equal(t, "raw query", exp.Expanded)
}

func TestHyDE_FallbackOnProviderFailure(t *testing.T) {
	completion := &stubCompletion{model: "gpt-4o-mini", err: errors.New("rate limited")}
	translator := NewHyDETranslator(DefaultHyDEConfig(), completion)

	exp, err := translator.Expand(context.Background(), "query")
	require.NoError(t, err)

	assert.Equal(t, "query", exp.Expanded)
	assert.True(t, exp.Degraded)
}

func TestHyDE_PropagateProviderFailure(t *testing.T) {
	cfg := DefaultHyDEConfig()
	cfg.FallbackToOriginal = false
	completion := &stubCompletion{model: "gpt-4o-mini", err: errors.New("rate limited")}
	translator := NewHyDETranslator(cfg, completion)

	_, err := translator.Expand(context.Background(), "query")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProviderFailure)
}

func TestHyDE_EmptyCompletionDegrades(t *testing.T) {
	completion := &stubCompletion{model: "gpt-4o-mini", text: "   \n"}
	translator := NewHyDETranslator(DefaultHyDEConfig(), completion)

	exp, err := translator.Expand(context.Background(), "query")
	require.NoError(t, err)

	assert.Equal(t, "query", exp.Expanded)
	assert.True(t, exp.Degraded)
}
