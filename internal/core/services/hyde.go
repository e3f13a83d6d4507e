package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/tanmayhire99/finrag/internal/core/domain"
	"github.com/tanmayhire99/finrag/internal/core/ports/driven"
	"github.com/tanmayhire99/finrag/internal/logger"
)

// HyDE prompt. The completion model writes a hypothetical document in
// the corpus register; its embedding lands closer to real document
// chunks than the embedding of a short natural-language question.
const (
	hydeSystemPrompt = "You are a financial analyst writing professional financial documents."
	hydeUserPrompt   = "Write a professional financial document that would answer this query: %s"
)

// HyDEConfig configures query expansion.
type HyDEConfig struct {
	// Enabled toggles expansion. Disabled means queries pass through
	// unchanged.
	Enabled bool

	// MaxTokens bounds the generated document length.
	MaxTokens int

	// Temperature controls generation randomness.
	Temperature float64

	// FallbackToOriginal degrades to the raw query on provider failure
	// instead of propagating the error.
	FallbackToOriginal bool

	// CacheResponses memoises expansions per (query, model) pair.
	CacheResponses bool
}

// DefaultHyDEConfig returns the standard expansion configuration.
func DefaultHyDEConfig() HyDEConfig {
	return HyDEConfig{
		Enabled:            true,
		MaxTokens:          300,
		Temperature:        0.7,
		FallbackToOriginal: true,
		CacheResponses:     true,
	}
}

// Expansion is the outcome of translating one query.
type Expansion struct {
	// Original is the caller's query text.
	Original string

	// Expanded is the text to embed. Equal to Original when expansion is
	// disabled, degraded or unavailable.
	Expanded string

	// Cached reports whether Expanded came from the cache.
	Cached bool

	// Degraded reports that expansion was attempted and failed.
	Degraded bool
}

// HyDETranslator expands queries into hypothetical answer documents.
// Each translator owns its cache; two translators never share state.
type HyDETranslator struct {
	cfg        HyDEConfig
	completion driven.CompletionService

	mu    sync.RWMutex
	cache map[string]string
}

// NewHyDETranslator creates a translator. A nil completion service is
// allowed and behaves as if expansion were disabled.
func NewHyDETranslator(cfg HyDEConfig, completion driven.CompletionService) *HyDETranslator {
	return &HyDETranslator{
		cfg:        cfg,
		completion: completion,
		cache:      make(map[string]string),
	}
}

// Expand translates query into a hypothetical document. The error is
// non-nil only when the provider fails and FallbackToOriginal is off.
func (t *HyDETranslator) Expand(ctx context.Context, query string) (Expansion, error) {
	exp := Expansion{Original: query, Expanded: query}

	if !t.cfg.Enabled || t.completion == nil {
		return exp, nil
	}

	key := t.cacheKey(query)
	if t.cfg.CacheResponses {
		if cached, ok := t.lookup(key); ok {
			logger.Debug("HyDE cache hit for query: %s", query)
			exp.Expanded = cached
			exp.Cached = true
			return exp, nil
		}
	}

	text, err := t.completion.Complete(ctx, hydeSystemPrompt,
		fmt.Sprintf(hydeUserPrompt, query), driven.CompletionOptions{
			MaxTokens:   t.cfg.MaxTokens,
			Temperature: t.cfg.Temperature,
		})
	if err != nil || strings.TrimSpace(text) == "" {
		if err == nil {
			err = fmt.Errorf("%w: empty completion", domain.ErrProviderFailure)
		}
		if t.cfg.FallbackToOriginal {
			logger.Warn("HyDE expansion failed, using original query: %v", err)
			exp.Degraded = true
			return exp, nil
		}
		return exp, fmt.Errorf("%w: hyde expansion: %v", domain.ErrProviderFailure, err)
	}

	text = strings.TrimSpace(text)
	if t.cfg.CacheResponses {
		t.store(key, text)
	}

	logger.Debug("HyDE expanded %d-char query into %d-char document", len(query), len(text))
	exp.Expanded = text
	return exp, nil
}

// cacheKey keys entries by query and model so a model change never
// serves stale expansions.
func (t *HyDETranslator) cacheKey(query string) string {
	return domain.Fingerprint(t.completion.ModelName() + "\x00" + query)
}

func (t *HyDETranslator) lookup(key string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	text, ok := t.cache[key]
	return text, ok
}

func (t *HyDETranslator) store(key, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cache[key] = text
}
