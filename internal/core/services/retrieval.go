package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/tanmayhire99/finrag/internal/core/domain"
	"github.com/tanmayhire99/finrag/internal/core/ports/driven"
	"github.com/tanmayhire99/finrag/internal/core/ports/driving"
	"github.com/tanmayhire99/finrag/internal/logger"
)

// DefaultSearchLimit applies when the caller does not set one.
const DefaultSearchLimit = 5

// RetrievalEngine answers queries: HyDE expansion, embedding, then
// cosine search against the vector store.
type RetrievalEngine struct {
	translator *HyDETranslator
	embedder   driven.EmbeddingService
	store      driven.VectorStore
}

var _ driving.Retriever = (*RetrievalEngine)(nil)

// NewRetrievalEngine wires the engine. A nil translator disables query
// expansion.
func NewRetrievalEngine(translator *HyDETranslator, embedder driven.EmbeddingService, store driven.VectorStore) *RetrievalEngine {
	return &RetrievalEngine{
		translator: translator,
		embedder:   embedder,
		store:      store,
	}
}

// Search runs one retrieval call. The original and expanded query are
// both reported so callers can see what was actually embedded.
func (e *RetrievalEngine) Search(ctx context.Context, query string, opts domain.SearchOptions) (domain.SearchResponse, error) {
	query = strings.TrimSpace(query)
	resp := domain.SearchResponse{
		Processing: domain.ProcessingInfo{OriginalQuery: query, ExpandedQuery: query},
	}

	if query == "" {
		return resp, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if e.embedder == nil {
		return resp, fmt.Errorf("%w: cannot search", domain.ErrEmbeddingUnavailable)
	}

	logger.Section("Retrieval")
	logger.Info("query: %s", query)

	if e.translator != nil {
		expansion, err := e.translator.Expand(ctx, query)
		if err != nil {
			return resp, err
		}
		resp.Processing.ExpandedQuery = expansion.Expanded
		resp.Processing.ExpansionCached = expansion.Cached
		if expansion.Expanded != query {
			logger.Debug("expanded query (%d chars, cached=%v)", len(expansion.Expanded), expansion.Cached)
		}
	}

	vector, err := e.embedder.Embed(ctx, resp.Processing.ExpandedQuery)
	if err != nil {
		return resp, fmt.Errorf("%w: embed query: %v", domain.ErrProviderFailure, err)
	}

	if opts.Limit <= 0 {
		opts.Limit = DefaultSearchLimit
	}

	results, err := e.store.Search(ctx, vector, opts)
	if err != nil {
		return resp, fmt.Errorf("vector search: %w", err)
	}
	resp.Results = results

	logger.Info("found %d results", len(results))
	for i, r := range results {
		logger.Debug("  %d. %s (%d) similarity=%.4f", i+1, r.PDFName, r.Year, r.Similarity)
	}
	return resp, nil
}
