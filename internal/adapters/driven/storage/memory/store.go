// Package memory provides an in-memory VectorStore with the same
// semantics as the postgres adapter: store-wide content-hash dedup,
// cosine ranking with insertion-order tie-breaks, and metadata filters.
// It backs tests and the ephemeral --store memory mode.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/tanmayhire99/finrag/internal/core/domain"
	"github.com/tanmayhire99/finrag/internal/core/ports/driven"
)

type row struct {
	meta      domain.DocumentMetadata
	chunk     domain.Chunk
	embedding []float32
}

// Store is a mutex-guarded in-memory vector store.
type Store struct {
	mu         sync.RWMutex
	rows       []row
	byHash     map[string]struct{}
	dimensions int
}

var _ driven.VectorStore = (*Store)(nil)

// NewStore creates an empty store. dimensions fixes the accepted vector
// size; zero disables the check.
func NewStore(dimensions int) *Store {
	return &Store{
		byHash:     make(map[string]struct{}),
		dimensions: dimensions,
	}
}

// EnsureSchema is a no-op; the store has no schema to create.
func (s *Store) EnsureSchema(ctx context.Context) error {
	return nil
}

// HasChunk reports whether a chunk with the given hash is stored.
func (s *Store) HasChunk(ctx context.Context, contentHash string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byHash[contentHash]
	return ok, nil
}

// Store persists chunks, skipping content hashes already present. Like
// the postgres adapter's transaction, a failed batch leaves no rows
// behind: every vector is validated before the first mutation.
func (s *Store) Store(ctx context.Context, meta domain.DocumentMetadata, chunks []domain.Chunk, embeddings [][]float32) (int, error) {
	if len(chunks) != len(embeddings) {
		return 0, fmt.Errorf("%w: %d chunks, %d embeddings", domain.ErrSchemaMismatch, len(chunks), len(embeddings))
	}
	if s.dimensions > 0 {
		for _, embedding := range embeddings {
			if len(embedding) != s.dimensions {
				return 0, fmt.Errorf("%w: vector has %d dimensions, store expects %d",
					domain.ErrSchemaMismatch, len(embedding), s.dimensions)
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := 0
	for i, chunk := range chunks {
		if _, dup := s.byHash[chunk.ContentHash]; dup {
			continue
		}
		s.byHash[chunk.ContentHash] = struct{}{}
		s.rows = append(s.rows, row{meta: meta, chunk: chunk, embedding: embeddings[i]})
		inserted++
	}
	return inserted, nil
}

// Search ranks stored chunks by cosine similarity to query, descending,
// ties broken by insertion order.
func (s *Store) Search(ctx context.Context, query []float32, opts domain.SearchOptions) ([]domain.SimilarityResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]domain.SimilarityResult, 0, opts.Limit)
	for _, r := range s.rows {
		if opts.Year != 0 && r.meta.Year != opts.Year {
			continue
		}
		if opts.DocType != "" && r.meta.DocType != opts.DocType {
			continue
		}

		sim := cosineSimilarity(query, r.embedding)
		if opts.SimilarityThreshold > 0 && sim < opts.SimilarityThreshold {
			continue
		}

		results = append(results, domain.SimilarityResult{
			Content:      r.chunk.Content,
			PDFName:      r.meta.PDFName,
			PDFLink:      r.meta.PDFLink,
			Year:         r.meta.Year,
			DocType:      r.meta.DocType,
			ChunkIndex:   r.chunk.Index,
			OCRProcessed: r.chunk.OCRProcessed,
			Similarity:   sim,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results, nil
}

// Stats summarises the stored corpus.
func (s *Store) Stats(ctx context.Context) (domain.StoreStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := domain.StoreStats{TotalChunks: len(s.rows)}
	docs := make(map[string]struct{})
	years := make(map[int]struct{})
	types := make(map[string]struct{})

	for _, r := range s.rows {
		docs[r.meta.PDFName] = struct{}{}
		types[r.meta.DocType] = struct{}{}
		if r.meta.Year != 0 {
			years[r.meta.Year] = struct{}{}
			if stats.EarliestYear == 0 || r.meta.Year < stats.EarliestYear {
				stats.EarliestYear = r.meta.Year
			}
			if r.meta.Year > stats.LatestYear {
				stats.LatestYear = r.meta.Year
			}
		}
		if r.chunk.OCRProcessed {
			stats.OCRChunks++
		}
	}

	stats.UniqueDocuments = len(docs)
	stats.UniqueYears = len(years)
	stats.UniqueDocTypes = len(types)
	return stats, nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

// cosineSimilarity returns the cosine of the angle between a and b.
// Mismatched lengths or a zero vector yield 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
