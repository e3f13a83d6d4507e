package driven

import (
	"context"

	"github.com/tanmayhire99/finrag/internal/core/domain"
)

// VectorStore persists chunk text, vectors and document metadata, and
// executes similarity search. It is the system of record: it owns the
// schema and index lifecycle and the connection pool.
type VectorStore interface {
	// EnsureSchema creates the chunk table and its indexes if they do
	// not exist. Idempotent; safe to call at every startup.
	EnsureSchema(ctx context.Context) error

	// HasChunk reports whether a chunk with the given content hash is
	// already stored. The dedup gate queries this before embedding.
	HasChunk(ctx context.Context, contentHash string) (bool, error)

	// Store persists the chunks of one document in a single transaction.
	// Preconditions: len(chunks) == len(embeddings), otherwise it fails
	// with domain.ErrSchemaMismatch and stores nothing. Chunks whose
	// content hash is already present are skipped, including a losing
	// writer in a concurrent insert race. Returns the number of rows
	// actually inserted. On any other per-row failure the whole batch
	// rolls back and zero chunks are persisted.
	Store(ctx context.Context, meta domain.DocumentMetadata, chunks []domain.Chunk, embeddings [][]float32) (int, error)

	// Search returns chunks ranked by cosine similarity to the query
	// vector, descending, with ties broken by insertion order. Equality
	// filters and the similarity threshold from opts apply before the
	// limit. An empty result is not an error.
	Search(ctx context.Context, query []float32, opts domain.SearchOptions) ([]domain.SimilarityResult, error)

	// Stats summarises the indexed corpus.
	Stats(ctx context.Context) (domain.StoreStats, error)

	// Close releases the connection pool.
	Close() error
}
