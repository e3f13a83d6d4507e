package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// The dimension is fixed per model and must match the vector store's
// schema, which is created with this dimension.
//
// Implementations may include:
//   - Ollama (nomic-embed-text, finance-tuned sentence transformers)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in one call to
	// amortise model-invocation overhead. The result is index-aligned
	// with texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 768, 1536).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
