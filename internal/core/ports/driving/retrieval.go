package driving

import (
	"context"

	"github.com/tanmayhire99/finrag/internal/core/domain"
)

// Retriever answers free-text queries by hybrid semantic retrieval.
type Retriever interface {
	// Search expands the query (HyDE), embeds the expansion and ranks
	// stored chunks by cosine similarity. Every call re-expands and
	// re-embeds; expansion-level caching is the only memoisation point.
	Search(ctx context.Context, query string, opts domain.SearchOptions) (domain.SearchResponse, error)
}
