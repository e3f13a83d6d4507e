package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanmayhire99/finrag/internal/adapters/driven/storage/memory"
	"github.com/tanmayhire99/finrag/internal/core/domain"
)

// seedStore indexes a few chunks with known vectors so similarity
// ordering is predictable.
func seedStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore(3)
	ctx := context.Background()

	rows := []struct {
		meta      domain.DocumentMetadata
		content   string
		embedding []float32
	}{
		{testMeta(), "revenue grew twelve percent year over year", []float32{1, 0, 0}},
		{testMeta(), "operating margin compressed on input costs", []float32{0.9, 0.1, 0}},
		{
			domain.DocumentMetadata{PDFName: "call-2024.pdf", Year: 2024, DocType: "transcript"},
			"management guided conservatively for the next quarter",
			[]float32{0, 1, 0},
		},
	}
	for i, r := range rows {
		_, err := store.Store(ctx, r.meta,
			[]domain.Chunk{domain.NewChunk(i, r.content, false)},
			[][]float32{r.embedding})
		require.NoError(t, err)
	}
	return store
}

// directedEmbedder returns a fixed vector for every text and records
// the last text embedded.
type directedEmbedder struct {
	stubEmbedder
	vector []float32
	last   string
}

func (d *directedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	d.last = text
	return d.vector, nil
}

func TestSearch_RanksBySimilarity(t *testing.T) {
	embedder := &directedEmbedder{vector: []float32{1, 0, 0}}
	engine := NewRetrievalEngine(nil, embedder, seedStore(t))

	resp, err := engine.Search(context.Background(), "how did revenue develop?", domain.SearchOptions{Limit: 2})
	require.NoError(t, err)

	require.Len(t, resp.Results, 2)
	assert.Contains(t, resp.Results[0].Content, "revenue grew")
	assert.Contains(t, resp.Results[1].Content, "operating margin")
	assert.Greater(t, resp.Results[0].Similarity, resp.Results[1].Similarity)
}

func TestSearch_DefaultLimit(t *testing.T) {
	embedder := &directedEmbedder{vector: []float32{1, 0, 0}}
	engine := NewRetrievalEngine(nil, embedder, seedStore(t))

	resp, err := engine.Search(context.Background(), "anything", domain.SearchOptions{})
	require.NoError(t, err)

	// Three rows stored, default limit is five: all come back.
	assert.Len(t, resp.Results, 3)
}

func TestSearch_EmbedsExpandedQuery(t *testing.T) {
	completion := &stubCompletion{model: "gpt-4o-mini", text: "Hypothetical filing about revenue."}
	translator := NewHyDETranslator(DefaultHyDEConfig(), completion)
	embedder := &directedEmbedder{vector: []float32{1, 0, 0}}
	engine := NewRetrievalEngine(translator, embedder, seedStore(t))

	resp, err := engine.Search(context.Background(), "revenue?", domain.SearchOptions{})
	require.NoError(t, err)

	assert.Equal(t, "revenue?", resp.Processing.OriginalQuery)
	assert.Equal(t, completion.text, resp.Processing.ExpandedQuery)
	assert.Equal(t, completion.text, embedder.last, "the expansion, not the raw query, must be embedded")
	assert.False(t, resp.Processing.ExpansionCached)

	// Second identical call is served from the translator's cache.
	resp, err = engine.Search(context.Background(), "revenue?", domain.SearchOptions{})
	require.NoError(t, err)
	assert.True(t, resp.Processing.ExpansionCached)
	assert.Equal(t, 1, completion.calls)
}

func TestSearch_WithoutTranslator(t *testing.T) {
	embedder := &directedEmbedder{vector: []float32{0, 1, 0}}
	engine := NewRetrievalEngine(nil, embedder, seedStore(t))

	resp, err := engine.Search(context.Background(), "guidance", domain.SearchOptions{})
	require.NoError(t, err)

	assert.Equal(t, "guidance", resp.Processing.ExpandedQuery)
	assert.Equal(t, "guidance", embedder.last)
}

func TestSearch_Filters(t *testing.T) {
	embedder := &directedEmbedder{vector: []float32{1, 0, 0}}
	engine := NewRetrievalEngine(nil, embedder, seedStore(t))

	resp, err := engine.Search(context.Background(), "anything",
		domain.SearchOptions{Year: 2024, DocType: "transcript"})
	require.NoError(t, err)

	require.Len(t, resp.Results, 1)
	assert.Equal(t, "call-2024.pdf", resp.Results[0].PDFName)
}

func TestSearch_EmptyQuery(t *testing.T) {
	engine := NewRetrievalEngine(nil, &directedEmbedder{vector: []float32{1, 0, 0}}, seedStore(t))

	_, err := engine.Search(context.Background(), "   ", domain.SearchOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearch_NoEmbedder(t *testing.T) {
	engine := NewRetrievalEngine(nil, nil, seedStore(t))

	_, err := engine.Search(context.Background(), "query", domain.SearchOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}
