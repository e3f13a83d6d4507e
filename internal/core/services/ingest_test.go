package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanmayhire99/finrag/internal/adapters/driven/storage/memory"
	"github.com/tanmayhire99/finrag/internal/chunker"
	"github.com/tanmayhire99/finrag/internal/core/domain"
	"github.com/tanmayhire99/finrag/internal/core/ports/driven"
)

// stubExtractor returns a fixed extraction regardless of path.
type stubExtractor struct {
	extraction domain.Extraction
	err        error
}

var _ driven.TextExtractor = (*stubExtractor)(nil)

func (s *stubExtractor) Extract(ctx context.Context, pdfPath string) (domain.Extraction, error) {
	return s.extraction, s.err
}

// stubEmbedder produces deterministic 3-dimensional vectors and counts
// how many texts were actually embedded.
type stubEmbedder struct {
	embedded   []string
	batchCalls int
	err        error
}

var _ driven.EmbeddingService = (*stubEmbedder)(nil)

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.embedded = append(s.embedded, text)
	return vectorFor(text), nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	s.batchCalls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		s.embedded = append(s.embedded, text)
		out[i] = vectorFor(text)
	}
	return out, nil
}

func (s *stubEmbedder) Dimensions() int                { return 3 }
func (s *stubEmbedder) ModelName() string              { return "stub-embed" }
func (s *stubEmbedder) Ping(ctx context.Context) error { return nil }
func (s *stubEmbedder) Close() error                   { return nil }

// vectorFor derives a stable unit-ish vector from the text so distinct
// texts land in distinct directions.
func vectorFor(text string) []float32 {
	h := domain.Fingerprint(text)
	return []float32{
		float32(h[0]) / 255,
		float32(h[1]) / 255,
		float32(h[2]) / 255,
	}
}

func tempPDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 stub"), 0o644))
	return path
}

func paragraphs(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = strings.Repeat("sentence ", 10) + "paragraph"
	}
	return strings.Join(parts, "\n\n")
}

func testMeta() domain.DocumentMetadata {
	return domain.DocumentMetadata{
		PDFName: "acme-annual-2023.pdf",
		PDFLink: "https://example.com/acme-annual-2023.pdf",
		Year:    2023,
		DocType: "annual_report",
	}
}

func TestIngest_EndToEnd(t *testing.T) {
	text := "alpha beta gamma delta epsilon zeta eta theta iota kappa lambda mu"
	extractor := &stubExtractor{extraction: domain.Extraction{Text: text, Status: domain.ExtractionNative, Pages: 2}}
	embedder := &stubEmbedder{}
	store := memory.NewStore(3)

	// Window 4, no overlap: twelve words become three chunks.
	pipeline := NewIngestPipeline(extractor, chunker.New(
		chunker.WithChunkWords(4), chunker.WithOverlapRatio(0), chunker.WithMinWords(1),
	), embedder, store)

	report, err := pipeline.Ingest(context.Background(), tempPDF(t), testMeta())
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.NotEmpty(t, report.FileHash)
	assert.Equal(t, 3, report.ChunksInserted)
	assert.Equal(t, 0, report.ChunksSkipped)
	assert.False(t, report.OCRUsed)
	assert.Equal(t, 1, embedder.batchCalls)

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalChunks)
}

func TestIngest_Idempotent(t *testing.T) {
	extractor := &stubExtractor{extraction: domain.Extraction{Text: paragraphs(3), Status: domain.ExtractionNative}}
	embedder := &stubEmbedder{}
	store := memory.NewStore(3)
	pipeline := NewIngestPipeline(extractor, chunker.New(), embedder, store)
	ctx := context.Background()

	first, err := pipeline.Ingest(ctx, tempPDF(t), testMeta())
	require.NoError(t, err)
	require.Positive(t, first.ChunksInserted)

	embedsAfterFirst := len(embedder.embedded)

	second, err := pipeline.Ingest(ctx, tempPDF(t), testMeta())
	require.NoError(t, err)

	assert.Zero(t, second.ChunksInserted)
	assert.Equal(t, first.ChunksInserted, second.ChunksSkipped)

	// The dedup gate sits before the embedder: a re-ingest must not
	// spend a single embedding call.
	assert.Equal(t, embedsAfterFirst, len(embedder.embedded))
}

func TestIngest_DedupAcrossDocuments(t *testing.T) {
	extractor := &stubExtractor{extraction: domain.Extraction{Text: paragraphs(2), Status: domain.ExtractionNative}}
	embedder := &stubEmbedder{}
	store := memory.NewStore(3)
	pipeline := NewIngestPipeline(extractor, chunker.New(), embedder, store)
	ctx := context.Background()

	_, err := pipeline.Ingest(ctx, tempPDF(t), testMeta())
	require.NoError(t, err)

	other := testMeta()
	other.PDFName = "acme-annual-2024.pdf"
	other.Year = 2024

	report, err := pipeline.Ingest(ctx, tempPDF(t), other)
	require.NoError(t, err)
	assert.Zero(t, report.ChunksInserted, "identical text from another document must be skipped")
}

func TestIngest_EmptyExtraction(t *testing.T) {
	extractor := &stubExtractor{extraction: domain.Extraction{Text: "   ", Status: domain.ExtractionDegraded}}
	embedder := &stubEmbedder{}
	pipeline := NewIngestPipeline(extractor, chunker.New(), embedder, memory.NewStore(3))

	report, err := pipeline.Ingest(context.Background(), tempPDF(t), testMeta())
	require.NoError(t, err, "empty text is a no-op, not an error")

	assert.Zero(t, report.ChunksInserted)
	assert.Zero(t, embedder.batchCalls)
}

func TestIngest_OCRUsedPropagates(t *testing.T) {
	extractor := &stubExtractor{extraction: domain.Extraction{Text: paragraphs(1), Status: domain.ExtractionOCR}}
	store := memory.NewStore(3)
	pipeline := NewIngestPipeline(extractor, chunker.New(), &stubEmbedder{}, store)

	report, err := pipeline.Ingest(context.Background(), tempPDF(t), testMeta())
	require.NoError(t, err)

	assert.True(t, report.OCRUsed)
	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, report.ChunksInserted, stats.OCRChunks)
}

func TestIngest_MissingFile(t *testing.T) {
	pipeline := NewIngestPipeline(&stubExtractor{}, chunker.New(), &stubEmbedder{}, memory.NewStore(3))

	_, err := pipeline.Ingest(context.Background(), "/nonexistent/report.pdf", testMeta())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIngest_InvalidMetadata(t *testing.T) {
	pipeline := NewIngestPipeline(&stubExtractor{}, chunker.New(), &stubEmbedder{}, memory.NewStore(3))

	_, err := pipeline.Ingest(context.Background(), tempPDF(t), domain.DocumentMetadata{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIngest_EmbedderFailure(t *testing.T) {
	extractor := &stubExtractor{extraction: domain.Extraction{Text: paragraphs(2), Status: domain.ExtractionNative}}
	embedder := &stubEmbedder{err: errors.New("model not loaded")}
	store := memory.NewStore(3)
	pipeline := NewIngestPipeline(extractor, chunker.New(), embedder, store)

	_, err := pipeline.Ingest(context.Background(), tempPDF(t), testMeta())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProviderFailure)

	// Nothing half-written.
	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalChunks)
}

func TestIngest_NoEmbedder(t *testing.T) {
	pipeline := NewIngestPipeline(&stubExtractor{}, chunker.New(), nil, memory.NewStore(3))

	_, err := pipeline.Ingest(context.Background(), tempPDF(t), testMeta())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}
