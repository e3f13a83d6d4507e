package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tanmayhire99/finrag/internal/chunker"
	"github.com/tanmayhire99/finrag/internal/core/domain"
	"github.com/tanmayhire99/finrag/internal/core/ports/driven"
	"github.com/tanmayhire99/finrag/internal/core/ports/driving"
	"github.com/tanmayhire99/finrag/internal/logger"
)

// IngestPipeline drives one document through extraction, chunking,
// deduplication, embedding and storage.
type IngestPipeline struct {
	extractor driven.TextExtractor
	chunker   *chunker.Chunker
	embedder  driven.EmbeddingService
	store     driven.VectorStore
}

var _ driving.Ingestor = (*IngestPipeline)(nil)

// NewIngestPipeline wires the pipeline from its driven ports.
func NewIngestPipeline(extractor driven.TextExtractor, ch *chunker.Chunker, embedder driven.EmbeddingService, store driven.VectorStore) *IngestPipeline {
	if ch == nil {
		ch = chunker.New()
	}
	return &IngestPipeline{
		extractor: extractor,
		chunker:   ch,
		embedder:  embedder,
		store:     store,
	}
}

// Ingest processes one PDF. Re-ingesting an unchanged document is a
// no-op: every chunk is caught by the dedup gate before any embedding
// call is made.
func (p *IngestPipeline) Ingest(ctx context.Context, pdfPath string, meta domain.DocumentMetadata) (domain.IngestReport, error) {
	start := time.Now()
	report := domain.IngestReport{RunID: uuid.New().String()}

	logger.Section("Ingestion")
	logger.Info("run %s: ingesting %s", report.RunID, pdfPath)

	if err := meta.Validate(); err != nil {
		return report, err
	}
	if p.embedder == nil {
		return report, fmt.Errorf("%w: cannot ingest", domain.ErrEmbeddingUnavailable)
	}

	fileHash, err := domain.FileHash(pdfPath)
	if err != nil {
		return report, err
	}
	report.FileHash = fileHash

	extraction, err := p.extractor.Extract(ctx, pdfPath)
	if err != nil {
		return report, fmt.Errorf("extract %s: %w", pdfPath, err)
	}
	report.OCRUsed = extraction.OCRUsed()
	if extraction.Status == domain.ExtractionDegraded {
		logger.Warn("degraded extraction for %s: proceeding with partial text", pdfPath)
	}

	if strings.TrimSpace(extraction.Text) == "" {
		logger.Warn("no text extracted from %s, nothing to index", pdfPath)
		report.Duration = time.Since(start)
		return report, nil
	}

	pieces := p.chunker.Chunk(extraction.Text)
	if len(pieces) == 0 {
		report.Duration = time.Since(start)
		return report, nil
	}
	logger.Debug("split %s into %d chunks (%d pages, %s extraction)",
		meta.PDFName, len(pieces), extraction.Pages, extraction.Status)

	fresh, skipped, err := p.dedupGate(ctx, pieces, extraction.OCRUsed())
	if err != nil {
		return report, err
	}
	report.ChunksSkipped = skipped

	if len(fresh) == 0 {
		logger.Info("all %d chunks already indexed, skipping %s", skipped, meta.PDFName)
		report.Duration = time.Since(start)
		return report, nil
	}

	texts := make([]string, len(fresh))
	for i, c := range fresh {
		texts[i] = c.Content
	}
	embeddings, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return report, fmt.Errorf("%w: embed batch of %d: %v", domain.ErrProviderFailure, len(fresh), err)
	}

	inserted, err := p.store.Store(ctx, meta, fresh, embeddings)
	if err != nil {
		return report, fmt.Errorf("store chunks for %s: %w", meta.PDFName, err)
	}
	report.ChunksInserted = inserted

	// A concurrent writer can win the insert race between the gate check
	// and our transaction; those rows count as skipped, not failed.
	report.ChunksSkipped += len(fresh) - inserted
	report.Duration = time.Since(start)

	logger.Info("run %s: inserted %d, skipped %d in %s",
		report.RunID, report.ChunksInserted, report.ChunksSkipped, report.Duration.Round(time.Millisecond))
	return report, nil
}

// dedupGate drops chunks whose content hash is already stored, and
// collapses in-batch duplicates, so no duplicate text is ever embedded.
func (p *IngestPipeline) dedupGate(ctx context.Context, pieces []string, ocrUsed bool) ([]domain.Chunk, int, error) {
	fresh := make([]domain.Chunk, 0, len(pieces))
	seen := make(map[string]struct{}, len(pieces))
	skipped := 0

	for i, text := range pieces {
		chunk := domain.NewChunk(i, text, ocrUsed)

		if _, dup := seen[chunk.ContentHash]; dup {
			skipped++
			continue
		}
		seen[chunk.ContentHash] = struct{}{}

		exists, err := p.store.HasChunk(ctx, chunk.ContentHash)
		if err != nil {
			return nil, 0, fmt.Errorf("dedup check: %w", err)
		}
		if exists {
			skipped++
			continue
		}
		fresh = append(fresh, chunk)
	}

	return fresh, skipped, nil
}
