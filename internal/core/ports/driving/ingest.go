package driving

import (
	"context"

	"github.com/tanmayhire99/finrag/internal/core/domain"
)

// Ingestor turns a PDF on disk into deduplicated, embedded chunks in the
// vector store.
type Ingestor interface {
	// Ingest processes one document. Independent documents may be
	// ingested concurrently; chunks within one document are stored in a
	// single sequential transaction.
	Ingest(ctx context.Context, pdfPath string, meta domain.DocumentMetadata) (domain.IngestReport, error)
}
