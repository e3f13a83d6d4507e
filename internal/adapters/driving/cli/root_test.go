package cli

import (
	"context"

	"github.com/tanmayhire99/finrag/internal/adapters/driven/storage/memory"
	"github.com/tanmayhire99/finrag/internal/core/domain"
)

// mockIngestor returns a canned report.
type mockIngestor struct {
	report domain.IngestReport
	err    error
	calls  []string
}

func (m *mockIngestor) Ingest(ctx context.Context, pdfPath string, meta domain.DocumentMetadata) (domain.IngestReport, error) {
	m.calls = append(m.calls, pdfPath)
	return m.report, m.err
}

// mockRetriever returns a canned response and records the options of
// the last call.
type mockRetriever struct {
	resp domain.SearchResponse
	err  error
	opts domain.SearchOptions
}

func (m *mockRetriever) Search(ctx context.Context, query string, opts domain.SearchOptions) (domain.SearchResponse, error) {
	m.opts = opts
	resp := m.resp
	if resp.Processing.OriginalQuery == "" {
		resp.Processing.OriginalQuery = query
		resp.Processing.ExpandedQuery = query
	}
	return resp, m.err
}

func mockResults() []domain.SimilarityResult {
	return []domain.SimilarityResult{
		{
			Content:    "Revenue grew twelve percent driven by subscription volume.",
			PDFName:    "annual-2023.pdf",
			Year:       2023,
			DocType:    "annual_report",
			ChunkIndex: 4,
			Similarity: 0.87,
		},
	}
}

// setupTestServices swaps the package services for mocks and returns a
// restore func.
func setupTestServices() func() {
	oldIngest, oldSearch, oldStore := ingestService, searchService, vectorStore

	ingestService = &mockIngestor{report: domain.IngestReport{RunID: "test-run", ChunksInserted: 3}}
	searchService = &mockRetriever{resp: domain.SearchResponse{Results: mockResults()}}
	vectorStore = memory.NewStore(3)

	return func() {
		ingestService, searchService, vectorStore = oldIngest, oldSearch, oldStore
	}
}
