package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// DocumentMetadata is the declared metadata for one ingested PDF.
// It is provided by the caller at ingestion time and copied onto every
// chunk row; the document itself is never updated in place.
type DocumentMetadata struct {
	// PDFName is the human-readable document name.
	PDFName string

	// PDFLink is the original location of the document (URL or path).
	PDFLink string

	// Year is the reporting year the document covers.
	Year int

	// DocType categorises the document (annual report, transcript,
	// policy, amendment).
	DocType string
}

// Validate checks that the metadata identifies a document.
func (m DocumentMetadata) Validate() error {
	if strings.TrimSpace(m.PDFName) == "" {
		return fmt.Errorf("%w: pdf name is required", ErrInvalidInput)
	}
	return nil
}

// Chunk is a contiguous, bounded slice of a document's extracted text.
// Chunks are immutable once created and are deduplicated store-wide by
// ContentHash: two chunks with identical text collapse to one stored row
// even when they come from different documents.
type Chunk struct {
	// Index is the zero-based position within the source document.
	// Indices follow source order and are never reordered.
	Index int

	// Content is the raw chunk text.
	Content string

	// ContentHash is the SHA-256 fingerprint of Content, the dedup and
	// idempotency key.
	ContentHash string

	// WordCount and CharCount describe Content.
	WordCount int
	CharCount int

	// OCRProcessed records whether the text came from an OCR pass.
	OCRProcessed bool
}

// NewChunk builds a Chunk from text, computing its fingerprint and counts.
func NewChunk(index int, content string, ocrProcessed bool) Chunk {
	return Chunk{
		Index:        index,
		Content:      content,
		ContentHash:  Fingerprint(content),
		WordCount:    len(strings.Fields(content)),
		CharCount:    len(content),
		OCRProcessed: ocrProcessed,
	}
}

// SimilarityResult is an ephemeral projection of a stored chunk plus its
// cosine similarity to a query vector. It exists only for the lifetime of
// a search call and is never persisted.
type SimilarityResult struct {
	Content      string  `json:"content"`
	PDFName      string  `json:"pdf_name"`
	PDFLink      string  `json:"pdf_link"`
	Year         int     `json:"year"`
	DocType      string  `json:"doc_type"`
	ChunkIndex   int     `json:"chunk_index"`
	OCRProcessed bool    `json:"ocr_processed"`
	Similarity   float64 `json:"similarity"`
}

// IngestReport is the outcome of one ingestion call.
type IngestReport struct {
	// RunID identifies this ingestion call in logs.
	RunID string `json:"run_id"`

	// FileHash is the whole-file SHA-256 of the source PDF,
	// independent of any chunk hash.
	FileHash string `json:"file_hash"`

	// ChunksInserted is the number of new chunks persisted.
	// Zero means either "no usable text" or "already fully indexed";
	// ChunksSkipped distinguishes the two.
	ChunksInserted int `json:"chunks_inserted"`

	// ChunksSkipped is the number of chunks dropped by the dedup gate.
	ChunksSkipped int `json:"chunks_skipped"`

	// OCRUsed records whether extraction fell back to OCR.
	OCRUsed bool `json:"ocr_used"`

	// Duration is the wall-clock time of the ingestion call.
	Duration time.Duration `json:"duration"`
}

// StoreStats summarises the indexed corpus.
type StoreStats struct {
	TotalChunks     int `json:"total_chunks"`
	UniqueDocuments int `json:"unique_documents"`
	UniqueYears     int `json:"unique_years"`
	UniqueDocTypes  int `json:"unique_doc_types"`
	OCRChunks       int `json:"ocr_chunks"`
	EarliestYear    int `json:"earliest_year"`
	LatestYear      int `json:"latest_year"`
}

// Fingerprint returns the hex-encoded SHA-256 of the chunk text.
// Exact-duplicate collapsing is intentional: identical phrasing across
// years or documents is stored once.
func Fingerprint(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// FileHash streams the file at path through SHA-256 and returns the hex
// digest. A missing file maps to ErrNotFound.
func FileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
