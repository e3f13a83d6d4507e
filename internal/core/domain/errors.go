package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a source file or entity does not exist.
	// Fatal for the ingestion of that document.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoOCRAvailable indicates no OCR backend could produce text.
	// Soft: the extractor falls back to whatever native text exists.
	ErrNoOCRAvailable = errors.New("no OCR backend available")

	// ErrSchemaMismatch indicates chunks and embeddings differ in length.
	// Fatal for that store call only; nothing is persisted.
	ErrSchemaMismatch = errors.New("chunks and embeddings length mismatch")

	// ErrStoreUnavailable indicates the vector store cannot be reached.
	// Retryable for reads, fatal per call for writes.
	ErrStoreUnavailable = errors.New("vector store unavailable")

	// ErrProviderFailure indicates an embedding or completion provider
	// error. Fatal for the call that needed it; HyDE expansion degrades
	// to the raw query instead of surfacing this.
	ErrProviderFailure = errors.New("provider failure")

	// ErrEmbeddingUnavailable indicates no embedding service is
	// configured. Ingestion and retrieval cannot run without one.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrCompletionUnavailable indicates no completion service is
	// configured. HyDE expansion is disabled without one.
	ErrCompletionUnavailable = errors.New("completion service unavailable")
)
