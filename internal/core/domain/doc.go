// Package domain defines the core business entities for finrag.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - DocumentMetadata: Declared metadata for an ingested PDF
//   - Chunk: A bounded, ordered slice of extracted text; the unit of
//     storage, deduplication and retrieval
//   - SimilarityResult: A stored chunk projected with a similarity score
//   - Extraction: The outcome of PDF text extraction, including the
//     degraded-fallback states
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
