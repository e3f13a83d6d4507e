// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - VectorStore: Chunk persistence and similarity search
//   - EmbeddingService: Generates fixed-dimension vectors for text
//   - TextExtractor: Produces text from a PDF path
//
// # Optional Interfaces
//
// These can be nil - the pipeline degrades gracefully:
//
//   - CompletionService: Language model completions. Without it, HyDE
//     query expansion is disabled and the raw query is embedded.
//   - OCREngine: Recovers text from scanned PDFs. Without it, scanned
//     documents degrade to whatever native text exists.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
