package driven

import (
	"context"

	"github.com/tanmayhire99/finrag/internal/core/domain"
)

// TextExtractor produces text from a PDF on disk, deciding internally
// whether the native text layer suffices or OCR is needed.
type TextExtractor interface {
	// Extract returns the document text. A missing file is a fatal
	// domain.ErrNotFound; every other failure degrades along the
	// native → OCR → native fallback chain, surfacing as an Extraction
	// with degraded status rather than an error.
	Extract(ctx context.Context, pdfPath string) (domain.Extraction, error)
}

// OCREngine recovers text from a scanned PDF.
type OCREngine interface {
	// Run OCRs the document at pdfPath and returns the recognised text.
	// Returns domain.ErrNoOCRAvailable when no backend could produce
	// text in this deployment.
	Run(ctx context.Context, pdfPath string) (string, error)
}

// CommandRunner executes an external command and returns its combined
// output. Subprocess-backed adapters depend on this instead of os/exec
// so tests can substitute a mock.
type CommandRunner interface {
	// Run executes name with args, honouring ctx cancellation.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)

	// LookPath reports whether name resolves to an executable.
	LookPath(name string) bool
}
