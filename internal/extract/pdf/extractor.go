// Package pdf extracts text from PDF files.
//
// The native text layer is tried first; when it is too sparse, the
// classifier samples the leading pages and, for image-based documents,
// extraction falls back to OCR. OCR failure degrades back to whatever
// native text exists rather than failing the document.
package pdf

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/tanmayhire99/finrag/internal/core/domain"
	"github.com/tanmayhire99/finrag/internal/core/ports/driven"
	"github.com/tanmayhire99/finrag/internal/logger"
)

// Threshold defaults. NativeTextThreshold gates the whole-document
// native pass; the classifier thresholds gate the per-page sample.
const (
	DefaultNativeTextThreshold = 100
	DefaultSamplePages         = 3
	DefaultMinCharsPerPage     = 100
)

// Config holds the extraction thresholds.
type Config struct {
	// NativeTextThreshold is the minimum trimmed character count for the
	// native text layer to be accepted without classification.
	NativeTextThreshold int

	// SamplePages is how many leading pages the classifier inspects.
	SamplePages int

	// MinCharsPerPage is the classifier's sparse-text cutoff: sampled
	// pages averaging fewer characters, while carrying images, mark the
	// document as scanned.
	MinCharsPerPage int
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		NativeTextThreshold: DefaultNativeTextThreshold,
		SamplePages:         DefaultSamplePages,
		MinCharsPerPage:     DefaultMinCharsPerPage,
	}
}

// Extractor implements driven.TextExtractor over the native PDF text
// layer with an optional OCR fallback.
type Extractor struct {
	cfg Config
	ocr driven.OCREngine

	// Indirection points for tests; production uses the pdf library.
	readText  func(path string) (string, int, error)
	readStats func(path string, pages int) ([]PageStat, error)
}

var _ driven.TextExtractor = (*Extractor)(nil)

// NewExtractor creates an extractor. A nil OCR engine means scanned
// documents degrade to their native text.
func NewExtractor(cfg Config, ocr driven.OCREngine) *Extractor {
	if cfg.NativeTextThreshold <= 0 {
		cfg.NativeTextThreshold = DefaultNativeTextThreshold
	}
	if cfg.SamplePages <= 0 {
		cfg.SamplePages = DefaultSamplePages
	}
	if cfg.MinCharsPerPage <= 0 {
		cfg.MinCharsPerPage = DefaultMinCharsPerPage
	}
	return &Extractor{
		cfg:       cfg,
		ocr:       ocr,
		readText:  readNativeText,
		readStats: readPageStats,
	}
}

// Extract returns the document text, preferring the native layer and
// falling back to OCR for scanned documents.
func (e *Extractor) Extract(ctx context.Context, pdfPath string) (domain.Extraction, error) {
	if _, err := os.Stat(pdfPath); err != nil {
		if os.IsNotExist(err) {
			return domain.Extraction{}, fmt.Errorf("%w: %s", domain.ErrNotFound, pdfPath)
		}
		return domain.Extraction{}, fmt.Errorf("stat %s: %w", pdfPath, err)
	}

	native, pages, err := e.readText(pdfPath)
	if err != nil {
		// An unparseable text layer is not fatal: the document may still
		// be recoverable through OCR.
		logger.Warn("native extraction failed for %s: %v", pdfPath, err)
		native = ""
	}
	native = strings.TrimSpace(native)

	if len(native) > e.cfg.NativeTextThreshold {
		logger.Debug("native text layer accepted for %s (%d chars, %d pages)", pdfPath, len(native), pages)
		return domain.Extraction{Text: native, Status: domain.ExtractionNative, Pages: pages}, nil
	}

	kind := e.classify(pdfPath)
	logger.Debug("sparse text layer in %s, classified as %s", pdfPath, kind)

	if kind == domain.PDFNative {
		// Genuinely short document; the sparse text is all there is.
		return domain.Extraction{Text: native, Status: domain.ExtractionNative, Pages: pages}, nil
	}

	if e.ocr != nil {
		text, err := e.ocr.Run(ctx, pdfPath)
		if err == nil && strings.TrimSpace(text) != "" {
			return domain.Extraction{Text: strings.TrimSpace(text), Status: domain.ExtractionOCR, Pages: pages}, nil
		}
		if err != nil {
			logger.Warn("OCR failed for %s: %v", pdfPath, err)
		}
	}

	logger.Warn("scanned document %s could not be OCRed, keeping %d chars of native text", pdfPath, len(native))
	return domain.Extraction{Text: native, Status: domain.ExtractionDegraded, Pages: pages}, nil
}

// classify samples the leading pages and decides native versus scanned.
// Any inspection failure defaults to scanned, so OCR gets a chance.
func (e *Extractor) classify(pdfPath string) domain.PDFKind {
	stats, err := e.readStats(pdfPath, e.cfg.SamplePages)
	if err != nil {
		logger.Debug("classification failed for %s, assuming scanned: %v", pdfPath, err)
		return domain.PDFScanned
	}
	return ClassifyStats(stats, e.cfg)
}

// ReadText returns the native text layer of the PDF at path. The OCR
// engine uses it to read back the text layer ocrmypdf produced.
func ReadText(path string) (string, error) {
	text, _, err := readNativeText(path)
	return text, err
}

// readNativeText extracts the text layer page by page, joining pages
// with a blank line. Unreadable pages are skipped.
func readNativeText(path string) (string, int, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	total := r.NumPage()
	pages := make([]string, 0, total)
	for i := 1; i <= total; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages = append(pages, text)
	}
	return strings.Join(pages, "\n\n"), total, nil
}
