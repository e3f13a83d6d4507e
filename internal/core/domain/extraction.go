package domain

// PDFKind classifies a PDF as carrying a native text layer or being a
// scan that needs OCR before extraction.
type PDFKind int

const (
	// PDFNative has an extractable text layer.
	PDFNative PDFKind = iota

	// PDFScanned is image-based and needs OCR.
	PDFScanned
)

// String returns the kind name.
func (k PDFKind) String() string {
	if k == PDFScanned {
		return "scanned"
	}
	return "native"
}

// ExtractionStatus distinguishes how extraction produced its text, so
// callers can tell "succeeded with degraded quality" from "failed"
// without inspecting errors.
type ExtractionStatus int

const (
	// ExtractionNative means the native text layer was sufficient.
	ExtractionNative ExtractionStatus = iota

	// ExtractionOCR means OCR produced the text.
	ExtractionOCR

	// ExtractionDegraded means OCR was needed but unavailable or empty;
	// the text is whatever the native pass found, possibly nothing.
	ExtractionDegraded
)

// String returns the status name.
func (s ExtractionStatus) String() string {
	switch s {
	case ExtractionOCR:
		return "ocr"
	case ExtractionDegraded:
		return "degraded"
	default:
		return "native"
	}
}

// Extraction is the result of extracting text from a PDF.
type Extraction struct {
	// Text is the extracted text, possibly empty. Callers must treat an
	// empty result as "no chunks", not as an error.
	Text string

	// Status records which path produced Text.
	Status ExtractionStatus

	// Pages is the page count of the source document.
	Pages int
}

// OCRUsed reports whether the text came from an OCR pass.
func (e Extraction) OCRUsed() bool {
	return e.Status == ExtractionOCR
}
