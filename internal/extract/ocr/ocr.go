// Package ocr recovers text from scanned PDFs through external tools.
//
// Two backends are tried in preference order: ocrmypdf, which rebuilds
// the PDF with a text layer, and a pdftoppm + tesseract pipeline that
// rasterises pages and recognises them one by one. Both run as
// subprocesses through the CommandRunner port so tests never need the
// tools installed.
package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tanmayhire99/finrag/internal/core/domain"
	"github.com/tanmayhire99/finrag/internal/core/ports/driven"
	"github.com/tanmayhire99/finrag/internal/logger"
)

// Default backend settings.
const (
	DefaultLanguage = "eng"
	DefaultDPI      = 300
	DefaultTimeout  = 5 * time.Minute
)

// Config holds OCR backend settings.
type Config struct {
	// Enabled toggles OCR entirely. Disabled behaves as if no backend
	// were installed.
	Enabled bool

	// Language is the tesseract/ocrmypdf language code.
	Language string

	// DPI is the rasterisation resolution for the tesseract backend.
	DPI int

	// Timeout bounds each backend attempt. On timeout the attempt fails
	// and the next backend gets a fresh budget.
	Timeout time.Duration
}

// DefaultConfig returns the standard OCR settings.
func DefaultConfig() Config {
	return Config{
		Enabled:  true,
		Language: DefaultLanguage,
		DPI:      DefaultDPI,
		Timeout:  DefaultTimeout,
	}
}

// Engine implements driven.OCREngine over external OCR tools.
type Engine struct {
	cfg    Config
	runner driven.CommandRunner

	// extractText reads the text layer of an OCRed PDF; injected so the
	// ocrmypdf backend can reuse the native extractor without importing
	// it.
	extractText func(path string) (string, error)
}

var _ driven.OCREngine = (*Engine)(nil)

// NewEngine creates an OCR engine. extractText is required for the
// ocrmypdf backend; when nil, only the tesseract backend is used.
func NewEngine(cfg Config, runner driven.CommandRunner, extractText func(path string) (string, error)) *Engine {
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.DPI <= 0 {
		cfg.DPI = DefaultDPI
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Engine{
		cfg:         cfg,
		runner:      runner,
		extractText: extractText,
	}
}

// Run OCRs the document, trying each available backend in order.
// Returns domain.ErrNoOCRAvailable when no backend produced text.
func (e *Engine) Run(ctx context.Context, pdfPath string) (string, error) {
	if !e.cfg.Enabled {
		return "", fmt.Errorf("%w: disabled by configuration", domain.ErrNoOCRAvailable)
	}

	attempted := false

	if e.extractText != nil && e.runner.LookPath("ocrmypdf") {
		attempted = true
		text, err := e.runOCRmyPDF(ctx, pdfPath)
		if err == nil && strings.TrimSpace(text) != "" {
			return text, nil
		}
		if err == nil {
			err = fmt.Errorf("empty text layer after OCR")
		}
		logger.Warn("ocrmypdf backend failed for %s: %v", pdfPath, err)
	}

	if e.runner.LookPath("pdftoppm") && e.runner.LookPath("tesseract") {
		attempted = true
		text, err := e.runTesseract(ctx, pdfPath)
		if err == nil && strings.TrimSpace(text) != "" {
			return text, nil
		}
		if err == nil {
			err = fmt.Errorf("no text recognised")
		}
		logger.Warn("tesseract backend failed for %s: %v", pdfPath, err)
	}

	if attempted {
		return "", fmt.Errorf("%w: all backends failed for %s", domain.ErrNoOCRAvailable, pdfPath)
	}
	return "", fmt.Errorf("%w: install ocrmypdf or pdftoppm+tesseract", domain.ErrNoOCRAvailable)
}

// runOCRmyPDF rewrites the PDF with a recognised text layer, then
// extracts that layer.
func (e *Engine) runOCRmyPDF(ctx context.Context, pdfPath string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	dir, err := os.MkdirTemp("", "finrag-ocr-*")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	out := filepath.Join(dir, "ocred.pdf")
	_, err = e.runner.Run(ctx, "ocrmypdf",
		"--language", e.cfg.Language,
		"--deskew",
		"--force-ocr",
		"--output-type", "pdf",
		pdfPath, out)
	if err != nil {
		return "", fmt.Errorf("ocrmypdf: %w", err)
	}

	text, err := e.extractText(out)
	if err != nil {
		return "", fmt.Errorf("read OCRed text layer: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// runTesseract rasterises each page to PNG and recognises them in
// order. pdftoppm zero-pads page numbers, so lexical order is page
// order.
func (e *Engine) runTesseract(ctx context.Context, pdfPath string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	dir, err := os.MkdirTemp("", "finrag-ocr-*")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	_, err = e.runner.Run(ctx, "pdftoppm",
		"-r", strconv.Itoa(e.cfg.DPI),
		"-png",
		pdfPath, filepath.Join(dir, "page"))
	if err != nil {
		return "", fmt.Errorf("pdftoppm: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("list rasterised pages: %w", err)
	}

	var pages []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".png" {
			continue
		}
		out, err := e.runner.Run(ctx, "tesseract",
			filepath.Join(dir, entry.Name()), "stdout",
			"-l", e.cfg.Language)
		if err != nil {
			return "", fmt.Errorf("tesseract %s: %w", entry.Name(), err)
		}
		pages = append(pages, strings.TrimSpace(string(out)))
	}

	if len(pages) == 0 {
		return "", fmt.Errorf("pdftoppm produced no pages for %s", pdfPath)
	}
	return strings.Join(pages, "\n\n"), nil
}
