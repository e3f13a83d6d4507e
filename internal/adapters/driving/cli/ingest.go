package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/tanmayhire99/finrag/internal/core/domain"
)

var (
	ingestName    string
	ingestLink    string
	ingestYear    int
	ingestDocType string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [pdf...]",
	Short: "Ingest PDF documents into the vector store",
	Long: `Extracts text from each PDF (falling back to OCR for scanned
documents), splits it into overlapping chunks, and stores embeddings
for every chunk not already indexed. Re-ingesting an unchanged
document is a no-op.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestName, "name", "", "document name (single file only; defaults to the file name)")
	ingestCmd.Flags().StringVar(&ingestLink, "link", "", "original document location (URL or path)")
	ingestCmd.Flags().IntVar(&ingestYear, "year", 0, "reporting year the document covers")
	ingestCmd.Flags().StringVar(&ingestDocType, "doc-type", "", "document type (annual_report, transcript, policy, amendment)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestName != "" && len(args) > 1 {
		return errors.New("--name applies to a single file; omit it to use file names")
	}

	if err := ensureServices(cmd.Context()); err != nil {
		return err
	}
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	failures := 0
	for _, path := range args {
		meta := domain.DocumentMetadata{
			PDFName: ingestName,
			PDFLink: ingestLink,
			Year:    ingestYear,
			DocType: ingestDocType,
		}
		if meta.PDFName == "" {
			meta.PDFName = filepath.Base(path)
		}
		if meta.PDFLink == "" {
			meta.PDFLink = path
		}

		report, err := ingestService.Ingest(cmd.Context(), path, meta)
		if err != nil {
			failures++
			cmd.PrintErrf("✗ %s: %v\n", path, err)
			continue
		}
		printReport(cmd, meta.PDFName, report)
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d documents failed", failures, len(args))
	}
	return nil
}

func printReport(cmd *cobra.Command, name string, report domain.IngestReport) {
	switch {
	case report.ChunksInserted > 0:
		cmd.Printf("✓ %s: %d chunks indexed", name, report.ChunksInserted)
	case report.ChunksSkipped > 0:
		cmd.Printf("✓ %s: already indexed", name)
	default:
		cmd.Printf("✓ %s: no usable text", name)
	}

	if report.ChunksSkipped > 0 && report.ChunksInserted > 0 {
		cmd.Printf(" (%d duplicates skipped)", report.ChunksSkipped)
	}
	if report.OCRUsed {
		cmd.Printf(" [ocr]")
	}
	cmd.Printf(" in %s\n", report.Duration.Round(time.Millisecond))
}
