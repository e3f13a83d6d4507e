package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/tanmayhire99/finrag/internal/core/domain"
	"github.com/tanmayhire99/finrag/internal/logger"
)

var (
	watchYear    int
	watchDocType string

	// watchSettle is how long a file must be quiet before ingestion;
	// PDFs are usually copied in, not written atomically.
	watchSettle = 2 * time.Second
)

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Watch a directory and ingest new PDFs",
	Long: `Watches a directory and ingests every PDF that appears in it.
Content-hash deduplication makes repeated events harmless: an already
indexed document is skipped, not re-embedded.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().IntVar(&watchYear, "year", 0, "reporting year for ingested documents")
	watchCmd.Flags().StringVar(&watchDocType, "doc-type", "", "document type for ingested documents")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return errors.New("watch target must be a directory")
	}

	if err := ensureServices(cmd.Context()); err != nil {
		return err
	}
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s for PDFs (ctrl-c to stop)\n", dir)

	// A write event restarts the file's settle timer; the file is
	// ingested once it stops changing.
	pending := make(map[string]*time.Timer)
	done := make(chan string)

	for {
		select {
		case <-ctx.Done():
			return nil

		case path := <-done:
			delete(pending, path)
			ingestWatched(ctx, cmd, path)

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".pdf") {
				continue
			}

			path := event.Name
			if timer, ok := pending[path]; ok {
				timer.Reset(watchSettle)
				continue
			}
			pending[path] = time.AfterFunc(watchSettle, func() {
				select {
				case done <- path:
				case <-ctx.Done():
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)
		}
	}
}

func ingestWatched(ctx context.Context, cmd *cobra.Command, path string) {
	meta := domain.DocumentMetadata{
		PDFName: filepath.Base(path),
		PDFLink: path,
		Year:    watchYear,
		DocType: watchDocType,
	}

	report, err := ingestService.Ingest(ctx, path, meta)
	if err != nil {
		cmd.PrintErrf("✗ %s: %v\n", path, err)
		return
	}
	printReport(cmd, meta.PDFName, report)
}
