package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tanmayhire99/finrag/internal/core/domain"
)

var (
	searchLimit     int
	searchYear      int
	searchDocType   string
	searchThreshold float64
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents",
	Long: `Answers a free-text question against the indexed corpus. The query
is expanded into a hypothetical answer document (HyDE), embedded, and
matched against stored chunks by cosine similarity.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 5, "maximum number of results")
	searchCmd.Flags().IntVar(&searchYear, "year", 0, "restrict results to a reporting year")
	searchCmd.Flags().StringVar(&searchDocType, "doc-type", "", "restrict results to a document type")
	searchCmd.Flags().Float64Var(&searchThreshold, "threshold", 0, "drop results below this similarity")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := ensureServices(cmd.Context()); err != nil {
		return err
	}
	if searchService == nil {
		return errors.New("search service not configured")
	}

	// Flags win; unset flags fall back to the [search] config section.
	opts := domain.SearchOptions{
		Limit:               searchLimit,
		Year:                searchYear,
		DocType:             searchDocType,
		SimilarityThreshold: searchThreshold,
	}
	if !cmd.Flags().Changed("limit") && cfg.Search.Limit > 0 {
		opts.Limit = cfg.Search.Limit
	}
	if !cmd.Flags().Changed("threshold") {
		opts.SimilarityThreshold = cfg.Search.SimilarityThreshold
	}

	resp, err := searchService.Search(cmd.Context(), args[0], opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, resp)
	}
	return outputSearchTable(cmd, resp)
}

func outputSearchJSON(cmd *cobra.Command, resp domain.SearchResponse) error {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, resp domain.SearchResponse) error {
	if resp.Processing.ExpandedQuery != resp.Processing.OriginalQuery {
		cmd.Printf("Query expanded (%d chars)\n", len(resp.Processing.ExpandedQuery))
	}

	if len(resp.Results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, r := range resp.Results {
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, r.PDFName, r.Similarity)
		if r.Year != 0 || r.DocType != "" {
			cmd.Printf("      %d %s", r.Year, r.DocType)
			if r.OCRProcessed {
				cmd.Printf(" [ocr]")
			}
			cmd.Println()
		}
		cmd.Printf("      %s\n", snippet(r.Content, 200))
		cmd.Println()
	}
	return nil
}

// snippet truncates content to limit runes on a word boundary.
func snippet(content string, limit int) string {
	runes := []rune(content)
	if len(runes) <= limit {
		return content
	}

	cut := limit
	for cut > 0 && runes[cut] != ' ' {
		cut--
	}
	if cut == 0 {
		cut = limit
	}
	return string(runes[:cut]) + "..."
}
