package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show statistics about the indexed corpus",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output statistics as JSON")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	if err := ensureServices(cmd.Context()); err != nil {
		return err
	}
	if vectorStore == nil {
		return errors.New("vector store not configured")
	}

	stats, err := vectorStore.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("stats failed: %w", err)
	}

	if statsJSON {
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal stats: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Chunks:     %d (%d from OCR)\n", stats.TotalChunks, stats.OCRChunks)
	cmd.Printf("Documents:  %d\n", stats.UniqueDocuments)
	cmd.Printf("Doc types:  %d\n", stats.UniqueDocTypes)
	if stats.UniqueYears > 0 {
		cmd.Printf("Years:      %d (%d-%d)\n", stats.UniqueYears, stats.EarliestYear, stats.LatestYear)
	}
	return nil
}
