package cli

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/tanmayhire99/finrag/internal/adapters/driving/tui"
	"github.com/tanmayhire99/finrag/internal/core/domain"
)

var tuiLimit int

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Interactive search UI",
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().IntVarP(&tuiLimit, "limit", "n", 5, "maximum number of results per query")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	if err := ensureServices(cmd.Context()); err != nil {
		return err
	}
	if searchService == nil {
		return errors.New("search service not configured")
	}

	opts := domain.SearchOptions{
		Limit:               tuiLimit,
		SimilarityThreshold: cfg.Search.SimilarityThreshold,
	}
	if !cmd.Flags().Changed("limit") && cfg.Search.Limit > 0 {
		opts.Limit = cfg.Search.Limit
	}

	model := tui.New(searchService, opts)
	_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}
