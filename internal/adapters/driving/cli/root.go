// Package cli implements the finrag command line interface.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	configfile "github.com/tanmayhire99/finrag/internal/adapters/driven/config/file"
	ollamaembed "github.com/tanmayhire99/finrag/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/tanmayhire99/finrag/internal/adapters/driven/embedding/openai"
	openaillm "github.com/tanmayhire99/finrag/internal/adapters/driven/llm/openai"
	"github.com/tanmayhire99/finrag/internal/adapters/driven/storage/memory"
	"github.com/tanmayhire99/finrag/internal/adapters/driven/storage/postgres"
	"github.com/tanmayhire99/finrag/internal/chunker"
	"github.com/tanmayhire99/finrag/internal/core/ports/driven"
	"github.com/tanmayhire99/finrag/internal/core/ports/driving"
	"github.com/tanmayhire99/finrag/internal/core/services"
	"github.com/tanmayhire99/finrag/internal/extract/ocr"
	pdfextract "github.com/tanmayhire99/finrag/internal/extract/pdf"
	"github.com/tanmayhire99/finrag/internal/logger"
)

var version = "0.1.0"

// Package-level services, wired on first use. Tests substitute these
// directly.
var (
	cfg           configfile.Config = configfile.Default()
	ingestService driving.Ingestor
	searchService driving.Retriever
	vectorStore   driven.VectorStore
	closers       []func() error
)

var (
	flagConfig  string
	flagVerbose bool
	flagStore   string
)

var rootCmd = &cobra.Command{
	Use:   "finrag",
	Short: "Ingest and search financial PDF documents",
	Long: `finrag turns financial PDFs (annual reports, earnings call
transcripts, policies) into a searchable vector index.

Documents are chunked, deduplicated by content hash, embedded and
stored in PostgreSQL with pgvector. Queries are expanded with HyDE
before the similarity search.`,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := configfile.Load(flagConfig)
		if err != nil {
			return err
		}
		cfg = loaded
		if flagVerbose || cfg.Verbose {
			logger.SetVerbose(true)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		for _, close := range closers {
			if err := close(); err != nil {
				logger.Warn("close: %v", err)
			}
		}
		closers = nil
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config.toml (default ~/.finrag/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&flagStore, "store", "", "override the store backend (postgres|memory)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ensureServices wires the pipeline on first use. Commands that do not
// touch the pipeline (version, help) never pay for a store connection.
func ensureServices(ctx context.Context) error {
	if ingestService != nil || searchService != nil {
		return nil
	}

	embedder, err := buildEmbedder()
	if err != nil {
		return err
	}
	closers = append(closers, embedder.Close)

	store, err := buildStore(ctx, embedder.Dimensions())
	if err != nil {
		return err
	}
	closers = append(closers, store.Close)
	vectorStore = store

	translator, err := buildTranslator()
	if err != nil {
		return err
	}

	ingestService = services.NewIngestPipeline(buildExtractor(), buildChunker(), embedder, store)
	searchService = services.NewRetrievalEngine(translator, embedder, store)
	return nil
}

func buildEmbedder() (driven.EmbeddingService, error) {
	switch cfg.Embedding.Provider {
	case "openai":
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:            cfg.Embedding.APIKey,
			BaseURL:           cfg.Embedding.BaseURL,
			Model:             cfg.Embedding.Model,
			Dimensions:        cfg.Embedding.Dimensions,
			RequestsPerMinute: cfg.Embedding.RequestsPerMinute,
		})
	default:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
		}), nil
	}
}

func buildStore(ctx context.Context, dimensions int) (driven.VectorStore, error) {
	backend := cfg.Store.Backend
	if flagStore != "" {
		backend = flagStore
	}

	var store driven.VectorStore
	switch backend {
	case "memory":
		logger.Warn("using the in-memory store: the index is lost on exit")
		store = memory.NewStore(dimensions)
	case "postgres":
		pg, err := postgres.NewStore(ctx, postgres.Config{
			Host:       cfg.Store.Host,
			Port:       cfg.Store.Port,
			User:       cfg.Store.User,
			Password:   cfg.Store.Password,
			Database:   cfg.Store.Database,
			SSLMode:    cfg.Store.SSLMode,
			Table:      cfg.Store.Table,
			Dimensions: dimensions,
		})
		if err != nil {
			return nil, err
		}
		store = pg
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}

	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

func buildTranslator() (*services.HyDETranslator, error) {
	if !cfg.HyDE.Enabled {
		return nil, nil
	}
	if cfg.Completion.APIKey == "" {
		logger.Warn("HyDE enabled but no completion API key set, queries pass through unexpanded")
		return nil, nil
	}

	completion, err := openaillm.NewCompletionService(openaillm.Config{
		APIKey:  cfg.Completion.APIKey,
		BaseURL: cfg.Completion.BaseURL,
		Model:   cfg.Completion.Model,
	})
	if err != nil {
		return nil, err
	}
	closers = append(closers, completion.Close)

	return services.NewHyDETranslator(services.HyDEConfig{
		Enabled:            true,
		MaxTokens:          cfg.HyDE.MaxTokens,
		Temperature:        cfg.HyDE.Temperature,
		FallbackToOriginal: cfg.HyDE.FallbackToOriginal,
		CacheResponses:     cfg.HyDE.CacheResponses,
	}, completion), nil
}

func buildExtractor() driven.TextExtractor {
	engine := ocr.NewEngine(ocr.Config{
		Enabled:  cfg.OCR.Enabled,
		Language: cfg.OCR.Language,
		DPI:      cfg.OCR.DPI,
		Timeout:  time.Duration(cfg.OCR.TimeoutSeconds) * time.Second,
	}, ocr.NewExecRunner(), pdfextract.ReadText)

	return pdfextract.NewExtractor(pdfextract.Config{
		NativeTextThreshold: cfg.Extraction.NativeTextThreshold,
		SamplePages:         cfg.Extraction.SamplePages,
		MinCharsPerPage:     cfg.Extraction.MinCharsPerPage,
	}, engine)
}

func buildChunker() *chunker.Chunker {
	opts := []chunker.Option{
		chunker.WithChunkWords(cfg.Chunking.ChunkWords),
		chunker.WithOverlapRatio(cfg.Chunking.OverlapRatio),
		chunker.WithMinWords(cfg.Chunking.MinWords),
		chunker.WithChunkChars(cfg.Chunking.ChunkChars),
		chunker.WithOverlapChars(cfg.Chunking.OverlapChars),
	}
	if cfg.Chunking.Mode == "paragraphs" {
		opts = append(opts, chunker.WithMode(chunker.ModeParagraphs))
	}
	return chunker.New(opts...)
}
