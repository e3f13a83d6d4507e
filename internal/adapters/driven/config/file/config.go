// Package file loads the finrag configuration from a TOML file.
//
// The configuration is a typed, immutable snapshot: it is read once at
// startup, validated, and passed by value into the components that need
// it. Secrets come from the environment, never from the file.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/tanmayhire99/finrag/internal/core/domain"
)

// DefaultConfigDir is the directory under the user's home that holds
// config.toml.
const DefaultConfigDir = ".finrag"

// Config is the full application configuration.
type Config struct {
	Verbose bool `toml:"verbose"`

	Embedding  EmbeddingConfig  `toml:"embedding"`
	Completion CompletionConfig `toml:"completion"`
	Store      StoreConfig      `toml:"store"`
	Chunking   ChunkingConfig   `toml:"chunking"`
	Extraction ExtractionConfig `toml:"extraction"`
	OCR        OCRConfig        `toml:"ocr"`
	HyDE       HyDEConfig       `toml:"hyde"`
	Search     SearchConfig     `toml:"search"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	// Provider is "ollama" or "openai".
	Provider string `toml:"provider"`

	Model      string `toml:"model"`
	BaseURL    string `toml:"base_url"`
	Dimensions int    `toml:"dimensions"`

	// RequestsPerMinute throttles the openai provider.
	RequestsPerMinute int `toml:"requests_per_minute"`

	// APIKey is filled from OPENAI_API_KEY, never from the file.
	APIKey string `toml:"-"`
}

// CompletionConfig configures the HyDE completion provider.
type CompletionConfig struct {
	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"`

	// APIKey is filled from OPENAI_API_KEY, never from the file.
	APIKey string `toml:"-"`
}

// StoreConfig selects and configures the vector store.
type StoreConfig struct {
	// Backend is "postgres" or "memory".
	Backend string `toml:"backend"`

	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Database string `toml:"database"`
	SSLMode  string `toml:"ssl_mode"`
	Table    string `toml:"table"`

	// Password is filled from FINRAG_DB_PASSWORD, never from the file.
	Password string `toml:"-"`
}

// ChunkingConfig configures the chunker.
type ChunkingConfig struct {
	// Mode is "words" or "paragraphs".
	Mode string `toml:"mode"`

	ChunkWords   int     `toml:"chunk_words"`
	OverlapRatio float64 `toml:"overlap_ratio"`
	MinWords     int     `toml:"min_words"`
	ChunkChars   int     `toml:"chunk_chars"`
	OverlapChars int     `toml:"overlap_chars"`
}

// ExtractionConfig configures the PDF extractor thresholds.
type ExtractionConfig struct {
	NativeTextThreshold int `toml:"native_text_threshold"`
	SamplePages         int `toml:"sample_pages"`
	MinCharsPerPage     int `toml:"min_chars_per_page"`
}

// OCRConfig configures the OCR backends.
type OCRConfig struct {
	Enabled        bool   `toml:"enabled"`
	Language       string `toml:"language"`
	DPI            int    `toml:"dpi"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// HyDEConfig configures query expansion.
type HyDEConfig struct {
	Enabled            bool    `toml:"enabled"`
	MaxTokens          int     `toml:"max_tokens"`
	Temperature        float64 `toml:"temperature"`
	FallbackToOriginal bool    `toml:"fallback_to_original"`
	CacheResponses     bool    `toml:"cache_responses"`
}

// SearchConfig holds retrieval defaults.
type SearchConfig struct {
	Limit               int     `toml:"limit"`
	SimilarityThreshold float64 `toml:"similarity_threshold"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Embedding: EmbeddingConfig{
			Provider:          "ollama",
			Model:             "nomic-embed-text",
			Dimensions:        768,
			RequestsPerMinute: 60,
		},
		Completion: CompletionConfig{
			Model: "gpt-4o-mini",
		},
		Store: StoreConfig{
			Backend:  "postgres",
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Database: "finrag",
			SSLMode:  "disable",
		},
		Chunking: ChunkingConfig{
			Mode:         "words",
			ChunkWords:   500,
			OverlapRatio: 0.2,
			MinWords:     50,
			ChunkChars:   1000,
			OverlapChars: 200,
		},
		Extraction: ExtractionConfig{
			NativeTextThreshold: 100,
			SamplePages:         3,
			MinCharsPerPage:     100,
		},
		OCR: OCRConfig{
			Enabled:        true,
			Language:       "eng",
			DPI:            300,
			TimeoutSeconds: 300,
		},
		HyDE: HyDEConfig{
			Enabled:            true,
			MaxTokens:          300,
			Temperature:        0.7,
			FallbackToOriginal: true,
			CacheResponses:     true,
		},
		Search: SearchConfig{
			Limit: 5,
		},
	}
}

// DefaultPath returns ~/.finrag/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultConfigDir, "config.toml"), nil
}

// Load reads the configuration at path, merging it over the defaults.
// An empty path resolves to DefaultPath; a missing file yields the
// defaults. Secrets are then overlaid from the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return cfg, fmt.Errorf("resolve config path: %w", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: parse config %s: %v", domain.ErrInvalidInput, path, err)
	}

	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overlays secrets from the environment.
func applyEnv(cfg *Config) {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.Embedding.APIKey = key
		cfg.Completion.APIKey = key
	}
	if pw := os.Getenv("FINRAG_DB_PASSWORD"); pw != "" {
		cfg.Store.Password = pw
	}
}

// Validate rejects settings that can only end in confusing runtime
// failures.
func (c Config) Validate() error {
	switch c.Embedding.Provider {
	case "ollama", "openai":
	default:
		return fmt.Errorf("%w: unknown embedding provider %q", domain.ErrInvalidInput, c.Embedding.Provider)
	}

	switch c.Store.Backend {
	case "postgres", "memory":
	default:
		return fmt.Errorf("%w: unknown store backend %q", domain.ErrInvalidInput, c.Store.Backend)
	}

	switch c.Chunking.Mode {
	case "words", "paragraphs":
	default:
		return fmt.Errorf("%w: unknown chunking mode %q", domain.ErrInvalidInput, c.Chunking.Mode)
	}

	if c.Chunking.OverlapRatio < 0 || c.Chunking.OverlapRatio >= 1 {
		return fmt.Errorf("%w: overlap_ratio must be in [0, 1)", domain.ErrInvalidInput)
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("%w: embedding dimensions must be positive", domain.ErrInvalidInput)
	}
	return nil
}
