// Package chunker splits extracted document text into overlapping,
// size-bounded chunks.
//
// Two interchangeable modes exist: a word-window mode (primary) that
// slides a fixed-size window over the word sequence, and a
// paragraph-accumulation mode that packs whole paragraphs into a
// character budget. Both preserve source order.
package chunker

import (
	"strings"

	"github.com/tanmayhire99/finrag/internal/logger"
)

// Mode selects the chunking algorithm.
type Mode int

const (
	// ModeWords slides a word window with proportional overlap.
	ModeWords Mode = iota

	// ModeParagraphs accumulates paragraphs under a character budget.
	ModeParagraphs
)

// Default configuration values.
const (
	DefaultChunkWords   = 500
	DefaultOverlapRatio = 0.2
	DefaultMinWords     = 50
	DefaultChunkChars   = 1000
	DefaultOverlapChars = 200
)

// Chunker splits text into ordered chunk strings.
type Chunker struct {
	mode         Mode
	chunkWords   int
	overlapRatio float64
	minWords     int
	chunkChars   int
	overlapChars int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithMode selects the chunking algorithm.
func WithMode(m Mode) Option {
	return func(c *Chunker) {
		c.mode = m
	}
}

// WithChunkWords sets the window size in words.
func WithChunkWords(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.chunkWords = n
		}
	}
}

// WithOverlapRatio sets the fraction of the window carried into the
// next chunk. Values outside [0, 1) are ignored.
func WithOverlapRatio(r float64) Option {
	return func(c *Chunker) {
		if r >= 0 && r < 1 {
			c.overlapRatio = r
		}
	}
}

// WithMinWords sets the minimum words for a chunk to be emitted.
func WithMinWords(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.minWords = n
		}
	}
}

// WithChunkChars sets the character budget for paragraph mode.
func WithChunkChars(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.chunkChars = n
		}
	}
}

// WithOverlapChars sets the overlap seed length for paragraph mode.
func WithOverlapChars(n int) Option {
	return func(c *Chunker) {
		if n >= 0 {
			c.overlapChars = n
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		mode:         ModeWords,
		chunkWords:   DefaultChunkWords,
		overlapRatio: DefaultOverlapRatio,
		minWords:     DefaultMinWords,
		chunkChars:   DefaultChunkChars,
		overlapChars: DefaultOverlapChars,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.overlapChars >= c.chunkChars {
		c.overlapChars = c.chunkChars / 4
	}

	return c
}

// Chunk splits text into ordered chunks. Empty input yields an empty
// sequence with a logged warning, not an error.
func (c *Chunker) Chunk(text string) []string {
	if strings.TrimSpace(text) == "" {
		logger.Warn("empty text provided for chunking")
		return nil
	}

	if c.mode == ModeParagraphs {
		return c.chunkParagraphs(text)
	}
	return c.chunkWindow(text)
}

// chunkWindow slides a window of chunkWords words, advancing by
// chunkWords − overlap each step. Chunks shorter than minWords are
// dropped; the loop stops once the window has covered the tail.
func (c *Chunker) chunkWindow(text string) []string {
	words := strings.Fields(text)
	if len(words) <= c.chunkWords {
		return []string{text}
	}

	overlap := int(float64(c.chunkWords) * c.overlapRatio)
	step := c.chunkWords - overlap
	if step <= 0 {
		step = c.chunkWords
	}

	chunks := make([]string, 0, len(words)/step+1)
	for i := 0; i < len(words); i += step {
		end := i + c.chunkWords
		if end > len(words) {
			end = len(words)
		}

		window := words[i:end]
		if len(window) >= c.minWords {
			chunks = append(chunks, strings.Join(window, " "))
		}

		if i+c.chunkWords >= len(words) {
			break
		}
	}

	return chunks
}

// chunkParagraphs packs blank-line-separated paragraphs into a running
// buffer bounded by chunkChars. When a paragraph would overflow the
// budget, the buffer is flushed and the next buffer is seeded with the
// last overlapChars characters of the flushed one.
func (c *Chunker) chunkParagraphs(text string) []string {
	var chunks []string
	current := ""

	for _, paragraph := range strings.Split(text, "\n\n") {
		if len(current)+len(paragraph) > c.chunkChars && current != "" {
			chunks = append(chunks, strings.TrimSpace(current))

			seed := current
			if len(seed) > c.overlapChars {
				seed = seed[len(seed)-c.overlapChars:]
			}
			current = seed + paragraph
		} else {
			current += paragraph
		}
	}

	if strings.TrimSpace(current) != "" {
		chunks = append(chunks, strings.TrimSpace(current))
	}

	return chunks
}
