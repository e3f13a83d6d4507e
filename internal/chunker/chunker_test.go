package chunker

import (
	"fmt"
	"strings"
	"testing"
)

// wordSequence builds n distinct words "w0 w1 ... w(n-1)".
func wordSequence(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(words, " ")
}

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := New()
		if c.chunkWords != DefaultChunkWords {
			t.Errorf("expected chunkWords %d, got %d", DefaultChunkWords, c.chunkWords)
		}
		if c.overlapRatio != DefaultOverlapRatio {
			t.Errorf("expected overlapRatio %v, got %v", DefaultOverlapRatio, c.overlapRatio)
		}
		if c.minWords != DefaultMinWords {
			t.Errorf("expected minWords %d, got %d", DefaultMinWords, c.minWords)
		}
	})

	t.Run("invalid values ignored", func(t *testing.T) {
		c := New(WithChunkWords(0), WithOverlapRatio(1.5), WithMinWords(-1))
		if c.chunkWords != DefaultChunkWords {
			t.Errorf("expected default chunkWords, got %d", c.chunkWords)
		}
		if c.overlapRatio != DefaultOverlapRatio {
			t.Errorf("expected default overlapRatio, got %v", c.overlapRatio)
		}
		if c.minWords != DefaultMinWords {
			t.Errorf("expected default minWords, got %d", c.minWords)
		}
	})

	t.Run("paragraph overlap exceeds budget", func(t *testing.T) {
		c := New(WithChunkChars(100), WithOverlapChars(150))
		if c.overlapChars >= c.chunkChars {
			t.Error("overlapChars should be reduced when it exceeds chunkChars")
		}
	})
}

func TestChunk_Empty(t *testing.T) {
	c := New()
	if got := c.Chunk("   \n\t "); got != nil {
		t.Errorf("expected nil for blank input, got %v", got)
	}
}

func TestChunk_ShortTextSingleChunk(t *testing.T) {
	c := New()
	text := wordSequence(120)
	chunks := c.Chunk(text)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != text {
		t.Error("short text should be returned unchanged")
	}
}

func TestChunk_WordWindow_1200Words(t *testing.T) {
	// 1200 unique words, window 500, overlap ratio 0.2 (100 words):
	// windows start at 0, 400 and 800, so word counts are 500, 500
	// and 400 (the last carrying 100 overlap + 300 new words).
	c := New(WithChunkWords(500), WithOverlapRatio(0.2), WithMinWords(50))
	chunks := c.Chunk(wordSequence(1200))

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}

	wantCounts := []int{500, 500, 400}
	for i, chunk := range chunks {
		got := len(strings.Fields(chunk))
		if got != wantCounts[i] {
			t.Errorf("chunk %d: expected %d words, got %d", i, wantCounts[i], got)
		}
	}

	// Overlap: chunk 2 starts with the last 100 words of chunk 1.
	if !strings.HasPrefix(chunks[1], "w400 ") {
		t.Errorf("chunk 1 should start at word 400, got %q", chunks[1][:20])
	}
	if !strings.HasPrefix(chunks[2], "w800 ") {
		t.Errorf("chunk 2 should start at word 800, got %q", chunks[2][:20])
	}
}

func TestChunk_WordWindow_OrderPreserved(t *testing.T) {
	c := New(WithChunkWords(100), WithOverlapRatio(0.2), WithMinWords(10))
	source := wordSequence(950)
	chunks := c.Chunk(source)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	// Each chunk's first word must appear later in the source than the
	// previous chunk's first word.
	prev := -1
	for i, chunk := range chunks {
		first := strings.Fields(chunk)[0]
		pos := strings.Index(source, first+" ")
		if pos <= prev {
			t.Errorf("chunk %d is not after chunk %d in source order", i, i-1)
		}
		prev = pos
	}
}

func TestChunk_WordWindow_MinWordsDropsTail(t *testing.T) {
	// Window 10, overlap 5, step 5, min 8. Twelve words produce a full
	// window and a 7-word tail, which is below the minimum.
	c := New(WithChunkWords(10), WithOverlapRatio(0.5), WithMinWords(8))
	chunks := c.Chunk(wordSequence(12))

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk after tail drop, got %d", len(chunks))
	}
	if got := len(strings.Fields(chunks[0])); got != 10 {
		t.Errorf("expected 10-word chunk, got %d", got)
	}
}

func TestChunk_Paragraphs(t *testing.T) {
	c := New(WithMode(ModeParagraphs), WithChunkChars(100), WithOverlapChars(20))

	para := strings.Repeat("abcdefghi ", 6) // 60 chars
	text := para + "\n\n" + para + "\n\n" + para

	chunks := c.Chunk(text)
	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}

	// The second buffer is seeded with the tail of the first flush.
	seed := strings.TrimSpace(para)
	seed = seed[len(seed)-19:] // 20-char seed, leading space trimmed on flush
	if !strings.Contains(chunks[1], seed) {
		t.Errorf("chunk 1 should carry overlap seed %q", seed)
	}
}

func TestChunk_Paragraphs_SingleOversizedParagraph(t *testing.T) {
	// One paragraph over budget is emitted whole, never split.
	c := New(WithMode(ModeParagraphs), WithChunkChars(50), WithOverlapChars(10))
	text := strings.Repeat("x", 200)

	chunks := c.Chunk(text)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if len(chunks[0]) != 200 {
		t.Errorf("oversized paragraph should stay whole, got %d chars", len(chunks[0]))
	}
}
