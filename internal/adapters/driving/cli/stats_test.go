package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanmayhire99/finrag/internal/core/domain"
)

func TestStatsCmd_Empty(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"stats"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Chunks:     0")
}

func TestStatsCmd_WithData(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := vectorStore.Store(context.Background(),
		domain.DocumentMetadata{PDFName: "annual-2023.pdf", Year: 2023, DocType: "annual_report"},
		[]domain.Chunk{domain.NewChunk(0, "some indexed text", true)},
		[][]float32{{1, 0, 0}})
	require.NoError(t, err)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"stats"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err = rootCmd.Execute()

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Chunks:     1 (1 from OCR)")
	assert.Contains(t, out, "Documents:  1")
	assert.Contains(t, out, "2023-2023")
}

func TestStatsCmd_JSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"stats", "--json"})
	defer func() {
		rootCmd.SetArgs(nil)
		statsJSON = false // Reset flag
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "\"total_chunks\"")
}
