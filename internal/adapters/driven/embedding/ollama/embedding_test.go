package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmbeddingService_Defaults(t *testing.T) {
	s := NewEmbeddingService(Config{})

	assert.Equal(t, DefaultModel, s.ModelName())
	assert.Equal(t, DefaultDimensions, s.Dimensions())
}

func TestEmbedBatch(t *testing.T) {
	var gotRequest embedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/embed", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))

		json.NewEncoder(w).Encode(embedResponse{
			Embeddings: [][]float64{{0.1, 0.2}, {0.3, 0.4}},
		})
	}))
	defer server.Close()

	s := NewEmbeddingService(Config{BaseURL: server.URL, Dimensions: 2})

	embeddings, err := s.EmbedBatch(context.Background(), []string{"first chunk", "second chunk"})
	require.NoError(t, err)

	assert.Equal(t, []string{"first chunk", "second chunk"}, gotRequest.Input)
	require.Len(t, embeddings, 2)
	assert.InDelta(t, 0.1, embeddings[0][0], 1e-6)
	assert.InDelta(t, 0.4, embeddings[1][1], 1e-6)
}

func TestEmbedBatch_Empty(t *testing.T) {
	s := NewEmbeddingService(Config{BaseURL: "http://localhost:1"})

	embeddings, err := s.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, embeddings)
}

func TestEmbedBatch_CountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embedResponse{Embeddings: [][]float64{{0.1}}})
	}))
	defer server.Close()

	s := NewEmbeddingService(Config{BaseURL: server.URL})

	_, err := s.EmbedBatch(context.Background(), []string{"a", "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "got 1 embeddings for 2 texts")
}

func TestEmbed_SingleText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embedResponse{Embeddings: [][]float64{{1, 2, 3}}})
	}))
	defer server.Close()

	s := NewEmbeddingService(Config{BaseURL: server.URL})

	embedding, err := s.Embed(context.Background(), "query text")
	require.NoError(t, err)
	assert.Len(t, embedding, 3)
}

func TestEmbedBatch_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	s := NewEmbeddingService(Config{BaseURL: server.URL})

	_, err := s.EmbedBatch(context.Background(), []string{"text"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := NewEmbeddingService(Config{BaseURL: server.URL})
	assert.NoError(t, s.Ping(context.Background()))
}

func TestPing_Unreachable(t *testing.T) {
	s := NewEmbeddingService(Config{BaseURL: "http://localhost:1"})
	assert.Error(t, s.Ping(context.Background()))
}
