package domain

// SearchOptions configures a retrieval query.
type SearchOptions struct {
	// Limit is the maximum number of results (default 5).
	Limit int

	// SimilarityThreshold drops results scoring below it. Zero keeps
	// everything.
	SimilarityThreshold float64

	// Year, when non-zero, restricts results to chunks from that year.
	Year int

	// DocType, when non-empty, restricts results to that document type.
	DocType string
}

// ProcessingInfo exposes how a query was transformed before the vector
// search, for observability.
type ProcessingInfo struct {
	// OriginalQuery is the caller's query text.
	OriginalQuery string `json:"original_query"`

	// ExpandedQuery is the text that was actually embedded. Equal to
	// OriginalQuery when HyDE is disabled or degraded.
	ExpandedQuery string `json:"expanded_query"`

	// ExpansionCached reports whether the expansion came from the cache.
	ExpansionCached bool `json:"expansion_cached"`
}

// SearchResponse is the full result of a retrieval call.
type SearchResponse struct {
	Results    []SimilarityResult `json:"results"`
	Processing ProcessingInfo     `json:"processing_info"`
}
