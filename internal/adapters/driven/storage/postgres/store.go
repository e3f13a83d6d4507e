// Package postgres implements the VectorStore port on PostgreSQL with
// the pgvector extension. It owns the schema, the ivfflat index and the
// connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	pgxvector "github.com/pgvector/pgvector-go/pgx"

	"github.com/tanmayhire99/finrag/internal/core/domain"
	"github.com/tanmayhire99/finrag/internal/core/ports/driven"
	"github.com/tanmayhire99/finrag/internal/logger"
)

// Schema constants. The ivfflat list count follows the pgvector
// guidance for corpora up to ~1M rows.
const (
	DefaultTable       = "financial_documents"
	ivfflatLists       = 100
	defaultConnTimeout = 10 * time.Second
)

// Config holds the connection and schema settings.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	// Dimensions is the embedding vector size the schema is created
	// with. Must match the embedding model.
	Dimensions int

	// Table is the chunk table name. Defaults to DefaultTable.
	Table string

	MaxConns       int
	MinConns       int
	ConnectTimeout time.Duration
}

// Validate checks the settings needed to build a connection string.
func (c Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("%w: postgres host is required", domain.ErrInvalidInput)
	}
	if c.Database == "" {
		return fmt.Errorf("%w: postgres database is required", domain.ErrInvalidInput)
	}
	if c.Dimensions <= 0 {
		return fmt.Errorf("%w: embedding dimensions must be positive", domain.ErrInvalidInput)
	}
	return nil
}

// ConnectionString renders the pgx connection string.
func (c Config) ConnectionString() string {
	port := c.Port
	if port == 0 {
		port = 5432
	}
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, port, c.User, c.Password, c.Database, sslMode)
}

// Store is the pgvector-backed chunk store.
type Store struct {
	pool  *pgxpool.Pool
	table string
	dims  int
}

var _ driven.VectorStore = (*Store)(nil)

// NewStore connects to PostgreSQL and verifies reachability.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = int32(cfg.MinConns)
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnTimeout
	}
	poolCfg.ConnConfig.ConnectTimeout = timeout
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvector.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping %s:%d: %v", domain.ErrStoreUnavailable, cfg.Host, cfg.Port, err)
	}

	table := cfg.Table
	if table == "" {
		table = DefaultTable
	}

	logger.Debug("connected to postgres %s/%s, table %s", cfg.Host, cfg.Database, table)
	return &Store{pool: pool, table: table, dims: cfg.Dimensions}, nil
}

// EnsureSchema creates the extension, table and indexes. Idempotent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	statements := []string{
		"CREATE EXTENSION IF NOT EXISTS vector",
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			content TEXT NOT NULL,
			embedding vector(%d),
			pdf_name VARCHAR(255) NOT NULL,
			pdf_link TEXT,
			year INTEGER,
			doc_type VARCHAR(100),
			chunk_index INTEGER NOT NULL,
			content_hash VARCHAR(64) NOT NULL UNIQUE,
			ocr_processed BOOLEAN NOT NULL DEFAULT FALSE,
			word_count INTEGER,
			char_count INTEGER,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, s.table, s.dims),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_embedding_idx ON %s
			USING ivfflat (embedding vector_cosine_ops) WITH (lists = %d)`,
			s.table, s.table, ivfflatLists),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_metadata_idx ON %s (pdf_name, year, doc_type)`,
			s.table, s.table),
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return wrapStoreErr("ensure schema", err)
		}
	}
	return nil
}

// HasChunk reports whether a chunk with the hash is stored.
func (s *Store) HasChunk(ctx context.Context, contentHash string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE content_hash = $1)", s.table),
		contentHash).Scan(&exists)
	if err != nil {
		return false, wrapStoreErr("has chunk", err)
	}
	return exists, nil
}

// Store inserts the chunks of one document in a single transaction.
// Duplicate content hashes, including a losing concurrent writer, are
// skipped through ON CONFLICT DO NOTHING.
func (s *Store) Store(ctx context.Context, meta domain.DocumentMetadata, chunks []domain.Chunk, embeddings [][]float32) (int, error) {
	if len(chunks) != len(embeddings) {
		return 0, fmt.Errorf("%w: %d chunks, %d embeddings", domain.ErrSchemaMismatch, len(chunks), len(embeddings))
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, wrapStoreErr("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	insert := fmt.Sprintf(`INSERT INTO %s
		(content, embedding, pdf_name, pdf_link, year, doc_type, chunk_index, content_hash, ocr_processed, word_count, char_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (content_hash) DO NOTHING`, s.table)

	inserted := 0
	for i, chunk := range chunks {
		tag, err := tx.Exec(ctx, insert,
			chunk.Content,
			pgvector.NewVector(embeddings[i]),
			meta.PDFName,
			meta.PDFLink,
			meta.Year,
			meta.DocType,
			chunk.Index,
			chunk.ContentHash,
			chunk.OCRProcessed,
			chunk.WordCount,
			chunk.CharCount,
		)
		if err != nil {
			return 0, wrapStoreErr(fmt.Sprintf("insert chunk %d", chunk.Index), err)
		}
		inserted += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, wrapStoreErr("commit", err)
	}
	return inserted, nil
}

// Search ranks chunks by cosine similarity to the query vector.
func (s *Store) Search(ctx context.Context, query []float32, opts domain.SearchOptions) ([]domain.SimilarityResult, error) {
	sql, args := buildSearchQuery(s.table, query, opts)

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrapStoreErr("search", err)
	}
	defer rows.Close()

	var results []domain.SimilarityResult
	for rows.Next() {
		var r domain.SimilarityResult
		if err := rows.Scan(&r.Content, &r.PDFName, &r.PDFLink, &r.Year, &r.DocType,
			&r.ChunkIndex, &r.OCRProcessed, &r.Similarity); err != nil {
			return nil, wrapStoreErr("scan result", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStoreErr("iterate results", err)
	}
	return results, nil
}

// buildSearchQuery assembles the similarity query with optional
// metadata filters. Ties in similarity break by id, i.e. insertion
// order.
func buildSearchQuery(table string, query []float32, opts domain.SearchOptions) (string, []any) {
	args := []any{pgvector.NewVector(query)}
	var conditions []string

	if opts.Year != 0 {
		args = append(args, opts.Year)
		conditions = append(conditions, fmt.Sprintf("year = $%d", len(args)))
	}
	if opts.DocType != "" {
		args = append(args, opts.DocType)
		conditions = append(conditions, fmt.Sprintf("doc_type = $%d", len(args)))
	}
	if opts.SimilarityThreshold > 0 {
		args = append(args, opts.SimilarityThreshold)
		conditions = append(conditions, fmt.Sprintf("1 - (embedding <=> $1) >= $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	args = append(args, opts.Limit)
	sql := fmt.Sprintf(`SELECT content, pdf_name, COALESCE(pdf_link, ''), COALESCE(year, 0), COALESCE(doc_type, ''),
		chunk_index, ocr_processed, 1 - (embedding <=> $1) AS similarity
		FROM %s%s
		ORDER BY similarity DESC, id ASC
		LIMIT $%d`, table, where, len(args))

	return sql, args
}

// Stats summarises the indexed corpus in one aggregate query.
func (s *Store) Stats(ctx context.Context) (domain.StoreStats, error) {
	var stats domain.StoreStats
	err := s.pool.QueryRow(ctx, fmt.Sprintf(`SELECT
		COUNT(*),
		COUNT(DISTINCT pdf_name),
		COUNT(DISTINCT year),
		COUNT(DISTINCT doc_type),
		COUNT(*) FILTER (WHERE ocr_processed),
		COALESCE(MIN(year), 0),
		COALESCE(MAX(year), 0)
		FROM %s`, s.table)).Scan(
		&stats.TotalChunks,
		&stats.UniqueDocuments,
		&stats.UniqueYears,
		&stats.UniqueDocTypes,
		&stats.OCRChunks,
		&stats.EarliestYear,
		&stats.LatestYear,
	)
	if err != nil {
		return domain.StoreStats{}, wrapStoreErr("stats", err)
	}
	return stats, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// wrapStoreErr classifies infrastructure errors: connectivity problems
// map to ErrStoreUnavailable so callers can tell "retry later" from
// "bad request".
func wrapStoreErr(op string, err error) error {
	if isConnectivityErr(err) {
		return fmt.Errorf("%w: %s: %v", domain.ErrStoreUnavailable, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// isConnectivityErr reports whether err looks like a reachability
// problem rather than a query problem.
func isConnectivityErr(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 08: connection exception. Class 57: operator
		// intervention (shutdown, crash recovery).
		return strings.HasPrefix(pgErr.Code, "08") || strings.HasPrefix(pgErr.Code, "57")
	}
	return false
}
