// Package knowledge implements the retrieval index over PostgreSQL with
// pgvector. It owns embedding generation for both documents and queries,
// so callers deal only in text.
package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"

	"github.com/finaipro/colombiagpt/internal/log"
)

// Embedder converts text into a fixed-length embedding vector.
// Implemented by googleai.Client in production and by fakes in tests.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// DB is the database surface the store needs, satisfied by *pgxpool.Pool
// and pgx.Tx alike.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// searchTimeout bounds a vector search so a slow index scan cannot hold a
// request open indefinitely.
const searchTimeout = 10 * time.Second

// maxTopK caps how many results a single search may request.
const maxTopK = 50

// Store manages indexed chunks with vector similarity search.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	db       DB
	embedder Embedder
	logger   log.Logger
}

// New creates a Store.
func New(db DB, embedder Embedder, logger log.Logger) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Store{db: db, embedder: embedder, logger: logger}, nil
}

// Add embeds a document's content and upserts it.
func (s *Store) Add(ctx context.Context, doc Document) error {
	if doc.ID == "" {
		return fmt.Errorf("document ID must not be empty")
	}
	if doc.Content == "" {
		return fmt.Errorf("document %q has empty content", doc.ID)
	}

	vec, err := s.embed(ctx, doc.Content)
	if err != nil {
		return fmt.Errorf("embedding document %q: %w", doc.ID, err)
	}

	metadata, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("marshaling metadata for %q: %w", doc.ID, err)
	}

	createdAt := doc.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO documents (id, content, embedding, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE
		 SET content = EXCLUDED.content,
		     embedding = EXCLUDED.embedding,
		     metadata = EXCLUDED.metadata,
		     created_at = EXCLUDED.created_at`,
		doc.ID, doc.Content, vec, metadata, createdAt,
	)
	if err != nil {
		return fmt.Errorf("upserting document %q: %w", doc.ID, err)
	}

	s.logger.Debug("document indexed", "id", doc.ID, "content_len", len(doc.Content))
	return nil
}

// Search embeds the query and returns up to topK documents ordered by
// cosine similarity descending. An empty index yields an empty slice,
// not an error.
func (s *Store) Search(ctx context.Context, query string, topK int) ([]Result, error) {
	if query == "" {
		return []Result{}, nil
	}
	if topK <= 0 {
		topK = 5
	}
	if topK > maxTopK {
		topK = maxTopK
	}

	searchCtx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	vec, err := s.embed(searchCtx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	rows, err := s.db.Query(searchCtx,
		`SELECT id, content, metadata, created_at, 1 - (embedding <=> $1) AS similarity
		 FROM documents
		 ORDER BY embedding <=> $1
		 LIMIT $2`,
		vec, topK,
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("search query timeout: %w", err)
		}
		return nil, fmt.Errorf("searching documents: %w", err)
	}
	defer rows.Close()

	return s.scanResults(rows)
}

// Count returns the number of indexed documents.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int64
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM documents`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return int(count), nil
}

// DeleteBySource removes every document ingested from the given source,
// so re-ingestion replaces a document corpus atomically enough for a
// single-writer offline pipeline.
func (s *Store) DeleteBySource(ctx context.Context, sourceID string) (int, error) {
	if sourceID == "" {
		return 0, fmt.Errorf("sourceID must not be empty")
	}

	filter, err := json.Marshal(map[string]string{MetaSource: sourceID})
	if err != nil {
		return 0, fmt.Errorf("marshaling source filter: %w", err)
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM documents WHERE metadata @> $1`, filter)
	if err != nil {
		return 0, fmt.Errorf("deleting documents for %q: %w", sourceID, err)
	}

	deleted := int(tag.RowsAffected())
	if deleted > 0 {
		s.logger.Info("documents removed before re-ingestion", "source", sourceID, "count", deleted)
	}
	return deleted, nil
}

func (s *Store) embed(ctx context.Context, text string) (pgvector.Vector, error) {
	values, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return pgvector.Vector{}, err
	}
	if len(values) == 0 {
		return pgvector.Vector{}, fmt.Errorf("empty embedding returned")
	}
	return pgvector.NewVector(values), nil
}

func (s *Store) scanResults(rows pgx.Rows) ([]Result, error) {
	results := make([]Result, 0)
	for rows.Next() {
		var (
			doc        Document
			metadata   []byte
			similarity float64
		)
		if err := rows.Scan(&doc.ID, &doc.Content, &metadata, &doc.CreatedAt, &similarity); err != nil {
			return nil, fmt.Errorf("scanning search row: %w", err)
		}
		if err := json.Unmarshal(metadata, &doc.Metadata); err != nil {
			s.logger.Warn("failed to parse document metadata", "id", doc.ID, "error", err)
			doc.Metadata = map[string]string{}
		}
		results = append(results, Result{Document: doc, Similarity: similarity})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading search rows: %w", err)
	}
	return results, nil
}
