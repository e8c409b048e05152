// Package knowledge stores document passages with vector embeddings in
// PostgreSQL + pgvector and retrieves the passages most similar to a query.
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"
	"google.golang.org/genai"
)

const (
	// VectorDimension is the embedding size stored in the passages table.
	// Must match the vector(N) column in the schema.
	VectorDimension = 768

	// EmbedTimeout bounds a single embedding call.
	EmbedTimeout = 15 * time.Second

	// searchTimeout bounds a vector similarity query.
	searchTimeout = 10 * time.Second

	// defaultTopK is how many passages a retrieval pulls.
	defaultTopK = 5

	// similarityFloor discards passages whose cosine similarity to the
	// query is too low to be useful context.
	similarityFloor = 0.45
)

// Querier is the database surface Store needs, satisfied by both
// *pgxpool.Pool and pgx.Tx. Tests substitute a fake.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Passage is one stored chunk of a source document.
type Passage struct {
	DocID      string
	ChunkIdx   int
	Content    string
	Similarity float64
}

// Store manages the passage corpus. Safe for concurrent use.
type Store struct {
	db       Querier
	embedder ai.Embedder
	logger   *slog.Logger
}

// NewStore creates a knowledge Store.
func NewStore(db Querier, embedder ai.Embedder, logger *slog.Logger) (*Store, error) {
	if db == nil {
		return nil, errors.New("db is required")
	}
	if embedder == nil {
		return nil, errors.New("embedder is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, embedder: embedder, logger: logger}, nil
}

// embed generates a vector embedding for the given text.
func (s *Store) embed(ctx context.Context, text string) (pgvector.Vector, error) {
	dim := int32(VectorDimension)
	resp, err := s.embedder.Embed(ctx, &ai.EmbedRequest{
		Input:   []*ai.Document{ai.DocumentFromText(text, nil)},
		Options: &genai.EmbedContentConfig{OutputDimensionality: &dim},
	})
	if err != nil {
		return pgvector.Vector{}, fmt.Errorf("embedding text: %w", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Embedding) == 0 {
		return pgvector.Vector{}, errors.New("empty embedding response")
	}
	return pgvector.NewVector(resp.Embeddings[0].Embedding), nil
}

// Add embeds and stores one passage. Re-adding the same (doc_id, chunk_idx)
// replaces the stored content and embedding.
func (s *Store) Add(ctx context.Context, docID string, chunkIdx int, content string) error {
	if docID == "" {
		return errors.New("doc id is required")
	}
	if strings.TrimSpace(content) == "" {
		return errors.New("content is required")
	}

	embedCtx, cancel := context.WithTimeout(ctx, EmbedTimeout)
	defer cancel()
	vec, err := s.embed(embedCtx, content)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO passages (doc_id, chunk_idx, content, embedding)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (doc_id, chunk_idx)
		 DO UPDATE SET content = EXCLUDED.content, embedding = EXCLUDED.embedding`,
		docID, chunkIdx, content, vec)
	if err != nil {
		return fmt.Errorf("inserting passage %s[%d]: %w", docID, chunkIdx, err)
	}

	s.logger.Debug("added passage", "doc_id", docID, "chunk_idx", chunkIdx, "content_length", len(content))
	return nil
}

// Search returns up to topK passages ordered by similarity, filtered by the
// similarity floor. A non-positive topK uses the default.
func (s *Store) Search(ctx context.Context, query string, topK int) ([]Passage, error) {
	if topK <= 0 {
		topK = defaultTopK
	}

	queryCtx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	vec, err := s.embed(queryCtx, query)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("query embedding timeout: %w", err)
		}
		return nil, err
	}

	rows, err := s.db.Query(queryCtx,
		`SELECT doc_id, chunk_idx, content, 1 - (embedding <=> $1) AS similarity
		 FROM passages
		 WHERE 1 - (embedding <=> $1) >= $2
		 ORDER BY embedding <=> $1
		 LIMIT $3`,
		vec, similarityFloor, topK)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("search query timeout: %w", err)
		}
		return nil, fmt.Errorf("searching passages: %w", err)
	}
	defer rows.Close()

	var passages []Passage
	for rows.Next() {
		var p Passage
		if err := rows.Scan(&p.DocID, &p.ChunkIdx, &p.Content, &p.Similarity); err != nil {
			return nil, fmt.Errorf("scanning passage: %w", err)
		}
		passages = append(passages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading passages: %w", err)
	}
	return passages, nil
}

// Retrieve searches for the query and renders the matching passages as one
// context string, exact duplicates removed, passages separated by "---".
// Returns "" when nothing relevant is stored.
func (s *Store) Retrieve(ctx context.Context, query string) (string, error) {
	passages, err := s.Search(ctx, query, defaultTopK)
	if err != nil {
		return "", err
	}
	return joinUnique(passages), nil
}

// Retriever binds the store to a fixed passage budget. The pipeline holds a
// Retriever rather than the Store so the budget comes from configuration
// instead of the package default.
type Retriever struct {
	store *Store
	topK  int
}

// Retriever returns a retrieval view of the store limited to topK passages
// per query. A non-positive topK uses the default.
func (s *Store) Retriever(topK int) *Retriever {
	return &Retriever{store: s, topK: topK}
}

// Retrieve renders the top matches for the query as one context string.
func (r *Retriever) Retrieve(ctx context.Context, query string) (string, error) {
	passages, err := r.store.Search(ctx, query, r.topK)
	if err != nil {
		return "", err
	}
	return joinUnique(passages), nil
}

// joinUnique drops exact duplicate contents, preserving order.
func joinUnique(passages []Passage) string {
	seen := make(map[string]bool, len(passages))
	var parts []string
	for _, p := range passages {
		if seen[p.Content] {
			continue
		}
		seen[p.Content] = true
		parts = append(parts, p.Content)
	}
	return strings.Join(parts, "\n---\n")
}

// DeleteDoc removes every passage of a source document. Used by ingestion
// before re-inserting a changed document.
func (s *Store) DeleteDoc(ctx context.Context, docID string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM passages WHERE doc_id = $1`, docID); err != nil {
		return fmt.Errorf("deleting passages of %q: %w", docID, err)
	}
	return nil
}

// Count reports the number of stored passages.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM passages`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting passages: %w", err)
	}
	return n, nil
}
