package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/docqa-ai/docqa/internal/domain"
	"github.com/docqa-ai/docqa/internal/port"
)

// Postgres is the preferred vector index, backed by PostgreSQL with the
// pgvector extension. Similarity scoring is deferred to the database; the
// contract is identical to the in-memory index. The chunks table is
// truncated on startup: the index is rebuilt per process lifetime, the
// database only provides the search engine.
type Postgres struct {
	db        *sql.DB
	embedder  port.Embedder
	dimension int
}

// NewPostgres opens a connection, prepares the schema, and returns an empty
// index bound to the given embedder. dimension must match the embedder's
// output for the lifetime of the index.
func NewPostgres(databaseURL string, embedder port.Embedder, dimension int) (*Postgres, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	p := &Postgres{db: db, embedder: embedder, dimension: dimension}
	if err := p.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return p, nil
}

func (p *Postgres) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chunks (
			id BIGSERIAL PRIMARY KEY,
			source_id TEXT NOT NULL,
			ordinal INT NOT NULL,
			content TEXT NOT NULL,
			embedding vector(%d) NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`, p.dimension),
		`TRUNCATE chunks`,
	}

	for _, s := range stmts {
		if _, err := p.db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("execute migration: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (p *Postgres) Close() error {
	return p.db.Close()
}

// Add embeds every entry and inserts the results in one transaction, so a
// failure partway commits nothing.
func (p *Postgres) Add(ctx context.Context, entries []port.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.Text
	}

	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return port.NewBackendError(port.StageEmbed, err)
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return port.NewBackendError(port.StageIndex, fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (source_id, ordinal, content, embedding) VALUES ($1, $2, $3, $4::vector)`)
	if err != nil {
		return port.NewBackendError(port.StageIndex, fmt.Errorf("prepare: %w", err))
	}
	defer stmt.Close()

	for i, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.SourceID, e.Ordinal, e.Text, vectorToString(vectors[i])); err != nil {
			return port.NewBackendError(port.StageIndex, fmt.Errorf("insert chunk: %w", err))
		}
	}

	if err := tx.Commit(); err != nil {
		return port.NewBackendError(port.StageIndex, fmt.Errorf("commit: %w", err))
	}
	return nil
}

// Query embeds the text and lets pgvector rank every stored chunk by cosine
// distance. The secondary id ordering keeps ties on earliest insertion.
func (p *Postgres) Query(ctx context.Context, text string, k int) ([]domain.ScoredChunk, error) {
	vec, err := p.embedder.EmbedOne(ctx, text)
	if err != nil {
		return nil, port.NewBackendError(port.StageEmbed, err)
	}
	if k <= 0 {
		k = domain.DefaultTopK
	}

	query := `SELECT source_id, ordinal, content, 1 - (embedding <=> $1::vector) AS similarity
	          FROM chunks
	          ORDER BY embedding <=> $1::vector, id
	          LIMIT $2`

	rows, err := p.db.QueryContext(ctx, query, vectorToString(vec), k)
	if err != nil {
		return nil, port.NewBackendError(port.StageIndex, fmt.Errorf("search chunks: %w", err))
	}
	defer rows.Close()

	var results []domain.ScoredChunk
	for rows.Next() {
		var sc domain.ScoredChunk
		if err := rows.Scan(&sc.SourceID, &sc.Ordinal, &sc.Text, &sc.Similarity); err != nil {
			return nil, port.NewBackendError(port.StageIndex, fmt.Errorf("scan chunk: %w", err))
		}
		results = append(results, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, port.NewBackendError(port.StageIndex, err)
	}
	return results, nil
}

// Count reports the number of stored entries.
func (p *Postgres) Count(ctx context.Context) (int, error) {
	var n int
	if err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n); err != nil {
		return 0, port.NewBackendError(port.StageIndex, err)
	}
	return n, nil
}

// vectorToString converts a float32 slice to pgvector text format: [0.1,0.2,0.3].
func vectorToString(v []float32) string {
	parts := make([]string, len(v))
	for i, val := range v {
		parts[i] = fmt.Sprintf("%g", val)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
