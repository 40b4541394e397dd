package port

import (
	"context"

	"github.com/docqa-ai/docqa/internal/domain"
)

// Entry is a chunk of text queued for indexing, with its provenance.
type Entry struct {
	Text     string
	SourceID string
	Ordinal  int
}

// VectorIndex stores embedded chunks and answers top-k similarity queries.
type VectorIndex interface {
	// Add embeds every entry and appends the results. All-or-nothing: if
	// embedding or the write fails partway, no entries from the call are
	// committed.
	Add(ctx context.Context, entries []Entry) error

	// Query embeds text and returns the k most similar stored chunks in
	// descending similarity order, ties broken by earliest insertion.
	// k larger than the number of stored entries returns all of them;
	// an empty index returns an empty result, not an error.
	Query(ctx context.Context, text string, k int) ([]domain.ScoredChunk, error)

	// Count reports the number of stored entries.
	Count(ctx context.Context) (int, error)
}
