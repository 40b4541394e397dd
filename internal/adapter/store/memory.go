package store

import (
	"context"
	"sort"
	"sync"

	"github.com/docqa-ai/docqa/internal/domain"
	"github.com/docqa-ai/docqa/internal/port"
)

// Memory is the in-process fallback vector index: a linear scan over every
// stored entry ranked by cosine similarity. Exact top-k, O(n·d) per query,
// which holds up at the few thousand chunks a single process handles. The
// index grows monotonically and is discarded on process exit.
type Memory struct {
	embedder port.Embedder

	mu      sync.RWMutex
	entries []memoryEntry
}

type memoryEntry struct {
	chunk  domain.Chunk
	vector []float32
}

// NewMemory creates an empty in-memory index bound to the given embedder.
func NewMemory(embedder port.Embedder) *Memory {
	return &Memory{embedder: embedder}
}

// Add embeds every entry and appends the results in insertion order.
// Embedding runs before the lock is taken; a failed batch commits nothing.
func (m *Memory) Add(ctx context.Context, entries []port.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.Text
	}

	vectors, err := m.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return port.NewBackendError(port.StageEmbed, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range entries {
		m.entries = append(m.entries, memoryEntry{
			chunk:  domain.Chunk{SourceID: e.SourceID, Ordinal: e.Ordinal, Text: e.Text},
			vector: vectors[i],
		})
	}
	return nil
}

// Query embeds the text and returns the k highest-scoring entries in
// descending similarity order. The stable sort keeps earlier-inserted
// entries first on equal scores.
func (m *Memory) Query(ctx context.Context, text string, k int) ([]domain.ScoredChunk, error) {
	vec, err := m.embedder.EmbedOne(ctx, text)
	if err != nil {
		return nil, port.NewBackendError(port.StageEmbed, err)
	}
	if k <= 0 {
		k = domain.DefaultTopK
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]domain.ScoredChunk, len(m.entries))
	for i, e := range m.entries {
		results[i] = domain.ScoredChunk{Chunk: e.chunk, Similarity: CosineSimilarity(vec, e.vector)}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

// Count reports the number of stored entries.
func (m *Memory) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries), nil
}
