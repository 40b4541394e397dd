package port

import (
	"context"

	"github.com/docqa-ai/docqa/internal/domain"
)

// Embedder maps text to fixed-dimension vectors. An implementation is chosen
// once at startup and kept for the process lifetime: vectors produced by
// different embedders are not comparable, and the index requires a uniform
// dimension.
type Embedder interface {
	// Name identifies the implementation for startup logging.
	Name() string

	// EmbedOne returns the embedding vector for a single text.
	EmbedOne(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces an answer for a fully assembled prompt. It performs the
// backend call at most once; retry policy belongs to callers outside the core.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts domain.GenerationOptions) (string, error)
}
