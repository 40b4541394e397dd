package ai

import (
	"context"
	"encoding/binary"
	"hash/fnv"
	"math"
	"strings"
)

// DefaultHashDimension is the vector size of the fallback embedder.
const DefaultHashDimension = 64

// HashEmbedder is the deterministic, dependency-free fallback embedder. It
// hashes character trigrams into a fixed small dimension and L2-normalizes
// the result. Retrieval quality is far below a real embedding model; it
// exists so the service stays degraded-but-functional when the embedding
// backend is unreachable at startup, not as a correctness substitute.
type HashEmbedder struct {
	dim int
}

// NewHashEmbedder creates a hash embedder with the given dimension.
// A non-positive dimension falls back to DefaultHashDimension.
func NewHashEmbedder(dim int) *HashEmbedder {
	if dim <= 0 {
		dim = DefaultHashDimension
	}
	return &HashEmbedder{dim: dim}
}

// Name identifies the implementation for startup logging.
func (e *HashEmbedder) Name() string { return "local-hash" }

// Dimension returns the fixed vector size.
func (e *HashEmbedder) Dimension() int { return e.dim }

// EmbedOne hashes character trigrams of the lowercased text into buckets.
func (e *HashEmbedder) EmbedOne(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dim)
	runes := []rune(strings.ToLower(text))
	var buf [4]byte
	for i := range runes {
		h := fnv.New32a()
		for j := i; j < i+3 && j < len(runes); j++ {
			binary.LittleEndian.PutUint32(buf[:], uint32(runes[j]))
			h.Write(buf[:])
		}
		vec[h.Sum32()%uint32(e.dim)]++
	}
	normalize(vec)
	return vec, nil
}

// EmbedBatch embeds each text independently, preserving input order.
func (e *HashEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := e.EmbedOne(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func normalize(vec []float32) {
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return
	}
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
}
