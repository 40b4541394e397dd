package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/docqa-ai/docqa/internal/domain"
	"github.com/docqa-ai/docqa/internal/port"
)

// RAGService orchestrates the two pipelines of the system: ingesting
// extracted document text into the vector index, and answering questions
// with retrieval-augmented generation.
type RAGService struct {
	splitter  *Splitter
	index     port.VectorIndex
	generator port.Generator
	prompts   PromptBuilder
	genOpts   domain.GenerationOptions
}

// NewRAGService wires the pipelines. The index already owns its embedder;
// the generation options apply to every ask.
func NewRAGService(splitter *Splitter, index port.VectorIndex, generator port.Generator, prompts PromptBuilder, genOpts domain.GenerationOptions) *RAGService {
	return &RAGService{
		splitter:  splitter,
		index:     index,
		generator: generator,
		prompts:   prompts,
		genOpts:   genOpts,
	}
}

// Ingest splits raw extracted text into chunks and indexes them under
// sourceID, returning the number of chunks added. Empty or whitespace-only
// text is nothing to ingest: (0, nil). Re-ingesting the same document is
// additive; no deduplication happens.
func (s *RAGService) Ingest(ctx context.Context, sourceID, rawText string) (int, error) {
	texts := s.splitter.Split(rawText)
	if len(texts) == 0 {
		return 0, nil
	}

	entries := make([]port.Entry, len(texts))
	for i, text := range texts {
		entries[i] = port.Entry{Text: text, SourceID: sourceID, Ordinal: i}
	}

	if err := s.index.Add(ctx, entries); err != nil {
		return 0, fmt.Errorf("index chunks for %q: %w", sourceID, err)
	}

	slog.Info("document ingested", "source_id", sourceID, "chunks", len(entries))
	return len(entries), nil
}

// Ask answers a question from the indexed documents: retrieve the top-k
// context chunks, build the prompt, call the generator, and return the
// answer verbatim along with the chunks it was grounded on. A blank question
// short-circuits to an empty answer without touching any backend. An empty
// index is a valid state: generation proceeds with no context and the
// prompt instructs the model to say so.
func (s *RAGService) Ask(ctx context.Context, question string, k int) (string, []domain.ScoredChunk, error) {
	if strings.TrimSpace(question) == "" {
		return "", nil, nil
	}
	if k <= 0 {
		k = domain.DefaultTopK
	}

	scored, err := s.index.Query(ctx, question, k)
	if err != nil {
		return "", nil, fmt.Errorf("retrieve context: %w", err)
	}

	contexts := make([]domain.Chunk, len(scored))
	for i, sc := range scored {
		contexts[i] = sc.Chunk
	}

	prompt := s.prompts.Build(question, contexts)
	answer, err := s.generator.Generate(ctx, prompt, s.genOpts)
	if err != nil {
		return "", nil, fmt.Errorf("generate answer: %w", err)
	}

	return answer, scored, nil
}
