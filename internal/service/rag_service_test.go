package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docqa-ai/docqa/internal/adapter/store"
	"github.com/docqa-ai/docqa/internal/domain"
	"github.com/docqa-ai/docqa/internal/port"
)

// flatEmbedder maps every text to the same unit vector and counts calls.
type flatEmbedder struct {
	err   error
	calls int
}

func (e *flatEmbedder) Name() string { return "flat" }

func (e *flatEmbedder) EmbedOne(_ context.Context, _ string) ([]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return []float32{1, 0}, nil
}

func (e *flatEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

// recordingGenerator returns a canned answer and keeps every prompt it saw.
type recordingGenerator struct {
	answer  string
	err     error
	prompts []string
}

func (g *recordingGenerator) Generate(_ context.Context, prompt string, _ domain.GenerationOptions) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	return g.answer, nil
}

func newTestRAG(embedder port.Embedder, gen port.Generator) (*RAGService, *store.Memory) {
	index := store.NewMemory(embedder)
	svc := NewRAGService(NewSplitter(0, 0), index, gen, PromptBuilder{}, domain.GenerationOptions{})
	return svc, index
}

func TestRAGService_IngestEmptyTextAddsNothing(t *testing.T) {
	embedder := &flatEmbedder{}
	svc, index := newTestRAG(embedder, &recordingGenerator{})

	n, err := svc.Ingest(context.Background(), "doc", "   \n\t ")
	require.NoError(t, err)
	assert.Zero(t, n)

	count, err := index.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Zero(t, embedder.calls)
}

func TestRAGService_IngestThenAsk(t *testing.T) {
	gen := &recordingGenerator{answer: "The sky is blue."}
	svc, _ := newTestRAG(&flatEmbedder{}, gen)

	n, err := svc.Ingest(context.Background(), "colors.txt", "The sky is blue. Grass is green.")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	answer, sources, err := svc.Ask(context.Background(), "What color is the sky?", 3)
	require.NoError(t, err)
	assert.Equal(t, "The sky is blue.", answer)
	require.Len(t, sources, 1)
	assert.Equal(t, "colors.txt", sources[0].SourceID)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "The sky is blue. Grass is green.")
	assert.Contains(t, gen.prompts[0], "Question: What color is the sky?")
}

func TestRAGService_AskBlankQuestionShortCircuits(t *testing.T) {
	embedder := &flatEmbedder{}
	gen := &recordingGenerator{answer: "should not appear"}
	svc, _ := newTestRAG(embedder, gen)

	for _, q := range []string{"", "   ", "\n\t"} {
		answer, sources, err := svc.Ask(context.Background(), q, 3)
		require.NoError(t, err)
		assert.Empty(t, answer)
		assert.Nil(t, sources)
	}

	assert.Zero(t, embedder.calls, "blank question must not reach the embedder")
	assert.Empty(t, gen.prompts, "blank question must not reach the generator")
}

func TestRAGService_AskEmptyIndexStillGenerates(t *testing.T) {
	gen := &recordingGenerator{answer: "I cannot find relevant information in the provided documents."}
	svc, _ := newTestRAG(&flatEmbedder{}, gen)

	answer, sources, err := svc.Ask(context.Background(), "anything?", 0)
	require.NoError(t, err)
	assert.NotEmpty(t, answer)
	assert.Empty(t, sources)
	require.Len(t, gen.prompts, 1)
	assert.NotContains(t, gen.prompts[0], "--- Context")
}

func TestRAGService_IngestEmbedFailureCommitsNothing(t *testing.T) {
	embedder := &flatEmbedder{err: errors.New("connection refused")}
	svc, index := newTestRAG(embedder, &recordingGenerator{})

	_, err := svc.Ingest(context.Background(), "doc", "some text to index")
	require.Error(t, err)

	var be *port.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, port.StageEmbed, be.Stage)

	count, err := index.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count, "failed batch must not leave partial state")
}

func TestRAGService_ReingestIsAdditive(t *testing.T) {
	svc, index := newTestRAG(&flatEmbedder{}, &recordingGenerator{})

	text := "The sky is blue. Grass is green."
	n1, err := svc.Ingest(context.Background(), "doc", text)
	require.NoError(t, err)
	n2, err := svc.Ingest(context.Background(), "doc", text)
	require.NoError(t, err)

	count, err := index.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, n1+n2, count)
}

func TestRAGService_GeneratorFailureSurfaces(t *testing.T) {
	genErr := port.NewBackendError(port.StageGenerate, errors.New("model not found"))
	svc, _ := newTestRAG(&flatEmbedder{}, &recordingGenerator{err: genErr})

	_, _, err := svc.Ask(context.Background(), "question?", 3)
	require.Error(t, err)

	var be *port.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, port.StageGenerate, be.Stage)
}
