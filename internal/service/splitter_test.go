package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitter_EmptyInput(t *testing.T) {
	s := NewSplitter(500, 50)

	assert.Nil(t, s.Split(""))
	assert.Nil(t, s.Split("   \n\t  "))
}

func TestSplitter_ShortTextIsSingleChunk(t *testing.T) {
	s := NewSplitter(500, 50)

	chunks := s.Split("The sky is blue. Grass is green.")
	require.Len(t, chunks, 1)
	assert.Equal(t, "The sky is blue. Grass is green.", chunks[0])
}

func TestSplitter_ChunksNeverExceedSize(t *testing.T) {
	s := NewSplitter(80, 10)

	var sb strings.Builder
	for i := 0; i < 40; i++ {
		sb.WriteString("Sentence number one is here. Another short sentence follows it right away. ")
	}

	chunks := s.Split(sb.String())
	require.NotEmpty(t, chunks)
	for i, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c)), 80, "chunk %d too long", i)
		assert.NotEmpty(t, strings.TrimSpace(c), "chunk %d is blank", i)
	}
}

func TestSplitter_PrefersSentenceBoundaries(t *testing.T) {
	s := NewSplitter(60, 0)

	text := "First sentence ends here and fills most of the room. Second one."
	chunks := s.Split(text)
	require.GreaterOrEqual(t, len(chunks), 2)
	assert.True(t, strings.HasSuffix(chunks[0], "."), "expected cut at sentence end, got %q", chunks[0])
}

func TestSplitter_HardSliceIsLossless(t *testing.T) {
	// No separators at all forces the hard-slice path, which must
	// reconstruct the input under overlap-removed concatenation.
	s := NewSplitter(100, 20)

	text := strings.Repeat("abcdefghij", 35) // 350 chars, no spaces
	chunks := s.Split(text)
	require.Greater(t, len(chunks), 1)

	rebuilt := chunks[0]
	for _, c := range chunks[1:] {
		runes := []rune(c)
		if len(runes) > 20 {
			rebuilt += string(runes[20:])
		}
	}
	assert.Equal(t, text, rebuilt)
}

func TestNewSplitter_ClampsInvalidParams(t *testing.T) {
	s := NewSplitter(-1, -5)
	assert.Equal(t, DefaultChunkSize, s.size)
	assert.Equal(t, 0, s.overlap)

	s = NewSplitter(10, 50)
	assert.Equal(t, 10, s.size)
	assert.Less(t, s.overlap, s.size)
}
