package service

import (
	"fmt"
	"strings"

	"github.com/docqa-ai/docqa/internal/domain"
)

// PromptBuilder assembles the generation prompt from retrieved context.
// Context blocks keep the retriever's ranking order; when MaxContextChars is
// set, the lowest-ranked (last) chunks are dropped first.
type PromptBuilder struct {
	MaxContextChars int // 0 = no cap
}

const promptInstruction = "You are a documentation assistant. Use only the context below to answer the question. " +
	"If the context does not contain the answer, say that you cannot find relevant information in the provided documents.\n"

// Build produces the deterministic prompt string for a question and its
// ranked context chunks.
func (b PromptBuilder) Build(question string, contexts []domain.Chunk) string {
	var sb strings.Builder
	sb.WriteString(promptInstruction)

	used := 0
	for i, ch := range contexts {
		if b.MaxContextChars > 0 && used+len(ch.Text) > b.MaxContextChars {
			break
		}
		used += len(ch.Text)
		fmt.Fprintf(&sb, "\n--- Context %d (%s) ---\n%s\n", i+1, ch.SourceID, ch.Text)
	}

	fmt.Fprintf(&sb, "\nQuestion: %s\nAnswer:", question)
	return sb.String()
}
