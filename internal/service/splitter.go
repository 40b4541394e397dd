package service

import "strings"

// Splitter defaults, taken from the chunking parameters the service was
// tuned with.
const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 50
)

// boundary separators in preference order: paragraph break, line break,
// sentence end, word gap.
var separators = []string{"\n\n", "\n", ". ", "! ", "? ", " "}

// Splitter cuts raw text into overlapping chunks of bounded size, measured
// in runes. It prefers breaking at a paragraph, sentence, or word boundary
// inside the window; a hard character slice happens only when the window has
// no usable boundary. Boundary cuts trim surrounding whitespace (accepted
// lossiness); hard slices keep the text byte-for-byte, so the hard-slice
// path reconstructs the original under overlap-removed concatenation.
type Splitter struct {
	size    int
	overlap int
}

// NewSplitter creates a splitter, clamping inputs to the invariant
// 0 <= overlap < size.
func NewSplitter(size, overlap int) *Splitter {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size - 1
	}
	return &Splitter{size: size, overlap: overlap}
}

// Split returns the chunk texts in document order. Empty or whitespace-only
// input yields nil, which callers treat as nothing to ingest. No returned
// chunk is empty, and every chunk is at most the configured size.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	var out []string
	start := 0
	for start < len(runes) {
		end := start + s.size
		if end >= len(runes) {
			if c := strings.TrimSpace(string(runes[start:])); c != "" {
				out = append(out, c)
			}
			break
		}

		cut := s.boundary(runes[start:end])
		if cut > 0 {
			if c := strings.TrimSpace(string(runes[start : start+cut])); c != "" {
				out = append(out, c)
			}
		} else {
			cut = s.size
			out = append(out, string(runes[start:end]))
		}

		next := start + cut - s.overlap
		if next <= start {
			next = start + cut
		}
		start = next
	}
	return out
}

// boundary returns the rune offset just past the best break inside the
// window, or 0 when no separator lands in the second half of the window.
// Cuts before the halfway mark are rejected to avoid degenerate tiny chunks.
func (s *Splitter) boundary(window []rune) int {
	text := string(window)
	for _, sep := range separators {
		i := strings.LastIndex(text, sep)
		if i <= 0 {
			continue
		}
		cut := len([]rune(text[:i+len(sep)]))
		if cut >= s.size/2 {
			return cut
		}
	}
	return 0
}
