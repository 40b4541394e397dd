package extract

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/docqa-ai/docqa/internal/port"
)

// DefaultMaxMemberBytes caps how much of a single archive member is read.
const DefaultMaxMemberBytes = 256 << 10

// Archive describes a packaged project (zip) as text: one header line per
// member, followed by the contents of text-like members. The output is
// descriptive rather than prose, so the same retrieval pipeline can answer
// questions about what an archive contains.
type Archive struct {
	MaxMemberBytes int64 // per-member read cap; zero uses DefaultMaxMemberBytes
}

// Extract walks the archive and builds the descriptive text. An archive with
// no readable members surfaces as port.ErrNoText.
func (a Archive) Extract(r io.ReaderAt, size int64) (string, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("open archive: %v: %w", err, port.ErrNoText)
	}

	limit := a.MaxMemberBytes
	if limit <= 0 {
		limit = DefaultMaxMemberBytes
	}

	var sb strings.Builder
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		fmt.Fprintf(&sb, "File: %s (%d bytes)\n", f.Name, f.UncompressedSize64)

		if !textLike(f.Name) {
			sb.WriteString("\n")
			continue
		}

		rc, err := f.Open()
		if err != nil {
			sb.WriteString("\n")
			continue
		}
		data, err := io.ReadAll(io.LimitReader(rc, limit))
		rc.Close()
		if err != nil || !utf8.Valid(data) {
			sb.WriteString("\n")
			continue
		}
		sb.Write(data)
		sb.WriteString("\n\n")
	}

	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return "", port.ErrNoText
	}
	return text, nil
}

// textLike reports whether a member is worth inlining by extension.
func textLike(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".txt", ".md", ".rst", ".go", ".py", ".js", ".ts", ".rb", ".java",
		".c", ".h", ".sh", ".sql", ".html", ".css", ".csv",
		".json", ".yaml", ".yml", ".toml", ".ini", ".xml", ".mod", ".sum":
		return true
	}
	return false
}
