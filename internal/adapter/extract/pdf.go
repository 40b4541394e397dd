package extract

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/docqa-ai/docqa/internal/port"
)

// PDF extracts the plain text of a PDF document, concatenated across pages.
type PDF struct{}

// Extract reads the whole document text. Parse failures and documents with
// only non-text content (scanned images, empty pages) surface as
// port.ErrNoText.
func (PDF) Extract(r io.ReaderAt, size int64) (text string, err error) {
	// the pdf parser panics on some malformed files
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = fmt.Errorf("parse pdf: %v: %w", rec, port.ErrNoText)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("open pdf: %v: %w", err, port.ErrNoText)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %v: %w", err, port.ErrNoText)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("read pdf text: %v: %w", err, port.ErrNoText)
	}

	text = buf.String()
	if strings.TrimSpace(text) == "" {
		return "", port.ErrNoText
	}
	return text, nil
}
