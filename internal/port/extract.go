package port

import "io"

// Extractor turns an uploaded document into plain UTF-8 text. A document
// with no recoverable text fails with ErrNoText; the ingestion pipeline
// treats whitespace-only output the same as nothing to ingest.
type Extractor interface {
	Extract(r io.ReaderAt, size int64) (string, error)
}
