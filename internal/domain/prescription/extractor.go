package prescription

import (
	"context"
	"io"
)

// Extractor reads prescription text from an image. It is the boundary to
// an OCR/ingestion service.
type Extractor interface {
	Extract(ctx context.Context, fileName, contentType string, image io.Reader) (string, error)
}
