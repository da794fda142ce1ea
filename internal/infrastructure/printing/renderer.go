package printing

import (
	"context"
	"errors"
	"time"
)

// Paper is a sheet size in millimetres.
type Paper struct {
	Width, Height float64
}

var (
	A4     = Paper{Width: 210, Height: 297}
	Letter = Paper{Width: 215.9, Height: 279.4}
	// Roll80 is continuous thermal paper; Height only hints where to break.
	Roll80 = Paper{Width: 80, Height: 3000}
)

// Document is one HTML page set to print. A zero Paper means A4.
type Document struct {
	HTML      string
	Title     string
	Paper     Paper
	Landscape bool
	MarginMM  float64
	// Footer is an HTML snippet repeated on every page. Chrome fills the
	// pageNumber and totalPages classes.
	Footer string
	// Timeout overrides the renderer default.
	Timeout time.Duration
}

// Renderer turns a Document into PDF bytes.
type Renderer interface {
	Render(ctx context.Context, doc Document) ([]byte, error)
	Close() error
}

var (
	ErrEmptyDocument = errors.New("printing: document has no HTML")
	ErrBadPaper      = errors.New("printing: paper size must be positive")
	ErrTimeout       = errors.New("printing: render timed out")
)
