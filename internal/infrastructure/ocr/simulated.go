// Package ocr holds prescription text extractors.
package ocr

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/emedico/backend/internal/domain/prescription"
)

// SimulatedExtractor stands in for a real OCR service. It reads nothing
// from the image and answers with a fixed two-line listing.
type SimulatedExtractor struct {
	latency time.Duration
}

// Option configures a SimulatedExtractor
type Option func(*SimulatedExtractor)

// WithLatency delays every extraction, to exercise the pending state in clients
func WithLatency(d time.Duration) Option {
	return func(e *SimulatedExtractor) {
		e.latency = d
	}
}

// NewSimulatedExtractor creates a SimulatedExtractor
func NewSimulatedExtractor(opts ...Option) *SimulatedExtractor {
	e := &SimulatedExtractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the canned listing for fileName
func (e *SimulatedExtractor) Extract(ctx context.Context, fileName, _ string, image io.Reader) (string, error) {
	if image != nil {
		if _, err := io.Copy(io.Discard, image); err != nil {
			return "", fmt.Errorf("failed to read prescription image: %w", err)
		}
	}

	if e.latency > 0 {
		timer := time.NewTimer(e.latency)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	return SimulatedText(fileName), nil
}

// SimulatedText is the listing returned for fileName
func SimulatedText(fileName string) string {
	return fmt.Sprintf("Simulated OCR for %s:\n- Medicine A 10mg\n- Medicine B 20mg", fileName)
}

var _ prescription.Extractor = (*SimulatedExtractor)(nil)
