package prescription

import (
	"context"
	"time"
)

// ImageStore keeps uploaded prescription images.
type ImageStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// PreviewURL returns a URL the browser can load directly until it expires.
	PreviewURL(ctx context.Context, key string, ttl time.Duration) (string, time.Time, error)
	// Delete is a no-op for keys that are already gone.
	Delete(ctx context.Context, key string) error
}
