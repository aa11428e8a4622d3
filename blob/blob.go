package blob

import (
	"context"
	"time"
)

// Store is the blob-storage collaborator. The service only depends on this
// interface; the local-disk implementation stands in for a hosted bucket.
type Store interface {
	// Put writes data at path and returns a public URL for it.
	Put(ctx context.Context, path string, data []byte, contentType string) (string, error)
	// SignedURL returns a URL valid for ttl, for operator review of private files.
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
	// Delete removes the file at path.
	Delete(ctx context.Context, path string) error
}
