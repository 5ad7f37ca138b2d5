package ports

import "context"

// BlobCache stores immutable blobs (product images) by key.
type BlobCache interface {
	// Get returns the blob and true, or false when the key is absent.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Put stores the blob. Writing the same key twice with the same data is harmless.
	Put(ctx context.Context, key string, data []byte) error
}
