package ports

import (
	"context"
	"io"
)

// ObjectStore defines the contract for bucket/key object storage
type ObjectStore interface {
	// Download reads a whole object into memory
	Download(ctx context.Context, bucket, key string) ([]byte, error)

	// Upload streams body to the object, using multipart uploads for large bodies
	Upload(ctx context.Context, bucket, key string, body io.Reader) error

	// Put writes a small in-memory object in a single request
	Put(ctx context.Context, bucket, key string, data []byte) error
}
