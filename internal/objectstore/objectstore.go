// Package objectstore abstracts blob storage for generated report files. The
// memory implementation backs development and tests; the cloud implementation
// is selected by deployment configuration.
package objectstore

import (
	"context"
	"time"
)

// ObjectInfo describes a stored blob.
type ObjectInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"contentType"`
	LastModified time.Time `json:"lastModified"`
}

// Store is the blob storage facade.
type Store interface {
	// Upload stores data under key, replacing any existing object.
	Upload(ctx context.Context, key string, data []byte, contentType string) (ObjectInfo, error)
	// Download returns the object bytes.
	Download(ctx context.Context, key string) ([]byte, error)
	// Delete removes an object; deleting a missing key is a no-op.
	Delete(ctx context.Context, key string) error
	// Exists reports whether the key holds an object.
	Exists(ctx context.Context, key string) (bool, error)
	// List returns info for every object under the prefix.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	// Metadata returns info for a single object.
	Metadata(ctx context.Context, key string) (ObjectInfo, error)
	// SignedURL mints a time-limited download URL for the object.
	SignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}
