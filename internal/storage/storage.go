// Package storage defines the interface for object storage operations.
// Swap implementations by changing the concrete type injected at startup —
// the MinIO implementation works with any S3-compatible provider.
package storage

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

// ErrNotFound is returned by Get when no object exists under the given key.
var ErrNotFound = errors.New("object not found")

// Storage is the interface for writing, reading and deleting objects.
type Storage interface {
	// Put stores data under key with the given content type metadata.
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// Get returns the full payload stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// List returns all keys starting with prefix.
	List(ctx context.Context, prefix string) ([]string, error)
	// Delete removes an object identified by key.
	Delete(ctx context.Context, key string) error
	// PublicURL constructs the browser-accessible URL for a given key.
	PublicURL(key string) string
}

// EncodeKey percent-encodes each segment of an object key so the result is
// safe to embed in a URL path. Separators are preserved.
func EncodeKey(key string) string {
	segs := strings.Split(key, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}
