// Package blob provides object stores in which backups are kept
package blob

import (
	"context"
	"errors"
)

var (
	// ErrBucketNotFound is returned when a store's bucket (or directory) does
	// not exist
	ErrBucketNotFound = errors.New("bucket not found")

	// ErrNotFound is returned when a key does not exist
	ErrNotFound = errors.New("object not found")
)

// Store is a flat key/value object store. Keys are slash-delimited.
type Store interface {
	// Put writes data to key, overwriting any existing object
	Put(ctx context.Context, key string, data []byte) error
	// Get reads the object at key, returning ErrNotFound if it is missing
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete removes the object at key. Deleting a missing key is not an
	// error.
	Delete(ctx context.Context, key string) error
	// List returns every key beginning with prefix
	List(ctx context.Context, prefix string) ([]string, error)
}
