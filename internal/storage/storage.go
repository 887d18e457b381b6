// Package storage provides the key-value persistence adapters the stores serialize into.
package storage

import "context"

// Storage is a key-value persistence port. Get returns nil, nil when the key is absent.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Available reports whether the backend actually persists anything.
	Available() bool
}
