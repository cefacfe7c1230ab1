// Package storage provides the backing store for bare repositories.
package storage

import (
	"context"
)

// Storage checks for and creates bare repositories addressed by their
// derived storage name (`<name>.git`).
type Storage interface {
	// Exists reports whether a bare repository exists at the given address.
	Exists(ctx context.Context, name string) (bool, error)
	// Create creates a bare repository at the given address.
	Create(ctx context.Context, name string) error
}
