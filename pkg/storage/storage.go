// Package storage keeps the original bytes of uploaded note sources.
// The filesystem implementation suits development and single-node deployments.
package storage

import (
	"context"

	"github.com/JaimeStill/study-lab/pkg/lifecycle"
)

// System stores and retrieves source blobs by key.
// Every operation fails fast with the context error once ctx is done.
type System interface {
	// Store writes data at key, replacing any existing blob atomically.
	Store(ctx context.Context, key string, data []byte) error

	// Retrieve returns the blob at key or ErrNotFound.
	Retrieve(ctx context.Context, key string) ([]byte, error)

	// Delete removes the blob at key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	Start(lc *lifecycle.Coordinator) error
}
