// Package store defines the dataset persistence port shared by the memory
// and SQLite backends.
package store

import (
	"context"

	"fincoach/internal/core"
)

// DatasetStore persists uploaded transaction datasets. Get returns
// core.ErrDatasetNotFound for unknown IDs, as does Delete.
type DatasetStore interface {
	Save(ctx context.Context, d core.Dataset) error
	Get(ctx context.Context, id string) (core.Dataset, error)
	List(ctx context.Context) ([]core.DatasetInfo, error)
	Delete(ctx context.Context, id string) error

	// FindByHash reports an already-uploaded dataset with the same content
	// hash, for duplicate detection.
	FindByHash(ctx context.Context, sha256 string) (core.DatasetInfo, bool, error)

	Close() error
}
