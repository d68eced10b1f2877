// Package store persists the most recent market snapshot to a local
// SQLite file so the dashboard can show last-known data before the
// first network round trip completes. It holds only data the remote
// service returned.
package store

import (
	"context"

	"tradesim/internal/domain"
)

// SnapshotCache saves and restores market snapshots.
type SnapshotCache interface {
	SaveSnapshot(ctx context.Context, stocks []domain.Stock, histories map[string][]float64) error
	LoadStocks(ctx context.Context) ([]domain.Stock, error)
	LoadHistories(ctx context.Context) (map[string][]float64, error)
	Close() error
}
