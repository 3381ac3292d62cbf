package storage

import (
	"context"

	"github.com/user/catalog-crawler/internal/domain"
)

// CaptureStore keeps the snapshots of one run. Entries are write-once.
type CaptureStore interface {
	Put(ctx context.Context, key domain.CaptureKey, page domain.CapturedPage) error
	// Get returns domain.ErrCaptureNotFound when nothing was recorded under key.
	Get(ctx context.Context, key domain.CaptureKey) (domain.CapturedPage, error)
	// ProductIndices lists recorded product indices in ascending order.
	ProductIndices(ctx context.Context) ([]int, error)
	Clear(ctx context.Context) error
}
