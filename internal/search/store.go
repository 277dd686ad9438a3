package search

import (
	"context"
	"time"

	"github.com/packtrace/packtrace/internal/model"
	"github.com/packtrace/packtrace/internal/store"
)

// Store is the read surface of the hierarchy store the engine depends on.
// *store.Store implements it.
type Store interface {
	ExistsPrefix(ctx context.Context, level model.Level, prefix string) (bool, error)

	CountUnits(ctx context.Context, q store.Select) (int, error)
	UnitKeys(ctx context.Context, q store.Select) ([]int64, error)
	UnitsByID(ctx context.Context, ids []int64) ([]model.Unit, error)

	BoxesByID(ctx context.Context, ids []int64) ([]model.Box, error)
	PalletsByID(ctx context.Context, ids []int64) ([]model.Pallet, error)
	AttachmentsByID(ctx context.Context, ids []int64) ([]model.Attachment, error)
	Attachment2sByID(ctx context.Context, ids []int64) ([]model.Attachment2, error)

	SelectBoxes(ctx context.Context, q store.Select) ([]model.Box, error)
	SelectPallets(ctx context.Context, q store.Select) ([]model.Pallet, error)
	CountUnitsByBox(ctx context.Context, boxIDs []int64) (map[int64]int, error)
	CountBoxesByPallet(ctx context.Context, palletIDs []int64) (map[int64]int, error)

	UnitsInBox(ctx context.Context, boxID int64) ([]model.ChildUnit, error)
	BoxesOnPallet(ctx context.Context, palletID int64) ([]model.Box, error)
}

var _ Store = (*store.Store)(nil)

// caller bounds every store call with a timeout and tags failures.
type caller struct {
	timeout time.Duration
}

func call[T any](ctx context.Context, c *caller, op string, fn func(context.Context) (T, error)) (T, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	v, err := fn(ctx)
	if err != nil {
		var zero T
		return zero, &StoreError{Op: op, Err: err}
	}
	return v, nil
}
