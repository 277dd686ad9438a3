package search

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/packtrace/packtrace/internal/model"
	"github.com/packtrace/packtrace/internal/sqlutil"
)

// Resolver attaches parent serials and attachment details to hydrated rows
// with one batched lookup per relation kind.
type Resolver struct {
	store Store
	calls *caller
}

// lookup fetches the rows for ids in one batch and indexes them by key.
// An empty id set skips the store call.
func lookup[T any](ctx context.Context, c *caller, op string, ids []int64,
	fetch func(context.Context, []int64) ([]T, error), key func(T) int64) (map[int64]T, error) {
	out := make(map[int64]T, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := call(ctx, c, op, func(ctx context.Context) ([]T, error) {
		return fetch(ctx, ids)
	})
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[key(r)] = r
	}
	return out, nil
}

// foreignKeys collects the distinct non-null values of fk across items.
func foreignKeys[T any](items []T, fk func(T) *int64) []int64 {
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		if id := fk(it); id != nil {
			ids = append(ids, *id)
		}
	}
	return sqlutil.Unique(ids)
}

// project returns field of the row referenced by id, or model.None.
func project[T any](m map[int64]T, id *int64, field func(T) string) string {
	if id == nil {
		return model.None
	}
	r, ok := m[*id]
	if !ok {
		return model.None
	}
	return field(r)
}

// ResolveUnits enriches units with box and pallet serials, attachment
// numbers, area, and status. Missing relations read as model.None.
func (r *Resolver) ResolveUnits(ctx context.Context, units []model.Unit) ([]model.UnitRow, error) {
	rows := make([]model.UnitRow, 0, len(units))
	if len(units) == 0 {
		return rows, nil
	}

	var (
		boxes   map[int64]model.Box
		pallets map[int64]model.Pallet
		atts    map[int64]model.Attachment
		att2s   map[int64]model.Attachment2
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		boxes, err = lookup(gctx, r.calls, "boxes by id",
			foreignKeys(units, func(u model.Unit) *int64 { return u.BoxID }),
			r.store.BoxesByID, func(b model.Box) int64 { return b.ID })
		if err != nil {
			return err
		}
		pallets, err = r.pallets(gctx, mapValues(boxes))
		return err
	})
	g.Go(func() error {
		var err error
		atts, err = lookup(gctx, r.calls, "attachments by id",
			foreignKeys(units, func(u model.Unit) *int64 { return u.AttachmentID }),
			r.store.AttachmentsByID, func(a model.Attachment) int64 { return a.ID })
		return err
	})
	g.Go(func() error {
		var err error
		att2s, err = lookup(gctx, r.calls, "attachment2s by id",
			foreignKeys(units, func(u model.Unit) *int64 { return u.Attachment2ID }),
			r.store.Attachment2sByID, func(a model.Attachment2) int64 { return a.ID })
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, u := range units {
		row := model.UnitRow{
			Unit:             u,
			BoxSerial:        project(boxes, u.BoxID, func(b model.Box) string { return b.Serial }),
			AttachmentNomor:  project(atts, u.AttachmentID, func(a model.Attachment) string { return a.Nomor }),
			Attachment2Nomor: project(att2s, u.Attachment2ID, func(a model.Attachment2) string { return a.Nomor }),
			Area:             project(att2s, u.Attachment2ID, func(a model.Attachment2) string { return a.Area }),
			Status:           u.Status(),
			PalletSerial:     model.None,
		}
		if u.BoxID != nil {
			if b, ok := boxes[*u.BoxID]; ok {
				row.PalletSerial = project(pallets, b.PalletID, func(p model.Pallet) string { return p.Serial })
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ResolveBoxes enriches boxes with their pallet serial. Counts are left to
// the caller.
func (r *Resolver) ResolveBoxes(ctx context.Context, boxes []model.Box) ([]model.BoxRow, error) {
	rows := make([]model.BoxRow, 0, len(boxes))
	if len(boxes) == 0 {
		return rows, nil
	}
	pallets, err := r.pallets(ctx, boxes)
	if err != nil {
		return nil, err
	}
	for _, b := range boxes {
		rows = append(rows, model.BoxRow{
			Box:          b,
			PalletSerial: project(pallets, b.PalletID, func(p model.Pallet) string { return p.Serial }),
		})
	}
	return rows, nil
}

func (r *Resolver) pallets(ctx context.Context, boxes []model.Box) (map[int64]model.Pallet, error) {
	return lookup(ctx, r.calls, "pallets by id",
		foreignKeys(boxes, func(b model.Box) *int64 { return b.PalletID }),
		r.store.PalletsByID, func(p model.Pallet) int64 { return p.ID })
}

func mapValues[T any](m map[int64]T) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}
