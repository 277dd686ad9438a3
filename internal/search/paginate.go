package search

import (
	"context"
	"math"

	"github.com/packtrace/packtrace/internal/model"
)

// Page is one hydrated page of units and the total match count.
type Page struct {
	Units []model.Unit
	Total int
}

// Paginator fetches pages in three sequential phases: count, key page, and
// hydration by id set.
type Paginator struct {
	store Store
	calls *caller
}

// Fetch returns page (0-indexed) of size rows for plan. A page with no keys
// reports a total of 0 and skips hydration, and so does a page whose offset
// does not fit in an int. A size of zero fetches every matching row.
func (p *Paginator) Fetch(ctx context.Context, plan *Plan, page, size int) (Page, error) {
	if page < 0 || size < 0 {
		return Page{}, invalid(CodeInvalidPage, "invalid page %d or page size %d", page, size)
	}
	if size > 0 && page > math.MaxInt/size {
		return Page{Units: []model.Unit{}, Total: 0}, nil
	}
	q := plan.Select()

	total, err := call(ctx, p.calls, "count units", func(ctx context.Context) (int, error) {
		return p.store.CountUnits(ctx, q)
	})
	if err != nil {
		return Page{}, err
	}

	q.Limit, q.Offset = size, page*size
	keys, err := call(ctx, p.calls, "unit keys", func(ctx context.Context) ([]int64, error) {
		return p.store.UnitKeys(ctx, q)
	})
	if err != nil {
		return Page{}, err
	}
	if len(keys) == 0 {
		return Page{Units: []model.Unit{}, Total: 0}, nil
	}

	units, err := call(ctx, p.calls, "hydrate units", func(ctx context.Context) ([]model.Unit, error) {
		return p.store.UnitsByID(ctx, keys)
	})
	if err != nil {
		return Page{}, err
	}
	return Page{Units: inKeyOrder(keys, units), Total: total}, nil
}

// inKeyOrder reorders hydrated units to match keys. Keys whose row vanished
// between phases are dropped.
func inKeyOrder(keys []int64, units []model.Unit) []model.Unit {
	byID := make(map[int64]model.Unit, len(units))
	for _, u := range units {
		byID[u.ID] = u
	}
	out := make([]model.Unit, 0, len(keys))
	for _, k := range keys {
		if u, ok := byID[k]; ok {
			out = append(out, u)
		}
	}
	return out
}
