package search

import (
	"context"

	"github.com/packtrace/packtrace/internal/model"
	"github.com/packtrace/packtrace/internal/store"
)

// Aggregator lists the containers that hold matching units, with child counts.
type Aggregator struct {
	store    Store
	calls    *caller
	resolver *Resolver
}

// Boxes returns the boxes holding units that match plan, plus boxes whose own
// serial matches when plan searches the box level.
func (a *Aggregator) Boxes(ctx context.Context, plan *Plan) ([]model.BoxRow, error) {
	q := containerSelect(plan, model.LevelBox, BoxID, BoxSerial, BoxTimestamp)

	boxes, err := call(ctx, a.calls, "select boxes", func(ctx context.Context) ([]model.Box, error) {
		return a.store.SelectBoxes(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	rows, err := a.resolver.ResolveBoxes(ctx, boxes)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(boxes))
	for i, b := range boxes {
		ids[i] = b.ID
	}
	counts, err := a.counts(ctx, "count units by box", ids, a.store.CountUnitsByBox)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Count = counts[rows[i].ID]
	}
	return rows, nil
}

// Pallets returns the pallets reached from units that match plan through
// their boxes, plus pallets whose own serial matches when plan searches the
// pallet level.
func (a *Aggregator) Pallets(ctx context.Context, plan *Plan) ([]model.PalletRow, error) {
	q := containerSelect(plan, model.LevelPallet, PalletID, PalletSerial, PalletTimestamp)

	pallets, err := call(ctx, a.calls, "select pallets", func(ctx context.Context) ([]model.Pallet, error) {
		return a.store.SelectPallets(ctx, q)
	})
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(pallets))
	for i, p := range pallets {
		ids[i] = p.ID
	}
	counts, err := a.counts(ctx, "count boxes by pallet", ids, a.store.CountBoxesByPallet)
	if err != nil {
		return nil, err
	}

	rows := make([]model.PalletRow, 0, len(pallets))
	for _, p := range pallets {
		rows = append(rows, model.PalletRow{Pallet: p, Count: counts[p.ID]})
	}
	return rows, nil
}

// containerSelect builds the container query for a grouped view. The ids of
// containers reached from matching units stay in SQL as a subquery, so the
// query size does not grow with the number of matches.
func containerSelect(plan *Plan, level model.Level, id, serial, timestamp Field) store.Select {
	var q store.Select
	if plan.Range && plan.Scope == level {
		q.OrderBy = orderSQL([]OrderTerm{{Field: serial}, {Field: id}})
	} else {
		q.OrderBy = orderSQL([]OrderTerm{{Field: timestamp, Desc: true}, {Field: id, Desc: true}})
	}

	if !plan.HasLeafFilters() {
		return q
	}

	units := plan.Select()
	sub, args := units.BoxIDs()
	if level == model.LevelPallet {
		sub, args = units.PalletIDs()
	}
	where := Or{InQuery{Field: id, Query: sub, Args: args}}
	if direct := directPredicate(plan, level, serial); direct != nil {
		where = append(where, direct)
	}
	q.Where, q.Args = where.SQL()
	return q
}

// directPredicate matches containers on their own serial when the plan's
// serial search covers the container level.
func directPredicate(plan *Plan, level model.Level, serial Field) Predicate {
	if plan.Search == nil || !plan.Matches(level) {
		return nil
	}
	req := plan.Request
	if plan.Range {
		return Range{Field: serial, From: req.Start, To: req.End}
	}
	return Prefix{Field: serial, Value: req.Start}
}

func (a *Aggregator) counts(ctx context.Context, op string, ids []int64,
	fn func(context.Context, []int64) (map[int64]int, error)) (map[int64]int, error) {
	if len(ids) == 0 {
		return map[int64]int{}, nil
	}
	return call(ctx, a.calls, op, func(ctx context.Context) (map[int64]int, error) {
		return fn(ctx, ids)
	})
}
