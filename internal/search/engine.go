// Package search implements serial search over the unit → box → pallet
// packaging hierarchy: level detection, query planning, paginated fetches,
// batched relation resolution, and container grouping. Every surface (HTTP,
// CLI, MCP, export) goes through Engine.
package search

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/packtrace/packtrace/internal/model"
)

// Defaults applied by New for zero Options fields.
const (
	DefaultStoreTimeout      = 5 * time.Second
	DefaultPrefixMismatchLen = 3
	DefaultPageSize          = 100
	DefaultMaxPageSize       = 1000
	DefaultExportLimit       = 10000
)

// Options configures an Engine.
type Options struct {
	Logger       *zap.Logger
	StoreTimeout time.Duration
	// PrefixMismatchLen is the number of leading characters compared between
	// range ends. Negative disables the warning.
	PrefixMismatchLen int
	DefaultPageSize   int
	MaxPageSize       int
	ExportLimit       int
}

// Engine is the single entry point for searches. It keeps no state between
// requests and is safe for concurrent use.
type Engine struct {
	log *zap.Logger

	detector   *Detector
	planner    *Planner
	paginator  *Paginator
	resolver   *Resolver
	aggregator *Aggregator

	defaultPageSize int
	maxPageSize     int
	exportLimit     int
}

// New builds an Engine over s.
func New(s Store, opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("search")

	timeout := opts.StoreTimeout
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	prefixLen := opts.PrefixMismatchLen
	if prefixLen == 0 {
		prefixLen = DefaultPrefixMismatchLen
	}

	calls := &caller{timeout: timeout}
	detector := &Detector{store: s, calls: calls, log: log.Named("detect")}
	resolver := &Resolver{store: s, calls: calls}

	return &Engine{
		log:        log,
		detector:   detector,
		planner:    &Planner{detector: detector, prefixLen: prefixLen},
		paginator:  &Paginator{store: s, calls: calls},
		resolver:   resolver,
		aggregator: &Aggregator{store: s, calls: calls, resolver: resolver},

		defaultPageSize: orDefault(opts.DefaultPageSize, DefaultPageSize),
		maxPageSize:     orDefault(opts.MaxPageSize, DefaultMaxPageSize),
		exportLimit:     orDefault(opts.ExportLimit, DefaultExportLimit),
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// Detect returns the levels holding a value that starts with prefix, in
// priority order. An empty prefix yields an empty result.
func (e *Engine) Detect(ctx context.Context, prefix string) ([]model.Level, error) {
	levels, err := e.detector.Detect(ctx, prefix)
	if err != nil {
		e.log.Error("detect failed", zap.String("prefix", prefix), zap.Error(err))
		return nil, err
	}
	return levels, nil
}

// Explain plans req without executing it.
func (e *Engine) Explain(ctx context.Context, req Request) (*Plan, error) {
	plan, err := e.planner.Plan(ctx, req)
	if err != nil {
		return nil, e.failed("explain", req, err)
	}
	return plan, nil
}

// ListResult is one page of enriched units.
type ListResult struct {
	Rows       []model.UnitRow `json:"items"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
	Warnings   []Warning       `json:"-"`
}

// List returns page (1-based) of the units matching req. A limit of zero
// selects the default page size; larger limits are capped.
func (e *Engine) List(ctx context.Context, req Request, page, limit int) (*ListResult, error) {
	if page == 0 {
		page = 1
	}
	if page < 0 || limit < 0 {
		return nil, invalid(CodeInvalidPage, "page and limit must be positive")
	}
	if limit == 0 {
		limit = e.defaultPageSize
	}
	limit = min(limit, e.maxPageSize)

	plan, err := e.planner.Plan(ctx, req)
	if err != nil {
		return nil, e.failed("list", req, err)
	}
	p, err := e.paginator.Fetch(ctx, plan, page-1, limit)
	if err != nil {
		return nil, e.failed("list", req, err)
	}
	rows, err := e.resolver.ResolveUnits(ctx, p.Units)
	if err != nil {
		return nil, e.failed("list", req, err)
	}

	return &ListResult{
		Rows:       rows,
		Total:      p.Total,
		Page:       page,
		Limit:      limit,
		TotalPages: (p.Total + limit - 1) / limit,
		Warnings:   plan.Warnings,
	}, nil
}

// Report is the row set of an export. Exactly one of Units, Boxes, or
// Pallets is populated, according to GroupBy.
type Report struct {
	GroupBy  model.GroupBy
	Units    []model.UnitRow
	Boxes    []model.BoxRow
	Pallets  []model.PalletRow
	Warnings []Warning
}

// Len returns the number of rows in the populated set.
func (r *Report) Len() int {
	switch r.GroupBy {
	case model.GroupBox:
		return len(r.Boxes)
	case model.GroupPallet:
		return len(r.Pallets)
	}
	return len(r.Units)
}

// Export collects the rows for an export of req. Ungrouped exports hold the
// same rows List would return for the same filters, capped at the export
// limit. Grouped exports list every matching container.
func (e *Engine) Export(ctx context.Context, req Request) (*Report, error) {
	plan, err := e.planner.Plan(ctx, req)
	if err != nil {
		return nil, e.failed("export", req, err)
	}
	rep := &Report{GroupBy: plan.Request.GroupBy, Warnings: plan.Warnings}

	switch rep.GroupBy {
	case model.GroupBox:
		rep.Boxes, err = e.aggregator.Boxes(ctx, plan)
	case model.GroupPallet:
		rep.Pallets, err = e.aggregator.Pallets(ctx, plan)
	default:
		var p Page
		p, err = e.paginator.Fetch(ctx, plan, 0, e.exportLimit)
		if err == nil {
			rep.Units, err = e.resolver.ResolveUnits(ctx, p.Units)
		}
	}
	if err != nil {
		return nil, e.failed("export", req, err)
	}
	return rep, nil
}

// BoxUnits lists the units packed in a box. A box with no units, or an
// unknown box, yields an empty list.
func (e *Engine) BoxUnits(ctx context.Context, boxID int64) ([]model.ChildUnit, error) {
	units, err := call(ctx, e.paginator.calls, "units in box", func(ctx context.Context) ([]model.ChildUnit, error) {
		return e.paginator.store.UnitsInBox(ctx, boxID)
	})
	if err != nil {
		e.log.Error("box units failed", zap.Int64("box_id", boxID), zap.Error(err))
		return nil, err
	}
	if units == nil {
		units = []model.ChildUnit{}
	}
	return units, nil
}

// PalletBoxes lists the boxes stacked on a pallet. A pallet with no boxes, or
// an unknown pallet, yields an empty list.
func (e *Engine) PalletBoxes(ctx context.Context, palletID int64) ([]model.Box, error) {
	boxes, err := call(ctx, e.paginator.calls, "boxes on pallet", func(ctx context.Context) ([]model.Box, error) {
		return e.paginator.store.BoxesOnPallet(ctx, palletID)
	})
	if err != nil {
		e.log.Error("pallet boxes failed", zap.Int64("pallet_id", palletID), zap.Error(err))
		return nil, err
	}
	if boxes == nil {
		boxes = []model.Box{}
	}
	return boxes, nil
}

// failed logs store failures with the request filters and returns err.
func (e *Engine) failed(op string, req Request, err error) error {
	if errors.Is(err, ErrStore) {
		e.log.Error(op+" failed", append(req.normalized().logFields(), zap.Error(err))...)
	}
	return err
}
