package search

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/packtrace/packtrace/internal/model"
)

// Detector finds which hierarchy levels hold a value starting with a prefix.
type Detector struct {
	store Store
	calls *caller
	log   *zap.Logger
}

// Detect probes every level concurrently and returns the levels with at least
// one match, in priority order. An empty prefix yields an empty result without
// probing. A failed probe counts as no match unless every probe fails.
func (d *Detector) Detect(ctx context.Context, prefix string) ([]model.Level, error) {
	if prefix == "" {
		return []model.Level{}, nil
	}

	found := make([]bool, len(model.Levels))
	errs := make([]error, len(model.Levels))

	var g errgroup.Group
	for i, level := range model.Levels {
		g.Go(func() error {
			ok, err := call(ctx, d.calls, "probe "+string(level), func(ctx context.Context) (bool, error) {
				return d.store.ExistsPrefix(ctx, level, prefix)
			})
			found[i], errs[i] = ok, err
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	levels := []model.Level{}
	failed := 0
	for i, level := range model.Levels {
		if errs[i] != nil {
			failed++
			d.log.Warn("level probe failed", zap.String("level", string(level)), zap.String("prefix", prefix), zap.Error(errs[i]))
			continue
		}
		if found[i] {
			levels = append(levels, level)
		}
	}
	if failed == len(model.Levels) {
		return nil, errors.Join(errs...)
	}
	return levels, nil
}

// DetectRange detects both ends of a range concurrently.
func (d *Detector) DetectRange(ctx context.Context, start, end string) (startLevels, endLevels []model.Level, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		startLevels, err = d.Detect(gctx, start)
		return err
	})
	g.Go(func() error {
		var err error
		endLevels, err = d.Detect(gctx, end)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return startLevels, endLevels, nil
}
