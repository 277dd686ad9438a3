package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packtrace/packtrace/internal/model"
)

func TestDetect(t *testing.T) {
	e, _, _ := plant(t)
	ctx := context.Background()

	tests := []struct {
		prefix string
		want   []model.Level
	}{
		{"BX100", []model.Level{model.LevelSerial}},
		{"MX500", []model.Level{model.LevelModuleSerial}},
		{"B000", []model.Level{model.LevelBox}},
		{"P0", []model.Level{model.LevelPallet}},
		{"B", []model.Level{model.LevelSerial, model.LevelBox}},
		{"bx100", []model.Level{}},
		{"ZZZ", []model.Level{}},
		{"BX*", []model.Level{}},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			got, err := e.Detect(ctx, tt.prefix)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectScenarioA(t *testing.T) {
	e, _ := engineFor(t, `
units:
  - {serial: BX1000, module_serial: MX5000}
  - {serial: BX1001}
  - {serial: QQ0001}
`)
	ctx := context.Background()

	got, err := e.Detect(ctx, "BX100")
	require.NoError(t, err)
	assert.Equal(t, []model.Level{model.LevelSerial}, got)

	got, err = e.Detect(ctx, "MX500")
	require.NoError(t, err)
	assert.Equal(t, []model.Level{model.LevelModuleSerial}, got)
}

func TestDetectEmptyPrefixSkipsProbes(t *testing.T) {
	e, spy, _ := plant(t)

	got, err := e.Detect(context.Background(), "")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Zero(t, spy.count("ExistsPrefix"))
}

// Every detected level must have a matching row, and every level with a
// matching row must be detected.
func TestDetectSoundness(t *testing.T) {
	e, _, h := plant(t)
	ctx := context.Background()

	values := map[model.Level][]string{}
	for _, q := range []struct {
		level model.Level
		sql   string
	}{
		{model.LevelSerial, "SELECT serial FROM unit"},
		{model.LevelModuleSerial, "SELECT module_serial FROM unit"},
		{model.LevelBox, "SELECT serial FROM box"},
		{model.LevelPallet, "SELECT serial FROM pallet"},
	} {
		rows, err := h.Store.DB().Query(q.sql)
		require.NoError(t, err)
		for rows.Next() {
			var v string
			require.NoError(t, rows.Scan(&v))
			values[q.level] = append(values[q.level], v)
		}
		require.NoError(t, rows.Close())
	}

	hasPrefix := func(level model.Level, p string) bool {
		for _, v := range values[level] {
			if len(v) >= len(p) && v[:len(p)] == p {
				return true
			}
		}
		return false
	}

	prefixes := map[string]bool{}
	for _, vs := range values {
		for _, v := range vs {
			for n := 1; n <= len(v); n++ {
				prefixes[v[:n]] = true
			}
		}
	}

	for p := range prefixes {
		got, err := e.Detect(ctx, p)
		require.NoError(t, err)
		for _, l := range model.Levels {
			assert.Equal(t, hasPrefix(l, p), containsLevel(got, l), "prefix %q level %s", p, l)
		}
	}
}

func containsLevel(levels []model.Level, l model.Level) bool {
	for _, x := range levels {
		if x == l {
			return true
		}
	}
	return false
}

func TestDetectProbeFailure(t *testing.T) {
	e, spy, _ := plant(t)
	ctx := context.Background()
	boom := errors.New("disk on fire")

	spy.failLevels[model.LevelBox] = boom
	got, err := e.Detect(ctx, "B")
	require.NoError(t, err, "one failed probe counts as no match")
	assert.Equal(t, []model.Level{model.LevelSerial}, got)

	for _, l := range model.Levels {
		spy.failLevels[l] = boom
	}
	_, err = e.Detect(ctx, "B")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStore)
	assert.ErrorIs(t, err, boom)
}

func TestDetectCancelled(t *testing.T) {
	e, _, _ := plant(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Detect(ctx, "BX")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDetectRangeRunsBothEnds(t *testing.T) {
	e, spy, _ := plant(t)

	start, end, err := e.detector.DetectRange(context.Background(), "BX1000", "P0002")
	require.NoError(t, err)
	assert.Equal(t, []model.Level{model.LevelSerial}, start)
	assert.Equal(t, []model.Level{model.LevelPallet}, end)
	assert.Equal(t, 2*len(model.Levels), spy.count("ExistsPrefix"))
}
