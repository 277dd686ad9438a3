package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/packtrace/packtrace/internal/fixture"
	"github.com/packtrace/packtrace/internal/model"
	"github.com/packtrace/packtrace/internal/testutil"
)

func TestExportMatchesList(t *testing.T) {
	h := testutil.NewTestHierarchy(t).
		WithFixture(fixture.Generate(fixture.GenerateOptions{Pallets: 2, BoxesPerPallet: 2, UnitsPerBox: 4, LooseUnits: 3})).
		Build()
	e := New(h.Store, Options{})
	ctx := context.Background()

	for _, req := range []Request{{}, {Type: "M2"}, {Start: "BOX000002", End: "BOX000003"}, {Start: "PAL"}} {
		listed, _ := listAll(t, e, req, 3)
		rep, err := e.Export(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, model.GroupNone, rep.GroupBy)
		assert.Equal(t, listed, rep.Units, "%+v", req)
	}
}

func TestExportUngroupedLimit(t *testing.T) {
	h := testutil.NewTestHierarchy(t).WithFixture(fixture.Generate(fixture.GenerateOptions{LooseUnits: 12})).Build()
	e := New(h.Store, Options{ExportLimit: 5})

	rep, err := e.Export(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, 5, rep.Len())
	assert.Equal(t, "SN0000012", rep.Units[0].Serial)
}

func TestExportCarriesWarnings(t *testing.T) {
	e, _, _ := plant(t)

	rep, err := e.Export(context.Background(), Request{Start: "BX1000", End: "CX2000"})
	require.NoError(t, err)
	require.Len(t, rep.Warnings, 1)
	assert.Equal(t, 6, rep.Len())
}

func TestBoxUnits(t *testing.T) {
	e, _, h := plant(t)
	ctx := context.Background()

	units, err := e.BoxUnits(ctx, h.BoxID("B0001"))
	require.NoError(t, err)
	got := []string{}
	for _, u := range units {
		got = append(got, u.Serial)
	}
	assert.Equal(t, []string{"BX1000", "BX1001", "BX1002"}, got)

	units, err = e.BoxUnits(ctx, h.BoxID("B0200"))
	require.NoError(t, err)
	assert.NotNil(t, units)
	assert.Empty(t, units)

	units, err = e.BoxUnits(ctx, 424242)
	require.NoError(t, err, "unknown boxes are empty, not errors")
	assert.Empty(t, units)
}

func TestPalletBoxes(t *testing.T) {
	e, _, h := plant(t)
	ctx := context.Background()

	boxes, err := e.PalletBoxes(ctx, h.PalletID("P0001"))
	require.NoError(t, err)
	require.Len(t, boxes, 2)
	assert.Equal(t, "B0001", boxes[0].Serial)
	assert.Equal(t, "B0002", boxes[1].Serial)

	boxes, err = e.PalletBoxes(ctx, 424242)
	require.NoError(t, err)
	assert.NotNil(t, boxes)
	assert.Empty(t, boxes)
}

func TestStoreFailureLogsFilters(t *testing.T) {
	_, spy, _ := plant(t)
	core, logs := observer.New(zapcore.ErrorLevel)
	e := New(spy, Options{Logger: zap.New(core)})
	spy.fail["CountUnits"] = errors.New("connection reset")

	_, err := e.List(context.Background(), Request{Type: "M1", Start: "BX"}, 1, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStore)
	_, isValidation := IsValidation(err)
	assert.False(t, isValidation)

	entries := logs.FilterMessage("list failed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "M1", fields["type"])
	assert.Equal(t, "BX", fields["start"])
	assert.Equal(t, "search", entries[0].LoggerName)
}

func TestValidationIsNotLoggedAsFailure(t *testing.T) {
	_, _, h := plant(t)
	core, logs := observer.New(zapcore.ErrorLevel)
	e := New(h.Store, Options{Logger: zap.New(core)})

	_, err := e.List(context.Background(), Request{Start: "BX1000", End: "P0001"}, 1, 10)
	require.Error(t, err)
	assert.Zero(t, logs.Len())
}

func TestStoreTimeout(t *testing.T) {
	_, spy, _ := plant(t)
	e := New(spy, Options{StoreTimeout: 20 * time.Millisecond})
	spy.block["UnitKeys"] = true

	start := time.Now()
	_, err := e.List(context.Background(), Request{}, 1, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStore)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestCancelledRequest(t *testing.T) {
	_, spy, _ := plant(t)
	e := New(spy, Options{})
	spy.block["BoxesByID"] = true

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := e.List(ctx, Request{}, 1, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseID(t *testing.T) {
	id, err := ParseID(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "abc", "0", "-3", "1.5"} {
		_, err := ParseID(bad)
		ve, ok := IsValidation(err)
		require.True(t, ok, bad)
		assert.Equal(t, CodeInvalidInput, ve.Code)
	}
}
