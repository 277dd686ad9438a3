package search

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packtrace/packtrace/internal/model"
)

// planShape is the observable part of a plan.
type planShape struct {
	Scope   model.Level
	Levels  []model.Level
	Range   bool
	Joins   []string
	Where   string
	Args    []any
	OrderBy string
}

func shapeOf(p *Plan) planShape {
	q := p.Select()
	return planShape{
		Scope:   p.Scope,
		Levels:  p.Levels,
		Range:   p.Range,
		Joins:   p.Joins.Names(),
		Where:   q.Where,
		Args:    q.Args,
		OrderBy: q.OrderBy,
	}
}

const defaultOrder = "u.timestamp DESC, u.id DESC"

func TestPlan(t *testing.T) {
	e, _, _ := plant(t)
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	tests := []struct {
		name string
		req  Request
		want planShape
	}{
		{
			name: "no filters",
			req:  Request{},
			want: planShape{Scope: model.LevelAuto, Joins: []string{}, OrderBy: defaultOrder},
		},
		{
			name: "auto prefix on one level",
			req:  Request{Start: "BX10"},
			want: planShape{
				Scope: model.LevelSerial, Levels: []model.Level{model.LevelSerial},
				Joins: []string{}, Where: "u.serial GLOB ?", Args: []any{"BX10*"}, OrderBy: defaultOrder,
			},
		},
		{
			name: "auto prefix on pallet joins through box",
			req:  Request{Start: "P00"},
			want: planShape{
				Scope: model.LevelPallet, Levels: []model.Level{model.LevelPallet},
				Joins: []string{"box", "pallet"}, Where: "pal.serial GLOB ?", Args: []any{"P00*"}, OrderBy: defaultOrder,
			},
		},
		{
			name: "auto prefix on several levels",
			req:  Request{Start: "B"},
			want: planShape{
				Scope: model.LevelAuto, Levels: []model.Level{model.LevelSerial, model.LevelBox},
				Joins: []string{"box"}, Where: "(u.serial GLOB ? OR b.serial GLOB ?)", Args: []any{"B*", "B*"}, OrderBy: defaultOrder,
			},
		},
		{
			name: "undetected prefix matches nothing",
			req:  Request{Start: "NOPE"},
			want: planShape{Scope: model.LevelAuto, Joins: []string{}, Where: "1 = 0", OrderBy: defaultOrder},
		},
		{
			name: "explicit scope skips detection",
			req:  Request{Scope: model.LevelModuleSerial, Start: "NOPE"},
			want: planShape{
				Scope: model.LevelModuleSerial, Levels: []model.Level{model.LevelModuleSerial},
				Joins: []string{}, Where: "u.module_serial GLOB ?", Args: []any{"NOPE*"}, OrderBy: defaultOrder,
			},
		},
		{
			name: "type and dates",
			req:  Request{Type: "M1", From: from, To: to},
			want: planShape{
				Scope: model.LevelAuto, Joins: []string{},
				Where:   "(u.type = ? AND (u.timestamp >= ? AND u.timestamp <= ?))",
				Args:    []any{"M1", from.UnixMilli(), to.UnixMilli()},
				OrderBy: defaultOrder,
			},
		},
		{
			name: "type all is no filter",
			req:  Request{Type: "all"},
			want: planShape{Scope: model.LevelAuto, Joins: []string{}, OrderBy: defaultOrder},
		},
		{
			name: "single date bound is ignored",
			req:  Request{From: from},
			want: planShape{Scope: model.LevelAuto, Joins: []string{}, OrderBy: defaultOrder},
		},
		{
			name: "end without start is ignored",
			req:  Request{End: "BX1003"},
			want: planShape{Scope: model.LevelAuto, Joins: []string{}, OrderBy: defaultOrder},
		},
		{
			name: "unit range sorts by serial",
			req:  Request{Start: "BX1001", End: "BX1003"},
			want: planShape{
				Scope: model.LevelSerial, Levels: []model.Level{model.LevelSerial}, Range: true,
				Joins: []string{}, Where: "(u.serial >= ? AND u.serial <= ?)", Args: []any{"BX1001", "BX1003"},
				OrderBy: "u.serial ASC, u.id ASC",
			},
		},
		{
			name: "box range joins box",
			req:  Request{Start: "B0001", End: "B0003", Type: "M1"},
			want: planShape{
				Scope: model.LevelBox, Levels: []model.Level{model.LevelBox}, Range: true,
				Joins: []string{"box"}, Where: "((b.serial >= ? AND b.serial <= ?) AND u.type = ?)",
				Args: []any{"B0001", "B0003", "M1"}, OrderBy: "b.serial ASC, u.id ASC",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := e.Explain(context.Background(), tt.req)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, shapeOf(p)); diff != "" {
				t.Errorf("plan mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPlanScenarioB(t *testing.T) {
	e, _ := engineFor(t, `
pallets:
  - {serial: P001, boxes: [{serial: BA, units: [{serial: U1}]}]}
  - {serial: P020, boxes: [{serial: BB, units: [{serial: U2}]}]}
  - {serial: P050, boxes: [{serial: BC, units: [{serial: U3}]}]}
  - {serial: P060, boxes: [{serial: BD, units: [{serial: U4}]}]}
`)
	ctx := context.Background()
	req := Request{Start: "P001", End: "P050"}

	p, err := e.Explain(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, model.LevelPallet, p.Scope)
	assert.True(t, p.Joins.Has("box"))
	assert.True(t, p.Joins.Has("pallet"))
	assert.Equal(t, []OrderTerm{{Field: PalletSerial}, {Field: UnitID}}, p.Sort)
	require.Len(t, p.Warnings, 1, "P00 and P05 differ in the first three characters")

	res, err := e.List(ctx, req, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"U1", "U2", "U3"}, serials(res.Rows))
	assert.Equal(t, []string{"P001", "P020", "P050"}, []string{res.Rows[0].PalletSerial, res.Rows[1].PalletSerial, res.Rows[2].PalletSerial})
}

func TestPlanScenarioC(t *testing.T) {
	e, _ := engineFor(t, `
boxes:
  - {serial: A1-BOX, units: [{serial: X9}]}
units:
  - {serial: A1-UNIT}
  - {serial: Z0}
`)
	ctx := context.Background()

	p, err := e.Explain(ctx, Request{Start: "A1"})
	require.NoError(t, err)
	assert.Equal(t, Or{Prefix{UnitSerial, "A1"}, Prefix{BoxSerial, "A1"}}, p.Search)
	assert.Equal(t, []string{"box"}, p.Joins.Names())

	res, err := e.List(ctx, Request{Start: "A1"}, 1, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"A1-UNIT", "X9"}, serials(res.Rows), "loose units survive the box join")
}

func TestPlanScopeMismatch(t *testing.T) {
	e, spy, _ := plant(t)

	_, err := e.List(context.Background(), Request{Start: "BX1000", End: "P0002"}, 1, 10)
	require.Error(t, err)
	ve, ok := IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, CodeScopeMismatch, ve.Code)
	assert.Contains(t, ve.Message, "'serial'")
	assert.Contains(t, ve.Message, "'pallet'")
	assert.Zero(t, spy.count("CountUnits"), "pagination must not start")
}

func TestPlanPrefixMismatchWarning(t *testing.T) {
	e, _, _ := plant(t)

	res, err := e.List(context.Background(), Request{Start: "BX1000", End: "CX2000"}, 1, 50)
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, WarnPrefixMismatch, res.Warnings[0].Code)
	assert.Equal(t, []string{"BX1000", "BX1001", "BX1002", "BX1003", "BX1004", "CX2000"}, serials(res.Rows))
}

func TestPlanPrefixMismatchConfigurable(t *testing.T) {
	_, _, h := plant(t)
	ctx := context.Background()
	req := Request{Start: "BX1000", End: "BX1900"}

	p, err := New(h.Store, Options{}).Explain(ctx, req)
	require.NoError(t, err)
	assert.Empty(t, p.Warnings)

	p, err = New(h.Store, Options{PrefixMismatchLen: 4}).Explain(ctx, req)
	require.NoError(t, err)
	assert.Len(t, p.Warnings, 1)

	p, err = New(h.Store, Options{PrefixMismatchLen: -1}).Explain(ctx, Request{Start: "BX1000", End: "CX2000"})
	require.NoError(t, err)
	assert.Empty(t, p.Warnings)
}

func TestPlanValidation(t *testing.T) {
	e, _, _ := plant(t)
	now := time.Now()

	tests := []struct {
		name string
		req  Request
		code string
	}{
		{"dates reversed", Request{From: now, To: now.Add(-time.Hour)}, CodeInvalidDate},
		{"unknown scope", Request{Scope: "crate", Start: "X"}, CodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Explain(context.Background(), tt.req)
			ve, ok := IsValidation(err)
			require.True(t, ok, "got %v", err)
			assert.Equal(t, tt.code, ve.Code)
		})
	}
}

func TestRangeScope(t *testing.T) {
	s, m, b, p := model.LevelSerial, model.LevelModuleSerial, model.LevelBox, model.LevelPallet
	auto := model.LevelAuto

	tests := []struct {
		name       string
		requested  model.Level
		start, end []model.Level
		want       model.Level
		mismatch   bool
	}{
		{"first common level", auto, []model.Level{s, b}, []model.Level{b, s}, s, false},
		{"common level ignores request", p, []model.Level{m}, []model.Level{m}, m, false},
		{"disjoint", auto, []model.Level{s}, []model.Level{p}, "", true},
		{"start only", auto, []model.Level{b}, nil, b, false},
		{"end only, request in set", b, nil, []model.Level{s, b}, b, false},
		{"end only, request not in set", p, nil, []model.Level{s, b}, s, false},
		{"neither, explicit", m, nil, nil, m, false},
		{"neither, auto", auto, nil, nil, s, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rangeScope(tt.requested, tt.start, tt.end)
			if tt.mismatch {
				ve, ok := IsValidation(err)
				require.True(t, ok)
				assert.Equal(t, CodeScopeMismatch, ve.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrefixMismatch(t *testing.T) {
	tests := []struct {
		start, end string
		n          int
		warn       bool
	}{
		{"ABC123", "ABC999", 3, false},
		{"ABC123", "ABD123", 3, true},
		{"AB", "AB9", 3, true},
		{"ÄÖÜ1", "ÄÖÜ2", 3, false},
		{"X1", "Y1", 0, false},
	}
	for _, tt := range tests {
		_, got := prefixMismatch(tt.start, tt.end, tt.n)
		assert.Equal(t, tt.warn, got, "%q..%q n=%d", tt.start, tt.end, tt.n)
	}
}

func TestPathFor(t *testing.T) {
	assert.Empty(t, pathFor())
	assert.Empty(t, pathFor(model.LevelSerial, model.LevelModuleSerial))
	assert.Equal(t, []string{"box"}, pathFor(model.LevelSerial, model.LevelBox).Names())
	assert.Equal(t, []string{"box", "pallet"}, pathFor(model.LevelPallet).Names())
}
