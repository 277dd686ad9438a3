package search

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/packtrace/packtrace/internal/model"
	"github.com/packtrace/packtrace/internal/store"
)

// TypeAll is the type filter value that disables type filtering.
const TypeAll = "all"

// Request is a search over the packaging hierarchy.
type Request struct {
	// Scope is the level Start/End are matched against; LevelAuto detects it.
	Scope model.Level
	Start string
	// End turns the search into an inclusive range when set with Start.
	End  string
	Type string
	// From and To filter unit timestamps; both must be set to apply.
	From time.Time
	To   time.Time
	// GroupBy only affects exports.
	GroupBy model.GroupBy
}

func (r Request) normalized() Request {
	r.Start = strings.TrimSpace(r.Start)
	r.End = strings.TrimSpace(r.End)
	r.Type = strings.TrimSpace(r.Type)
	if r.Scope == "" {
		r.Scope = model.LevelAuto
	}
	if r.GroupBy == "" {
		r.GroupBy = model.GroupNone
	}
	return r
}

func (r Request) hasDates() bool { return !r.From.IsZero() && !r.To.IsZero() }

// logFields describes the request for store-failure logs.
func (r Request) logFields() []zap.Field {
	fields := []zap.Field{
		zap.String("scope", string(r.Scope)),
		zap.String("start", r.Start),
		zap.String("end", r.End),
		zap.String("type", r.Type),
		zap.String("group_by", string(r.GroupBy)),
	}
	if r.hasDates() {
		fields = append(fields, zap.Time("from", r.From), zap.Time("to", r.To))
	}
	return fields
}

// Plan is the executable form of a Request.
type Plan struct {
	Request Request

	// Scope is the resolved level. It stays LevelAuto when a prefix matched
	// several levels or no serial filter is present.
	Scope model.Level
	// Levels are the levels the serial predicate is evaluated against.
	Levels []model.Level
	Range  bool

	// Search is the serial predicate, nil when no serial was given.
	Search  Predicate
	Filters []Predicate

	Joins    JoinPath
	Sort     []OrderTerm
	Warnings []Warning
}

// Where returns the full unit filter.
func (p *Plan) Where() Predicate {
	all := And{}
	if p.Search != nil {
		all = append(all, p.Search)
	}
	return append(all, p.Filters...)
}

// HasLeafFilters reports whether any unit-level filter is active.
func (p *Plan) HasLeafFilters() bool {
	return p.Search != nil || len(p.Filters) > 0
}

// Matches reports whether the serial predicate is evaluated against level.
func (p *Plan) Matches(level model.Level) bool {
	return slices.Contains(p.Levels, level)
}

// Select compiles the plan into a unit query.
func (p *Plan) Select() store.Select {
	where, args := p.Where().SQL()
	return store.Select{
		Joins:   p.Joins.Clauses(),
		Where:   where,
		Args:    args,
		OrderBy: orderSQL(p.Sort),
	}
}

// Planner turns requests into plans.
type Planner struct {
	detector *Detector
	// prefixLen is how many leading characters of a range's ends must agree
	// before a prefix mismatch warning is raised. Zero disables the check.
	prefixLen int
}

// Plan resolves the request's scope and builds its predicate, join path, and
// sort order. A range whose ends belong to disjoint levels is rejected with a
// ValidationError.
func (pl *Planner) Plan(ctx context.Context, req Request) (*Plan, error) {
	req = req.normalized()
	if req.Scope != model.LevelAuto && req.Scope.Rank() < 0 {
		return nil, invalid(CodeInvalidInput, "unknown search scope %q", req.Scope)
	}
	if req.hasDates() && req.From.After(req.To) {
		return nil, invalid(CodeInvalidDate, "start date %s is after end date %s",
			req.From.Format(time.RFC3339), req.To.Format(time.RFC3339))
	}

	p := &Plan{Request: req, Scope: req.Scope}

	switch {
	case req.Start == "":
		p.Scope = model.LevelAuto
	case req.End == "":
		if err := pl.planPrefix(ctx, p); err != nil {
			return nil, err
		}
	default:
		if err := pl.planRange(ctx, p); err != nil {
			return nil, err
		}
	}

	if req.Type != "" && !strings.EqualFold(req.Type, TypeAll) {
		p.Filters = append(p.Filters, Equal{Field: UnitType, Value: req.Type})
	}
	if req.hasDates() {
		p.Filters = append(p.Filters, Between{Field: UnitTimestamp, From: req.From, To: req.To})
	}

	p.Joins = pathFor(p.Levels...)
	p.Sort = sortFor(p)
	return p, nil
}

func (pl *Planner) planPrefix(ctx context.Context, p *Plan) error {
	start := p.Request.Start
	if p.Scope != model.LevelAuto {
		f, _ := LevelField(p.Scope)
		p.Levels = []model.Level{p.Scope}
		p.Search = Prefix{Field: f, Value: start}
		return nil
	}

	levels, err := pl.detector.Detect(ctx, start)
	if err != nil {
		return err
	}
	if len(levels) == 0 {
		p.Search = False{}
		return nil
	}

	or := make(Or, 0, len(levels))
	for _, l := range levels {
		f, _ := LevelField(l)
		or = append(or, Prefix{Field: f, Value: start})
	}
	p.Levels = levels
	p.Search = or
	if len(levels) == 1 {
		p.Scope = levels[0]
	}
	return nil
}

func (pl *Planner) planRange(ctx context.Context, p *Plan) error {
	start, end := p.Request.Start, p.Request.End

	startLevels, endLevels, err := pl.detector.DetectRange(ctx, start, end)
	if err != nil {
		return err
	}
	scope, err := rangeScope(p.Request.Scope, startLevels, endLevels)
	if err != nil {
		return err
	}

	f, _ := LevelField(scope)
	p.Scope = scope
	p.Levels = []model.Level{scope}
	p.Range = true
	p.Search = Range{Field: f, From: start, To: end}

	if w, ok := prefixMismatch(start, end, pl.prefixLen); ok {
		p.Warnings = append(p.Warnings, w)
	}
	return nil
}

// rangeScope picks the level a range is evaluated against.
func rangeScope(requested model.Level, startLevels, endLevels []model.Level) (model.Level, error) {
	switch {
	case len(startLevels) > 0 && len(endLevels) > 0:
		for _, l := range startLevels {
			if slices.Contains(endLevels, l) {
				return l, nil
			}
		}
		return "", &ValidationError{
			Code: CodeScopeMismatch,
			Message: fmt.Sprintf("range mismatch: start is %s but end is %s; both ends must be the same type",
				joinLevels(startLevels), joinLevels(endLevels)),
		}
	case len(startLevels) > 0 || len(endLevels) > 0:
		detected := startLevels
		if len(detected) == 0 {
			detected = endLevels
		}
		if slices.Contains(detected, requested) {
			return requested, nil
		}
		return detected[0], nil
	case requested != model.LevelAuto:
		return requested, nil
	default:
		return model.LevelSerial, nil
	}
}

func prefixMismatch(start, end string, n int) (Warning, bool) {
	if n <= 0 {
		return Warning{}, false
	}
	a, b := leading(start, n), leading(end, n)
	if a == b {
		return Warning{}, false
	}
	return Warning{
		Code:    WarnPrefixMismatch,
		Message: fmt.Sprintf("prefix mismatch: start %q vs end %q; is this a valid range?", a, b),
	}, true
}

func leading(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}

func joinLevels(levels []model.Level) string {
	parts := make([]string, len(levels))
	for i, l := range levels {
		parts[i] = "'" + string(l) + "'"
	}
	return strings.Join(parts, " or ")
}

func sortFor(p *Plan) []OrderTerm {
	if !p.Range {
		return []OrderTerm{{Field: UnitTimestamp, Desc: true}, {Field: UnitID, Desc: true}}
	}
	f, _ := LevelField(p.Scope)
	return []OrderTerm{{Field: f}, {Field: UnitID}}
}
