package search

import (
	"fmt"
	"strings"
	"time"

	"github.com/packtrace/packtrace/internal/model"
	"github.com/packtrace/packtrace/internal/sqlutil"
)

// Field is a column addressed through one of the hierarchy aliases:
// u (unit), b (box), pal (pallet).
type Field struct {
	Alias  string
	Column string
}

func (f Field) String() string { return f.Alias + "." + f.Column }

var (
	UnitID           = Field{"u", "id"}
	UnitSerial       = Field{"u", "serial"}
	UnitModuleSerial = Field{"u", "module_serial"}
	UnitType         = Field{"u", "type"}
	UnitTimestamp    = Field{"u", "timestamp"}

	BoxID        = Field{"b", "id"}
	BoxSerial    = Field{"b", "serial"}
	BoxTimestamp = Field{"b", "timestamp"}

	PalletID        = Field{"pal", "id"}
	PalletSerial    = Field{"pal", "serial"}
	PalletTimestamp = Field{"pal", "timestamp"}
)

// LevelField returns the serial-like field a level searches.
func LevelField(l model.Level) (Field, bool) {
	switch l {
	case model.LevelSerial:
		return UnitSerial, true
	case model.LevelModuleSerial:
		return UnitModuleSerial, true
	case model.LevelBox:
		return BoxSerial, true
	case model.LevelPallet:
		return PalletSerial, true
	}
	return Field{}, false
}

// Predicate is a boolean condition that compiles to a parameterized SQL fragment.
type Predicate interface {
	SQL() (string, []any)
}

// Prefix matches rows whose field starts with Value.
type Prefix struct {
	Field Field
	Value string
}

func (p Prefix) SQL() (string, []any) {
	return p.Field.String() + " GLOB ?", []any{sqlutil.GlobPrefix(p.Value)}
}

// Range matches rows whose field lies lexicographically within [From, To].
type Range struct {
	Field    Field
	From, To string
}

func (r Range) SQL() (string, []any) {
	f := r.Field.String()
	return fmt.Sprintf("(%s >= ? AND %s <= ?)", f, f), []any{r.From, r.To}
}

// Equal matches rows whose field equals Value.
type Equal struct {
	Field Field
	Value any
}

func (e Equal) SQL() (string, []any) {
	return e.Field.String() + " = ?", []any{e.Value}
}

// Between matches rows whose timestamp lies within [From, To].
// Timestamps are stored as unix milliseconds.
type Between struct {
	Field    Field
	From, To time.Time
}

func (b Between) SQL() (string, []any) {
	f := b.Field.String()
	return fmt.Sprintf("(%s >= ? AND %s <= ?)", f, f), []any{b.From.UnixMilli(), b.To.UnixMilli()}
}

// InQuery matches rows whose field is among the values Query selects.
type InQuery struct {
	Field Field
	Query string
	Args  []any
}

func (in InQuery) SQL() (string, []any) {
	return fmt.Sprintf("%s IN (%s)", in.Field, in.Query), in.Args
}

// False matches nothing.
type False struct{}

func (False) SQL() (string, []any) { return "1 = 0", nil }

// Or matches rows satisfying any member. An empty Or matches nothing.
type Or []Predicate

func (o Or) SQL() (string, []any) {
	switch len(o) {
	case 0:
		return False{}.SQL()
	case 1:
		return o[0].SQL()
	}
	return join(o, " OR ")
}

// And matches rows satisfying every member. An empty And matches everything
// and compiles to the empty string.
type And []Predicate

func (a And) SQL() (string, []any) {
	switch len(a) {
	case 0:
		return "", nil
	case 1:
		return a[0].SQL()
	}
	return join(a, " AND ")
}

func join(preds []Predicate, sep string) (string, []any) {
	parts := make([]string, 0, len(preds))
	var args []any
	for _, p := range preds {
		s, a := p.SQL()
		parts = append(parts, s)
		args = append(args, a...)
	}
	return "(" + strings.Join(parts, sep) + ")", args
}

// OrderTerm is one ORDER BY key.
type OrderTerm struct {
	Field Field
	Desc  bool
}

func orderSQL(terms []OrderTerm) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		dir := "ASC"
		if t.Desc {
			dir = "DESC"
		}
		parts[i] = t.Field.String() + " " + dir
	}
	return strings.Join(parts, ", ")
}
