package search

import "github.com/packtrace/packtrace/internal/model"

// Join is one named step from units up the hierarchy.
type Join struct {
	Name   string
	Clause string
}

// JoinPath is an ordered prefix of the unit → box → pallet join chain.
type JoinPath []Join

// hierarchy is the full chain. LEFT joins keep unassigned units visible to
// predicates OR'd across levels.
var hierarchy = JoinPath{
	{Name: "box", Clause: "LEFT JOIN box b ON u.box_id = b.id"},
	{Name: "pallet", Clause: "LEFT JOIN pallet pal ON b.pallet_id = pal.id"},
}

func joinDepth(l model.Level) int {
	switch l {
	case model.LevelBox:
		return 1
	case model.LevelPallet:
		return 2
	}
	return 0
}

// pathFor returns the shortest join path that reaches every level.
func pathFor(levels ...model.Level) JoinPath {
	depth := 0
	for _, l := range levels {
		depth = max(depth, joinDepth(l))
	}
	return hierarchy[:depth]
}

// Names lists the join names in order.
func (p JoinPath) Names() []string {
	out := make([]string, len(p))
	for i, j := range p {
		out[i] = j.Name
	}
	return out
}

// Clauses lists the SQL join clauses in order.
func (p JoinPath) Clauses() []string {
	out := make([]string, len(p))
	for i, j := range p {
		out[i] = j.Clause
	}
	return out
}

// Has reports whether the path includes the named join.
func (p JoinPath) Has(name string) bool {
	for _, j := range p {
		if j.Name == name {
			return true
		}
	}
	return false
}
