package model

import (
	"fmt"
	"strings"
)

// Level is a hierarchy field a serial search can be evaluated against.
type Level string

const (
	LevelSerial       Level = "serial"
	LevelModuleSerial Level = "module_serial"
	LevelBox          Level = "box"
	LevelPallet       Level = "pallet"

	// LevelAuto asks the engine to detect the level from the input.
	LevelAuto Level = "auto"
)

// Levels lists every searchable level in priority order.
var Levels = []Level{LevelSerial, LevelModuleSerial, LevelBox, LevelPallet}

// ParseLevel parses a search scope. The empty string means auto.
func ParseLevel(s string) (Level, error) {
	switch l := Level(strings.TrimSpace(strings.ToLower(s))); l {
	case "", LevelAuto:
		return LevelAuto, nil
	case LevelSerial, LevelModuleSerial, LevelBox, LevelPallet:
		return l, nil
	default:
		return "", fmt.Errorf("unknown search scope %q (expected one of serial, module_serial, box, pallet, auto)", s)
	}
}

// Rank returns the level's position in priority order, or -1.
func (l Level) Rank() int {
	for i, lv := range Levels {
		if lv == l {
			return i
		}
	}
	return -1
}

// GroupBy selects how export rows are grouped.
type GroupBy string

const (
	GroupNone   GroupBy = "none"
	GroupBox    GroupBy = "box"
	GroupPallet GroupBy = "pallet"
)

// ParseGroupBy parses a grouping mode. The empty string means none.
func ParseGroupBy(s string) (GroupBy, error) {
	switch g := GroupBy(strings.TrimSpace(strings.ToLower(s))); g {
	case "", GroupNone:
		return GroupNone, nil
	case GroupBox, GroupPallet:
		return g, nil
	default:
		return "", fmt.Errorf("unknown groupBy %q (expected none, box, or pallet)", s)
	}
}

// Level returns the hierarchy level of the container being grouped on.
func (g GroupBy) Level() Level {
	switch g {
	case GroupBox:
		return LevelBox
	case GroupPallet:
		return LevelPallet
	}
	return ""
}
