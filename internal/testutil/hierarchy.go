// Package testutil provides reusable test utilities for packtrace tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/packtrace/packtrace/internal/fixture"
	"github.com/packtrace/packtrace/internal/store"
)

// TestHierarchy is a store loaded with a fixture for testing.
type TestHierarchy struct {
	Store *store.Store
	// Path is the database file, empty for in-memory hierarchies.
	Path string

	t        *testing.T
	fixtures []*fixture.Fixture
	onDisk   bool
}

// NewTestHierarchy creates a new test hierarchy builder.
// Call Build() to open the store and load the fixtures.
func NewTestHierarchy(t *testing.T) *TestHierarchy {
	t.Helper()
	return &TestHierarchy{t: t}
}

// WithYAML adds a YAML fixture.
func (h *TestHierarchy) WithYAML(src string) *TestHierarchy {
	h.t.Helper()
	f, err := fixture.ParseString(src)
	if err != nil {
		h.t.Fatalf("invalid fixture: %v", err)
	}
	h.fixtures = append(h.fixtures, f)
	return h
}

// WithFixture adds a fixture value.
func (h *TestHierarchy) WithFixture(f *fixture.Fixture) *TestHierarchy {
	h.fixtures = append(h.fixtures, f)
	return h
}

// OnDisk stores the hierarchy in a temp database file, for tests that run
// the CLI binary.
func (h *TestHierarchy) OnDisk() *TestHierarchy {
	h.onDisk = true
	return h
}

// Build opens the store and loads every fixture in order.
func (h *TestHierarchy) Build() *TestHierarchy {
	h.t.Helper()

	var err error
	if h.onDisk {
		h.Path = filepath.Join(h.t.TempDir(), "packtrace.db")
		h.Store, err = store.Open(h.Path)
	} else {
		h.Store, err = store.OpenInMemory()
	}
	if err != nil {
		h.t.Fatalf("failed to open store: %v", err)
	}
	h.t.Cleanup(func() { h.Store.Close() })

	for _, f := range h.fixtures {
		if err := fixture.Load(context.Background(), h.Store, f); err != nil {
			h.t.Fatalf("failed to load fixture: %v", err)
		}
	}
	return h
}

// UnitID returns the id of the unit with serial.
func (h *TestHierarchy) UnitID(serial string) int64 {
	h.t.Helper()
	return h.id("unit", serial)
}

// BoxID returns the id of the box with serial.
func (h *TestHierarchy) BoxID(serial string) int64 {
	h.t.Helper()
	return h.id("box", serial)
}

// PalletID returns the id of the pallet with serial.
func (h *TestHierarchy) PalletID(serial string) int64 {
	h.t.Helper()
	return h.id("pallet", serial)
}

func (h *TestHierarchy) id(table, serial string) int64 {
	h.t.Helper()
	var id int64
	if err := h.Store.DB().QueryRow("SELECT id FROM "+table+" WHERE serial = ?", serial).Scan(&id); err != nil {
		h.t.Fatalf("no %s with serial %q: %v", table, serial, err)
	}
	return id
}

// Plant is a hierarchy with every shape the search engine distinguishes:
// shipped and warehouse units, a box without a pallet, a loose unit, serials
// sharing prefixes across levels, and two product types.
const Plant = `
attachments:
  - nomor: PL-001
shipments:
  - nomor: SJ-001
    area: JKT
pallets:
  - serial: P0001
    type: M1
    line: Line 1
    timestamp: 2025-03-01T09:00:00Z
    boxes:
      - serial: B0001
        timestamp: 2025-03-01T08:30:00Z
        units:
          - {serial: BX1000, module_serial: MX5000, orderno: ORD-1, timestamp: 2025-03-01T08:00:00Z, attachment: PL-001}
          - {serial: BX1001, module_serial: MX5001, orderno: ORD-1, timestamp: 2025-03-01T08:01:00Z, shipment: SJ-001}
          - {serial: BX1002, module_serial: MX5002, orderno: ORD-1, timestamp: 2025-03-01T08:02:00Z}
      - serial: B0002
        timestamp: 2025-03-01T08:45:00Z
        units:
          - {serial: BX1003, module_serial: MX5003, orderno: ORD-2, timestamp: 2025-03-01T08:03:00Z}
  - serial: P0002
    type: M2
    line: Line 2
    timestamp: 2025-03-02T09:00:00Z
    boxes:
      - serial: B0003
        timestamp: 2025-03-02T08:30:00Z
        units:
          - {serial: CX2000, module_serial: MX6000, orderno: ORD-3, timestamp: 2025-03-02T08:00:00Z}
boxes:
  - serial: B0100
    type: M1
    line: Line 3
    timestamp: 2025-03-03T08:30:00Z
    units:
      - {serial: BX1004, module_serial: MX5004, timestamp: 2025-03-03T08:00:00Z}
  - serial: B0200
    type: M1
    timestamp: 2025-03-03T09:30:00Z
units:
  - {serial: LOOSE1, type: M2, timestamp: 2025-03-04T08:00:00Z}
`
