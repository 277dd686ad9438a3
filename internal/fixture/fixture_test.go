package fixture

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packtrace/packtrace/internal/store"
)

const sample = `
attachments:
  - nomor: PL-1
shipments:
  - nomor: SJ-1
    area: BDG
pallets:
  - serial: P001
    type: M1
    line: Line 2
    timestamp: 2025-03-01T08:00:00Z
    boxes:
      - serial: B001
        timestamp: 2025-03-01T08:01:00Z
        units:
          - serial: BX1000
            module_serial: MX5000
            timestamp: 2025-03-01T08:02:00Z
            attachment: PL-1
          - serial: BX1001
            type: M9
            timestamp: 2025-03-01T08:03:00Z
            shipment: SJ-1
boxes:
  - serial: B900
    type: M2
units:
  - serial: LOOSE1
    type: M2
`

func TestParseAndLoad(t *testing.T) {
	f, err := ParseString(sample)
	require.NoError(t, err)
	require.Len(t, f.Pallets, 1)
	require.Len(t, f.Pallets[0].Boxes[0].Units, 2)

	s, err := store.OpenInMemory()
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, Load(ctx, s, f))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Pallets)
	assert.Equal(t, 2, stats.Boxes)
	assert.Equal(t, 3, stats.Units)

	var typ, line string
	require.NoError(t, s.DB().QueryRow(`SELECT type, line FROM unit WHERE serial = 'BX1000'`).Scan(&typ, &line))
	assert.Equal(t, "M1", typ, "type inherits from the pallet through the box")
	assert.Equal(t, "Line 2", line)

	require.NoError(t, s.DB().QueryRow(`SELECT type FROM unit WHERE serial = 'BX1001'`).Scan(&typ))
	assert.Equal(t, "M9", typ)

	var boxID *int64
	require.NoError(t, s.DB().QueryRow(`SELECT box_id FROM unit WHERE serial = 'LOOSE1'`).Scan(&boxID))
	assert.Nil(t, boxID)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := ParseString("pallets:\n  - serial: P1\n    colour: red\n")
	require.Error(t, err)
}

func TestParseEmpty(t *testing.T) {
	f, err := ParseString("")
	require.NoError(t, err)
	assert.Empty(t, f.Units)
}

func TestLoadUnknownReference(t *testing.T) {
	s, err := store.OpenInMemory()
	require.NoError(t, err)
	defer s.Close()

	f := &Fixture{Units: []Unit{{Serial: "X1", Shipment: "SJ-404"}}}
	err = Load(context.Background(), s, f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SJ-404")

	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Units, "failed loads roll back")
}

func TestGenerate(t *testing.T) {
	f := Generate(GenerateOptions{Pallets: 3, BoxesPerPallet: 2, UnitsPerBox: 4, LooseUnits: 5, ShippedPallets: 1, PackingListEach: 10})

	require.Len(t, f.Pallets, 3)
	assert.Equal(t, "PAL00001", f.Pallets[0].Serial)
	assert.Equal(t, "BOX000001", f.Pallets[0].Boxes[0].Serial)
	assert.Equal(t, "SN0000001", f.Pallets[0].Boxes[0].Units[0].Serial)
	assert.Equal(t, "SJ-00001", f.Pallets[0].Boxes[0].Units[0].Shipment)
	assert.Empty(t, f.Pallets[1].Boxes[0].Units[0].Shipment)
	assert.Len(t, f.Units, 5)
	assert.Len(t, f.Attachments, 3)

	prev := f.Pallets[0].Boxes[0].Units[0].Timestamp
	for _, u := range f.Pallets[0].Boxes[0].Units[1:] {
		assert.True(t, u.Timestamp.After(prev))
		prev = u.Timestamp
	}

	s, err := store.OpenInMemory()
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, Load(context.Background(), s, f))
	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3*2*4+5, stats.Units)
}
