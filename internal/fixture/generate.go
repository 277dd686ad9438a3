package fixture

import (
	"fmt"
	"time"
)

// GenerateOptions sizes a synthetic hierarchy.
type GenerateOptions struct {
	Pallets         int
	BoxesPerPallet  int
	UnitsPerBox     int
	LooseUnits      int
	Types           []string
	Start           time.Time
	Interval        time.Duration
	ShippedPallets  int
	ShipmentArea    string
	SerialPrefix    string
	ModulePrefix    string
	BoxPrefix       string
	PalletPrefix    string
	PackingListEach int
}

func (o *GenerateOptions) defaults() {
	if len(o.Types) == 0 {
		o.Types = []string{"M1", "M2"}
	}
	if o.Start.IsZero() {
		o.Start = time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	}
	if o.Interval <= 0 {
		o.Interval = time.Minute
	}
	if o.ShipmentArea == "" {
		o.ShipmentArea = "JKT"
	}
	if o.SerialPrefix == "" {
		o.SerialPrefix = "SN"
	}
	if o.ModulePrefix == "" {
		o.ModulePrefix = "MD"
	}
	if o.BoxPrefix == "" {
		o.BoxPrefix = "BOX"
	}
	if o.PalletPrefix == "" {
		o.PalletPrefix = "PAL"
	}
}

// Generate builds a deterministic synthetic hierarchy. Serials are zero
// padded so lexicographic order follows creation order, and timestamps
// increase by Interval per record.
func Generate(opts GenerateOptions) *Fixture {
	opts.defaults()
	f := &Fixture{}
	clock := opts.Start
	tick := func() time.Time {
		t := clock
		clock = clock.Add(opts.Interval)
		return t
	}

	unitN, boxN := 0, 0
	nextUnit := func(typ string) Unit {
		unitN++
		u := Unit{
			Serial:       fmt.Sprintf("%s%07d", opts.SerialPrefix, unitN),
			ModuleSerial: fmt.Sprintf("%s%07d", opts.ModulePrefix, unitN),
			Type:         typ,
			OrderNo:      fmt.Sprintf("ORD-%04d", 1+unitN/100),
			Timestamp:    tick(),
		}
		if opts.PackingListEach > 0 {
			n := 1 + (unitN-1)/opts.PackingListEach
			nomor := fmt.Sprintf("PL-%05d", n)
			if len(f.Attachments) < n {
				f.Attachments = append(f.Attachments, Attachment{Nomor: nomor})
			}
			u.Attachment = nomor
		}
		return u
	}

	for p := 1; p <= opts.Pallets; p++ {
		typ := opts.Types[(p-1)%len(opts.Types)]
		pal := Pallet{
			Serial: fmt.Sprintf("%s%05d", opts.PalletPrefix, p),
			Type:   typ,
			Line:   fmt.Sprintf("Line %d", 1+(p-1)%3),
		}

		shipment := ""
		if p <= opts.ShippedPallets {
			shipment = fmt.Sprintf("SJ-%05d", p)
			f.Shipments = append(f.Shipments, Shipment{Nomor: shipment, Area: opts.ShipmentArea})
		}

		for b := 0; b < opts.BoxesPerPallet; b++ {
			boxN++
			box := Box{Serial: fmt.Sprintf("%s%06d", opts.BoxPrefix, boxN)}
			for range opts.UnitsPerBox {
				u := nextUnit(typ)
				u.Shipment = shipment
				box.Units = append(box.Units, u)
			}
			box.Timestamp = tick()
			pal.Boxes = append(pal.Boxes, box)
		}
		pal.Timestamp = tick()
		f.Pallets = append(f.Pallets, pal)
	}

	for i := 0; i < opts.LooseUnits; i++ {
		f.Units = append(f.Units, nextUnit(opts.Types[i%len(opts.Types)]))
	}
	return f
}
