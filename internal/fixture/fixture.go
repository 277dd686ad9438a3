// Package fixture loads packaging hierarchies described in YAML into a store.
//
// A fixture nests the hierarchy the way it is packed:
//
//	shipments:
//	  - nomor: SJ-001
//	    area: JKT
//	pallets:
//	  - serial: P0001
//	    type: M1
//	    timestamp: 2025-03-01T08:00:00Z
//	    boxes:
//	      - serial: B0001
//	        units:
//	          - serial: BX1000
//	            module_serial: MX5000
//	            shipment: SJ-001
//	units:
//	  - serial: LOOSE1
//
// Top-level boxes have no pallet and top-level units have no box. Empty type
// and line fields inherit from the enclosing container.
package fixture

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/packtrace/packtrace/internal/model"
	"github.com/packtrace/packtrace/internal/store"
)

// Fixture is a packaging hierarchy to load.
type Fixture struct {
	Attachments []Attachment `yaml:"attachments"`
	Shipments   []Shipment   `yaml:"shipments"`
	Pallets     []Pallet     `yaml:"pallets"`
	Boxes       []Box        `yaml:"boxes"`
	Units       []Unit       `yaml:"units"`
}

// Attachment is a packing-list document.
type Attachment struct {
	Nomor string `yaml:"nomor"`
}

// Shipment is a shipment document; units linked to one are in delivery.
type Shipment struct {
	Nomor string `yaml:"nomor"`
	Area  string `yaml:"area"`
}

type Pallet struct {
	Serial    string    `yaml:"serial"`
	Type      string    `yaml:"type"`
	Line      string    `yaml:"line"`
	Timestamp time.Time `yaml:"timestamp"`
	Boxes     []Box     `yaml:"boxes"`
}

type Box struct {
	Serial    string    `yaml:"serial"`
	Type      string    `yaml:"type"`
	Line      string    `yaml:"line"`
	Timestamp time.Time `yaml:"timestamp"`
	Units     []Unit    `yaml:"units"`
}

type Unit struct {
	Serial       string    `yaml:"serial"`
	ModuleSerial string    `yaml:"module_serial"`
	Type         string    `yaml:"type"`
	OrderNo      string    `yaml:"orderno"`
	Line         string    `yaml:"line"`
	Timestamp    time.Time `yaml:"timestamp"`
	// Attachment and Shipment reference documents by number.
	Attachment string `yaml:"attachment"`
	Shipment   string `yaml:"shipment"`
}

// Parse decodes a fixture. Unknown keys are rejected.
func Parse(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f Fixture
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return &f, nil
		}
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return &f, nil
}

// ParseString decodes a fixture held in a string.
func ParseString(s string) (*Fixture, error) {
	return Parse(bytes.NewBufferString(s))
}

// ReadFile decodes the fixture at path.
func ReadFile(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	f, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Load writes f into s in a single transaction.
func Load(ctx context.Context, s *store.Store, f *Fixture) error {
	return s.Write(ctx, func(w *store.Writer) error {
		l := loader{w: w, atts: map[string]int64{}, ships: map[string]int64{}}
		return l.load(f)
	})
}

type loader struct {
	w     *store.Writer
	atts  map[string]int64
	ships map[string]int64
}

func (l *loader) load(f *Fixture) error {
	for _, a := range f.Attachments {
		rec := model.Attachment{Nomor: a.Nomor}
		if err := l.w.Attachment(&rec); err != nil {
			return err
		}
		l.atts[a.Nomor] = rec.ID
	}
	for _, s := range f.Shipments {
		rec := model.Attachment2{Nomor: s.Nomor, Area: s.Area}
		if err := l.w.Attachment2(&rec); err != nil {
			return err
		}
		l.ships[s.Nomor] = rec.ID
	}

	for _, p := range f.Pallets {
		pal := model.Pallet{Serial: p.Serial, Type: p.Type, Line: p.Line, Timestamp: p.Timestamp}
		if err := l.w.Pallet(&pal); err != nil {
			return err
		}
		for _, b := range p.Boxes {
			if err := l.box(b, &pal); err != nil {
				return err
			}
		}
	}
	for _, b := range f.Boxes {
		if err := l.box(b, nil); err != nil {
			return err
		}
	}
	for _, u := range f.Units {
		if err := l.unit(u, nil); err != nil {
			return err
		}
	}
	return nil
}

func (l *loader) box(b Box, pal *model.Pallet) error {
	rec := model.Box{Serial: b.Serial, Type: b.Type, Line: b.Line, Timestamp: b.Timestamp}
	if pal != nil {
		rec.PalletID = model.PtrID(pal.ID)
		rec.Type = orElse(rec.Type, pal.Type)
		rec.Line = orElse(rec.Line, pal.Line)
	}
	if err := l.w.Box(&rec); err != nil {
		return err
	}
	for _, u := range b.Units {
		if err := l.unit(u, &rec); err != nil {
			return err
		}
	}
	return nil
}

func (l *loader) unit(u Unit, box *model.Box) error {
	rec := model.Unit{
		Serial:       u.Serial,
		ModuleSerial: u.ModuleSerial,
		Type:         u.Type,
		OrderNo:      u.OrderNo,
		Line:         u.Line,
		Timestamp:    u.Timestamp,
	}
	if box != nil {
		rec.BoxID = model.PtrID(box.ID)
		rec.Type = orElse(rec.Type, box.Type)
		rec.Line = orElse(rec.Line, box.Line)
	}
	if u.Attachment != "" {
		id, ok := l.atts[u.Attachment]
		if !ok {
			return fmt.Errorf("unit %s: unknown attachment %q", u.Serial, u.Attachment)
		}
		rec.AttachmentID = model.PtrID(id)
	}
	if u.Shipment != "" {
		id, ok := l.ships[u.Shipment]
		if !ok {
			return fmt.Errorf("unit %s: unknown shipment %q", u.Serial, u.Shipment)
		}
		rec.Attachment2ID = model.PtrID(id)
	}
	return l.w.Unit(&rec)
}

func orElse(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
