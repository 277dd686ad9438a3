// Package model defines the packaging hierarchy records and the enriched rows
// returned by the search engine.
package model

import "time"

// Unit is a single manufactured unit, the leaf of the packaging hierarchy.
type Unit struct {
	ID           int64     `json:"id"`
	Serial       string    `json:"serial"`
	ModuleSerial string    `json:"module_serial"`
	Type         string    `json:"type"`
	OrderNo      string    `json:"orderno"`
	Line         string    `json:"line"`
	Timestamp    time.Time `json:"timestamp"`

	// BoxID is nil while the unit is unassigned.
	BoxID         *int64 `json:"box_id"`
	AttachmentID  *int64 `json:"attachment_id"`
	Attachment2ID *int64 `json:"attachment2_id"`
}

// Assigned reports whether the unit has been packed into a box.
func (u Unit) Assigned() bool { return u.BoxID != nil }

// Status derives the unit's logistics status from its shipment attachment.
func (u Unit) Status() Status {
	if u.Attachment2ID != nil {
		return StatusDelivery
	}
	return StatusWarehouse
}

// Box groups units and may itself sit on a pallet.
type Box struct {
	ID        int64     `json:"id"`
	Serial    string    `json:"serial"`
	Type      string    `json:"type"`
	Line      string    `json:"line"`
	Timestamp time.Time `json:"timestamp"`
	PalletID  *int64    `json:"pallet_id"`
}

// Pallet is the top container of the hierarchy.
type Pallet struct {
	ID        int64     `json:"id"`
	Serial    string    `json:"serial"`
	Type      string    `json:"type"`
	Line      string    `json:"line"`
	Timestamp time.Time `json:"timestamp"`
}

// Attachment is a packing-list document referenced by units.
type Attachment struct {
	ID    int64  `json:"id"`
	Nomor string `json:"nomor"`
}

// Attachment2 is a shipment document referenced by units. A unit linked to an
// Attachment2 has left the warehouse.
type Attachment2 struct {
	ID    int64  `json:"id"`
	Nomor string `json:"nomor"`
	Area  string `json:"area"`
}

// Status is the derived logistics status of a unit.
type Status string

const (
	StatusWarehouse Status = "Warehouse"
	StatusDelivery  Status = "Delivery"
)

// None is the placeholder shown for a relation that is absent.
const None = "-"

// PtrID returns a pointer to id, for building records with optional parents.
func PtrID(id int64) *int64 { return &id }
