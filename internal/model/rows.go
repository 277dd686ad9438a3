package model

import "time"

// UnitRow is a unit enriched with its resolved relations.
type UnitRow struct {
	Unit

	BoxSerial        string `json:"box_serial"`
	PalletSerial     string `json:"pallet_serial"`
	AttachmentNomor  string `json:"attachment_nomor"`
	Attachment2Nomor string `json:"attachment2_nomor"`
	Area             string `json:"area"`
	Status           Status `json:"status"`
}

// BoxRow is a box enriched with its pallet serial and unit count.
type BoxRow struct {
	Box

	PalletSerial string `json:"pallet_serial"`
	Count        int    `json:"count"`
}

// PalletRow is a pallet enriched with its box count.
type PalletRow struct {
	Pallet

	Count int `json:"count"`
}

// ChildUnit is the projection used for a box's unit listing.
type ChildUnit struct {
	ID        int64     `json:"id"`
	Serial    string    `json:"serial"`
	Type      string    `json:"type"`
	OrderNo   string    `json:"orderno"`
	Line      string    `json:"line"`
	Timestamp time.Time `json:"timestamp"`
}
