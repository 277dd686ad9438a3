package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/packtrace/packtrace/internal/model"
)

// Writer inserts hierarchy records inside a single transaction. It backs
// fixture loading only; record maintenance belongs to the production system.
type Writer struct {
	ctx context.Context
	tx  *sql.Tx
}

// Write runs fn in a transaction, committing only if fn returns nil.
func (s *Store) Write(ctx context.Context, fn func(w *Writer) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(&Writer{ctx: ctx, tx: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

func (w *Writer) insert(what, q string, args ...any) (int64, error) {
	res, err := w.tx.ExecContext(w.ctx, q, args...)
	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", what, err)
	}
	return res.LastInsertId()
}

// Pallet inserts p and sets its id.
func (w *Writer) Pallet(p *model.Pallet) error {
	id, err := w.insert("pallet", `INSERT INTO pallet (serial, type, line, timestamp) VALUES (?, ?, ?, ?)`,
		p.Serial, p.Type, p.Line, toMillis(p.Timestamp))
	p.ID = id
	return err
}

// Box inserts b and sets its id.
func (w *Writer) Box(b *model.Box) error {
	id, err := w.insert("box", `INSERT INTO box (serial, type, line, timestamp, pallet_id) VALUES (?, ?, ?, ?, ?)`,
		b.Serial, b.Type, b.Line, toMillis(b.Timestamp), b.PalletID)
	b.ID = id
	return err
}

// Attachment inserts a and sets its id.
func (w *Writer) Attachment(a *model.Attachment) error {
	id, err := w.insert("attachment", `INSERT INTO attachment (nomor) VALUES (?)`, a.Nomor)
	a.ID = id
	return err
}

// Attachment2 inserts a and sets its id.
func (w *Writer) Attachment2(a *model.Attachment2) error {
	id, err := w.insert("attachment2", `INSERT INTO attachment2 (nomor, area) VALUES (?, ?)`, a.Nomor, a.Area)
	a.ID = id
	return err
}

// Unit inserts u and sets its id.
func (w *Writer) Unit(u *model.Unit) error {
	id, err := w.insert("unit", `
		INSERT INTO unit (serial, module_serial, type, orderno, line, timestamp, box_id, attachment_id, attachment2_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.Serial, u.ModuleSerial, u.Type, u.OrderNo, u.Line, toMillis(u.Timestamp),
		u.BoxID, u.AttachmentID, u.Attachment2ID)
	u.ID = id
	return err
}

// Stats holds row counts per table.
type Stats struct {
	Units        int `json:"units"`
	Boxes        int `json:"boxes"`
	Pallets      int `json:"pallets"`
	Attachments  int `json:"attachments"`
	Attachment2s int `json:"attachment2s"`
}

// Stats returns row counts for every hierarchy table.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM unit),
			(SELECT COUNT(*) FROM box),
			(SELECT COUNT(*) FROM pallet),
			(SELECT COUNT(*) FROM attachment),
			(SELECT COUNT(*) FROM attachment2)
	`).Scan(&st.Units, &st.Boxes, &st.Pallets, &st.Attachments, &st.Attachment2s)
	return st, err
}
