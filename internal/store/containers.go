package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/packtrace/packtrace/internal/model"
	"github.com/packtrace/packtrace/internal/sqlutil"
)

const (
	boxColumns    = "b.id, b.serial, b.type, b.line, b.timestamp, b.pallet_id"
	palletColumns = "pal.id, pal.serial, pal.type, pal.line, pal.timestamp"
)

func scanBox(rows *sql.Rows) (model.Box, error) {
	var b model.Box
	var ts int64
	var palletID sql.NullInt64
	if err := rows.Scan(&b.ID, &b.Serial, &b.Type, &b.Line, &ts, &palletID); err != nil {
		return model.Box{}, err
	}
	b.Timestamp = fromMillis(ts)
	b.PalletID = sqlutil.NullID(palletID)
	return b, nil
}

func scanPallet(rows *sql.Rows) (model.Pallet, error) {
	var p model.Pallet
	var ts int64
	if err := rows.Scan(&p.ID, &p.Serial, &p.Type, &p.Line, &ts); err != nil {
		return model.Pallet{}, err
	}
	p.Timestamp = fromMillis(ts)
	return p, nil
}

// BoxesByID fetches the boxes with the given ids. Result order is unspecified.
func (s *Store) BoxesByID(ctx context.Context, ids []int64) ([]model.Box, error) {
	out, err := byIDs(ctx, s, "SELECT "+boxColumns+" FROM box b WHERE b.id IN (%s)", ids, scanBox)
	if err != nil {
		return nil, fmt.Errorf("boxes by id: %w", err)
	}
	return out, nil
}

// PalletsByID fetches the pallets with the given ids. Result order is unspecified.
func (s *Store) PalletsByID(ctx context.Context, ids []int64) ([]model.Pallet, error) {
	out, err := byIDs(ctx, s, "SELECT "+palletColumns+" FROM pallet pal WHERE pal.id IN (%s)", ids, scanPallet)
	if err != nil {
		return nil, fmt.Errorf("pallets by id: %w", err)
	}
	return out, nil
}

// SelectBoxes returns the boxes matching q, rooted at alias b.
func (s *Store) SelectBoxes(ctx context.Context, q Select) ([]model.Box, error) {
	sqlStr, args := q.render(boxColumns, "box b")
	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("select boxes: %w", err)
	}
	return sqlutil.ScanRows(rows, scanBox)
}

// SelectPallets returns the pallets matching q, rooted at alias pal.
func (s *Store) SelectPallets(ctx context.Context, q Select) ([]model.Pallet, error) {
	sqlStr, args := q.render(palletColumns, "pallet pal")
	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("select pallets: %w", err)
	}
	return sqlutil.ScanRows(rows, scanPallet)
}

// CountBoxesByPallet returns the number of boxes on each of the given pallets.
// Pallets without boxes are absent from the map.
func (s *Store) CountBoxesByPallet(ctx context.Context, palletIDs []int64) (map[int64]int, error) {
	return s.groupCount(ctx, "box", "pallet_id", palletIDs)
}

// BoxesOnPallet lists the boxes stacked on a pallet, oldest first.
func (s *Store) BoxesOnPallet(ctx context.Context, palletID int64) ([]model.Box, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+boxColumns+" FROM box b WHERE b.pallet_id = ? ORDER BY b.timestamp ASC, b.id ASC", palletID)
	if err != nil {
		return nil, fmt.Errorf("boxes on pallet: %w", err)
	}
	return sqlutil.ScanRows(rows, scanBox)
}

// AttachmentsByID fetches the attachments with the given ids.
func (s *Store) AttachmentsByID(ctx context.Context, ids []int64) ([]model.Attachment, error) {
	out, err := byIDs(ctx, s, "SELECT id, nomor FROM attachment WHERE id IN (%s)", ids,
		func(rows *sql.Rows) (model.Attachment, error) {
			var a model.Attachment
			err := rows.Scan(&a.ID, &a.Nomor)
			return a, err
		})
	if err != nil {
		return nil, fmt.Errorf("attachments by id: %w", err)
	}
	return out, nil
}

// Attachment2sByID fetches the shipment attachments with the given ids.
func (s *Store) Attachment2sByID(ctx context.Context, ids []int64) ([]model.Attachment2, error) {
	out, err := byIDs(ctx, s, "SELECT id, nomor, area FROM attachment2 WHERE id IN (%s)", ids,
		func(rows *sql.Rows) (model.Attachment2, error) {
			var a model.Attachment2
			err := rows.Scan(&a.ID, &a.Nomor, &a.Area)
			return a, err
		})
	if err != nil {
		return nil, fmt.Errorf("attachment2s by id: %w", err)
	}
	return out, nil
}
