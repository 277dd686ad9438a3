package store

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/packtrace/packtrace/internal/model"
	"github.com/packtrace/packtrace/internal/sqlutil"
)

const unitColumns = `u.id, u.serial, u.module_serial, u.type, u.orderno, u.line, u.timestamp,
	u.box_id, u.attachment_id, u.attachment2_id`

func scanUnit(rows *sql.Rows) (model.Unit, error) {
	var u model.Unit
	var ts int64
	var boxID, attID, att2ID sql.NullInt64
	if err := rows.Scan(&u.ID, &u.Serial, &u.ModuleSerial, &u.Type, &u.OrderNo, &u.Line, &ts,
		&boxID, &attID, &att2ID); err != nil {
		return model.Unit{}, err
	}
	u.Timestamp = fromMillis(ts)
	u.BoxID = sqlutil.NullID(boxID)
	u.AttachmentID = sqlutil.NullID(attID)
	u.Attachment2ID = sqlutil.NullID(att2ID)
	return u, nil
}

// levelColumn maps a search level to the table and column its probe reads.
var levelColumn = map[model.Level]struct{ table, column string }{
	model.LevelSerial:       {"unit", "serial"},
	model.LevelModuleSerial: {"unit", "module_serial"},
	model.LevelBox:          {"box", "serial"},
	model.LevelPallet:       {"pallet", "serial"},
}

// ExistsPrefix reports whether any row at level has a value starting with prefix.
func (s *Store) ExistsPrefix(ctx context.Context, level model.Level, prefix string) (bool, error) {
	lc, ok := levelColumn[level]
	if !ok {
		return false, fmt.Errorf("no column for level %q", level)
	}
	q := fmt.Sprintf("SELECT 1 FROM %s WHERE %s GLOB ? LIMIT 1", lc.table, lc.column)

	var one int
	err := s.db.QueryRowContext(ctx, q, sqlutil.GlobPrefix(prefix)).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CountUnits counts the units matching q. Ordering and paging are ignored.
func (s *Store) CountUnits(ctx context.Context, q Select) (int, error) {
	q.OrderBy, q.Limit, q.Offset = "", 0, 0
	sqlStr, args := q.render("COUNT(u.id)", "unit u")

	var total int
	if err := s.db.QueryRowContext(ctx, sqlStr, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count units: %w", err)
	}
	return total, nil
}

// UnitKeys returns the ids of the units matching q, in q's order.
func (s *Store) UnitKeys(ctx context.Context, q Select) ([]int64, error) {
	sqlStr, args := q.render("u.id", "unit u")
	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("unit keys: %w", err)
	}
	return sqlutil.ScanRows(rows, scanID)
}

// UnitsByID fetches the units with the given ids. Result order is unspecified.
func (s *Store) UnitsByID(ctx context.Context, ids []int64) ([]model.Unit, error) {
	units, err := byIDs(ctx, s, "SELECT "+unitColumns+" FROM unit u WHERE u.id IN (%s)", ids, scanUnit)
	if err != nil {
		return nil, fmt.Errorf("units by id: %w", err)
	}
	return units, nil
}

// CountUnitsByBox returns the number of units in each of the given boxes.
// Boxes without units are absent from the map.
func (s *Store) CountUnitsByBox(ctx context.Context, boxIDs []int64) (map[int64]int, error) {
	return s.groupCount(ctx, "unit", "box_id", boxIDs)
}

// UnitsInBox lists the units packed in a box, oldest first.
func (s *Store) UnitsInBox(ctx context.Context, boxID int64) ([]model.ChildUnit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, serial, type, orderno, line, timestamp
		FROM unit
		WHERE box_id = ?
		ORDER BY timestamp ASC, id ASC
	`, boxID)
	if err != nil {
		return nil, fmt.Errorf("units in box: %w", err)
	}
	return sqlutil.ScanRows(rows, func(rows *sql.Rows) (model.ChildUnit, error) {
		var c model.ChildUnit
		var ts int64
		if err := rows.Scan(&c.ID, &c.Serial, &c.Type, &c.OrderNo, &c.Line, &ts); err != nil {
			return model.ChildUnit{}, err
		}
		c.Timestamp = fromMillis(ts)
		return c, nil
	})
}

func scanID(rows *sql.Rows) (int64, error) {
	var id int64
	err := rows.Scan(&id)
	return id, err
}

type idCount struct {
	id int64
	n  int
}

func (s *Store) groupCount(ctx context.Context, table, column string, ids []int64) (map[int64]int, error) {
	q := fmt.Sprintf("SELECT %[2]s, COUNT(*) FROM %[1]s WHERE %[2]s IN (%%s) GROUP BY %[2]s", table, column)
	pairs, err := byIDs(ctx, s, q, ids, func(rows *sql.Rows) (idCount, error) {
		var c idCount
		err := rows.Scan(&c.id, &c.n)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("count %s by %s: %w", table, column, err)
	}
	counts := make(map[int64]int, len(pairs))
	for _, c := range pairs {
		counts[c.id] = c.n
	}
	return counts, nil
}

// maxInArgs keeps each id list well under SQLite's bound-variable limit.
const maxInArgs = 500

// byIDs runs query once per batch of at most maxInArgs ids and concatenates
// the scanned rows. query holds a single %s for the placeholder list.
func byIDs[T any](ctx context.Context, s *Store, query string, ids []int64,
	scan func(*sql.Rows) (T, error)) ([]T, error) {
	var out []T
	for batch := range slices.Chunk(ids, maxInArgs) {
		ph, args := sqlutil.InClauseArgs(batch)
		rows, err := s.db.QueryContext(ctx, fmt.Sprintf(query, ph), args...)
		if err != nil {
			return nil, err
		}
		got, err := sqlutil.ScanRows(rows, scan)
		if err != nil {
			return nil, err
		}
		out = append(out, got...)
	}
	return out, nil
}
