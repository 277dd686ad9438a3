// Package store is the SQLite-backed hierarchy store: units, boxes, pallets,
// and the shipment attachments units refer to.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store is the SQLite database handle.
type Store struct {
	db *sql.DB
}

var (
	// ErrSeedLocked indicates another process is seeding the same database.
	ErrSeedLocked = errors.New("database is locked for seeding")
)

// DB returns the underlying sql.DB for advanced queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// OpenInMemory opens an in-memory database (for testing).
func OpenInMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	// Every pooled connection would otherwise get its own empty database.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CurrentSchemaVersion is the current database schema version.
const CurrentSchemaVersion = 1

func (s *Store) initialize() error {
	schema := `
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = NORMAL;
		PRAGMA temp_store = MEMORY;
		PRAGMA cache_size = -64000;
		PRAGMA busy_timeout = 5000;

		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS pallet (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			serial TEXT NOT NULL,
			type TEXT NOT NULL DEFAULT '',
			line TEXT NOT NULL DEFAULT '',
			timestamp INTEGER NOT NULL          -- unix milliseconds
		);

		CREATE TABLE IF NOT EXISTS box (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			serial TEXT NOT NULL,
			type TEXT NOT NULL DEFAULT '',
			line TEXT NOT NULL DEFAULT '',
			timestamp INTEGER NOT NULL,
			pallet_id INTEGER REFERENCES pallet(id)
		);

		CREATE TABLE IF NOT EXISTS attachment (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			nomor TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS attachment2 (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			nomor TEXT NOT NULL,
			area TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS unit (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			serial TEXT NOT NULL,
			module_serial TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL DEFAULT '',
			orderno TEXT NOT NULL DEFAULT '',
			line TEXT NOT NULL DEFAULT '',
			timestamp INTEGER NOT NULL,
			box_id INTEGER REFERENCES box(id),
			attachment_id INTEGER REFERENCES attachment(id),
			attachment2_id INTEGER REFERENCES attachment2(id)
		);

		CREATE INDEX IF NOT EXISTS idx_unit_serial ON unit(serial);
		CREATE INDEX IF NOT EXISTS idx_unit_module_serial ON unit(module_serial);
		CREATE INDEX IF NOT EXISTS idx_unit_box ON unit(box_id);
		CREATE INDEX IF NOT EXISTS idx_unit_timestamp ON unit(timestamp);
		CREATE INDEX IF NOT EXISTS idx_unit_type ON unit(type);

		CREATE INDEX IF NOT EXISTS idx_box_serial ON box(serial);
		CREATE INDEX IF NOT EXISTS idx_box_pallet ON box(pallet_id);
		CREATE INDEX IF NOT EXISTS idx_box_timestamp ON box(timestamp);

		CREATE INDEX IF NOT EXISTS idx_pallet_serial ON pallet(serial);
		CREATE INDEX IF NOT EXISTS idx_pallet_timestamp ON pallet(timestamp);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize database schema: %w", err)
	}

	_, err := s.db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('version', ?)`,
		fmt.Sprintf("%d", CurrentSchemaVersion))
	if err != nil {
		return fmt.Errorf("failed to set database version: %w", err)
	}
	return nil
}

// Select describes a filtered, ordered read rooted at one table. Where is a
// complete boolean expression over the table aliases u (unit), b (box), and
// pal (pallet); Joins must bring in every alias Where and OrderBy reference.
type Select struct {
	Joins   []string
	Where   string
	Args    []any
	OrderBy string
	Limit   int
	Offset  int
}

func (q Select) render(columns, from string) (string, []any) {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(columns)
	sb.WriteString(" FROM ")
	sb.WriteString(from)
	for _, j := range q.Joins {
		sb.WriteString(" ")
		sb.WriteString(j)
	}
	args := append([]any(nil), q.Args...)
	if q.Where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(q.Where)
	}
	if q.OrderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(q.OrderBy)
	}
	if q.Limit > 0 {
		sb.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, q.Limit, q.Offset)
	}
	return sb.String(), args
}

// BoxIDs renders the distinct box ids of the units matching q as a subquery.
func (q Select) BoxIDs() (string, []any) {
	q.OrderBy, q.Limit, q.Offset = "", 0, 0
	return q.and("u.box_id IS NOT NULL").render("DISTINCT u.box_id", "unit u")
}

// PalletIDs renders the distinct pallet ids reached from the units matching
// q through their boxes as a subquery.
func (q Select) PalletIDs() (string, []any) {
	sub, args := q.BoxIDs()
	return "SELECT DISTINCT pallet_id FROM box WHERE id IN (" + sub + ") AND pallet_id IS NOT NULL", args
}

// and returns q with cond ANDed onto its filter.
func (q Select) and(cond string) Select {
	if q.Where == "" {
		q.Where = cond
	} else {
		q.Where = "(" + q.Where + ") AND " + cond
	}
	return q
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// AcquireSeedLock takes an exclusive, non-blocking lock next to the database
// file so that two seeders never write the same file concurrently.
func AcquireSeedLock(dbPath string) (*SeedLock, error) {
	f, err := os.OpenFile(dbPath+".lock", os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed lock: %w", err)
	}
	if err := tryLock(f); err != nil {
		f.Close()
		if lockBusy(err) {
			return nil, ErrSeedLocked
		}
		return nil, fmt.Errorf("failed to acquire seed lock: %w", err)
	}
	return &SeedLock{file: f}, nil
}

// SeedLock is held for the duration of a seed.
type SeedLock struct {
	file *os.File
}

// Release drops the lock.
func (l *SeedLock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	unlockErr := unlock(l.file)
	closeErr := l.file.Close()
	if unlockErr != nil {
		return unlockErr
	}
	return closeErr
}
