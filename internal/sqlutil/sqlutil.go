// Package sqlutil holds small helpers shared by the SQL-backed packages.
package sqlutil

import (
	"database/sql"
	"strings"
)

// InClauseArgs returns a comma-separated list of "?" placeholders and the
// corresponding args slice.
//
// If items is empty, it returns "NULL" and no args, so `IN (NULL)` matches nothing.
func InClauseArgs[T any](items []T) (placeholders string, args []any) {
	if len(items) == 0 {
		return "NULL", nil
	}
	ph := make([]string, len(items))
	args = make([]any, len(items))
	for i, item := range items {
		ph[i] = "?"
		args[i] = item
	}
	return strings.Join(ph, ", "), args
}

// ScanRows scans all rows into a slice using the provided scanner.
func ScanRows[T any](rows *sql.Rows, scan func(*sql.Rows) (T, error)) ([]T, error) {
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// NullID converts a nullable integer column into an optional id.
func NullID(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

// Unique returns ids with duplicates removed, keeping first-seen order.
func Unique[K comparable](ids []K) []K {
	seen := make(map[K]struct{}, len(ids))
	out := make([]K, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// GlobPrefix returns a GLOB pattern matching every string that starts with
// prefix. GLOB is case-sensitive, so a match means a literal prefix. The
// prefix is copied byte for byte; only the ASCII metacharacters are escaped.
func GlobPrefix(prefix string) string {
	var sb strings.Builder
	sb.Grow(len(prefix) + 1)
	for i := 0; i < len(prefix); i++ {
		c := prefix[i]
		switch c {
		case '*', '?', '[':
			sb.WriteByte('[')
			sb.WriteByte(c)
			sb.WriteByte(']')
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('*')
	return sb.String()
}
