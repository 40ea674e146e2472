// internal/settings/settings.go
//
// Key/value settings stored in the database.
//
// Context
// -------
// Small operational state that must survive restarts but is not worth its
// own table: the designated secretary's member ID, and the per-job
// `last_run:<job>` date stamps the cadence engine uses for at-most-once-per-
// day dispatch.  Values are strings; callers parse.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package settings

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/jmoiron/sqlx"
)

// Well-known keys.
const (
	KeySecretaryMemberID = "secretary_member_id"
	KeyLastRunPrefix     = "last_run:"
)

// Store reads and writes the settings table.
type Store struct {
	db *sqlx.DB
}

// NewStore wires a Store to the process-wide pool.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Get returns the value for key, or fallback when the key is absent.
func (s *Store) Get(ctx context.Context, key, fallback string) (string, error) {
	const q = `SELECT value FROM settings WHERE ` + "`key`" + ` = ?`

	var v sql.NullString
	err := s.db.QueryRowContext(ctx, q, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return fallback, nil
	}
	if err != nil {
		return "", err
	}
	if !v.Valid {
		return fallback, nil
	}
	return v.String, nil
}

// GetInt64 parses the value for key as an integer; absent or malformed
// values return zero with ok = false.
func (s *Store) GetInt64(ctx context.Context, key string) (int64, bool, error) {
	raw, err := s.Get(ctx, key, "")
	if err != nil {
		return 0, false, err
	}
	n, perr := strconv.ParseInt(raw, 10, 64)
	if raw == "" || perr != nil {
		return 0, false, nil
	}
	return n, true, nil
}

// Set upserts key = value.
func (s *Store) Set(ctx context.Context, key, value string) error {
	const q = `INSERT INTO settings (` + "`key`" + `, value) VALUES (?, ?)
	           ON DUPLICATE KEY UPDATE value = VALUES(value)`
	_, err := s.db.ExecContext(ctx, q, key, value)
	return err
}
