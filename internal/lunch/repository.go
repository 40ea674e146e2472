// internal/lunch/repository.go
//
// sqlx query helpers for lunches, attendance, and locations.
//
// Context
// -------
// All helpers take sqlx.ExtContext so the reconciler and the cadence engine
// can run them inside their own transactions.  GetOrCreate is upsert-style
// against the unique index on lunches.date: a concurrent create loses the
// race cleanly and re-reads the winner's row, which is what keeps repeated
// cadence runs from minting duplicate weeks.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
// • Max line length 100 columns.
package lunch

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when a lunch, location, or rating row is missing.
var ErrNotFound = errors.New("lunch: not found")

const lunchColumns = `id, date, location_id, host_id, expected_attendance, actual_attendance,
                      reservation_confirmed, host_confirmed, status, confirmation_token,
                      host_prev_counter, host_prev_last_hosted, created_at, updated_at`

// ByID fetches one lunch.
func ByID(ctx context.Context, ext sqlx.ExtContext, id int64) (*Lunch, error) {
	const q = `SELECT ` + lunchColumns + ` FROM lunches WHERE id = ?`

	var l Lunch
	if err := sqlx.GetContext(ctx, ext, &l, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("lunch %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &l, nil
}

// ByDate fetches the lunch for a calendar date, if any.
func ByDate(ctx context.Context, ext sqlx.ExtContext, day time.Time) (*Lunch, error) {
	const q = `SELECT ` + lunchColumns + ` FROM lunches WHERE date = ?`

	var l Lunch
	if err := sqlx.GetContext(ctx, ext, &l, q, day.Format("2006-01-02")); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("lunch on %s: %w", day.Format("2006-01-02"), ErrNotFound)
		}
		return nil, err
	}
	return &l, nil
}

// ByToken fetches the lunch carrying a confirmation token.
func ByToken(ctx context.Context, ext sqlx.ExtContext, token string) (*Lunch, error) {
	const q = `SELECT ` + lunchColumns + ` FROM lunches WHERE confirmation_token = ?`

	var l Lunch
	if err := sqlx.GetContext(ctx, ext, &l, q, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("lunch token: %w", ErrNotFound)
		}
		return nil, err
	}
	return &l, nil
}

// GetOrCreate returns the lunch row for day, creating a planned one when the
// week has not been touched yet.  Safe to call from concurrent cadence runs.
func GetOrCreate(ctx context.Context, ext sqlx.ExtContext, day time.Time) (*Lunch, error) {
	l, err := ByDate(ctx, ext, day)
	if err == nil {
		return l, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	const ins = `INSERT INTO lunches (date, status) VALUES (?, ?)`
	if _, err := ext.ExecContext(ctx, ins, day.Format("2006-01-02"), StatusPlanned); err != nil {
		if !isDuplicate(err) {
			return nil, err
		}
		// Lost the race on the unique date index; the winner's row serves.
	}
	return ByDate(ctx, ext, day)
}

// AssignHost stores the designated host and confirmation token for a lunch.
// Called once per unconfirmed window; re-runs reuse the stored token instead.
func AssignHost(ctx context.Context, ext sqlx.ExtContext, id, hostID int64, token string) error {
	const q = `UPDATE lunches SET host_id = ?, confirmation_token = ? WHERE id = ?`
	_, err := ext.ExecContext(ctx, q, hostID, token, id)
	return err
}

// Confirm marks the host confirmed and the location chosen, in response to a
// valid confirmation-token submission.
func Confirm(ctx context.Context, ext sqlx.ExtContext, id, locationID int64, reserved bool) error {
	const q = `UPDATE lunches
	              SET location_id = ?, host_confirmed = TRUE, reservation_confirmed = ?
	            WHERE id = ?`
	_, err := ext.ExecContext(ctx, q, locationID, reserved, id)
	return err
}

// Complete records the attendance outcome on the lunch row together with the
// host-promotion snapshot used for exact reversal on a later correction.
func Complete(ctx context.Context, ext sqlx.ExtContext, id int64, actual int, hostID int64,
	prevCounter sql.NullInt64, prevLastHosted sql.NullTime) error {

	const q = `UPDATE lunches
	              SET actual_attendance     = ?,
	                  host_id               = ?,
	                  status                = ?,
	                  host_prev_counter     = ?,
	                  host_prev_last_hosted = ?
	            WHERE id = ?`
	_, err := ext.ExecContext(ctx, q, actual, hostID, StatusCompleted, prevCounter, prevLastHosted, id)
	return err
}

// Upcoming returns planned lunches on or after day, soonest first.
func Upcoming(ctx context.Context, ext sqlx.ExtContext, day time.Time, limit int) ([]Lunch, error) {
	const q = `SELECT ` + lunchColumns + `
	             FROM lunches
	            WHERE date >= ? AND status = ?
	            ORDER BY date
	            LIMIT ?`

	var out []Lunch
	if err := sqlx.SelectContext(ctx, ext, &out, q, day.Format("2006-01-02"), StatusPlanned, limit); err != nil {
		return nil, err
	}
	return out, nil
}

// AverageAttendance returns the mean actual attendance over the most recent
// recorded weeks, or fallback when nothing has been recorded yet.
func AverageAttendance(ctx context.Context, ext sqlx.ExtContext, weeks, fallback int) (int, error) {
	const q = `SELECT COALESCE(ROUND(AVG(t.actual_attendance)), 0)
	             FROM (SELECT actual_attendance
	                     FROM lunches
	                    WHERE actual_attendance IS NOT NULL
	                    ORDER BY date DESC
	                    LIMIT ?) AS t`

	var avg int
	if err := sqlx.GetContext(ctx, ext, &avg, q, weeks); err != nil {
		return 0, err
	}
	if avg == 0 {
		return fallback, nil
	}
	return avg, nil
}

//
// Attendance rows
//

// AttendanceFor returns the recorded attendance rows for a lunch.
func AttendanceFor(ctx context.Context, ext sqlx.ExtContext, lunchID int64) ([]Attendance, error) {
	const q = `SELECT id, lunch_id, member_id, was_host, created_at
	             FROM attendance
	            WHERE lunch_id = ?
	            ORDER BY member_id`

	var out []Attendance
	if err := sqlx.SelectContext(ctx, ext, &out, q, lunchID); err != nil {
		return nil, err
	}
	return out, nil
}

// InsertAttendance adds one attendee row.  The unique (lunch_id, member_id)
// index guards against double-insert.
func InsertAttendance(ctx context.Context, ext sqlx.ExtContext, lunchID, memberID int64, wasHost bool) error {
	const q = `INSERT INTO attendance (lunch_id, member_id, was_host) VALUES (?, ?, ?)`
	_, err := ext.ExecContext(ctx, q, lunchID, memberID, wasHost)
	return err
}

// DeleteAttendance removes one attendee row.
func DeleteAttendance(ctx context.Context, ext sqlx.ExtContext, lunchID, memberID int64) error {
	const q = `DELETE FROM attendance WHERE lunch_id = ? AND member_id = ?`
	_, err := ext.ExecContext(ctx, q, lunchID, memberID)
	return err
}

// SetWasHost flips the host-of-record flag on an existing attendee row.
func SetWasHost(ctx context.Context, ext sqlx.ExtContext, lunchID, memberID int64, wasHost bool) error {
	const q = `UPDATE attendance SET was_host = ? WHERE lunch_id = ? AND member_id = ?`
	_, err := ext.ExecContext(ctx, q, wasHost, lunchID, memberID)
	return err
}

//
// Locations
//

// LocationByID fetches one location.
func LocationByID(ctx context.Context, ext sqlx.ExtContext, id int64) (*Location, error) {
	const q = `SELECT id, name, address, phone, cuisine_type, price_level,
	                  avg_group_rating, last_visited, visit_count
	             FROM locations WHERE id = ?`

	var loc Location
	if err := sqlx.GetContext(ctx, ext, &loc, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("location %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &loc, nil
}

// isDuplicate recognises the MySQL duplicate-key error (1062) without string
// matching.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
