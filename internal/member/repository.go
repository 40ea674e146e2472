// internal/member/repository.go
//
// sqlx query helpers for the members table.
//
// Context
// -------
// These helpers are thin, parameterised queries in the style of the rest of
// the persistence layer: each takes a sqlx.ExtContext so it runs equally well
// against the process-wide pool or inside a transaction opened by a caller
// (the attendance reconciler relies on that).  No helper commits anything.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
// • Max line length 100 columns.
package member

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when a member ID or email matches no row.
var ErrNotFound = errors.New("member: not found")

const columns = `id, name, email, member_type, attendance_since_hosting, queue_position,
                 last_hosted_date, total_hosting_count, first_attended, created_at, updated_at`

// ByID fetches a single member.
func ByID(ctx context.Context, ext sqlx.ExtContext, id int64) (*Member, error) {
	const q = `SELECT ` + columns + ` FROM members WHERE id = ?`

	var m Member
	if err := sqlx.GetContext(ctx, ext, &m, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("member %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &m, nil
}

// ByEmail fetches a single member by their unique email address.
func ByEmail(ctx context.Context, ext sqlx.ExtContext, email string) (*Member, error) {
	const q = `SELECT ` + columns + ` FROM members WHERE email = ?`

	var m Member
	if err := sqlx.GetContext(ctx, ext, &m, q, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("member %q: %w", email, ErrNotFound)
		}
		return nil, err
	}
	return &m, nil
}

// Regulars returns every regular member.  Ordering is left to the rotation
// package, which is the single authority on hosting order.
func Regulars(ctx context.Context, ext sqlx.ExtContext) ([]Member, error) {
	const q = `SELECT ` + columns + ` FROM members WHERE member_type = 'regular'`

	var out []Member
	if err := sqlx.SelectContext(ctx, ext, &out, q); err != nil {
		return nil, err
	}
	return out, nil
}

// Attendees returns regular and guest members, alphabetical, for the
// secretary's attendance checklist.
func Attendees(ctx context.Context, ext sqlx.ExtContext) ([]Member, error) {
	const q = `SELECT ` + columns + `
	             FROM members
	            WHERE member_type IN ('regular', 'guest')
	            ORDER BY name`

	var out []Member
	if err := sqlx.SelectContext(ctx, ext, &out, q); err != nil {
		return nil, err
	}
	return out, nil
}

// Insert creates a member row and returns its generated ID.  Used by guest
// quick-add during attendance and by ad-hoc admin creation.
func Insert(ctx context.Context, ext sqlx.ExtContext, m *Member) (int64, error) {
	const q = `INSERT INTO members
	             (name, email, member_type, attendance_since_hosting, first_attended)
	           VALUES (?, ?, ?, ?, ?)`

	res, err := ext.ExecContext(ctx, q,
		m.Name, m.Email, m.Class, m.AttendanceSinceHosting, m.FirstAttended)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// SetCounter overwrites attendance_since_hosting.  Reserved for the admin
// correction form.  Callers verify the member exists first; MySQL reports
// zero affected rows for no-op updates, so row counts cannot signal NotFound.
func SetCounter(ctx context.Context, ext sqlx.ExtContext, id int64, n int) error {
	const q = `UPDATE members SET attendance_since_hosting = ? WHERE id = ?`
	_, err := ext.ExecContext(ctx, q, n, id)
	return err
}

// AdjustCounter adds delta (may be negative) to attendance_since_hosting.
// Floored at zero: an admin correction between saves can leave the stored
// counter below what a later decrement assumes, and the counter must never
// go negative.
func AdjustCounter(ctx context.Context, ext sqlx.ExtContext, id int64, delta int) error {
	const q = `UPDATE members
	              SET attendance_since_hosting = GREATEST(attendance_since_hosting + ?, 0)
	            WHERE id = ?`
	_, err := ext.ExecContext(ctx, q, delta, id)
	return err
}

// Promote records a host promotion: counter to zero, hosting total up one,
// last-hosted stamped with the lunch date.
func Promote(ctx context.Context, ext sqlx.ExtContext, id int64, hosted time.Time) error {
	const q = `UPDATE members
	              SET attendance_since_hosting = 0,
	                  total_hosting_count      = total_hosting_count + 1,
	                  last_hosted_date         = ?
	            WHERE id = ?`
	_, err := ext.ExecContext(ctx, q, hosted, id)
	return err
}

// Demote reverses a prior promotion: the counter and last-hosted date are
// restored from the snapshot taken at promotion time, and the hosting total
// goes back down.
func Demote(ctx context.Context, ext sqlx.ExtContext, id int64, counter int, hosted sql.NullTime) error {
	const q = `UPDATE members
	              SET attendance_since_hosting = ?,
	                  total_hosting_count      = total_hosting_count - 1,
	                  last_hosted_date         = ?
	            WHERE id = ?`
	_, err := ext.ExecContext(ctx, q, counter, hosted, id)
	return err
}

// SetQueuePosition pins the member to a 1-indexed manual slot.
func SetQueuePosition(ctx context.Context, ext sqlx.ExtContext, id int64, pos int) error {
	const q = `UPDATE members SET queue_position = ? WHERE id = ?`
	_, err := ext.ExecContext(ctx, q, pos, id)
	return err
}

// ClearQueuePositions drops every manual override.  Idempotent.
func ClearQueuePositions(ctx context.Context, ext sqlx.ExtContext) error {
	const q = `UPDATE members SET queue_position = NULL WHERE queue_position IS NOT NULL`
	_, err := ext.ExecContext(ctx, q)
	return err
}

// SwapCounters exchanges attendance_since_hosting between two members, for
// correcting historically mis-recorded rotations.  Runs as a single UPDATE so
// the exchange is atomic even outside an explicit transaction.
func SwapCounters(ctx context.Context, ext sqlx.ExtContext, a, b int64, aCount, bCount int) error {
	const q = `UPDATE members
	              SET attendance_since_hosting = CASE id WHEN ? THEN ? WHEN ? THEN ? END
	            WHERE id IN (?, ?)`
	_, err := ext.ExecContext(ctx, q, a, bCount, b, aCount, a, b)
	return err
}
