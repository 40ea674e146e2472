// internal/reconcile/reconciler.go
//
// Transactional application of an attendance submission.
//
// Context
// -------
// Apply is the only write path for attendance.  It loads the recorded state,
// builds the pure plan from plan.go, and applies it inside one transaction:
// attendance-row inserts and deletes, counter adjustments, the host
// promotion (with its pre-promotion snapshot stored on the lunch row), and
// the lunch aggregate update.  Either everything commits or nothing does, so
// a double-tapped save on a slow connection can never half-update counters.
//
// Workflow
// --------
//  1. Load lunch, recorded attendance, and every referenced member.
//  2. BuildPlan(prev, prevHost, next, newHost).
//  3. Demote the prior host (restore from the lunch row's snapshot).
//  4. Apply plain counter increments and decrements.
//  5. Promote the new host, snapshotting counter and last-hosted date.
//  6. Replace attendance rows, stamp actual_attendance, mark completed.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
// • Max line length 100 columns.
package reconcile

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yanizio/lunchrota/internal/lunch"
	"github.com/yanizio/lunchrota/internal/member"
	"github.com/yanizio/lunchrota/internal/metrics"
)

// Reconciler applies attendance submissions against the rotation ledger.
type Reconciler struct {
	db *sqlx.DB
}

// New wires a Reconciler to the process-wide pool.
func New(db *sqlx.DB) *Reconciler {
	return &Reconciler{db: db}
}

// Apply records the complete attendee set and host for one lunch.
// Idempotent: re-submitting identical arguments is a no-op beyond the
// already-recorded state.
func (r *Reconciler) Apply(ctx context.Context, lunchID int64, attendeeIDs []int64, hostID int64) error {
	attendeeIDs = dedupe(attendeeIDs)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("reconcile: begin: %w", err)
	}
	defer tx.Rollback()

	l, err := lunch.ByID(ctx, tx, lunchID)
	if err != nil {
		return err
	}

	recorded, err := lunch.AttendanceFor(ctx, tx, lunchID)
	if err != nil {
		return err
	}
	prev := make([]int64, 0, len(recorded))
	var prevHost int64
	for _, a := range recorded {
		prev = append(prev, a.MemberID)
		if a.WasHost {
			prevHost = a.MemberID
		}
	}

	// Validate every referenced member up front; the loaded counters feed
	// the promotion snapshot below.
	loaded := make(map[int64]*member.Member, len(attendeeIDs)+1)
	for _, id := range append(append([]int64{}, attendeeIDs...), hostID) {
		if id == 0 || loaded[id] != nil {
			continue
		}
		m, err := member.ByID(ctx, tx, id)
		if err != nil {
			return err
		}
		loaded[id] = m
	}

	plan, err := BuildPlan(prev, prevHost, attendeeIDs, hostID)
	if err != nil {
		return err
	}

	if d := plan.Demote; d != nil {
		restore := 0
		if l.HostPrevCounter.Valid {
			restore = int(l.HostPrevCounter.Int64)
		}
		if d.StillAttending {
			restore++
		}
		if err := member.Demote(ctx, tx, d.MemberID, restore, l.HostPrevLastHosted); err != nil {
			return fmt.Errorf("reconcile: demote %d: %w", d.MemberID, err)
		}
	}

	for _, id := range plan.Increments {
		if err := member.AdjustCounter(ctx, tx, id, +1); err != nil {
			return fmt.Errorf("reconcile: increment %d: %w", id, err)
		}
	}
	for _, id := range plan.Decrements {
		if err := member.AdjustCounter(ctx, tx, id, -1); err != nil {
			return fmt.Errorf("reconcile: decrement %d: %w", id, err)
		}
	}

	// Carry forward the existing snapshot when the host is unchanged.
	snapCounter := l.HostPrevCounter
	snapHosted := l.HostPrevLastHosted
	if p := plan.Promote; p != nil {
		m := loaded[p.MemberID]
		snap := m.AttendanceSinceHosting
		if p.WasAttendee {
			// The loaded counter includes this lunch's own increment from a
			// prior save; the snapshot must predate the lunch entirely.
			snap--
		}
		snapCounter = sql.NullInt64{Int64: int64(snap), Valid: true}
		snapHosted = sql.NullTime{}
		if m.LastHostedDate != nil {
			snapHosted = sql.NullTime{Time: *m.LastHostedDate, Valid: true}
		}
		if err := member.Promote(ctx, tx, p.MemberID, l.Date); err != nil {
			return fmt.Errorf("reconcile: promote %d: %w", p.MemberID, err)
		}
	}

	for _, id := range plan.Added {
		if err := lunch.InsertAttendance(ctx, tx, lunchID, id, id == hostID); err != nil {
			return fmt.Errorf("reconcile: add attendee %d: %w", id, err)
		}
	}
	for _, id := range plan.Removed {
		if err := lunch.DeleteAttendance(ctx, tx, lunchID, id); err != nil {
			return fmt.Errorf("reconcile: remove attendee %d: %w", id, err)
		}
	}

	// Re-flag host-of-record on rows that survive a host change.
	if plan.Promote != nil {
		if plan.Promote.WasAttendee {
			if err := lunch.SetWasHost(ctx, tx, lunchID, hostID, true); err != nil {
				return err
			}
		}
		if d := plan.Demote; d != nil && d.StillAttending {
			if err := lunch.SetWasHost(ctx, tx, lunchID, d.MemberID, false); err != nil {
				return err
			}
		}
	}

	if err := lunch.Complete(ctx, tx, lunchID, len(attendeeIDs), hostID, snapCounter, snapHosted); err != nil {
		return fmt.Errorf("reconcile: complete lunch: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("reconcile: commit: %w", err)
	}

	metrics.AttendanceSavesTotal.Inc()
	zap.S().Infow("attendance reconciled",
		"lunch", l.Date.Format("2006-01-02"),
		"attendees", len(attendeeIDs),
		"added", len(plan.Added),
		"removed", len(plan.Removed),
		"host", hostID,
		"host_changed", plan.Promote != nil,
	)
	return nil
}

// dedupe drops repeated IDs while keeping first-seen order.  A double-listed
// attendee must count once.
func dedupe(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
