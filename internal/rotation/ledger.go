// internal/rotation/ledger.go
//
// Rotation Ledger: persistence-backed queue operations.
//
// Context
// -------
// The Ledger wraps the pure ordering in queue.go with the small set of
// mutations the secretary can perform: pin a member to a slot, save a full
// drag-and-drop reorder, revert to natural order, and swap two members'
// counters to correct a historical mis-recording.  Reads never lock; the
// mutations are single statements or one short transaction.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
// • Max line length 100 columns.
package rotation

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yanizio/lunchrota/internal/member"
	"github.com/yanizio/lunchrota/internal/metrics"
)

// ErrNotRegular is returned when a queue mutation targets a guest or an
// inactive member; only regulars hold rotation slots.
var ErrNotRegular = errors.New("rotation: member is not regular")

// Ledger exposes the canonical hosting order over the members table.
type Ledger struct {
	db *sqlx.DB
}

// NewLedger wires a Ledger to the process-wide pool.
func NewLedger(db *sqlx.DB) *Ledger {
	return &Ledger{db: db}
}

// Queue loads the regular members and returns them in hosting order.
// Read-only, safe to call from any consumer at any time.
func (l *Ledger) Queue(ctx context.Context) ([]member.Member, error) {
	members, err := member.Regulars(ctx, l.db)
	if err != nil {
		return nil, fmt.Errorf("rotation: load regulars: %w", err)
	}
	queue := Compute(members)
	metrics.QueueLength.Set(float64(len(queue)))
	return queue, nil
}

// SetManualPosition pins one member to a 1-indexed slot.
func (l *Ledger) SetManualPosition(ctx context.Context, memberID int64, pos int) error {
	if pos < 1 {
		return fmt.Errorf("rotation: position %d invalid", pos)
	}
	m, err := member.ByID(ctx, l.db, memberID)
	if err != nil {
		return err
	}
	if m.Class != member.ClassRegular {
		return fmt.Errorf("member %d: %w", memberID, ErrNotRegular)
	}
	return member.SetQueuePosition(ctx, l.db, memberID, pos)
}

// Reorder persists a full manual order from the drag-and-drop view.  The IDs
// arrive in desired order; each regular member gets queue_position i+1, and
// IDs that are unknown or not regular are skipped rather than failing the
// whole save, matching how partial lists behave in the UI.
func (l *Ledger) Reorder(ctx context.Context, memberIDs []int64) error {
	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	pos := 1
	for _, id := range memberIDs {
		m, err := member.ByID(ctx, tx, id)
		if err != nil {
			if errors.Is(err, member.ErrNotFound) {
				continue
			}
			return err
		}
		if m.Class != member.ClassRegular {
			continue
		}
		if err := member.SetQueuePosition(ctx, tx, id, pos); err != nil {
			return err
		}
		pos++
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	zap.S().Infow("hosting order saved", "pinned", pos-1)
	return nil
}

// ClearAllManualPositions reverts to the natural counter-based order.
// Idempotent.
func (l *Ledger) ClearAllManualPositions(ctx context.Context) error {
	if err := member.ClearQueuePositions(ctx, l.db); err != nil {
		return err
	}
	zap.S().Infow("hosting order auto-organized")
	return nil
}

// Swap exchanges the attendance_since_hosting counters of two members.  Used
// to fix a historically mis-recorded rotation; manual positions are left
// untouched.
func (l *Ledger) Swap(ctx context.Context, a, b int64) error {
	if a == b {
		return nil
	}

	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	ma, err := member.ByID(ctx, tx, a)
	if err != nil {
		return err
	}
	mb, err := member.ByID(ctx, tx, b)
	if err != nil {
		return err
	}

	if err := member.SwapCounters(ctx, tx, a, b,
		ma.AttendanceSinceHosting, mb.AttendanceSinceHosting); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	zap.S().Infow("rotation counters swapped",
		"member_a", ma.Name, "member_b", mb.Name,
		"count_a", ma.AttendanceSinceHosting, "count_b", mb.AttendanceSinceHosting)
	return nil
}
