// internal/reconcile/plan.go
//
// Pure diff of an attendance submission against the previously recorded
// state.
//
// Context
// -------
// The secretary always submits the *complete* attendee set for a lunch, not a
// delta.  BuildPlan compares that set with what is already recorded and emits
// the minimal set of mutations: attendance rows to add or remove, counters to
// bump in either direction, and at most one host promotion plus one host
// demotion.  Because the plan is derived from the difference rather than from
// the submission alone, applying the same submission twice yields an empty
// plan the second time — that is the idempotency guarantee.
//
// The prior host of record is the attendance row flagged was_host, not the
// lunch row's host_id; the cadence engine assigns host_id weeks ahead of the
// meal, and a reminder must never count as a hosting.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
// • Max line length 100 columns.
package reconcile

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidHost is returned when the designated host is not in the attendee
// set.
var ErrInvalidHost = errors.New("reconcile: host not in attendee set")

// Promotion describes the single host transition a plan may carry.
type Promotion struct {
	MemberID int64
	// WasAttendee is true when the member was recorded as a plain attendee
	// of this lunch by an earlier save.  Their counter then already includes
	// one increment for this very lunch, which the promotion snapshot must
	// exclude.
	WasAttendee bool
}

// Demotion reverses a prior promotion when the host of record changes or is
// removed on a corrective re-save.
type Demotion struct {
	MemberID int64
	// StillAttending is true when the demoted member remains in the new
	// attendee set as a plain attendee, which earns the one increment their
	// promotion previously absorbed.
	StillAttending bool
}

// Plan is the full set of mutations one submission implies.  All slices are
// sorted ascending so application order, and therefore test expectations,
// are deterministic.
type Plan struct {
	Added      []int64 // attendance rows to insert
	Removed    []int64 // attendance rows to delete
	Increments []int64 // attendance_since_hosting +1
	Decrements []int64 // attendance_since_hosting -1
	Promote    *Promotion
	Demote     *Demotion
}

// Empty reports whether applying the plan would change nothing.
func (p Plan) Empty() bool {
	return len(p.Added) == 0 && len(p.Removed) == 0 &&
		len(p.Increments) == 0 && len(p.Decrements) == 0 &&
		p.Promote == nil && p.Demote == nil
}

// BuildPlan diffs the submission (next, newHost) against the recorded state
// (prev, prevHost).  prevHost and newHost are member IDs; prevHost may be
// zero when no host has been recorded yet.
func BuildPlan(prev []int64, prevHost int64, next []int64, newHost int64) (Plan, error) {
	nextSet := toSet(next)
	if newHost == 0 || !nextSet[newHost] {
		return Plan{}, fmt.Errorf("host %d: %w", newHost, ErrInvalidHost)
	}
	prevSet := toSet(prev)

	var p Plan
	for id := range nextSet {
		if !prevSet[id] {
			p.Added = append(p.Added, id)
			if id != newHost {
				p.Increments = append(p.Increments, id)
			}
		}
	}
	for id := range prevSet {
		if !nextSet[id] {
			p.Removed = append(p.Removed, id)
			if id != prevHost {
				p.Decrements = append(p.Decrements, id)
			}
		}
	}

	if newHost != prevHost {
		p.Promote = &Promotion{
			MemberID:    newHost,
			WasAttendee: prevSet[newHost],
		}
		if prevHost != 0 {
			p.Demote = &Demotion{
				MemberID:       prevHost,
				StillAttending: nextSet[prevHost],
			}
		}
	}

	sortIDs(p.Added)
	sortIDs(p.Removed)
	sortIDs(p.Increments)
	sortIDs(p.Decrements)
	return p, nil
}

func toSet(ids []int64) map[int64]bool {
	s := make(map[int64]bool, len(ids))
	for _, id := range ids {
		s[id] = true
	}
	return s
}

func sortIDs(ids []int64) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
