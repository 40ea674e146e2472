// internal/rotation/queue.go
//
// Pure hosting-order computation.
//
// Context
// -------
// Compute is the single ordering used everywhere the hosting queue appears:
// the lineup page, the secretary's drag-and-drop view, and host selection in
// the cadence engine.  Two tiers:
//
//   1. Members with a manual queue_position, ascending by position (the
//      secretary's pins for vacations and similar), name as tie-break.
//   2. Everyone else by attendance_since_hosting descending — the member who
//      has gone longest without hosting is up next — with the name tie-break
//      again so the order is fully deterministic.
//
// The function is read-only over a snapshot of members, so every caller sees
// the same answer for the same state.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package rotation

import (
	"sort"
	"time"

	"github.com/yanizio/lunchrota/internal/member"
)

// Compute returns the hosting order for the given members.  Non-regular
// members are filtered out; the input slice is not modified.
func Compute(members []member.Member) []member.Member {
	var pinned, natural []member.Member
	for _, m := range members {
		if m.Class != member.ClassRegular {
			continue
		}
		if m.QueuePosition != nil {
			pinned = append(pinned, m)
		} else {
			natural = append(natural, m)
		}
	}

	sort.SliceStable(pinned, func(i, j int) bool {
		if *pinned[i].QueuePosition != *pinned[j].QueuePosition {
			return *pinned[i].QueuePosition < *pinned[j].QueuePosition
		}
		return pinned[i].Name < pinned[j].Name
	})

	sort.SliceStable(natural, func(i, j int) bool {
		if natural[i].AttendanceSinceHosting != natural[j].AttendanceSinceHosting {
			return natural[i].AttendanceSinceHosting > natural[j].AttendanceSinceHosting
		}
		return natural[i].Name < natural[j].Name
	})

	return append(pinned, natural...)
}

// Lineup is the baseball-themed split of the queue shown on member pages.
type Lineup struct {
	AtBat     *member.Member  `json:"at_bat,omitempty"`
	OnDeck    *member.Member  `json:"on_deck,omitempty"`
	InTheHole *member.Member  `json:"in_the_hole,omitempty"`
	Dugout    []member.Member `json:"dugout"`
}

// BuildLineup slices a computed queue into lineup slots.
func BuildLineup(queue []member.Member) Lineup {
	l := Lineup{Dugout: []member.Member{}}
	if len(queue) > 0 {
		l.AtBat = &queue[0]
	}
	if len(queue) > 1 {
		l.OnDeck = &queue[1]
	}
	if len(queue) > 2 {
		l.InTheHole = &queue[2]
	}
	if len(queue) > 3 {
		l.Dugout = queue[3:]
	}
	return l
}

// EstimateHostingDate projects when the member at a 1-indexed queue position
// will host, assuming one lunch per week starting at nextTuesday.
func EstimateHostingDate(nextTuesday time.Time, position int) (time.Time, bool) {
	if position < 1 {
		return time.Time{}, false
	}
	return nextTuesday.AddDate(0, 0, 7*(position-1)), true
}
