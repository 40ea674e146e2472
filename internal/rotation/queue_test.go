// internal/rotation/queue_test.go
//
// Unit-tests for the pure hosting-order computation.
//
// Run: go test ./internal/rotation -v

package rotation

import (
	"testing"
	"time"

	"github.com/yanizio/lunchrota/internal/member"
)

func regular(id int64, name string, counter int) member.Member {
	return member.Member{ID: id, Name: name, Class: member.ClassRegular,
		AttendanceSinceHosting: counter}
}

func pinned(id int64, name string, counter, pos int) member.Member {
	m := regular(id, name, counter)
	m.QueuePosition = &pos
	return m
}

func names(queue []member.Member) []string {
	out := make([]string, len(queue))
	for i, m := range queue {
		out[i] = m.Name
	}
	return out
}

func assertOrder(t *testing.T, queue []member.Member, want ...string) {
	t.Helper()
	got := names(queue)
	if len(got) != len(want) {
		t.Fatalf("order %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order %v, want %v", got, want)
		}
	}
}

func TestComputeNaturalOrder(t *testing.T) {
	queue := Compute([]member.Member{
		regular(1, "Ann", 3),
		regular(2, "Bob", 7),
		regular(3, "Cat", 5),
	})
	assertOrder(t, queue, "Bob", "Cat", "Ann")
}

func TestComputeNameBreaksCounterTies(t *testing.T) {
	queue := Compute([]member.Member{
		regular(1, "Cat", 4),
		regular(2, "Ann", 4),
		regular(3, "Bob", 4),
	})
	assertOrder(t, queue, "Ann", "Bob", "Cat")
}

func TestComputePinnedMembersLeadRegardlessOfCounter(t *testing.T) {
	// Bob has the highest counter but Ann is pinned to slot 1.
	queue := Compute([]member.Member{
		regular(1, "Bob", 9),
		pinned(2, "Ann", 0, 1),
		regular(3, "Cat", 5),
	})
	assertOrder(t, queue, "Ann", "Bob", "Cat")
}

func TestComputeMultiplePins(t *testing.T) {
	queue := Compute([]member.Member{
		pinned(1, "Cat", 0, 2),
		pinned(2, "Ann", 0, 1),
		regular(3, "Bob", 9),
		regular(4, "Dee", 1),
	})
	assertOrder(t, queue, "Ann", "Cat", "Bob", "Dee")
}

func TestComputeFiltersGuestsAndInactive(t *testing.T) {
	queue := Compute([]member.Member{
		regular(1, "Ann", 2),
		{ID: 2, Name: "Gus", Class: member.ClassGuest, AttendanceSinceHosting: 9},
		{ID: 3, Name: "Ida", Class: member.ClassInactive, AttendanceSinceHosting: 9},
	})
	assertOrder(t, queue, "Ann")
}

func TestComputeDoesNotModifyInput(t *testing.T) {
	in := []member.Member{
		regular(1, "Ann", 1),
		regular(2, "Bob", 9),
	}
	Compute(in)
	if in[0].Name != "Ann" || in[1].Name != "Bob" {
		t.Fatalf("input reordered: %v", names(in))
	}
}

func TestBuildLineup(t *testing.T) {
	queue := Compute([]member.Member{
		regular(1, "Ann", 9),
		regular(2, "Bob", 7),
		regular(3, "Cat", 5),
		regular(4, "Dee", 3),
		regular(5, "Eve", 1),
	})

	l := BuildLineup(queue)
	if l.AtBat == nil || l.AtBat.Name != "Ann" {
		t.Fatalf("at bat: %+v", l.AtBat)
	}
	if l.OnDeck == nil || l.OnDeck.Name != "Bob" {
		t.Fatalf("on deck: %+v", l.OnDeck)
	}
	if l.InTheHole == nil || l.InTheHole.Name != "Cat" {
		t.Fatalf("in the hole: %+v", l.InTheHole)
	}
	if len(l.Dugout) != 2 || l.Dugout[0].Name != "Dee" {
		t.Fatalf("dugout: %v", names(l.Dugout))
	}
}

func TestBuildLineupShortQueue(t *testing.T) {
	l := BuildLineup(Compute([]member.Member{regular(1, "Ann", 1)}))
	if l.AtBat == nil || l.OnDeck != nil || l.InTheHole != nil {
		t.Fatalf("short lineup: %+v", l)
	}
	if l.Dugout == nil || len(l.Dugout) != 0 {
		t.Fatalf("dugout should be empty, not nil: %#v", l.Dugout)
	}
}

func TestEstimateHostingDate(t *testing.T) {
	next := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	got, ok := EstimateHostingDate(next, 1)
	if !ok || !got.Equal(next) {
		t.Fatalf("position 1: %v %v", got, ok)
	}
	got, ok = EstimateHostingDate(next, 3)
	if !ok || !got.Equal(next.AddDate(0, 0, 14)) {
		t.Fatalf("position 3: %v %v", got, ok)
	}
	if _, ok := EstimateHostingDate(next, 0); ok {
		t.Fatalf("position 0 should be rejected")
	}
}
