// internal/member/model.go
//
// Member record and membership classes.
//
// Context
// -------
// A Member is one participant in the weekly lunch group.  The two counters on
// this struct drive the entire rotation: `attendance_since_hosting` is the
// number of lunches attended since the member last hosted, and
// `queue_position`, when non-NULL, pins the member to a manual slot in the
// hosting order.  Members are never hard-deleted; the secretary demotes them
// to the `inactive` class instead so historical attendance keeps its foreign
// keys.
//
// Notes
// -----
//   - `attendance_since_hosting` is reset to zero only by host promotion in
//     the reconciler; no other code path may decrement it except the
//     reconciler's own reversal logic.
//   - Oxford commas, two spaces after periods.
package member

import "time"

// Class is the membership class stored in members.member_type.
type Class string

const (
	ClassRegular  Class = "regular"
	ClassGuest    Class = "guest"
	ClassInactive Class = "inactive"
)

// Member mirrors one row of the members table.
type Member struct {
	ID                     int64      `db:"id" json:"id"`
	Name                   string     `db:"name" json:"name"`
	Email                  string     `db:"email" json:"email"`
	Class                  Class      `db:"member_type" json:"member_type"`
	AttendanceSinceHosting int        `db:"attendance_since_hosting" json:"attendance_since_hosting"`
	QueuePosition          *int       `db:"queue_position" json:"queue_position,omitempty"`
	LastHostedDate         *time.Time `db:"last_hosted_date" json:"last_hosted_date,omitempty"`
	TotalHostingCount      int        `db:"total_hosting_count" json:"total_hosting_count"`
	FirstAttended          *time.Time `db:"first_attended" json:"first_attended,omitempty"`
	CreatedAt              time.Time  `db:"created_at" json:"-"`
	UpdatedAt              time.Time  `db:"updated_at" json:"-"`
}

// Active reports whether the member takes part in the hosting rotation.
// Guests attend but never host; inactive members do neither.
func (m *Member) Active() bool { return m.Class == ClassRegular }
