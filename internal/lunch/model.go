// internal/lunch/model.go
//
// Lunch, Attendance, and Location records.
//
// Context
// -------
// One Lunch row exists per calendar week, keyed by its (unique) Tuesday date.
// The row is created lazily the first time the cadence engine needs to talk
// about that week, or explicitly by an operator.  It carries the confirmation
// token for the host's no-login confirm link, and the snapshot columns
// (`host_prev_counter`, `host_prev_last_hosted`) that make host-promotion
// reversal exact when the secretary corrects a mistaken save.
//
// Lunch rows are historical record and are never deleted; cancellation is a
// status, not a removal.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package lunch

import (
	"database/sql"
	"time"
)

// Lifecycle status values for a Lunch.
const (
	StatusPlanned   = "planned"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Lunch mirrors one row of the lunches table.
type Lunch struct {
	ID                   int64          `db:"id" json:"id"`
	Date                 time.Time      `db:"date" json:"date"`
	LocationID           *int64         `db:"location_id" json:"location_id,omitempty"`
	HostID               *int64         `db:"host_id" json:"host_id,omitempty"`
	ExpectedAttendance   *int           `db:"expected_attendance" json:"expected_attendance,omitempty"`
	ActualAttendance     *int           `db:"actual_attendance" json:"actual_attendance,omitempty"`
	ReservationConfirmed bool           `db:"reservation_confirmed" json:"reservation_confirmed"`
	HostConfirmed        bool           `db:"host_confirmed" json:"host_confirmed"`
	Status               string         `db:"status" json:"status"`
	ConfirmationToken    sql.NullString `db:"confirmation_token" json:"-"`
	HostPrevCounter      sql.NullInt64  `db:"host_prev_counter" json:"-"`
	HostPrevLastHosted   sql.NullTime   `db:"host_prev_last_hosted" json:"-"`
	CreatedAt            time.Time      `db:"created_at" json:"-"`
	UpdatedAt            time.Time      `db:"updated_at" json:"-"`
}

// Attendance is the join row recording that a member attended a lunch.  The
// set of Attendance rows for a lunch is the source of truth for "who was
// there"; the was_host flag marks the host of record.
type Attendance struct {
	ID        int64     `db:"id" json:"id"`
	LunchID   int64     `db:"lunch_id" json:"lunch_id"`
	MemberID  int64     `db:"member_id" json:"member_id"`
	WasHost   bool      `db:"was_host" json:"was_host"`
	CreatedAt time.Time `db:"created_at" json:"-"`
}

// Location is a restaurant the group has visited or may visit.
type Location struct {
	ID             int64           `db:"id" json:"id"`
	Name           string          `db:"name" json:"name"`
	Address        sql.NullString  `db:"address" json:"address,omitempty"`
	Phone          sql.NullString  `db:"phone" json:"phone,omitempty"`
	CuisineType    sql.NullString  `db:"cuisine_type" json:"cuisine_type,omitempty"`
	PriceLevel     sql.NullInt64   `db:"price_level" json:"price_level,omitempty"`
	AvgGroupRating sql.NullFloat64 `db:"avg_group_rating" json:"avg_group_rating,omitempty"`
	LastVisited    sql.NullTime    `db:"last_visited" json:"last_visited,omitempty"`
	VisitCount     int             `db:"visit_count" json:"visit_count"`
}

// Rating is one member's post-lunch verdict, created with its single-use
// token by the rating-request job and filled in when the member submits.
type Rating struct {
	ID          int64          `db:"id" json:"id"`
	LunchID     int64          `db:"lunch_id" json:"lunch_id"`
	MemberID    int64          `db:"member_id" json:"member_id"`
	Score       sql.NullInt64  `db:"rating" json:"rating,omitempty"`
	Comment     sql.NullString `db:"comment" json:"comment,omitempty"`
	RatingToken sql.NullString `db:"rating_token" json:"-"`
	CreatedAt   time.Time      `db:"created_at" json:"-"`
}
