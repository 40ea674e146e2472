// internal/member/repository_test.go
//
// Unit-tests for the members query helpers using sqlmock.
//
// Run: go test ./internal/member -v

package member

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

var memberCols = []string{
	"id", "name", "email", "member_type", "attendance_since_hosting", "queue_position",
	"last_hosted_date", "total_hosting_count", "first_attended", "created_at", "updated_at",
}

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { raw.Close() })
	return sqlx.NewDb(raw, "mysql"), mock
}

func TestByID(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT .+ FROM members WHERE id = \?`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(memberCols).AddRow(
			3, "Cat", "cat@example.com", "regular", 4, nil,
			nil, 2, nil, time.Now(), time.Now()))

	m, err := ByID(context.Background(), db, 3)
	if err != nil {
		t.Fatalf("ByID error: %v", err)
	}
	if m.Name != "Cat" || m.AttendanceSinceHosting != 4 || m.Class != ClassRegular {
		t.Fatalf("unexpected member: %+v", m)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT .+ FROM members WHERE id = \?`).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(memberCols))

	_, err := ByID(context.Background(), db, 99)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// Decrements must floor at zero: an admin SetCounter to 0 between saves
// would otherwise let a removed attendee drive the counter negative.
func TestAdjustCounterFloorsAtZero(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`SET attendance_since_hosting = GREATEST\(attendance_since_hosting \+ \?, 0\)`).
		WithArgs(-1, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := AdjustCounter(context.Background(), db, 3, -1); err != nil {
		t.Fatalf("AdjustCounter error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestPromoteResetsCounterAndStampsDate(t *testing.T) {
	db, mock := newMockDB(t)
	hosted := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(`SET attendance_since_hosting = 0`).
		WithArgs(hosted, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := Promote(context.Background(), db, 3, hosted); err != nil {
		t.Fatalf("Promote error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestSwapCountersIsOneStatement(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`SET attendance_since_hosting = CASE id`).
		WithArgs(int64(1), 3, int64(2), 7, int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	if err := SwapCounters(context.Background(), db, 1, 2, 7, 3); err != nil {
		t.Fatalf("SwapCounters error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestInsertReturnsGeneratedID(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`INSERT INTO members`).
		WithArgs("Gus", "gus@example.com", ClassGuest, 0, nil).
		WillReturnResult(sqlmock.NewResult(42, 1))

	id, err := Insert(context.Background(), db, &Member{
		Name: "Gus", Email: "gus@example.com", Class: ClassGuest})
	if err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if id != 42 {
		t.Fatalf("id = %d, want 42", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}
