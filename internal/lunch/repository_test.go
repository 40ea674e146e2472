// internal/lunch/repository_test.go
//
// Unit-tests for the lunch query helpers using sqlmock.
//
// Run: go test ./internal/lunch -v

package lunch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

var lunchCols = []string{
	"id", "date", "location_id", "host_id", "expected_attendance", "actual_attendance",
	"reservation_confirmed", "host_confirmed", "status", "confirmation_token",
	"host_prev_counter", "host_prev_last_hosted", "created_at", "updated_at",
}

var tuesday = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { raw.Close() })
	return sqlx.NewDb(raw, "mysql"), mock
}

func plannedRow() *sqlmock.Rows {
	return sqlmock.NewRows(lunchCols).AddRow(
		7, tuesday, nil, nil, nil, nil,
		false, false, StatusPlanned, nil, nil, nil, time.Now(), time.Now())
}

func TestGetOrCreateReturnsExistingRow(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT .+ FROM lunches WHERE date = \?`).
		WithArgs("2026-03-10").
		WillReturnRows(plannedRow())

	l, err := GetOrCreate(context.Background(), db, tuesday)
	if err != nil {
		t.Fatalf("GetOrCreate error: %v", err)
	}
	if l.ID != 7 || l.Status != StatusPlanned {
		t.Fatalf("unexpected lunch: %+v", l)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestGetOrCreateInsertsMissingWeek(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT .+ FROM lunches WHERE date = \?`).
		WithArgs("2026-03-10").
		WillReturnRows(sqlmock.NewRows(lunchCols))
	mock.ExpectExec(`INSERT INTO lunches`).
		WithArgs("2026-03-10", StatusPlanned).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery(`SELECT .+ FROM lunches WHERE date = \?`).
		WithArgs("2026-03-10").
		WillReturnRows(plannedRow())

	l, err := GetOrCreate(context.Background(), db, tuesday)
	if err != nil {
		t.Fatalf("GetOrCreate error: %v", err)
	}
	if l.ID != 7 {
		t.Fatalf("id = %d, want 7", l.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestByTokenNotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT .+ FROM lunches WHERE confirmation_token = \?`).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(lunchCols))

	_, err := ByToken(context.Background(), db, "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAverageAttendanceFallsBack(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT COALESCE`).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"avg"}).AddRow(0))

	got, err := AverageAttendance(context.Background(), db, 4, 15)
	if err != nil {
		t.Fatalf("AverageAttendance error: %v", err)
	}
	if got != 15 {
		t.Fatalf("avg = %d, want fallback 15", got)
	}
}

func TestAverageAttendanceUsesHistory(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT COALESCE`).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"avg"}).AddRow(12))

	got, err := AverageAttendance(context.Background(), db, 4, 15)
	if err != nil {
		t.Fatalf("AverageAttendance error: %v", err)
	}
	if got != 12 {
		t.Fatalf("avg = %d, want 12", got)
	}
}
