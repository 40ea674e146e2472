// internal/settings/settings_test.go
//
// Unit-tests for the key/value settings store using sqlmock.
//
// Run: go test ./internal/settings -v

package settings

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { raw.Close() })
	return NewStore(sqlx.NewDb(raw, "mysql")), mock
}

func TestGetFallsBackWhenAbsent(t *testing.T) {
	s, mock := newStore(t)

	mock.ExpectQuery(`SELECT value FROM settings`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	got, err := s.Get(context.Background(), "missing", "default")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got != "default" {
		t.Fatalf("got %q, want fallback", got)
	}
}

func TestGetInt64(t *testing.T) {
	s, mock := newStore(t)

	mock.ExpectQuery(`SELECT value FROM settings`).
		WithArgs(KeySecretaryMemberID).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("42"))

	n, ok, err := s.GetInt64(context.Background(), KeySecretaryMemberID)
	if err != nil {
		t.Fatalf("GetInt64 error: %v", err)
	}
	if !ok || n != 42 {
		t.Fatalf("got %d ok=%v, want 42 true", n, ok)
	}
}

func TestGetInt64Malformed(t *testing.T) {
	s, mock := newStore(t)

	mock.ExpectQuery(`SELECT value FROM settings`).
		WithArgs("k").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("not-a-number"))

	_, ok, err := s.GetInt64(context.Background(), "k")
	if err != nil {
		t.Fatalf("GetInt64 error: %v", err)
	}
	if ok {
		t.Fatalf("malformed value reported ok")
	}
}

func TestSetUpserts(t *testing.T) {
	s, mock := newStore(t)

	mock.ExpectExec(`INSERT INTO settings`).
		WithArgs("last_run:announcement", "2026-03-09").
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := s.Set(context.Background(), "last_run:announcement", "2026-03-09"); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}
