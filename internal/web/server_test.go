// internal/web/server_test.go
//
// Handler tests over httptest and sqlmock.
//
// Run: go test ./internal/web -v

package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/lunchrota/internal/cadence"
	"github.com/yanizio/lunchrota/internal/mailer"
	"github.com/yanizio/lunchrota/internal/reconcile"
	"github.com/yanizio/lunchrota/internal/rotation"
	"github.com/yanizio/lunchrota/internal/settings"
	"github.com/yanizio/lunchrota/internal/token"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type nullMailer struct{}

func (nullMailer) Send(context.Context, mailer.Message) (string, error) { return "x", nil }

var memberCols = []string{
	"id", "name", "email", "member_type", "attendance_since_hosting", "queue_position",
	"last_hosted_date", "total_hosting_count", "first_attended", "created_at", "updated_at",
}

var ratingCols = []string{
	"id", "lunch_id", "member_id", "rating", "comment", "rating_token", "created_at",
}

var lunchCols = []string{
	"id", "date", "location_id", "host_id", "expected_attendance", "actual_attendance",
	"reservation_confirmed", "host_confirmed", "status", "confirmation_token",
	"host_prev_counter", "host_prev_last_hosted", "created_at", "updated_at",
}

// monday before the 2026-03-10 lunch
var now = time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (http.Handler, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { raw.Close() })

	db := sqlx.NewDb(raw, "mysql")
	ledger := rotation.NewLedger(db)
	store := settings.NewStore(db)
	clock := fixedClock{now}
	engine := cadence.NewEngine(db, ledger, nullMailer{}, token.CryptoSource{},
		clock, store, "https://lunch.example.com")

	s := New(db, ledger, reconcile.New(db), engine, store, clock)
	return s.Routes(), mock
}

func TestLineup(t *testing.T) {
	h, mock := newTestServer(t)

	mock.ExpectQuery(`SELECT .+ FROM members WHERE member_type = 'regular'`).
		WillReturnRows(sqlmock.NewRows(memberCols).
			AddRow(1, "Ann", "ann@example.com", "regular", 2, nil, nil, 0, nil, now, now).
			AddRow(2, "Bob", "bob@example.com", "regular", 5, nil, nil, 0, nil, now, now))

	req := httptest.NewRequest(http.MethodGet, "/api/lineup", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		NextTuesday string `json:"next_tuesday"`
		Lineup      struct {
			AtBat *struct {
				Name string `json:"name"`
			} `json:"at_bat"`
		} `json:"lineup"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.NextTuesday != "2026-03-10" {
		t.Fatalf("next_tuesday = %q", body.NextTuesday)
	}
	if body.Lineup.AtBat == nil || body.Lineup.AtBat.Name != "Bob" {
		t.Fatalf("at bat: %+v", body.Lineup.AtBat)
	}
}

func TestRateSubmitConflict(t *testing.T) {
	h, mock := newTestServer(t)

	mock.ExpectQuery(`SELECT .+ FROM ratings`).
		WithArgs(int64(7), "tok").
		WillReturnRows(sqlmock.NewRows(ratingCols).AddRow(
			1, 7, 3, 4, nil, "tok", now))

	req := httptest.NewRequest(http.MethodPost, "/rate/7/tok",
		strings.NewReader(`{"score":5}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status %d, want 409: %s", rec.Code, rec.Body.String())
	}
}

func TestRateSubmitValidation(t *testing.T) {
	h, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/rate/7/tok",
		strings.NewReader(`{"score":9}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}

func TestConfirmShowUnknownToken(t *testing.T) {
	h, mock := newTestServer(t)

	mock.ExpectQuery(`SELECT .+ FROM lunches WHERE confirmation_token = \?`).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(lunchCols))

	req := httptest.NewRequest(http.MethodGet, "/confirm/nope", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rec.Code)
	}
}

func TestGuestAddRejectsBadEmail(t *testing.T) {
	h, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/guests",
		strings.NewReader(`{"name":"Gus","email":"not-an-email"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}

func TestRunJobUnknownName(t *testing.T) {
	h, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/jobs/nonsense", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rec.Code)
	}
}

func TestAttendanceSaveRejectsUnknownFields(t *testing.T) {
	h, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/attendance",
		strings.NewReader(`{"date":"2026-03-10","attendee_ids":[1],"host_id":1,"bogus":true}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}
