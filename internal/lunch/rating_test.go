// internal/lunch/rating_test.go
//
// Unit-tests for rating-token issue and one-shot submission.
//
// Run: go test ./internal/lunch -v

package lunch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var ratingCols = []string{
	"id", "lunch_id", "member_id", "rating", "comment", "rating_token", "created_at",
}

func TestEnsureRatingReusesExistingToken(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT .+ FROM ratings\s+WHERE lunch_id = \? AND member_id = \?`).
		WithArgs(int64(7), int64(3)).
		WillReturnRows(sqlmock.NewRows(ratingCols).AddRow(
			1, 7, 3, nil, nil, "stored-token", time.Now()))

	r, err := EnsureRating(context.Background(), db, 7, 3, "fresh-token")
	if err != nil {
		t.Fatalf("EnsureRating error: %v", err)
	}
	if r.RatingToken.String != "stored-token" {
		t.Fatalf("token = %q, want the stored one", r.RatingToken.String)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestSubmitRatingRejectsSecondSubmission(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT .+ FROM ratings\s+WHERE lunch_id = \? AND rating_token = \?`).
		WithArgs(int64(7), "tok").
		WillReturnRows(sqlmock.NewRows(ratingCols).AddRow(
			1, 7, 3, 4, "great", "tok", time.Now()))

	err := SubmitRating(context.Background(), db, 7, "tok", 5, "")
	if !errors.Is(err, ErrAlreadyRated) {
		t.Fatalf("expected ErrAlreadyRated, got %v", err)
	}
}

func TestSubmitRatingRejectsOutOfRangeScore(t *testing.T) {
	db, _ := newMockDB(t)

	if err := SubmitRating(context.Background(), db, 7, "tok", 0, ""); err == nil {
		t.Fatalf("score 0 accepted")
	}
	if err := SubmitRating(context.Background(), db, 7, "tok", 6, ""); err == nil {
		t.Fatalf("score 6 accepted")
	}
}

func TestSubmitRatingBadToken(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT .+ FROM ratings\s+WHERE lunch_id = \? AND rating_token = \?`).
		WithArgs(int64(7), "wrong").
		WillReturnRows(sqlmock.NewRows(ratingCols))

	err := SubmitRating(context.Background(), db, 7, "wrong", 4, "")
	if !errors.Is(err, ErrBadToken) {
		t.Fatalf("expected ErrBadToken, got %v", err)
	}
}

func TestSubmitRatingLosesConcurrentRace(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT .+ FROM ratings\s+WHERE lunch_id = \? AND rating_token = \?`).
		WithArgs(int64(7), "tok").
		WillReturnRows(sqlmock.NewRows(ratingCols).AddRow(
			1, 7, 3, nil, nil, "tok", time.Now()))
	mock.ExpectExec(`UPDATE ratings SET rating`).
		WithArgs(4, "", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := SubmitRating(context.Background(), db, 7, "tok", 4, "")
	if !errors.Is(err, ErrAlreadyRated) {
		t.Fatalf("expected ErrAlreadyRated on lost race, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}
