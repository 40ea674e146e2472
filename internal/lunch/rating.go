// internal/lunch/rating.go
//
// Rating rows: token issue and one-shot submission.
//
// Context
// -------
// The rating-request job creates one Rating row per attendee carrying a
// single-use token; the member later follows the emailed link and submits a
// 1–5 score.  The unique (lunch_id, member_id) index means a re-run of the
// job reuses the existing row (and token) instead of minting another, and the
// NULL-until-submitted score column is what makes duplicate submission
// detectable.
package lunch

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ErrAlreadyRated is returned when a member submits a second rating for the
// same lunch.
var ErrAlreadyRated = errors.New("lunch: rating already submitted")

// ErrBadToken is returned when a rating token does not match the row it
// claims to belong to.
var ErrBadToken = errors.New("lunch: rating token mismatch")

// EnsureRating returns the rating row for (lunchID, memberID), creating it
// with the supplied token when absent.  The stored token wins on re-run.
func EnsureRating(ctx context.Context, ext sqlx.ExtContext, lunchID, memberID int64, token string) (*Rating, error) {
	r, err := ratingFor(ctx, ext, lunchID, memberID)
	if err == nil {
		return r, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	const ins = `INSERT INTO ratings (lunch_id, member_id, rating_token) VALUES (?, ?, ?)`
	if _, err := ext.ExecContext(ctx, ins, lunchID, memberID, token); err != nil {
		if !isDuplicate(err) {
			return nil, err
		}
	}
	return ratingFor(ctx, ext, lunchID, memberID)
}

// SubmitRating records a member's score and comment against their token.
// A second submission for the same row returns ErrAlreadyRated.
func SubmitRating(ctx context.Context, ext sqlx.ExtContext, lunchID int64, token string, score int, comment string) error {
	if score < 1 || score > 5 {
		return fmt.Errorf("lunch: score %d out of range", score)
	}

	const q = `SELECT id, lunch_id, member_id, rating, comment, rating_token, created_at
	             FROM ratings
	            WHERE lunch_id = ? AND rating_token = ?`

	var r Rating
	if err := sqlx.GetContext(ctx, ext, &r, q, lunchID, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("rating for lunch %d: %w", lunchID, ErrBadToken)
		}
		return err
	}
	if r.Score.Valid {
		return ErrAlreadyRated
	}

	const upd = `UPDATE ratings SET rating = ?, comment = ? WHERE id = ? AND rating IS NULL`
	res, err := ext.ExecContext(ctx, upd, score, comment, r.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// A concurrent submit won between our read and write.
		return ErrAlreadyRated
	}
	return nil
}

func ratingFor(ctx context.Context, ext sqlx.ExtContext, lunchID, memberID int64) (*Rating, error) {
	const q = `SELECT id, lunch_id, member_id, rating, comment, rating_token, created_at
	             FROM ratings
	            WHERE lunch_id = ? AND member_id = ?`

	var r Rating
	if err := sqlx.GetContext(ctx, ext, &r, q, lunchID, memberID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("rating (%d,%d): %w", lunchID, memberID, ErrNotFound)
		}
		return nil, err
	}
	return &r, nil
}
