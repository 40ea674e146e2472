// internal/mailer/log.go
//
// Immutable email-send log.
//
// One row per recipient per send attempt, written after the provider call so
// the status column reflects what actually happened.  Rows are never updated
// here; delivery-status webhooks (out of scope for this service) would patch
// status later using the provider message ID.
package mailer

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
)

// Log statuses.
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// Entry mirrors one row of the email_logs table.
type Entry struct {
	ID                int64          `db:"id"`
	EmailType         string         `db:"email_type"`
	RecipientEmail    string         `db:"recipient_email"`
	RecipientName     sql.NullString `db:"recipient_name"`
	Subject           string         `db:"subject"`
	LunchID           sql.NullInt64  `db:"lunch_id"`
	ProviderMessageID sql.NullString `db:"provider_message_id"`
	Status            string         `db:"status"`
	ErrorMessage      sql.NullString `db:"error_message"`
	SentAt            time.Time      `db:"sent_at"`
}

// Record inserts one log entry.
func Record(ctx context.Context, ext sqlx.ExtContext, e Entry) error {
	const q = `INSERT INTO email_logs
	             (email_type, recipient_email, recipient_name, subject, lunch_id,
	              provider_message_id, status, error_message)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := ext.ExecContext(ctx, q,
		e.EmailType, e.RecipientEmail, e.RecipientName, e.Subject, e.LunchID,
		e.ProviderMessageID, e.Status, e.ErrorMessage)
	return err
}
