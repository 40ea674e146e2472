// internal/cadence/engine.go
//
// Cadence Engine: decides which weekly jobs are due and runs them.
//
// Context
// -------
// Four jobs anchor to the Tuesday lunch:
//
//	Thursday 09:00  host reminder, staged over three tiers
//	Friday   09:00  secretary status report
//	Monday   09:00  group announcement
//	Tuesday  18:00  rating requests to recorded attendees
//
// Due-ness is computed from the injected clock alone; at-most-once-per-day
// dispatch is a `last_run:<job>` date stamp in settings, so a scheduler tick
// and a manual trigger on the same day do not double-send.  Every job is safe
// to re-run regardless: payload generation never touches rotation counters,
// and row or token creation is upsert-style against unique indexes.
//
// A mailer failure after rows were committed is reported but not rolled
// back; the next run finds the existing rows and merely resends.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
// • Max line length 100 columns.
package cadence

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yanizio/lunchrota/internal/mailer"
	"github.com/yanizio/lunchrota/internal/metrics"
	"github.com/yanizio/lunchrota/internal/rotation"
	"github.com/yanizio/lunchrota/internal/settings"
	"github.com/yanizio/lunchrota/internal/token"
)

// Default expected attendance before any history exists.
const defaultExpected = 15

// Result summarises one job run.
type Result struct {
	Job     Job    `json:"job"`
	Skipped bool   `json:"skipped"`
	Reason  string `json:"reason,omitempty"`
	Sent    int    `json:"sent"`
	Failed  int    `json:"failed"`
}

// Engine coordinates the weekly jobs over the persisted state.
type Engine struct {
	db      *sqlx.DB
	ledger  *rotation.Ledger
	mail    mailer.Mailer
	tokens  token.Source
	clock   Clock
	store   *settings.Store
	baseURL string
}

// NewEngine wires the engine to its collaborators.  baseURL is the public
// origin used to build confirmation and rating links.
func NewEngine(db *sqlx.DB, ledger *rotation.Ledger, mail mailer.Mailer, tokens token.Source,
	clock Clock, store *settings.Store, baseURL string) *Engine {

	return &Engine{
		db:      db,
		ledger:  ledger,
		mail:    mail,
		tokens:  tokens,
		clock:   clock,
		store:   store,
		baseURL: baseURL,
	}
}

// Due returns the jobs whose weekly window contains now.  Pure: no reads, no
// writes, no last-run bookkeeping (Tick layers that on top).
func Due(now time.Time) []Job {
	var due []Job
	switch now.Weekday() {
	case time.Thursday:
		if now.Hour() >= 9 {
			due = append(due, JobHostReminder)
		}
	case time.Friday:
		if now.Hour() >= 9 {
			due = append(due, JobSecretaryStatus)
		}
	case time.Monday:
		if now.Hour() >= 9 {
			due = append(due, JobAnnouncement)
		}
	case time.Tuesday:
		if now.Hour() >= 18 {
			due = append(due, JobRatingRequest)
		}
	}
	return due
}

// Tick runs every due job that has not yet run today.  Called by the
// scheduler loop; errors are logged per job so one failure does not starve
// the others.
func (e *Engine) Tick(ctx context.Context) {
	now := e.clock.Now()
	today := dateOnly(now).Format("2006-01-02")

	for _, job := range Due(now) {
		stampKey := settings.KeyLastRunPrefix + string(job)
		last, err := e.store.Get(ctx, stampKey, "")
		if err != nil {
			zap.S().Errorw("cadence stamp read failed", "job", job, "err", err)
			continue
		}
		if last == today {
			continue
		}

		res, err := e.Run(ctx, job, false)
		if err != nil {
			zap.S().Errorw("cadence job failed", "job", job, "err", err)
			continue
		}
		if err := e.store.Set(ctx, stampKey, today); err != nil {
			zap.S().Errorw("cadence stamp write failed", "job", job, "err", err)
		}
		zap.S().Infow("cadence job complete",
			"job", job, "sent", res.Sent, "failed", res.Failed,
			"skipped", res.Skipped, "reason", res.Reason)
	}
}

// Run executes one job now.  dryRun substitutes a logging mailer and skips
// the email log, for the admin test button.
func (e *Engine) Run(ctx context.Context, job Job, dryRun bool) (Result, error) {
	metrics.CadenceRunsTotal.WithLabelValues(string(job)).Inc()

	m := e.mail
	if dryRun {
		m = mailer.DryRun{}
	}

	switch job {
	case JobHostReminder:
		return e.runHostReminders(ctx, m, dryRun)
	case JobSecretaryStatus:
		return e.runSecretaryStatus(ctx, m, dryRun)
	case JobAnnouncement:
		return e.runAnnouncement(ctx, m, dryRun)
	case JobRatingRequest:
		return e.runRatingRequests(ctx, m, dryRun)
	default:
		return Result{}, fmt.Errorf("cadence: unknown job %q", job)
	}
}

// dispatch sends one message and writes the email log unless dry-running.
// Returns false when the provider rejected the send.
func (e *Engine) dispatch(ctx context.Context, m mailer.Mailer, dryRun bool,
	emailType string, lunchID int64, msg mailer.Message) bool {

	deliveryID, err := m.Send(ctx, msg)
	ok := err == nil
	if ok {
		metrics.EmailSentTotal.WithLabelValues(emailType).Inc()
	} else {
		metrics.EmailErrorsTotal.WithLabelValues(emailType).Inc()
		zap.S().Warnw("email send failed", "type", emailType, "err", err)
	}

	if dryRun {
		return ok
	}
	for _, rcpt := range msg.To {
		entry := mailer.Entry{
			EmailType:      emailType,
			RecipientEmail: rcpt.Email,
			RecipientName:  nullString(rcpt.Name),
			Subject:        msg.Subject,
			LunchID:        nullInt64(lunchID),
			Status:         mailer.StatusSent,
		}
		if ok {
			entry.ProviderMessageID = nullString(deliveryID)
		} else {
			entry.Status = mailer.StatusFailed
			entry.ErrorMessage = nullString(err.Error())
		}
		if lerr := mailer.Record(ctx, e.db, entry); lerr != nil {
			zap.S().Errorw("email log write failed", "type", emailType, "err", lerr)
		}
	}
	return ok
}
