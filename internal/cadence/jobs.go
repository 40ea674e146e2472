// internal/cadence/jobs.go
//
// The four weekly job runners.
//
// Context
// -------
// Each runner resolves its payload from the current rotation and lunch state,
// then hands fully built messages to dispatch().  Runners mutate only their
// own bookkeeping rows (lunch creation, host assignment, rating tokens); they
// never touch rotation counters, so any runner may execute twice in a day
// without skewing the queue.
//
// Workflow (host reminder)
// ------------------------
//  1. Anchor on next Tuesday; walk the At Bat, On Deck, and In the Hole weeks.
//  2. Get-or-create each week's lunch row.
//  3. A stored host wins; otherwise the first queue member not already holding
//     an earlier tier is designated and persisted with a fresh confirm token.
//  4. Tiers beyond At Bat go quiet once their host has confirmed a location.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
// • Max line length 100 columns.
package cadence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/yanizio/lunchrota/internal/lunch"
	"github.com/yanizio/lunchrota/internal/mailer"
	"github.com/yanizio/lunchrota/internal/member"
	"github.com/yanizio/lunchrota/internal/settings"
)

// tiers in sending order.
var tiers = []Tier{TierAtBat, TierOnDeck, TierInTheHole}

//
// Thursday: host reminders
//

func (e *Engine) runHostReminders(ctx context.Context, m mailer.Mailer, dryRun bool) (Result, error) {
	res := Result{Job: JobHostReminder}

	queue, err := e.ledger.Queue(ctx)
	if err != nil {
		return res, err
	}
	if len(queue) == 0 {
		res.Skipped = true
		res.Reason = "no regular members"
		return res, nil
	}

	anchor := NextTuesday(e.clock.Now())
	taken := make(map[int64]bool)

	for _, tier := range tiers {
		date := anchor.AddDate(0, 0, 7*tier.Offset())
		l, err := lunch.GetOrCreate(ctx, e.db, date)
		if err != nil {
			return res, fmt.Errorf("cadence: lunch for %s: %w", date.Format("2006-01-02"), err)
		}

		host, err := e.resolveTierHost(ctx, l, queue, taken)
		if err != nil {
			return res, err
		}
		if host == nil {
			// Queue exhausted for this tier; nothing to remind.
			continue
		}
		taken[host.ID] = true

		// A confirmed future week needs no further nagging; At Bat is always
		// reminded so the host has the details in front of them.
		if tier != TierAtBat && l.HostConfirmed && l.LocationID != nil {
			continue
		}

		token := l.ConfirmationToken.String
		if l.HostID == nil || *l.HostID != host.ID || !l.ConfirmationToken.Valid {
			token = e.tokens.New()
			if err := lunch.AssignHost(ctx, e.db, l.ID, host.ID, token); err != nil {
				return res, fmt.Errorf("cadence: assign host: %w", err)
			}
		}

		var loc *lunch.Location
		if l.LocationID != nil {
			if loc, err = lunch.LocationByID(ctx, e.db, *l.LocationID); err != nil {
				return res, err
			}
		}

		payload := HostReminderPayload{
			Tier:       tier,
			Host:       mailer.Recipient{Email: host.Email, Name: host.Name},
			LunchDate:  date,
			ConfirmURL: e.baseURL + "/confirm/" + token,
			Location:   loc,
		}
		if e.dispatch(ctx, m, dryRun, string(JobHostReminder), l.ID, payload.message()) {
			res.Sent++
		} else {
			res.Failed++
		}
	}
	return res, nil
}

// resolveTierHost returns the host for one tier's lunch: the stored host when
// present, otherwise the first queue member not already claimed by an earlier
// tier.  Returns nil when the queue has run dry.
func (e *Engine) resolveTierHost(ctx context.Context, l *lunch.Lunch,
	queue []member.Member, taken map[int64]bool) (*member.Member, error) {

	if l.HostID != nil {
		h, err := member.ByID(ctx, e.db, *l.HostID)
		if err == nil {
			return h, nil
		}
		if !errors.Is(err, member.ErrNotFound) {
			return nil, err
		}
		// Stored host has since been removed; fall through and redesignate.
	}
	for i := range queue {
		if !taken[queue[i].ID] {
			return &queue[i], nil
		}
	}
	return nil, nil
}

//
// Friday: secretary status report
//

func (e *Engine) runSecretaryStatus(ctx context.Context, m mailer.Mailer, dryRun bool) (Result, error) {
	res := Result{Job: JobSecretaryStatus}

	secID, ok, err := e.store.GetInt64(ctx, settings.KeySecretaryMemberID)
	if err != nil {
		return res, err
	}
	if !ok {
		res.Skipped = true
		res.Reason = "no secretary configured"
		return res, nil
	}
	sec, err := member.ByID(ctx, e.db, secID)
	if err != nil {
		return res, fmt.Errorf("cadence: secretary: %w", err)
	}

	queue, err := e.ledger.Queue(ctx)
	if err != nil {
		return res, err
	}

	anchor := NextTuesday(e.clock.Now())
	l, err := lunch.GetOrCreate(ctx, e.db, anchor)
	if err != nil {
		return res, err
	}

	expected, err := lunch.AverageAttendance(ctx, e.db, 4, defaultExpected)
	if err != nil {
		return res, err
	}

	payload := SecretaryStatusPayload{
		Secretary: mailer.Recipient{Email: sec.Email, Name: sec.Name},
		LunchDate: anchor,
		Expected:  expected,
	}

	if l.HostID != nil {
		if h, herr := member.ByID(ctx, e.db, *l.HostID); herr == nil {
			payload.HostName = h.Name
			payload.HostEmail = h.Email
		}
	} else if len(queue) > 0 {
		payload.HostName = queue[0].Name
		payload.HostEmail = queue[0].Email
	}
	if len(queue) > 1 {
		payload.BackupName = queue[1].Name
		payload.BackupEmail = queue[1].Email
	}

	if l.HostConfirmed && l.LocationID != nil {
		loc, lerr := lunch.LocationByID(ctx, e.db, *l.LocationID)
		if lerr != nil {
			return res, lerr
		}
		payload.Confirmed = true
		payload.Location = loc
	}

	if payload.Tiers, err = e.tierStatuses(ctx, anchor); err != nil {
		return res, err
	}

	if e.dispatch(ctx, m, dryRun, string(JobSecretaryStatus), l.ID, payload.message()) {
		res.Sent++
	} else {
		res.Failed++
	}
	return res, nil
}

// tierStatuses summarises the three upcoming weeks for the secretary report.
// Weeks without a lunch row yet read as unassigned rather than being created.
func (e *Engine) tierStatuses(ctx context.Context, anchor time.Time) ([]TierStatus, error) {
	out := make([]TierStatus, 0, len(tiers))
	for _, tier := range tiers {
		date := anchor.AddDate(0, 0, 7*tier.Offset())
		ts := TierStatus{Tier: tier, Date: date}

		l, err := lunch.ByDate(ctx, e.db, date)
		if err != nil {
			if errors.Is(err, lunch.ErrNotFound) {
				out = append(out, ts)
				continue
			}
			return nil, err
		}
		ts.HostConfirmed = l.HostConfirmed
		if l.HostID != nil {
			if h, herr := member.ByID(ctx, e.db, *l.HostID); herr == nil {
				ts.HostName = h.Name
			}
		}
		if l.LocationID != nil {
			if loc, lerr := lunch.LocationByID(ctx, e.db, *l.LocationID); lerr == nil {
				ts.LocationName = loc.Name
			}
		}
		out = append(out, ts)
	}
	return out, nil
}

//
// Monday: group announcement
//

func (e *Engine) runAnnouncement(ctx context.Context, m mailer.Mailer, dryRun bool) (Result, error) {
	res := Result{Job: JobAnnouncement}

	anchor := NextTuesday(e.clock.Now())
	l, err := lunch.ByDate(ctx, e.db, anchor)
	if err != nil {
		if errors.Is(err, lunch.ErrNotFound) {
			res.Skipped = true
			res.Reason = "no lunch planned"
			return res, nil
		}
		return res, err
	}
	if l.LocationID == nil || l.HostID == nil {
		res.Skipped = true
		res.Reason = "location or host not yet settled"
		return res, nil
	}

	loc, err := lunch.LocationByID(ctx, e.db, *l.LocationID)
	if err != nil {
		return res, err
	}
	host, err := member.ByID(ctx, e.db, *l.HostID)
	if err != nil {
		return res, err
	}

	regulars, err := member.Regulars(ctx, e.db)
	if err != nil {
		return res, err
	}
	if len(regulars) == 0 {
		res.Skipped = true
		res.Reason = "no regular members"
		return res, nil
	}
	to := make([]mailer.Recipient, 0, len(regulars))
	for _, r := range regulars {
		to = append(to, mailer.Recipient{Email: r.Email, Name: r.Name})
	}

	expected, err := lunch.AverageAttendance(ctx, e.db, 4, defaultExpected)
	if err != nil {
		return res, err
	}

	payload := AnnouncementPayload{
		LunchDate: anchor,
		Location:  *loc,
		HostName:  host.Name,
		Expected:  expected,
		To:        to,
	}
	if e.dispatch(ctx, m, dryRun, string(JobAnnouncement), l.ID, payload.message()) {
		res.Sent = len(to)
	} else {
		res.Failed = len(to)
	}
	return res, nil
}

//
// Tuesday evening: rating requests
//

func (e *Engine) runRatingRequests(ctx context.Context, m mailer.Mailer, dryRun bool) (Result, error) {
	res := Result{Job: JobRatingRequest}

	day := ThisTuesday(e.clock.Now())
	l, err := lunch.ByDate(ctx, e.db, day)
	if err != nil {
		if errors.Is(err, lunch.ErrNotFound) {
			res.Skipped = true
			res.Reason = "no lunch this week"
			return res, nil
		}
		return res, err
	}

	// The secretary may not have saved attendance by 6pm; stay quiet and let
	// a later manual trigger cover it.
	rows, err := lunch.AttendanceFor(ctx, e.db, l.ID)
	if err != nil {
		return res, err
	}
	if len(rows) == 0 {
		res.Skipped = true
		res.Reason = "attendance not yet recorded"
		return res, nil
	}
	if l.LocationID == nil {
		res.Skipped = true
		res.Reason = "no location recorded"
		return res, nil
	}
	loc, err := lunch.LocationByID(ctx, e.db, *l.LocationID)
	if err != nil {
		return res, err
	}

	hostName := ""
	for _, row := range rows {
		if row.WasHost {
			if h, herr := member.ByID(ctx, e.db, row.MemberID); herr == nil {
				hostName = h.Name
			}
			break
		}
	}

	visitText := "First visit!"
	if loc.VisitCount > 1 {
		visitText = fmt.Sprintf("Visit #%d", loc.VisitCount)
	}

	for _, row := range rows {
		att, err := member.ByID(ctx, e.db, row.MemberID)
		if err != nil {
			if errors.Is(err, member.ErrNotFound) {
				continue
			}
			return res, err
		}
		if att.Email == "" {
			continue
		}

		r, err := lunch.EnsureRating(ctx, e.db, l.ID, att.ID, e.tokens.New())
		if err != nil {
			return res, err
		}

		payload := RatingRequestPayload{
			Member:        mailer.Recipient{Email: att.Email, Name: att.Name},
			LunchDate:     day,
			LocationName:  loc.Name,
			HostName:      hostName,
			RatingURL:     fmt.Sprintf("%s/rate/%d/%s", e.baseURL, l.ID, r.RatingToken.String),
			AttendeeCount: len(rows),
			VisitText:     visitText,
		}
		if e.dispatch(ctx, m, dryRun, string(JobRatingRequest), l.ID, payload.message()) {
			res.Sent++
		} else {
			res.Failed++
		}
	}
	return res, nil
}

//
// null helpers
//

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(n int64) sql.NullInt64 {
	return sql.NullInt64{Int64: n, Valid: n != 0}
}
