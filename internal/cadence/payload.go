// internal/cadence/payload.go
//
// Job identifiers, reminder tiers, and typed per-job payloads.
//
// Context
// -------
// Each weekly job produces a structured payload with named fields; the
// loosely-typed parameter map exists only at the mailer boundary, where the
// provider API demands one.  That keeps the engine's internals checkable by
// the compiler and the tests, and keeps template-variable names in exactly
// one place per job.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
// • Max line length 100 columns.
package cadence

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/yanizio/lunchrota/internal/lunch"
	"github.com/yanizio/lunchrota/internal/mailer"
)

// Job names one of the four weekly cadence jobs.
type Job string

const (
	JobHostReminder    Job = "host_reminder"
	JobSecretaryStatus Job = "secretary_status"
	JobAnnouncement    Job = "announcement"
	JobRatingRequest   Job = "rating_request"
)

// AllJobs lists the jobs in weekly firing order (Thursday through Tuesday).
func AllJobs() []Job {
	return []Job{JobHostReminder, JobSecretaryStatus, JobAnnouncement, JobRatingRequest}
}

// ParseJob maps a job name from the admin trigger endpoint.
func ParseJob(s string) (Job, error) {
	for _, j := range AllJobs() {
		if string(j) == s {
			return j, nil
		}
	}
	return "", fmt.Errorf("cadence: unknown job %q", s)
}

// Tier stages the Thursday host reminder across three upcoming lunches.
type Tier int

const (
	TierAtBat     Tier = iota // this week's lunch; always reminded
	TierOnDeck                // one week later
	TierInTheHole             // two weeks later
)

// Offset is the tier's distance from the week anchor, in weeks.
func (t Tier) Offset() int { return int(t) }

// Label is the baseball name used in email copy and logs.
func (t Tier) Label() string {
	switch t {
	case TierAtBat:
		return "At Bat"
	case TierOnDeck:
		return "On Deck"
	default:
		return "In the Hole"
	}
}

// dateHuman is the long-form date used in email copy.
func dateHuman(t time.Time) string { return t.Format("Monday, January 2, 2006") }

//
// Per-job payloads
//

// HostReminderPayload is one tier's reminder to its designated host.
type HostReminderPayload struct {
	Tier       Tier
	Host       mailer.Recipient
	LunchDate  time.Time
	ConfirmURL string
	Location   *lunch.Location // nil until the host has chosen
}

func (p HostReminderPayload) message() mailer.Message {
	params := map[string]string{
		"HOST_NAME":   p.Host.Name,
		"LUNCH_DATE":  dateHuman(p.LunchDate),
		"CONFIRM_URL": p.ConfirmURL,
		"TIER":        p.Tier.Label(),
	}
	var subject string
	switch p.Tier {
	case TierAtBat:
		subject = "You're Hosting Tuesday Lunch - " + p.LunchDate.Format("January 2")
	case TierOnDeck:
		subject = "On Deck: You Host Tuesday Lunch on " + p.LunchDate.Format("January 2")
	default:
		subject = "Heads Up: You Host Tuesday Lunch on " + p.LunchDate.Format("January 2")
	}
	if p.Location != nil {
		params["LOCATION_NAME"] = p.Location.Name
		params["LOCATION_ADDRESS"] = p.Location.Address.String
		params["LOCATION_PHONE"] = p.Location.Phone.String
	}
	return mailer.Message{
		Template: "host_confirmation",
		Subject:  subject,
		To:       []mailer.Recipient{p.Host},
		Params:   params,
	}
}

// TierStatus is one line of the secretary's Friday overview.
type TierStatus struct {
	Tier          Tier
	Date          time.Time
	HostName      string // empty when unassigned
	HostConfirmed bool
	LocationName  string // empty until chosen
}

// SecretaryStatusPayload is the Friday status report to the secretary:
// reservation details when the imminent lunch is settled, an alert with
// backup-host contacts when it is not, plus the state of all three tiers.
type SecretaryStatusPayload struct {
	Secretary   mailer.Recipient
	LunchDate   time.Time
	Confirmed   bool
	Location    *lunch.Location // set when Confirmed
	HostName    string
	HostEmail   string
	BackupName  string
	BackupEmail string
	Expected    int
	Tiers       []TierStatus
}

func (p SecretaryStatusPayload) message() mailer.Message {
	params := map[string]string{
		"LUNCH_DATE":          dateHuman(p.LunchDate),
		"HOST_NAME":           orUnknown(p.HostName),
		"EXPECTED_ATTENDANCE": strconv.Itoa(p.Expected),
	}
	var subject string
	if p.Confirmed {
		subject = "Make Reservation - " + p.Location.Name
		params["LOCATION_NAME"] = p.Location.Name
		params["LOCATION_ADDRESS"] = orNA(p.Location.Address.String)
		params["LOCATION_PHONE"] = orNA(p.Location.Phone.String)
	} else {
		subject = "ALERT: Host Has Not Confirmed Location"
		params["PRIMARY_CONTACT"] = orUnknown(p.HostName) + " (" + orUnknown(p.HostEmail) + ")"
		params["BACKUP_CONTACT"] = orNA(p.BackupName) + " (" + orNA(p.BackupEmail) + ")"
	}
	for _, ts := range p.Tiers {
		key := "TIER_" + strconv.Itoa(int(ts.Tier)+1)
		line := ts.Date.Format("Jan 2") + ": " + orUnknown(ts.HostName)
		if ts.HostConfirmed {
			line += " (confirmed"
			if ts.LocationName != "" {
				line += ", " + ts.LocationName
			}
			line += ")"
		}
		params[key] = line
	}
	return mailer.Message{
		Template: "secretary_reminder",
		Subject:  subject,
		To:       []mailer.Recipient{p.Secretary},
		Params:   params,
	}
}

// AnnouncementPayload is Monday's briefing to the whole group.
type AnnouncementPayload struct {
	LunchDate time.Time
	Location  lunch.Location
	HostName  string
	Expected  int
	To        []mailer.Recipient
}

func (p AnnouncementPayload) message() mailer.Message {
	return mailer.Message{
		Template: "announcement",
		Subject: fmt.Sprintf("Tuesday Lunch Briefing - %s at %s",
			p.LunchDate.Format("January 2"), p.Location.Name),
		To: p.To,
		Params: map[string]string{
			"LUNCH_DATE":          dateHuman(p.LunchDate),
			"LOCATION_NAME":       p.Location.Name,
			"LOCATION_ADDRESS":    orNA(p.Location.Address.String),
			"GOOGLE_MAPS_URL":     mapsURL(p.Location),
			"HOST_NAME":           orUnknown(p.HostName),
			"LOCATION_CUISINE":    orDefault(p.Location.CuisineType.String, "Various"),
			"LOCATION_PRICE":      priceDollars(p.Location),
			"LOCATION_RATING":     groupRating(p.Location),
			"LAST_VISITED":        lastVisited(p.Location),
			"EXPECTED_ATTENDANCE": strconv.Itoa(p.Expected),
		},
	}
}

// RatingRequestPayload is one attendee's Tuesday-evening rating link.
type RatingRequestPayload struct {
	Member        mailer.Recipient
	LunchDate     time.Time
	LocationName  string
	HostName      string
	RatingURL     string
	AttendeeCount int
	VisitText     string
}

func (p RatingRequestPayload) message() mailer.Message {
	return mailer.Message{
		Template: "rating_request",
		Subject:  "Rate Today's Lunch at " + p.LocationName,
		To:       []mailer.Recipient{p.Member},
		Params: map[string]string{
			"MEMBER_NAME":      p.Member.Name,
			"LOCATION_NAME":    p.LocationName,
			"LUNCH_DATE":       dateHuman(p.LunchDate),
			"HOST_NAME":        orUnknown(p.HostName),
			"RATING_URL":       p.RatingURL,
			"ATTENDANCE_COUNT": strconv.Itoa(p.AttendeeCount),
			"VISIT_TEXT":       p.VisitText,
		},
	}
}

//
// small formatting helpers
//

func orUnknown(s string) string { return orDefault(s, "Unknown") }
func orNA(s string) string      { return orDefault(s, "N/A") }

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func mapsURL(loc lunch.Location) string {
	q := loc.Name
	if loc.Address.Valid && loc.Address.String != "" {
		q = loc.Address.String
	}
	return "https://www.google.com/maps/search/?api=1&query=" + url.QueryEscape(q)
}

func priceDollars(loc lunch.Location) string {
	n := 2
	if loc.PriceLevel.Valid {
		n = int(loc.PriceLevel.Int64)
	}
	out := ""
	for i := 0; i < n; i++ {
		out += "$"
	}
	return out
}

func groupRating(loc lunch.Location) string {
	if !loc.AvgGroupRating.Valid {
		return "Not yet rated"
	}
	return strconv.FormatFloat(loc.AvgGroupRating.Float64, 'f', 1, 64)
}

func lastVisited(loc lunch.Location) string {
	if !loc.LastVisited.Valid {
		return "First visit!"
	}
	return loc.LastVisited.Time.Format("January 2, 2006")
}
