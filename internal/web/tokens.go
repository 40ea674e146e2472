// internal/web/tokens.go
//
// No-login token endpoints: host confirmation and lunch rating.
//
// Context
// -------
// The Thursday reminder carries /confirm/<token>; the Tuesday-evening
// request carries /rate/<lunchID>/<token>.  The token is the whole
// credential, so lookups are exact-match and failures are uniform 404s
// that leak nothing about which half was wrong.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package web

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/lunchrota/internal/lunch"
	"github.com/yanizio/lunchrota/internal/member"
)

// handleConfirmShow returns the state the confirmation form needs: the
// lunch date, the designated host, and the current location if one was
// already chosen.
func (s *Server) handleConfirmShow(w http.ResponseWriter, r *http.Request) {
	l, err := lunch.ByToken(r.Context(), s.db, chi.URLParam(r, "token"))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	hostName := ""
	if l.HostID != nil {
		if h, herr := member.ByID(r.Context(), s.db, *l.HostID); herr == nil {
			hostName = h.Name
		}
	}

	var loc *lunch.Location
	if l.LocationID != nil {
		if loc, err = lunch.LocationByID(r.Context(), s.db, *l.LocationID); err != nil {
			respondDomainError(w, err)
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"date":                  l.Date.Format(dateLayout),
		"host_name":             hostName,
		"host_confirmed":        l.HostConfirmed,
		"reservation_confirmed": l.ReservationConfirmed,
		"location":              loc,
	})
}

type confirmPayload struct {
	LocationID           int64 `json:"location_id" validate:"required"`
	ReservationConfirmed bool  `json:"reservation_confirmed"`
}

// handleConfirmSubmit records the host's location choice against their
// token.  Re-submitting overwrites the previous choice; hosts change their
// mind up until the secretary books.
func (s *Server) handleConfirmSubmit(w http.ResponseWriter, r *http.Request) {
	l, err := lunch.ByToken(r.Context(), s.db, chi.URLParam(r, "token"))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	var p confirmPayload
	if !decodeJSON(w, r, &p) {
		return
	}
	if err := s.validate.Struct(p); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := lunch.LocationByID(r.Context(), s.db, p.LocationID); err != nil {
		respondDomainError(w, err)
		return
	}

	if err := lunch.Confirm(r.Context(), s.db, l.ID, p.LocationID,
		p.ReservationConfirmed); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "confirmed"})
}

type ratePayload struct {
	Score   int    `json:"score" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=1000"`
}

func (s *Server) handleRateSubmit(w http.ResponseWriter, r *http.Request) {
	lunchID, err := strconv.ParseInt(chi.URLParam(r, "lunchID"), 10, 64)
	if err != nil || lunchID < 1 {
		respondError(w, http.StatusBadRequest, "bad lunch id")
		return
	}

	var p ratePayload
	if !decodeJSON(w, r, &p) {
		return
	}
	if err := s.validate.Struct(p); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := lunch.SubmitRating(r.Context(), s.db, lunchID,
		chi.URLParam(r, "token"), p.Score, p.Comment); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}
