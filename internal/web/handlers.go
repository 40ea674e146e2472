// internal/web/handlers.go
//
// JSON API handlers for the secretary and admin surfaces.
//
// Context
// -------
// Handlers stay thin: decode and validate the payload, call the owning
// package, and map the result.  No SQL and no rotation arithmetic lives
// here.  Payload structs carry validator tags; the field names mirror the
// JSON the front end already sends.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
// • Max line length 100 columns.
package web

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-sql-driver/mysql"

	"github.com/yanizio/lunchrota/internal/cadence"
	"github.com/yanizio/lunchrota/internal/lunch"
	"github.com/yanizio/lunchrota/internal/member"
	"github.com/yanizio/lunchrota/internal/rotation"
	"github.com/yanizio/lunchrota/internal/settings"
)

const dateLayout = "2006-01-02"

//
// Queue and lineup
//

type queueEntry struct {
	Member        member.Member `json:"member"`
	Position      int           `json:"position"`
	EstimatedDate string        `json:"estimated_date"`
}

func (s *Server) handleQueue(w http.ResponseWriter, r *http.Request) {
	queue, err := s.ledger.Queue(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	anchor := cadence.NextTuesday(s.clock.Now())
	out := make([]queueEntry, 0, len(queue))
	for i, m := range queue {
		est, _ := rotation.EstimateHostingDate(anchor, i+1)
		out = append(out, queueEntry{
			Member:        m,
			Position:      i + 1,
			EstimatedDate: est.Format(dateLayout),
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"next_tuesday": anchor.Format(dateLayout),
		"queue":        out,
	})
}

func (s *Server) handleLineup(w http.ResponseWriter, r *http.Request) {
	queue, err := s.ledger.Queue(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"next_tuesday": cadence.NextTuesday(s.clock.Now()).Format(dateLayout),
		"lineup":       rotation.BuildLineup(queue),
	})
}

//
// Attendance
//

func (s *Server) handleAttendanceChecklist(w http.ResponseWriter, r *http.Request) {
	day := cadence.ThisTuesday(s.clock.Now())
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		day = parsed
	}

	members, err := member.Attendees(r.Context(), s.db)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	present := []int64{}
	var hostID int64
	l, err := lunch.ByDate(r.Context(), s.db, day)
	switch {
	case err == nil:
		rows, aerr := lunch.AttendanceFor(r.Context(), s.db, l.ID)
		if aerr != nil {
			respondDomainError(w, aerr)
			return
		}
		for _, row := range rows {
			present = append(present, row.MemberID)
			if row.WasHost {
				hostID = row.MemberID
			}
		}
	case errors.Is(err, lunch.ErrNotFound):
		// Nothing recorded yet; the checklist starts blank.
	default:
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"date":    day.Format(dateLayout),
		"members": members,
		"present": present,
		"host_id": hostID,
	})
}

type attendanceSavePayload struct {
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
	AttendeeIDs []int64 `json:"attendee_ids" validate:"required,min=1"`
	HostID      int64   `json:"host_id" validate:"required"`
}

func (s *Server) handleAttendanceSave(w http.ResponseWriter, r *http.Request) {
	var p attendanceSavePayload
	if !decodeJSON(w, r, &p) {
		return
	}
	if err := s.validate.Struct(p); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	day, _ := time.Parse(dateLayout, p.Date)
	l, err := lunch.GetOrCreate(r.Context(), s.db, day)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if err := s.rec.Apply(r.Context(), l.ID, p.AttendeeIDs, p.HostID); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"lunch_id":  l.ID,
		"attendees": len(p.AttendeeIDs),
	})
}

type guestAddPayload struct {
	Name  string `json:"name" validate:"required,min=1,max=120"`
	Email string `json:"email" validate:"required,email"`
}

func (s *Server) handleGuestAdd(w http.ResponseWriter, r *http.Request) {
	var p guestAddPayload
	if !decodeJSON(w, r, &p) {
		return
	}
	if err := s.validate.Struct(p); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := s.clock.Now()
	id, err := member.Insert(r.Context(), s.db, &member.Member{
		Name:          p.Name,
		Email:         p.Email,
		Class:         member.ClassGuest,
		FirstAttended: &now,
	})
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			respondError(w, http.StatusConflict, "email already registered")
			return
		}
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"id": id})
}

//
// Hosting order
//

type reorderPayload struct {
	MemberIDs []int64 `json:"member_ids" validate:"required,min=1"`
}

func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	var p reorderPayload
	if !decodeJSON(w, r, &p) {
		return
	}
	if err := s.validate.Struct(p); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.ledger.Reorder(r.Context(), p.MemberIDs); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (s *Server) handleAutoOrganize(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.ClearAllManualPositions(r.Context()); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "auto-organized"})
}

type swapPayload struct {
	MemberA int64 `json:"member_a" validate:"required"`
	MemberB int64 `json:"member_b" validate:"required"`
}

func (s *Server) handleSwap(w http.ResponseWriter, r *http.Request) {
	var p swapPayload
	if !decodeJSON(w, r, &p) {
		return
	}
	if err := s.validate.Struct(p); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.ledger.Swap(r.Context(), p.MemberA, p.MemberB); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "swapped"})
}

//
// Admin
//

func memberIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

type counterPayload struct {
	Value int `json:"value" validate:"min=0"`
}

func (s *Server) handleSetCounter(w http.ResponseWriter, r *http.Request) {
	id, ok := memberIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "bad member id")
		return
	}
	var p counterPayload
	if !decodeJSON(w, r, &p) {
		return
	}
	if err := s.validate.Struct(p); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := member.ByID(r.Context(), s.db, id); err != nil {
		respondDomainError(w, err)
		return
	}
	if err := member.SetCounter(r.Context(), s.db, id, p.Value); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

type positionPayload struct {
	Position int `json:"position" validate:"required,min=1"`
}

func (s *Server) handleSetPosition(w http.ResponseWriter, r *http.Request) {
	id, ok := memberIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "bad member id")
		return
	}
	var p positionPayload
	if !decodeJSON(w, r, &p) {
		return
	}
	if err := s.validate.Struct(p); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.ledger.SetManualPosition(r.Context(), id, p.Position); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "pinned"})
}

type secretaryPayload struct {
	MemberID int64 `json:"member_id" validate:"required"`
}

func (s *Server) handleSetSecretary(w http.ResponseWriter, r *http.Request) {
	var p secretaryPayload
	if !decodeJSON(w, r, &p) {
		return
	}
	if err := s.validate.Struct(p); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := member.ByID(r.Context(), s.db, p.MemberID); err != nil {
		respondDomainError(w, err)
		return
	}
	if err := s.store.Set(r.Context(), settings.KeySecretaryMemberID,
		strconv.FormatInt(p.MemberID, 10)); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (s *Server) handleRunJob(w http.ResponseWriter, r *http.Request) {
	job, err := cadence.ParseJob(chi.URLParam(r, "name"))
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	dryRun := r.URL.Query().Get("dry_run") == "1"

	res, err := s.engine.Run(r.Context(), job, dryRun)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}
