// internal/web/respond.go
//
// JSON response helpers and domain-error mapping.
package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/yanizio/lunchrota/internal/lunch"
	"github.com/yanizio/lunchrota/internal/member"
	"github.com/yanizio/lunchrota/internal/reconcile"
	"github.com/yanizio/lunchrota/internal/rotation"
)

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.S().Errorw("response encode failed", "err", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// respondDomainError maps known domain errors onto HTTP statuses; anything
// unrecognised is a 500 with the detail kept in the log, not the body.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, member.ErrNotFound), errors.Is(err, lunch.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, lunch.ErrBadToken):
		respondError(w, http.StatusNotFound, "unknown token")
	case errors.Is(err, lunch.ErrAlreadyRated):
		respondError(w, http.StatusConflict, "rating already submitted")
	case errors.Is(err, reconcile.ErrInvalidHost):
		respondError(w, http.StatusUnprocessableEntity, "host must be in the attendee set")
	case errors.Is(err, rotation.ErrNotRegular):
		respondError(w, http.StatusUnprocessableEntity, "member is not regular")
	default:
		zap.S().Errorw("request failed", "err", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON decodes the body into dst, rejecting unknown fields so typos in
// client payloads surface as 400s instead of silently dropped data.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "malformed JSON: "+err.Error())
		return false
	}
	return true
}
