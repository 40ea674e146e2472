// internal/web/server.go
//
// HTTP surface: route table and middleware stack.
//
// Context
// -------
// One chi router serves three audiences:
//
//   - the secretary's JSON API under /api (queue, attendance, hosting order,
//     guests, settings, and the admin job trigger),
//   - the no-login token links under /confirm and /rate, which arrive from
//     emails and carry their own rate limiter,
//   - operational endpoints (/healthz; /metrics is mounted by cmd/web so the
//     Prometheus handler stays out of the public stack).
//
// Authentication is out of scope for the service itself; the deployment
// fronts /api with its reverse proxy.  The token endpoints are deliberately
// reachable without any session.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
// • Max line length 100 columns.
package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/lunchrota/internal/cadence"
	"github.com/yanizio/lunchrota/internal/middleware"
	"github.com/yanizio/lunchrota/internal/reconcile"
	"github.com/yanizio/lunchrota/internal/requestinfo"
	"github.com/yanizio/lunchrota/internal/rotation"
	"github.com/yanizio/lunchrota/internal/settings"
)

// Server carries the handler dependencies.
type Server struct {
	db       *sqlx.DB
	ledger   *rotation.Ledger
	rec      *reconcile.Reconciler
	engine   *cadence.Engine
	store    *settings.Store
	clock    cadence.Clock
	validate *validator.Validate
}

// New wires a Server.
func New(db *sqlx.DB, ledger *rotation.Ledger, rec *reconcile.Reconciler,
	engine *cadence.Engine, store *settings.Store, clock cadence.Clock) *Server {

	return &Server{
		db:       db,
		ledger:   ledger,
		rec:      rec,
		engine:   engine,
		store:    store,
		clock:    clock,
		validate: validator.New(),
	}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(requestinfo.Enrich)
	r.Use(middleware.Security)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/lineup", s.handleLineup)
		r.Get("/queue", s.handleQueue)

		r.Get("/attendance", s.handleAttendanceChecklist)
		r.Post("/attendance", s.handleAttendanceSave)
		r.Post("/guests", s.handleGuestAdd)

		r.Post("/hosting-order", s.handleReorder)
		r.Post("/hosting-order/auto-organize", s.handleAutoOrganize)
		r.Post("/hosting-order/swap", s.handleSwap)

		r.Post("/members/{id}/counter", s.handleSetCounter)
		r.Post("/members/{id}/position", s.handleSetPosition)
		r.Post("/settings/secretary", s.handleSetSecretary)
		r.Post("/jobs/{name}", s.handleRunJob)
	})

	// Token links arrive from emails; brute-force protection only.
	tokenLimiter := middleware.NewRateLimiter(30, 10)
	r.Group(func(r chi.Router) {
		r.Use(tokenLimiter.Wrap)
		r.Get("/confirm/{token}", s.handleConfirmShow)
		r.Post("/confirm/{token}", s.handleConfirmSubmit)
		r.Post("/rate/{lunchID}/{token}", s.handleRateSubmit)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
