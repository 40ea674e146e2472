// Package metrics holds the Prometheus instruments used across the app.  All
// collectors register with the global registry, so importing this package in
// main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	AttendanceSavesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "attendance_saves_total",
			Help: "Cumulative number of successful attendance reconciliations.",
		})

	CadenceRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadence_runs_total",
			Help: "Cumulative cadence job runs, labelled by job name.",
		}, []string{"job"})

	EmailSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_sent_total",
			Help: "Emails handed to the mail provider, labelled by type.",
		}, []string{"type"})

	EmailErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_errors_total",
			Help: "Email sends the provider rejected, labelled by type.",
		}, []string{"type"})

	QueueLength = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "hosting_queue_length",
			Help: "Number of regular members in the hosting rotation.",
		})
)

func init() {
	prometheus.MustRegister(
		AttendanceSavesTotal,
		CadenceRunsTotal,
		EmailSentTotal,
		EmailErrorsTotal,
		QueueLength,
	)
}
