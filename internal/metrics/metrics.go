// Package metrics registra los collectors prometheus del servicio.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AssessmentsScored = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "student_compass",
		Name:      "assessments_scored_total",
		Help:      "Assessments scored, by source (stateless, session, submit).",
	}, []string{"source"})

	AssessmentErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "student_compass",
		Name:      "assessment_errors_total",
		Help:      "Assessment scoring failures, by reason.",
	}, []string{"reason"})

	RiasecPrimary = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "student_compass",
		Name:      "riasec_primary_total",
		Help:      "Persisted profiles by first RIASEC letter.",
	}, []string{"code"})

	SessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "student_compass",
		Name:      "assessment_sessions_started_total",
		Help:      "Assessment sessions started.",
	})

	BookingsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "student_compass",
		Name:      "bookings_created_total",
		Help:      "Bookings created, by event type.",
	}, []string{"event_type"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "student_compass",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// ObserveRequest registra la latencia de una request ya respondida.
func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// ObserveProfile cuenta un perfil persistido por su letra RIASEC dominante.
func ObserveProfile(code string) {
	if code == "" {
		return
	}
	RiasecPrimary.WithLabelValues(code[:1]).Inc()
}
