package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/enroll-wizard-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry          *prometheus.Registry
	handler           http.Handler
	requestDuration   *prometheus.HistogramVec
	requestTotal      *prometheus.CounterVec
	draftSaveLatency  prometheus.Observer
	draftSaves        *prometheus.CounterVec
	stepTransitions   *prometheus.CounterVec
	validationErrors  *prometheus.CounterVec
	submissions       *prometheus.CounterVec
	submissionLatency prometheus.Observer
	activeSessions    prometheus.Gauge

	requestCount         uint64
	requestDurationTotal uint64
	sessionCount         int64
	saveCount            uint64
	saveFailureCount     uint64
	advancedCount        uint64
	blockedCount         uint64
	redirectCount        uint64
	submitOKCount        uint64
	submitFailCount      uint64
}

// Step transition outcomes.
const (
	TransitionAdvanced   = "advanced"
	TransitionBlocked    = "blocked"
	TransitionRedirected = "redirected"
	TransitionBack       = "back"
)

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	draftSaveLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "enroll_draft_save_seconds",
		Help:    "Latency of draft persistence writes",
		Buckets: prometheus.DefBuckets,
	})

	draftSaves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "enroll_draft_saves_total",
		Help: "Draft persistence operations by result",
	}, []string{"op", "result"})

	stepTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "enroll_step_transitions_total",
		Help: "Wizard step transitions by step and outcome",
	}, []string{"step", "outcome"})

	validationErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "enroll_validation_errors_total",
		Help: "Validation failures by field",
	}, []string{"field"})

	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "enroll_submissions_total",
		Help: "Settled submissions by outcome",
	}, []string{"outcome"})

	submissionLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "enroll_submission_seconds",
		Help:    "Time from submit to settlement",
		Buckets: prometheus.DefBuckets,
	})

	activeSessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "enroll_active_sessions",
		Help: "Wizard sessions held in memory",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, draftSaveLatency, draftSaves, stepTransitions, validationErrors, submissions, submissionLatency, activeSessions, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:          registry,
		handler:           handler,
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		draftSaveLatency:  draftSaveLatency,
		draftSaves:        draftSaves,
		stepTransitions:   stepTransitions,
		validationErrors:  validationErrors,
		submissions:       submissions,
		submissionLatency: submissionLatency,
		activeSessions:    activeSessions,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordDraftOperation tracks a persistence call. op is load, save or delete.
func (m *MetricsService) RecordDraftOperation(op string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.draftSaves.WithLabelValues(op, result).Inc()
	if op != "save" {
		return
	}
	m.draftSaveLatency.Observe(duration.Seconds())
	atomic.AddUint64(&m.saveCount, 1)
	if err != nil {
		atomic.AddUint64(&m.saveFailureCount, 1)
	}
}

// RecordTransition counts a step transition attempt.
func (m *MetricsService) RecordTransition(step models.Step, outcome string) {
	if m == nil {
		return
	}
	m.stepTransitions.WithLabelValues(string(step), outcome).Inc()
	switch outcome {
	case TransitionAdvanced:
		atomic.AddUint64(&m.advancedCount, 1)
	case TransitionBlocked:
		atomic.AddUint64(&m.blockedCount, 1)
	case TransitionRedirected:
		atomic.AddUint64(&m.redirectCount, 1)
	}
}

// RecordValidationErrors counts each failing field of errs.
func (m *MetricsService) RecordValidationErrors(errs models.ErrorSet) {
	if m == nil {
		return
	}
	for field := range errs {
		m.validationErrors.WithLabelValues(field).Inc()
	}
}

// RecordSubmission tracks a settled submission.
func (m *MetricsService) RecordSubmission(outcome models.SubmissionOutcome, duration time.Duration) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(string(outcome)).Inc()
	m.submissionLatency.Observe(duration.Seconds())
	if outcome == models.SubmissionSucceeded {
		atomic.AddUint64(&m.submitOKCount, 1)
	} else {
		atomic.AddUint64(&m.submitFailCount, 1)
	}
}

// SessionOpened increments the active session gauge.
func (m *MetricsService) SessionOpened() {
	if m == nil {
		return
	}
	m.activeSessions.Inc()
	atomic.AddInt64(&m.sessionCount, 1)
}

// SessionClosed decrements the active session gauge.
func (m *MetricsService) SessionClosed() {
	if m == nil {
		return
	}
	m.activeSessions.Dec()
	atomic.AddInt64(&m.sessionCount, -1)
}

// Snapshot returns aggregated metrics suitable for the JSON summary endpoint.
func (m *MetricsService) Snapshot() models.MetricsSnapshot {
	if m == nil {
		return models.MetricsSnapshot{}
	}
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return models.MetricsSnapshot{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		ActiveSessions:           atomic.LoadInt64(&m.sessionCount),
		DraftSaves:               atomic.LoadUint64(&m.saveCount),
		DraftSaveFailures:        atomic.LoadUint64(&m.saveFailureCount),
		StepsAdvanced:            atomic.LoadUint64(&m.advancedCount),
		StepsBlocked:             atomic.LoadUint64(&m.blockedCount),
		Redirects:                atomic.LoadUint64(&m.redirectCount),
		SubmissionsSucceeded:     atomic.LoadUint64(&m.submitOKCount),
		SubmissionsFailed:        atomic.LoadUint64(&m.submitFailCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
