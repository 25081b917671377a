package service

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/enroll-wizard-api/internal/models"
)

func TestMetricsServiceSnapshot(t *testing.T) {
	m := NewMetricsService()

	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/enrollments/drafts/:id", http.StatusOK, 20*time.Millisecond)
	m.ObserveHTTPRequest(http.MethodPut, "/api/v1/enrollments/drafts/:id/steps/:step", http.StatusUnprocessableEntity, 40*time.Millisecond)
	m.RecordDraftOperation("save", nil, time.Millisecond)
	m.RecordDraftOperation("save", errors.New("redis down"), time.Millisecond)
	m.RecordDraftOperation("load", nil, time.Millisecond)
	m.RecordTransition(models.Step1, TransitionAdvanced)
	m.RecordTransition(models.Step2, TransitionBlocked)
	m.RecordTransition(models.Step3, TransitionRedirected)
	m.RecordTransition(models.Step2, TransitionBack)
	m.RecordSubmission(models.SubmissionSucceeded, time.Second)
	m.RecordSubmission(models.SubmissionFailed, time.Second)
	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()

	snap := m.Snapshot()
	assert.Equal(t, uint64(2), snap.RequestsTotal)
	assert.InDelta(t, 30.0, snap.AverageRequestDurationMs, 0.001)
	assert.Equal(t, uint64(2), snap.DraftSaves)
	assert.Equal(t, uint64(1), snap.DraftSaveFailures)
	assert.Equal(t, uint64(1), snap.StepsAdvanced)
	assert.Equal(t, uint64(1), snap.StepsBlocked)
	assert.Equal(t, uint64(1), snap.Redirects)
	assert.Equal(t, uint64(1), snap.SubmissionsSucceeded)
	assert.Equal(t, uint64(1), snap.SubmissionsFailed)
	assert.Equal(t, int64(1), snap.ActiveSessions)
	assert.Positive(t, snap.Goroutines)
}

func TestMetricsServiceCollectors(t *testing.T) {
	m := NewMetricsService()
	m.RecordValidationErrors(models.ErrorSet{models.FieldEmail: "Enter a valid email", models.FieldMobile: "Enter a valid mobile"})
	m.RecordValidationErrors(models.ErrorSet{models.FieldEmail: "Enter a valid email"})
	m.RecordTransition(models.Step1, TransitionAdvanced)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `enroll_validation_errors_total{field="email"} 2`)
	assert.Contains(t, body, `enroll_validation_errors_total{field="mobile"} 1`)
	assert.Contains(t, body, `enroll_step_transitions_total{outcome="advanced",step="step-1"} 1`)
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	assert.NotPanics(t, func() {
		m.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
		m.RecordDraftOperation("save", nil, time.Millisecond)
		m.RecordTransition(models.Step1, TransitionAdvanced)
		m.RecordValidationErrors(models.ErrorSet{models.FieldEmail: "x"})
		m.RecordSubmission(models.SubmissionSucceeded, time.Second)
		m.SessionOpened()
		m.SessionClosed()
	})
	assert.Equal(t, models.MetricsSnapshot{}, m.Snapshot())

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
