package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/enroll-wizard-api/internal/models"
	appErrors "github.com/noah-isme/enroll-wizard-api/pkg/errors"
	"github.com/noah-isme/enroll-wizard-api/pkg/jobs"
)

// Submitter hands a finalized enrollment to its destination and returns a
// reference for it.
type Submitter interface {
	Submit(ctx context.Context, draftID string, payload *models.EnrollmentPayload) (string, error)
}

type submissionDispatcher interface {
	Enqueue(job jobs.Job) error
}

type applicationStore interface {
	Create(ctx context.Context, app *models.EnrollmentApplication) error
}

// SettledFunc is notified once a submission reaches a final outcome.
type SettledFunc func(draftID string, status models.SubmissionStatus)

// submissionJob is the queue payload for one submission.
type submissionJob struct {
	DraftID string
	Payload *models.EnrollmentPayload
}

// SubmissionService tracks the tri-state submission lifecycle per draft and
// dispatches submissions to the job queue.
type SubmissionService struct {
	queue   submissionDispatcher
	metrics *MetricsService
	logger  *zap.Logger

	mu       sync.Mutex
	statuses map[string]models.SubmissionStatus
	settled  []SettledFunc
}

// NewSubmissionService constructs the service.
func NewSubmissionService(queue submissionDispatcher, metrics *MetricsService, logger *zap.Logger) *SubmissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmissionService{
		queue:    queue,
		metrics:  metrics,
		logger:   logger,
		statuses: make(map[string]models.SubmissionStatus),
	}
}

// OnSettled registers fn to run after each settlement.
func (s *SubmissionService) OnSettled(fn SettledFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settled = append(s.settled, fn)
}

// Submit marks draftID in flight and enqueues payload. A draft already in
// flight is rejected with ErrSubmissionInFlight.
func (s *SubmissionService) Submit(ctx context.Context, draftID string, payload *models.EnrollmentPayload) (models.SubmissionStatus, error) {
	if err := ctx.Err(); err != nil {
		return models.SubmissionStatus{}, err
	}
	now := time.Now().UTC()

	s.mu.Lock()
	current := s.statuses[draftID]
	if current.State == models.SubmissionInFlight {
		s.mu.Unlock()
		return current, appErrors.ErrSubmissionInFlight
	}
	status := models.SubmissionStatus{State: models.SubmissionInFlight, StartedAt: &now}
	s.statuses[draftID] = status
	s.mu.Unlock()

	job := jobs.Job{
		ID:      uuid.NewString(),
		Key:     draftID,
		Type:    "enrollment_submission",
		Payload: submissionJob{DraftID: draftID, Payload: payload},
	}
	if err := s.queue.Enqueue(job); err != nil {
		if errors.Is(err, jobs.ErrDuplicateKey) {
			// the previous job has settled but not yet left the queue
			s.mu.Lock()
			if current.State == "" {
				delete(s.statuses, draftID)
			} else {
				s.statuses[draftID] = current
			}
			s.mu.Unlock()
			return s.Status(draftID), appErrors.ErrSubmissionInFlight
		}
		s.logger.Warn("submission enqueue failed", zap.String("draft_id", draftID), zap.Error(err))
		s.settle(draftID, 0, "", err, false)
		return s.Status(draftID), appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue submission")
	}
	return status, nil
}

// InFlight reports whether draftID has a submission awaiting its outcome.
func (s *SubmissionService) InFlight(draftID string) bool {
	return s.Status(draftID).State == models.SubmissionInFlight
}

// Status returns the submission status of draftID; unknown drafts are idle.
func (s *SubmissionService) Status(draftID string) models.SubmissionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	status, ok := s.statuses[draftID]
	if !ok {
		return models.SubmissionStatus{State: models.SubmissionIdle}
	}
	return status
}

// Forget drops the status of draftID unless a submission is in flight.
func (s *SubmissionService) Forget(draftID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.statuses[draftID].State == models.SubmissionInFlight {
		return
	}
	delete(s.statuses, draftID)
}

func (s *SubmissionService) recordAttempt(draftID string, attempts int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status, ok := s.statuses[draftID]
	if !ok {
		return
	}
	status.Attempts = attempts
	s.statuses[draftID] = status
}

// settle records the outcome. Callbacks run only when notify is set; the
// enqueue path skips them because its caller already holds the session.
func (s *SubmissionService) settle(draftID string, attempts int, reference string, err error, notify bool) {
	now := time.Now().UTC()

	s.mu.Lock()
	status := s.statuses[draftID]
	status.State = models.SubmissionSettled
	status.Attempts = attempts
	status.SettledAt = &now
	if err != nil {
		status.Outcome = models.SubmissionFailed
		status.Error = err.Error()
		status.Reference = ""
	} else {
		status.Outcome = models.SubmissionSucceeded
		status.Error = ""
		status.Reference = reference
	}
	s.statuses[draftID] = status
	callbacks := append([]SettledFunc(nil), s.settled...)
	s.mu.Unlock()

	var elapsed time.Duration
	if status.StartedAt != nil {
		elapsed = now.Sub(*status.StartedAt)
	}
	s.metrics.RecordSubmission(status.Outcome, elapsed)
	if !notify {
		return
	}
	for _, fn := range callbacks {
		fn(draftID, status)
	}
}

// SubmissionWorker bridges queue jobs to a Submitter.
type SubmissionWorker struct {
	submitter  Submitter
	tracker    *SubmissionService
	logger     *zap.Logger
	maxRetries int
}

// NewSubmissionWorker constructs a worker. maxRetries must match the queue's
// so the final attempt is recognised.
func NewSubmissionWorker(submitter Submitter, tracker *SubmissionService, maxRetries int, logger *zap.Logger) *SubmissionWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &SubmissionWorker{
		submitter:  submitter,
		tracker:    tracker,
		logger:     logger,
		maxRetries: maxRetries,
	}
}

// Handle processes a queue job.
func (w *SubmissionWorker) Handle(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(submissionJob)
	if !ok {
		return fmt.Errorf("unexpected submission payload %T", job.Payload)
	}
	attempts := job.Attempt + 1
	w.tracker.recordAttempt(payload.DraftID, attempts)

	reference, err := w.submitter.Submit(ctx, payload.DraftID, payload.Payload)
	if err != nil {
		if job.Attempt >= w.maxRetries {
			w.logger.Sugar().Warnw("submission failed", "draft_id", payload.DraftID, "attempts", attempts, "error", err)
			w.tracker.settle(payload.DraftID, attempts, "", err, true)
		}
		return err
	}
	w.logger.Sugar().Infow("submission settled", "draft_id", payload.DraftID, "reference", reference)
	w.tracker.settle(payload.DraftID, attempts, reference, nil, true)
	return nil
}

// Abandon settles a job whose retry the queue gave up on, so the draft does
// not stay in flight. Wire it as the queue's OnDrop.
func (w *SubmissionWorker) Abandon(job jobs.Job, err error) {
	payload, ok := job.Payload.(submissionJob)
	if !ok {
		return
	}
	w.logger.Sugar().Warnw("submission abandoned", "draft_id", payload.DraftID, "attempts", job.Attempt, "error", err)
	w.tracker.settle(payload.DraftID, job.Attempt, "", err, true)
}

// ErrSimulatedFailure is returned by a SimulatedSubmitter configured to fail.
var ErrSimulatedFailure = errors.New("simulated submission failure")

// SimulatedSubmitter waits a fixed delay and then succeeds, or fails when
// Fail is set. It stands in for a real enrollment backend.
type SimulatedSubmitter struct {
	Delay  time.Duration
	Fail   bool
	logger *zap.Logger
}

// NewSimulatedSubmitter constructs a simulated submitter.
func NewSimulatedSubmitter(delay time.Duration, fail bool, logger *zap.Logger) *SimulatedSubmitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SimulatedSubmitter{Delay: delay, Fail: fail, logger: logger}
}

// Submit implements Submitter.
func (s *SimulatedSubmitter) Submit(ctx context.Context, draftID string, payload *models.EnrollmentPayload) (string, error) {
	if s.Delay > 0 {
		timer := time.NewTimer(s.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}
	if s.Fail {
		return "", ErrSimulatedFailure
	}
	reference := uuid.NewString()
	s.logger.Info("enrollment payload accepted", zap.String("draft_id", draftID), zap.String("reference", reference), zap.Any("payload", payload))
	return reference, nil
}

// ApplicationSubmitter stores submissions as enrollment applications.
type ApplicationSubmitter struct {
	store applicationStore
}

// NewApplicationSubmitter constructs a submitter writing to store.
func NewApplicationSubmitter(store applicationStore) *ApplicationSubmitter {
	return &ApplicationSubmitter{store: store}
}

// Submit implements Submitter; the application id is the reference.
func (s *ApplicationSubmitter) Submit(ctx context.Context, draftID string, payload *models.EnrollmentPayload) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode enrollment payload: %w", err)
	}
	app := &models.EnrollmentApplication{
		DraftID:    draftID,
		FullName:   payload.FullName,
		Email:      payload.Email,
		ClassLevel: string(payload.ClassLevel),
		Payload:    raw,
	}
	if err := s.store.Create(ctx, app); err != nil {
		return "", err
	}
	return app.ID, nil
}
