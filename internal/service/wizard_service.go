package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/enroll-wizard-api/internal/dto"
	"github.com/noah-isme/enroll-wizard-api/internal/models"
	appErrors "github.com/noah-isme/enroll-wizard-api/pkg/errors"
)

// WizardServiceConfig configures draft keys, persistence timing and how long
// sessions stay in memory.
type WizardServiceConfig struct {
	KeyPrefix     string
	SaveDebounce  time.Duration
	IdleTTL       time.Duration
	SubmittedTTL  time.Duration
	SweepInterval time.Duration
}

// Wizard is one enrollment session: a draft store and the controller gating
// its steps. Calls are serialised by mu because HTTP handlers and submission
// callbacks reach it from different goroutines.
type Wizard struct {
	ID         string
	mu         sync.Mutex
	store      *DraftStore
	controller *WizardController
	closed     bool
	lastUsed   time.Time

	// submittedAt is set once a submission succeeds and the draft is cleared.
	submittedAt time.Time
}

// WizardService keeps the wizard sessions of the process, keyed by draft id.
type WizardService struct {
	storage     DraftStorage
	engine      *ValidationEngine
	locations   LocationLookup
	submissions *SubmissionService
	metrics     *MetricsService
	logger      *zap.Logger
	cfg         WizardServiceConfig

	mu       sync.RWMutex
	sessions map[string]*Wizard
}

// NewWizardService constructs the registry and subscribes to submission
// outcomes.
func NewWizardService(storage DraftStorage, engine *ValidationEngine, locations LocationLookup, submissions *SubmissionService, metrics *MetricsService, logger *zap.Logger, cfg WizardServiceConfig) *WizardService {
	if engine == nil {
		engine = NewValidationEngine(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "enroll_draft_v1"
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 30 * time.Minute
	}
	if cfg.SubmittedTTL <= 0 {
		cfg.SubmittedTTL = 5 * time.Minute
	}
	s := &WizardService{
		storage:     storage,
		engine:      engine,
		locations:   locations,
		submissions: submissions,
		metrics:     metrics,
		logger:      logger,
		cfg:         cfg,
		sessions:    make(map[string]*Wizard),
	}
	if submissions != nil {
		submissions.OnSettled(s.handleSettled)
	}
	return s
}

// Open starts a new draft when draftID is empty, or resumes draftID.
func (s *WizardService) Open(ctx context.Context, draftID string) (*dto.WizardState, error) {
	if draftID == "" {
		draftID = uuid.NewString()
	} else if _, err := uuid.Parse(draftID); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "draftId must be a UUID")
	}
	w, err := s.acquire(ctx, draftID, true)
	if err != nil {
		return nil, err
	}
	defer w.mu.Unlock()
	return s.state(w), nil
}

// State returns the session for draftID.
func (s *WizardService) State(ctx context.Context, draftID string) (*dto.WizardState, error) {
	w, err := s.acquire(ctx, draftID, false)
	if err != nil {
		return nil, err
	}
	defer w.mu.Unlock()
	return s.state(w), nil
}

// Record returns a copy of the draft record.
func (s *WizardService) Record(ctx context.Context, draftID string) (models.EnrollmentRecord, error) {
	w, err := s.acquire(ctx, draftID, false)
	if err != nil {
		return models.EnrollmentRecord{}, err
	}
	defer w.mu.Unlock()
	return w.store.Get(), nil
}

// Patch autosaves a partial record without validation. A known PIN code
// prefills state and city unless the patch sets them.
func (s *WizardService) Patch(ctx context.Context, draftID string, patch models.EnrollmentRecord) (*dto.WizardState, error) {
	w, err := s.acquire(ctx, draftID, false)
	if err != nil {
		return nil, err
	}
	defer w.mu.Unlock()
	if w.controller.Current() == models.StepSubmitted {
		return nil, appErrors.ErrWizardSubmitted
	}
	w.store.Patch(PrefillLocation(patch, s.locations))
	return s.state(w), nil
}

// Clear drops the draft and returns the wizard to Step1.
func (s *WizardService) Clear(ctx context.Context, draftID string) (*dto.WizardState, error) {
	w, err := s.acquire(ctx, draftID, false)
	if err != nil {
		return nil, err
	}
	defer w.mu.Unlock()
	if s.submissions != nil && s.submissions.InFlight(draftID) {
		return nil, appErrors.ErrSubmissionInFlight
	}
	w.store.Clear(ctx)
	w.controller.Reset()
	w.submittedAt = time.Time{}
	if s.submissions != nil {
		s.submissions.Forget(draftID)
	}
	return s.state(w), nil
}

// Enter moves to step, applying the entry guard.
func (s *WizardService) Enter(ctx context.Context, draftID string, step models.Step) (*dto.StepView, error) {
	w, err := s.acquire(ctx, draftID, false)
	if err != nil {
		return nil, err
	}
	defer w.mu.Unlock()
	entered, err := w.controller.Enter(step)
	if err != nil {
		return nil, err
	}
	return &dto.StepView{
		WizardState: *s.state(w),
		Requested:   step,
		Redirected:  entered != step,
		Fields:      entered.Fields(),
	}, nil
}

// Validate checks values against step without storing them.
func (s *WizardService) Validate(ctx context.Context, draftID string, step models.Step, values models.EnrollmentRecord) (*dto.ValidationResult, error) {
	w, err := s.acquire(ctx, draftID, false)
	if err != nil {
		return nil, err
	}
	defer w.mu.Unlock()
	errs := w.controller.Check(step, values)
	result := &dto.ValidationResult{Valid: errs.Empty()}
	if !errs.Empty() {
		result.Errors = errs
		result.Order = errs.Fields()
	}
	return result, nil
}

// Advance validates and stores values for step, then moves forward. Invalid
// values yield ErrStepInvalid carrying the field messages.
func (s *WizardService) Advance(ctx context.Context, draftID string, step models.Step, values models.EnrollmentRecord) (*dto.WizardState, error) {
	w, err := s.acquire(ctx, draftID, false)
	if err != nil {
		return nil, err
	}
	defer w.mu.Unlock()
	errs, err := w.controller.Advance(step, values)
	if err != nil {
		return nil, err
	}
	if !errs.Empty() {
		return nil, stepInvalid(step, errs)
	}
	return s.state(w), nil
}

// Back moves the wizard one step back.
func (s *WizardService) Back(ctx context.Context, draftID string) (*dto.WizardState, error) {
	w, err := s.acquire(ctx, draftID, false)
	if err != nil {
		return nil, err
	}
	defer w.mu.Unlock()
	w.controller.Back()
	return s.state(w), nil
}

// Submit finalizes the draft and hands the payload to the submission queue.
// An incomplete record yields ErrReviewIncomplete naming the step to revisit.
func (s *WizardService) Submit(ctx context.Context, draftID string) (*dto.SubmitResponse, error) {
	w, err := s.acquire(ctx, draftID, false)
	if err != nil {
		return nil, err
	}
	defer w.mu.Unlock()
	if s.submissions == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "submissions are not configured")
	}
	if s.submissions.InFlight(draftID) {
		return nil, appErrors.ErrSubmissionInFlight
	}
	payload, redirect, err := w.controller.Finalize()
	if err != nil {
		return nil, err
	}
	if redirect != nil {
		appErr := appErrors.WithFields(appErrors.ErrReviewIncomplete, redirect.Errors)
		appErr.Details = map[string]any{"redirect": redirect.Step, "order": redirect.Fields}
		return nil, appErr
	}
	if _, err := s.submissions.Submit(ctx, draftID, payload); err != nil {
		w.controller.Reopen()
		return nil, err
	}
	return &dto.SubmitResponse{WizardState: *s.state(w), Payload: payload}, nil
}

// Submission returns the submission status of draftID.
func (s *WizardService) Submission(ctx context.Context, draftID string) (models.SubmissionStatus, error) {
	w, err := s.acquire(ctx, draftID, false)
	if err != nil {
		return models.SubmissionStatus{}, err
	}
	w.mu.Unlock()
	if s.submissions == nil {
		return models.SubmissionStatus{State: models.SubmissionIdle}, nil
	}
	return s.submissions.Status(draftID), nil
}

// Shutdown flushes every session's pending save and releases the sessions.
func (s *WizardService) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	sessions := make([]*Wizard, 0, len(s.sessions))
	for _, w := range s.sessions {
		sessions = append(sessions, w)
	}
	s.mu.RUnlock()

	var errs []error
	for _, w := range sessions {
		w.mu.Lock()
		if err := w.store.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("flush draft %s: %w", w.ID, err))
		}
		if !w.closed {
			s.release(w)
		}
		w.mu.Unlock()
	}
	return errors.Join(errs...)
}

// handleSettled keeps the wizard in step with the submission outcome: success
// clears the draft and starts the SubmittedTTL countdown, failure reopens
// Review for a retry.
func (s *WizardService) handleSettled(draftID string, status models.SubmissionStatus) {
	s.mu.RLock()
	w, ok := s.sessions[draftID]
	s.mu.RUnlock()
	if !ok {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if status.Outcome == models.SubmissionSucceeded {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		w.store.Clear(ctx)
		w.submittedAt = time.Now()
		return
	}
	w.controller.Reopen()
}

// StartEviction boots a goroutine that evicts expired sessions every
// SweepInterval until ctx is done.
func (s *WizardService) StartEviction(ctx context.Context) {
	if s.cfg.SweepInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.SweepInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				s.Evict(ctx, now)
			}
		}
	}()
}

// Evict releases sessions untouched for IdleTTL and sessions whose submission
// succeeded SubmittedTTL ago. Pending saves are flushed first; a session whose
// flush fails or whose submission is in flight is kept. Evicted drafts are
// reloaded from storage on next use. It returns the number evicted.
func (s *WizardService) Evict(ctx context.Context, now time.Time) int {
	s.mu.RLock()
	sessions := make([]*Wizard, 0, len(s.sessions))
	for _, w := range s.sessions {
		sessions = append(sessions, w)
	}
	s.mu.RUnlock()

	evicted := 0
	for _, w := range sessions {
		if s.evict(ctx, w, now) {
			evicted++
		}
	}
	if evicted > 0 {
		s.logger.Debug("wizard sessions evicted", zap.Int("count", evicted))
	}
	return evicted
}

func (s *WizardService) evict(ctx context.Context, w *Wizard, now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || !s.expired(w, now) {
		return false
	}
	if s.submissions != nil && s.submissions.InFlight(w.ID) {
		return false
	}
	if err := w.store.Flush(ctx); err != nil {
		s.logger.Warn("draft flush before eviction failed", zap.String("draft_id", w.ID), zap.Error(err))
		return false
	}
	// nothing is pending after the flush, so Close only stops the timer
	_ = w.store.Close(ctx) //nolint:errcheck
	s.release(w)
	if s.submissions != nil {
		s.submissions.Forget(w.ID)
	}
	return true
}

func (s *WizardService) expired(w *Wizard, now time.Time) bool {
	if !w.submittedAt.IsZero() {
		return now.Sub(w.submittedAt) >= s.cfg.SubmittedTTL
	}
	return now.Sub(w.lastUsed) >= s.cfg.IdleTTL
}

// release drops w from the registry; the caller holds w.mu and has closed
// its store.
func (s *WizardService) release(w *Wizard) {
	w.closed = true
	s.mu.Lock()
	if s.sessions[w.ID] == w {
		delete(s.sessions, w.ID)
	}
	s.mu.Unlock()
	s.metrics.SessionClosed()
}

// acquire returns the wizard for draftID with w.mu held. A session released
// between lookup and locking is looked up again.
func (s *WizardService) acquire(ctx context.Context, draftID string, create bool) (*Wizard, error) {
	for {
		w, err := s.session(ctx, draftID, create)
		if err != nil {
			return nil, err
		}
		w.mu.Lock()
		if !w.closed {
			w.lastUsed = time.Now()
			return w, nil
		}
		w.mu.Unlock()
	}
}

// session returns the registered wizard for draftID. Unknown ids are loaded
// from storage; when create is false, an id with no persisted draft yields
// ErrDraftNotFound.
func (s *WizardService) session(ctx context.Context, draftID string, create bool) (*Wizard, error) {
	s.mu.RLock()
	w, ok := s.sessions[draftID]
	s.mu.RUnlock()
	if ok {
		return w, nil
	}
	if draftID == "" {
		return nil, appErrors.ErrDraftNotFound
	}

	store := NewDraftStore(ctx, s.storage, DraftStoreConfig{
		Key:          s.cfg.KeyPrefix + ":" + draftID,
		SaveDebounce: s.cfg.SaveDebounce,
	}, s.metrics, s.logger)
	if !create && !store.Restored() {
		store.debouncer.Stop()
		return nil, appErrors.ErrDraftNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[draftID]; ok {
		store.debouncer.Stop()
		return existing, nil
	}
	w = &Wizard{
		ID:         draftID,
		store:      store,
		controller: NewWizardController(s.engine, store, s.metrics, s.logger),
		lastUsed:   time.Now(),
	}
	s.sessions[draftID] = w
	s.metrics.SessionOpened()
	s.logger.Debug("wizard session opened", zap.String("draft_id", draftID), zap.Bool("restored", store.Restored()))
	return w, nil
}

// state snapshots w; the caller holds w.mu.
func (s *WizardService) state(w *Wizard) *dto.WizardState {
	step := w.controller.Current()
	st := &dto.WizardState{
		DraftID:  w.ID,
		Step:     step,
		Progress: models.ProgressOf(step),
		Record:   w.store.Get(),
		Restored: w.store.Restored(),
	}
	if s.submissions != nil {
		st.Submission = s.submissions.Status(w.ID)
	} else {
		st.Submission = models.SubmissionStatus{State: models.SubmissionIdle}
	}
	return st
}

func stepInvalid(step models.Step, errs models.ErrorSet) *appErrors.Error {
	appErr := appErrors.WithFields(appErrors.ErrStepInvalid, errs)
	appErr.Details = map[string]any{"step": step, "order": errs.Fields()}
	return appErr
}
