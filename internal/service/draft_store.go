package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/enroll-wizard-api/internal/models"
	"github.com/noah-isme/enroll-wizard-api/pkg/debounce"
	appErrors "github.com/noah-isme/enroll-wizard-api/pkg/errors"
)

// DraftStorage abstracts the durable key-value store holding serialized drafts.
type DraftStorage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// DraftStoreConfig tunes persistence of a single draft.
type DraftStoreConfig struct {
	Key          string
	SaveDebounce time.Duration
	// OpTimeout bounds each storage call made from a timer callback.
	OpTimeout time.Duration
}

// DraftStore holds the in-memory enrollment record for one wizard session and
// mirrors it to storage with a debounced write. It is safe for concurrent use.
type DraftStore struct {
	storage   DraftStorage
	key       string
	opTimeout time.Duration
	debouncer *debounce.Debouncer
	metrics   *MetricsService
	logger    *zap.Logger

	mu       sync.Mutex
	record   models.EnrollmentRecord
	version  uint64
	saved    uint64
	restored bool

	// saveMu orders storage writes so an older snapshot never lands after a
	// newer one or after a delete.
	saveMu sync.Mutex
}

// NewDraftStore constructs a store and loads any persisted draft for cfg.Key.
// Missing or undecodable drafts start the session with an empty record.
func NewDraftStore(ctx context.Context, storage DraftStorage, cfg DraftStoreConfig, metrics *MetricsService, logger *zap.Logger) *DraftStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SaveDebounce <= 0 {
		cfg.SaveDebounce = 500 * time.Millisecond
	}
	if cfg.OpTimeout <= 0 {
		cfg.OpTimeout = 5 * time.Second
	}
	s := &DraftStore{
		storage:   storage,
		key:       cfg.Key,
		opTimeout: cfg.OpTimeout,
		debouncer: debounce.New(cfg.SaveDebounce),
		metrics:   metrics,
		logger:    logger.With(zap.String("draft_key", cfg.Key)),
	}
	s.load(ctx)
	return s
}

func (s *DraftStore) load(ctx context.Context) {
	if s.storage == nil {
		return
	}
	start := time.Now()
	raw, err := s.storage.Load(ctx, s.key)
	if errors.Is(err, appErrors.ErrDraftNotFound) {
		s.metrics.RecordDraftOperation("load", nil, time.Since(start))
		return
	}
	s.metrics.RecordDraftOperation("load", err, time.Since(start))
	if err != nil {
		s.logger.Warn("draft load failed", zap.Error(err))
		return
	}
	var rec models.EnrollmentRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		s.logger.Warn("draft decode failed, starting empty", zap.Error(err))
		return
	}
	s.record = rec
	s.restored = !rec.IsEmpty()
}

// Key returns the storage key of the draft.
func (s *DraftStore) Key() string {
	return s.key
}

// Restored reports whether a non-empty draft was loaded at construction.
func (s *DraftStore) Restored() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restored
}

// Get returns a copy of the current record.
func (s *DraftStore) Get() models.EnrollmentRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.Clone()
}

// Patch merges partial into the record and schedules a save. It returns the
// merged record.
func (s *DraftStore) Patch(partial models.EnrollmentRecord) models.EnrollmentRecord {
	s.mu.Lock()
	s.record = s.record.Merge(partial)
	s.version++
	merged := s.record.Clone()
	s.mu.Unlock()

	s.scheduleSave()
	return merged
}

// Replace overwrites the named fields with values. Fields absent from values
// are cleared rather than kept from an earlier patch.
func (s *DraftStore) Replace(fields []string, values models.EnrollmentRecord) models.EnrollmentRecord {
	s.mu.Lock()
	s.record = s.record.Without(fields).Merge(values.Only(fields))
	s.version++
	merged := s.record.Clone()
	s.mu.Unlock()

	s.scheduleSave()
	return merged
}

// Clear cancels any pending save, resets the record and deletes the persisted
// draft. Storage errors are logged and swallowed.
func (s *DraftStore) Clear(ctx context.Context) {
	s.debouncer.Cancel()

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	s.record = models.EnrollmentRecord{}
	s.version++
	s.saved = s.version
	s.restored = false
	s.mu.Unlock()

	if s.storage == nil {
		return
	}
	start := time.Now()
	err := s.storage.Delete(ctx, s.key)
	s.metrics.RecordDraftOperation("delete", err, time.Since(start))
	if err != nil {
		s.logger.Warn("draft delete failed", zap.Error(err))
	}
}

// Dirty reports whether the record has changes not yet persisted.
func (s *DraftStore) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version != s.saved
}

// Flush cancels the pending timer and writes unsaved changes now.
func (s *DraftStore) Flush(ctx context.Context) error {
	s.debouncer.Cancel()
	return s.save(ctx)
}

// Close flushes unsaved changes and stops the timer. Later patches stay in
// memory only.
func (s *DraftStore) Close(ctx context.Context) error {
	err := s.Flush(ctx)
	s.debouncer.Stop()
	return err
}

func (s *DraftStore) scheduleSave() {
	s.debouncer.Trigger(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.opTimeout)
		defer cancel()
		_ = s.save(ctx) //nolint:errcheck
	})
}

func (s *DraftStore) save(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if s.version == s.saved || s.storage == nil {
		s.mu.Unlock()
		return nil
	}
	snapshot := s.record.Clone()
	version := s.version
	s.mu.Unlock()

	data, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.Warn("draft encode failed", zap.Error(err))
		return err
	}

	start := time.Now()
	err = s.storage.Save(ctx, s.key, data)
	s.metrics.RecordDraftOperation("save", err, time.Since(start))
	if err != nil {
		s.logger.Warn("draft save failed", zap.Error(err))
		return err
	}

	s.mu.Lock()
	if version > s.saved {
		s.saved = version
	}
	s.mu.Unlock()
	return nil
}
