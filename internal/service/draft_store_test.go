package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/enroll-wizard-api/internal/models"
	appErrors "github.com/noah-isme/enroll-wizard-api/pkg/errors"
)

type draftStorageStub struct {
	mu      sync.Mutex
	items   map[string][]byte
	saves   int
	deletes int
	loadErr error
	saveErr error
}

func newDraftStorageStub() *draftStorageStub {
	return &draftStorageStub{items: map[string][]byte{}}
}

func (s *draftStorageStub) Load(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	data, ok := s.items[key]
	if !ok {
		return nil, appErrors.ErrDraftNotFound
	}
	return data, nil
}

func (s *draftStorageStub) Save(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.items[key] = append([]byte(nil), data...)
	return nil
}

func (s *draftStorageStub) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes++
	delete(s.items, key)
	return nil
}

func (s *draftStorageStub) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func (s *draftStorageStub) setSaveErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}

func (s *draftStorageStub) stored(t *testing.T, key string) models.EnrollmentRecord {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.items[key]
	require.True(t, ok, "no draft stored under %s", key)
	var rec models.EnrollmentRecord
	require.NoError(t, json.Unmarshal(raw, &rec))
	return rec
}

func newTestDraftStore(t *testing.T, storage DraftStorage, wait time.Duration) *DraftStore {
	t.Helper()
	store := NewDraftStore(context.Background(), storage, DraftStoreConfig{Key: "enroll_draft_v1:test", SaveDebounce: wait}, nil, nil)
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return store
}

func TestDraftStorePatchMergesLaterKeysWin(t *testing.T) {
	store := newTestDraftStore(t, newDraftStorageStub(), time.Hour)

	store.Patch(models.EnrollmentRecord{FullName: models.Ptr("Asha"), Email: models.Ptr("a@example.com")})
	merged := store.Patch(models.EnrollmentRecord{FullName: models.Ptr("Asha Verma")})

	assert.Equal(t, "Asha Verma", *merged.FullName)
	assert.Equal(t, "a@example.com", *merged.Email)
	assert.Equal(t, merged, store.Get())
}

func TestDraftStoreGetReturnsCopy(t *testing.T) {
	store := newTestDraftStore(t, newDraftStorageStub(), time.Hour)
	store.Patch(models.EnrollmentRecord{Subjects: []string{"English"}})

	rec := store.Get()
	rec.Subjects[0] = "Hindi"
	assert.Equal(t, []string{"English"}, store.Get().Subjects)
}

func TestDraftStoreDebouncesBursts(t *testing.T) {
	storage := newDraftStorageStub()
	store := newTestDraftStore(t, storage, 30*time.Millisecond)

	store.Patch(models.EnrollmentRecord{FullName: models.Ptr("A")})
	store.Patch(models.EnrollmentRecord{FullName: models.Ptr("As")})
	store.Patch(models.EnrollmentRecord{FullName: models.Ptr("Asha")})
	assert.Equal(t, 0, storage.saveCount())

	require.Eventually(t, func() bool { return storage.saveCount() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, storage.saveCount())
	assert.Equal(t, "Asha", *storage.stored(t, store.Key()).FullName)
	assert.False(t, store.Dirty())
}

func TestDraftStoreClearCancelsPendingSave(t *testing.T) {
	storage := newDraftStorageStub()
	store := newTestDraftStore(t, storage, 30*time.Millisecond)

	store.Patch(models.EnrollmentRecord{FullName: models.Ptr("Asha")})
	store.Clear(context.Background())

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, 0, storage.saveCount())
	assert.Equal(t, 1, storage.deletes)
	assert.True(t, store.Get().IsEmpty())
	assert.False(t, store.Dirty())
}

func TestDraftStoreClearedDraftIsNotRestored(t *testing.T) {
	storage := newDraftStorageStub()
	store := newTestDraftStore(t, storage, time.Hour)
	store.Patch(models.EnrollmentRecord{FullName: models.Ptr("Asha"), PinCode: models.Ptr("110001")})
	require.NoError(t, store.Flush(context.Background()))
	require.Equal(t, 1, storage.saveCount())

	store.Clear(context.Background())

	fresh := newTestDraftStore(t, storage, time.Hour)
	assert.False(t, fresh.Restored())
	assert.True(t, fresh.Get().IsEmpty())
}

func TestDraftStoreReplaceClearsOmittedFields(t *testing.T) {
	storage := newDraftStorageStub()
	store := newTestDraftStore(t, storage, time.Hour)
	store.Patch(models.EnrollmentRecord{
		FullName:           models.Ptr("Asha"),
		LastExamPercentage: models.Ptr(150.0),
		WeeklyStudyHours:   models.Ptr(4),
	})

	rec := store.Replace(models.Step2.Fields(), models.EnrollmentRecord{
		WeeklyStudyHours: models.Ptr(10),
		FullName:         models.Ptr("ignored"),
	})
	assert.Nil(t, rec.LastExamPercentage)
	assert.Equal(t, 10, *rec.WeeklyStudyHours)
	assert.Equal(t, "Asha", *rec.FullName, "fields outside the step are kept")
	assert.True(t, store.Dirty())
}

func TestDraftStoreRestoresPersistedDraft(t *testing.T) {
	storage := newDraftStorageStub()
	storage.items["enroll_draft_v1:test"] = []byte(`{"fullName":"Asha","subjects":["English","Hindi"]}`)

	store := newTestDraftStore(t, storage, time.Hour)
	assert.True(t, store.Restored())
	rec := store.Get()
	assert.Equal(t, "Asha", *rec.FullName)
	assert.Equal(t, []string{"English", "Hindi"}, rec.Subjects)
}

func TestDraftStoreLoadFailuresStartEmpty(t *testing.T) {
	corrupt := newDraftStorageStub()
	corrupt.items["enroll_draft_v1:test"] = []byte(`{not json`)
	store := newTestDraftStore(t, corrupt, time.Hour)
	assert.True(t, store.Get().IsEmpty())
	assert.False(t, store.Restored())

	broken := newDraftStorageStub()
	broken.loadErr = errors.New("connection refused")
	store = newTestDraftStore(t, broken, time.Hour)
	assert.True(t, store.Get().IsEmpty())
}

func TestDraftStoreSaveFailureIsRetriedOnFlush(t *testing.T) {
	storage := newDraftStorageStub()
	storage.setSaveErr(errors.New("disk full"))
	store := newTestDraftStore(t, storage, 10*time.Millisecond)

	store.Patch(models.EnrollmentRecord{City: models.Ptr("Mumbai")})
	time.Sleep(50 * time.Millisecond)
	assert.True(t, store.Dirty())
	assert.Equal(t, "Mumbai", *store.Get().City)

	storage.setSaveErr(nil)
	require.NoError(t, store.Flush(context.Background()))
	assert.False(t, store.Dirty())
	assert.Equal(t, "Mumbai", *storage.stored(t, store.Key()).City)
}

func TestDraftStoreFlushWritesImmediately(t *testing.T) {
	storage := newDraftStorageStub()
	store := newTestDraftStore(t, storage, time.Hour)

	store.Patch(models.EnrollmentRecord{PinCode: models.Ptr("560001")})
	require.NoError(t, store.Flush(context.Background()))
	assert.Equal(t, 1, storage.saveCount())

	require.NoError(t, store.Flush(context.Background()))
	assert.Equal(t, 1, storage.saveCount(), "clean store must not rewrite")
}
