package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/enroll-wizard-api/pkg/errors"
)

func TestDraftRepositoryWithoutClient(t *testing.T) {
	repo := NewDraftRepository(nil, nil)
	ctx := context.Background()

	_, err := repo.Load(ctx, "enroll_draft_v1:abc")
	assert.True(t, errors.Is(err, appErrors.ErrDraftNotFound))
	assert.NoError(t, repo.Save(ctx, "enroll_draft_v1:abc", []byte(`{}`)))
	assert.NoError(t, repo.Delete(ctx, "enroll_draft_v1:abc"))
	keys, err := repo.Keys(ctx, "enroll_draft_v1:*")
	assert.NoError(t, err)
	assert.Empty(t, keys)
	assert.NoError(t, repo.Close())
}

func TestMemoryDraftRepository(t *testing.T) {
	repo := NewMemoryDraftRepository()
	ctx := context.Background()

	_, err := repo.Load(ctx, "k")
	require.ErrorIs(t, err, appErrors.ErrDraftNotFound)

	payload := []byte(`{"fullName":"Asha"}`)
	require.NoError(t, repo.Save(ctx, "k", payload))
	payload[0] = 'x'

	got, err := repo.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"fullName":"Asha"}`, string(got))
	assert.Equal(t, 1, repo.Len())

	require.NoError(t, repo.Delete(ctx, "k"))
	require.NoError(t, repo.Delete(ctx, "k"))
	assert.Equal(t, 0, repo.Len())

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, repo.Save(cancelled, "k", payload), context.Canceled)
}
