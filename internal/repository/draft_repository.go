package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/enroll-wizard-api/pkg/errors"
)

// DraftRepository stores serialized enrollment drafts in Redis. Drafts never
// expire; they live until cleared or submitted.
type DraftRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewDraftRepository constructs a Redis-backed draft repository.
func NewDraftRepository(client *redis.Client, logger *zap.Logger) *DraftRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DraftRepository{client: client, logger: logger}
}

// Load returns the raw draft stored under key.
func (r *DraftRepository) Load(ctx context.Context, key string) ([]byte, error) {
	if r.client == nil {
		return nil, appErrors.ErrDraftNotFound
	}

	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appErrors.ErrDraftNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return raw, nil
}

// Save overwrites the draft stored under key.
func (r *DraftRepository) Save(ctx context.Context, key string, data []byte) error {
	if r.client == nil {
		return nil
	}

	if err := r.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes the draft stored under key. Missing keys are not an error.
func (r *DraftRepository) Delete(ctx context.Context, key string) error {
	if r.client == nil {
		return nil
	}

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}

// Keys lists stored draft keys matching pattern, e.g. "enroll_draft_v1:*".
func (r *DraftRepository) Keys(ctx context.Context, pattern string) ([]string, error) {
	if r.client == nil {
		return nil, nil
	}

	var keys []string
	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan pattern %s: %w", pattern, err)
	}
	return keys, nil
}

// Close releases the underlying Redis connection if present.
func (r *DraftRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
