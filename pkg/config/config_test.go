package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, DraftBackendRedis, cfg.Drafts.Backend)
	assert.Equal(t, "enroll_draft_v1", cfg.Drafts.KeyPrefix)
	assert.Equal(t, 500*time.Millisecond, cfg.Drafts.SaveDebounce)
	assert.Equal(t, 30*time.Minute, cfg.Drafts.IdleTTL)
	assert.Equal(t, 5*time.Minute, cfg.Drafts.SubmittedTTL)
	assert.Equal(t, SubmissionModeSimulated, cfg.Submission.Mode)
	assert.Equal(t, time.Second, cfg.Submission.Delay)
	assert.Equal(t, 1, cfg.Submission.MaxRetries)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("DRAFT_BACKEND", "FILE")
	v.Set("DRAFT_SAVE_DEBOUNCE", "2s")
	v.Set("DRAFT_IDLE_TTL", "10m")
	v.Set("SUBMISSION_DELAY", "not-a-duration")
	v.Set("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg := fromViper(v)
	assert.Equal(t, DraftBackendFile, cfg.Drafts.Backend)
	assert.Equal(t, 2*time.Second, cfg.Drafts.SaveDebounce)
	assert.Equal(t, 10*time.Minute, cfg.Drafts.IdleTTL)
	assert.Equal(t, time.Second, cfg.Submission.Delay)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}
