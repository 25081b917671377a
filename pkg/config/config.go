package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Draft storage backends.
const (
	DraftBackendRedis  = "redis"
	DraftBackendFile   = "file"
	DraftBackendMemory = "memory"
)

// Submission modes.
const (
	SubmissionModePostgres  = "postgres"
	SubmissionModeSimulated = "simulated"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database   DatabaseConfig
	Redis      RedisConfig
	CORS       CORSConfig
	Log        LogConfig
	Drafts     DraftConfig
	Submission SubmissionConfig
	Catalog    CatalogConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// DraftConfig controls where in-progress enrollment drafts are kept and how
// often they are flushed.
type DraftConfig struct {
	Backend      string
	Dir          string
	KeyPrefix    string
	SaveDebounce time.Duration

	// IdleTTL evicts sessions untouched for this long; SubmittedTTL evicts
	// sessions whose submission succeeded.
	IdleTTL       time.Duration
	SubmittedTTL  time.Duration
	SweepInterval time.Duration
}

// SubmissionConfig configures the final submission collaborator.
type SubmissionConfig struct {
	Mode       string
	Delay      time.Duration
	Fail       bool
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

// CatalogConfig points at an optional YAML override for subjects and PIN codes.
type CatalogConfig struct {
	File string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Drafts = DraftConfig{
		Backend:       strings.ToLower(v.GetString("DRAFT_BACKEND")),
		Dir:           v.GetString("DRAFT_DIR"),
		KeyPrefix:     v.GetString("DRAFT_KEY_PREFIX"),
		SaveDebounce:  parseDuration(v.GetString("DRAFT_SAVE_DEBOUNCE"), 500*time.Millisecond),
		IdleTTL:       parseDuration(v.GetString("DRAFT_IDLE_TTL"), 30*time.Minute),
		SubmittedTTL:  parseDuration(v.GetString("DRAFT_SUBMITTED_TTL"), 5*time.Minute),
		SweepInterval: parseDuration(v.GetString("DRAFT_SWEEP_INTERVAL"), time.Minute),
	}

	cfg.Submission = SubmissionConfig{
		Mode:       strings.ToLower(v.GetString("SUBMISSION_MODE")),
		Delay:      parseDuration(v.GetString("SUBMISSION_DELAY"), time.Second),
		Fail:       v.GetBool("SUBMISSION_FAIL"),
		Workers:    v.GetInt("SUBMISSION_WORKERS"),
		MaxRetries: v.GetInt("SUBMISSION_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("SUBMISSION_RETRY_DELAY"), 2*time.Second),
	}

	cfg.Catalog = CatalogConfig{File: v.GetString("CATALOG_FILE")}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "enrollments")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("DRAFT_BACKEND", DraftBackendRedis)
	v.SetDefault("DRAFT_DIR", "./drafts")
	v.SetDefault("DRAFT_KEY_PREFIX", "enroll_draft_v1")
	v.SetDefault("DRAFT_SAVE_DEBOUNCE", "500ms")
	v.SetDefault("DRAFT_IDLE_TTL", "30m")
	v.SetDefault("DRAFT_SUBMITTED_TTL", "5m")
	v.SetDefault("DRAFT_SWEEP_INTERVAL", "1m")

	v.SetDefault("SUBMISSION_MODE", SubmissionModeSimulated)
	v.SetDefault("SUBMISSION_DELAY", "1s")
	v.SetDefault("SUBMISSION_FAIL", false)
	v.SetDefault("SUBMISSION_WORKERS", 2)
	v.SetDefault("SUBMISSION_MAX_RETRIES", 1)
	v.SetDefault("SUBMISSION_RETRY_DELAY", "2s")

	v.SetDefault("CATALOG_FILE", "")
}

// isMissingFile reports a missing explicit .env file, which viper surfaces as a
// plain filesystem error rather than ConfigFileNotFoundError.
func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
