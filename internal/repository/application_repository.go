package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/enroll-wizard-api/internal/models"
	appErrors "github.com/noah-isme/enroll-wizard-api/pkg/errors"
)

const applicationSchema = `CREATE TABLE IF NOT EXISTS enrollment_applications (
    id UUID PRIMARY KEY,
    draft_id TEXT NOT NULL,
    full_name TEXT NOT NULL,
    email TEXT NOT NULL,
    class_level TEXT NOT NULL,
    payload JSONB NOT NULL,
    submitted_at TIMESTAMPTZ NOT NULL
)`

// ApplicationRepository persists submitted enrollment applications.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository constructs the repository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// EnsureSchema creates the applications table when missing.
func (r *ApplicationRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, applicationSchema); err != nil {
		return fmt.Errorf("ensure enrollment_applications: %w", err)
	}
	return nil
}

// Create inserts a submitted application, filling ID and timestamp when empty.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.EnrollmentApplication) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	if app.SubmittedAt.IsZero() {
		app.SubmittedAt = time.Now().UTC()
	}
	const query = `INSERT INTO enrollment_applications (id, draft_id, full_name, email, class_level, payload, submitted_at)
        VALUES (:id, :draft_id, :full_name, :email, :class_level, :payload, :submitted_at)`
	if _, err := r.db.NamedExecContext(ctx, query, app); err != nil {
		return fmt.Errorf("create enrollment application: %w", err)
	}
	return nil
}

// FindByID loads an application by id.
func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*models.EnrollmentApplication, error) {
	const query = `SELECT id, draft_id, full_name, email, class_level, payload, submitted_at
        FROM enrollment_applications WHERE id = $1`
	var app models.EnrollmentApplication
	if err := r.db.GetContext(ctx, &app, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, fmt.Errorf("find enrollment application: %w", err)
	}
	return &app, nil
}

// ListByDraft returns applications submitted from a draft, newest first.
func (r *ApplicationRepository) ListByDraft(ctx context.Context, draftID string) ([]models.EnrollmentApplication, error) {
	const query = `SELECT id, draft_id, full_name, email, class_level, payload, submitted_at
        FROM enrollment_applications WHERE draft_id = $1 ORDER BY submitted_at DESC`
	var apps []models.EnrollmentApplication
	if err := r.db.SelectContext(ctx, &apps, query, draftID); err != nil {
		return nil, fmt.Errorf("list enrollment applications: %w", err)
	}
	return apps, nil
}
