package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/enroll-wizard-api/internal/models"
	appErrors "github.com/noah-isme/enroll-wizard-api/pkg/errors"
)

func newApplicationRepoMock(t *testing.T) (*ApplicationRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewApplicationRepository(sqlx.NewDb(db, "sqlmock")), mock, func() { db.Close() }
}

func TestApplicationRepositoryCreate(t *testing.T) {
	repo, mock, cleanup := newApplicationRepoMock(t)
	defer cleanup()

	app := &models.EnrollmentApplication{
		DraftID:    "draft-1",
		FullName:   "Asha Verma",
		Email:      "asha@example.com",
		ClassLevel: "10",
		Payload:    []byte(`{"fullName":"Asha Verma"}`),
	}
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO enrollment_applications")).
		WithArgs(sqlmock.AnyArg(), "draft-1", "Asha Verma", "asha@example.com", "10", app.Payload, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Create(context.Background(), app))
	assert.NotEmpty(t, app.ID)
	assert.False(t, app.SubmittedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryCreateError(t *testing.T) {
	repo, mock, cleanup := newApplicationRepoMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO enrollment_applications")).
		WillReturnError(sql.ErrConnDone)

	err := repo.Create(context.Background(), &models.EnrollmentApplication{DraftID: "draft-1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestApplicationRepositoryFindByID(t *testing.T) {
	repo, mock, cleanup := newApplicationRepoMock(t)
	defer cleanup()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "draft_id", "full_name", "email", "class_level", "payload", "submitted_at"}).
		AddRow("app-1", "draft-1", "Asha Verma", "asha@example.com", "10", []byte(`{}`), now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM enrollment_applications WHERE id = $1")).
		WithArgs("app-1").
		WillReturnRows(rows)

	app, err := repo.FindByID(context.Background(), "app-1")
	require.NoError(t, err)
	assert.Equal(t, "draft-1", app.DraftID)

	mock.ExpectQuery(regexp.QuoteMeta("FROM enrollment_applications WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	_, err = repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryListByDraft(t *testing.T) {
	repo, mock, cleanup := newApplicationRepoMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "draft_id", "full_name", "email", "class_level", "payload", "submitted_at"}).
		AddRow("app-2", "draft-1", "Asha Verma", "asha@example.com", "10", []byte(`{}`), time.Now()).
		AddRow("app-1", "draft-1", "Asha Verma", "asha@example.com", "10", []byte(`{}`), time.Now().Add(-time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE draft_id = $1 ORDER BY submitted_at DESC")).
		WithArgs("draft-1").
		WillReturnRows(rows)

	apps, err := repo.ListByDraft(context.Background(), "draft-1")
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, "app-2", apps[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryEnsureSchema(t *testing.T) {
	repo, mock, cleanup := newApplicationRepoMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS enrollment_applications")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, repo.EnsureSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
