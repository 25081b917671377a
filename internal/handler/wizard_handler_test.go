package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/enroll-wizard-api/internal/dto"
	"github.com/noah-isme/enroll-wizard-api/internal/models"
	"github.com/noah-isme/enroll-wizard-api/internal/service"
	appErrors "github.com/noah-isme/enroll-wizard-api/pkg/errors"
)

type wizardServiceMock struct {
	openedWith  string
	patched     models.EnrollmentRecord
	advanceStep models.Step
	advanceErr  error
	submitErr   error
	stateErr    error
}

func (m *wizardServiceMock) state(id string, step models.Step) *dto.WizardState {
	return &dto.WizardState{DraftID: id, Step: step, Progress: models.ProgressOf(step)}
}

func (m *wizardServiceMock) Open(ctx context.Context, draftID string) (*dto.WizardState, error) {
	m.openedWith = draftID
	if draftID == "" {
		draftID = "generated"
	}
	return m.state(draftID, models.Step1), nil
}

func (m *wizardServiceMock) State(ctx context.Context, draftID string) (*dto.WizardState, error) {
	if m.stateErr != nil {
		return nil, m.stateErr
	}
	return m.state(draftID, models.Step1), nil
}

func (m *wizardServiceMock) Patch(ctx context.Context, draftID string, patch models.EnrollmentRecord) (*dto.WizardState, error) {
	m.patched = patch
	st := m.state(draftID, models.Step1)
	st.Record = patch
	return st, nil
}

func (m *wizardServiceMock) Clear(ctx context.Context, draftID string) (*dto.WizardState, error) {
	return m.state(draftID, models.Step1), nil
}

func (m *wizardServiceMock) Enter(ctx context.Context, draftID string, step models.Step) (*dto.StepView, error) {
	return &dto.StepView{WizardState: *m.state(draftID, models.Step1), Requested: step, Redirected: step != models.Step1}, nil
}

func (m *wizardServiceMock) Validate(ctx context.Context, draftID string, step models.Step, values models.EnrollmentRecord) (*dto.ValidationResult, error) {
	return &dto.ValidationResult{Valid: true}, nil
}

func (m *wizardServiceMock) Advance(ctx context.Context, draftID string, step models.Step, values models.EnrollmentRecord) (*dto.WizardState, error) {
	m.advanceStep = step
	if m.advanceErr != nil {
		return nil, m.advanceErr
	}
	return m.state(draftID, step.Next()), nil
}

func (m *wizardServiceMock) Back(ctx context.Context, draftID string) (*dto.WizardState, error) {
	return m.state(draftID, models.Step1), nil
}

func (m *wizardServiceMock) Submit(ctx context.Context, draftID string) (*dto.SubmitResponse, error) {
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	st := m.state(draftID, models.StepSubmitted)
	st.Submission = models.SubmissionStatus{State: models.SubmissionInFlight}
	return &dto.SubmitResponse{WizardState: *st, Payload: &models.EnrollmentPayload{FullName: "Asha Verma"}}, nil
}

func (m *wizardServiceMock) Submission(ctx context.Context, draftID string) (models.SubmissionStatus, error) {
	return models.SubmissionStatus{State: models.SubmissionIdle}, nil
}

type exporterMock struct {
	format service.ExportFormat
	err    error
}

func (m *exporterMock) Generate(ctx context.Context, draftID string, format service.ExportFormat) (*service.ExportResult, error) {
	m.format = format
	if m.err != nil {
		return nil, m.err
	}
	return &service.ExportResult{Filename: "enrollment_review_" + draftID + "." + string(format), ContentType: "text/csv", Data: []byte("section,field,value\n")}, nil
}

func newGinContext(method, target string, body []byte, params gin.Params) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = params
	return c, w
}

type envelope struct {
	Data  json.RawMessage  `json:"data"`
	Error *appErrors.Error `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestWizardHandlerCreateWithoutBody(t *testing.T) {
	svc := &wizardServiceMock{}
	h := NewWizardHandler(svc, &exporterMock{})
	c, w := newGinContext(http.MethodPost, "/enrollments/drafts", nil, nil)

	h.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "", svc.openedWith)

	var state dto.WizardState
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &state))
	assert.Equal(t, "generated", state.DraftID)
	assert.Equal(t, models.Step1, state.Step)
}

func TestWizardHandlerCreateResume(t *testing.T) {
	svc := &wizardServiceMock{}
	h := NewWizardHandler(svc, &exporterMock{})
	c, w := newGinContext(http.MethodPost, "/enrollments/drafts", []byte(`{"draftId":"5b1c9f9e-2d3c-4c4b-9a53-0e7e1f0a8d11"}`), nil)

	h.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "5b1c9f9e-2d3c-4c4b-9a53-0e7e1f0a8d11", svc.openedWith)
}

func TestWizardHandlerCreateInvalidBody(t *testing.T) {
	h := NewWizardHandler(&wizardServiceMock{}, &exporterMock{})
	c, w := newGinContext(http.MethodPost, "/enrollments/drafts", []byte(`{invalid`), nil)

	h.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWizardHandlerGetNotFound(t *testing.T) {
	h := NewWizardHandler(&wizardServiceMock{stateErr: appErrors.ErrDraftNotFound}, &exporterMock{})
	c, w := newGinContext(http.MethodGet, "/enrollments/drafts/x", nil, gin.Params{{Key: "id", Value: "x"}})

	h.Get(c)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "DRAFT_NOT_FOUND", decodeEnvelope(t, w).Error.Code)
}

func TestWizardHandlerPatchBindsRecord(t *testing.T) {
	svc := &wizardServiceMock{}
	h := NewWizardHandler(svc, &exporterMock{})
	c, w := newGinContext(http.MethodPatch, "/enrollments/drafts/d1", []byte(`{"fullName":"Asha","subjects":["Physics"],"scholarship":false}`), gin.Params{{Key: "id", Value: "d1"}})

	h.Patch(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.patched.FullName)
	assert.Equal(t, "Asha", *svc.patched.FullName)
	assert.Equal(t, []string{"Physics"}, svc.patched.Subjects)
	require.NotNil(t, svc.patched.Scholarship)
	assert.False(t, *svc.patched.Scholarship)
	assert.Nil(t, svc.patched.Email)
}

func TestWizardHandlerAdvanceUnknownStep(t *testing.T) {
	svc := &wizardServiceMock{}
	h := NewWizardHandler(svc, &exporterMock{})
	c, w := newGinContext(http.MethodPut, "/enrollments/drafts/d1/steps/step-9", []byte(`{}`), gin.Params{{Key: "id", Value: "d1"}, {Key: "step", Value: "step-9"}})

	h.Advance(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, svc.advanceStep)
}

func TestWizardHandlerAdvanceInvalidFields(t *testing.T) {
	fields := map[string]string{models.FieldMobile: "Enter a valid 10-digit Indian mobile number"}
	svc := &wizardServiceMock{advanceErr: appErrors.WithFields(appErrors.ErrStepInvalid, fields)}
	h := NewWizardHandler(svc, &exporterMock{})
	c, w := newGinContext(http.MethodPut, "/enrollments/drafts/d1/steps/step-1", []byte(`{"mobile":"123"}`), gin.Params{{Key: "id", Value: "d1"}, {Key: "step", Value: "step-1"}})

	h.Advance(c)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "STEP_INVALID", env.Error.Code)
	assert.Equal(t, fields, env.Error.Fields)
	assert.Equal(t, models.Step1, svc.advanceStep)
}

func TestWizardHandlerEnterReportsRedirect(t *testing.T) {
	h := NewWizardHandler(&wizardServiceMock{}, &exporterMock{})
	c, w := newGinContext(http.MethodGet, "/enrollments/drafts/d1/steps/review", nil, gin.Params{{Key: "id", Value: "d1"}, {Key: "step", Value: "review"}})

	h.Enter(c)
	require.Equal(t, http.StatusOK, w.Code)
	var view dto.StepView
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &view))
	assert.True(t, view.Redirected)
	assert.Equal(t, models.StepReview, view.Requested)
}

func TestWizardHandlerSubmitAccepted(t *testing.T) {
	h := NewWizardHandler(&wizardServiceMock{}, &exporterMock{})
	c, w := newGinContext(http.MethodPost, "/enrollments/drafts/d1/submit", nil, gin.Params{{Key: "id", Value: "d1"}})

	h.Submit(c)
	require.Equal(t, http.StatusAccepted, w.Code)
	var resp dto.SubmitResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &resp))
	assert.Equal(t, models.StepSubmitted, resp.Step)
	assert.Equal(t, models.SubmissionInFlight, resp.Submission.State)
}

func TestWizardHandlerSubmitIncomplete(t *testing.T) {
	appErr := appErrors.WithDetails(appErrors.ErrReviewIncomplete, map[string]any{"redirect": models.Step3})
	h := NewWizardHandler(&wizardServiceMock{submitErr: appErr}, &exporterMock{})
	c, w := newGinContext(http.MethodPost, "/enrollments/drafts/d1/submit", nil, gin.Params{{Key: "id", Value: "d1"}})

	h.Submit(c)
	require.Equal(t, http.StatusConflict, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "REVIEW_INCOMPLETE", env.Error.Code)
	assert.Equal(t, "step-3", env.Error.Details["redirect"])
}

func TestWizardHandlerReviewExports(t *testing.T) {
	exporter := &exporterMock{}
	h := NewWizardHandler(&wizardServiceMock{}, exporter)

	c, w := newGinContext(http.MethodGet, "/enrollments/drafts/d1/review.csv", nil, gin.Params{{Key: "id", Value: "d1"}})
	h.ReviewCSV(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.ExportFormatCSV, exporter.format)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "enrollment_review_d1.csv")

	c, w = newGinContext(http.MethodGet, "/enrollments/drafts/d1/review.pdf", nil, gin.Params{{Key: "id", Value: "d1"}})
	h.ReviewPDF(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.ExportFormatPDF, exporter.format)

	exporter.err = appErrors.ErrDraftNotFound
	c, w = newGinContext(http.MethodGet, "/enrollments/drafts/d1/review.pdf", nil, gin.Params{{Key: "id", Value: "d1"}})
	h.ReviewPDF(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
