package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/enroll-wizard-api/internal/dto"
	"github.com/noah-isme/enroll-wizard-api/internal/models"
	"github.com/noah-isme/enroll-wizard-api/internal/service"
	appErrors "github.com/noah-isme/enroll-wizard-api/pkg/errors"
	"github.com/noah-isme/enroll-wizard-api/pkg/response"
)

type wizardService interface {
	Open(ctx context.Context, draftID string) (*dto.WizardState, error)
	State(ctx context.Context, draftID string) (*dto.WizardState, error)
	Patch(ctx context.Context, draftID string, patch models.EnrollmentRecord) (*dto.WizardState, error)
	Clear(ctx context.Context, draftID string) (*dto.WizardState, error)
	Enter(ctx context.Context, draftID string, step models.Step) (*dto.StepView, error)
	Validate(ctx context.Context, draftID string, step models.Step, values models.EnrollmentRecord) (*dto.ValidationResult, error)
	Advance(ctx context.Context, draftID string, step models.Step, values models.EnrollmentRecord) (*dto.WizardState, error)
	Back(ctx context.Context, draftID string) (*dto.WizardState, error)
	Submit(ctx context.Context, draftID string) (*dto.SubmitResponse, error)
	Submission(ctx context.Context, draftID string) (models.SubmissionStatus, error)
}

type reviewExporter interface {
	Generate(ctx context.Context, draftID string, format service.ExportFormat) (*service.ExportResult, error)
}

// WizardHandler exposes the enrollment wizard endpoints.
type WizardHandler struct {
	wizard  wizardService
	exports reviewExporter
}

// NewWizardHandler constructs a wizard handler.
func NewWizardHandler(wizard wizardService, exports reviewExporter) *WizardHandler {
	return &WizardHandler{wizard: wizard, exports: exports}
}

// Create godoc
// @Summary Start or resume an enrollment draft
// @Tags Enrollment
// @Accept json
// @Produce json
// @Param payload body dto.CreateDraftRequest false "Draft to resume"
// @Success 201 {object} response.Envelope
// @Router /enrollments/drafts [post]
func (h *WizardHandler) Create(c *gin.Context) {
	var req dto.CreateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid draft payload"))
		return
	}
	state, err := h.wizard.Open(c.Request.Context(), req.DraftID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, state)
}

// Get godoc
// @Summary Get draft state
// @Tags Enrollment
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/drafts/{id} [get]
func (h *WizardHandler) Get(c *gin.Context) {
	state, err := h.wizard.State(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state, nil)
}

// Patch godoc
// @Summary Autosave draft fields
// @Description Merges the given fields into the draft without validation.
// @Tags Enrollment
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param payload body models.EnrollmentRecord true "Partial record"
// @Success 200 {object} response.Envelope
// @Router /enrollments/drafts/{id} [patch]
func (h *WizardHandler) Patch(c *gin.Context) {
	var patch models.EnrollmentRecord
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid record payload"))
		return
	}
	state, err := h.wizard.Patch(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state, nil)
}

// Clear godoc
// @Summary Clear draft
// @Tags Enrollment
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/drafts/{id} [delete]
func (h *WizardHandler) Clear(c *gin.Context) {
	state, err := h.wizard.Clear(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state, nil)
}

// Enter godoc
// @Summary Enter a wizard step
// @Description Redirects to the earliest incomplete step when the requested one is not reachable.
// @Tags Enrollment
// @Produce json
// @Param id path string true "Draft ID"
// @Param step path string true "Step" Enums(step-1, step-2, step-3, review)
// @Success 200 {object} response.Envelope
// @Router /enrollments/drafts/{id}/steps/{step} [get]
func (h *WizardHandler) Enter(c *gin.Context) {
	step, ok := stepParam(c)
	if !ok {
		return
	}
	view, err := h.wizard.Enter(c.Request.Context(), c.Param("id"), step)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, map[string]interface{}{"redirected": view.Redirected})
}

// Validate godoc
// @Summary Validate step values without saving
// @Tags Enrollment
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param step path string true "Step" Enums(step-1, step-2, step-3, review)
// @Param payload body models.EnrollmentRecord true "Step values"
// @Success 200 {object} response.Envelope
// @Router /enrollments/drafts/{id}/steps/{step}/validate [post]
func (h *WizardHandler) Validate(c *gin.Context) {
	step, ok := stepParam(c)
	if !ok {
		return
	}
	var values models.EnrollmentRecord
	if err := c.ShouldBindJSON(&values); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid record payload"))
		return
	}
	result, err := h.wizard.Validate(c.Request.Context(), c.Param("id"), step, values)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Advance godoc
// @Summary Submit a step and move forward
// @Tags Enrollment
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param step path string true "Step" Enums(step-1, step-2, step-3)
// @Param payload body models.EnrollmentRecord true "Step values"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /enrollments/drafts/{id}/steps/{step} [put]
func (h *WizardHandler) Advance(c *gin.Context) {
	step, ok := stepParam(c)
	if !ok {
		return
	}
	var values models.EnrollmentRecord
	if err := c.ShouldBindJSON(&values); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid record payload"))
		return
	}
	state, err := h.wizard.Advance(c.Request.Context(), c.Param("id"), step, values)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state, nil)
}

// Back godoc
// @Summary Go to the previous step
// @Tags Enrollment
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/drafts/{id}/back [post]
func (h *WizardHandler) Back(c *gin.Context) {
	state, err := h.wizard.Back(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state, nil)
}

// Submit godoc
// @Summary Submit the enrollment
// @Description Validates the whole record and queues the submission.
// @Tags Enrollment
// @Produce json
// @Param id path string true "Draft ID"
// @Success 202 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /enrollments/drafts/{id}/submit [post]
func (h *WizardHandler) Submit(c *gin.Context) {
	resp, err := h.wizard.Submit(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, resp)
}

// Submission godoc
// @Summary Submission status
// @Tags Enrollment
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/drafts/{id}/submission [get]
func (h *WizardHandler) Submission(c *gin.Context) {
	status, err := h.wizard.Submission(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// ReviewPDF godoc
// @Summary Download the review summary as PDF
// @Tags Enrollment
// @Produce application/pdf
// @Param id path string true "Draft ID"
// @Success 200 {file} binary
// @Router /enrollments/drafts/{id}/review.pdf [get]
func (h *WizardHandler) ReviewPDF(c *gin.Context) {
	h.export(c, service.ExportFormatPDF)
}

// ReviewCSV godoc
// @Summary Download the review summary as CSV
// @Tags Enrollment
// @Produce text/csv
// @Param id path string true "Draft ID"
// @Success 200 {file} binary
// @Router /enrollments/drafts/{id}/review.csv [get]
func (h *WizardHandler) ReviewCSV(c *gin.Context) {
	h.export(c, service.ExportFormatCSV)
}

func (h *WizardHandler) export(c *gin.Context, format service.ExportFormat) {
	result, err := h.exports.Generate(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, result.Filename, result.ContentType, result.Data)
}

func stepParam(c *gin.Context) (models.Step, bool) {
	step, ok := models.ParseStep(c.Param("step"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown step"))
		return "", false
	}
	return step, true
}
