package dto

import "github.com/noah-isme/enroll-wizard-api/internal/models"

// CreateDraftRequest captures POST /enrollments/drafts. An empty DraftID
// starts a new draft; a known one resumes it.
type CreateDraftRequest struct {
	DraftID string `json:"draftId"`
}

// WizardState describes a wizard session.
type WizardState struct {
	DraftID    string                  `json:"draftId"`
	Step       models.Step             `json:"step"`
	Progress   models.Progress         `json:"progress"`
	Record     models.EnrollmentRecord `json:"record"`
	Restored   bool                    `json:"restored"`
	Submission models.SubmissionStatus `json:"submission"`
}

// StepView is returned when entering a step.
type StepView struct {
	WizardState
	Requested  models.Step `json:"requested"`
	Redirected bool        `json:"redirected"`
	// Fields are the inputs rendered on the step, in display order.
	Fields []string `json:"fields"`
}

// ValidationResult is returned by the validate-only endpoint.
type ValidationResult struct {
	Valid  bool            `json:"valid"`
	Errors models.ErrorSet `json:"errors,omitempty"`
	// Order lists invalid fields in display order so clients can focus the first.
	Order []string `json:"order,omitempty"`
}

// SubmitResponse is returned after a submission is accepted for processing.
type SubmitResponse struct {
	WizardState
	Payload *models.EnrollmentPayload `json:"payload"`
}

// SubjectCatalogResponse lists subjects for a class.
type SubjectCatalogResponse struct {
	ClassLevel  models.ClassLevel `json:"classLevel"`
	Subjects    []string          `json:"subjects"`
	MinSubjects int               `json:"minSubjects"`
}

// LocationResponse is the result of a PIN code lookup.
type LocationResponse struct {
	PinCode string `json:"pinCode"`
	models.Location
}
