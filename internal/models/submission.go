package models

import "time"

// SubmissionState is the tri-state lifecycle of the final submission.
type SubmissionState string

// Possible submission states.
const (
	SubmissionIdle     SubmissionState = "idle"
	SubmissionInFlight SubmissionState = "in_flight"
	SubmissionSettled  SubmissionState = "settled"
)

// SubmissionOutcome is set once a submission settles.
type SubmissionOutcome string

// Possible outcomes.
const (
	SubmissionSucceeded SubmissionOutcome = "succeeded"
	SubmissionFailed    SubmissionOutcome = "failed"
)

// SubmissionStatus is the observable state of a draft's submission.
type SubmissionStatus struct {
	State     SubmissionState   `json:"state"`
	Outcome   SubmissionOutcome `json:"outcome,omitempty"`
	Reference string            `json:"reference,omitempty"`
	Error     string            `json:"error,omitempty"`
	Attempts  int               `json:"attempts"`
	StartedAt *time.Time        `json:"startedAt,omitempty"`
	SettledAt *time.Time        `json:"settledAt,omitempty"`
}

// Retryable reports whether the user may submit again.
func (s SubmissionStatus) Retryable() bool {
	return s.State == SubmissionIdle || (s.State == SubmissionSettled && s.Outcome == SubmissionFailed)
}

// EnrollmentApplication is a submitted enrollment as stored by the sink.
type EnrollmentApplication struct {
	ID          string    `db:"id" json:"id"`
	DraftID     string    `db:"draft_id" json:"draftId"`
	FullName    string    `db:"full_name" json:"fullName"`
	Email       string    `db:"email" json:"email"`
	ClassLevel  string    `db:"class_level" json:"classLevel"`
	Payload     []byte    `db:"payload" json:"-"`
	SubmittedAt time.Time `db:"submitted_at" json:"submittedAt"`
}
