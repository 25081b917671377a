package service

import (
	"strings"

	"github.com/noah-isme/enroll-wizard-api/internal/models"
)

// ReviewAssembler turns a merged record into the submission payload, or tells
// the caller which step to revisit.
type ReviewAssembler struct {
	engine *ValidationEngine
}

// NewReviewAssembler constructs an assembler on top of engine.
func NewReviewAssembler(engine *ValidationEngine) *ReviewAssembler {
	if engine == nil {
		engine = NewValidationEngine(nil)
	}
	return &ReviewAssembler{engine: engine}
}

// Finalize validates record as a whole. On failure the redirect points at the
// earliest step owning an invalid field; on success the typed payload is
// returned.
func (a *ReviewAssembler) Finalize(record models.EnrollmentRecord) (*models.EnrollmentPayload, *models.Redirect) {
	errs := a.engine.ValidateFull(record)
	if !errs.Empty() {
		fields := errs.Fields()
		step, _ := models.FirstOwner(fields)
		return nil, &models.Redirect{Step: step, Fields: fields, Errors: errs}
	}
	return buildPayload(record), nil
}

// buildPayload assumes record passed ValidateFull, so required pointers are set.
func buildPayload(r models.EnrollmentRecord) *models.EnrollmentPayload {
	p := &models.EnrollmentPayload{
		FullName:          strings.TrimSpace(*r.FullName),
		Email:             *r.Email,
		Mobile:            *r.Mobile,
		ClassLevel:        *r.ClassLevel,
		Board:             *r.Board,
		PreferredLanguage: *r.PreferredLanguage,

		Subjects:         r.UniqueSubjects(),
		ExamGoal:         *r.ExamGoal,
		WeeklyStudyHours: *r.WeeklyStudyHours,
		Scholarship:      *r.Scholarship,

		PinCode:        *r.PinCode,
		State:          strings.TrimSpace(*r.State),
		City:           strings.TrimSpace(*r.City),
		AddressLine:    strings.TrimSpace(*r.AddressLine),
		GuardianName:   strings.TrimSpace(*r.GuardianName),
		GuardianMobile: *r.GuardianMobile,
		PaymentPlan:    *r.PaymentPlan,
		PaymentMode:    *r.PaymentMode,
	}
	if p.Scholarship {
		if r.LastExamPercentage != nil {
			v := *r.LastExamPercentage
			p.LastExamPercentage = &v
		}
		if r.Achievements != nil {
			p.Achievements = strings.TrimSpace(*r.Achievements)
		}
	}
	return p
}
