package service

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/enroll-wizard-api/internal/models"
)

// ValidationEngine evaluates enrollment records against the per-step rule
// tables. It is pure and safe for concurrent use once constructed.
type ValidationEngine struct {
	validator *validator.Validate
	ruleSets  map[models.Step]ruleSet
}

// NewValidationEngine registers the enrollment tags on validate. A nil
// validator gets a fresh instance.
func NewValidationEngine(validate *validator.Validate) *ValidationEngine {
	if validate == nil {
		validate = validator.New()
	}
	if err := registerEnrollmentTags(validate); err != nil {
		panic(err)
	}
	sets := make(map[models.Step]ruleSet, len(enrollmentRuleSets))
	for _, rs := range enrollmentRuleSets {
		sets[rs.step] = rs
	}
	return &ValidationEngine{validator: validate, ruleSets: sets}
}

// ValidateStep checks candidate against the rule set of step only. Fields the
// step does not own are ignored. Review validates the whole record.
func (e *ValidationEngine) ValidateStep(step models.Step, candidate models.EnrollmentRecord) models.ErrorSet {
	if step == models.StepReview {
		return e.ValidateFull(candidate)
	}
	errs := models.ErrorSet{}
	rs, ok := e.ruleSets[step]
	if !ok {
		return errs
	}
	e.apply(rs, candidate, errs)
	return errs
}

// ValidateFull applies every rule set to record and returns the union of
// their findings.
func (e *ValidationEngine) ValidateFull(record models.EnrollmentRecord) models.ErrorSet {
	errs := models.ErrorSet{}
	for _, rs := range enrollmentRuleSets {
		e.apply(rs, record, errs)
	}
	return errs
}

// StepFields lists the fields validated for step, including fields shared
// with earlier steps.
func (e *ValidationEngine) StepFields(step models.Step) []string {
	rs, ok := e.ruleSets[step]
	if !ok {
		return nil
	}
	return rs.fields()
}

// Normalize returns a copy of rec with trim-flagged text fields trimmed and
// duplicate subjects collapsed, the form in which advanced values are stored.
func (e *ValidationEngine) Normalize(rec models.EnrollmentRecord) models.EnrollmentRecord {
	out := rec.Clone()
	for _, rs := range enrollmentRuleSets {
		for _, rule := range rs.rules {
			if !rule.trim {
				continue
			}
			if p := textField(&out, rule.field); p != nil && *p != nil {
				v := strings.TrimSpace(**p)
				*p = &v
			}
		}
	}
	if out.Subjects != nil {
		out.Subjects = out.UniqueSubjects()
	}
	return out
}

func (e *ValidationEngine) apply(rs ruleSet, rec models.EnrollmentRecord, errs models.ErrorSet) {
	local := models.ErrorSet{}
	for _, rule := range rs.rules {
		if msg, failed := e.checkField(rule, rec); failed {
			local.Add(rule.field, msg)
		}
	}
	if local.Empty() {
		for _, ref := range rs.refinements {
			ref.apply(rec, local)
		}
	}
	errs.Merge(local)
}

func (e *ValidationEngine) checkField(rule fieldRule, rec models.EnrollmentRecord) (string, bool) {
	value, set := fieldValue(rec, rule.field)
	if !set {
		if rule.required {
			return rule.requiredMsg, true
		}
		return "", false
	}
	if rule.trim {
		if s, ok := value.(string); ok {
			value = strings.TrimSpace(s)
		}
	}
	for _, check := range rule.checks {
		if err := e.validator.Var(value, check.tag); err != nil {
			return check.message, true
		}
	}
	return "", false
}

// fieldValue dereferences field from rec. The second result is false when the
// field was never provided.
func fieldValue(rec models.EnrollmentRecord, field string) (any, bool) {
	switch field {
	case models.FieldFullName:
		return deref(rec.FullName)
	case models.FieldEmail:
		return deref(rec.Email)
	case models.FieldMobile:
		return deref(rec.Mobile)
	case models.FieldClassLevel:
		return deref(rec.ClassLevel)
	case models.FieldBoard:
		return deref(rec.Board)
	case models.FieldPreferredLanguage:
		return deref(rec.PreferredLanguage)
	case models.FieldSubjects:
		if rec.Subjects == nil {
			return nil, false
		}
		return rec.UniqueSubjects(), true
	case models.FieldExamGoal:
		return deref(rec.ExamGoal)
	case models.FieldWeeklyStudyHours:
		return deref(rec.WeeklyStudyHours)
	case models.FieldScholarship:
		return deref(rec.Scholarship)
	case models.FieldLastExamPercentage:
		return deref(rec.LastExamPercentage)
	case models.FieldAchievements:
		return deref(rec.Achievements)
	case models.FieldPinCode:
		return deref(rec.PinCode)
	case models.FieldState:
		return deref(rec.State)
	case models.FieldCity:
		return deref(rec.City)
	case models.FieldAddressLine:
		return deref(rec.AddressLine)
	case models.FieldGuardianName:
		return deref(rec.GuardianName)
	case models.FieldGuardianMobile:
		return deref(rec.GuardianMobile)
	case models.FieldPaymentPlan:
		return deref(rec.PaymentPlan)
	case models.FieldPaymentMode:
		return deref(rec.PaymentMode)
	}
	return nil, false
}

// textField returns the address of a free-text field of rec, or nil.
func textField(rec *models.EnrollmentRecord, field string) **string {
	switch field {
	case models.FieldFullName:
		return &rec.FullName
	case models.FieldAchievements:
		return &rec.Achievements
	case models.FieldState:
		return &rec.State
	case models.FieldCity:
		return &rec.City
	case models.FieldAddressLine:
		return &rec.AddressLine
	case models.FieldGuardianName:
		return &rec.GuardianName
	}
	return nil
}

func deref[T any](v *T) (any, bool) {
	if v == nil {
		return nil, false
	}
	return *v, true
}
