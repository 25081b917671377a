package service

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/enroll-wizard-api/internal/models"
)

var (
	mobilePattern     = regexp.MustCompile(`^[6-9]\d{9}$`)
	pinCodePattern    = regexp.MustCompile(`^\d{6}$`)
	alphaSpacePattern = regexp.MustCompile(`^[A-Za-z ]+$`)
)

type enumValue interface {
	IsValid() bool
}

// registerEnrollmentTags installs the custom tags used by the field rules.
func registerEnrollmentTags(v *validator.Validate) error {
	tags := map[string]validator.Func{
		"mobile":     func(fl validator.FieldLevel) bool { return mobilePattern.MatchString(fl.Field().String()) },
		"pincode":    func(fl validator.FieldLevel) bool { return pinCodePattern.MatchString(fl.Field().String()) },
		"alphaspace": func(fl validator.FieldLevel) bool { return alphaSpacePattern.MatchString(fl.Field().String()) },
		"enum": func(fl validator.FieldLevel) bool {
			e, ok := fl.Field().Interface().(enumValue)
			return ok && e.IsValid()
		},
	}
	for tag, fn := range tags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s validation: %w", tag, err)
		}
	}
	return nil
}

// fieldCheck pairs a validator tag with the message shown when it fails.
type fieldCheck struct {
	tag     string
	message string
}

// fieldRule is one declarative entry of the rule table.
type fieldRule struct {
	field       string
	required    bool
	requiredMsg string
	// trim strips surrounding whitespace before the checks run.
	trim   bool
	checks []fieldCheck
}

// refinement is a cross-field rule. It reads the whole candidate and records
// its findings in errs.
type refinement struct {
	name  string
	apply func(rec models.EnrollmentRecord, errs models.ErrorSet)
}

// ruleSet holds one step's per-field rules and the refinements evaluated once
// those rules pass.
type ruleSet struct {
	step        models.Step
	rules       []fieldRule
	refinements []refinement
}

func (rs ruleSet) fields() []string {
	out := make([]string, len(rs.rules))
	for i, r := range rs.rules {
		out[i] = r.field
	}
	return out
}

var classLevelRule = fieldRule{
	field:       models.FieldClassLevel,
	required:    true,
	requiredMsg: "Class is required",
	checks:      []fieldCheck{{"enum", "Select a valid class"}},
}

var identityRules = ruleSet{
	step: models.Step1,
	rules: []fieldRule{
		{
			field: models.FieldFullName, required: true, requiredMsg: "Full name is required", trim: true,
			checks: []fieldCheck{
				{"min=2", "Full name must be at least 2 characters"},
				{"max=60", "Full name must be at most 60 characters"},
				{"alphaspace", "Only alphabets and spaces are allowed"},
			},
		},
		{
			field: models.FieldEmail, required: true, requiredMsg: "Email is required",
			checks: []fieldCheck{{"email", "Enter a valid email"}},
		},
		{
			field: models.FieldMobile, required: true, requiredMsg: "Mobile number is required",
			checks: []fieldCheck{{"mobile", "Enter a valid 10-digit Indian mobile number"}},
		},
		classLevelRule,
		{
			field: models.FieldBoard, required: true, requiredMsg: "Board is required",
			checks: []fieldCheck{{"enum", "Select a valid board"}},
		},
		{
			field: models.FieldPreferredLanguage, required: true, requiredMsg: "Preferred language is required",
			checks: []fieldCheck{{"enum", "Select a valid language"}},
		},
	},
}

var academicRules = ruleSet{
	step: models.Step2,
	rules: []fieldRule{
		classLevelRule,
		{
			field: models.FieldSubjects, required: true, requiredMsg: "Pick at least 1 subject",
			checks: []fieldCheck{{"min=1", "Pick at least 1 subject"}},
		},
		{
			field: models.FieldExamGoal, required: true, requiredMsg: "Exam goal is required",
			checks: []fieldCheck{{"enum", "Select a valid exam goal"}},
		},
		{
			field: models.FieldWeeklyStudyHours, required: true, requiredMsg: "Weekly study hours are required",
			checks: []fieldCheck{{"min=1", "Min 1 hour"}, {"max=40", "Max 40 hours"}},
		},
		{
			field: models.FieldScholarship, required: true, requiredMsg: "Scholarship choice is required",
		},
		{
			field:  models.FieldLastExamPercentage,
			checks: []fieldCheck{{"gte=0", "Min 0"}, {"lte=100", "Max 100"}},
		},
		{
			field:  models.FieldAchievements,
			checks: []fieldCheck{{"max=300", "Max 300 characters"}},
		},
	},
	refinements: []refinement{
		{name: "subjects_by_class", apply: subjectsByClass},
		{name: "scholarship_requires_percentage", apply: scholarshipRequiresPercentage},
		{name: "class12_competitive_prep", apply: class12CompetitivePrep},
	},
}

var logisticsRules = ruleSet{
	step: models.Step3,
	rules: []fieldRule{
		{
			field: models.FieldPinCode, required: true, requiredMsg: "PIN code is required",
			checks: []fieldCheck{{"pincode", "Enter a valid 6-digit PIN code"}},
		},
		{
			field: models.FieldState, required: true, requiredMsg: "State / UT is required", trim: true,
			checks: []fieldCheck{{"min=2", "State / UT is required"}},
		},
		{
			field: models.FieldCity, required: true, requiredMsg: "City is required", trim: true,
			checks: []fieldCheck{{"min=2", "City is required"}},
		},
		{
			field: models.FieldAddressLine, required: true, requiredMsg: "Address is required", trim: true,
			checks: []fieldCheck{
				{"min=10", "Address must be at least 10 characters"},
				{"max=120", "Address must be at most 120 characters"},
			},
		},
		{
			field: models.FieldGuardianName, required: true, requiredMsg: "Guardian name is required", trim: true,
			checks: []fieldCheck{{"min=2", "Guardian name is required"}},
		},
		{
			field: models.FieldGuardianMobile, required: true, requiredMsg: "Guardian mobile number is required",
			checks: []fieldCheck{{"mobile", "Enter a valid 10-digit guardian mobile number"}},
		},
		{
			field: models.FieldPaymentPlan, required: true, requiredMsg: "Payment plan is required",
			checks: []fieldCheck{{"enum", "Select a valid payment plan"}},
		},
		{
			field: models.FieldPaymentMode, required: true, requiredMsg: "Payment mode is required",
			checks: []fieldCheck{{"enum", "Select a valid payment mode"}},
		},
	},
}

// enrollmentRuleSets lists the rule sets in step order; the full-record
// validator applies all of them.
var enrollmentRuleSets = []ruleSet{identityRules, academicRules, logisticsRules}

const (
	juniorSubjectMinimum          = 2
	seniorSubjectMinimum          = 3
	class12CompetitivePrepMinimum = 3
)

// MinimumSubjects returns how many distinct subjects a student of class must
// pick for goal: the stricter of the class minimum and the goal minimum.
func MinimumSubjects(class models.ClassLevel, goal models.ExamGoal) int {
	min := baseMinimumSubjects(class)
	if goalMin, ok := goalMinimumSubjects(class, goal); ok && goalMin > min {
		min = goalMin
	}
	return min
}

func baseMinimumSubjects(class models.ClassLevel) int {
	if class == models.ClassLevel9 || class == models.ClassLevel10 {
		return juniorSubjectMinimum
	}
	return seniorSubjectMinimum
}

func goalMinimumSubjects(class models.ClassLevel, goal models.ExamGoal) (int, bool) {
	if class == models.ClassLevel12 && goal == models.ExamGoalCompetitivePrep {
		return class12CompetitivePrepMinimum, true
	}
	return 0, false
}

func subjectsByClass(rec models.EnrollmentRecord, errs models.ErrorSet) {
	if rec.ClassLevel == nil {
		return
	}
	min := baseMinimumSubjects(*rec.ClassLevel)
	if len(rec.UniqueSubjects()) < min {
		errs.Add(models.FieldSubjects, fmt.Sprintf("Select at least %d subjects for Class %s", min, *rec.ClassLevel))
	}
}

func scholarshipRequiresPercentage(rec models.EnrollmentRecord, errs models.ErrorSet) {
	if rec.Scholarship == nil || !*rec.Scholarship {
		return
	}
	if rec.LastExamPercentage == nil {
		errs.Add(models.FieldLastExamPercentage, "Last Exam Percentage is required for scholarship")
	}
}

// class12CompetitivePrep equals the class 12 base minimum today; it stays so
// the rule survives if base minimums are lowered.
func class12CompetitivePrep(rec models.EnrollmentRecord, errs models.ErrorSet) {
	if rec.ClassLevel == nil || rec.ExamGoal == nil {
		return
	}
	min, ok := goalMinimumSubjects(*rec.ClassLevel, *rec.ExamGoal)
	if !ok {
		return
	}
	if len(rec.UniqueSubjects()) < min {
		errs.Add(models.FieldSubjects, fmt.Sprintf("Class 12 + Competitive Prep requires at least %d subjects", min))
	}
}
