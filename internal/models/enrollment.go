package models

import "strings"

// ClassLevel is the student's school class.
type ClassLevel string

// Supported class levels.
const (
	ClassLevel9  ClassLevel = "9"
	ClassLevel10 ClassLevel = "10"
	ClassLevel11 ClassLevel = "11"
	ClassLevel12 ClassLevel = "12"
)

// ClassLevels lists class levels in ascending order.
func ClassLevels() []ClassLevel {
	return []ClassLevel{ClassLevel9, ClassLevel10, ClassLevel11, ClassLevel12}
}

// IsValid reports whether c is a supported class level.
func (c ClassLevel) IsValid() bool {
	switch c {
	case ClassLevel9, ClassLevel10, ClassLevel11, ClassLevel12:
		return true
	}
	return false
}

// Board is the examination board.
type Board string

// Supported boards.
const (
	BoardCBSE  Board = "CBSE"
	BoardICSE  Board = "ICSE"
	BoardState Board = "State Board"
)

// IsValid reports whether b is a supported board.
func (b Board) IsValid() bool {
	return b == BoardCBSE || b == BoardICSE || b == BoardState
}

// Language is the preferred language of instruction.
type Language string

// Supported languages.
const (
	LanguageEnglish  Language = "English"
	LanguageHindi    Language = "Hindi"
	LanguageHinglish Language = "Hinglish"
)

// IsValid reports whether l is a supported language.
func (l Language) IsValid() bool {
	return l == LanguageEnglish || l == LanguageHindi || l == LanguageHinglish
}

// ExamGoal describes what the student is preparing for.
type ExamGoal string

// Supported exam goals.
const (
	ExamGoalBoardExcellence ExamGoal = "Board Excellence"
	ExamGoalConceptMastery  ExamGoal = "Concept Mastery"
	ExamGoalCompetitivePrep ExamGoal = "Competitive Prep"
)

// IsValid reports whether g is a supported exam goal.
func (g ExamGoal) IsValid() bool {
	return g == ExamGoalBoardExcellence || g == ExamGoalConceptMastery || g == ExamGoalCompetitivePrep
}

// PaymentPlan is the fee instalment schedule.
type PaymentPlan string

// Supported payment plans.
const (
	PaymentPlanQuarterly  PaymentPlan = "Quarterly"
	PaymentPlanHalfYearly PaymentPlan = "Half-Yearly"
	PaymentPlanAnnual     PaymentPlan = "Annual"
)

// IsValid reports whether p is a supported plan.
func (p PaymentPlan) IsValid() bool {
	return p == PaymentPlanQuarterly || p == PaymentPlanHalfYearly || p == PaymentPlanAnnual
}

// PaymentMode is the payment channel.
type PaymentMode string

// Supported payment modes.
const (
	PaymentModeUPI        PaymentMode = "UPI"
	PaymentModeCard       PaymentMode = "Card"
	PaymentModeNetBanking PaymentMode = "NetBanking"
)

// IsValid reports whether m is a supported mode.
func (m PaymentMode) IsValid() bool {
	return m == PaymentModeUPI || m == PaymentModeCard || m == PaymentModeNetBanking
}

// Record field names, matching the JSON keys of EnrollmentRecord.
const (
	FieldFullName           = "fullName"
	FieldEmail              = "email"
	FieldMobile             = "mobile"
	FieldClassLevel         = "classLevel"
	FieldBoard              = "board"
	FieldPreferredLanguage  = "preferredLanguage"
	FieldSubjects           = "subjects"
	FieldExamGoal           = "examGoal"
	FieldWeeklyStudyHours   = "weeklyStudyHours"
	FieldScholarship        = "scholarship"
	FieldLastExamPercentage = "lastExamPercentage"
	FieldAchievements       = "achievements"
	FieldPinCode            = "pinCode"
	FieldState              = "state"
	FieldCity               = "city"
	FieldAddressLine        = "addressLine"
	FieldGuardianName       = "guardianName"
	FieldGuardianMobile     = "guardianMobile"
	FieldPaymentPlan        = "paymentPlan"
	FieldPaymentMode        = "paymentMode"
)

// EnrollmentRecord is the incrementally filled enrollment. Every field is
// optional; nil means the field has not been provided yet.
type EnrollmentRecord struct {
	FullName          *string     `json:"fullName,omitempty"`
	Email             *string     `json:"email,omitempty"`
	Mobile            *string     `json:"mobile,omitempty"`
	ClassLevel        *ClassLevel `json:"classLevel,omitempty"`
	Board             *Board      `json:"board,omitempty"`
	PreferredLanguage *Language   `json:"preferredLanguage,omitempty"`

	Subjects           []string  `json:"subjects,omitempty"`
	ExamGoal           *ExamGoal `json:"examGoal,omitempty"`
	WeeklyStudyHours   *int      `json:"weeklyStudyHours,omitempty"`
	Scholarship        *bool     `json:"scholarship,omitempty"`
	LastExamPercentage *float64  `json:"lastExamPercentage,omitempty"`
	Achievements       *string   `json:"achievements,omitempty"`

	PinCode        *string      `json:"pinCode,omitempty"`
	State          *string      `json:"state,omitempty"`
	City           *string      `json:"city,omitempty"`
	AddressLine    *string      `json:"addressLine,omitempty"`
	GuardianName   *string      `json:"guardianName,omitempty"`
	GuardianMobile *string      `json:"guardianMobile,omitempty"`
	PaymentPlan    *PaymentPlan `json:"paymentPlan,omitempty"`
	PaymentMode    *PaymentMode `json:"paymentMode,omitempty"`
}

type fieldAccessor struct {
	present func(r *EnrollmentRecord) bool
	assign  func(dst, src *EnrollmentRecord)
}

func stringPresent(v *string) bool {
	return v != nil && strings.TrimSpace(*v) != ""
}

// fieldAccessors is ordered like the wizard renders fields; FieldOrder relies on it.
var fieldAccessors = []struct {
	name string
	fieldAccessor
}{
	{FieldFullName, fieldAccessor{
		func(r *EnrollmentRecord) bool { return stringPresent(r.FullName) },
		func(d, s *EnrollmentRecord) { d.FullName = cloneValue(s.FullName) }}},
	{FieldEmail, fieldAccessor{
		func(r *EnrollmentRecord) bool { return stringPresent(r.Email) },
		func(d, s *EnrollmentRecord) { d.Email = cloneValue(s.Email) }}},
	{FieldMobile, fieldAccessor{
		func(r *EnrollmentRecord) bool { return stringPresent(r.Mobile) },
		func(d, s *EnrollmentRecord) { d.Mobile = cloneValue(s.Mobile) }}},
	{FieldClassLevel, fieldAccessor{
		func(r *EnrollmentRecord) bool { return r.ClassLevel != nil && *r.ClassLevel != "" },
		func(d, s *EnrollmentRecord) { d.ClassLevel = cloneValue(s.ClassLevel) }}},
	{FieldBoard, fieldAccessor{
		func(r *EnrollmentRecord) bool { return r.Board != nil && *r.Board != "" },
		func(d, s *EnrollmentRecord) { d.Board = cloneValue(s.Board) }}},
	{FieldPreferredLanguage, fieldAccessor{
		func(r *EnrollmentRecord) bool { return r.PreferredLanguage != nil && *r.PreferredLanguage != "" },
		func(d, s *EnrollmentRecord) { d.PreferredLanguage = cloneValue(s.PreferredLanguage) }}},
	{FieldSubjects, fieldAccessor{
		func(r *EnrollmentRecord) bool { return len(r.Subjects) > 0 },
		func(d, s *EnrollmentRecord) { d.Subjects = cloneSubjects(s.Subjects) }}},
	{FieldExamGoal, fieldAccessor{
		func(r *EnrollmentRecord) bool { return r.ExamGoal != nil && *r.ExamGoal != "" },
		func(d, s *EnrollmentRecord) { d.ExamGoal = cloneValue(s.ExamGoal) }}},
	{FieldWeeklyStudyHours, fieldAccessor{
		func(r *EnrollmentRecord) bool { return r.WeeklyStudyHours != nil },
		func(d, s *EnrollmentRecord) { d.WeeklyStudyHours = cloneValue(s.WeeklyStudyHours) }}},
	{FieldScholarship, fieldAccessor{
		func(r *EnrollmentRecord) bool { return r.Scholarship != nil },
		func(d, s *EnrollmentRecord) { d.Scholarship = cloneValue(s.Scholarship) }}},
	{FieldLastExamPercentage, fieldAccessor{
		func(r *EnrollmentRecord) bool { return r.LastExamPercentage != nil },
		func(d, s *EnrollmentRecord) { d.LastExamPercentage = cloneValue(s.LastExamPercentage) }}},
	{FieldAchievements, fieldAccessor{
		func(r *EnrollmentRecord) bool { return stringPresent(r.Achievements) },
		func(d, s *EnrollmentRecord) { d.Achievements = cloneValue(s.Achievements) }}},
	{FieldPinCode, fieldAccessor{
		func(r *EnrollmentRecord) bool { return stringPresent(r.PinCode) },
		func(d, s *EnrollmentRecord) { d.PinCode = cloneValue(s.PinCode) }}},
	{FieldState, fieldAccessor{
		func(r *EnrollmentRecord) bool { return stringPresent(r.State) },
		func(d, s *EnrollmentRecord) { d.State = cloneValue(s.State) }}},
	{FieldCity, fieldAccessor{
		func(r *EnrollmentRecord) bool { return stringPresent(r.City) },
		func(d, s *EnrollmentRecord) { d.City = cloneValue(s.City) }}},
	{FieldAddressLine, fieldAccessor{
		func(r *EnrollmentRecord) bool { return stringPresent(r.AddressLine) },
		func(d, s *EnrollmentRecord) { d.AddressLine = cloneValue(s.AddressLine) }}},
	{FieldGuardianName, fieldAccessor{
		func(r *EnrollmentRecord) bool { return stringPresent(r.GuardianName) },
		func(d, s *EnrollmentRecord) { d.GuardianName = cloneValue(s.GuardianName) }}},
	{FieldGuardianMobile, fieldAccessor{
		func(r *EnrollmentRecord) bool { return stringPresent(r.GuardianMobile) },
		func(d, s *EnrollmentRecord) { d.GuardianMobile = cloneValue(s.GuardianMobile) }}},
	{FieldPaymentPlan, fieldAccessor{
		func(r *EnrollmentRecord) bool { return r.PaymentPlan != nil && *r.PaymentPlan != "" },
		func(d, s *EnrollmentRecord) { d.PaymentPlan = cloneValue(s.PaymentPlan) }}},
	{FieldPaymentMode, fieldAccessor{
		func(r *EnrollmentRecord) bool { return r.PaymentMode != nil && *r.PaymentMode != "" },
		func(d, s *EnrollmentRecord) { d.PaymentMode = cloneValue(s.PaymentMode) }}},
}

var accessorIndex = func() map[string]int {
	idx := make(map[string]int, len(fieldAccessors))
	for i, f := range fieldAccessors {
		idx[f.name] = i
	}
	return idx
}()

// FieldOrder returns the display position of field, or -1 when unknown.
func FieldOrder(field string) int {
	if i, ok := accessorIndex[field]; ok {
		return i
	}
	return -1
}

// Has reports whether field is present and non-empty. Whitespace-only strings
// and empty subject lists count as absent.
func (r EnrollmentRecord) Has(field string) bool {
	i, ok := accessorIndex[field]
	if !ok {
		return false
	}
	return fieldAccessors[i].present(&r)
}

// IsEmpty reports whether no field has been set.
func (r EnrollmentRecord) IsEmpty() bool {
	return len(r.SetFields()) == 0
}

// Clone returns a deep copy.
func (r EnrollmentRecord) Clone() EnrollmentRecord {
	var out EnrollmentRecord
	for _, f := range fieldAccessors {
		f.assign(&out, &r)
	}
	return out
}

// Merge shallow-merges patch into a copy of r. Fields set in patch overwrite;
// nil fields in patch leave r untouched. A non-nil empty subject list clears
// the selection.
func (r EnrollmentRecord) Merge(patch EnrollmentRecord) EnrollmentRecord {
	out := r.Clone()
	for _, f := range fieldAccessors {
		if isSet(&patch, f.name) {
			f.assign(&out, &patch)
		}
	}
	return out
}

// Only returns a copy of r restricted to fields.
func (r EnrollmentRecord) Only(fields []string) EnrollmentRecord {
	var out EnrollmentRecord
	for _, name := range fields {
		if i, ok := accessorIndex[name]; ok {
			fieldAccessors[i].assign(&out, &r)
		}
	}
	return out
}

// Without returns a copy of r with fields cleared.
func (r EnrollmentRecord) Without(fields []string) EnrollmentRecord {
	out := r.Clone()
	var empty EnrollmentRecord
	for _, name := range fields {
		if i, ok := accessorIndex[name]; ok {
			fieldAccessors[i].assign(&out, &empty)
		}
	}
	return out
}

// SetFields lists fields carrying a non-nil value, in display order.
func (r EnrollmentRecord) SetFields() []string {
	var out []string
	for _, f := range fieldAccessors {
		if isSet(&r, f.name) {
			out = append(out, f.name)
		}
	}
	return out
}

// isSet differs from Has: a pointer to an empty string is set but not present.
func isSet(r *EnrollmentRecord, field string) bool {
	switch field {
	case FieldFullName:
		return r.FullName != nil
	case FieldEmail:
		return r.Email != nil
	case FieldMobile:
		return r.Mobile != nil
	case FieldClassLevel:
		return r.ClassLevel != nil
	case FieldBoard:
		return r.Board != nil
	case FieldPreferredLanguage:
		return r.PreferredLanguage != nil
	case FieldSubjects:
		return r.Subjects != nil
	case FieldExamGoal:
		return r.ExamGoal != nil
	case FieldWeeklyStudyHours:
		return r.WeeklyStudyHours != nil
	case FieldScholarship:
		return r.Scholarship != nil
	case FieldLastExamPercentage:
		return r.LastExamPercentage != nil
	case FieldAchievements:
		return r.Achievements != nil
	case FieldPinCode:
		return r.PinCode != nil
	case FieldState:
		return r.State != nil
	case FieldCity:
		return r.City != nil
	case FieldAddressLine:
		return r.AddressLine != nil
	case FieldGuardianName:
		return r.GuardianName != nil
	case FieldGuardianMobile:
		return r.GuardianMobile != nil
	case FieldPaymentPlan:
		return r.PaymentPlan != nil
	case FieldPaymentMode:
		return r.PaymentMode != nil
	}
	return false
}

// UniqueSubjects returns subjects with duplicates and blanks removed, keeping
// first-seen order.
func (r EnrollmentRecord) UniqueSubjects() []string {
	if r.Subjects == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(r.Subjects))
	out := make([]string, 0, len(r.Subjects))
	for _, s := range r.Subjects {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Ptr returns a pointer to v. Handy for building records in code and tests.
func Ptr[T any](v T) *T {
	return &v
}

func cloneValue[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneSubjects(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
