package models

// Step identifies one stage of the enrollment wizard.
type Step string

// Wizard steps in navigation order. StepSubmitted is terminal and only
// reachable from StepReview.
const (
	Step1         Step = "step-1"
	Step2         Step = "step-2"
	Step3         Step = "step-3"
	StepReview    Step = "review"
	StepSubmitted Step = "submitted"
)

// StepDefinition is one row of the canonical step table. The table order is
// the single priority order used both by entry guards and by the review
// redirect: earlier rows win.
type StepDefinition struct {
	Step   Step
	Number int
	Title  string
	// Fields are the record fields the step owns.
	Fields []string
}

var stepTable = []StepDefinition{
	{
		Step:   Step1,
		Number: 1,
		Title:  "Student Details",
		Fields: []string{FieldFullName, FieldEmail, FieldMobile, FieldClassLevel, FieldBoard, FieldPreferredLanguage},
	},
	{
		Step:   Step2,
		Number: 2,
		Title:  "Academic Details",
		Fields: []string{FieldSubjects, FieldExamGoal, FieldWeeklyStudyHours, FieldScholarship, FieldLastExamPercentage, FieldAchievements},
	},
	{
		Step:   Step3,
		Number: 3,
		Title:  "Address & Guardian",
		Fields: []string{FieldPinCode, FieldState, FieldCity, FieldAddressLine, FieldGuardianName, FieldGuardianMobile, FieldPaymentPlan, FieldPaymentMode},
	},
	{
		Step:   StepReview,
		Number: 4,
		Title:  "Review & Submit",
	},
}

// defaultOwner receives fields missing from the table, e.g. keys produced by
// cross-field rules.
const defaultOwner = Step2

// TotalSteps is the number of navigable steps, review included.
func TotalSteps() int {
	return len(stepTable)
}

// ParseStep maps a path segment to a navigable step.
func ParseStep(raw string) (Step, bool) {
	s := Step(raw)
	return s, s.Index() >= 0
}

// Index returns the position of s in the table, or -1 for unknown and
// terminal steps.
func (s Step) Index() int {
	for i, def := range stepTable {
		if def.Step == s {
			return i
		}
	}
	return -1
}

// IsNavigable reports whether s is a step a user can be on (not Submitted).
func (s Step) IsNavigable() bool {
	return s.Index() >= 0
}

// Definition returns the table row for s.
func (s Step) Definition() (StepDefinition, bool) {
	i := s.Index()
	if i < 0 {
		return StepDefinition{}, false
	}
	return stepTable[i], true
}

// Fields returns the fields owned by s.
func (s Step) Fields() []string {
	def, ok := s.Definition()
	if !ok {
		return nil
	}
	out := make([]string, len(def.Fields))
	copy(out, def.Fields)
	return out
}

// Next returns the step after s. Review advances to Submitted.
func (s Step) Next() Step {
	if s == StepReview {
		return StepSubmitted
	}
	i := s.Index()
	if i < 0 || i+1 >= len(stepTable) {
		return s
	}
	return stepTable[i+1].Step
}

// Prev returns the step before s; Step1 has no predecessor.
func (s Step) Prev() Step {
	i := s.Index()
	if i <= 0 {
		return s
	}
	return stepTable[i-1].Step
}

// OwnerOf maps a field to the step owning it. The table is scanned in
// priority order so a field listed twice belongs to the earlier step.
func OwnerOf(field string) Step {
	for _, def := range stepTable {
		for _, f := range def.Fields {
			if f == field {
				return def.Step
			}
		}
	}
	return defaultOwner
}

// FirstOwner returns the highest-priority step owning any of fields.
func FirstOwner(fields []string) (Step, bool) {
	best := -1
	for _, f := range fields {
		i := OwnerOf(f).Index()
		if best < 0 || i < best {
			best = i
		}
	}
	if best < 0 {
		return "", false
	}
	return stepTable[best].Step, true
}

// Progress describes how far along the wizard a step is.
type Progress struct {
	Step    Step    `json:"step"`
	Number  int     `json:"number"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
	Title   string  `json:"title"`
}

// ProgressOf reports the progress indicator for s.
func ProgressOf(s Step) Progress {
	total := TotalSteps()
	if s == StepSubmitted {
		return Progress{Step: s, Number: total, Total: total, Percent: 100, Title: "Submitted"}
	}
	def, ok := s.Definition()
	if !ok {
		return Progress{Step: s, Total: total}
	}
	return Progress{
		Step:    s,
		Number:  def.Number,
		Total:   total,
		Percent: float64(def.Number) / float64(total) * 100,
		Title:   def.Title,
	}
}
