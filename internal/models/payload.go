package models

// EnrollmentPayload is the fully validated enrollment handed to the submission
// collaborator.
type EnrollmentPayload struct {
	FullName          string     `json:"fullName"`
	Email             string     `json:"email"`
	Mobile            string     `json:"mobile"`
	ClassLevel        ClassLevel `json:"classLevel"`
	Board             Board      `json:"board"`
	PreferredLanguage Language   `json:"preferredLanguage"`

	Subjects           []string `json:"subjects"`
	ExamGoal           ExamGoal `json:"examGoal"`
	WeeklyStudyHours   int      `json:"weeklyStudyHours"`
	Scholarship        bool     `json:"scholarship"`
	LastExamPercentage *float64 `json:"lastExamPercentage,omitempty"`
	Achievements       string   `json:"achievements,omitempty"`

	PinCode        string      `json:"pinCode"`
	State          string      `json:"state"`
	City           string      `json:"city"`
	AddressLine    string      `json:"addressLine"`
	GuardianName   string      `json:"guardianName"`
	GuardianMobile string      `json:"guardianMobile"`
	PaymentPlan    PaymentPlan `json:"paymentPlan"`
	PaymentMode    PaymentMode `json:"paymentMode"`
}

// Redirect tells the caller which step to send the user back to and why.
type Redirect struct {
	Step   Step     `json:"step"`
	Fields []string `json:"fields,omitempty"`
	Errors ErrorSet `json:"errors,omitempty"`
}
