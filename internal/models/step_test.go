package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStepNavigation(t *testing.T) {
	assert.Equal(t, Step2, Step1.Next())
	assert.Equal(t, StepReview, Step3.Next())
	assert.Equal(t, StepSubmitted, StepReview.Next())
	assert.Equal(t, Step1, Step1.Prev())
	assert.Equal(t, Step3, StepReview.Prev())
	assert.Less(t, Step1.Index(), Step3.Index())
	assert.False(t, StepSubmitted.IsNavigable())
}

func TestParseStep(t *testing.T) {
	step, ok := ParseStep("step-2")
	assert.True(t, ok)
	assert.Equal(t, Step2, step)

	_, ok = ParseStep("submitted")
	assert.False(t, ok)
	_, ok = ParseStep("step-9")
	assert.False(t, ok)
}

func TestOwnerOf(t *testing.T) {
	assert.Equal(t, Step1, OwnerOf(FieldClassLevel))
	assert.Equal(t, Step2, OwnerOf(FieldLastExamPercentage))
	assert.Equal(t, Step3, OwnerOf(FieldGuardianMobile))
	assert.Equal(t, Step2, OwnerOf("somethingElse"))
}

func TestFirstOwnerUsesTablePriority(t *testing.T) {
	step, ok := FirstOwner([]string{FieldGuardianMobile, FieldSubjects})
	assert.True(t, ok)
	assert.Equal(t, Step2, step)

	step, ok = FirstOwner([]string{FieldPaymentMode, FieldEmail, FieldSubjects})
	assert.True(t, ok)
	assert.Equal(t, Step1, step)

	_, ok = FirstOwner(nil)
	assert.False(t, ok)
}

func TestProgressOf(t *testing.T) {
	p := ProgressOf(Step2)
	assert.Equal(t, 2, p.Number)
	assert.Equal(t, 4, p.Total)
	assert.InDelta(t, 50.0, p.Percent, 0.001)

	assert.InDelta(t, 100.0, ProgressOf(StepSubmitted).Percent, 0.001)
}

func TestErrorSetOrderingAndFirstWins(t *testing.T) {
	errs := ErrorSet{}
	errs.Add(FieldGuardianMobile, "bad guardian")
	errs.Add(FieldSubjects, "too few")
	errs.Add(FieldSubjects, "ignored")
	errs.Add("zzz", "unknown")
	errs.Add(FieldFullName, "bad name")

	assert.Equal(t, []string{FieldFullName, FieldSubjects, FieldGuardianMobile, "zzz"}, errs.Fields())
	assert.Equal(t, "too few", errs[FieldSubjects])
	first, ok := errs.First()
	assert.True(t, ok)
	assert.Equal(t, FieldFullName, first)
	assert.True(t, ErrorSet{}.Empty())
}
