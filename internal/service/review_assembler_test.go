package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/enroll-wizard-api/internal/models"
)

func TestFinalizeBuildsPayload(t *testing.T) {
	rec := completeRecord()
	rec.Subjects = []string{"Mathematics", "Science", "Mathematics"}
	rec.Achievements = models.Ptr("Olympiad finalist")
	rec.LastExamPercentage = models.Ptr(88.0)

	payload, redirect := NewReviewAssembler(nil).Finalize(rec)
	require.Nil(t, redirect)
	require.NotNil(t, payload)
	assert.Equal(t, "Asha Verma", payload.FullName)
	assert.Equal(t, []string{"Mathematics", "Science"}, payload.Subjects)
	assert.False(t, payload.Scholarship)
	assert.Nil(t, payload.LastExamPercentage, "scholarship-only fields are dropped")
	assert.Empty(t, payload.Achievements)
}

func TestFinalizeKeepsScholarshipFields(t *testing.T) {
	rec := completeRecord()
	rec.Scholarship = models.Ptr(true)
	rec.LastExamPercentage = models.Ptr(92.5)
	rec.Achievements = models.Ptr(" Science fair winner ")

	payload, redirect := NewReviewAssembler(nil).Finalize(rec)
	require.Nil(t, redirect)
	require.NotNil(t, payload.LastExamPercentage)
	assert.Equal(t, 92.5, *payload.LastExamPercentage)
	assert.Equal(t, "Science fair winner", payload.Achievements)
}

func TestFinalizeRedirectPriority(t *testing.T) {
	assembler := NewReviewAssembler(nil)

	rec := completeRecord()
	rec.City = nil
	rec.Board = nil
	_, redirect := assembler.Finalize(rec)
	require.NotNil(t, redirect)
	assert.Equal(t, models.Step1, redirect.Step, "step 1 wins over step 3")

	rec = completeRecord()
	rec.City = nil
	rec.Scholarship = models.Ptr(true)
	_, redirect = assembler.Finalize(rec)
	require.NotNil(t, redirect)
	assert.Equal(t, models.Step2, redirect.Step, "step 2 wins over step 3")
	assert.Equal(t, "Last Exam Percentage is required for scholarship", redirect.Errors[models.FieldLastExamPercentage])

	rec = completeRecord()
	rec.PaymentPlan = models.Ptr(models.PaymentPlan("Monthly"))
	_, redirect = assembler.Finalize(rec)
	require.NotNil(t, redirect)
	assert.Equal(t, models.Step3, redirect.Step)
	assert.Equal(t, []string{models.FieldPaymentPlan}, redirect.Fields)
}
