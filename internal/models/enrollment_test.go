package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrollmentRecordMergeKeepsDisjointKeys(t *testing.T) {
	var rec EnrollmentRecord
	rec = rec.Merge(EnrollmentRecord{FullName: Ptr("Asha Verma")})
	rec = rec.Merge(EnrollmentRecord{Email: Ptr("asha@example.com")})

	require.NotNil(t, rec.FullName)
	require.NotNil(t, rec.Email)
	assert.Equal(t, "Asha Verma", *rec.FullName)
	assert.Equal(t, "asha@example.com", *rec.Email)
}

func TestEnrollmentRecordMergeLastWriteWins(t *testing.T) {
	rec := EnrollmentRecord{FullName: Ptr("First"), Subjects: []string{"Physics"}}
	rec = rec.Merge(EnrollmentRecord{FullName: Ptr("Second")})
	assert.Equal(t, "Second", *rec.FullName)
	assert.Equal(t, []string{"Physics"}, rec.Subjects)

	rec = rec.Merge(EnrollmentRecord{Subjects: []string{}})
	assert.NotNil(t, rec.Subjects)
	assert.Empty(t, rec.Subjects)
}

func TestEnrollmentRecordMergeDoesNotAlias(t *testing.T) {
	subjects := []string{"Physics"}
	rec := EnrollmentRecord{}.Merge(EnrollmentRecord{Subjects: subjects})
	subjects[0] = "Chemistry"
	assert.Equal(t, "Physics", rec.Subjects[0])

	clone := rec.Clone()
	clone.Subjects[0] = "Biology"
	assert.Equal(t, "Physics", rec.Subjects[0])
}

func TestEnrollmentRecordHas(t *testing.T) {
	rec := EnrollmentRecord{
		FullName:    Ptr("   "),
		Email:       Ptr("a@b.co"),
		Subjects:    []string{},
		Scholarship: Ptr(false),
	}
	assert.False(t, rec.Has(FieldFullName))
	assert.True(t, rec.Has(FieldEmail))
	assert.False(t, rec.Has(FieldSubjects))
	assert.True(t, rec.Has(FieldScholarship))
	assert.False(t, rec.Has(FieldMobile))
	assert.False(t, rec.Has("unknown"))
}

func TestEnrollmentRecordOnly(t *testing.T) {
	rec := EnrollmentRecord{FullName: Ptr("Asha"), PinCode: Ptr("110001"), ExamGoal: Ptr(ExamGoalConceptMastery)}
	scoped := rec.Only(Step3.Fields())
	assert.Nil(t, scoped.FullName)
	assert.Nil(t, scoped.ExamGoal)
	require.NotNil(t, scoped.PinCode)
	assert.Equal(t, "110001", *scoped.PinCode)
	assert.Equal(t, []string{FieldPinCode}, scoped.SetFields())
}

func TestEnrollmentRecordWithout(t *testing.T) {
	rec := EnrollmentRecord{FullName: Ptr("Asha"), Subjects: []string{"Physics"}, LastExamPercentage: Ptr(88.0)}
	trimmed := rec.Without(Step2.Fields())
	assert.Equal(t, []string{FieldFullName}, trimmed.SetFields())
	assert.Len(t, rec.Subjects, 1, "receiver untouched")
}

func TestEnrollmentRecordIsEmpty(t *testing.T) {
	assert.True(t, EnrollmentRecord{}.IsEmpty())
	assert.False(t, EnrollmentRecord{Scholarship: Ptr(false)}.IsEmpty())
}

func TestEnrollmentRecordUniqueSubjects(t *testing.T) {
	rec := EnrollmentRecord{Subjects: []string{"Physics", "Chemistry", "Physics", " ", "Chemistry ", "Biology"}}
	assert.Equal(t, []string{"Physics", "Chemistry", "Biology"}, rec.UniqueSubjects())
}

func TestEnrollmentRecordJSONRoundTrip(t *testing.T) {
	rec := EnrollmentRecord{
		FullName:           Ptr("Asha Verma"),
		ClassLevel:         Ptr(ClassLevel11),
		Board:              Ptr(BoardState),
		Subjects:           []string{"Physics", "Chemistry", "Mathematics"},
		WeeklyStudyHours:   Ptr(12),
		Scholarship:        Ptr(true),
		LastExamPercentage: Ptr(92.5),
		PaymentPlan:        Ptr(PaymentPlanHalfYearly),
	}
	raw, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"board":"State Board"`)
	assert.NotContains(t, string(raw), "email")

	var decoded EnrollmentRecord
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, rec, decoded)
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, ClassLevel12.IsValid())
	assert.False(t, ClassLevel("8").IsValid())
	assert.True(t, Board("State Board").IsValid())
	assert.False(t, Language("French").IsValid())
	assert.True(t, ExamGoalCompetitivePrep.IsValid())
	assert.False(t, PaymentPlan("Monthly").IsValid())
	assert.True(t, PaymentModeNetBanking.IsValid())
}
