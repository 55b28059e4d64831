package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sma-enrollment-roster/internal/models"
)

func validCandidate() models.Candidate {
	return models.Candidate{
		Name:          "Ann",
		Email:         "a@b.com",
		ContactNumber: "1234567890",
		Course:        models.CourseMaths,
		Status:        models.EnrollmentStatusPending,
	}
}

func TestFormValidatorAcceptsValidCandidate(t *testing.T) {
	errs := NewFormValidator().Validate(validCandidate())
	assert.True(t, errs.Valid())
	assert.Empty(t, errs)
}

func TestFormValidatorBlankFieldsAreIndependent(t *testing.T) {
	validator := NewFormValidator()
	cases := []struct {
		field   string
		blank   string
		message string
	}{
		{models.FieldName, "", "Student name is required"},
		{models.FieldName, "   ", "Student name is required"},
		{models.FieldName, "\ufeff", "Student name is required"},
		{models.FieldName, "\u00a0\u3000\v", "Student name is required"},
		{models.FieldEmail, "", "Email is required"},
		{models.FieldEmail, "\t ", "Email is required"},
		{models.FieldContactNumber, "", "Contact number is required"},
		{models.FieldContactNumber, "  ", "Contact number is required"},
		{models.FieldCourse, "", "Please select a course"},
		{models.FieldCourse, "  ", "Please select a course"},
		{models.FieldStatus, "", "Please select a status"},
		{models.FieldStatus, " ", "Please select a status"},
	}
	for _, tc := range cases {
		t.Run(tc.field+"/"+tc.blank, func(t *testing.T) {
			candidate := validCandidate()
			assert.True(t, candidate.Set(tc.field, tc.blank))

			errs := validator.Validate(candidate)
			assert.Equal(t, ErrorMap{tc.field: tc.message}, errs)
		})
	}
}

func TestFormValidatorMalformedEmail(t *testing.T) {
	candidate := validCandidate()
	candidate.Email = "bad"

	errs := NewFormValidator().Validate(candidate)
	assert.Equal(t, ErrorMap{models.FieldEmail: "Please enter a valid email address"}, errs)
}

func TestFormValidatorEmailPattern(t *testing.T) {
	validator := NewFormValidator()
	for _, email := range []string{"a@b", "a b@c.d", "@b.com", "a@.com", "a@@b.com", " a@b.com",
		"a\u00a0b@c.com", "ann@school.edu\v", "a@b\u2003c.com", "a@b.c\ufeff", "a@b\u2028.com"} {
		candidate := validCandidate()
		candidate.Email = email
		assert.Contains(t, validator.Validate(candidate), models.FieldEmail, email)
	}
	for _, email := range []string{"a@b.c", "first.last@school.edu", "x+y@mail.example.org"} {
		candidate := validCandidate()
		candidate.Email = email
		assert.True(t, validator.Validate(candidate).Valid(), email)
	}
}

func TestFormValidatorContactNumberDigits(t *testing.T) {
	validator := NewFormValidator()

	candidate := validCandidate()
	candidate.ContactNumber = "123"
	assert.Equal(t, ErrorMap{models.FieldContactNumber: "Please enter a valid 10-digit number"}, validator.Validate(candidate))

	candidate.ContactNumber = "12345678901"
	assert.Contains(t, validator.Validate(candidate), models.FieldContactNumber)

	candidate.ContactNumber = "(555) 123-4567"
	assert.True(t, validator.Validate(candidate).Valid())

	candidate.ContactNumber = "+1 555 123 4567"
	assert.Contains(t, validator.Validate(candidate), models.FieldContactNumber)
}

func TestFormValidatorRejectsUnknownEnumValues(t *testing.T) {
	candidate := validCandidate()
	candidate.Course = models.Course("History")
	candidate.Status = models.EnrollmentStatus("Graduated")

	errs := NewFormValidator().Validate(candidate)
	assert.Equal(t, ErrorMap{
		models.FieldCourse: "Please select a course",
		models.FieldStatus: "Please select a status",
	}, errs)
}

func TestFormValidatorReportsEveryFailingField(t *testing.T) {
	errs := NewFormValidator().Validate(models.Candidate{})
	assert.Len(t, errs, len(models.CandidateFields))
	assert.NotContains(t, errs, "form")
	for _, field := range models.CandidateFields {
		assert.Contains(t, errs, field)
	}
}

func TestNormalizeContactNumber(t *testing.T) {
	assert.Equal(t, "5551234567", NormalizeContactNumber("(555) 123-4567"))
	assert.Equal(t, "", NormalizeContactNumber("abc"))
}
