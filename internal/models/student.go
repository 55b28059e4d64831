package models

import "time"

// Form field names as they appear on the wire.
const (
	FieldName          = "name"
	FieldEmail         = "email"
	FieldContactNumber = "contactNumber"
	FieldCourse        = "course"
	FieldStatus        = "status"
)

// CandidateFields lists the form fields in display order.
var CandidateFields = []string{FieldName, FieldEmail, FieldContactNumber, FieldCourse, FieldStatus}

// Candidate is enrollment form input that has not been accepted yet.
type Candidate struct {
	Name          string           `json:"name" validate:"notblank"`
	Email         string           `json:"email" validate:"notblank,emailaddr"`
	ContactNumber string           `json:"contactNumber" validate:"notblank,contact10"`
	Course        Course           `json:"course" validate:"required,course"`
	Status        EnrollmentStatus `json:"status" validate:"required,enrollment_status"`
}

// NewCandidate returns a blank candidate with form defaults applied.
func NewCandidate() Candidate {
	return Candidate{Status: EnrollmentStatusPending}
}

// Set assigns one field by its wire name and reports whether the field exists.
func (c *Candidate) Set(field, value string) bool {
	switch field {
	case FieldName:
		c.Name = value
	case FieldEmail:
		c.Email = value
	case FieldContactNumber:
		c.ContactNumber = value
	case FieldCourse:
		c.Course = Course(value)
	case FieldStatus:
		c.Status = EnrollmentStatus(value)
	default:
		return false
	}
	return true
}

// StudentRecord is an accepted candidate on the session roster.
type StudentRecord struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Email            string           `json:"email"`
	ContactNumber    string           `json:"contactNumber"`
	Course           Course           `json:"course"`
	Status           EnrollmentStatus `json:"status"`
	RegistrationDate time.Time        `json:"registrationDate"`
}

// RosterStats summarises a roster for dashboard cards.
type RosterStats struct {
	Total    int                      `json:"total"`
	ByStatus map[EnrollmentStatus]int `json:"byStatus"`
	Courses  int                      `json:"courses"`
}
