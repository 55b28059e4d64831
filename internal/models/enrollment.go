package models

// EnrollmentStatus represents where a candidate stands in the admission process.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusEnrolled  EnrollmentStatus = "Enrolled"
	EnrollmentStatusPending   EnrollmentStatus = "Pending"
	EnrollmentStatusCancelled EnrollmentStatus = "Cancelled"
)

// EnrollmentStatuses lists every status in display order.
var EnrollmentStatuses = []EnrollmentStatus{
	EnrollmentStatusEnrolled,
	EnrollmentStatusPending,
	EnrollmentStatusCancelled,
}

// Valid reports whether s is one of the known statuses.
func (s EnrollmentStatus) Valid() bool {
	for _, known := range EnrollmentStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Course identifies a subject a student can register for.
type Course string

// Course catalog.
const (
	CourseMaths   Course = "Maths"
	CourseScience Course = "Science"
)

// Courses is the fixed course catalog in display order.
var Courses = []Course{CourseMaths, CourseScience}

// Valid reports whether c belongs to the catalog.
func (c Course) Valid() bool {
	for _, known := range Courses {
		if c == known {
			return true
		}
	}
	return false
}
