package repository

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/sma-enrollment-roster/internal/models"
)

// ErrRosterFull is returned by Add once the configured capacity is reached.
var ErrRosterFull = errors.New("roster is full")

// RosterOption configures a RosterStore.
type RosterOption func(*RosterStore)

// WithMaxRecords caps the roster size. Zero or less means unlimited.
func WithMaxRecords(n int) RosterOption {
	return func(r *RosterStore) {
		if n > 0 {
			r.maxRecords = n
		}
	}
}

// WithClock overrides the registration timestamp source.
func WithClock(now func() time.Time) RosterOption {
	return func(r *RosterStore) {
		if now != nil {
			r.now = now
		}
	}
}

// WithIDGenerator overrides the record id source.
func WithIDGenerator(gen func() (string, error)) RosterOption {
	return func(r *RosterStore) {
		if gen != nil {
			r.newID = gen
		}
	}
}

// RosterStore is the append-only list of accepted students for one session.
// Records are kept oldest first internally and handed out newest first, so
// inserting at the logical head is a plain append.
type RosterStore struct {
	mu         sync.RWMutex
	records    []models.StudentRecord
	maxRecords int
	now        func() time.Time
	newID      func() (string, error)
}

// NewRosterStore constructs an empty roster.
func NewRosterStore(opts ...RosterOption) *RosterStore {
	r := &RosterStore{
		now:   func() time.Time { return time.Now().UTC() },
		newID: newRecordID,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add accepts an already validated candidate. The candidate's fields are
// copied as given; only the id and registration date are generated.
func (r *RosterStore) Add(candidate models.Candidate) (models.StudentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.maxRecords > 0 && len(r.records) >= r.maxRecords {
		return models.StudentRecord{}, ErrRosterFull
	}
	id, err := r.newID()
	if err != nil {
		return models.StudentRecord{}, fmt.Errorf("generate student id: %w", err)
	}
	record := models.StudentRecord{
		ID:               id,
		Name:             candidate.Name,
		Email:            candidate.Email,
		ContactNumber:    candidate.ContactNumber,
		Course:           candidate.Course,
		Status:           candidate.Status,
		RegistrationDate: r.now(),
	}
	r.records = append(r.records, record)
	return record, nil
}

// All returns the roster newest first. The slice is a copy.
func (r *RosterStore) All() []models.StudentRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.StudentRecord, len(r.records))
	for i, rec := range r.records {
		out[len(r.records)-1-i] = rec
	}
	return out
}

// Len returns the number of accepted records.
func (r *RosterStore) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// CountByStatus counts records carrying status.
func (r *RosterStore) CountByStatus(status models.EnrollmentStatus) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return countByStatus(r.records, status)
}

// CourseCount is the size of the course catalog, not the number of distinct
// courses present on the roster.
func (r *RosterStore) CourseCount() int {
	return len(models.Courses)
}

// Stats derives every dashboard figure from one consistent view of the roster.
func (r *RosterStore) Stats() models.RosterStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byStatus := make(map[models.EnrollmentStatus]int, len(models.EnrollmentStatuses))
	for _, status := range models.EnrollmentStatuses {
		byStatus[status] = countByStatus(r.records, status)
	}
	return models.RosterStats{
		Total:    len(r.records),
		ByStatus: byStatus,
		Courses:  r.CourseCount(),
	}
}

func countByStatus(records []models.StudentRecord, status models.EnrollmentStatus) int {
	n := 0
	for _, rec := range records {
		if rec.Status == status {
			n++
		}
	}
	return n
}

// newRecordID returns a time-ordered UUIDv7 so ids sort by acceptance time.
func newRecordID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
