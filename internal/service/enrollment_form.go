package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-enrollment-roster/internal/models"
	"github.com/noah-isme/sma-enrollment-roster/internal/repository"
	appErrors "github.com/noah-isme/sma-enrollment-roster/pkg/errors"
)

type rosterWriter interface {
	Add(candidate models.Candidate) (models.StudentRecord, error)
}

type candidateValidator interface {
	Validate(candidate models.Candidate) ErrorMap
}

// FormConfig tunes the submit flow.
type FormConfig struct {
	// SubmitDelay simulates the network round trip of a save.
	SubmitDelay time.Duration
}

// FormSnapshot is a point-in-time copy of the form state.
type FormSnapshot struct {
	Candidate  models.Candidate `json:"candidate"`
	Errors     ErrorMap         `json:"errors"`
	Submitting bool             `json:"submitting"`
}

// EnrollmentForm holds the candidate being edited, the errors of the last
// submit attempt and whether a submission is in flight. At most one
// submission runs at a time.
type EnrollmentForm struct {
	mu         sync.Mutex
	candidate  models.Candidate
	errors     ErrorMap
	submitting bool

	roster    rosterWriter
	validator candidateValidator
	delay     time.Duration
	sleep     func(time.Duration)
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewEnrollmentForm builds a form with default values that saves into roster.
func NewEnrollmentForm(roster rosterWriter, validator candidateValidator, cfg FormConfig, metrics *MetricsService, logger *zap.Logger) *EnrollmentForm {
	if validator == nil {
		validator = NewFormValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	delay := cfg.SubmitDelay
	if delay < 0 {
		delay = 0
	}
	return &EnrollmentForm{
		candidate: models.NewCandidate(),
		errors:    ErrorMap{},
		roster:    roster,
		validator: validator,
		delay:     delay,
		sleep:     time.Sleep,
		metrics:   metrics,
		logger:    logger,
	}
}

// Snapshot returns a copy of the current state.
func (f *EnrollmentForm) Snapshot() FormSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return FormSnapshot{
		Candidate:  f.candidate,
		Errors:     f.errors.Clone(),
		Submitting: f.submitting,
	}
}

// Change sets one field and drops its error entry. The field is not
// re-validated until the next submit.
func (f *EnrollmentForm) Change(field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.candidate.Set(field, value) {
		return appErrors.WithFields(appErrors.ErrValidation, "unknown form field", map[string]string{field: "unknown field"})
	}
	delete(f.errors, field)
	return nil
}

// ChangeMany applies several edits. Unknown fields are reported together and
// nothing is changed when any is present.
func (f *EnrollmentForm) ChangeMany(values map[string]string) error {
	unknown := map[string]string{}
	probe := models.Candidate{}
	for field := range values {
		if !probe.Set(field, "") {
			unknown[field] = "unknown field"
		}
	}
	if len(unknown) > 0 {
		return appErrors.WithFields(appErrors.ErrValidation, "unknown form field", unknown)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for field, value := range values {
		f.candidate.Set(field, value)
		delete(f.errors, field)
	}
	return nil
}

// Reset restores every field to its default and clears all errors. It is
// refused while a submission is in flight.
func (f *EnrollmentForm) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitting {
		return appErrors.Clone(appErrors.ErrConflict, "submission in progress")
	}
	f.candidate = models.NewCandidate()
	f.errors = ErrorMap{}
	return nil
}

// Submit validates the form and, when it passes, waits out the save delay and
// appends the candidate to the roster. On success the form is reset. On any
// failure the entered data is kept. The in-flight flag is cleared on every
// path. ctx is honoured only before the delay starts.
func (f *EnrollmentForm) Submit(ctx context.Context) (*models.StudentRecord, error) {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		f.metrics.ObserveSubmission(SubmissionInProgress)
		return nil, appErrors.Clone(appErrors.ErrConflict, "submission already in progress")
	}
	errs := f.validator.Validate(f.candidate)
	if !errs.Valid() {
		f.errors = errs
		f.mu.Unlock()
		f.metrics.ObserveSubmission(SubmissionRejected)
		return nil, appErrors.WithFields(appErrors.ErrValidation, "please correct the errors in the form", errs)
	}
	if err := ctx.Err(); err != nil {
		f.mu.Unlock()
		f.metrics.ObserveSubmission(SubmissionCancelled)
		return nil, appErrors.Wrap(err, appErrors.ErrRequestCancelled.Code, appErrors.ErrRequestCancelled.Status, "submission cancelled")
	}
	f.errors = ErrorMap{}
	f.submitting = true
	candidate := f.candidate
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.submitting = false
		f.mu.Unlock()
	}()

	if f.delay > 0 {
		f.sleep(f.delay)
	}

	record, err := f.roster.Add(candidate)
	if err != nil {
		f.metrics.ObserveSubmission(SubmissionFailed)
		f.logger.Warn("failed to add student", zap.Error(err))
		msg := appErrors.ErrSubmissionFailed.Message
		if errors.Is(err, repository.ErrRosterFull) {
			msg = "roster is full"
		}
		return nil, appErrors.Wrap(err, appErrors.ErrSubmissionFailed.Code, appErrors.ErrSubmissionFailed.Status, msg)
	}

	f.mu.Lock()
	f.candidate = models.NewCandidate()
	f.errors = ErrorMap{}
	f.mu.Unlock()

	f.metrics.ObserveSubmission(SubmissionAccepted)
	f.metrics.ObserveStudentAccepted(record)
	f.logger.Info("student added",
		zap.String("student_id", record.ID),
		zap.String("course", string(record.Course)),
		zap.String("status", string(record.Status)),
	)
	return &record, nil
}
