package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-enrollment-roster/internal/repository"
	appErrors "github.com/noah-isme/sma-enrollment-roster/pkg/errors"
)

// SessionConfig tunes session lifetime and the per-session roster.
type SessionConfig struct {
	TTL        time.Duration
	MaxRecords int
	Form       FormConfig
}

// Session is the server side of one page load: a single form writing into a
// single roster. Nothing outlives it.
type Session struct {
	ID        string
	CreatedAt time.Time
	Form      *EnrollmentForm
	Roster    *repository.RosterStore

	lastSeen time.Time
}

// SessionService keeps the live sessions in memory.
type SessionService struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	cfg       SessionConfig
	validator *FormValidator
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// NewSessionService constructs the registry. A non-positive TTL disables
// expiry.
func NewSessionService(cfg SessionConfig, validator *FormValidator, metrics *MetricsService, logger *zap.Logger) *SessionService {
	if validator == nil {
		validator = NewFormValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		sessions:  make(map[string]*Session),
		cfg:       cfg,
		validator: validator,
		metrics:   metrics,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ExpiresAt reports when session lapses if left idle. The zero time means it
// never expires.
func (s *SessionService) ExpiresAt(session *Session) time.Time {
	if s.cfg.TTL <= 0 {
		return time.Time{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return session.lastSeen.Add(s.cfg.TTL)
}

// Create opens a session with an empty roster and a blank form.
func (s *SessionService) Create() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweepLocked(now)

	roster := repository.NewRosterStore(repository.WithMaxRecords(s.cfg.MaxRecords))
	session := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		Roster:    roster,
		lastSeen:  now,
	}
	session.Form = NewEnrollmentForm(roster, s.validator, s.cfg.Form, s.metrics, s.logger.With(zap.String("session_id", session.ID)))
	s.sessions[session.ID] = session
	s.metrics.SetActiveSessions(len(s.sessions))
	s.logger.Debug("session opened", zap.String("session_id", session.ID))
	return session
}

// Get returns a live session and refreshes its idle timer.
func (s *SessionService) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
	}
	now := s.now()
	if s.expired(session, now) {
		s.removeLocked(id, "expired")
		return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
	}
	session.lastSeen = now
	return session, nil
}

// End discards a session and its roster.
func (s *SessionService) End(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "session not found")
	}
	s.removeLocked(id, "ended")
	return nil
}

// Count returns the number of sessions currently held, expired or not.
func (s *SessionService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops idle sessions and returns how many were removed.
func (s *SessionService) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(s.now())
}

// Run sweeps on every tick until ctx is done.
func (s *SessionService) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 || s.cfg.TTL <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Info("expired sessions swept", zap.Int("count", n))
			}
		}
	}
}

func (s *SessionService) sweepLocked(now time.Time) int {
	removed := 0
	for id, session := range s.sessions {
		if s.expired(session, now) {
			s.removeLocked(id, "expired")
			removed++
		}
	}
	return removed
}

func (s *SessionService) removeLocked(id, reason string) {
	delete(s.sessions, id)
	s.metrics.SetActiveSessions(len(s.sessions))
	s.logger.Debug("session closed", zap.String("session_id", id), zap.String("reason", reason))
}

func (s *SessionService) expired(session *Session, now time.Time) bool {
	if s.cfg.TTL <= 0 {
		return false
	}
	return now.Sub(session.lastSeen) > s.cfg.TTL
}
