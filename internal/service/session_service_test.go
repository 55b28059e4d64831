package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-enrollment-roster/internal/models"
	appErrors "github.com/noah-isme/sma-enrollment-roster/pkg/errors"
)

type stubClock struct {
	now time.Time
}

func (c *stubClock) Now() time.Time { return c.now }

func (c *stubClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestSessions(ttl time.Duration) (*SessionService, *stubClock) {
	clock := &stubClock{now: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)}
	svc := NewSessionService(SessionConfig{TTL: ttl}, NewFormValidator(), NewMetricsService(), zap.NewNop())
	svc.now = clock.Now
	return svc, clock
}

func TestSessionServiceCreateAndGet(t *testing.T) {
	svc, _ := newTestSessions(time.Hour)

	session := svc.Create()
	require.NotEmpty(t, session.ID)
	require.NotNil(t, session.Form)
	require.NotNil(t, session.Roster)

	got, err := svc.Get(session.ID)
	require.NoError(t, err)
	assert.Same(t, session, got)
	assert.Equal(t, 1, svc.Count())
}

func TestSessionServiceSessionsAreIsolated(t *testing.T) {
	svc, _ := newTestSessions(time.Hour)
	a := svc.Create()
	b := svc.Create()
	a.Form.sleep = func(time.Duration) {}

	require.NoError(t, a.Form.ChangeMany(map[string]string{
		models.FieldName:          "Ann",
		models.FieldEmail:         "ann@school.edu",
		models.FieldContactNumber: "1234567890",
		models.FieldCourse:        string(models.CourseScience),
	}))
	_, err := a.Form.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, a.Roster.Len())
	assert.Equal(t, 0, b.Roster.Len())
	assert.Equal(t, "", b.Form.Snapshot().Candidate.Name)
}

func TestSessionServiceGetUnknown(t *testing.T) {
	svc, _ := newTestSessions(time.Hour)

	_, err := svc.Get("missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestSessionServiceEnd(t *testing.T) {
	svc, _ := newTestSessions(time.Hour)
	session := svc.Create()

	require.NoError(t, svc.End(session.ID))
	_, err := svc.Get(session.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.ErrorIs(t, svc.End(session.ID), appErrors.ErrNotFound)
}

func TestSessionServiceExpiry(t *testing.T) {
	svc, clock := newTestSessions(10 * time.Minute)
	idle := svc.Create()
	active := svc.Create()

	clock.Advance(8 * time.Minute)
	_, err := svc.Get(active.ID)
	require.NoError(t, err)

	clock.Advance(5 * time.Minute)
	_, err = svc.Get(idle.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	_, err = svc.Get(active.ID)
	assert.NoError(t, err)
	assert.Equal(t, clock.now.Add(10*time.Minute), svc.ExpiresAt(active))
}

func TestSessionServiceSweep(t *testing.T) {
	svc, clock := newTestSessions(time.Minute)
	svc.Create()
	svc.Create()

	clock.Advance(2 * time.Minute)
	fresh := svc.Create()

	assert.Equal(t, 1, svc.Count())
	assert.Equal(t, 0, svc.Sweep())
	_, err := svc.Get(fresh.ID)
	assert.NoError(t, err)
}

func TestSessionServiceNoTTLNeverExpires(t *testing.T) {
	svc, clock := newTestSessions(0)
	session := svc.Create()

	clock.Advance(365 * 24 * time.Hour)
	_, err := svc.Get(session.ID)
	assert.NoError(t, err)
	assert.True(t, svc.ExpiresAt(session).IsZero())
}

func TestSessionServiceRunStopsOnCancel(t *testing.T) {
	svc, _ := newTestSessions(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
