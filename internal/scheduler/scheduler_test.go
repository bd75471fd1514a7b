package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kasku-go-api/internal/dto"
	"github.com/noah-isme/kasku-go-api/internal/models"
)

type countingReminder struct {
	runs atomic.Int32
}

func (r *countingReminder) Run(_ context.Context) (int, error) {
	r.runs.Add(1)
	return 2, nil
}

// fakeSessions counts cleanup calls; the rest of the interface is unused by
// the scheduler.
type fakeSessions struct {
	cleanups atomic.Int32
}

func (s *fakeSessions) Open(context.Context, uint, string, time.Time, string, string) (models.Session, error) {
	return models.Session{}, nil
}

func (s *fakeSessions) ListForUser(context.Context, uint, uint) ([]dto.SessionResponse, error) {
	return nil, nil
}

func (s *fakeSessions) Revoke(context.Context, uint, uint) error { return nil }

func (s *fakeSessions) RevokeByToken(context.Context, string) error { return nil }

func (s *fakeSessions) RevokeOthers(context.Context, uint, uint) error { return nil }

func (s *fakeSessions) CleanupExpired(context.Context) (int64, error) {
	s.cleanups.Add(1)
	return 3, nil
}

func TestSchedulerRunsOnStartAndTicks(t *testing.T) {
	reminders := &countingReminder{}
	sessions := &fakeSessions{}

	s := New(reminders, sessions, zerolog.Nop())
	s.Configure(20 * time.Millisecond)
	s.Start(context.Background())
	defer s.Stop()

	require.Eventually(t, func() bool {
		return reminders.runs.Load() >= 2 && sessions.cleanups.Load() >= 2
	}, 2*time.Second, 5*time.Millisecond)

	status := s.Status()
	require.True(t, status.Running)
	require.Equal(t, "20ms", status.Interval)
	require.NotNil(t, status.LastRun)
	require.Equal(t, 2, status.LastSent)
	require.EqualValues(t, 3, status.LastCleanups)
}

func TestSchedulerStopIsIdempotent(t *testing.T) {
	s := New(&countingReminder{}, &fakeSessions{}, zerolog.Nop())
	s.Configure(10 * time.Millisecond)
	s.Start(context.Background())

	s.Stop()
	s.Stop()

	require.False(t, s.Status().Running)
}

func TestSchedulerStartWhileRunningIsNoop(t *testing.T) {
	reminders := &countingReminder{}
	s := New(reminders, &fakeSessions{}, zerolog.Nop())
	s.Configure(time.Hour)
	s.Start(context.Background())
	s.Start(context.Background())
	defer s.Stop()

	// Only the startup pass ran; a second Start must not double the loop.
	time.Sleep(50 * time.Millisecond)
	require.EqualValues(t, 1, reminders.runs.Load())
}
