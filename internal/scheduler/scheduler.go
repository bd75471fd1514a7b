package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/kasku-go-api/internal/service"
)

// Status reports the scheduler state for diagnostics.
type Status struct {
	Running      bool       `json:"running"`
	Interval     string     `json:"interval"`
	LastRun      *time.Time `json:"last_run,omitempty"`
	LastSent     int        `json:"last_sent"`
	LastCleanups int64      `json:"last_cleanups"`
}

// Scheduler drives the periodic reminder pass and session TTL cleanup.
type Scheduler struct {
	reminders service.ReminderService
	sessions  service.SessionService
	interval  time.Duration
	logger    zerolog.Logger

	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	running  bool
	lastRun  *time.Time
	lastSent int
	cleaned  int64
}

// New constructs the scheduler. Interval defaults to one hour.
func New(reminders service.ReminderService, sessions service.SessionService, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		reminders: reminders,
		sessions:  sessions,
		interval:  time.Hour,
		logger:    logger.With().Str("component", "scheduler").Logger(),
	}
}

// Configure sets the tick interval. Must be called before Start.
func (s *Scheduler) Configure(interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if interval > 0 {
		s.interval = interval
	}
}

// Start launches the ticker loop. Starting a running scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	go s.loop(ctx)
	s.logger.Info().Dur("interval", s.interval).Msg("scheduler started")
}

// Stop terminates the loop and waits for the current pass to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	cancel()
	<-done

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
	s.logger.Info().Msg("scheduler stopped")
}

// Status returns a snapshot of the scheduler state.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Running:      s.running,
		Interval:     s.interval.String(),
		LastRun:      s.lastRun,
		LastSent:     s.lastSent,
		LastCleanups: s.cleaned,
	}
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// One pass on startup so a restart never defers overdue work a full tick.
	s.pass(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pass(ctx)
		}
	}
}

func (s *Scheduler) pass(ctx context.Context) {
	now := time.Now()

	sent, err := s.reminders.Run(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("reminder pass failed")
	}

	cleaned, err := s.sessions.CleanupExpired(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("session cleanup failed")
	}

	s.mu.Lock()
	s.lastRun = &now
	s.lastSent = sent
	s.cleaned = cleaned
	s.mu.Unlock()
}
