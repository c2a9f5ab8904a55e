// Package scheduler fires the two daily check-in triggers. Uses robfig/cron
// for the wall-clock schedule in the configured time zone; what happens on a
// firing (send the prompt, arm conversation state) is owned by the handler
// the bot registers.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jholhewres/coachbot/pkg/coachbot/checkin"
)

// FireHandler is called when a check-in trigger fires.
type FireHandler func(kind checkin.Kind)

// ClockTime is a wall-clock time of day in the scheduler's zone.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses "HH:MM" (24-hour) into a ClockTime.
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return ClockTime{}, fmt.Errorf("invalid time of day %q (want HH:MM): %w", s, err)
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// cronSpec renders the 5-field cron expression for a daily firing.
func (c ClockTime) cronSpec() string {
	return fmt.Sprintf("%d %d * * *", c.Minute, c.Hour)
}

// String formats the time as "HH:MM".
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// on returns the ClockTime on the given day in the given location.
func (c ClockTime) on(day time.Time, loc *time.Location) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour, c.Minute, 0, 0, loc)
}

// Scheduler runs the two daily check-in triggers.
type Scheduler struct {
	cron    *cron.Cron
	loc     *time.Location
	morning ClockTime
	evening ClockTime
	handler FireHandler
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a Scheduler firing at the given local times.
func New(loc *time.Location, morning, evening ClockTime, handler FireHandler, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		loc:     loc,
		morning: morning,
		evening: evening,
		handler: handler,
		logger:  logger.With("component", "scheduler"),
	}
}

// Start registers the cron entries and begins firing. Trigger execution is
// fire-and-forget: the handler owns delivery and state, the scheduler only
// decides when.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.cron = cron.New(cron.WithLocation(s.loc))

	if _, err := s.cron.AddFunc(s.morning.cronSpec(), func() {
		s.fire(checkin.KindMorning)
	}); err != nil {
		return fmt.Errorf("scheduling morning check-in: %w", err)
	}
	if _, err := s.cron.AddFunc(s.evening.cronSpec(), func() {
		s.fire(checkin.KindEvening)
	}); err != nil {
		return fmt.Errorf("scheduling evening check-in: %w", err)
	}

	s.cron.Start()

	s.logger.Info("scheduler started",
		"timezone", s.loc.String(),
		"morning", s.morning.String(),
		"evening", s.evening.String(),
	)
	return nil
}

// Stop gracefully shuts down the scheduler, waiting briefly for a running
// trigger to finish.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		select {
		case <-ctx.Done():
		case <-time.After(10 * time.Second):
			s.logger.Warn("scheduler stop timed out")
		}
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.logger.Info("scheduler stopped")
}

// NextCheckIn returns the kind and absolute time of the next scheduled
// firing after now. Each trigger already past today rolls to tomorrow; when
// both are still ahead the sooner wins. The roll-forward comparison is
// strict, so a query at exactly the morning fire time still reports the
// morning slot.
func (s *Scheduler) NextCheckIn(now time.Time) (checkin.Kind, time.Time) {
	local := now.In(s.loc)

	morning := s.morning.on(local, s.loc)
	if local.After(morning) {
		morning = morning.Add(24 * time.Hour)
	}

	evening := s.evening.on(local, s.loc)
	if local.After(evening) {
		evening = evening.Add(24 * time.Hour)
	}

	if morning.Before(evening) {
		return checkin.KindMorning, morning
	}
	return checkin.KindEvening, evening
}

// fire dispatches one trigger to the handler with panic isolation, so a bad
// handler run can't kill the cron goroutine.
func (s *Scheduler) fire(kind checkin.Kind) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("check-in trigger panicked", "kind", string(kind), "panic", r)
		}
	}()

	if s.ctx != nil && s.ctx.Err() != nil {
		return
	}

	s.logger.Info("check-in trigger fired", "kind", string(kind))
	if s.handler != nil {
		s.handler(kind)
	}
}
