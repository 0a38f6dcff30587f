// Package scheduler runs the daemon's time-driven loops: the daily cooldown
// reset and the cooldown observer tick.
package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Resetter clears all active cooldowns. Usage counts are not touched.
type Resetter interface {
	ResetAllCooldowns() error
}

// ResetScheduler fires once a day at a configured local time and clears all
// cooldowns. A failed reset is retried once after a backoff, then abandoned
// until the next day.
type ResetScheduler struct {
	resetter     Resetter
	resetTime    time.Time // only hour and minute are used
	retryBackoff time.Duration
	logger       zerolog.Logger

	now   func() time.Time
	after func(time.Duration) <-chan time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// ResetOption configures a ResetScheduler.
type ResetOption func(*ResetScheduler)

// WithResetClock overrides the scheduler's time source.
func WithResetClock(now func() time.Time) ResetOption {
	return func(rs *ResetScheduler) { rs.now = now }
}

// WithAfter overrides the scheduler's wait primitive.
func WithAfter(after func(time.Duration) <-chan time.Time) ResetOption {
	return func(rs *ResetScheduler) { rs.after = after }
}

// NewResetScheduler creates a scheduler that resets via r at resetTime
// ("HH:MM", local) every day.
func NewResetScheduler(r Resetter, resetTime string, retryBackoff time.Duration, logger zerolog.Logger, opts ...ResetOption) (*ResetScheduler, error) {
	if r == nil {
		return nil, fmt.Errorf("resetter cannot be nil")
	}

	parsed, err := time.Parse("15:04", resetTime)
	if err != nil {
		return nil, fmt.Errorf("invalid reset time %q: %w", resetTime, err)
	}
	if retryBackoff <= 0 {
		retryBackoff = 5 * time.Minute
	}

	rs := &ResetScheduler{
		resetter:     r,
		resetTime:    parsed,
		retryBackoff: retryBackoff,
		logger:       logger.With().Str("component", "reset-scheduler").Logger(),
		now:          time.Now,
		after:        time.After,
	}
	for _, opt := range opts {
		opt(rs)
	}
	return rs, nil
}

// Start begins the daily loop. Calling Start on a running scheduler is a
// no-op: the existing schedule is kept.
func (rs *ResetScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.running {
		rs.logger.Debug().Msg("Reset scheduler already running, keeping existing schedule")
		return
	}
	rs.running = true
	rs.stopCh = make(chan struct{})

	rs.wg.Add(1)
	go rs.run()
	rs.logger.Info().
		Str("reset_time", rs.resetTime.Format("15:04")).
		Msg("Daily cooldown reset scheduler started")
}

// Stop halts the loop and waits for it to exit.
func (rs *ResetScheduler) Stop() {
	rs.mu.Lock()
	if !rs.running {
		rs.mu.Unlock()
		return
	}
	rs.running = false
	close(rs.stopCh)
	rs.mu.Unlock()

	rs.wg.Wait()
	rs.logger.Info().Msg("Daily cooldown reset scheduler stopped")
}

func (rs *ResetScheduler) run() {
	defer rs.wg.Done()

	for {
		nextReset := rs.calculateNextReset()
		wait := nextReset.Sub(rs.now())

		rs.logger.Info().
			Time("next_reset", nextReset).
			Dur("wait_duration", wait).
			Msg("Scheduled next daily cooldown reset")

		select {
		case <-rs.after(wait):
			rs.performReset()
		case <-rs.stopCh:
			return
		}
	}
}

// calculateNextReset returns the next occurrence of the configured reset
// time, today if it is still ahead, otherwise tomorrow.
func (rs *ResetScheduler) calculateNextReset() time.Time {
	now := rs.now()

	todayReset := time.Date(
		now.Year(), now.Month(), now.Day(),
		rs.resetTime.Hour(), rs.resetTime.Minute(), 0, 0,
		now.Location(),
	)

	if now.After(todayReset) {
		return todayReset.AddDate(0, 0, 1)
	}
	return todayReset
}

// performReset clears all cooldowns, retrying once after the backoff. A
// second failure is logged and abandoned until the next scheduled day.
func (rs *ResetScheduler) performReset() {
	rs.logger.Info().Msg("Performing daily cooldown reset")

	err := rs.resetter.ResetAllCooldowns()
	if err == nil {
		rs.logger.Info().Msg("Daily cooldown reset complete")
		return
	}
	rs.logger.Error().Err(err).
		Dur("retry_backoff", rs.retryBackoff).
		Msg("Daily cooldown reset failed, retrying")

	select {
	case <-rs.after(rs.retryBackoff):
	case <-rs.stopCh:
		return
	}

	if err := rs.resetter.ResetAllCooldowns(); err != nil {
		rs.logger.Error().Err(err).Msg("Daily cooldown reset retry failed, giving up until next schedule")
		return
	}
	rs.logger.Info().Msg("Daily cooldown reset complete after retry")
}
