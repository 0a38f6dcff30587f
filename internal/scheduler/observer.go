package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/quietshelf/unhook/internal/cooldown"
	"github.com/quietshelf/unhook/internal/store"
)

// DefaultObserveInterval is how often the observer samples while at least one
// cooldown is active. DefaultIdleInterval is the slower rate used while
// nothing is in cooldown.
const (
	DefaultObserveInterval = time.Second
	DefaultIdleInterval    = 5 * time.Second
)

// Snapshot is the state of one package's active cooldown at a sample instant.
type Snapshot struct {
	Package   string
	Remaining time.Duration
	Total     time.Duration
	Progress  float64 // 0 just started, 1 expired
}

// RecordSource lists the usage records the observer samples.
type RecordSource interface {
	Records() ([]*store.UsageRecord, error)
}

// Observer periodically samples all usage records and reports the packages
// currently in cooldown. The callback only fires when there is something to
// show; while nothing is in cooldown the observer drops to a slower idle
// tick.
type Observer struct {
	source       RecordSource
	interval     time.Duration
	idleInterval time.Duration
	logger       zerolog.Logger
	now          func() time.Time
}

// ObserverOption configures an Observer.
type ObserverOption func(*Observer)

// WithObserveInterval overrides the sample interval.
func WithObserveInterval(d time.Duration) ObserverOption {
	return func(o *Observer) {
		if d > 0 {
			o.interval = d
		}
	}
}

// WithIdleInterval overrides the slower tick used while no cooldown is
// active.
func WithIdleInterval(d time.Duration) ObserverOption {
	return func(o *Observer) {
		if d > 0 {
			o.idleInterval = d
		}
	}
}

// WithObserveClock overrides the observer's time source.
func WithObserveClock(now func() time.Time) ObserverOption {
	return func(o *Observer) { o.now = now }
}

// NewObserver creates an observer over the given record source.
func NewObserver(source RecordSource, logger zerolog.Logger, opts ...ObserverOption) *Observer {
	o := &Observer{
		source:       source,
		interval:     DefaultObserveInterval,
		idleInterval: DefaultIdleInterval,
		logger:       logger.With().Str("component", "cooldown-observer").Logger(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Watch samples until ctx is cancelled, invoking fn with the active cooldown
// snapshots on every tick that has at least one. Returns ctx.Err() on
// cancellation.
func (o *Observer) Watch(ctx context.Context, fn func([]Snapshot)) error {
	timer := time.NewTimer(o.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			snaps, err := o.Sample()
			if err != nil {
				o.logger.Warn().Err(err).Msg("Cooldown sample failed")
				timer.Reset(o.idleInterval)
				continue
			}
			if len(snaps) > 0 {
				fn(snaps)
				timer.Reset(o.interval)
			} else {
				timer.Reset(o.idleInterval)
			}
		}
	}
}

// Sample returns a snapshot per package currently in cooldown.
func (o *Observer) Sample() ([]Snapshot, error) {
	records, err := o.source.Records()
	if err != nil {
		return nil, err
	}

	now := o.now()
	var snaps []Snapshot
	for _, rec := range records {
		if !rec.InCooldown(now) {
			continue
		}
		total := cooldown.Duration(rec.UsageCount)
		remaining := rec.CooldownExpiresAt.Sub(now)
		snaps = append(snaps, Snapshot{
			Package:   rec.Package,
			Remaining: remaining,
			Total:     total,
			Progress:  cooldown.Progress(remaining, total),
		})
	}
	return snaps, nil
}
