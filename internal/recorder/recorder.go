// Package recorder orchestrates launch tracking: it persists per-package
// usage counts and applies the escalating cooldown to limited apps.
package recorder

import (
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/quietshelf/unhook/internal/cooldown"
	"github.com/quietshelf/unhook/internal/store"
)

// lockStripes bounds the number of per-package mutexes. Launches of the same
// package serialize on one stripe; unrelated packages almost always proceed
// concurrently.
const lockStripes = 64

// PreferenceSource supplies the essential/limited partition. The recorder
// only reads it.
type PreferenceSource interface {
	IsLimited(pkg string) bool
}

// ForegroundSource provides cumulative observed foreground time per package.
// Implementations are best-effort; the recorder swallows their failures.
type ForegroundSource interface {
	ForegroundTotals(start, end time.Time) (map[string]time.Duration, error)
}

// Recorder is the write side of the usage ledger.
type Recorder struct {
	store  *store.Store
	prefs  PreferenceSource
	source ForegroundSource // nil when no journal is configured
	logger zerolog.Logger
	now    func() time.Time
	locks  [lockStripes]sync.Mutex
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

// WithForegroundSource enables opportunistic foreground-time refresh after
// each recorded launch.
func WithForegroundSource(src ForegroundSource) Option {
	return func(r *Recorder) { r.source = src }
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Recorder) { r.logger = logger }
}

// New creates a Recorder backed by the given store and preference source.
func New(st *store.Store, prefs PreferenceSource, opts ...Option) *Recorder {
	r := &Recorder{
		store:  st,
		prefs:  prefs,
		logger: zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With().Str("component", "recorder").Logger()
	return r
}

func (r *Recorder) lockFor(pkg string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(pkg))
	return &r.locks[h.Sum32()%lockStripes]
}

// RecordUsage records one launch of the package and returns the updated
// record. The first-ever recorded use never applies a cooldown. Subsequent
// uses of a limited package lock it for cooldown.Duration(newCount).
//
// The read-modify-write is serialized per package, so two concurrent launches
// of the same package cannot both observe the pre-increment count. Storage
// failures are returned to the caller, which may retry the whole operation.
func (r *Recorder) RecordUsage(pkg string) (*store.UsageRecord, error) {
	mu := r.lockFor(pkg)
	mu.Lock()
	rec, err := r.recordLocked(pkg)
	mu.Unlock()
	if err != nil {
		return nil, err
	}

	// Opportunistic foreground-time refresh. Best-effort: a journal failure
	// must never fail the launch write.
	r.refreshForeground()

	return rec, nil
}

func (r *Recorder) recordLocked(pkg string) (*store.UsageRecord, error) {
	now := r.now()

	rec, err := r.store.GetUsageRecord(pkg)
	if err != nil {
		return nil, fmt.Errorf("record usage: %w", err)
	}

	if rec == nil {
		rec = &store.UsageRecord{
			Package:    pkg,
			LastUsedAt: now,
			UsageCount: 1,
		}
	} else {
		rec.UsageCount++
		rec.LastUsedAt = now

		if r.prefs.IsLimited(pkg) {
			expiry := now.Add(cooldown.Duration(rec.UsageCount))
			rec.CooldownExpiresAt = &expiry
		} else {
			rec.CooldownExpiresAt = nil
		}
	}

	if err := r.store.UpsertUsageRecord(rec); err != nil {
		return nil, fmt.Errorf("record usage: %w", err)
	}

	r.logger.Debug().
		Str("package", pkg).
		Int("usage_count", rec.UsageCount).
		Bool("in_cooldown", rec.InCooldown(now)).
		Msg("Launch recorded")

	return rec, nil
}

// refreshForeground raises stored foreground durations from the last 24 hours
// of journal observations. All failures are swallowed.
func (r *Recorder) refreshForeground() {
	if r.source == nil {
		return
	}

	now := r.now()
	totals, err := r.source.ForegroundTotals(now.Add(-24*time.Hour), now)
	if err != nil {
		r.logger.Debug().Err(err).Msg("Foreground refresh skipped")
		return
	}

	records, err := r.store.ListUsageRecords()
	if err != nil {
		r.logger.Debug().Err(err).Msg("Foreground refresh skipped")
		return
	}

	for _, rec := range records {
		observed, ok := totals[rec.Package]
		if !ok || observed <= rec.Foreground {
			continue
		}
		if err := r.store.UpdateForeground(rec.Package, observed); err != nil {
			r.logger.Debug().Err(err).Str("package", rec.Package).Msg("Foreground update failed")
		}
	}
}

// InCooldown reports whether the package is currently locked. A missing
// record means no cooldown.
func (r *Recorder) InCooldown(pkg string) (bool, error) {
	rec, err := r.store.GetUsageRecord(pkg)
	if err != nil {
		return false, err
	}
	if rec == nil {
		return false, nil
	}
	return rec.InCooldown(r.now()), nil
}

// Remaining returns the time left on the package's cooldown, or zero when it
// is not locked.
func (r *Recorder) Remaining(pkg string) (time.Duration, error) {
	rec, err := r.store.GetUsageRecord(pkg)
	if err != nil {
		return 0, err
	}
	if rec == nil || rec.CooldownExpiresAt == nil {
		return 0, nil
	}

	remaining := rec.CooldownExpiresAt.Sub(r.now())
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}

// Records returns all usage records.
func (r *Recorder) Records() ([]*store.UsageRecord, error) {
	return r.store.ListUsageRecords()
}

// ResetAllCooldowns clears every active cooldown. Usage counts are kept, so
// the backoff ladder keeps escalating across days.
func (r *Recorder) ResetAllCooldowns() error {
	if err := r.store.ClearAllCooldowns(); err != nil {
		return fmt.Errorf("reset cooldowns: %w", err)
	}
	r.logger.Info().Msg("All cooldowns cleared")
	return nil
}
