package journal

import (
	"time"

	"github.com/quietshelf/unhook/internal/store"
)

// StoreSource exposes the ingested journal events as the aggregator's event
// source and the recorder's foreground-time source. "Access granted" means
// the journal is enabled in config and its store answers.
type StoreSource struct {
	store   *store.Store
	enabled bool
}

// NewStoreSource creates a source over the given store. enabled reflects the
// journal.enabled config flag.
func NewStoreSource(st *store.Store, enabled bool) *StoreSource {
	return &StoreSource{store: st, enabled: enabled}
}

// Granted reports whether real usage data is available.
func (s *StoreSource) Granted() bool {
	if !s.enabled || s.store == nil {
		return false
	}
	// The store must be initialized before it can answer event queries.
	_, err := s.store.GetEventCount()
	return err == nil
}

// Events returns transition events in [start, end) ordered by timestamp.
func (s *StoreSource) Events(start, end time.Time) ([]*store.ForegroundEvent, error) {
	return s.store.GetForegroundEvents(start, end)
}

// ForegroundTotals returns cumulative foreground time per package over the
// window, from paired foreground/background events.
func (s *StoreSource) ForegroundTotals(start, end time.Time) (map[string]time.Duration, error) {
	events, err := s.store.GetForegroundEvents(start, end)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]time.Duration)
	open := make(map[string]time.Time)

	for _, ev := range events {
		switch ev.EventType {
		case store.EventForeground:
			open[ev.Package] = ev.Timestamp
		case store.EventBackground:
			fgStart, ok := open[ev.Package]
			if !ok {
				continue
			}
			if ev.Timestamp.After(fgStart) {
				totals[ev.Package] += ev.Timestamp.Sub(fgStart)
			}
			delete(open, ev.Package)
		}
	}

	return totals, nil
}
