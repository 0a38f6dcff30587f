// Package aggregator turns raw foreground-transition events into daily and
// hourly usage summaries with a productivity score. When journal data is
// unavailable, disallowed, or empty, every query falls back to a simulated
// result; callers never see a storage or source error.
package aggregator

import (
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/quietshelf/unhook/internal/store"
)

// Source provides observed foreground/background transition events for a
// time window, plus whether event collection is available at all.
type Source interface {
	// Granted reports whether real usage data may be collected (the journal
	// is enabled and its store is reachable).
	Granted() bool
	// Events returns transition events in [start, end) ordered by timestamp.
	Events(start, end time.Time) ([]*store.ForegroundEvent, error)
}

// Aggregator computes usage statistics. All methods are safe for concurrent
// use and never return errors: any real-data failure resolves to simulated
// output.
type Aggregator struct {
	source     Source
	preferReal bool
	logger     zerolog.Logger
	now        func() time.Time

	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithSeed fixes the rng seed used by the simulated generator. Tests use
// this for reproducible output.
func WithSeed(seed int64) Option {
	return func(a *Aggregator) { a.rng = rand.New(rand.NewSource(seed)) }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(a *Aggregator) { a.logger = logger }
}

// New creates an Aggregator. source may be nil, in which case every query is
// simulated. preferReal=false forces simulated output even when real data
// would be available.
func New(source Source, preferReal bool, opts ...Option) *Aggregator {
	a := &Aggregator{
		source:     source,
		preferReal: preferReal,
		logger:     zerolog.Nop(),
		now:        time.Now,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With().Str("component", "aggregator").Logger()
	return a
}

func (a *Aggregator) intn(n int) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rng.Intn(n)
}

func (a *Aggregator) float64() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rng.Float64()
}

// useReal reports whether the real-data path should even be attempted.
func (a *Aggregator) useReal() bool {
	return a.preferReal && a.source != nil && a.source.Granted()
}

// dayStart truncates t to the start of its calendar day in local time.
func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// dayEvents fetches one day of events, or nil when the real path is
// unavailable or failed. A nil/empty result means "fall back to simulated".
func (a *Aggregator) dayEvents(day time.Time) []*store.ForegroundEvent {
	if !a.useReal() {
		return nil
	}

	start := dayStart(day)
	events, err := a.source.Events(start, start.AddDate(0, 0, 1))
	if err != nil {
		a.logger.Debug().Err(err).Time("day", start).Msg("Event query failed, using simulated data")
		return nil
	}
	return events
}

// sessions pairs each foreground event with the next background event for
// the same package. Unterminated sessions (no background event) are dropped.
type session struct {
	pkg        string
	start, end time.Time
}

func pairSessions(events []*store.ForegroundEvent) []session {
	var sessions []session
	open := make(map[string]time.Time)

	for _, ev := range events {
		switch ev.EventType {
		case store.EventForeground:
			open[ev.Package] = ev.Timestamp
		case store.EventBackground:
			start, ok := open[ev.Package]
			if !ok {
				continue
			}
			if ev.Timestamp.After(start) {
				sessions = append(sessions, session{pkg: ev.Package, start: start, end: ev.Timestamp})
			}
			delete(open, ev.Package)
		}
	}

	return sessions
}

func countOpens(events []*store.ForegroundEvent) int {
	opens := 0
	for _, ev := range events {
		if ev.EventType == store.EventForeground {
			opens++
		}
	}
	return opens
}

// DailySummaries returns up to daysBack summaries ordered most recent first.
// Simulated days may be skipped entirely, so fewer entries can come back.
func (a *Aggregator) DailySummaries(daysBack int) []*DailySummary {
	if daysBack <= 0 {
		return nil
	}

	if a.useReal() {
		var summaries []*DailySummary
		now := a.now()

		for i := 0; i < daysBack; i++ {
			day := dayStart(now.AddDate(0, 0, -i))
			events := a.dayEvents(day)
			if len(events) == 0 {
				continue
			}

			sessions := pairSessions(events)
			summaries = append(summaries, &DailySummary{
				Date:       day,
				ScreenTime: totalScreenTime(sessions),
				AppOpens:   countOpens(events),
				// No real source exists for these two; always simulated.
				Notifications:     a.simulatedNotifications(),
				Unlocks:           a.simulatedUnlocks(),
				ProductivityScore: productivityScore(sessions),
			})
		}

		if len(summaries) > 0 {
			return summaries
		}
	}

	return a.simulatedDailySummaries(daysBack)
}

// HourlyBreakdown returns per-hour usage for the day containing the given
// timestamp. Only hours with activity are present.
func (a *Aggregator) HourlyBreakdown(day time.Time) []*HourlySummary {
	events := a.dayEvents(day)
	if len(events) == 0 {
		return a.simulatedHourlyBreakdown()
	}

	var hours [24]HourlySummary
	for i := range hours {
		hours[i].Hour = i
	}

	for _, ev := range events {
		if ev.EventType == store.EventForeground {
			hours[ev.Timestamp.Hour()].AppOpens++
		}
	}

	for _, sess := range pairSessions(events) {
		productive := Categorize(sess.pkg).Productive()

		// Split the session across every hour it overlaps.
		cur := sess.start
		for cur.Before(sess.end) {
			hourEnd := time.Date(cur.Year(), cur.Month(), cur.Day(), cur.Hour(), 0, 0, 0, cur.Location()).Add(time.Hour)
			segEnd := hourEnd
			if sess.end.Before(hourEnd) {
				segEnd = sess.end
			}

			d := segEnd.Sub(cur)
			h := &hours[cur.Hour()]
			h.ScreenTime += d
			if productive {
				h.Productive += d
			} else {
				h.Distracting += d
			}

			cur = segEnd
		}
	}

	var out []*HourlySummary
	for i := range hours {
		if hours[i].ScreenTime > 0 || hours[i].AppOpens > 0 {
			h := hours[i]
			out = append(out, &h)
		}
	}

	if len(out) == 0 {
		return a.simulatedHourlyBreakdown()
	}
	return out
}

// TotalForegroundTime returns the total tracked screen time for the day.
func (a *Aggregator) TotalForegroundTime(day time.Time) time.Duration {
	events := a.dayEvents(day)
	if len(events) == 0 {
		return a.simulatedScreenTime()
	}

	if total := totalScreenTime(pairSessions(events)); total > 0 {
		return total
	}
	return a.simulatedScreenTime()
}

// AppOpenCount returns the number of app opens for the day.
func (a *Aggregator) AppOpenCount(day time.Time) int {
	events := a.dayEvents(day)
	if opens := countOpens(events); opens > 0 {
		return opens
	}
	return a.simulatedAppOpens()
}

// NotificationCount returns the notification count for the day. There is no
// real data source for notifications; the result is always simulated.
func (a *Aggregator) NotificationCount(day time.Time) int {
	return a.simulatedNotifications()
}

// UnlockCount returns the screen unlock count for the day. There is no real
// data source for unlocks; the result is always simulated.
func (a *Aggregator) UnlockCount(day time.Time) int {
	return a.simulatedUnlocks()
}

// ProductivityScore returns productive time over total tracked time for the
// day, in [0, 1].
func (a *Aggregator) ProductivityScore(day time.Time) float64 {
	events := a.dayEvents(day)
	if len(events) == 0 {
		return a.simulatedProductivityScore()
	}

	sessions := pairSessions(events)
	if totalScreenTime(sessions) == 0 {
		return a.simulatedProductivityScore()
	}
	return productivityScore(sessions)
}

// PerAppSummary returns per-package usage for the day, sorted by screen time
// descending.
func (a *Aggregator) PerAppSummary(day time.Time) []*AppSummary {
	events := a.dayEvents(day)
	if len(events) == 0 {
		return a.simulatedPerAppSummary()
	}

	totals := make(map[string]time.Duration)
	for _, sess := range pairSessions(events) {
		totals[sess.pkg] += sess.end.Sub(sess.start)
	}
	opens := make(map[string]int)
	for _, ev := range events {
		if ev.EventType == store.EventForeground {
			opens[ev.Package]++
		}
	}

	var summaries []*AppSummary
	for pkg, total := range totals {
		cat := Categorize(pkg)
		summaries = append(summaries, &AppSummary{
			Package:    pkg,
			ScreenTime: total,
			Opens:      opens[pkg],
			Productive: cat.Productive(),
			Category:   cat,
		})
	}

	if len(summaries) == 0 {
		return a.simulatedPerAppSummary()
	}

	sortByScreenTime(summaries)
	return summaries
}

func totalScreenTime(sessions []session) time.Duration {
	var total time.Duration
	for _, sess := range sessions {
		total += sess.end.Sub(sess.start)
	}
	return total
}

func productivityScore(sessions []session) float64 {
	var productive, distracting time.Duration
	for _, sess := range sessions {
		d := sess.end.Sub(sess.start)
		if Categorize(sess.pkg).Productive() {
			productive += d
		} else {
			distracting += d
		}
	}

	total := productive + distracting
	if total == 0 {
		return 0
	}

	score := float64(productive) / float64(total)
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func sortByScreenTime(summaries []*AppSummary) {
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].ScreenTime != summaries[j].ScreenTime {
			return summaries[i].ScreenTime > summaries[j].ScreenTime
		}
		return summaries[i].Package < summaries[j].Package
	})
}
