package store

import "time"

// UsageRecord is the durable per-package usage ledger entry. One row exists
// per tracked package, created lazily on the first recorded launch.
type UsageRecord struct {
	Package    string
	LastUsedAt time.Time
	// UsageCount only ever increases. The daily cooldown reset clears
	// CooldownExpiresAt but never touches this counter, so backoff
	// durations keep escalating across days.
	UsageCount int
	// Foreground is the cumulative observed foreground time, refreshed
	// opportunistically from the event journal. Never decreased.
	Foreground time.Duration
	// CooldownExpiresAt is nil while the package is not locked. It is set
	// only for packages classified as limited.
	CooldownExpiresAt *time.Time
}

// InCooldown reports whether the record is locked at the given instant.
func (r *UsageRecord) InCooldown(now time.Time) bool {
	return r.CooldownExpiresAt != nil && r.CooldownExpiresAt.After(now)
}

// Event types recorded in the foreground_events table.
const (
	EventForeground = "foreground"
	EventBackground = "background"
)

// ForegroundEvent records a single app foreground/background transition as
// observed by the watch daemon's journal tailer.
type ForegroundEvent struct {
	Package   string
	EventType string // "foreground" or "background"
	Timestamp time.Time
}
