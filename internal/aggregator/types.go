package aggregator

import "time"

// DailySummary aggregates one day of usage. Summaries are derived per query,
// never stored.
type DailySummary struct {
	Date          time.Time // start of day, local time
	ScreenTime    time.Duration
	AppOpens      int
	Notifications int
	Unlocks       int
	// ProductivityScore is productive time over total tracked time, in [0, 1].
	ProductivityScore float64
}

// HourlySummary aggregates one hour of one day. Hours with no activity are
// omitted from breakdowns.
type HourlySummary struct {
	Hour        int // 0-23
	ScreenTime  time.Duration
	AppOpens    int
	Productive  time.Duration
	Distracting time.Duration
}

// AppSummary aggregates one package's usage for a day.
type AppSummary struct {
	Package    string
	ScreenTime time.Duration
	Opens      int
	Productive bool
	Category   Category
}
