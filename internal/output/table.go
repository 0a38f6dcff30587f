// Package output provides terminal output utilities for unhook.
//
// This package includes:
//   - Table rendering for usage records, daily/hourly stats, and per-app summaries
//   - Cooldown progress bars for the watch view
//   - Human-readable formatting for durations and timestamps
//
// All table rendering functions use ASCII characters and ANSI color codes for
// terminal output.
package output

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/quietshelf/unhook/internal/aggregator"
	"github.com/quietshelf/unhook/internal/store"
)

// ANSI color codes for cooldown and productivity display
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// colorize wraps text in the given ANSI color code if color is enabled,
// otherwise returns the plain text.
func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// RenderRecordTable renders a table of usage records with their cooldown
// state at the given instant. Records are sorted by usage count descending.
func RenderRecordTable(records []*store.UsageRecord, now time.Time) string {
	if len(records) == 0 {
		return "No usage recorded yet.\n"
	}

	sorted := make([]*store.UsageRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].UsageCount != sorted[j].UsageCount {
			return sorted[i].UsageCount > sorted[j].UsageCount
		}
		return sorted[i].Package < sorted[j].Package
	})

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-32s %-6s %-12s %-16s %s\n",
		"Package", "Uses", "Screen Time", "Last Used", "Cooldown"))
	sb.WriteString(strings.Repeat("─", 84))
	sb.WriteString("\n")

	for _, rec := range sorted {
		var cooldownStr string
		if rec.InCooldown(now) {
			remaining := rec.CooldownExpiresAt.Sub(now).Round(time.Second)
			cooldownStr = colorize(colorRed, fmt.Sprintf("locked %s", formatDuration(remaining)))
		} else {
			cooldownStr = colorize(colorGreen, "ready")
		}

		sb.WriteString(fmt.Sprintf("%-32s %-6d %-12s %-16s %s\n",
			truncate(rec.Package, 32),
			rec.UsageCount,
			formatDuration(rec.Foreground),
			formatRelativeTime(rec.LastUsedAt),
			cooldownStr))
	}

	return sb.String()
}

// RenderDailyTable renders daily usage summaries, one row per day.
// Expects summaries pre-sorted by the aggregator (most recent first).
func RenderDailyTable(summaries []*aggregator.DailySummary) string {
	if len(summaries) == 0 {
		return "No usage data available.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-12s %-12s %-7s %-7s %-8s %s\n",
		"Date", "Screen Time", "Opens", "Notif", "Unlocks", "Focus"))
	sb.WriteString(strings.Repeat("─", 60))
	sb.WriteString("\n")

	for _, s := range summaries {
		scoreStr := fmt.Sprintf("%d%%", int(s.ProductivityScore*100))
		sb.WriteString(fmt.Sprintf("%-12s %-12s %-7d %-7d %-8d %s\n",
			s.Date.Format("2006-01-02"),
			formatDuration(s.ScreenTime),
			s.AppOpens,
			s.Notifications,
			s.Unlocks,
			colorize(scoreColor(s.ProductivityScore), scoreStr)))
	}

	return sb.String()
}

// RenderHourlyTable renders an hour-by-hour breakdown for one day.
// Hours with no activity are omitted by the aggregator and stay omitted here.
func RenderHourlyTable(hours []*aggregator.HourlySummary, day time.Time) string {
	if len(hours) == 0 {
		return fmt.Sprintf("No activity on %s.\n", day.Format("2006-01-02"))
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Hourly breakdown for %s\n\n", day.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("%-7s %-12s %-7s %-12s %s\n",
		"Hour", "Screen Time", "Opens", "Productive", "Distracting"))
	sb.WriteString(strings.Repeat("─", 56))
	sb.WriteString("\n")

	for _, h := range hours {
		sb.WriteString(fmt.Sprintf("%02d:00   %-12s %-7d %-12s %s\n",
			h.Hour,
			formatDuration(h.ScreenTime),
			h.AppOpens,
			colorize(colorGreen, formatDuration(h.Productive)),
			colorize(colorRed, formatDuration(h.Distracting))))
	}

	return sb.String()
}

// RenderAppTable renders per-app usage summaries.
// Expects summaries pre-sorted by the aggregator (screen time descending).
func RenderAppTable(apps []*aggregator.AppSummary) string {
	if len(apps) == 0 {
		return "No app usage available.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-32s %-15s %-12s %-7s %s\n",
		"App", "Category", "Screen Time", "Opens", "Kind"))
	sb.WriteString(strings.Repeat("─", 76))
	sb.WriteString("\n")

	for _, a := range apps {
		var kind string
		if a.Productive {
			kind = colorize(colorGreen, "productive")
		} else {
			kind = colorize(colorRed, "distracting")
		}

		sb.WriteString(fmt.Sprintf("%-32s %-15s %-12s %-7d %s\n",
			truncate(a.Package, 32),
			a.Category.String(),
			formatDuration(a.ScreenTime),
			a.Opens,
			kind))
	}

	return sb.String()
}

// scoreColor maps a productivity score to a tier color.
func scoreColor(score float64) string {
	switch {
	case score >= 0.7:
		return colorGreen
	case score >= 0.4:
		return colorYellow
	default:
		return colorRed
	}
}

// formatDuration renders a duration compactly: "2h 13m", "45m", "32s".
func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	d = d.Round(time.Second)

	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm", m)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// formatRelativeTime converts a timestamp to relative time (e.g. "2 days ago").
func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}

// truncate truncates a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
