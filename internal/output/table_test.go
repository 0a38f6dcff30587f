package output

import (
	"strings"
	"testing"
	"time"

	"github.com/quietshelf/unhook/internal/aggregator"
	"github.com/quietshelf/unhook/internal/store"
)

func TestRenderRecordTable_Empty(t *testing.T) {
	got := RenderRecordTable(nil, time.Now())
	if !strings.Contains(got, "No usage recorded") {
		t.Errorf("empty table output = %q", got)
	}
}

func TestRenderRecordTable_SortsAndMarksCooldown(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	expiry := now.Add(32 * time.Second)

	records := []*store.UsageRecord{
		{Package: "com.whatsapp", UsageCount: 2, LastUsedAt: now.Add(-time.Hour)},
		{Package: "com.instagram.android", UsageCount: 5, LastUsedAt: now.Add(-time.Minute), CooldownExpiresAt: &expiry},
	}

	got := RenderRecordTable(records, now)
	lines := strings.Split(strings.TrimSpace(got), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + separator + 2 rows, got %d lines:\n%s", len(lines), got)
	}

	// Higher usage count first.
	if !strings.Contains(lines[2], "com.instagram.android") {
		t.Errorf("first row should be instagram: %q", lines[2])
	}
	if !strings.Contains(lines[2], "locked 32s") {
		t.Errorf("instagram row should show remaining cooldown: %q", lines[2])
	}
	if !strings.Contains(lines[3], "ready") {
		t.Errorf("whatsapp row should be ready: %q", lines[3])
	}
}

func TestRenderDailyTable(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	summaries := []*aggregator.DailySummary{
		{
			Date:              time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC),
			ScreenTime:        2*time.Hour + 13*time.Minute,
			AppOpens:          42,
			Notifications:     80,
			Unlocks:           25,
			ProductivityScore: 0.65,
		},
	}

	got := RenderDailyTable(summaries)
	if !strings.Contains(got, "2026-08-29") {
		t.Errorf("missing date: %q", got)
	}
	if !strings.Contains(got, "2h 13m") {
		t.Errorf("missing screen time: %q", got)
	}
	if !strings.Contains(got, "65%") {
		t.Errorf("missing productivity score: %q", got)
	}
}

func TestRenderHourlyTable(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	day := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	hours := []*aggregator.HourlySummary{
		{Hour: 10, ScreenTime: 30 * time.Minute, AppOpens: 3, Productive: 10 * time.Minute, Distracting: 20 * time.Minute},
	}

	got := RenderHourlyTable(hours, day)
	if !strings.Contains(got, "10:00") {
		t.Errorf("missing hour row: %q", got)
	}
	if !strings.Contains(got, "30m") {
		t.Errorf("missing screen time: %q", got)
	}

	empty := RenderHourlyTable(nil, day)
	if !strings.Contains(empty, "No activity on 2026-08-29") {
		t.Errorf("empty output = %q", empty)
	}
}

func TestRenderAppTable(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	apps := []*aggregator.AppSummary{
		{Package: "com.whatsapp", ScreenTime: 50 * time.Minute, Opens: 7, Productive: true, Category: aggregator.CategoryCommunication},
		{Package: "com.instagram.android", ScreenTime: 10 * time.Minute, Opens: 4, Productive: false, Category: aggregator.CategorySocial},
	}

	got := RenderAppTable(apps)
	if !strings.Contains(got, "communication") && !strings.Contains(got, "Communication") {
		t.Errorf("missing category: %q", got)
	}
	if !strings.Contains(got, "productive") {
		t.Errorf("missing productive marker: %q", got)
	}
	if !strings.Contains(got, "distracting") {
		t.Errorf("missing distracting marker: %q", got)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0s"},
		{-5 * time.Second, "0s"},
		{32 * time.Second, "32s"},
		{45 * time.Minute, "45m"},
		{2*time.Hour + 13*time.Minute, "2h 13m"},
		{3 * time.Hour, "3h 0m"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q; want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatRelativeTime_Zero(t *testing.T) {
	if got := formatRelativeTime(time.Time{}); got != "never" {
		t.Errorf("formatRelativeTime(zero) = %q; want \"never\"", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("com.example.verylongpackagename", 10); got != "com.exa..." {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate() = %q", got)
	}
}
