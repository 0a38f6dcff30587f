package app

import (
	"testing"
	"time"
)

func TestStatsCommand_Registration(t *testing.T) {
	found := false
	for _, cmd := range RootCmd.Commands() {
		if cmd.Name() == "stats" {
			found = true
			break
		}
	}

	if !found {
		t.Error("stats command not registered with root command")
	}
}

func TestStatsCommand_Subcommands(t *testing.T) {
	expected := map[string]bool{"hours": false, "apps": false}
	for _, cmd := range statsCmd.Commands() {
		if _, ok := expected[cmd.Name()]; ok {
			expected[cmd.Name()] = true
		}
	}
	for name, found := range expected {
		if !found {
			t.Errorf("stats subcommand %s not registered", name)
		}
	}
}

func TestStatsCommand_FlagDefaults(t *testing.T) {
	daysFlag := statsCmd.PersistentFlags().Lookup("days")
	if daysFlag == nil {
		t.Fatal("days flag not found")
	}
	if daysFlag.DefValue != "7" {
		t.Errorf("days flag default: got %s, want 7", daysFlag.DefValue)
	}

	realFlag := statsCmd.PersistentFlags().Lookup("real")
	if realFlag == nil {
		t.Fatal("real flag not found")
	}
	if realFlag.DefValue != "true" {
		t.Errorf("real flag default: got %s, want true", realFlag.DefValue)
	}
}

func TestParseStatsDay(t *testing.T) {
	oldDay := statsDay
	defer func() { statsDay = oldDay }()

	statsDay = "2026-08-29"
	day, err := parseStatsDay()
	if err != nil {
		t.Fatalf("parseStatsDay() failed: %v", err)
	}
	want := time.Date(2026, 8, 29, 0, 0, 0, 0, time.Local)
	if !day.Equal(want) {
		t.Errorf("parseStatsDay() = %v; want %v", day, want)
	}

	statsDay = "29/08/2026"
	if _, err := parseStatsDay(); err == nil {
		t.Error("parseStatsDay() should reject non-ISO dates")
	}

	statsDay = ""
	day, err = parseStatsDay()
	if err != nil {
		t.Fatalf("parseStatsDay() failed: %v", err)
	}
	if time.Since(day) > time.Minute {
		t.Errorf("parseStatsDay() with no flag should be now, got %v", day)
	}
}
