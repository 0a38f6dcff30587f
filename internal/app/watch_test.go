package app

import (
	"testing"
	"time"
)

func TestWatchCommand_Flags(t *testing.T) {
	flags := []string{"daemon", "stop", "status", "pid-file", "log-file"}

	for _, name := range flags {
		if watchCmd.Flags().Lookup(name) == nil {
			t.Errorf("flag %s not defined", name)
		}
	}
}

func TestWatchCommand_DaemonChildHidden(t *testing.T) {
	flag := watchCmd.Flags().Lookup("daemon-child")
	if flag == nil {
		t.Fatal("daemon-child flag not defined")
	}
	if !flag.Hidden {
		t.Error("daemon-child flag should be hidden from help")
	}
}

func TestParseDurationOr(t *testing.T) {
	tests := []struct {
		in       string
		fallback time.Duration
		want     time.Duration
	}{
		{"45s", time.Minute, 45 * time.Second},
		{"", time.Minute, time.Minute},
		{"not-a-duration", time.Minute, time.Minute},
		{"-5s", time.Minute, time.Minute},
	}

	for _, tt := range tests {
		if got := parseDurationOr(tt.in, tt.fallback); got != tt.want {
			t.Errorf("parseDurationOr(%q) = %v; want %v", tt.in, got, tt.want)
		}
	}
}
