package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/quietshelf/unhook/internal/journal"
	"github.com/quietshelf/unhook/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check daemon status and tracking statistics",
	Long: `Display the current status of the unhook watch daemon and tracking
statistics.

Shows:
  • Daemon running status and PID
  • Database location and size
  • Number of apps being tracked and active cooldowns
  • Journal event counts and ingestion freshness
  • Data quality: whether statistics come from real or simulated data

This command helps verify that usage tracking is working correctly.`,
	Example: `  # Check status
  unhook status`,
	RunE: runStatus,
}

func init() {
	RootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	pidFile, err := getDefaultPIDFile()
	if err != nil {
		return fmt.Errorf("failed to get PID file path: %w", err)
	}

	path, err := getDBPath()
	if err != nil {
		return fmt.Errorf("failed to get database path: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	daemonRunning, err := journal.IsDaemonRunning(pidFile)
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}

	var pid int
	if daemonRunning {
		if pidData, err := os.ReadFile(pidFile); err == nil {
			pid, _ = strconv.Atoi(strings.TrimSpace(string(pidData)))
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Println("unhook is not set up - run 'unhook record <package>' to start tracking.")
		return nil
	}

	// Open database to gather statistics.
	var (
		trackedApps     int
		activeCooldowns int
		totalEvents     int
		trackingSince   time.Time
		dbSize          int64
	)

	st, err := store.New(path)
	if err == nil {
		defer st.Close()

		now := time.Now()
		if records, err := st.ListUsageRecords(); err == nil {
			trackedApps = len(records)
			for _, rec := range records {
				if rec.InCooldown(now) {
					activeCooldowns++
				}
			}
		}
		totalEvents, _ = st.GetEventCount()
		trackingSince, _ = st.GetFirstEventTime()
	}

	if fi, err := os.Stat(path); err == nil {
		dbSize = fi.Size()
	}

	const label = "%-14s"

	fmt.Println()

	// Daemon line
	if daemonRunning {
		fmt.Printf(label+"running (since %s, PID %d)\n", "Daemon:", daemonSince(pidFile), pid)
	} else {
		fmt.Printf(label+"stopped  (run 'unhook watch --daemon')\n", "Daemon:")
	}

	// Apps line
	fmt.Printf(label+"%d tracked · %d in cooldown · %d limited in config\n",
		"Apps:", trackedApps, activeCooldowns, len(cfg.Apps.Limited))

	// Journal line
	if cfg.Journal.Enabled {
		fmt.Printf(label+"enabled · %s events ingested\n", "Journal:", humanize.Comma(int64(totalEvents)))
		if daemonRunning && totalEvents == 0 {
			fmt.Printf("              ⚠ Daemon running but no events ingested. Check journal.path in the config.\n")
		}
	} else {
		fmt.Printf(label+"disabled (statistics are simulated)\n", "Journal:")
	}

	// Database line
	fmt.Printf(label+"%s · %s\n", "Database:", path, humanize.Bytes(uint64(dbSize)))

	// Data quality line
	var quality string
	switch {
	case !cfg.Journal.Enabled:
		quality = "SIMULATED (journal disabled)"
	case totalEvents == 0:
		quality = "SIMULATED (no journal data yet)"
	default:
		days := int(time.Since(trackingSince).Hours() / 24)
		quality = fmt.Sprintf("REAL (%d days of journal data)", days)
	}
	fmt.Printf(label+"%s\n", "Data quality:", quality)

	fmt.Println()
	return nil
}

// daemonSince returns a human-readable age of the PID file (proxy for daemon
// start time).
func daemonSince(pidFile string) string {
	fi, err := os.Stat(pidFile)
	if err != nil {
		return "unknown"
	}
	return humanize.Time(fi.ModTime())
}
