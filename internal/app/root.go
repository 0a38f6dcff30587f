package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	dbPath  string
	cfgPath string

	// RootCmd is the root command for unhook
	RootCmd = &cobra.Command{
		Use:   "unhook",
		Short: "Distraction-limiting launcher core with escalating cooldowns",
		Long: `unhook tracks app launches and applies an escalating cooldown to the
apps you have marked as limited: each consecutive use doubles the wait
before the app opens again (8s, 16s, 32s, ...). Essential apps are never
delayed. All cooldowns clear once a day at a configurable time, while
usage counts are kept.

Quick Start:
  1. List your limited apps in ~/.config/unhook/config.yaml
  2. unhook watch --daemon   # journal ingestion + daily reset
  3. Wire your launcher to call 'unhook record <package>' on launch
  4. unhook stats            # see where the time goes

Features:
  • Escalating per-app cooldowns with daily reset
  • Foreground-time tracking from the launcher event journal
  • Daily, hourly, and per-app usage statistics
  • Deterministic simulated statistics when no journal is available

Examples:
  # Record a launch and print the cooldown verdict
  unhook record com.instagram.android

  # Is the app currently locked?
  unhook check com.instagram.android

  # Daily summaries for the last week
  unhook stats --days 7

  # Clear all cooldowns now
  unhook reset`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := getDBPath()
			if _, err := os.Stat(path); os.IsNotExist(err) {
				fmt.Println("unhook: distraction-limiting launcher core")
				fmt.Println()
				fmt.Println("Run 'unhook record <package>' to start tracking.")
				fmt.Println("Run 'unhook --help' for the full reference.")
			} else {
				fmt.Println("unhook: distraction-limiting launcher core")
				fmt.Println()
				fmt.Println("Tip: Run 'unhook status' to check tracking status.")
				fmt.Println("     Run 'unhook apps' to see recorded usage.")
				fmt.Println("     Run 'unhook --help' for all commands.")
			}
			return nil
		},
	}
)

func init() {
	// Global flags
	RootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (default: ~/.local/share/unhook/unhook.db)")
	RootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file path (default: ~/.config/unhook/config.yaml)")

	// Enable cobra's built-in suggestion feature for unknown subcommands
	RootCmd.SuggestionsMinimumDistance = 2
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}
