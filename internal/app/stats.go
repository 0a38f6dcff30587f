package app

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/quietshelf/unhook/internal/aggregator"
	"github.com/quietshelf/unhook/internal/output"
)

var (
	statsDays int
	statsDay  string
	statsReal bool

	statsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Show daily usage statistics",
		Long: `Display daily usage summaries: screen time, app opens, notifications,
unlocks, and a productivity score per day.

Real numbers come from the foreground-event journal when it is enabled and
has data; otherwise plausible simulated numbers are shown so the views stay
populated. Notification and unlock counts are always simulated, there is no
local source for them.`,
		Example: `  # Last 7 days
  unhook stats --days 7

  # Hour-by-hour breakdown for a specific day
  unhook stats hours --day 2026-08-29

  # Per-app breakdown for today
  unhook stats apps`,
		RunE: runStats,
	}

	statsHoursCmd = &cobra.Command{
		Use:   "hours",
		Short: "Show an hour-by-hour breakdown for one day",
		RunE:  runStatsHours,
	}

	statsAppsCmd = &cobra.Command{
		Use:   "apps",
		Short: "Show per-app usage for one day",
		RunE:  runStatsApps,
	}
)

func init() {
	statsCmd.PersistentFlags().IntVar(&statsDays, "days", 7, "number of days to show")
	statsCmd.PersistentFlags().StringVar(&statsDay, "day", "", "day to inspect (YYYY-MM-DD, default: today)")
	statsCmd.PersistentFlags().BoolVar(&statsReal, "real", true, "prefer real journal data over simulated")

	statsCmd.AddCommand(statsHoursCmd)
	statsCmd.AddCommand(statsAppsCmd)
	RootCmd.AddCommand(statsCmd)
}

// statsAggregator builds the aggregator honoring both the config's
// stats.prefer_real and the --real flag.
func statsAggregator(cmd *cobra.Command) (*aggregator.Aggregator, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	preferReal := cfg.Stats.PreferReal
	if cmd.Flags().Changed("real") || cmd.InheritedFlags().Changed("real") {
		preferReal = statsReal
	}

	st, err := openStore()
	if err != nil {
		return nil, nil, err
	}

	return buildAggregator(st, cfg, preferReal), func() { st.Close() }, nil
}

// parseStatsDay resolves the --day flag, defaulting to today.
func parseStatsDay() (time.Time, error) {
	if statsDay == "" {
		return time.Now(), nil
	}
	day, err := time.ParseInLocation("2006-01-02", statsDay, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --day %q (want YYYY-MM-DD): %w", statsDay, err)
	}
	return day, nil
}

func runStats(cmd *cobra.Command, args []string) error {
	if statsDays < 1 {
		return fmt.Errorf("--days must be at least 1")
	}

	agg, closeStore, err := statsAggregator(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	fmt.Print(output.RenderDailyTable(agg.DailySummaries(statsDays)))
	return nil
}

func runStatsHours(cmd *cobra.Command, args []string) error {
	day, err := parseStatsDay()
	if err != nil {
		return err
	}

	agg, closeStore, err := statsAggregator(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	fmt.Print(output.RenderHourlyTable(agg.HourlyBreakdown(day), day))
	return nil
}

func runStatsApps(cmd *cobra.Command, args []string) error {
	day, err := parseStatsDay()
	if err != nil {
		return err
	}

	agg, closeStore, err := statsAggregator(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	fmt.Print(output.RenderAppTable(agg.PerAppSummary(day)))
	return nil
}
