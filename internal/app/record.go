package app

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var recordCmd = &cobra.Command{
	Use:   "record <package>",
	Short: "Record an app launch and print the cooldown verdict",
	Long: `Record one launch of the given package.

The first recorded use of a package never applies a cooldown. Every use
after that doubles the cooldown for limited apps: 8s on the second use,
16s on the third, and so on. Essential apps and apps not listed in the
config are counted but never locked.

The launcher shell is expected to call this on every app launch and honor
the printed verdict.`,
	Example: `  # Record a launch
  unhook record com.instagram.android`,
	Args: cobra.ExactArgs(1),
	RunE: runRecord,
}

func init() {
	RootCmd.AddCommand(recordCmd)
}

func runRecord(cmd *cobra.Command, args []string) error {
	pkg := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	rec, err := buildRecorder(st, cfg).RecordUsage(pkg)
	if err != nil {
		return fmt.Errorf("failed to record usage: %w", err)
	}

	now := time.Now()
	if rec.InCooldown(now) {
		remaining := rec.CooldownExpiresAt.Sub(now).Round(time.Second)
		fmt.Printf("%s locked for %s (use #%d)\n", pkg, remaining, rec.UsageCount)
		return nil
	}

	fmt.Printf("%s recorded (use #%d, no cooldown)\n", pkg, rec.UsageCount)
	return nil
}
