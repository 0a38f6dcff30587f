package app

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <package>",
	Short: "Show the current cooldown state of a package",
	Long: `Check whether the given package is currently in cooldown and how long
remains. A package that was never recorded is reported as ready.`,
	Example: `  # Is instagram locked right now?
  unhook check com.instagram.android`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	RootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
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

	rec := buildRecorder(st, cfg)
	locked, err := rec.InCooldown(pkg)
	if err != nil {
		return fmt.Errorf("failed to check cooldown: %w", err)
	}

	if !locked {
		fmt.Printf("%s is ready\n", pkg)
		return nil
	}

	remaining, err := rec.Remaining(pkg)
	if err != nil {
		return fmt.Errorf("failed to check cooldown: %w", err)
	}
	fmt.Printf("%s is locked for %s\n", pkg, remaining.Round(time.Second))
	return nil
}
