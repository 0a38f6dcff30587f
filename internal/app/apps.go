package app

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/quietshelf/unhook/internal/output"
)

var appsCmd = &cobra.Command{
	Use:   "apps",
	Short: "List all recorded apps with usage and cooldown state",
	Long: `Display every package the recorder has seen, with its usage count,
accumulated foreground time, last use, and current cooldown state.`,
	Example: `  unhook apps`,
	RunE:    runApps,
}

func init() {
	RootCmd.AddCommand(appsCmd)
}

func runApps(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	records, err := buildRecorder(st, cfg).Records()
	if err != nil {
		return fmt.Errorf("failed to list usage records: %w", err)
	}

	fmt.Print(output.RenderRecordTable(records, time.Now()))
	return nil
}
