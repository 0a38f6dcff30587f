package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear all active cooldowns now",
	Long: `Immediately clear every active cooldown, the same operation the daily
scheduler performs. Usage counts are kept, so the next use of a limited
app continues the escalation ladder where it left off.`,
	Example: `  unhook reset`,
	RunE:    runReset,
}

func init() {
	RootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := buildRecorder(st, cfg).ResetAllCooldowns(); err != nil {
		return fmt.Errorf("failed to reset cooldowns: %w", err)
	}

	fmt.Println("✓ All cooldowns cleared")
	return nil
}
