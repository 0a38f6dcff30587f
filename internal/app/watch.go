package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/quietshelf/unhook/internal/config"
	"github.com/quietshelf/unhook/internal/journal"
	"github.com/quietshelf/unhook/internal/output"
	"github.com/quietshelf/unhook/internal/prefs"
	"github.com/quietshelf/unhook/internal/recorder"
	"github.com/quietshelf/unhook/internal/scheduler"
)

var (
	watchDaemon      bool
	watchDaemonChild bool
	watchPIDFile     string
	watchLogFile     string
	watchStop        bool
	watchStatus      bool

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Run the journal tailer and daily cooldown reset",
		Long: `Run the unhook background loops:

  • Journal tailer: ingests launcher foreground events into the database
    (when journal.enabled is set in the config)
  • Daily reset: clears all cooldowns at the configured time (reset.time)
  • Cooldown view: in foreground mode, live progress bars for every app
    currently in cooldown

Watch modes:
  • Foreground (default): run in current terminal with Ctrl+C to stop
  • Daemon: run as a detached background process
  • Stop: stop a running daemon`,
		Example: `  # Run in foreground (Ctrl+C to stop)
  unhook watch

  # Run as background daemon
  unhook watch --daemon

  # Stop running daemon
  unhook watch --stop

  # Is the daemon running?
  unhook watch --status`,
		RunE: runWatch,
	}
)

func init() {
	watchCmd.Flags().BoolVar(&watchDaemon, "daemon", false, "run as background daemon")
	watchCmd.Flags().BoolVar(&watchDaemonChild, "daemon-child", false, "internal flag for daemon child process")
	watchCmd.Flags().StringVar(&watchPIDFile, "pid-file", "", "PID file path (default: ~/.local/state/unhook/watch.pid)")
	watchCmd.Flags().StringVar(&watchLogFile, "log-file", "", "log file path (default: ~/.local/state/unhook/watch.log)")
	watchCmd.Flags().BoolVar(&watchStop, "stop", false, "stop running daemon")
	watchCmd.Flags().BoolVar(&watchStatus, "status", false, "report daemon status")

	// Hide the internal daemon-child flag from help
	watchCmd.Flags().MarkHidden("daemon-child")

	RootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	// Get default paths if not specified
	if watchPIDFile == "" {
		defaultPID, err := getDefaultPIDFile()
		if err != nil {
			return fmt.Errorf("failed to get default PID file path: %w", err)
		}
		watchPIDFile = defaultPID
	}

	if watchLogFile == "" {
		defaultLog, err := getDefaultLogFile()
		if err != nil {
			return fmt.Errorf("failed to get default log file path: %w", err)
		}
		watchLogFile = defaultLog
	}

	if watchStop {
		return stopWatchDaemon()
	}
	if watchStatus {
		return reportWatchStatus()
	}
	if watchDaemon {
		return startWatchDaemon()
	}

	return runWatchLoops(!watchDaemonChild)
}

func stopWatchDaemon() error {
	running, err := journal.IsDaemonRunning(watchPIDFile)
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}
	if !running {
		fmt.Println("Daemon is not running")
		return nil
	}

	if err := journal.StopDaemon(watchPIDFile); err != nil {
		return fmt.Errorf("failed to stop daemon: %w", err)
	}
	fmt.Println("✓ Daemon stopped")
	return nil
}

func reportWatchStatus() error {
	running, err := journal.IsDaemonRunning(watchPIDFile)
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}
	if running {
		fmt.Println("Daemon is running")
	} else {
		fmt.Println("Daemon is not running")
	}
	return nil
}

func startWatchDaemon() error {
	if err := journal.StartDaemon(watchPIDFile, watchLogFile); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}

	fmt.Println("✓ Daemon started")
	fmt.Printf("  PID file: %s\n", watchPIDFile)
	fmt.Printf("  Log file: %s\n", watchLogFile)
	fmt.Printf("\nTo stop: unhook watch --stop\n")
	return nil
}

// runWatchLoops runs the tailer, the reset scheduler, and (in foreground
// mode) the live cooldown view until SIGTERM/SIGINT.
func runWatchLoops(foreground bool) error {
	cfgManagerPath := cfgPath
	if cfgManagerPath == "" {
		var err error
		cfgManagerPath, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}
	manager := config.NewManager(cfgManagerPath)

	cfg, err := manager.Load()
	if err != nil {
		return err
	}
	logger := buildLogger(cfg)

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	// Journal tailer, only when the launcher writes a journal.
	if cfg.Journal.Enabled {
		path, err := journalPath(cfg)
		if err != nil {
			return err
		}
		tailer, err := journal.NewTailer(st, path, parseDurationOr(cfg.Journal.FlushInterval, 30*time.Second), logger)
		if err != nil {
			return fmt.Errorf("failed to create journal tailer: %w", err)
		}
		if err := tailer.Start(); err != nil {
			return fmt.Errorf("failed to start journal tailer: %w", err)
		}
		defer tailer.Stop()
	} else {
		logger.Info().Msg("Journal disabled, statistics will use simulated data")
	}

	// Daily cooldown reset.
	appPrefs := prefs.New(cfg.Apps.Essential, cfg.Apps.Limited)
	rec := recorder.New(st, appPrefs, recorder.WithLogger(logger))

	resetSched, err := scheduler.NewResetScheduler(
		rec, cfg.Reset.Time, parseDurationOr(cfg.Reset.RetryBackoff, 5*time.Minute), logger)
	if err != nil {
		return fmt.Errorf("failed to create reset scheduler: %w", err)
	}
	resetSched.Start()
	defer resetSched.Stop()

	// Pick up essential/limited changes without a restart. Schedule changes
	// still need a restart.
	manager.OnChange(func(next *config.Config) {
		appPrefs.Update(next.Apps.Essential, next.Apps.Limited)
		logger.Info().Msg("Configuration reloaded")
	}, func(err error) {
		logger.Warn().Err(err).Msg("Configuration reload failed, keeping previous settings")
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	observer := scheduler.NewObserver(rec, logger)
	if foreground {
		fmt.Println("unhook watch running (press Ctrl+C to stop)...")
		view := output.NewLiveView()
		go observer.Watch(ctx, view.Render)
	} else {
		// Daemon mode has no terminal; log active cooldowns instead.
		go observer.Watch(ctx, func(snaps []scheduler.Snapshot) {
			for _, s := range snaps {
				logger.Debug().
					Str("package", s.Package).
					Dur("remaining", s.Remaining).
					Float64("progress", s.Progress).
					Msg("Cooldown active")
			}
		})
	}

	logger.Info().Msg("Watch loops started")

	// Wait for shutdown signal.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	sig := <-sigCh

	logger.Info().Str("signal", sig.String()).Msg("Shutting down")
	cancel()

	if !foreground {
		if err := journal.RemovePIDFile(watchPIDFile); err != nil {
			logger.Warn().Err(err).Msg("Failed to remove PID file")
		}
	}
	return nil
}

// parseDurationOr parses a duration string, falling back on empty or bad
// input.
func parseDurationOr(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
