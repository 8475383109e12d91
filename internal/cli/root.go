package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"schedview/internal/app"
	"schedview/internal/config"
	appLog "schedview/internal/log"
)

var (
	// version is set by ldflags.
	version = "dev"

	configPath string
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:   "schedview",
	Short: "Layered on-call schedule timeline",
	Long: `schedview loads a user roster and a layered schedule document, normalizes
them into timeline tracks (layers, override layer, final schedule) and shows
them in a browser, in the terminal, as a PNG snapshot or as an iCalendar file.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string reported by "schedview version".
func SetVersion(v string) {
	version = v
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to config file (created with defaults if missing)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadEnv loads the config file, initializes logging to out and resolves the
// view environment.
func loadEnv(out io.Writer) (*app.Env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if debug {
		level = "debug"
	}
	if out == nil {
		out = os.Stderr
	}
	appLog.Init(appLog.Config{Level: level, Format: cfg.Log.Format, Output: out})

	env, err := app.NewEnv(cfg)
	if err != nil {
		return nil, err
	}

	appLog.Info("effective config",
		"config_path", configPath,
		"listen", cfg.Listen,
		"timezone", cfg.Timezone,
		"week_start", cfg.WeekStart,
		"granularity", cfg.View.Granularity,
		"anchor_date", cfg.View.AnchorDate,
		"snapshot_cron", cfg.Snapshot.Cron,
	)
	return env, nil
}
