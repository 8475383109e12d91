package cli

import (
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/cobra"

	"schedview/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Show the timeline in the terminal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		// stderr belongs to the screen; logs go to log.file or nowhere.
		logOut, closeLog, err := openTUILog()
		if err != nil {
			return err
		}
		defer closeLog()

		env, err := loadEnv(logOut)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return tui.Run(ctx, env)
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// openTUILog peeks at log.file before the full config load so the load
// itself is logged to the right place.
func openTUILog() (io.Writer, func(), error) {
	var path string
	if cfg, err := peekConfig(); err == nil {
		path = cfg.Log.File
	}
	if path == "" {
		return io.Discard, func() {}, nil
	}
	fp, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "open log file", goerr.V("path", path))
	}
	return fp, func() { _ = fp.Close() }, nil
}
