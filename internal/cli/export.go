package cli

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/cobra"

	"schedview/internal/app"
	"schedview/internal/config"
	"schedview/internal/ics"
	"schedview/internal/source"
)

var (
	exportAll    bool
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the schedule as an iCalendar file",
	Long: `Loads both resources, normalizes them and writes the final schedule
(or every track with --all) as VEVENTs. Writes to stdout unless --output is set.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := loadEnv(cmd.ErrOrStderr())
		if err != nil {
			return err
		}

		body := exportICS(cmd.Context(), env, exportAll)
		if exportOutput == "" || exportOutput == "-" {
			_, err := cmd.OutOrStdout().Write([]byte(body))
			return err
		}
		if err := os.WriteFile(exportOutput, []byte(body), 0o644); err != nil {
			return goerr.Wrap(err, "write export", goerr.V("path", exportOutput))
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().BoolVar(&exportAll, "all", false, "export every track, not just the final schedule")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(exportCmd)
}

func exportICS(ctx context.Context, env *app.Env, all bool) string {
	stage := newStage(env)
	source.Load(ctx, env.Fetcher(), env.Locations(), stage)
	return ics.Export(stage.Dataset().Items, ics.ExportOptions{
		All:   all,
		Name:  "schedview",
		Stamp: env.Clock.Now(),
	})
}

// peekConfig reads the config file without creating it or touching logging.
func peekConfig() (*config.Config, error) {
	if _, err := os.Stat(configPath); err != nil {
		return nil, err
	}
	return config.Load(configPath)
}
