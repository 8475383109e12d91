package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"schedview/internal/app"
	appLog "schedview/internal/log"
	"schedview/internal/snapshot"
	"schedview/internal/source"
	"schedview/internal/timeline"
	"schedview/internal/web"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the timeline page and API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := loadEnv(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		if serveListen != "" {
			env.Config.Listen = serveListen
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return serve(ctx, env)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "HTTP listen address (overrides config if set)")
	rootCmd.AddCommand(serveCmd)
}

func newStage(env *app.Env) *timeline.Stage {
	return env.NewStage(func(ds timeline.Dataset) {
		appLog.Info("timeline mounted", "items", len(ds.Items), "groups", len(ds.Groups))
	})
}

func serve(ctx context.Context, env *app.Env) error {
	var sched *snapshot.Scheduler
	if spec := env.Config.Snapshot.Cron; spec != "" {
		var err error
		sched, err = snapshot.NewScheduler(spec, env.Location, snapshot.OptionsFromConfig(env.Config), nil)
		if err != nil {
			return err
		}
	}

	stage := newStage(env)
	srv := web.NewServer(env, stage)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		source.Load(ctx, env.Fetcher(), env.Locations(), stage)
		if !stage.Mounted() {
			appLog.Warn("timeline not mounted; no users were loaded")
		}
		return nil
	})
	g.Go(func() error {
		return srv.Run(ctx)
	})
	if sched != nil {
		sched.Start(ctx)
	}

	return g.Wait()
}
