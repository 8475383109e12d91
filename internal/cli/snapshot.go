package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"schedview/internal/app"
	"schedview/internal/capture"
	appLog "schedview/internal/log"
	"schedview/internal/snapshot"
	"schedview/internal/source"
	"schedview/internal/web"
)

var snapshotOutput string

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Render the timeline page to a PNG once and exit",
	Long: `Loads both resources, serves the page on an ephemeral local port and captures
it with headless Chromium once the timeline reports ready.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := loadEnv(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		if snapshotOutput != "" {
			env.Config.Snapshot.Output = snapshotOutput
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return snapshotOnce(ctx, env, nil)
	},
}

func init() {
	snapshotCmd.Flags().StringVarP(&snapshotOutput, "output", "o", "", "PNG output path (overrides snapshot.output)")
	rootCmd.AddCommand(snapshotCmd)
}

// snapshotOnce loads the data, serves it on 127.0.0.1:0 and captures the page.
func snapshotOnce(ctx context.Context, env *app.Env, fn snapshot.CaptureFunc) error {
	stage := newStage(env)
	source.Load(ctx, env.Fetcher(), env.Locations(), stage)

	srv := web.NewServer(env, stage)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return goerr.Wrap(err, "listen for snapshot server")
	}
	httpSrv := &http.Server{Handler: srv.Handler()}

	opts := snapshot.OptionsFromConfig(env.Config)
	if env.Config.Snapshot.URL == "" {
		opts.URL = "http://" + ln.Addr().String() + "/"
	}
	if fn == nil {
		fn = capture.CaptureTimelinePNG
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return goerr.Wrap(err, "snapshot server failed")
		}
		return nil
	})
	g.Go(func() error {
		defer func() { _ = httpSrv.Close() }()
		return fn(gctx, opts)
	})
	if err := g.Wait(); err != nil {
		return err
	}
	appLog.Info("snapshot complete", "output", opts.OutputPath)
	return nil
}
