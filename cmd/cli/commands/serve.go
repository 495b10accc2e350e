package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/inferloop/synthetizer/internal/server"
)

type ServeOptions struct {
	Host    string
	Port    int
	Metrics bool
}

func NewServeCmd(load EnvironmentLoader) *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the sampling API over HTTP",
		Example: `  synthetizer serve --port 8080
  SYNTH_SAMPLING_SEED=7 synthetizer serve --metrics=false`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := load()
			if err != nil {
				return err
			}

			config := env.Config.Server
			if cmd.Flags().Changed("host") {
				config.Host = opts.Host
			}
			if cmd.Flags().Changed("port") {
				config.Port = opts.Port
			}
			if cmd.Flags().Changed("metrics") {
				config.EnableMetrics = opts.Metrics
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, env, &config)
		},
	}

	cmd.Flags().StringVar(&opts.Host, "host", "", "Listen address")
	cmd.Flags().IntVar(&opts.Port, "port", 0, "Listen port")
	cmd.Flags().BoolVar(&opts.Metrics, "metrics", true, "Serve Prometheus metrics on the metrics port")

	return cmd
}

func runServe(ctx context.Context, env *Environment, config *server.Config) error {
	srv, err := server.NewServer(config, &env.Config.Sampling, env.Logger)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		return srv.Stop(context.Background())
	})

	return g.Wait()
}
