package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	gobatch "github.com/chararch/gobatch-sample"
	"github.com/chararch/gobatch-sample/metrics"
	"github.com/chararch/gobatch-sample/sample"
	"github.com/chararch/gobatch-sample/web"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the admin api, metrics and the log files under /logs/",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			defer a.teardown()

			job := sample.NewJob(sample.WithListener(metrics.NewListener()))
			if err := gobatch.Register(job); err != nil {
				return err
			}
			defer gobatch.Unregister(job)

			server, err := a.newServer()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Start()
			}()
			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}
}

// newServer web server with the log resources of the loaded config mapped under /logs/**
func (a *app) newServer() (*web.Server, error) {
	locations, err := a.cfg.Locations()
	if err != nil {
		return nil, err
	}
	return web.NewServer(web.Options{Addr: a.cfg.Server.Addr, Logger: a.logger}, &sample.LogResources{Locations: locations})
}
