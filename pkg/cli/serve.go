package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/dakala/h5p-xapi/pkg/cli/config"
	httpctrl "github.com/dakala/h5p-xapi/pkg/controller/http"
	"github.com/dakala/h5p-xapi/pkg/metrics"
	"github.com/dakala/h5p-xapi/pkg/usecase"
	"github.com/dakala/h5p-xapi/pkg/utils/logging"
	"github.com/dakala/h5p-xapi/pkg/utils/safe"
)

func cmdServe() *cli.Command {
	var addr string
	var ingestToken string
	var repoCfg config.Repository
	var trackingCfg config.Tracking

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("H5P_XAPI_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "ingest-token",
			Usage:       "Shared bearer token the browser listener must present",
			Required:    true,
			Sources:     cli.EnvVars("H5P_XAPI_INGEST_TOKEN"),
			Destination: &ingestToken,
		},
	}

	// Add shared config flags
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, trackingCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := trackingCfg.Configure(); err != nil {
				return goerr.Wrap(err, "failed to load tracking configuration")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			m := metrics.New()
			uc := usecase.New(repo, trackingCfg.Normalizer(),
				usecase.WithRetainRaw(trackingCfg.RetainRaw),
				usecase.WithMetrics(m),
			)
			if trackingCfg.RetainRaw {
				logging.Default().Info("Raw statement retention enabled")
			}

			handler := httpctrl.New(uc,
				httpctrl.WithIngestToken(ingestToken),
				httpctrl.WithMetrics(m.Handler()),
				httpctrl.WithListenerSettings(httpctrl.ListenerSettings{
					Debug:               trackingCfg.Debug,
					CaptureAllTypes:     trackingCfg.CaptureAllTypes,
					CaptureAllowedTypes: trackingCfg.CaptureAllowedTypes,
				}),
			)

			server := &http.Server{
				Addr:              addr,
				Handler:           handler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
