package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/secmon-lab/riskdeck/pkg/cli/config"
	httpctrl "github.com/secmon-lab/riskdeck/pkg/controller/http"
	"github.com/secmon-lab/riskdeck/pkg/usecase"
	"github.com/secmon-lab/riskdeck/pkg/utils/errutil"
	"github.com/secmon-lab/riskdeck/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var maxUploadMB int
	var layoutCfg config.Layout
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("RISKDECK_ADDR"),
			Destination: &addr,
		},
		&cli.IntFlag{
			Name:        "max-upload-mb",
			Usage:       "Largest accepted workbook upload in MiB",
			Value:       32,
			Sources:     cli.EnvVars("RISKDECK_MAX_UPLOAD_MB"),
			Destination: &maxUploadMB,
		},
	}

	// Add shared config flags
	flags = append(flags, layoutCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP API server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ucOpts, err := layoutCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load workbook layout")
			}

			repo, err := repoCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}

			uc := usecase.New(repo, ucOpts...)

			handler := httpctrl.New(uc.Session,
				httpctrl.WithSchemaRegistry(uc.Registry()),
				httpctrl.WithMaxUploadSize(int64(maxUploadMB)<<20),
			)
			server := &http.Server{
				Addr:              addr,
				Handler:           handler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			return serve(ctx, server)
		},
	}
}

// serve runs server until ctx is cancelled or a termination signal arrives,
// then shuts it down gracefully
func serve(ctx context.Context, server *http.Server) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		logging.Default().Info("Starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errutil.Handle(ctx, goerr.Wrap(err, "failed to start server", goerr.V("addr", server.Addr)), "server stopped")
		}
		return nil
	})

	eg.Go(func() error {
		<-ctx.Done()
		logging.Default().Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return goerr.Wrap(err, "failed to shutdown server gracefully")
		}

		logging.Default().Info("Server shutdown completed")
		return nil
	})

	return eg.Wait()
}
