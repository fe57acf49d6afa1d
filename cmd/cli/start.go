package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flowbaker/hubspot-executor/internal/scheduler"
	"github.com/flowbaker/hubspot-executor/internal/server"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func NewStartCommand(opts *rootOptions) *cobra.Command {
	var noScheduler bool

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the executor HTTP server and the trigger scheduler",
		Long: `Start serves the executor API and, unless --no-scheduler is given, polls every
configured trigger on its schedule and publishes one workflow task per new record.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart(opts, noScheduler)
		},
	}

	cmd.Flags().BoolVar(&noScheduler, "no-scheduler", false, "Serve the HTTP API only")

	return cmd
}

func runStart(opts *rootOptions, noScheduler bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	container, err := opts.loadContainer()
	if err != nil {
		return err
	}

	cfg := container.Config

	log.Info().Msg("Starting executor service")

	if !noScheduler && len(cfg.Triggers) > 0 {
		resources, err := container.BuildRunner(ctx)
		if err != nil {
			return err
		}
		defer func() {
			if err := resources.Close(context.Background()); err != nil {
				log.Error().Err(err).Msg("Failed to release runner resources")
			}
		}()

		triggerScheduler := scheduler.NewScheduler(resources.Runner)

		for _, trigger := range cfg.Triggers {
			if err := triggerScheduler.Add(ctx, trigger); err != nil {
				return err
			}
		}

		triggerScheduler.Start()
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer stopCancel()

			if err := triggerScheduler.Stop(stopCtx); err != nil {
				log.Error().Err(err).Msg("Scheduler did not stop in time")
			}
		}()

		log.Info().Int("triggers", triggerScheduler.Len()).Msg("Trigger scheduler started")
	}

	app, err := server.NewHTTPServer(server.HTTPServerDependencies{
		ExecutorController:  container.ExecutorController,
		APIKey:              cfg.APIKey,
		APISigningPublicKey: cfg.APISigningPublicKey,
	})
	if err != nil {
		return err
	}

	log.Info().Str("address", cfg.HTTPAddress).Msg("HTTP server listening")

	if err := app.Listen(cfg.HTTPAddress, fiber.ListenConfig{
		GracefulContext:       ctx,
		DisableStartupMessage: true,
	}); err != nil {
		log.Error().Err(err).Msg("HTTP server failed")
		return err
	}

	log.Info().Msg("Executor service stopped")
	return nil
}
