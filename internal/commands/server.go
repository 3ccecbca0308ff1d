package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"quayside/internal/api"
	"quayside/internal/catalog"
	"quayside/internal/logging"
	"quayside/internal/ops"
	"quayside/internal/policy"
	"quayside/internal/runtime"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the API server",
	Long:  `Start the HTTP API server with Echo framework`,
	RunE:  runServer,
}

func runServer(cmd *cobra.Command, args []string) error {
	log := logging.WithComponent("server")

	// Connect to the Docker daemon
	rt, err := runtime.NewDockerClient(cfg.Docker)
	if err != nil {
		return fmt.Errorf("failed to create Docker client: %w", err)
	}
	defer rt.Close()

	if err := rt.Ping(cmd.Context()); err != nil {
		// The daemon may come up later; the health endpoint reports it.
		log.Warn().Err(err).Msg("Docker daemon not reachable at startup")
	}

	// Load the service catalog (missing file means an empty catalog)
	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("failed to load service catalog: %w", err)
	}

	filter := policy.NewFilter(cfg.Actions.ProtectedNames())
	service := ops.New(rt, filter, cat, cfg.Actions.Workers, logging.WithComponent("ops"))

	// Create API server
	server := api.New(cfg, service, cat)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	// Start server in a goroutine
	errChan := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)).
			Int("workers", cfg.Actions.Workers).
			Strs("protected", cfg.Actions.ProtectedNames()).
			Msg("starting API server")

		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			cfg.Server.ShutdownTimeout,
		)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		return nil

	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}
}
