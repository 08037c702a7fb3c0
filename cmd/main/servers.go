package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finnie/src/grpcapi"
	"finnie/src/interfaces"
	"finnie/src/server"

	"github.com/spf13/cobra"
)

const (
	shutdownTimeout = 10 * time.Second
	purgeInterval   = 5 * time.Minute
)

// -----------------------------------------------------------------------------

func runServe(cmd *cobra.Command, args []string) error {
	// 1. Config and components
	conf, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c, err := setupComponents(ctx, conf, true)
	if err != nil {
		return err
	}
	defer c.Close()

	// 2. Surfaces
	comps := server.Components{
		Orchestrator: c.Orch,
		Tools:        c.Tools,
		Store:        c.Store,
		Scheduler:    c.Scheduler,
		Errors:       c.Orch.Errors,
	}
	if c.Market != nil {
		comps.Market = c.Market
	}
	if c.Knowledge != nil {
		comps.Knowledge = c.Knowledge
	}
	srv := server.NewFastAPIServer(conf.MConfig, c.Logger.Named("FastAPIServer"), comps)

	grpcLogger := c.Logger.Named("AssistantService")
	assistant := grpcapi.NewAssistantService(conf.MConfig, c.Orch, c.Tools, srv.Health, grpcLogger)
	grpcSrv := grpcapi.NewGRPCServer(conf.MConfig, grpcLogger, assistant)

	// 3. Start servers
	errCh := make(chan error, 2)
	startServer(srv, "HTTP", errCh)
	startServer(grpcSrv, "gRPC", errCh)

	// 4. Housekeeping until a signal or a server failure
	if c.Market != nil {
		go purgeLoop(ctx, c)
	}

	select {
	case <-ctx.Done():
		c.Logger.Info("Shutdown signal received")
	case err = <-errCh:
		c.Logger.Error("Server failed: %v", err)
	}

	// 5. Graceful shutdown
	shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
	defer done()
	if stopErr := srv.Stop(shutdownCtx); stopErr != nil {
		c.Logger.Warning("HTTP shutdown: %v", stopErr)
	}
	if stopErr := grpcSrv.Stop(shutdownCtx); stopErr != nil {
		c.Logger.Warning("gRPC shutdown: %v", stopErr)
	}
	c.Logger.Info("Shutdown complete.")
	return err
}

// -----------------------------------------------------------------------------

func startServer(s interfaces.IServer, name string, errCh chan<- error) {
	go func() {
		if err := s.Start(); err != nil {
			errCh <- fmt.Errorf("%s server: %w", name, err)
		}
	}()
}

// -----------------------------------------------------------------------------

// purgeLoop drops expired market-data cache entries.
func purgeLoop(ctx context.Context, c *components) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.Market.Purge(); n > 0 {
				c.Logger.Debug("Purged %d market data cache entries", n)
			}
		}
	}
}
