// Command marqueed runs the marquee daemon: it serves the request workflow
// HTTP API and sweeps expired selection sessions until interrupted.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"marquee/internal/config"
	"marquee/internal/daemon"
	"marquee/internal/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	d, err := daemon.New(cfg, logger, nil)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		return
	}

	if err := d.Start(ctx); err != nil {
		logger.Error("start daemon", logging.Error(err))
		return
	}
	defer d.Stop()

	<-ctx.Done()
	logger.Info("marqueed shutting down")
}
