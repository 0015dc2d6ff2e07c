// Package main starts the wallet web frontend.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/digitalwallet/wallet-web/internal/app"
	"github.com/digitalwallet/wallet-web/internal/pkg/config"
	"github.com/digitalwallet/wallet-web/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Development(),
		Service: "wallet-web",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("wallet web stopped")
	}
}
