// Package main runs the vending machine on the terminal.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/fairyhunter13/vending-machine-simulator/internal/bootstrap"
	"github.com/fairyhunter13/vending-machine-simulator/internal/config"
	"github.com/fairyhunter13/vending-machine-simulator/internal/obs"
	"github.com/fairyhunter13/vending-machine-simulator/internal/session"
)

func main() {
	_ = config.LoadDotEnv() // .env is optional
	cfg := config.Load()
	obs.InitLogger()
	defer obs.Sync()

	m, err := bootstrap.New(cfg)
	if err != nil {
		obs.Logger.Error("bootstrap_failed", zap.Error(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := session.NewConsole(m.Engine, m.Auth, os.Stdin, os.Stdout)
	if err := c.Run(ctx); err != nil && ctx.Err() == nil {
		obs.Logger.Error("console_error", zap.Error(err))
		os.Exit(1)
	}
}
