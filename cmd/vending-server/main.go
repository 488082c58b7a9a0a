// Package main boots the vending machine HTTP terminal.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/fairyhunter13/vending-machine-simulator/internal/bootstrap"
	"github.com/fairyhunter13/vending-machine-simulator/internal/config"
	httpapi "github.com/fairyhunter13/vending-machine-simulator/internal/http"
	"github.com/fairyhunter13/vending-machine-simulator/internal/obs"
)

func main() {
	_ = config.LoadDotEnv()
	cfg := config.Load()
	obs.InitLogger()
	defer obs.Sync()
	obs.Logger.Info("service_starting")

	m, err := bootstrap.New(cfg)
	if err != nil {
		obs.Logger.Error("bootstrap_failed", zap.Error(err))
		os.Exit(1)
	}
	tokens, err := httpapi.NewTokenIssuer(cfg.TokenSecret, cfg.TokenTTL)
	if err != nil {
		obs.Logger.Error("token_issuer_failed", zap.Error(err))
		os.Exit(1)
	}

	app := httpapi.NewApp(cfg, m.Engine, m.Auth, tokens)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(app),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		obs.Logger.Info("http_listen", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			obs.Logger.Error("http_server_error", zap.Error(err))
			os.Exit(1)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-sigc:
		obs.Logger.Info("shutdown_signal", zap.String("signal", s.String()))
		app.StartShutdown()
	case <-app.Done():
		obs.Logger.Info("shutdown_out_of_service")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		obs.Logger.Error("http_shutdown_error", zap.Error(err))
	}
	obs.Logger.Info("service_stopped")
}
