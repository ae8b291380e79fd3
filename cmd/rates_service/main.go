package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/224solutions/exchange/deploy/config"
	"github.com/224solutions/exchange/internal/rates/app"
)

func main() {
	cfg := config.NewConfig()

	ctx, cancel := context.WithCancel(context.Background())

	ratesApp := app.NewApp(cfg)
	serverDone := ratesApp.Start(ctx)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-done
	slog.Info("Gracefully shutting down")

	cancel()

	<-serverDone
	slog.Info("server stopped")
}
