package main

import (
	"context"
	"log"

	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"

	"gas-booking-service/cmd/api/app"
	"gas-booking-service/cmd/api/server"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("application exited with error: %v", err)
	}
}

func run() error {
	ctx, stop := server.WithSignal(context.Background())
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		return err
	}

	if err := a.Run(ctx); err != nil {
		a.Logger.Error("application stopped with error", zap.Error(err))
		return err
	}
	return nil
}
