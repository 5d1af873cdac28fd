// cmd/stratainit/main.go
//
// stratainit performs one-time initialization of the application database:
// it creates the application user with readWrite on the target database and
// pre-creates the empty processed_users collection. It is meant to run once
// per fresh database volume; on an already-initialized volume MongoDB rejects
// the duplicate user and the process exits non-zero.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dalemusser/stratainit/internal/app/bootstrap"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "stratainit: build logger: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()
	defer zap.ReplaceGlobals(logger)()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bootstrap.Run(ctx, logger); err != nil {
		logger.Error("database initialization failed", zap.Error(err))
		return 1
	}
	return 0
}
