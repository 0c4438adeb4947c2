package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"worktimer/internal/cli"
	"worktimer/internal/logging"
)

func main() {
	logging.Setup(false)

	// Create repository factory based on environment
	factory := NewRepositoryFactory(getEnvironment())

	// Context with signal handling; serve shuts down gracefully on cancel
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand(factory.CreateRepository)
	if err := root.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
