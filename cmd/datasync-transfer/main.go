// Package main provides the datasync-transfer CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/smartcontractkit/datasync-transfer-framework/pkg/commands"
	"github.com/smartcontractkit/datasync-transfer-framework/pkg/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lggr, err := logger.New()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = lggr.Sync() }()

	root, err := commands.New(lggr).Root(version)
	if err != nil {
		return err
	}

	return root.ExecuteContext(ctx)
}
