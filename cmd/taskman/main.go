// Package main is the entry point for the taskman CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"taskman/internal/backend/httpapi"
	"taskman/internal/cli"
	"taskman/internal/commands"
	"taskman/internal/config"
	"taskman/internal/json"
	"taskman/internal/logging"
	"taskman/internal/session"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// Outgoing requests carry W3C trace context headers
	otel.SetTextMapPropagator(propagation.TraceContext{})

	// Create environment factory
	factory := func(ctx context.Context, cfg *config.Config) (*commands.Env, error) {
		log := logging.New(os.Stderr, cfg.Debug)
		log.Debugw("starting", "server", cfg.Server, "config", cfg.ConfigPath(), "sonic", json.UsingSonic())
		store := session.NewStore(session.NewFileStorage(cfg.Dir), session.WithLogger(log))
		client, err := httpapi.New(cfg, store, log)
		if err != nil {
			return nil, err
		}
		return &commands.Env{
			Config:  cfg,
			Session: store,
			Auth:    client,
			Tasks:   client,
			Log:     log,
			In:      os.Stdin,
		}, nil
	}

	// Create dispatcher
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	// Run and exit with code
	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}
