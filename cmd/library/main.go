// Package main is the operator CLI of the rental service.
//
// Usage:
//
//	library migrate
//	library serve
//	library rent -user 1 -book 2
//	library return -user 1 -book 2
//	library books [-year 1951 | -author "Isaac Asimov" | -available true]
//	library users [-id 1]
//
// Configuration comes from the environment and an optional .env file, see shared/shell/config.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/otel"

	"github.com/AntonStoeckl/library-rental-go/cmd/internal/bootstrap"
	"github.com/AntonStoeckl/library-rental-go/rental/oteladapters"
	"github.com/AntonStoeckl/library-rental-go/rental/postgresengine"
	"github.com/AntonStoeckl/library-rental-go/shared/shell/config"
)

const instrumentationName = "library-rental"

var errUsage = errors.New("usage: library <migrate|serve|rent|return|books|users> [flags]")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// environment is what every subcommand runs against.
type environment struct {
	cfg    config.Config
	store  *postgresengine.Store
	app    bootstrap.App
	logger *slog.Logger
	out    io.Writer
}

type subcommand func(ctx context.Context, env environment, args []string) error

var subcommands = map[string]subcommand{
	"migrate": runMigrate,
	"serve":   runServe,
	"rent":    runRent,
	"return":  runReturn,
	"books":   runBooks,
	"users":   runUsers,
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	cmd, ok := subcommands[args[0]]
	if !ok {
		return fmt.Errorf("%w: unknown subcommand %q", errUsage, args[0])
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	obs, shutdown, err := setupObservability(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer shutdown()

	store, closeStore, err := config.OpenStore(ctx, cfg, storeOptions(obs)...)
	if err != nil {
		return err
	}
	defer closeStore()

	app, err := bootstrap.New(store, obs)
	if err != nil {
		return err
	}

	return cmd(ctx, environment{cfg: cfg, store: store, app: app, logger: logger, out: out}, args[1:])
}

// setupObservability returns collectors backed by OpenTelemetry when OTEL_ENABLED is set,
// otherwise only the slog logger.
func setupObservability(ctx context.Context, cfg config.Config, logger *slog.Logger) (bootstrap.Observability, func(), error) {
	if !cfg.OTelEnabled {
		return bootstrap.Observability{ContextualLogger: logger}, func() {}, nil
	}

	providers, err := config.NewObservabilityProviders(ctx, cfg)
	if err != nil {
		return bootstrap.Observability{}, nil, err
	}

	obs := bootstrap.Observability{
		ContextualLogger: oteladapters.NewSlogBridgeLogger(instrumentationName),
		Metrics:          oteladapters.NewMetricsCollector(otel.Meter(instrumentationName)),
		Tracing:          oteladapters.NewTracingCollector(otel.Tracer(instrumentationName)),
	}

	shutdown := func() {
		if shutdownErr := providers.Shutdown(); shutdownErr != nil {
			logger.Warn("observability shutdown failed", "error", shutdownErr.Error())
		}
	}

	return obs, shutdown, nil
}

func storeOptions(obs bootstrap.Observability) []postgresengine.Option {
	var options []postgresengine.Option

	if obs.ContextualLogger != nil {
		options = append(options, postgresengine.WithContextualLogger(obs.ContextualLogger))
	}

	if obs.Metrics != nil {
		options = append(options, postgresengine.WithMetrics(obs.Metrics))
	}

	if obs.Tracing != nil {
		options = append(options, postgresengine.WithTracing(obs.Tracing))
	}

	return options
}
