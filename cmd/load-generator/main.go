package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/library-rental-go/cmd/internal/bootstrap"
	"github.com/AntonStoeckl/library-rental-go/rental/memoryengine"
	"github.com/AntonStoeckl/library-rental-go/rental/postgresengine"
	"github.com/AntonStoeckl/library-rental-go/shared/shell/config"
)

var errInvalidFlags = errors.New("load-generator: invalid flags")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type options struct {
	config Config
	memory bool
}

func parseFlags(args []string) (options, error) {
	fs := flag.NewFlagSet("load-generator", flag.ContinueOnError)

	var opts options
	fs.IntVar(&opts.config.Workers, "concurrency", 8, "number of concurrent workers")
	fs.IntVar(&opts.config.Rate, "rate", 50, "scenarios per second across all workers")
	fs.DurationVar(&opts.config.Duration, "duration", 30*time.Second, "how long to generate load")
	fs.IntVar(&opts.config.Books, "books", 3, "number of books in the catalog")
	fs.IntVar(&opts.config.CopiesPerBook, "copies", 2, "available copies per book")
	fs.IntVar(&opts.config.Users, "users", 10, "number of registered users")
	fs.Int64Var(&opts.config.Seed, "seed", time.Now().UnixNano(), "random seed")
	fs.BoolVar(&opts.memory, "memory", false, "run against the in-memory engine instead of PostgreSQL")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	c := opts.config
	if c.Workers < 1 || c.Rate < 1 || c.Duration <= 0 || c.Books < 1 || c.CopiesPerBook < 0 || c.Users < 1 {
		return options{}, fmt.Errorf("%w: concurrency, rate, books and users must be positive", errInvalidFlags)
	}

	return opts, nil
}

func run(ctx context.Context, args []string, out io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	store, closeStore, err := openStore(ctx, opts.memory, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	app, err := bootstrap.New(store, bootstrap.Observability{ContextualLogger: logger})
	if err != nil {
		return err
	}

	report, err := generate(ctx, app, opts.config, logger)
	if err != nil {
		return err
	}

	encoder := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(out)
	encoder.SetIndent("", "  ")

	return encoder.Encode(report)
}

func generate(ctx context.Context, app bootstrap.App, cfg Config, logger *slog.Logger) (Report, error) {
	lg := NewLoadGenerator(app, cfg, logger)

	if err := lg.Setup(ctx); err != nil {
		return Report{}, err
	}

	logger.InfoContext(ctx, "load generator started",
		"workers", cfg.Workers,
		"rate", cfg.Rate,
		"duration", cfg.Duration.String(),
	)

	return lg.Run(ctx)
}

func openStore(ctx context.Context, memory bool, logger *slog.Logger) (bootstrap.Store, func(), error) {
	if memory {
		store, err := memoryengine.NewStore(memoryengine.WithLogger(logger))
		if err != nil {
			return nil, nil, err
		}

		return store, func() {}, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	store, closeStore, err := config.OpenStore(ctx, cfg, postgresengine.WithContextualLogger(logger))
	if err != nil {
		return nil, nil, err
	}

	if err = store.CreateSchema(ctx); err != nil {
		closeStore()
		return nil, nil, err
	}

	return store, closeStore, nil
}
