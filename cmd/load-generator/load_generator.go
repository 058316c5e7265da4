// Package main implements a load generator that rents and returns books concurrently
// on a small catalog, so that many transactions contend for the same book locks.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AntonStoeckl/library-rental-go/cmd/internal/bootstrap"
	"github.com/AntonStoeckl/library-rental-go/features/command/addbook"
	"github.com/AntonStoeckl/library-rental-go/features/command/registerauthor"
	"github.com/AntonStoeckl/library-rental-go/features/command/registeruser"
	"github.com/AntonStoeckl/library-rental-go/features/command/rentbook"
	"github.com/AntonStoeckl/library-rental-go/features/command/returnbook"
	"github.com/AntonStoeckl/library-rental-go/rental"
	"github.com/AntonStoeckl/library-rental-go/shared/shell"
)

const (
	operationRent   = "rent"
	operationReturn = "return"
)

var authorBirthdate = time.Date(1920, time.January, 2, 0, 0, 0, 0, time.UTC)

// Config holds the load shape.
type Config struct {
	Workers       int
	Rate          int
	Duration      time.Duration
	Books         int
	CopiesPerBook int
	Users         int
	Seed          int64
}

// Report summarizes a run. Outcomes are keyed by "operation/status".
type Report struct {
	Requests int            `json:"requests"`
	Elapsed  string         `json:"elapsed"`
	Outcomes map[string]int `json:"outcomes"`
	Retries  int            `json:"retries"`
}

// LoadGenerator drives rent and return commands against one App.
type LoadGenerator struct {
	app    bootstrap.App
	config Config
	logger *slog.Logger

	userIDs []int64
	bookIDs []int64

	mu       sync.Mutex
	requests int
	retries  int
	outcomes map[string]int
}

// NewLoadGenerator creates a LoadGenerator. Call Setup before Run.
func NewLoadGenerator(app bootstrap.App, config Config, logger *slog.Logger) *LoadGenerator {
	return &LoadGenerator{
		app:      app,
		config:   config,
		logger:   logger,
		outcomes: make(map[string]int),
	}
}

// Setup registers one author, the catalog and the users through the registration commands.
func (lg *LoadGenerator) Setup(ctx context.Context) error {
	authorCmd, err := registerauthor.BuildCommand("Load Generator Author", authorBirthdate)
	if err != nil {
		return err
	}

	authorResult, err := lg.app.Commands.RegisterAuthor.Handle(ctx, authorCmd)
	if err != nil {
		return fmt.Errorf("registering author: %w", err)
	}

	for i := 0; i < lg.config.Books; i++ {
		bookCmd, buildErr := addbook.BuildCommand(
			fmt.Sprintf("Load Book %03d", i+1), 2000, authorResult.AssignedID, lg.config.CopiesPerBook)
		if buildErr != nil {
			return buildErr
		}

		result, handleErr := lg.app.Commands.AddBook.Handle(ctx, bookCmd)
		if handleErr != nil {
			return fmt.Errorf("adding book: %w", handleErr)
		}

		lg.bookIDs = append(lg.bookIDs, result.AssignedID)
	}

	runID := time.Now().UnixNano()
	for i := 0; i < lg.config.Users; i++ {
		userCmd, buildErr := registeruser.BuildCommand(
			fmt.Sprintf("Load User %03d", i+1), fmt.Sprintf("load-%d-%d@library.test", runID, i+1))
		if buildErr != nil {
			return buildErr
		}

		result, handleErr := lg.app.Commands.RegisterUser.Handle(ctx, userCmd)
		if handleErr != nil {
			return fmt.Errorf("registering user: %w", handleErr)
		}

		lg.userIDs = append(lg.userIDs, result.AssignedID)
	}

	lg.logger.InfoContext(ctx, "load generator catalog ready",
		"books", len(lg.bookIDs),
		"users", len(lg.userIDs),
		"copies_per_book", lg.config.CopiesPerBook,
	)

	return nil
}

// Run generates load until the configured duration elapsed or ctx is done.
func (lg *LoadGenerator) Run(ctx context.Context) (Report, error) {
	if len(lg.userIDs) == 0 || len(lg.bookIDs) == 0 {
		return Report{}, errors.New("load generator: Setup must run first")
	}

	start := time.Now()

	runCtx, cancel := context.WithTimeout(ctx, lg.config.Duration)
	defer cancel()

	ticker := time.NewTicker(time.Second / time.Duration(lg.config.Rate))
	defer ticker.Stop()

	group, groupCtx := errgroup.WithContext(runCtx)

	for w := 0; w < lg.config.Workers; w++ {
		rng := rand.New(rand.NewSource(lg.config.Seed + int64(w))) //nolint:gosec
		group.Go(func() error {
			for {
				select {
				case <-groupCtx.Done():
					return nil
				case <-ticker.C:
					lg.executeScenario(groupCtx, rng)
				}
			}
		})
	}

	if err := group.Wait(); err != nil {
		return Report{}, err
	}

	return lg.report(time.Since(start)), nil
}

// executeScenario rents a random book for a random user, or returns it when renting was rejected.
func (lg *LoadGenerator) executeScenario(ctx context.Context, rng *rand.Rand) {
	userID := lg.userIDs[rng.Intn(len(lg.userIDs))]
	bookID := lg.bookIDs[rng.Intn(len(lg.bookIDs))]

	result, err := lg.app.Commands.RentBook.Handle(ctx, rentbook.Command{UserID: userID, BookID: bookID})
	lg.record(operationRent, result, err)

	// a holder of the last copy sees ErrBookNotAvailable, so both rejections lead to a return attempt
	if !errors.Is(err, rental.ErrBookAlreadyBorrowed) && !errors.Is(err, rental.ErrBookNotAvailable) {
		return
	}

	result, err = lg.app.Commands.ReturnBook.Handle(ctx, returnbook.Command{UserID: userID, BookID: bookID})
	lg.record(operationReturn, result, err)
}

func (lg *LoadGenerator) record(operation string, result shell.HandlerResult, err error) {
	// the run deadline ending an in-flight command is not an outcome of the workload
	if shell.IsCancellationError(err) || shell.IsTimeoutError(err) {
		return
	}

	lg.mu.Lock()
	defer lg.mu.Unlock()

	lg.requests++
	lg.outcomes[operation+"/"+shell.StatusFor(err)]++

	if result.RetryAttempts > 1 {
		lg.retries += result.RetryAttempts - 1
	}

	if shell.StatusFor(err) == shell.StatusError {
		lg.logger.Error("load generator command failed", "operation", operation, "error", err.Error())
	}
}

func (lg *LoadGenerator) report(elapsed time.Duration) Report {
	lg.mu.Lock()
	defer lg.mu.Unlock()

	outcomes := make(map[string]int, len(lg.outcomes))
	keys := make([]string, 0, len(lg.outcomes))
	for k := range lg.outcomes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		outcomes[k] = lg.outcomes[k]
	}

	return Report{
		Requests: lg.requests,
		Elapsed:  elapsed.Round(time.Millisecond).String(),
		Outcomes: outcomes,
		Retries:  lg.retries,
	}
}
