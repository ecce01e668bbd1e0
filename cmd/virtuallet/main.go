package main

import (
	"context"
	"errors"
	"io"
	"os"

	"virtuallet/internal/cli"
	"virtuallet/internal/config"
	"virtuallet/internal/log"
	"virtuallet/internal/services"
	"virtuallet/internal/shell"
)

func main() {
	// Load .env file for local development
	cli.LoadEnvFile()

	// Logging goes to stderr, stdout belongs to the shell
	logger := cli.SetupLogger("warn")
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg.LogLevel)

	ctx, stop := cli.GracefulShutdown()
	defer stop()

	logger.InfoContext(ctx, "Starting virtuallet",
		log.FieldOperation, log.OpStartup,
		"backend", cfg.DataBackend,
		"month_matching", cfg.MonthMatching)

	if err := run(ctx, logger, cfg); err != nil {
		logger.ErrorContext(ctx, "virtuallet stopped with an error", log.FieldError, err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *log.Logger, cfg *config.Config) error {
	result := cli.InitBackend(ctx, logger, cfg)
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.WarnContext(context.Background(), "Failed to close backend",
				log.FieldOperation, log.OpShutdown,
				log.FieldError, err)
		}
	}()

	matcher, err := services.GetMonthMatcher(cfg.MonthMatching)
	if err != nil {
		return err
	}

	ledger := services.NewLedger(result.Store,
		services.WithMonthMatcher(matcher),
		services.WithBackfillLimit(cfg.BackfillMaxMonths),
		services.WithPublisher(result.Publisher),
		services.WithLogger(logger),
	)

	console := shell.NewConsole(os.Stdin, os.Stdout)
	defer console.Close()

	configured, err := ledger.IsConfigured(ctx)
	if err != nil {
		return err
	}
	if !configured {
		if err := shell.NewSetup(ledger, console).Run(ctx); err != nil {
			return ignoreInterrupt(err)
		}
	}

	booked, err := ledger.BackfillDueIncomes(ctx)
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "Due incomes booked", log.FieldOperation, log.OpBackfill, log.FieldInserted, booked)

	loop := shell.NewLoop(ledger, console,
		shell.WithHistoryLimit(cfg.HistoryLimit),
		shell.WithLogger(logger),
	)
	return ignoreInterrupt(loop.Run(ctx))
}

// ignoreInterrupt treats Ctrl-C and a closed stdin as a normal exit.
func ignoreInterrupt(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
