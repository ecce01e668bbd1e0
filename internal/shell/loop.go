package shell

import (
	"context"
	"errors"
	"io"
	"iter"
	"log/slog"
	"strings"
	"time"

	"virtuallet/internal/core"
	"virtuallet/internal/log"
)

const (
	defaultHistoryLimit = 30
	timestampLayout     = "2006-01-02 15:04:05"
)

// Ledger is what the command loop drives.
type Ledger interface {
	BookIncome(ctx context.Context, description string, amount core.Money) error
	BookExpense(ctx context.Context, description string, amount core.Money) error
	Balance(ctx context.Context) (core.Money, error)
	RecentTransactions(ctx context.Context, limit int) iter.Seq2[core.Transaction, error]
}

type Loop struct {
	ledger       Ledger
	console      *Console
	historyLimit int
	logger       *log.Logger
}

type LoopOption func(*Loop)

// WithHistoryLimit sets how many transactions "=" lists.
func WithHistoryLimit(n int) LoopOption {
	return func(l *Loop) {
		if n > 0 {
			l.historyLimit = n
		}
	}
}

func WithLogger(logger *log.Logger) LoopOption {
	return func(l *Loop) { l.logger = logger.WithComponent(log.ComponentShell) }
}

func NewLoop(ledger Ledger, console *Console, opts ...LoopOption) *Loop {
	l := &Loop{
		ledger:       ledger,
		console:      console,
		historyLimit: defaultHistoryLimit,
		logger: log.New(log.Config{
			Handler:   slog.Default().Handler(),
			Component: log.ComponentShell,
		}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run prints the balance and reads commands until ":" or the end of input.
// It returns nil on a normal exit and ctx.Err() when cancelled.
func (l *Loop) Run(ctx context.Context) error {
	l.console.Println(banner)
	l.printBalance(ctx)
	l.console.Println(infoText)

	for {
		input, err := l.console.Prompt(ctx, msgEnterCommand)
		if err != nil {
			return l.quit(err)
		}

		switch cmd := strings.TrimSpace(input); cmd {
		case keyIncome:
			err = l.book(ctx, true)
		case keyExpense:
			err = l.book(ctx, false)
		case keyShow:
			l.show(ctx)
		case keyHelp:
			l.console.Println(helpText)
		case keyQuit:
			return l.quit(nil)
		default:
			if strings.HasPrefix(cmd, keyIncome) || strings.HasPrefix(cmd, keyExpense) {
				l.console.Println(msgKeyOnly)
			} else {
				l.console.Println(infoText)
			}
		}

		// Only input errors end the loop; booking errors were reported.
		if err != nil {
			return l.quit(err)
		}
	}
}

func (l *Loop) quit(err error) error {
	l.console.Println()
	l.console.Println(msgBye)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// book asks for a description and an amount and books them. The returned
// error is non-nil only when reading input failed.
func (l *Loop) book(ctx context.Context, income bool) error {
	description, err := l.console.Prompt(ctx, msgEnterDescription)
	if err != nil {
		return err
	}
	raw, err := l.console.Prompt(ctx, msgEnterAmount)
	if err != nil {
		return err
	}

	amount, err := core.ParseAmount(raw)
	switch {
	case err != nil || amount.Cents == 0:
		l.console.Println(msgZeroOrInvalid)
		return nil
	case amount.Cents < 0:
		l.console.Println(msgNegative)
		return nil
	}

	description = strings.TrimSpace(description)
	if income {
		err = l.ledger.BookIncome(ctx, description, amount)
	} else {
		err = l.ledger.BookExpense(ctx, description, amount)
	}

	switch {
	case err == nil && income:
		l.console.Println(msgIncomeBooked)
	case err == nil:
		l.console.Println(msgExpenseBooked)
	case errors.Is(err, core.ErrInsufficientFunds):
		l.console.Println(msgTooExpensive)
	case errors.Is(err, core.ErrInvalidAmount):
		l.console.Println(msgZeroOrInvalid)
	default:
		l.reportFailure(ctx, err)
	}
	return nil
}

func (l *Loop) printBalance(ctx context.Context) {
	balance, err := l.ledger.Balance(ctx)
	if err != nil {
		l.reportFailure(ctx, err)
		return
	}
	l.console.Printf("Current balance: %s\n", balance)
}

// show prints the balance followed by the most recent transactions.
func (l *Loop) show(ctx context.Context) {
	balance, err := l.ledger.Balance(ctx)
	if err != nil {
		l.reportFailure(ctx, err)
		return
	}

	var lines []string
	for t, err := range l.ledger.RecentTransactions(ctx, l.historyLimit) {
		if err != nil {
			l.reportFailure(ctx, err)
			return
		}
		lines = append(lines, formatTransaction(t))
	}

	l.console.Printf("Current balance: %s\n\n", balance)
	if len(lines) == 0 {
		l.console.Println("No transactions yet.")
		return
	}
	l.console.Printf("Last %d transactions:\n", len(lines))
	for _, line := range lines {
		l.console.Println(line)
	}
}

func formatTransaction(t core.Transaction) string {
	return "\t" + t.CreatedAt.In(time.UTC).Format(timestampLayout) +
		"\t" + t.Amount.String() +
		"\t" + t.Description
}

func (l *Loop) reportFailure(ctx context.Context, err error) {
	if core.IsStorageError(err) {
		l.console.Println(msgStorageFailed)
	} else {
		l.console.Println(msgFailed)
	}
	l.logger.ErrorContext(ctx, "Command failed", log.FieldError, err)
}
