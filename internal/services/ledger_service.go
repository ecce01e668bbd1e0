package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"sync"
	"time"

	"virtuallet/internal/core"
	"virtuallet/internal/log"
)

// Store is the persistence the Ledger needs.
type Store interface {
	AutoIncomeFinder
	InsertTransaction(ctx context.Context, description string, amount core.Money, autoIncome bool) error
	Balance(ctx context.Context) (core.Money, error)
	RecentTransactions(ctx context.Context, limit int) iter.Seq2[core.Transaction, error]
	ConfigValue(ctx context.Context, key string) (string, error)
	InsertConfig(ctx context.Context, key, value string) error
}

// Publisher announces booked transactions to downstream consumers.
type Publisher interface {
	PublishTransactionBooked(ctx context.Context, t core.Transaction) error
}

const defaultBackfillLimit = 1200

// Ledger applies the booking rules on top of a Store.
//
// The store is the single source of truth: the Ledger keeps no balance of its
// own. Bookings and backfill are serialized by mu so the balance read and the
// insert of an expense cannot interleave with another booking.
type Ledger struct {
	mu            sync.Mutex
	store         Store
	publisher     Publisher
	matcher       MonthMatcher
	now           func() time.Time
	backfillLimit int
	logger        *log.Logger
}

type LedgerOption func(*Ledger)

func WithClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) { l.now = now }
}

func WithMonthMatcher(m MonthMatcher) LedgerOption {
	return func(l *Ledger) { l.matcher = m }
}

// WithPublisher enables booking events. A nil publisher disables them.
func WithPublisher(p Publisher) LedgerOption {
	return func(l *Ledger) { l.publisher = p }
}

// WithBackfillLimit caps how many months one backfill may walk back.
func WithBackfillLimit(months int) LedgerOption {
	return func(l *Ledger) {
		if months > 0 {
			l.backfillLimit = months
		}
	}
}

func WithLogger(logger *log.Logger) LedgerOption {
	return func(l *Ledger) { l.logger = logger.WithComponent(log.ComponentLedger) }
}

func NewLedger(store Store, opts ...LedgerOption) *Ledger {
	l := &Ledger{
		store:         store,
		matcher:       TimestampMatcher{},
		now:           time.Now,
		backfillLimit: defaultBackfillLimit,
		logger: log.New(log.Config{
			Handler:   slog.Default().Handler(),
			Component: log.ComponentLedger,
		}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// BookIncome records a manual income. amount must be positive.
func (l *Ledger) BookIncome(ctx context.Context, description string, amount core.Money) error {
	if err := amount.Validate(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.insert(ctx, description, amount, false); err != nil {
		return err
	}

	l.logger.InfoContext(ctx, "Income booked",
		log.FieldOperation, log.OpBookIncome,
		log.FieldAmountCents, amount.Cents)
	return nil
}

// BookExpense records an expense of the given magnitude if the balance after
// it stays at or above -overdraft.
func (l *Ledger) BookExpense(ctx context.Context, description string, amount core.Money) error {
	if err := amount.Validate(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	overdraft, err := l.configAmount(ctx, core.ConfOverdraft)
	if err != nil {
		return err
	}
	balance, err := l.store.Balance(ctx)
	if err != nil {
		return err
	}

	if amount.Cents > balance.Cents+overdraft.Cents {
		l.logger.InfoContext(ctx, "Expense rejected",
			log.FieldOperation, log.OpBookExpense,
			log.FieldAmountCents, amount.Cents,
			log.FieldBalance, balance.Cents)
		return core.ErrInsufficientFunds
	}

	if err := l.insert(ctx, description, amount.Neg(), false); err != nil {
		return err
	}

	l.logger.InfoContext(ctx, "Expense booked",
		log.FieldOperation, log.OpBookExpense,
		log.FieldAmountCents, amount.Cents)
	return nil
}

func (l *Ledger) Balance(ctx context.Context) (core.Money, error) {
	return l.store.Balance(ctx)
}

// RecentTransactions yields up to limit transactions, newest first.
func (l *Ledger) RecentTransactions(ctx context.Context, limit int) iter.Seq2[core.Transaction, error] {
	return l.store.RecentTransactions(ctx, limit)
}

// IsConfigured reports whether first-run setup has stored every setting.
func (l *Ledger) IsConfigured(ctx context.Context) (bool, error) {
	for _, key := range []string{core.ConfIncomeDescription, core.ConfIncomeAmount, core.ConfOverdraft} {
		if _, err := l.store.ConfigValue(ctx, key); err != nil {
			if errors.Is(err, core.ErrNotConfigured) {
				return false, nil
			}
			return false, err
		}
	}
	return true, nil
}

// Initialize stores the configuration and books the current month's
// auto-income, which gives every later backfill walk a stopping point.
func (l *Ledger) Initialize(ctx context.Context, description string, incomeAmount, overdraft core.Money) error {
	if err := incomeAmount.Validate(); err != nil {
		return err
	}
	if overdraft.Cents < 0 {
		return core.ErrInvalidAmount
	}

	configured, err := l.IsConfigured(ctx)
	if err != nil {
		return err
	}
	if configured {
		return core.ErrAlreadyConfigured
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	settings := []struct{ key, value string }{
		{core.ConfIncomeDescription, description},
		{core.ConfIncomeAmount, incomeAmount.String()},
		{core.ConfOverdraft, overdraft.String()},
	}
	for _, s := range settings {
		if err := l.store.InsertConfig(ctx, s.key, s.value); err != nil {
			return err
		}
	}

	month := core.MonthYearOf(l.now())
	if err := l.insert(ctx, core.AutoIncomeDescription(description, month), incomeAmount, true); err != nil {
		return err
	}

	l.logger.InfoContext(ctx, "Ledger initialized",
		log.FieldOperation, log.OpInitialize,
		log.FieldMonth, month.String(),
		log.FieldAmountCents, incomeAmount.Cents)
	return nil
}

func (l *Ledger) insert(ctx context.Context, description string, amount core.Money, autoIncome bool) error {
	if err := l.store.InsertTransaction(ctx, description, amount, autoIncome); err != nil {
		return err
	}
	l.logger.DebugContext(ctx, "Transaction stored",
		log.NewFields().WithTransaction(description, amount.Cents, autoIncome).ToSlice()...)
	l.publish(ctx, core.Transaction{
		Description: description,
		Amount:      amount,
		AutoIncome:  autoIncome,
		CreatedAt:   l.now(),
	})
	return nil
}

// publish never fails a booking: the transaction is already stored.
func (l *Ledger) publish(ctx context.Context, t core.Transaction) {
	if l.publisher == nil {
		return
	}
	if err := l.publisher.PublishTransactionBooked(ctx, t); err != nil {
		l.logger.WarnContext(ctx, "Failed to publish booked transaction",
			log.FieldOperation, log.OpPublish,
			log.FieldError, err)
	}
}

func (l *Ledger) configAmount(ctx context.Context, key string) (core.Money, error) {
	raw, err := l.store.ConfigValue(ctx, key)
	if err != nil {
		return core.Money{}, err
	}
	amount, err := core.ParseAmount(raw)
	if err != nil {
		return core.Money{}, fmt.Errorf("config %s=%q: %w", key, raw, err)
	}
	return amount, nil
}
