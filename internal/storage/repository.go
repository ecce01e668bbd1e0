package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"virtuallet/internal/cache"
	"virtuallet/internal/core"

	_ "modernc.org/sqlite"
)

// CreatedBy is written to ledger.created_by so rows can be traced to the
// edition that booked them.
const CreatedBy = "Go Edition"

// DefaultRecentLimit is the number of transactions shown by the history view.
const DefaultRecentLimit = 30

type SQLiteRepository struct {
	db          *sql.DB
	queries     *Queries
	now         func() time.Time
	configCache cache.Cache[string]
}

// Option configures a SQLiteRepository.
type Option func(*SQLiteRepository)

// WithClock sets the time source for created_at.
func WithClock(now func() time.Time) Option {
	return func(r *SQLiteRepository) {
		r.now = now
	}
}

// WithConfigCacheTTL sets how long configuration values stay cached.
func WithConfigCacheTTL(ttl time.Duration) Option {
	return func(r *SQLiteRepository) {
		r.configCache = cache.NewLRUCache[string](16, ttl)
	}
}

func NewSQLiteRepository(dbPath string, opts ...Option) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, core.NewStorageError("create db directory", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, core.NewStorageError("open sqlite database", err)
	}
	// One process, one connection: bookings are check-then-insert sequences.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, core.NewStorageError("ping database", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, core.NewStorageError("run migrations", err)
	}
	slog.Debug("Ledger schema ready", "path", dbPath, "schema_version", version)

	repo := &SQLiteRepository{
		db:          db,
		queries:     New(db),
		now:         time.Now,
		configCache: cache.NewLRUCache[string](16, time.Hour),
	}
	for _, opt := range opts {
		opt(repo)
	}

	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// InsertTransaction appends a row stamped with the current time. The write is
// committed (autocommit) before the call returns.
func (r *SQLiteRepository) InsertTransaction(ctx context.Context, description string, amount core.Money, autoIncome bool) error {
	var auto int64
	if autoIncome {
		auto = 1
	}

	id, err := r.queries.InsertTransaction(ctx, InsertTransactionParams{
		Description: description,
		Amount:      amount.Float64(),
		AutoIncome:  auto,
		CreatedBy:   CreatedBy,
		CreatedAt:   FormatTimestamp(r.now()),
	})
	if err != nil {
		return core.NewStorageError("insert transaction", err)
	}

	slog.DebugContext(ctx, "Transaction saved to SQLite",
		"id", id,
		"description", description,
		"amount_cents", amount.Cents,
		"auto_income", autoIncome)

	return nil
}

// Balance returns the rounded sum of all amounts, zero for an empty ledger.
func (r *SQLiteRepository) Balance(ctx context.Context) (core.Money, error) {
	balance, err := r.queries.GetBalance(ctx)
	if err != nil {
		return core.Money{}, core.NewStorageError("query balance", err)
	}
	return core.MoneyFromFloat(balance), nil
}

// RecentTransactions yields up to limit transactions, newest first.
//
// The query runs when iteration starts, and the sequence can be ranged over
// only once; later ranges yield nothing. The repository holds a single
// connection, so the loop body must not call back into the repository.
func (r *SQLiteRepository) RecentTransactions(ctx context.Context, limit int) iter.Seq2[core.Transaction, error] {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	consumed := false

	return func(yield func(core.Transaction, error) bool) {
		if consumed {
			return
		}
		consumed = true

		rows, err := r.queries.ListRecentTransactions(ctx, int64(limit))
		if err != nil {
			yield(core.Transaction{}, core.NewStorageError("list transactions", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			t, err := scanTransaction(rows)
			if err != nil {
				yield(core.Transaction{}, core.NewStorageError("scan transaction", err))
				return
			}
			if !yield(t, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(core.Transaction{}, core.NewStorageError("iterate transactions", err))
		}
	}
}

func scanTransaction(rows *sql.Rows) (core.Transaction, error) {
	var (
		t           core.Transaction
		description sql.NullString
		amount      float64
		autoIncome  int64
		createdAt   any
		modifiedAt  any
	)
	if err := rows.Scan(&t.ID, &description, &amount, &autoIncome, &createdAt, &modifiedAt); err != nil {
		return t, err
	}

	t.Description = description.String
	t.Amount = core.MoneyFromFloat(amount)
	t.AutoIncome = autoIncome != 0

	created, err := parseTimestamp(createdAt)
	if err != nil {
		return t, fmt.Errorf("created_at of row %d: %w", t.ID, err)
	}
	t.CreatedAt = created

	if modifiedAt != nil {
		modified, err := parseTimestamp(modifiedAt)
		if err != nil {
			return t, fmt.Errorf("modified_at of row %d: %w", t.ID, err)
		}
		t.ModifiedAt = &modified
	}

	return t, nil
}

// ConfigValue returns the stored value for key, or core.ErrNotConfigured.
func (r *SQLiteRepository) ConfigValue(ctx context.Context, key string) (string, error) {
	if v, ok := r.configCache.Get(key); ok {
		return v, nil
	}

	v, err := r.queries.GetConfigValue(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("config key %s: %w", key, core.ErrNotConfigured)
	}
	if err != nil {
		return "", core.NewStorageError("read configuration", err)
	}

	r.configCache.Set(key, v)
	return v, nil
}

// InsertConfig writes a configuration row. Only the setup wizard calls it.
func (r *SQLiteRepository) InsertConfig(ctx context.Context, key, value string) error {
	if err := r.queries.InsertConfig(ctx, key, value); err != nil {
		return core.NewStorageError("insert configuration", err)
	}
	r.configCache.Delete(key)

	slog.InfoContext(ctx, "Configuration saved", "key", key)
	return nil
}

// HasAutoIncomeCreatedBetween reports whether an auto-income row has
// created_at in [from, to).
func (r *SQLiteRepository) HasAutoIncomeCreatedBetween(ctx context.Context, from, to time.Time) (bool, error) {
	ok, err := r.queries.HasAutoIncomeCreatedBetween(ctx, FormatTimestamp(from), FormatTimestamp(to))
	if err != nil {
		return false, core.NewStorageError("query auto income by timestamp", err)
	}
	return ok, nil
}

// HasAutoIncomeLabelled reports whether an auto-income row's description ends
// with " MM/YYYY" for m.
func (r *SQLiteRepository) HasAutoIncomeLabelled(ctx context.Context, m core.MonthYear) (bool, error) {
	ok, err := r.queries.HasAutoIncomeLike(ctx, "% "+m.String())
	if err != nil {
		return false, core.NewStorageError("query auto income by label", err)
	}
	return ok, nil
}

func (r *SQLiteRepository) HasAnyAutoIncome(ctx context.Context) (bool, error) {
	ok, err := r.queries.HasAnyAutoIncome(ctx)
	if err != nil {
		return false, core.NewStorageError("query auto income", err)
	}
	return ok, nil
}
