// Package memory is a non-persistent Ledger Store used by tests and by the
// memory backend. It mirrors the SQLite store's semantics.
package memory

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"sync"
	"time"

	"virtuallet/internal/core"
)

const defaultRecentLimit = 30

type Store struct {
	mu     sync.Mutex
	now    func() time.Time
	items  []core.Transaction
	config map[string]string
	closed bool
}

func New() *Store {
	return &Store{now: time.Now, config: map[string]string{}}
}

// NewWithClock uses now as the source of created_at timestamps.
func NewWithClock(now func() time.Time) *Store {
	s := New()
	s.now = now
	return s
}

// SetClock replaces the time source.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

var errClosed = fmt.Errorf("memory store closed")

func (s *Store) InsertTransaction(_ context.Context, description string, amount core.Money, autoIncome bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return core.NewStorageError("insert transaction", errClosed)
	}
	s.items = append(s.items, core.Transaction{
		ID:          int64(len(s.items) + 1),
		Description: description,
		Amount:      amount,
		AutoIncome:  autoIncome,
		CreatedAt:   s.now().UTC().Truncate(time.Second),
	})
	return nil
}

func (s *Store) Balance(_ context.Context) (core.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return core.Money{}, core.NewStorageError("query balance", errClosed)
	}
	var total core.Money
	for _, t := range s.items {
		total = total.Add(t.Amount)
	}
	return total, nil
}

// RecentTransactions snapshots the ledger on first iteration; the sequence
// is single-use like its SQLite counterpart.
func (s *Store) RecentTransactions(_ context.Context, limit int) iter.Seq2[core.Transaction, error] {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	consumed := false

	return func(yield func(core.Transaction, error) bool) {
		if consumed {
			return
		}
		consumed = true

		s.mu.Lock()
		snapshot := make([]core.Transaction, 0, limit)
		// Insertion order is creation order, so walking backwards is newest first.
		for i := len(s.items) - 1; i >= 0 && len(snapshot) < limit; i-- {
			snapshot = append(snapshot, s.items[i])
		}
		s.mu.Unlock()

		for _, t := range snapshot {
			if !yield(t, nil) {
				return
			}
		}
	}
}

func (s *Store) ConfigValue(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.config[key]
	if !ok {
		return "", fmt.Errorf("config key %s: %w", key, core.ErrNotConfigured)
	}
	return v, nil
}

// InsertConfig keeps the first value written for a key, matching the SQLite
// store which reads the oldest row.
func (s *Store) InsertConfig(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return core.NewStorageError("insert configuration", errClosed)
	}
	if _, ok := s.config[key]; !ok {
		s.config[key] = value
	}
	return nil
}

func (s *Store) HasAutoIncomeCreatedBetween(_ context.Context, from, to time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.items {
		if t.AutoIncome && !t.CreatedAt.Before(from) && t.CreatedAt.Before(to) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) HasAutoIncomeLabelled(_ context.Context, m core.MonthYear) (bool, error) {
	suffix := " " + m.String()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.items {
		if t.AutoIncome && strings.HasSuffix(t.Description, suffix) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) HasAnyAutoIncome(_ context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.items {
		if t.AutoIncome {
			return true, nil
		}
	}
	return false, nil
}

// Transactions returns a copy of every stored transaction in insertion order.
func (s *Store) Transactions() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.items...)
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
