package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"virtuallet/internal/core"
)

func TestStoreBalanceAndRecent(t *testing.T) {
	ctx := context.Background()
	s := New()

	balance, err := s.Balance(ctx)
	if err != nil || balance.Cents != 0 {
		t.Fatalf("empty balance = %v, %v; want 0", balance, err)
	}

	for i := 1; i <= 35; i++ {
		if err := s.InsertTransaction(ctx, "t", core.Money{Cents: int64(i)}, false); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	balance, _ = s.Balance(ctx)
	if balance.Cents != 35*36/2 {
		t.Fatalf("balance = %d, want %d", balance.Cents, 35*36/2)
	}

	var got []int64
	for tx, err := range s.RecentTransactions(ctx, 30) {
		if err != nil {
			t.Fatalf("iterate: %v", err)
		}
		got = append(got, tx.Amount.Cents)
	}
	if len(got) != 30 || got[0] != 35 || got[29] != 6 {
		t.Fatalf("unexpected recent transactions: %v", got)
	}
}

func TestStoreRecentTransactionsIsSingleUse(t *testing.T) {
	ctx := context.Background()
	s := New()
	_ = s.InsertTransaction(ctx, "a", core.Money{Cents: 100}, false)

	seq := s.RecentTransactions(ctx, 10)
	count := 0
	for range seq {
		count++
	}
	for range seq {
		count++
	}
	if count != 1 {
		t.Fatalf("expected one element across two ranges, got %d", count)
	}
}

func TestStoreConfig(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, err := s.ConfigValue(ctx, core.ConfOverdraft); !errors.Is(err, core.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	_ = s.InsertConfig(ctx, core.ConfOverdraft, "200")
	_ = s.InsertConfig(ctx, core.ConfOverdraft, "999")
	v, err := s.ConfigValue(ctx, core.ConfOverdraft)
	if err != nil || v != "200" {
		t.Fatalf("ConfigValue() = %q, %v; want first value 200", v, err)
	}
}

func TestStoreAutoIncomeMatching(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	s := NewWithClock(func() time.Time { return now })

	march := core.MonthYear{Month: time.March, Year: 2024}
	_ = s.InsertTransaction(ctx, "salary 03/2024", core.Money{Cents: 100}, false)

	if ok, _ := s.HasAnyAutoIncome(ctx); ok {
		t.Fatal("manual income must not count as auto income")
	}
	if ok, _ := s.HasAutoIncomeLabelled(ctx, march); ok {
		t.Fatal("manual income must not match label")
	}

	_ = s.InsertTransaction(ctx, core.AutoIncomeDescription("pocket money", march), core.Money{Cents: 100}, true)

	if ok, _ := s.HasAutoIncomeLabelled(ctx, march); !ok {
		t.Error("expected label match for 03/2024")
	}
	if ok, _ := s.HasAutoIncomeLabelled(ctx, march.Previous()); ok {
		t.Error("unexpected label match for 02/2024")
	}

	start := march.Start(time.UTC)
	if ok, _ := s.HasAutoIncomeCreatedBetween(ctx, start, march.Next().Start(time.UTC)); !ok {
		t.Error("expected timestamp match in March")
	}
	if ok, _ := s.HasAutoIncomeCreatedBetween(ctx, march.Previous().Start(time.UTC), start); ok {
		t.Error("unexpected timestamp match in February")
	}
}

func TestStoreClosed(t *testing.T) {
	ctx := context.Background()
	s := New()
	_ = s.Close()

	err := s.InsertTransaction(ctx, "x", core.Money{Cents: 1}, false)
	if !core.IsStorageError(err) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if _, err := s.Balance(ctx); !core.IsStorageError(err) {
		t.Fatalf("expected storage error, got %v", err)
	}
}
