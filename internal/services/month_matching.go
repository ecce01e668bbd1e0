// Package services provides the ledger's business logic.
//
// This file implements the strategies that decide whether the auto-income for
// a calendar month has already been booked. Rows can be matched by their
// creation timestamp or by the "MM/YYYY" suffix of their description; the two
// disagree when the ledger was not opened exactly once per month or when the
// clock was skewed, so the choice is left to configuration.
package services

import (
	"context"
	"fmt"
	"time"

	"virtuallet/internal/core"
)

// AutoIncomeFinder is the part of the Store that month matchers query.
type AutoIncomeFinder interface {
	HasAutoIncomeCreatedBetween(ctx context.Context, from, to time.Time) (bool, error)
	HasAutoIncomeLabelled(ctx context.Context, m core.MonthYear) (bool, error)
	HasAnyAutoIncome(ctx context.Context) (bool, error)
}

// MonthMatcher is the strategy interface for finding an auto-income of a month.
type MonthMatcher interface {
	// HasAutoIncome reports whether month m already has an auto-income.
	// loc is the time zone calendar months are evaluated in.
	HasAutoIncome(ctx context.Context, store AutoIncomeFinder, m core.MonthYear, loc *time.Location) (bool, error)
}

// TimestampMatcher matches auto-income rows whose created_at falls in the month.
type TimestampMatcher struct{}

func (TimestampMatcher) HasAutoIncome(ctx context.Context, store AutoIncomeFinder, m core.MonthYear, loc *time.Location) (bool, error) {
	return store.HasAutoIncomeCreatedBetween(ctx, m.Start(loc), m.Next().Start(loc))
}

// DescriptionMatcher matches auto-income rows labelled "<description> MM/YYYY".
type DescriptionMatcher struct{}

func (DescriptionMatcher) HasAutoIncome(ctx context.Context, store AutoIncomeFinder, m core.MonthYear, _ *time.Location) (bool, error) {
	return store.HasAutoIncomeLabelled(ctx, m)
}

const (
	MatchByTimestamp   = "timestamp"
	MatchByDescription = "description"
)

var monthMatchers = map[string]MonthMatcher{
	MatchByTimestamp:   TimestampMatcher{},
	MatchByDescription: DescriptionMatcher{},
}

// GetMonthMatcher returns the matcher registered under name.
func GetMonthMatcher(name string) (MonthMatcher, error) {
	matcher, ok := monthMatchers[name]
	if !ok {
		return nil, fmt.Errorf("unknown month matching strategy: %s", name)
	}
	return matcher, nil
}

// RegisterMonthMatcher adds or replaces a named matcher.
func RegisterMonthMatcher(name string, matcher MonthMatcher) {
	monthMatchers[name] = matcher
}
