package services

import (
	"context"
	"fmt"

	"virtuallet/internal/core"
	"virtuallet/internal/log"
)

// BackfillDueIncomes books the configured income for every calendar month,
// up to and including the current one, that has no auto-income yet.
//
// It walks backwards from the current month until it reaches a month that
// already has one, then books the collected months oldest first. Running it
// again in the same month inserts nothing. Returns the number of incomes
// booked.
func (l *Ledger) BackfillDueIncomes(ctx context.Context) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Read configuration first so an unconfigured ledger fails before any walk.
	label, err := l.store.ConfigValue(ctx, core.ConfIncomeDescription)
	if err != nil {
		return 0, err
	}
	amount, err := l.configAmount(ctx, core.ConfIncomeAmount)
	if err != nil {
		return 0, err
	}

	due, err := l.dueMonths(ctx)
	if err != nil {
		return 0, err
	}

	booked := 0
	for i := len(due) - 1; i >= 0; i-- {
		month := due[i]
		if err := l.insert(ctx, core.AutoIncomeDescription(label, month), amount, true); err != nil {
			l.logger.ErrorContext(ctx, "Failed to book auto income",
				log.FieldOperation, log.OpBackfill,
				log.FieldMonth, month.String(),
				log.FieldError, err)
			return booked, err
		}
		booked++
		l.logger.InfoContext(ctx, "Auto income booked",
			log.FieldOperation, log.OpBackfill,
			log.FieldMonth, month.String(),
			log.FieldAmountCents, amount.Cents)
	}

	l.logger.InfoContext(ctx, "Backfill complete",
		log.FieldOperation, log.OpBackfill,
		log.FieldInserted, booked)

	return booked, nil
}

// dueMonths returns the months without auto-income, newest first.
func (l *Ledger) dueMonths(ctx context.Context) ([]core.MonthYear, error) {
	now := l.now()
	current := core.MonthYearOf(now)

	// Without any auto-income the walk has no stopping point; only the
	// current month is due.
	anyAuto, err := l.store.HasAnyAutoIncome(ctx)
	if err != nil {
		return nil, err
	}
	if !anyAuto {
		return []core.MonthYear{current}, nil
	}

	var due []core.MonthYear
	for month := current; ; month = month.Previous() {
		found, err := l.matcher.HasAutoIncome(ctx, l.store, month, now.Location())
		if err != nil {
			return nil, err
		}
		if found {
			return due, nil
		}
		if len(due) >= l.backfillLimit {
			return nil, fmt.Errorf("no auto income found since %s: %w", month.String(), core.ErrBackfillLimit)
		}
		due = append(due, month)
	}
}
