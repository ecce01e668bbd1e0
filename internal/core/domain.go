package core

import (
	"errors"
	"fmt"
	"time"
)

// Configuration keys stored in the configuration table.
const (
	ConfIncomeDescription = "income_description"
	ConfIncomeAmount      = "income_amount"
	ConfOverdraft         = "overdraft"
)

type (
	Transaction struct {
		ID          int64 // rowid
		Description string
		Amount      Money // positive = income, negative = expense
		AutoIncome  bool
		CreatedAt   time.Time
		ModifiedAt  *time.Time // only ever set by out-of-band edits
	}

	// MonthYear identifies a calendar month.
	MonthYear struct {
		Month time.Month
		Year  int
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotConfigured     = errors.New("ledger not configured")
	ErrAlreadyConfigured = errors.New("ledger already configured")
	ErrBackfillLimit     = errors.New("backfill walk exceeded month limit")
)

// StorageError reports a failure of the persistence medium.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError wraps err, returning nil for a nil err.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// IsStorageError reports whether err carries a StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// IsIncome returns true for positive amounts
func (t Transaction) IsIncome() bool {
	return t.Amount.Cents > 0
}

func MonthYearOf(t time.Time) MonthYear {
	return MonthYear{Month: t.Month(), Year: t.Year()}
}

// Previous returns the calendar month before m, rolling over into the previous year.
func (m MonthYear) Previous() MonthYear {
	if m.Month > time.January {
		return MonthYear{Month: m.Month - 1, Year: m.Year}
	}
	return MonthYear{Month: time.December, Year: m.Year - 1}
}

// Next returns the calendar month after m.
func (m MonthYear) Next() MonthYear {
	if m.Month < time.December {
		return MonthYear{Month: m.Month + 1, Year: m.Year}
	}
	return MonthYear{Month: time.January, Year: m.Year + 1}
}

// Start returns midnight of the first day of the month in loc.
func (m MonthYear) Start(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, loc)
}

// Before reports whether m is an earlier month than o.
func (m MonthYear) Before(o MonthYear) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

// String formats the month as MM/YYYY, the suffix used in auto-income labels.
func (m MonthYear) String() string {
	return fmt.Sprintf("%02d/%d", int(m.Month), m.Year)
}

// AutoIncomeDescription builds the label of the auto-income booked for m.
func AutoIncomeDescription(label string, m MonthYear) string {
	return label + " " + m.String()
}
