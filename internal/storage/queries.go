package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// Queries holds the parameterized statements of the ledger schema.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const insertTransaction = `
INSERT INTO ledger (description, amount, auto_income, created_by, created_at)
VALUES (?, ROUND(?, 2), ?, ?, ?)
`

type InsertTransactionParams struct {
	Description string
	Amount      float64
	AutoIncome  int64
	CreatedBy   string
	CreatedAt   string
}

func (q *Queries) InsertTransaction(ctx context.Context, arg InsertTransactionParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, insertTransaction,
		arg.Description,
		arg.Amount,
		arg.AutoIncome,
		arg.CreatedBy,
		arg.CreatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

const getBalance = `
SELECT ROUND(COALESCE(SUM(amount), 0), 2) FROM ledger
`

func (q *Queries) GetBalance(ctx context.Context) (float64, error) {
	var balance float64
	err := q.db.QueryRowContext(ctx, getBalance).Scan(&balance)
	return balance, err
}

const listRecentTransactions = `
SELECT rowid, description, amount, auto_income, created_at, modified_at
FROM ledger
ORDER BY created_at DESC, rowid DESC
LIMIT ?
`

// ListRecentTransactions returns open rows; the caller owns rows.Close.
func (q *Queries) ListRecentTransactions(ctx context.Context, limit int64) (*sql.Rows, error) {
	return q.db.QueryContext(ctx, listRecentTransactions, limit)
}

const getConfigValue = `
SELECT v FROM configuration WHERE k = ? ORDER BY rowid LIMIT 1
`

func (q *Queries) GetConfigValue(ctx context.Context, key string) (string, error) {
	var v string
	err := q.db.QueryRowContext(ctx, getConfigValue, key).Scan(&v)
	return v, err
}

const insertConfig = `
INSERT INTO configuration (k, v) VALUES (?, ?)
`

func (q *Queries) InsertConfig(ctx context.Context, key, value string) error {
	_, err := q.db.ExecContext(ctx, insertConfig, key, value)
	return err
}

const hasAutoIncomeCreatedBetween = `
SELECT EXISTS (
    SELECT 1 FROM ledger
    WHERE auto_income = 1
    AND created_at >= ?
    AND created_at < ?
)
`

func (q *Queries) HasAutoIncomeCreatedBetween(ctx context.Context, from, to string) (bool, error) {
	var exists int64
	err := q.db.QueryRowContext(ctx, hasAutoIncomeCreatedBetween, from, to).Scan(&exists)
	return exists > 0, err
}

const hasAutoIncomeLike = `
SELECT EXISTS (
    SELECT 1 FROM ledger
    WHERE auto_income = 1
    AND description LIKE ?
)
`

func (q *Queries) HasAutoIncomeLike(ctx context.Context, pattern string) (bool, error) {
	var exists int64
	err := q.db.QueryRowContext(ctx, hasAutoIncomeLike, pattern).Scan(&exists)
	return exists > 0, err
}

const hasAnyAutoIncome = `
SELECT EXISTS (SELECT 1 FROM ledger WHERE auto_income = 1)
`

func (q *Queries) HasAnyAutoIncome(ctx context.Context) (bool, error) {
	var exists int64
	err := q.db.QueryRowContext(ctx, hasAnyAutoIncome).Scan(&exists)
	return exists > 0, err
}
