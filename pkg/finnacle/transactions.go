package finnacle

import (
	"strings"
	"time"
)

// TransactionKind distinguishes income from expense records.
type TransactionKind string

const (
	KindIncome  TransactionKind = "income"
	KindExpense TransactionKind = "expense"
)

const dateLayout = "2006-01-02"

// Transaction is an immutable income or expense record. Label carries the
// income source or the expense category; grouping is case-sensitive.
type Transaction struct {
	ID         int64           `json:"id"`
	OwnerID    string          `json:"userId"`
	Kind       TransactionKind `json:"kind"`
	Label      string          `json:"label"`
	Icon       *string         `json:"icon"`
	Amount     Amount          `json:"amount"`
	OccurredOn string          `json:"occurredOn"`
	CreatedAt  string          `json:"createdAt"`
}

// AddTransactionRequest defines inputs to record a transaction.
type AddTransactionRequest struct {
	OwnerID    string
	Kind       TransactionKind
	Label      string
	Icon       *string
	Amount     Amount
	OccurredOn string
}

// AddTransaction inserts a transaction and returns the stored record.
func (c *Core) AddTransaction(req AddTransactionRequest) (Transaction, error) {
	if err := c.ownerExists(req.OwnerID); err != nil {
		return Transaction{}, err
	}
	if req.Kind != KindIncome && req.Kind != KindExpense {
		return Transaction{}, NewError(ErrCodeInvalidInput, "kind must be income or expense")
	}
	label := strings.TrimSpace(req.Label)
	if label == "" {
		return Transaction{}, NewError(ErrCodeInvalidInput, "label is required")
	}
	if req.Amount.IsNegative() {
		return Transaction{}, NewError(ErrCodeInvalidInput, "amount must not be negative")
	}
	if req.OccurredOn == "" {
		return Transaction{}, NewError(ErrCodeInvalidInput, "date is required")
	}
	if _, err := time.Parse(dateLayout, req.OccurredOn); err != nil {
		return Transaction{}, NewError(ErrCodeInvalidInput, "date must be YYYY-MM-DD")
	}

	result, err := c.db.Exec(`
		INSERT INTO transactions (user_id, kind, label, icon, amount, occurred_on)
		VALUES (?, ?, ?, ?, ?, ?)
	`, req.OwnerID, string(req.Kind), label, nullString(req.Icon), req.Amount, req.OccurredOn)
	if err != nil {
		return Transaction{}, WrapError(ErrCodeDatabase, "insert transaction", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return Transaction{}, WrapError(ErrCodeDatabase, "read insert id", err)
	}
	return c.getTransaction(id)
}

func (c *Core) getTransaction(id int64) (Transaction, error) {
	rows, err := c.db.Query(selectTransaction+" WHERE id = ?", id)
	if err != nil {
		return Transaction{}, WrapError(ErrCodeDatabase, "load transaction", err)
	}
	defer rows.Close()
	if !rows.Next() {
		return Transaction{}, NewError(ErrCodeNotFound, "transaction not found")
	}
	return scanTransaction(rows)
}

const selectTransaction = `
	SELECT id, user_id, kind, label, icon, amount, occurred_on, created_at
	FROM transactions
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (Transaction, error) {
	var t Transaction
	var icon *string
	if err := row.Scan(&t.ID, &t.OwnerID, &t.Kind, &t.Label, &icon, &t.Amount, &t.OccurredOn, &t.CreatedAt); err != nil {
		return Transaction{}, WrapError(ErrCodeDatabase, "scan transaction", err)
	}
	t.Icon = icon
	return t, nil
}

// GetTransactions lists an owner's transactions of one kind, newest first.
func (c *Core) GetTransactions(ownerID string, kind TransactionKind) ([]Transaction, error) {
	if err := c.ownerExists(ownerID); err != nil {
		return nil, err
	}
	return c.queryTransactions(
		selectTransaction+" WHERE user_id = ? AND kind = ? ORDER BY occurred_on DESC, id DESC",
		ownerID, string(kind),
	)
}

// transactionsSince lists an owner's transactions of one kind on or after a date, newest first.
func (c *Core) transactionsSince(ownerID string, kind TransactionKind, since string) ([]Transaction, error) {
	return c.queryTransactions(
		selectTransaction+" WHERE user_id = ? AND kind = ? AND occurred_on >= ? ORDER BY occurred_on DESC, id DESC",
		ownerID, string(kind), since,
	)
}

// recentTransactions lists the newest records of one kind, capped at limit.
func (c *Core) recentTransactions(ownerID string, kind TransactionKind, limit int) ([]Transaction, error) {
	return c.queryTransactions(
		selectTransaction+" WHERE user_id = ? AND kind = ? ORDER BY occurred_on DESC, id DESC LIMIT ?",
		ownerID, string(kind), limit,
	)
}

func (c *Core) queryTransactions(query string, args ...any) ([]Transaction, error) {
	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, WrapError(ErrCodeDatabase, "query transactions", err)
	}
	defer rows.Close()

	transactions := []Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, WrapError(ErrCodeDatabase, "iterate transactions", err)
	}
	return transactions, nil
}

// DeleteTransaction removes a transaction by ID, scoped to its owner.
func (c *Core) DeleteTransaction(ownerID string, id int64) (bool, error) {
	if err := c.ownerExists(ownerID); err != nil {
		return false, err
	}
	result, err := c.db.Exec("DELETE FROM transactions WHERE id = ? AND user_id = ?", id, ownerID)
	if err != nil {
		return false, WrapError(ErrCodeDatabase, "delete transaction", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, WrapError(ErrCodeDatabase, "read delete result", err)
	}
	return affected > 0, nil
}

// totalAmount sums every transaction of one kind for an owner.
func (c *Core) totalAmount(ownerID string, kind TransactionKind) (Amount, error) {
	var total Amount
	err := c.db.QueryRow(
		"SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE user_id = ? AND kind = ?",
		ownerID, string(kind),
	).Scan(&total)
	if err != nil {
		return Amount{}, WrapError(ErrCodeDatabase, "sum transactions", err)
	}
	return total, nil
}

func nullString(v *string) any {
	if v == nil || *v == "" {
		return nil
	}
	return *v
}
