package finnacle

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyBucket maps labels (expense categories or income sources) to their
// monthly totals. The reserved "total" key carries the sum of all labels in
// the bucket and is kept in sync on every merge.
type MonthlyBucket map[string]Amount

const bucketTotalKey = "total"

// FinanceSummary is the month-keyed breakdown of one owner's finances over
// the lookback window, plus the portfolio investment snapshot.
type FinanceSummary struct {
	Expenses   map[string]MonthlyBucket `json:"expenses"`
	Income     map[string]MonthlyBucket `json:"income"`
	Investment InvestmentSummary        `json:"investment"`
}

// InvestmentSummary totals the cost basis across all holdings.
type InvestmentSummary struct {
	Invested Amount            `json:"invested"`
	Holdings []InvestedHolding `json:"holdings"`
}

// InvestedHolding annotates a holding with its invested cost basis.
type InvestedHolding struct {
	Stock    string `json:"stock"`
	Symbol   string `json:"symbol"`
	Quantity Amount `json:"quantity"`
	BuyPrice Amount `json:"buyPrice"`
	Invested Amount `json:"invested"`
}

// DefaultLookback is the trailing window a summary covers when the caller
// does not specify one.
const DefaultLookback = 365 * 24 * time.Hour

// FinanceSummary produces the owner's monthly income/expense breakdown and
// investment totals. A zero asOf defaults to now; a zero lookback defaults
// to one year. The call is a pure read: owners with no records get a
// structurally complete empty summary.
func (c *Core) FinanceSummary(ownerID string, asOf time.Time, lookback time.Duration) (FinanceSummary, error) {
	if err := c.ownerExists(ownerID); err != nil {
		return FinanceSummary{}, err
	}
	if asOf.IsZero() {
		asOf = time.Now()
	}
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	since := asOf.Add(-lookback).Format(dateLayout)

	expenses, err := c.monthlyBuckets(ownerID, KindExpense, since)
	if err != nil {
		return FinanceSummary{}, err
	}
	income, err := c.monthlyBuckets(ownerID, KindIncome, since)
	if err != nil {
		return FinanceSummary{}, err
	}

	holdings, err := c.getHoldings(ownerID)
	if err != nil {
		return FinanceSummary{}, err
	}
	invested := Amount{}
	annotated := make([]InvestedHolding, 0, len(holdings))
	for _, h := range holdings {
		cost := Amount{h.BuyPrice.Mul(h.Quantity.Decimal)}
		invested = invested.Plus(cost)
		annotated = append(annotated, InvestedHolding{
			Stock:    h.Name,
			Symbol:   h.Symbol,
			Quantity: h.Quantity,
			BuyPrice: h.BuyPrice,
			Invested: cost,
		})
	}

	return FinanceSummary{
		Expenses: expenses,
		Income:   income,
		Investment: InvestmentSummary{
			Invested: invested,
			Holdings: annotated,
		},
	}, nil
}

// monthlyBuckets groups one kind's transactions by (year, month, label),
// then folds the grouped sums into month-name buckets. Buckets are keyed by
// month name only: two years that share a month within the window merge
// into one bucket. That mirrors the behavior the dashboard has always
// shown, so it stays until product decides otherwise.
func (c *Core) monthlyBuckets(ownerID string, kind TransactionKind, since string) (map[string]MonthlyBucket, error) {
	rows, err := c.db.Query(`
		SELECT
			CAST(strftime('%Y', occurred_on) AS INTEGER) AS year,
			CAST(strftime('%m', occurred_on) AS INTEGER) AS month,
			label,
			SUM(amount) AS total
		FROM transactions
		WHERE user_id = ? AND kind = ? AND occurred_on >= ?
		GROUP BY year, month, label
		ORDER BY year, month
	`, ownerID, string(kind), since)
	if err != nil {
		return nil, WrapError(ErrCodeDatabase, "group transactions", err)
	}
	defer rows.Close()

	buckets := map[string]MonthlyBucket{}
	for rows.Next() {
		var year, month int
		var label string
		var total Amount
		if err := rows.Scan(&year, &month, &label, &total); err != nil {
			return nil, WrapError(ErrCodeDatabase, "scan grouped row", err)
		}

		name := time.Month(month).String()
		bucket, ok := buckets[name]
		if !ok {
			bucket = MonthlyBucket{bucketTotalKey: Amount{decimal.Zero}}
			buckets[name] = bucket
		}
		// Sum rather than overwrite: the same (month, label) pair can
		// arrive once per year in the window.
		bucket[label] = bucket[label].Plus(total)
		bucket[bucketTotalKey] = bucket[bucketTotalKey].Plus(total)
	}
	if err := rows.Err(); err != nil {
		return nil, WrapError(ErrCodeDatabase, "iterate grouped rows", err)
	}
	return buckets, nil
}
