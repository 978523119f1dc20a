package finnacle

import (
	"sort"
	"time"
)

// RecentTransaction is a transaction tagged with its kind under the legacy
// "type" key the dashboard chart expects.
type RecentTransaction struct {
	Transaction
	Type TransactionKind `json:"type"`
}

// TransactionWindow pairs a trailing window's total with its records.
type TransactionWindow struct {
	Total        Amount        `json:"total"`
	Transactions []Transaction `json:"transactions"`
}

// DashboardData aggregates the headline numbers for the home screen.
type DashboardData struct {
	TotalBalance       Amount              `json:"totalBalance"`
	TotalIncome        Amount              `json:"totalIncome"`
	TotalExpenses      Amount              `json:"totalExpenses"`
	Last30DaysExpenses TransactionWindow   `json:"last30DaysExpenses"`
	Last60DaysIncome   TransactionWindow   `json:"last60DaysIncome"`
	RecentTransactions []RecentTransaction `json:"recentTransactions"`
}

// DashboardData computes all-time totals, the trailing expense and income
// windows, and the latest records of each kind merged newest first.
func (c *Core) DashboardData(ownerID string) (DashboardData, error) {
	if err := c.ownerExists(ownerID); err != nil {
		return DashboardData{}, err
	}

	totalIncome, err := c.totalAmount(ownerID, KindIncome)
	if err != nil {
		return DashboardData{}, err
	}
	totalExpenses, err := c.totalAmount(ownerID, KindExpense)
	if err != nil {
		return DashboardData{}, err
	}

	now := time.Now()
	last30Expenses, err := c.transactionsSince(ownerID, KindExpense, now.AddDate(0, 0, -30).Format(dateLayout))
	if err != nil {
		return DashboardData{}, err
	}
	last60Income, err := c.transactionsSince(ownerID, KindIncome, now.AddDate(0, 0, -60).Format(dateLayout))
	if err != nil {
		return DashboardData{}, err
	}

	recent, err := c.mergedRecent(ownerID, 5)
	if err != nil {
		return DashboardData{}, err
	}

	return DashboardData{
		TotalBalance:       Amount{totalIncome.Sub(totalExpenses.Decimal)},
		TotalIncome:        totalIncome,
		TotalExpenses:      totalExpenses,
		Last30DaysExpenses: TransactionWindow{Total: sumAmounts(last30Expenses), Transactions: last30Expenses},
		Last60DaysIncome:   TransactionWindow{Total: sumAmounts(last60Income), Transactions: last60Income},
		RecentTransactions: recent,
	}, nil
}

// mergedRecent takes the newest limit records of each kind and merges them
// by date, newest first.
func (c *Core) mergedRecent(ownerID string, limit int) ([]RecentTransaction, error) {
	income, err := c.recentTransactions(ownerID, KindIncome, limit)
	if err != nil {
		return nil, err
	}
	expenses, err := c.recentTransactions(ownerID, KindExpense, limit)
	if err != nil {
		return nil, err
	}

	merged := make([]RecentTransaction, 0, len(income)+len(expenses))
	for _, t := range income {
		merged = append(merged, RecentTransaction{Transaction: t, Type: KindIncome})
	}
	for _, t := range expenses {
		merged = append(merged, RecentTransaction{Transaction: t, Type: KindExpense})
	}
	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].OccurredOn != merged[j].OccurredOn {
			return merged[i].OccurredOn > merged[j].OccurredOn
		}
		return merged[i].ID > merged[j].ID
	})
	return merged, nil
}

func sumAmounts(transactions []Transaction) Amount {
	total := Amount{}
	for _, t := range transactions {
		total = total.Plus(t.Amount)
	}
	return total
}
