package finnacle

import (
	"testing"
)

func TestDashboardData_Totals(t *testing.T) {
	core, cleanup := setupTestDB(t)
	defer cleanup()

	userID := testUser(t, core, "dash@example.com")
	testTransaction(t, core, userID, KindIncome, "Salary", 5000, dateDaysAgo(10))
	testTransaction(t, core, userID, KindIncome, "Freelance", 800, dateDaysAgo(45))
	testTransaction(t, core, userID, KindExpense, "Rent", 1200, dateDaysAgo(5))
	testTransaction(t, core, userID, KindExpense, "Food", 300, dateDaysAgo(40))

	data, err := core.DashboardData(userID)
	assertNoError(t, err, "dashboard")

	assertAmount(t, data.TotalIncome, 5800, "total income")
	assertAmount(t, data.TotalExpenses, 1500, "total expenses")
	assertAmount(t, data.TotalBalance, 4300, "total balance")
}

func TestDashboardData_Windows(t *testing.T) {
	core, cleanup := setupTestDB(t)
	defer cleanup()

	userID := testUser(t, core, "dash@example.com")
	testTransaction(t, core, userID, KindExpense, "Recent", 100, dateDaysAgo(10))
	testTransaction(t, core, userID, KindExpense, "Stale", 999, dateDaysAgo(45))
	testTransaction(t, core, userID, KindIncome, "Recent pay", 2000, dateDaysAgo(50))
	testTransaction(t, core, userID, KindIncome, "Old pay", 5000, dateDaysAgo(90))

	data, err := core.DashboardData(userID)
	assertNoError(t, err, "dashboard")

	// Expenses window is 30 days, income window is 60.
	assertAmount(t, data.Last30DaysExpenses.Total, 100, "30d expense total")
	if len(data.Last30DaysExpenses.Transactions) != 1 {
		t.Errorf("expected 1 windowed expense, got %d", len(data.Last30DaysExpenses.Transactions))
	}
	assertAmount(t, data.Last60DaysIncome.Total, 2000, "60d income total")
	if len(data.Last60DaysIncome.Transactions) != 1 {
		t.Errorf("expected 1 windowed income record, got %d", len(data.Last60DaysIncome.Transactions))
	}
}

func TestDashboardData_RecentTransactions(t *testing.T) {
	core, cleanup := setupTestDB(t)
	defer cleanup()

	userID := testUser(t, core, "dash@example.com")
	for i := 0; i < 7; i++ {
		testTransaction(t, core, userID, KindExpense, "Expense", 10, dateDaysAgo(i))
	}
	testTransaction(t, core, userID, KindIncome, "Payday", 100, dateDaysAgo(1))

	data, err := core.DashboardData(userID)
	assertNoError(t, err, "dashboard")

	// Five newest of each kind, merged.
	if len(data.RecentTransactions) != 6 {
		t.Fatalf("expected 6 merged records, got %d", len(data.RecentTransactions))
	}
	for i := 1; i < len(data.RecentTransactions); i++ {
		if data.RecentTransactions[i-1].OccurredOn < data.RecentTransactions[i].OccurredOn {
			t.Fatal("expected merged records sorted newest first")
		}
	}
	for _, record := range data.RecentTransactions {
		if record.Type != KindIncome && record.Type != KindExpense {
			t.Errorf("expected a tagged kind, got %q", record.Type)
		}
	}
}

func TestDashboardData_EmptyOwner(t *testing.T) {
	core, cleanup := setupTestDB(t)
	defer cleanup()

	userID := testUser(t, core, "empty@example.com")

	data, err := core.DashboardData(userID)
	assertNoError(t, err, "dashboard")

	assertAmount(t, data.TotalBalance, 0, "balance")
	if len(data.RecentTransactions) != 0 {
		t.Errorf("expected no recent records, got %d", len(data.RecentTransactions))
	}
	if data.Last30DaysExpenses.Transactions == nil {
		t.Error("expected an empty slice, not nil")
	}
}
