package finnacle

import (
	"context"
	"testing"
)

func TestAddHolding(t *testing.T) {
	core, cleanup := setupTestDB(t)
	defer cleanup()

	userID := testUser(t, core, "p@example.com")

	holding, err := core.AddHolding(AddHoldingRequest{
		OwnerID:  userID,
		Name:     "Apple Inc.",
		Symbol:   "aapl",
		Quantity: NewAmount(10),
		BuyPrice: NewAmount(100),
	})
	assertNoError(t, err, "add holding")

	if holding.Symbol != "AAPL" {
		t.Errorf("expected symbol to be uppercased, got %s", holding.Symbol)
	}
	assertAmount(t, holding.Quantity, 10, "quantity")
	assertAmount(t, holding.BuyPrice, 100, "buy price")
}

func TestAddHolding_Validation(t *testing.T) {
	core, cleanup := setupTestDB(t)
	defer cleanup()

	userID := testUser(t, core, "p@example.com")

	tests := []struct {
		name string
		req  AddHoldingRequest
		code ErrorCode
	}{
		{
			name: "unknown owner",
			req:  AddHoldingRequest{OwnerID: "ghost", Name: "X", Symbol: "X", Quantity: NewAmount(1), BuyPrice: NewAmount(1)},
			code: ErrCodeInvalidOwner,
		},
		{
			name: "missing symbol",
			req:  AddHoldingRequest{OwnerID: userID, Name: "X", Quantity: NewAmount(1), BuyPrice: NewAmount(1)},
			code: ErrCodeInvalidInput,
		},
		{
			name: "zero quantity",
			req:  AddHoldingRequest{OwnerID: userID, Name: "X", Symbol: "X", Quantity: NewAmount(0), BuyPrice: NewAmount(1)},
			code: ErrCodeInvalidInput,
		},
		{
			name: "negative buy price",
			req:  AddHoldingRequest{OwnerID: userID, Name: "X", Symbol: "X", Quantity: NewAmount(1), BuyPrice: NewAmount(-1)},
			code: ErrCodeInvalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := core.AddHolding(tt.req)
			assertErrorCode(t, err, tt.code, "add holding")
		})
	}
}

func TestAddHolding_DuplicateSymbol(t *testing.T) {
	core, cleanup := setupTestDB(t)
	defer cleanup()

	userID := testUser(t, core, "p@example.com")
	testHolding(t, core, userID, "Apple Inc.", "AAPL", 10, 100)

	_, err := core.AddHolding(AddHoldingRequest{
		OwnerID:  userID,
		Name:     "Apple again",
		Symbol:   "aapl",
		Quantity: NewAmount(1),
		BuyPrice: NewAmount(1),
	})
	assertErrorCode(t, err, ErrCodeDuplicate, "duplicate symbol")

	// Another owner may hold the same symbol.
	other := testUser(t, core, "q@example.com")
	testHolding(t, core, other, "Apple Inc.", "AAPL", 1, 1)
}

func TestDeleteHolding(t *testing.T) {
	core, cleanup := setupTestDB(t)
	defer cleanup()

	userID := testUser(t, core, "p@example.com")
	id := testHolding(t, core, userID, "Apple Inc.", "AAPL", 10, 100)

	deleted, err := core.DeleteHolding(userID, id)
	assertNoError(t, err, "delete holding")
	if !deleted {
		t.Fatal("expected deletion to report true")
	}

	deleted, err = core.DeleteHolding(userID, id)
	assertNoError(t, err, "delete again")
	if deleted {
		t.Error("expected second delete to report false")
	}
}

func TestEnrichedPortfolio(t *testing.T) {
	client := &fakeQuoteClient{prices: map[string]float64{"AAPL": 120}}
	core, cleanup := setupTestDBWithOptions(t, Options{QuoteClient: client})
	defer cleanup()

	userID := testUser(t, core, "p@example.com")
	testHolding(t, core, userID, "Apple Inc.", "AAPL", 10, 100)

	portfolio, err := core.EnrichedPortfolio(context.Background(), userID)
	assertNoError(t, err, "enriched portfolio")
	if len(portfolio) != 1 {
		t.Fatalf("expected 1 holding, got %d", len(portfolio))
	}

	entry := portfolio[0]
	if entry.CurrentPrice == nil || entry.CurrentValue == nil || entry.ProfitLoss == nil {
		t.Fatalf("expected derived fields to be set, got %+v", entry)
	}
	assertAmount(t, *entry.CurrentPrice, 120, "current price")
	assertAmount(t, *entry.CurrentValue, 1200, "current value")
	assertAmount(t, *entry.ProfitLoss, 200, "profit and loss")
}

func TestEnrichedPortfolio_LossIsNegative(t *testing.T) {
	client := &fakeQuoteClient{prices: map[string]float64{"TSLA": 200}}
	core, cleanup := setupTestDBWithOptions(t, Options{QuoteClient: client})
	defer cleanup()

	userID := testUser(t, core, "p@example.com")
	testHolding(t, core, userID, "Tesla Inc.", "TSLA", 2, 250)

	portfolio, err := core.EnrichedPortfolio(context.Background(), userID)
	assertNoError(t, err, "enriched portfolio")
	assertAmount(t, *portfolio[0].ProfitLoss, -100, "losing position")
}

// A failed lookup nulls that holding's derived fields but never drops it or
// disturbs the others, and output order matches insertion order.
func TestEnrichedPortfolio_PartialFailure(t *testing.T) {
	client := &fakeQuoteClient{prices: map[string]float64{"AAPL": 120, "MSFT": 300}}
	core, cleanup := setupTestDBWithOptions(t, Options{QuoteClient: client})
	defer cleanup()

	userID := testUser(t, core, "p@example.com")
	testHolding(t, core, userID, "Apple Inc.", "AAPL", 10, 100)
	testHolding(t, core, userID, "Unknown Corp", "NOPE", 5, 50)
	testHolding(t, core, userID, "Microsoft", "MSFT", 1, 200)

	portfolio, err := core.EnrichedPortfolio(context.Background(), userID)
	assertNoError(t, err, "enriched portfolio")
	if len(portfolio) != 3 {
		t.Fatalf("expected 3 holdings, got %d", len(portfolio))
	}

	if portfolio[0].Symbol != "AAPL" || portfolio[1].Symbol != "NOPE" || portfolio[2].Symbol != "MSFT" {
		t.Fatalf("expected insertion order, got %s %s %s",
			portfolio[0].Symbol, portfolio[1].Symbol, portfolio[2].Symbol)
	}
	if portfolio[0].CurrentPrice == nil || portfolio[2].CurrentPrice == nil {
		t.Error("expected successful lookups to carry prices")
	}
	if portfolio[1].CurrentPrice != nil || portfolio[1].CurrentValue != nil || portfolio[1].ProfitLoss != nil {
		t.Errorf("expected failed lookup to null derived fields, got %+v", portfolio[1])
	}
}

func TestEnrichedPortfolio_RecordsValueSample(t *testing.T) {
	client := &fakeQuoteClient{prices: map[string]float64{"AAPL": 120, "MSFT": 300}}
	core, cleanup := setupTestDBWithOptions(t, Options{QuoteClient: client})
	defer cleanup()

	userID := testUser(t, core, "p@example.com")
	testHolding(t, core, userID, "Apple Inc.", "AAPL", 10, 100)
	testHolding(t, core, userID, "Unknown Corp", "NOPE", 5, 50)
	testHolding(t, core, userID, "Microsoft", "MSFT", 2, 200)

	_, err := core.EnrichedPortfolio(context.Background(), userID)
	assertNoError(t, err, "enriched portfolio")

	history, err := core.GetPortfolioHistory(userID, 0)
	assertNoError(t, err, "portfolio history")
	if len(history) != 1 {
		t.Fatalf("expected 1 value sample, got %d", len(history))
	}
	// Only priced holdings count: 10*120 + 2*300.
	assertAmount(t, history[0].TotalValue, 1800, "sampled total value")
}

func TestRecordPortfolioValue(t *testing.T) {
	core, cleanup := setupTestDB(t)
	defer cleanup()

	userID := testUser(t, core, "p@example.com")

	sample, err := core.RecordPortfolioValue(userID, NewAmount(12345.67))
	assertNoError(t, err, "record value")
	if sample.ID == 0 {
		t.Error("expected a generated id")
	}
	assertAmount(t, sample.TotalValue, 12345.67, "total value")
	if sample.RecordedAt == "" {
		t.Error("expected recorded_at to be set")
	}
}

func TestGetPortfolioHistory_OldestFirst(t *testing.T) {
	core, cleanup := setupTestDB(t)
	defer cleanup()

	userID := testUser(t, core, "p@example.com")
	for _, value := range []float64{100, 200, 300} {
		_, err := core.RecordPortfolioValue(userID, NewAmount(value))
		assertNoError(t, err, "record value")
	}

	history, err := core.GetPortfolioHistory(userID, 0)
	assertNoError(t, err, "portfolio history")
	if len(history) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(history))
	}
	assertAmount(t, history[0].TotalValue, 100, "first sample")
	assertAmount(t, history[2].TotalValue, 300, "last sample")
}
