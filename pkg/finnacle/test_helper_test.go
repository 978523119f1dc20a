package finnacle

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testJWTSecret = "test-secret"

// setupTestDB creates a temporary database for testing and returns a Core
// instance. The caller should defer cleanup() to remove the temp file.
func setupTestDB(t *testing.T) (*Core, func()) {
	t.Helper()
	return setupTestDBWithOptions(t, Options{})
}

func setupTestDBWithOptions(t *testing.T, opts Options) (*Core, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "finnacle-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	opts.DBPath = filepath.Join(tmpDir, "test.db")
	if opts.JWTSecret == "" {
		opts.JWTSecret = testJWTSecret
	}
	core, err := OpenWithOptions(opts)
	if err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("failed to open test db: %v", err)
	}

	cleanup := func() {
		core.Close()
		os.RemoveAll(tmpDir)
	}

	return core, cleanup
}

// testUser registers a user and returns its ID.
func testUser(t *testing.T, core *Core, email string) string {
	t.Helper()
	result, err := core.Register(RegisterRequest{
		FullName: "Test User",
		Email:    email,
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return result.User.ID
}

// testTransaction records a transaction for testing.
func testTransaction(t *testing.T, core *Core, ownerID string, kind TransactionKind, label string, amount float64, occurredOn string) int64 {
	t.Helper()
	transaction, err := core.AddTransaction(AddTransactionRequest{
		OwnerID:    ownerID,
		Kind:       kind,
		Label:      label,
		Amount:     NewAmount(amount),
		OccurredOn: occurredOn,
	})
	if err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return transaction.ID
}

// testHolding records a stock position for testing.
func testHolding(t *testing.T, core *Core, ownerID, name, symbol string, quantity, buyPrice float64) int64 {
	t.Helper()
	holding, err := core.AddHolding(AddHoldingRequest{
		OwnerID:  ownerID,
		Name:     name,
		Symbol:   symbol,
		Quantity: NewAmount(quantity),
		BuyPrice: NewAmount(buyPrice),
	})
	if err != nil {
		t.Fatalf("failed to create test holding: %v", err)
	}
	return holding.ID
}

// fakeQuoteClient serves canned prices per symbol. Symbols absent from the
// map produce an empty result set.
type fakeQuoteClient struct {
	prices map[string]float64
	calls  int
}

func (f *fakeQuoteClient) Do(req *http.Request) (*http.Response, error) {
	f.calls++
	symbol := strings.ToUpper(req.URL.Query().Get("symbols"))
	body := `{"quoteResponse":{"result":[],"error":null}}`
	if price, ok := f.prices[symbol]; ok {
		body = fmt.Sprintf(`{"quoteResponse":{"result":[{"symbol":%q,"regularMarketPrice":%g}],"error":null}}`, symbol, price)
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}, nil
}

// assertNoError fails the test if err is not nil.
func assertNoError(t *testing.T, err error, msg string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", msg, err)
	}
}

// assertErrorCode fails the test unless err carries the given code.
func assertErrorCode(t *testing.T, err error, code ErrorCode, msg string) {
	t.Helper()
	if err == nil {
		t.Fatalf("%s: expected error with code %s, got nil", msg, code)
	}
	if !IsErrorCode(err, code) {
		t.Fatalf("%s: expected error code %s, got: %v", msg, code, err)
	}
}

// assertAmount fails the test unless the amount equals want.
func assertAmount(t *testing.T, got Amount, want float64, msg string) {
	t.Helper()
	if !got.Equal(NewAmount(want).Decimal) {
		t.Errorf("%s: got %s, want %g", msg, got.String(), want)
	}
}

// dateDaysAgo formats a date n days before now.
func dateDaysAgo(n int) string {
	return time.Now().AddDate(0, 0, -n).Format(dateLayout)
}
