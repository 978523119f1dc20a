package finnacle

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Enrichment fan-out limits. A slow provider must not serialize the whole
// portfolio view, and one hung lookup must not block the batch.
const (
	maxQuoteConcurrency = 4
	quoteLookupTimeout  = 5 * time.Second
)

// Holding is a stored stock position. Symbols are unique per owner.
type Holding struct {
	ID        int64  `json:"id"`
	OwnerID   string `json:"userId"`
	Name      string `json:"stock"`
	Symbol    string `json:"symbol"`
	Quantity  Amount `json:"quantity"`
	BuyPrice  Amount `json:"buyPrice"`
	CreatedAt string `json:"createdAt"`
}

// EnrichedHolding is a holding annotated with live valuation. The derived
// fields are nil when the quote lookup failed for that symbol.
type EnrichedHolding struct {
	Holding
	CurrentPrice *Amount `json:"currentPrice"`
	CurrentValue *Amount `json:"currentValue"`
	ProfitLoss   *Amount `json:"profitLoss"`
}

// PortfolioValueSample is one append-only point of the portfolio's total value.
type PortfolioValueSample struct {
	ID         int64  `json:"id"`
	OwnerID    string `json:"userId"`
	TotalValue Amount `json:"totalValue"`
	RecordedAt string `json:"recordedAt"`
}

// AddHoldingRequest defines inputs to record a stock position.
type AddHoldingRequest struct {
	OwnerID  string
	Name     string
	Symbol   string
	Quantity Amount
	BuyPrice Amount
}

// AddHolding inserts a holding and returns the stored record.
func (c *Core) AddHolding(req AddHoldingRequest) (Holding, error) {
	if err := c.ownerExists(req.OwnerID); err != nil {
		return Holding{}, err
	}
	name := strings.TrimSpace(req.Name)
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if name == "" || symbol == "" {
		return Holding{}, NewError(ErrCodeInvalidInput, "stock name and symbol are required")
	}
	if !req.Quantity.IsPositive() {
		return Holding{}, NewError(ErrCodeInvalidInput, "quantity must be positive")
	}
	if !req.BuyPrice.IsPositive() {
		return Holding{}, NewError(ErrCodeInvalidInput, "buy price must be positive")
	}

	result, err := c.db.Exec(`
		INSERT INTO holdings (user_id, name, symbol, quantity, buy_price)
		VALUES (?, ?, ?, ?, ?)
	`, req.OwnerID, name, symbol, req.Quantity, req.BuyPrice)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return Holding{}, NewError(ErrCodeDuplicate, "symbol already in portfolio: "+symbol)
		}
		return Holding{}, WrapError(ErrCodeDatabase, "insert holding", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return Holding{}, WrapError(ErrCodeDatabase, "read insert id", err)
	}
	return c.getHolding(id)
}

const selectHolding = `
	SELECT id, user_id, name, symbol, quantity, buy_price, created_at
	FROM holdings
`

func scanHolding(row rowScanner) (Holding, error) {
	var h Holding
	if err := row.Scan(&h.ID, &h.OwnerID, &h.Name, &h.Symbol, &h.Quantity, &h.BuyPrice, &h.CreatedAt); err != nil {
		return Holding{}, WrapError(ErrCodeDatabase, "scan holding", err)
	}
	return h, nil
}

func (c *Core) getHolding(id int64) (Holding, error) {
	rows, err := c.db.Query(selectHolding+" WHERE id = ?", id)
	if err != nil {
		return Holding{}, WrapError(ErrCodeDatabase, "load holding", err)
	}
	defer rows.Close()
	if !rows.Next() {
		return Holding{}, NewError(ErrCodeNotFound, "holding not found")
	}
	return scanHolding(rows)
}

// getHoldings lists an owner's holdings in insertion order.
func (c *Core) getHoldings(ownerID string) ([]Holding, error) {
	rows, err := c.db.Query(selectHolding+" WHERE user_id = ? ORDER BY id", ownerID)
	if err != nil {
		return nil, WrapError(ErrCodeDatabase, "query holdings", err)
	}
	defer rows.Close()

	holdings := []Holding{}
	for rows.Next() {
		h, err := scanHolding(rows)
		if err != nil {
			return nil, err
		}
		holdings = append(holdings, h)
	}
	if err := rows.Err(); err != nil {
		return nil, WrapError(ErrCodeDatabase, "iterate holdings", err)
	}
	return holdings, nil
}

// DeleteHolding removes a holding by ID, scoped to its owner.
func (c *Core) DeleteHolding(ownerID string, id int64) (bool, error) {
	if err := c.ownerExists(ownerID); err != nil {
		return false, err
	}
	result, err := c.db.Exec("DELETE FROM holdings WHERE id = ? AND user_id = ?", id, ownerID)
	if err != nil {
		return false, WrapError(ErrCodeDatabase, "delete holding", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, WrapError(ErrCodeDatabase, "read delete result", err)
	}
	return affected > 0, nil
}

// EnrichedPortfolio returns the owner's holdings with live valuation and
// appends one portfolio value sample for the view. Quote failures degrade
// the affected holding's derived fields to null and never abort the batch;
// store failures abort the whole call.
func (c *Core) EnrichedPortfolio(ctx context.Context, ownerID string) ([]EnrichedHolding, error) {
	if err := c.ownerExists(ownerID); err != nil {
		return nil, err
	}
	holdings, err := c.getHoldings(ownerID)
	if err != nil {
		return nil, err
	}

	enriched := c.enrichHoldings(ctx, holdings)

	total := Amount{}
	for _, e := range enriched {
		if e.CurrentValue != nil {
			total = total.Plus(*e.CurrentValue)
		}
	}
	// The history sample is best-effort: a full valuation view is still
	// worth returning when only the append failed.
	if _, err := c.RecordPortfolioValue(ownerID, total); err != nil {
		c.logger.Warn("portfolio value sample not recorded", "owner_id", ownerID, "err", err)
	}

	return enriched, nil
}

// enrichHoldings fans quote lookups out concurrently, bounded by
// maxQuoteConcurrency, and joins all results. Output order matches input
// order regardless of which lookups complete first or fail.
func (c *Core) enrichHoldings(ctx context.Context, holdings []Holding) []EnrichedHolding {
	enriched := make([]EnrichedHolding, len(holdings))
	sem := make(chan struct{}, maxQuoteConcurrency)
	var wg sync.WaitGroup
	for i, h := range holdings {
		wg.Add(1)
		go func(i int, h Holding) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			lookupCtx, cancel := context.WithTimeout(ctx, quoteLookupTimeout)
			defer cancel()

			entry := EnrichedHolding{Holding: h}
			quote, err := c.quotes.fetch(lookupCtx, h.Symbol)
			if err != nil {
				c.logger.Warn("quote lookup failed", "symbol", h.Symbol, "err", err)
				enriched[i] = entry
				return
			}
			price := NewAmount(quote.CurrentPrice)
			entry.CurrentPrice = amountPtr(price)
			entry.CurrentValue = amountPtr(Amount{price.Mul(h.Quantity.Decimal)})
			entry.ProfitLoss = amountPtr(Amount{price.Sub(h.BuyPrice.Decimal).Mul(h.Quantity.Decimal)})
			enriched[i] = entry
		}(i, h)
	}
	wg.Wait()
	return enriched
}

// RecordPortfolioValue appends one total-value sample for the owner.
func (c *Core) RecordPortfolioValue(ownerID string, totalValue Amount) (PortfolioValueSample, error) {
	if err := c.ownerExists(ownerID); err != nil {
		return PortfolioValueSample{}, err
	}
	result, err := c.db.Exec(
		"INSERT INTO portfolio_history (user_id, total_value) VALUES (?, ?)",
		ownerID, totalValue,
	)
	if err != nil {
		return PortfolioValueSample{}, WrapError(ErrCodeDatabase, "insert value sample", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return PortfolioValueSample{}, WrapError(ErrCodeDatabase, "read insert id", err)
	}

	var sample PortfolioValueSample
	err = c.db.QueryRow(
		"SELECT id, user_id, total_value, recorded_at FROM portfolio_history WHERE id = ?",
		id,
	).Scan(&sample.ID, &sample.OwnerID, &sample.TotalValue, &sample.RecordedAt)
	if err != nil {
		return PortfolioValueSample{}, WrapError(ErrCodeDatabase, "load value sample", err)
	}
	return sample, nil
}

// GetPortfolioHistory returns the owner's value samples from the trailing
// window, oldest first. Retention is purely a read-side filter; the log
// itself is unbounded.
func (c *Core) GetPortfolioHistory(ownerID string, days int) ([]PortfolioValueSample, error) {
	if err := c.ownerExists(ownerID); err != nil {
		return nil, err
	}
	if days <= 0 {
		days = 30
	}
	cutoff := time.Now().AddDate(0, 0, -days).UTC().Format("2006-01-02 15:04:05")

	rows, err := c.db.Query(`
		SELECT id, user_id, total_value, recorded_at
		FROM portfolio_history
		WHERE user_id = ? AND recorded_at >= ?
		ORDER BY recorded_at, id
	`, ownerID, cutoff)
	if err != nil {
		return nil, WrapError(ErrCodeDatabase, "query value samples", err)
	}
	defer rows.Close()

	samples := []PortfolioValueSample{}
	for rows.Next() {
		var s PortfolioValueSample
		if err := rows.Scan(&s.ID, &s.OwnerID, &s.TotalValue, &s.RecordedAt); err != nil {
			return nil, WrapError(ErrCodeDatabase, "scan value sample", err)
		}
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, WrapError(ErrCodeDatabase, "iterate value samples", err)
	}
	return samples, nil
}
