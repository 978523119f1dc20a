package api

import "finnacle/pkg/finnacle"

type registerPayload struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type transactionPayload struct {
	Label      string          `json:"label"`
	Icon       *string         `json:"icon"`
	Amount     finnacle.Amount `json:"amount"`
	OccurredOn string          `json:"occurredOn"`
}

type holdingPayload struct {
	Stock    string          `json:"stock"`
	Symbol   string          `json:"symbol"`
	Quantity finnacle.Amount `json:"quantity"`
	BuyPrice finnacle.Amount `json:"buyPrice"`
}

type historyPayload struct {
	TotalValue finnacle.Amount `json:"totalValue"`
}

type promptPayload struct {
	Prompt string `json:"prompt"`
}

type chatPayload struct {
	UserQuestion string `json:"userQuestion"`
}

type insightResult struct {
	Insight string `json:"insight"`
}

type deleteResult struct {
	Deleted bool `json:"deleted"`
}
