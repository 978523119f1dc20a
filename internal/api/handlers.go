package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"finnacle/pkg/finnacle"
)

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var payload registerPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	result, err := h.core.Register(finnacle.RegisterRequest{
		FullName: payload.FullName,
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		writeErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var payload loginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	result, err := h.core.Login(payload.Email, payload.Password)
	if err != nil {
		writeErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.core.GetUser(requestUserID(r))
	if err != nil {
		writeErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *handler) getIncome(w http.ResponseWriter, r *http.Request) {
	h.getTransactions(w, r, finnacle.KindIncome)
}

func (h *handler) getExpenses(w http.ResponseWriter, r *http.Request) {
	h.getTransactions(w, r, finnacle.KindExpense)
}

func (h *handler) getTransactions(w http.ResponseWriter, r *http.Request, kind finnacle.TransactionKind) {
	transactions, err := h.core.GetTransactions(requestUserID(r), kind)
	if err != nil {
		writeErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transactions)
}

func (h *handler) addIncome(w http.ResponseWriter, r *http.Request) {
	h.addTransaction(w, r, finnacle.KindIncome)
}

func (h *handler) addExpense(w http.ResponseWriter, r *http.Request) {
	h.addTransaction(w, r, finnacle.KindExpense)
}

func (h *handler) addTransaction(w http.ResponseWriter, r *http.Request, kind finnacle.TransactionKind) {
	var payload transactionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	transaction, err := h.core.AddTransaction(finnacle.AddTransactionRequest{
		OwnerID:    requestUserID(r),
		Kind:       kind,
		Label:      payload.Label,
		Icon:       payload.Icon,
		Amount:     payload.Amount,
		OccurredOn: payload.OccurredOn,
	})
	if err != nil {
		writeErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, transaction)
}

func (h *handler) deleteIncome(w http.ResponseWriter, r *http.Request) {
	h.deleteTransaction(w, r)
}

func (h *handler) deleteExpense(w http.ResponseWriter, r *http.Request) {
	h.deleteTransaction(w, r)
}

func (h *handler) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	deleted, err := h.core.DeleteTransaction(requestUserID(r), id)
	if err != nil {
		writeErrorResponse(w, err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	writeJSON(w, http.StatusOK, deleteResult{Deleted: true})
}

func (h *handler) getDashboard(w http.ResponseWriter, r *http.Request) {
	data, err := h.core.DashboardData(requestUserID(r))
	if err != nil {
		writeErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (h *handler) getFinanceSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.core.FinanceSummary(requestUserID(r), time.Time{}, 0)
	if err != nil {
		writeErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *handler) getPortfolio(w http.ResponseWriter, r *http.Request) {
	portfolio, err := h.core.EnrichedPortfolio(r.Context(), requestUserID(r))
	if err != nil {
		writeErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, portfolio)
}

func (h *handler) addHolding(w http.ResponseWriter, r *http.Request) {
	var payload holdingPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	holding, err := h.core.AddHolding(finnacle.AddHoldingRequest{
		OwnerID:  requestUserID(r),
		Name:     payload.Stock,
		Symbol:   payload.Symbol,
		Quantity: payload.Quantity,
		BuyPrice: payload.BuyPrice,
	})
	if err != nil {
		writeErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, holding)
}

func (h *handler) deleteHolding(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	deleted, err := h.core.DeleteHolding(requestUserID(r), id)
	if err != nil {
		writeErrorResponse(w, err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "holding not found")
		return
	}
	writeJSON(w, http.StatusOK, deleteResult{Deleted: true})
}

func (h *handler) getPortfolioHistory(w http.ResponseWriter, r *http.Request) {
	days := parseIntDefault(r.URL.Query().Get("days"), 0)
	history, err := h.core.GetPortfolioHistory(requestUserID(r), days)
	if err != nil {
		writeErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (h *handler) recordPortfolioValue(w http.ResponseWriter, r *http.Request) {
	var payload historyPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	sample, err := h.core.RecordPortfolioValue(requestUserID(r), payload.TotalValue)
	if err != nil {
		writeErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sample)
}

func (h *handler) generateInsight(w http.ResponseWriter, r *http.Request) {
	var payload promptPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	insight, err := h.core.GenerateInsight(r.Context(), payload.Prompt)
	if err != nil {
		writeErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, insightResult{Insight: insight})
}

func (h *handler) chat(w http.ResponseWriter, r *http.Request) {
	var payload chatPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	answer, err := h.core.ChatWithFinances(r.Context(), requestUserID(r), payload.UserQuestion)
	if err != nil {
		writeErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func parseIntDefault(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
