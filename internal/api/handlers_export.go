package api

import (
	"fmt"
	"net/http"

	"github.com/xuri/excelize/v2"

	"finnacle/pkg/finnacle"
)

func (h *handler) exportIncome(w http.ResponseWriter, r *http.Request) {
	h.exportTransactions(w, r, finnacle.KindIncome)
}

func (h *handler) exportExpenses(w http.ResponseWriter, r *http.Request) {
	h.exportTransactions(w, r, finnacle.KindExpense)
}

// exportTransactions streams the user's transactions of one kind as an
// Excel workbook.
func (h *handler) exportTransactions(w http.ResponseWriter, r *http.Request, kind finnacle.TransactionKind) {
	transactions, err := h.core.GetTransactions(requestUserID(r), kind)
	if err != nil {
		writeErrorResponse(w, err)
		return
	}

	workbook, err := buildTransactionWorkbook(kind, transactions)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to build workbook")
		return
	}
	defer workbook.Close()

	filename := fmt.Sprintf("%s_details.xlsx", kind)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := workbook.Write(w); err != nil {
		h.logger.Error("failed to stream workbook", "kind", kind, "error", err)
	}
}

func buildTransactionWorkbook(kind finnacle.TransactionKind, transactions []finnacle.Transaction) (*excelize.File, error) {
	file := excelize.NewFile()
	sheet := "Sheet1"

	labelHeader := "Category"
	if kind == finnacle.KindIncome {
		labelHeader = "Source"
	}
	headers := []string{labelHeader, "Amount", "Date"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := file.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
	}

	for row, transaction := range transactions {
		amount, _ := transaction.Amount.Float64()
		values := []any{transaction.Label, amount, transaction.OccurredOn}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	return file, nil
}
