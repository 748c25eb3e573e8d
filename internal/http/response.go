package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"homebudget/internal/core"
)

type errorResponse struct {
	Error     string   `json:"error"`
	Messages  []string `json:"messages,omitempty"`
	Positions []int    `json:"positions,omitempty"`
}

type categoryResponse struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
	Type        string `json:"type"`
	TypeID      int    `json:"typeId"`
}

type expenseResponse struct {
	ID          int             `json:"id"`
	Date        core.Date       `json:"date"`
	CategoryID  int             `json:"categoryId"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

type reportResponse struct {
	Shape   string `json:"shape"`
	Records any    `json:"records"`
}

func toCategoryResponse(c core.Category) categoryResponse {
	return categoryResponse{
		ID:          c.ID,
		Description: c.Description,
		Type:        c.Type.String(),
		TypeID:      int(c.Type),
	}
}

func toExpenseResponse(e core.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		Date:        e.Date,
		CategoryID:  e.CategoryID,
		Amount:      e.Amount,
		Description: e.Description,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "encode response")
		return
	}
	writeJSONBytes(w, status, body)
}

func writeJSONBytes(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	body, _ := json.Marshal(errorResponse{Error: msg})
	writeJSONBytes(w, status, body)
}

// writeServiceError maps a budget error onto a status code. Persistence
// failures are logged by the caller and reported without detail.
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:     "validation failed",
			Messages:  verr.Messages,
			Positions: verr.Positions,
		})
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		writeError(w, http.StatusInternalServerError, "the budget file could not be read or written")
	}
}
