package http

import (
	"net/http"
	"strconv"

	"homebudget/internal/log"
	"homebudget/internal/presenter"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	exps, err := s.svc.Expenses(r.Context())
	if err != nil {
		s.serviceFailure(w, r, log.OpList, err)
		return
	}
	out := make([]expenseResponse, len(exps))
	for i, e := range exps {
		out[i] = toExpenseResponse(e)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	e, err := s.svc.Expense(r.Context(), id)
	if err != nil {
		s.serviceFailure(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(e))
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	req, in, ok := s.readExpense(w, r)
	if !ok {
		return
	}

	e, err := s.svc.AddExpense(r.Context(), in.Date, req.CategoryID, in.Amount, sanitizeInput(req.Description))
	if err != nil {
		s.serviceFailure(w, r, log.OpCreate, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Expense created",
		log.FieldExpenseID, e.ID,
		log.FieldCategoryID, e.CategoryID)
	w.Header().Set("Location", "/api/expenses/"+strconv.Itoa(e.ID))
	writeJSON(w, http.StatusCreated, toExpenseResponse(e))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req, in, ok := s.readExpense(w, r)
	if !ok {
		return
	}

	if _, err := s.svc.UpdateExpense(r.Context(), id, in.Date, req.CategoryID, in.Amount, sanitizeInput(req.Description)); err != nil {
		s.serviceFailure(w, r, log.OpUpdate, err)
		return
	}
	e, err := s.svc.Expense(r.Context(), id)
	if err != nil {
		s.serviceFailure(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(e))
}

// handleDeleteExpense succeeds for absent ids too.
func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.svc.DeleteExpense(r.Context(), id); err != nil {
		s.serviceFailure(w, r, log.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// readExpense decodes and validates an expense body. It writes the error
// response itself and reports false when the request cannot proceed.
func (s *Server) readExpense(w http.ResponseWriter, r *http.Request) (expenseRequest, presenter.ExpenseInput, bool) {
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return req, presenter.ExpenseInput{}, false
	}

	in, verr, err := presenter.ParseExpense(r.Context(), s.svc, req.Amount.String(), req.CategoryID, req.Date, sanitizeInput(req.Description))
	if err != nil {
		s.serviceFailure(w, r, log.OpRead, err)
		return req, in, false
	}
	if verr != nil {
		writeServiceError(w, verr)
		return req, in, false
	}
	return req, in, true
}
