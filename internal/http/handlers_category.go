package http

import (
	"errors"
	"net/http"
	"strconv"

	"homebudget/internal/core"
	"homebudget/internal/log"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.svc.Categories(r.Context())
	if err != nil {
		s.serviceFailure(w, r, log.OpList, err)
		return
	}
	out := make([]categoryResponse, len(cats))
	for i, c := range cats {
		out[i] = toCategoryResponse(c)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	desc, typ, err := parseCategory(req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	c, err := s.svc.AddCategory(r.Context(), desc, typ)
	if err != nil {
		s.serviceFailure(w, r, log.OpCreate, err)
		return
	}
	w.Header().Set("Location", "/api/categories/"+strconv.Itoa(c.ID))
	writeJSON(w, http.StatusCreated, toCategoryResponse(c))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	desc, typ, err := parseCategory(req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if _, err := s.svc.UpdateCategory(r.Context(), id, desc, typ); err != nil {
		s.serviceFailure(w, r, log.OpUpdate, err)
		return
	}
	c, err := s.svc.Category(r.Context(), id)
	if err != nil {
		s.serviceFailure(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(c))
}

// handleDeleteCategory succeeds for absent ids too. Expenses filed under the
// category are kept and drop out of reports.
func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.svc.DeleteCategory(r.Context(), id); err != nil {
		s.serviceFailure(w, r, log.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResetCategories(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.ResetCategories(r.Context()); err != nil {
		s.serviceFailure(w, r, log.OpUpdate, err)
		return
	}
	s.handleListCategories(w, r)
}

// serviceFailure logs unexpected failures and writes the mapped status.
func (s *Server) serviceFailure(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	if errors.Is(err, core.ErrNotFound) {
		writeServiceError(w, err)
		return
	}
	log.FromContext(ctx).WithComponent(log.ComponentBudget).ErrorContext(ctx, "Budget operation failed",
		log.FieldOperation, op,
		log.FieldPath, r.URL.Path,
		log.FieldError, err)
	writeServiceError(w, err)
}
