package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"homebudget/internal/core"
	"homebudget/internal/export/xlsx"
	"homebudget/internal/log"
	"homebudget/internal/presenter"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// handleReport serves one report shape as JSON. Identical concurrent
// requests share a single build, and results are cached until the next
// change to the budget.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rr, sel, ok := readReportRequest(w, r)
	if !ok {
		return
	}

	gen := s.reportGen.Load()
	key := strconv.FormatUint(gen, 10) + "|" + rr.key()
	logger := log.FromContext(ctx).WithComponent(log.ComponentCache)

	if body, ok := s.reports.Get(key); ok {
		logger.DebugContext(ctx, "Report cache hit", log.FieldReportShape, rr.Shape)
		w.Header().Set("X-Cache", "HIT")
		writeJSONBytes(w, http.StatusOK, body)
		return
	}

	v, err, shared := s.flight.Do(key, func() (any, error) {
		body, err := s.buildReport(context.WithoutCancel(ctx), sel)
		if err != nil {
			return nil, err
		}
		if s.reportGen.Load() == gen {
			s.reports.Set(key, body)
		}
		return body, nil
	})
	if err != nil {
		s.serviceFailure(w, r, log.OpReport, err)
		return
	}

	logger.DebugContext(ctx, "Report built", log.FieldReportShape, rr.Shape, "shared", shared)
	w.Header().Set("X-Cache", "MISS")
	writeJSONBytes(w, http.StatusOK, v.([]byte))
}

// handleReportXLSX serves the same report as an xlsx workbook. Workbooks are
// not cached.
func (s *Server) handleReportXLSX(w http.ResponseWriter, r *http.Request) {
	rr, sel, ok := readReportRequest(w, r)
	if !ok {
		return
	}

	exp, err := xlsx.New()
	if err != nil {
		s.serviceFailure(w, r, log.OpExport, err)
		return
	}
	defer exp.Close()

	if err := presenter.Show(r.Context(), s.svc, sel, exp); err != nil {
		s.serviceFailure(w, r, log.OpExport, err)
		return
	}
	var buf bytes.Buffer
	if _, err := exp.WriteTo(&buf); err != nil {
		s.serviceFailure(w, r, log.OpExport, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="budget-`+rr.Shape+`.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func readReportRequest(w http.ResponseWriter, r *http.Request) (reportRequest, presenter.Selection, bool) {
	rr, err := parseReportRequest(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return rr, presenter.Selection{}, false
	}
	sel, err := presenter.SelectionFor(rr.Shape, rr.Query)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return rr, sel, false
	}
	return rr, sel, true
}

func (s *Server) buildReport(ctx context.Context, sel presenter.Selection) ([]byte, error) {
	var rec reportRecorder
	if err := presenter.Show(ctx, s.svc, sel, &rec); err != nil {
		return nil, err
	}
	return json.Marshal(reportResponse{Shape: sel.Shape(), Records: rec.records})
}

// reportRecorder is a presenter.Display that keeps whatever it was shown.
type reportRecorder struct {
	records any
}

func (r *reportRecorder) ShowBudgetItems(items []core.BudgetItem) {
	r.records = nonNil(items)
}

func (r *reportRecorder) ShowBudgetItemsByMonth(groups []core.BudgetItemsByMonth) {
	r.records = nonNil(groups)
}

func (r *reportRecorder) ShowBudgetItemsByCategory(groups []core.BudgetItemsByCategory) {
	r.records = nonNil(groups)
}

func (r *reportRecorder) ShowBudgetItemsByCategoryAndMonth(records []core.PivotRecord) {
	r.records = nonNil(records)
}

// nonNil makes empty reports encode as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
