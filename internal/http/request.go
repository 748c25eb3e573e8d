package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"homebudget/internal/core"
)

const maxBodyBytes = 64 << 10

type categoryRequest struct {
	Description string `json:"description"`
	// Type is a type name ("Expense") or its numeric code ("2").
	Type string `json:"type"`
}

type expenseRequest struct {
	Date        string      `json:"date"`
	CategoryID  int         `json:"categoryId"`
	Amount      json.Number `json:"amount"`
	Description string      `json:"description"`
}

var errEmptyBody = errors.New("request body is empty")

// decodeJSON reads one JSON object into v, rejecting unknown fields and
// trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return fmt.Errorf("decode body: %w", err)
	}
	if dec.More() {
		return errors.New("decode body: unexpected data after JSON object")
	}
	return nil
}

func pathID(r *http.Request) (int, error) {
	raw := r.PathValue("id")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// parseCategory validates a category request the way the category form is
// validated: every problem at once.
func parseCategory(req categoryRequest) (string, core.CategoryType, error) {
	verr := &core.ValidationError{}
	desc := sanitizeInput(req.Description)
	if desc == "" {
		verr.Add(0, "-Description can not be empty.")
	}
	typ, err := core.ParseCategoryType(req.Type)
	if err != nil {
		verr.Add(1, "-Category type is not valid.")
	}
	return desc, typ, verr.OrNil()
}

// reportRequest is the parsed query string of the report endpoints.
type reportRequest struct {
	Shape string
	Query core.Query
}

// key identifies the report in the cache. Two requests with the same key
// produce the same body.
func (rr reportRequest) key() string {
	var b strings.Builder
	b.WriteString(rr.Shape)
	b.WriteByte('|')
	if rr.Query.Start != nil {
		b.WriteString(rr.Query.Start.String())
	}
	b.WriteByte('|')
	if rr.Query.End != nil {
		b.WriteString(rr.Query.End.String())
	}
	b.WriteByte('|')
	if rr.Query.FilterByCategory {
		b.WriteString(strconv.Itoa(rr.Query.CategoryID))
	}
	return b.String()
}

func parseReportRequest(values url.Values) (reportRequest, error) {
	rr := reportRequest{Shape: strings.TrimSpace(values.Get("shape"))}
	if rr.Shape == "" {
		rr.Shape = "items"
	}

	for _, bound := range []struct {
		name string
		dst  **core.Date
	}{{"start", &rr.Query.Start}, {"end", &rr.Query.End}} {
		v := strings.TrimSpace(values.Get(bound.name))
		if v == "" {
			continue
		}
		d, err := core.ParseDate(v)
		if err != nil {
			return reportRequest{}, fmt.Errorf("%s must be in yyyy-MM-dd format", bound.name)
		}
		*bound.dst = &d
	}

	if v := strings.TrimSpace(values.Get("category")); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return reportRequest{}, fmt.Errorf("category must be a category id")
		}
		rr.Query.FilterByCategory = true
		rr.Query.CategoryID = id
	}
	return rr, nil
}

// sanitizeInput removes control characters other than tab and newlines and
// trims whitespace.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}
