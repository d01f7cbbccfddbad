// Package http provides the JSON API server for the ledger.
//
// This file maps domain errors onto HTTP responses. Validation failures and
// missing entries are user-correctable; everything else surfaces as a
// generic storage failure.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"saldo/internal/core"
	"saldo/internal/log"
)

// totalsPayload is the shared tail of every API response. Total duplicates
// TotalExpenses for clients that predate the rename.
type totalsPayload struct {
	Salary        float64 `json:"salary"`
	TotalExpenses float64 `json:"totalExpenses"`
	Remaining     float64 `json:"remaining"`
	Total         float64 `json:"total"`
}

func newTotalsPayload(t core.Totals) totalsPayload {
	return totalsPayload{
		Salary:        t.Salary,
		TotalExpenses: t.TotalExpenses,
		Remaining:     t.Remaining,
		Total:         t.TotalExpenses,
	}
}

type listResponse struct {
	Entries []core.Entry `json:"entries"`
	totalsPayload
}

type entryResponse struct {
	Entry core.Entry `json:"entry"`
	totalsPayload
}

type resetResponse struct {
	Message string `json:"message"`
	totalsPayload
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError translates a domain error into the API's error taxonomy.
func (s *Server) writeError(r *http.Request, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidAmount):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid amount"})
	case errors.Is(err, core.ErrEntryNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "entry not found"})
	default:
		s.logger.ErrorContext(r.Context(), "Storage failure",
			log.FieldError, err,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "storage failure"})
	}
}

func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
}
