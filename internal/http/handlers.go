package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"saldo/internal/ledger"
	"saldo/internal/log"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// addEntryRequest accepts the amount in whatever shape the client sends it;
// normalization happens in the service.
type addEntryRequest struct {
	ID       string          `json:"id"`
	Amount   json.RawMessage `json:"amount"`
	RawValue string          `json:"rawValue"`
	Label    string          `json:"label"`
}

type salaryRequest struct {
	Amount json.RawMessage `json:"amount"`
}

// handleEntries routes GET (list) and POST (create) on /api/entries.
func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listEntries(w, r)
	case http.MethodPost:
		s.createEntry(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

// handleEntryPath routes /api/entries/reset and /api/entries/{id}.
func (s *Server) handleEntryPath(w http.ResponseWriter, r *http.Request) {
	suffix := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/entries/"), "/")
	if suffix == "" {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
		return
	}

	if suffix == "reset" {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, "POST")
			return
		}
		s.resetLedger(w, r)
		return
	}

	if r.Method != http.MethodDelete {
		methodNotAllowed(w, "DELETE")
		return
	}
	s.deleteEntry(w, r, suffix)
}

func (s *Server) handleSalary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	s.setSalary(w, r)
}

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.Snapshot(r.Context())
	if err != nil {
		s.writeError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{
		Entries:       snap.Entries,
		totalsPayload: newTotalsPayload(snap.Totals),
	})
}

func (s *Server) createEntry(w http.ResponseWriter, r *http.Request) {
	var req addEntryRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	entry, totals, err := s.svc.AddEntry(r.Context(), ledger.AddEntryInput{
		Amount:   decodeAmount(req.Amount),
		RawValue: req.RawValue,
		Label:    req.Label,
		ID:       req.ID,
	})
	if err != nil {
		s.writeError(r, w, err)
		return
	}

	s.logger.InfoContext(r.Context(), "Entry created",
		log.FieldOperation, log.OpCreate,
		log.FieldEntryID, entry.ID,
		log.FieldAmount, entry.Amount)

	writeJSON(w, http.StatusCreated, entryResponse{
		Entry:         entry,
		totalsPayload: newTotalsPayload(totals),
	})
}

func (s *Server) deleteEntry(w http.ResponseWriter, r *http.Request, id string) {
	totals, err := s.svc.RemoveEntry(r.Context(), id)
	if err != nil {
		s.writeError(r, w, err)
		return
	}

	s.logger.InfoContext(r.Context(), "Entry removed",
		log.FieldOperation, log.OpDelete,
		log.FieldEntryID, id)

	writeJSON(w, http.StatusOK, resetResponse{
		Message:       "entry removed",
		totalsPayload: newTotalsPayload(totals),
	})
}

func (s *Server) resetLedger(w http.ResponseWriter, r *http.Request) {
	totals, err := s.svc.Reset(r.Context())
	if err != nil {
		s.writeError(r, w, err)
		return
	}

	s.logger.InfoContext(r.Context(), "Ledger reset", log.FieldOperation, log.OpReset)

	writeJSON(w, http.StatusOK, resetResponse{
		Message:       "ledger reset",
		totalsPayload: newTotalsPayload(totals),
	})
}

func (s *Server) setSalary(w http.ResponseWriter, r *http.Request) {
	var req salaryRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	totals, err := s.svc.SetSalary(r.Context(), decodeAmount(req.Amount))
	if err != nil {
		s.writeError(r, w, err)
		return
	}

	s.logger.InfoContext(r.Context(), "Salary updated",
		log.FieldOperation, log.OpSalary,
		log.FieldSalary, totals.Salary)

	writeJSON(w, http.StatusOK, resetResponse{
		Message:       "salary updated",
		totalsPayload: newTotalsPayload(totals),
	})
}

// decodeBody reads a JSON body with a size cap. Returns false after it has
// already written the error response.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

// decodeAmount turns a raw JSON field into the loose value the normalizer
// consumes: string, number, or nil when the field was absent or null.
// Null must be caught first: unmarshaling it into a string "succeeds"
// without touching the destination.
func decodeAmount(raw json.RawMessage) any {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}
	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return num
	}
	// Arrays/objects are not valid amounts; hand the normalizer something
	// it will reject.
	return string(raw)
}
