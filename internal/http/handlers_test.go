package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"saldo/internal/ledger"
	"saldo/internal/log"
	"saldo/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store := storage.NewMemoryStore()
	svc := ledger.NewService(store, nil)
	return NewServer(":0", svc, store, log.New(log.DefaultConfig()))
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decodeMap(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode response: %v (body=%q)", err, rr.Body.String())
	}
	return m
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := doJSON(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

func TestListEmptyLedger(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodGet, "/api/entries", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	m := decodeMap(t, rr)
	entries, ok := m["entries"].([]any)
	if !ok {
		t.Fatalf("entries missing or not an array: %v", m["entries"])
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty entries, got %d", len(entries))
	}
	for _, k := range []string{"salary", "totalExpenses", "remaining", "total"} {
		if v, ok := m[k].(float64); !ok || v != 0 {
			t.Fatalf("%s = %v, want 0", k, m[k])
		}
	}
}

func TestCreateEntry(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/api/entries", `{"amount":"12,50 €","label":"pizza"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body=%s)", rr.Code, rr.Body.String())
	}
	m := decodeMap(t, rr)
	entry, ok := m["entry"].(map[string]any)
	if !ok {
		t.Fatalf("entry missing: %v", m)
	}
	if entry["amount"] != 12.5 {
		t.Fatalf("amount = %v, want 12.5", entry["amount"])
	}
	if entry["rawValue"] != "12,50 €" {
		t.Fatalf("rawValue = %v", entry["rawValue"])
	}
	if entry["label"] != "pizza" {
		t.Fatalf("label = %v", entry["label"])
	}
	if entry["id"] == "" {
		t.Fatal("expected synthesized id")
	}
	if m["totalExpenses"] != 12.5 || m["total"] != 12.5 {
		t.Fatalf("totals = %v / %v, want 12.5", m["totalExpenses"], m["total"])
	}
	if m["remaining"] != -12.5 {
		t.Fatalf("remaining = %v, want -12.5", m["remaining"])
	}
}

func TestCreateEntryNumericAmount(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/api/entries", `{"amount":42.5}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	m := decodeMap(t, rr)
	entry := m["entry"].(map[string]any)
	if entry["amount"] != 42.5 {
		t.Fatalf("amount = %v, want 42.5", entry["amount"])
	}
}

func TestCreateEntryNullAmountFallsBackToRawValue(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/api/entries", `{"amount":null,"rawValue":"15 eur"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body=%s)", rr.Code, rr.Body.String())
	}
	m := decodeMap(t, rr)
	entry := m["entry"].(map[string]any)
	if entry["amount"] != 15.0 {
		t.Fatalf("amount = %v, want 15", entry["amount"])
	}
	if entry["rawValue"] != "15 eur" {
		t.Fatalf("rawValue = %v, want \"15 eur\"", entry["rawValue"])
	}

	// Null without a fallback is still invalid.
	rr = doJSON(t, srv, http.MethodPost, "/api/entries", `{"amount":null}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestCreateEntryInvalidAmount(t *testing.T) {
	srv := newTestServer(t)

	for _, body := range []string{
		`{"amount":"eureka"}`,
		`{"amount":""}`,
		`{}`,
		`not json at all`,
	} {
		rr := doJSON(t, srv, http.MethodPost, "/api/entries", body)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, rr.Code)
		}
	}

	// Nothing was persisted.
	rr := doJSON(t, srv, http.MethodGet, "/api/entries", "")
	m := decodeMap(t, rr)
	if entries := m["entries"].([]any); len(entries) != 0 {
		t.Fatalf("expected no entries after rejections, got %d", len(entries))
	}
}

func TestEntriesNewestFirst(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, srv, http.MethodPost, "/api/entries", `{"amount":"1","label":"A"}`)
	doJSON(t, srv, http.MethodPost, "/api/entries", `{"amount":"2","label":"B"}`)

	rr := doJSON(t, srv, http.MethodGet, "/api/entries", "")
	m := decodeMap(t, rr)
	entries := m["entries"].([]any)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	first := entries[0].(map[string]any)
	second := entries[1].(map[string]any)
	if first["label"] != "B" || second["label"] != "A" {
		t.Fatalf("order = [%v, %v], want [B, A]", first["label"], second["label"])
	}
}

func TestDeleteEntry(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/api/entries", `{"amount":"15 eur"}`)
	m := decodeMap(t, rr)
	id := m["entry"].(map[string]any)["id"].(string)

	rr = doJSON(t, srv, http.MethodDelete, "/api/entries/"+id, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	m = decodeMap(t, rr)
	if m["totalExpenses"] != 0.0 || m["total"] != 0.0 {
		t.Fatalf("totals after delete = %v / %v, want 0", m["totalExpenses"], m["total"])
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/entries", "")
	m = decodeMap(t, rr)
	if entries := m["entries"].([]any); len(entries) != 0 {
		t.Fatalf("expected empty list after delete, got %d", len(entries))
	}
}

func TestDeleteMissingEntry(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodDelete, "/api/entries/nope", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	m := decodeMap(t, rr)
	if m["error"] != "entry not found" {
		t.Fatalf("error = %v", m["error"])
	}
}

func TestResetLedger(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, srv, http.MethodPost, "/api/salary", `{"amount":"1850"}`)
	doJSON(t, srv, http.MethodPost, "/api/entries", `{"amount":"200"}`)

	rr := doJSON(t, srv, http.MethodPost, "/api/entries/reset", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	m := decodeMap(t, rr)
	for _, k := range []string{"salary", "totalExpenses", "remaining", "total"} {
		if m[k] != 0.0 {
			t.Fatalf("%s = %v after reset, want 0", k, m[k])
		}
	}

	// Reset is idempotent.
	rr = doJSON(t, srv, http.MethodPost, "/api/entries/reset", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("second reset status=%d", rr.Code)
	}
}

func TestSetSalary(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, srv, http.MethodPost, "/api/entries", `{"amount":"250"}`)

	rr := doJSON(t, srv, http.MethodPost, "/api/salary", `{"amount":"1000"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	m := decodeMap(t, rr)
	if m["salary"] != 1000.0 {
		t.Fatalf("salary = %v, want 1000", m["salary"])
	}
	if m["totalExpenses"] != 250.0 || m["remaining"] != 750.0 {
		t.Fatalf("totals = %v / %v, want 250 / 750", m["totalExpenses"], m["remaining"])
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/salary", `{"amount":"abc"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid salary, got %d", rr.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)

	cases := []struct {
		method, path string
	}{
		{http.MethodPut, "/api/entries"},
		{http.MethodGet, "/api/salary"},
		{http.MethodGet, "/api/entries/reset"},
		{http.MethodGet, "/api/entries/some-id"},
	}
	for _, tc := range cases {
		rr := doJSON(t, srv, tc.method, tc.path, "")
		if rr.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s %s: expected 405, got %d", tc.method, tc.path, rr.Code)
		}
		if rr.Header().Get("Allow") == "" {
			t.Fatalf("%s %s: missing Allow header", tc.method, tc.path)
		}
	}
}

func TestIndexServed(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodGet, "/", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("index status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Saldo") {
		t.Fatal("index body missing heading")
	}
	if !strings.Contains(rr.Header().Get("Content-Type"), "text/html") {
		t.Fatalf("content type = %q", rr.Header().Get("Content-Type"))
	}
}

func TestUnknownPathReturns404(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodGet, "/does-not-exist", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}
