package http

import (
	"bytes"
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/store/memory"
)

type capturedEvent struct {
	action string
	id     int64
}

type stubPublisher struct {
	events []capturedEvent
}

func (p *stubPublisher) PublishTransactionEvent(_ context.Context, action string, id int64) error {
	p.events = append(p.events, capturedEvent{action: action, id: id})
	return nil
}

func newTestServer(t *testing.T) (*httptest.Server, *stubPublisher) {
	t.Helper()
	pub := &stubPublisher{}
	srv := New("0", memory.New(), pub)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	t.Cleanup(func() { srv.limiter.Stop() })
	return ts, pub
}

func doJSON(t *testing.T, method, url string, body string) (*stdhttp.Response, Envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req, err := stdhttp.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := stdhttp.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var env Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decoding envelope: %v", err)
	}
	return resp, env
}

func decodeData(t *testing.T, env Envelope, out any) {
	t.Helper()
	raw, err := json.Marshal(env.Data)
	if err != nil {
		t.Fatalf("re-marshaling data: %v", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("decoding data: %v", err)
	}
}

func TestCreateTransaction(t *testing.T) {
	ts, pub := newTestServer(t)

	resp, env := doJSON(t, stdhttp.MethodPost, ts.URL+"/api/v1/transactions",
		`{"type":"expense","amount":55,"category":"food","description":"groceries","date":"2024-05-01"}`)

	if resp.StatusCode != stdhttp.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	if !env.Success || env.Message != "Transaction created" {
		t.Fatalf("unexpected envelope: %+v", env)
	}

	var created core.Transaction
	decodeData(t, env, &created)
	if created.ID == 0 {
		t.Error("created transaction has no id")
	}
	if created.Amount.Cents != 5500 {
		t.Errorf("amount = %d cents, want 5500", created.Amount.Cents)
	}
	if created.CreatedAt.IsZero() {
		t.Error("createdAt not set")
	}

	if len(pub.events) != 1 || pub.events[0].action != "created" || pub.events[0].id != created.ID {
		t.Errorf("expected one created event for id %d, got %+v", created.ID, pub.events)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	ts, pub := newTestServer(t)

	resp, env := doJSON(t, stdhttp.MethodPost, ts.URL+"/api/v1/transactions",
		`{"type":"transfer","amount":-5,"category":""}`)

	if resp.StatusCode != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if env.Success {
		t.Fatal("success should be false")
	}

	fields, ok := env.Error.([]any)
	if !ok {
		t.Fatalf("error should list field messages, got %T", env.Error)
	}
	joined := make([]string, 0, len(fields))
	for _, f := range fields {
		joined = append(joined, f.(string))
	}
	all := strings.Join(joined, "; ")
	for _, want := range []string{"type", "amount", "category", "date"} {
		if !strings.Contains(all, want) {
			t.Errorf("missing violation for %s in %q", want, all)
		}
	}

	if len(pub.events) != 0 {
		t.Errorf("no event should be published on validation failure, got %+v", pub.events)
	}
}

func TestListTransactions(t *testing.T) {
	ts, _ := newTestServer(t)

	for i := 0; i < 12; i++ {
		doJSON(t, stdhttp.MethodPost, ts.URL+"/api/v1/transactions",
			`{"type":"expense","amount":10,"category":"food","date":"2024-05-01"}`)
	}
	doJSON(t, stdhttp.MethodPost, ts.URL+"/api/v1/transactions",
		`{"type":"income","amount":100,"category":"salary","date":"2024-05-02"}`)

	resp, env := doJSON(t, stdhttp.MethodGet, ts.URL+"/api/v1/transactions", "")
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var page core.Page
	decodeData(t, env, &page)
	if page.Total != 13 || len(page.Data) != 10 {
		t.Fatalf("total=%d len=%d, want 13/10", page.Total, len(page.Data))
	}
	if page.TotalPages != 2 {
		t.Errorf("totalPages = %d, want 2", page.TotalPages)
	}
	if page.Data[0].Type != core.Income {
		t.Errorf("newest date should sort first, got %+v", page.Data[0])
	}

	_, env = doJSON(t, stdhttp.MethodGet, ts.URL+"/api/v1/transactions?type=income", "")
	decodeData(t, env, &page)
	if page.Total != 1 {
		t.Errorf("income filter total = %d, want 1", page.Total)
	}

	_, env = doJSON(t, stdhttp.MethodGet, ts.URL+"/api/v1/transactions?page=2&pageSize=5&category=food", "")
	decodeData(t, env, &page)
	if page.Total != 12 || len(page.Data) != 5 || page.Page != 2 {
		t.Errorf("paged filter: total=%d len=%d page=%d", page.Total, len(page.Data), page.Page)
	}
}

func TestListEmptyResult(t *testing.T) {
	ts, _ := newTestServer(t)

	_, env := doJSON(t, stdhttp.MethodGet, ts.URL+"/api/v1/transactions", "")

	var page core.Page
	decodeData(t, env, &page)
	if page.Total != 0 || page.TotalPages != 0 {
		t.Errorf("empty store: total=%d totalPages=%d, want 0/0", page.Total, page.TotalPages)
	}
	if page.Data == nil {
		t.Error("data should be an empty array, not null")
	}
}

func TestUpdateTransaction(t *testing.T) {
	ts, pub := newTestServer(t)

	_, env := doJSON(t, stdhttp.MethodPost, ts.URL+"/api/v1/transactions",
		`{"type":"expense","amount":20,"category":"food","date":"2024-05-01"}`)
	var created core.Transaction
	decodeData(t, env, &created)

	resp, env := doJSON(t, stdhttp.MethodPut, ts.URL+"/api/v1/transactions/1",
		`{"amount":35.5,"description":"dinner"}`)
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var updated core.Transaction
	decodeData(t, env, &updated)
	if updated.Amount.Cents != 3550 {
		t.Errorf("amount = %d cents, want 3550", updated.Amount.Cents)
	}
	if updated.Description != "dinner" {
		t.Errorf("description = %q", updated.Description)
	}
	if updated.Category != "food" {
		t.Errorf("untouched field changed: category = %q", updated.Category)
	}

	if len(pub.events) != 2 || pub.events[1].action != "updated" {
		t.Errorf("expected updated event, got %+v", pub.events)
	}
}

func TestUpdateMissingTransaction(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, env := doJSON(t, stdhttp.MethodPut, ts.URL+"/api/v1/transactions/99",
		`{"amount":10}`)
	if resp.StatusCode != stdhttp.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if env.Message != "Transaction not found" {
		t.Errorf("message = %q", env.Message)
	}
}

func TestDeleteTransaction(t *testing.T) {
	ts, pub := newTestServer(t)

	doJSON(t, stdhttp.MethodPost, ts.URL+"/api/v1/transactions",
		`{"type":"expense","amount":20,"category":"food","date":"2024-05-01"}`)
	doJSON(t, stdhttp.MethodPost, ts.URL+"/api/v1/transactions",
		`{"type":"expense","amount":30,"category":"fuel","date":"2024-05-02"}`)

	resp, env := doJSON(t, stdhttp.MethodDelete, ts.URL+"/api/v1/transactions/1", "")
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var deleted core.Transaction
	decodeData(t, env, &deleted)
	if deleted.ID != 1 || deleted.Category != "food" {
		t.Errorf("deleted record mismatch: %+v", deleted)
	}

	// Repeat delete must 404 and remove nothing else.
	resp, _ = doJSON(t, stdhttp.MethodDelete, ts.URL+"/api/v1/transactions/1", "")
	if resp.StatusCode != stdhttp.StatusNotFound {
		t.Fatalf("repeat delete status = %d, want 404", resp.StatusCode)
	}

	_, env = doJSON(t, stdhttp.MethodGet, ts.URL+"/api/v1/transactions", "")
	var page core.Page
	decodeData(t, env, &page)
	if page.Total != 1 {
		t.Errorf("remaining total = %d, want 1", page.Total)
	}

	if pub.events[len(pub.events)-1].action != "deleted" {
		t.Errorf("expected deleted event last, got %+v", pub.events)
	}
}

func TestInvalidTransactionID(t *testing.T) {
	ts, _ := newTestServer(t)

	for _, raw := range []string{"abc", "-1", "0"} {
		resp, _ := doJSON(t, stdhttp.MethodDelete, ts.URL+"/api/v1/transactions/"+raw, "")
		if resp.StatusCode != stdhttp.StatusBadRequest {
			t.Errorf("id %q: status = %d, want 400", raw, resp.StatusCode)
		}
	}
}

func TestDashboardData(t *testing.T) {
	ts, _ := newTestServer(t)

	for _, body := range []string{
		`{"type":"income","amount":100,"category":"salary","date":"2024-05-01"}`,
		`{"type":"expense","amount":40,"category":"food","date":"2024-05-02"}`,
		`{"type":"expense","amount":10,"category":"food","date":"2024-05-03"}`,
		`{"type":"expense","amount":5,"category":"fuel","date":"2024-05-04"}`,
	} {
		doJSON(t, stdhttp.MethodPost, ts.URL+"/api/v1/transactions", body)
	}

	resp, env := doJSON(t, stdhttp.MethodGet, ts.URL+"/api/v1/transactions/dashboard_data", "")
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if env.Message != "Fetched transactions data" {
		t.Errorf("message = %q", env.Message)
	}

	var stats core.DashboardStats
	decodeData(t, env, &stats)
	if stats.TotalIncome.Cents != 10000 || stats.TotalExpense.Cents != 5500 || stats.NetBalance.Cents != 4500 {
		t.Errorf("totals: %+v", stats)
	}
	if len(stats.CategoryExpenses) != 2 {
		t.Fatalf("category count = %d, want 2", len(stats.CategoryExpenses))
	}
	if stats.CategoryExpenses[0].Category != "food" || stats.CategoryExpenses[0].Amount.Cents != 5000 {
		t.Errorf("first category: %+v", stats.CategoryExpenses[0])
	}
	if stats.CategoryExpenses[1].Category != "fuel" || stats.CategoryExpenses[1].Amount.Cents != 500 {
		t.Errorf("second category: %+v", stats.CategoryExpenses[1])
	}
}

func TestHealthEndpoints(t *testing.T) {
	ts, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, env := doJSON(t, stdhttp.MethodGet, ts.URL+path, "")
		if resp.StatusCode != stdhttp.StatusOK || !env.Success {
			t.Errorf("%s: status=%d success=%v", path, resp.StatusCode, env.Success)
		}
	}
}
