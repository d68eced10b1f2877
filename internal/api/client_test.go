package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"tradesim/internal/domain"
	"tradesim/internal/session"
)

func newTestClient(baseURL string) (*Client, *session.Store, *session.ActivityLog) {
	store := session.NewStore()
	journal := session.NewActivityLog()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient(baseURL, "demo", store, journal, logger), store, journal
}

func TestCallSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("request missing X-Request-ID header")
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"stocks": []domain.Stock{{Symbol: "DDOG", Price: 120.5}}})
	}))
	defer srv.Close()

	client, store, journal := newTestClient(srv.URL)

	stocks, err := client.ListStocks(context.Background())
	if err != nil {
		t.Fatalf("ListStocks returned error: %v", err)
	}
	if len(stocks) != 1 || stocks[0].Symbol != "DDOG" {
		t.Errorf("stocks = %v, want one DDOG entry", stocks)
	}
	if !store.Connected() {
		t.Error("successful call should mark store connected")
	}
	if journal.Len() != 1 {
		t.Errorf("journal has %d entries, want exactly 1 per call", journal.Len())
	}
	if journal.Recent()[0].Level != session.LevelInfo {
		t.Errorf("journal level = %q, want info", journal.Recent()[0].Level)
	}
}

func TestCallHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Insufficient funds"})
	}))
	defer srv.Close()

	client, store, journal := newTestClient(srv.URL)

	_, err := client.SubmitTrade(context.Background(), domain.SideBuy, "DDOG", 5)
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("error = %v, want *HTTPError", err)
	}
	if httpErr.Status != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", httpErr.Status)
	}
	if httpErr.Message != "Insufficient funds" {
		t.Errorf("Message = %q, want body error field", httpErr.Message)
	}
	// An HTTP error still proves the backend is reachable.
	if !store.Connected() {
		t.Error("HTTP error should mark store connected")
	}
	if journal.Recent()[0].Level != session.LevelWarning {
		t.Errorf("journal level = %q, want warning", journal.Recent()[0].Level)
	}
}

func TestCallHTTPErrorGenericMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	client, _, _ := newTestClient(srv.URL)

	err := client.Call(context.Background(), http.MethodGet, "/api/market/stocks", nil, nil)
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("error = %v, want *HTTPError", err)
	}
	if httpErr.Message != "request failed with status 502" {
		t.Errorf("Message = %q, want generic text", httpErr.Message)
	}
}

func TestCallDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not json"))
	}))
	defer srv.Close()

	client, store, journal := newTestClient(srv.URL)

	_, err := client.ListStocks(context.Background())
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("error = %v, want *DecodeError", err)
	}
	if !store.Connected() {
		t.Error("decode error should still mark store connected")
	}
	if journal.Len() != 1 {
		t.Errorf("journal has %d entries, want 1", journal.Len())
	}
}

func TestCallNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	client, store, journal := newTestClient(srv.URL)
	store.SetConnected(true)

	_, err := client.ListStocks(context.Background())
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("error = %v, want *NetworkError", err)
	}
	if store.Connected() {
		t.Error("network failure should mark store disconnected")
	}
	if journal.Recent()[0].Level != session.LevelError {
		t.Errorf("journal level = %q, want error", journal.Recent()[0].Level)
	}
}

func TestConnectivityTransitions(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"stocks": []}`))
	}))
	defer good.Close()

	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	dead.Close()

	store := session.NewStore()
	journal := session.NewActivityLog()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var transitions []bool
	record := func() { transitions = append(transitions, store.Connected()) }

	up := NewClient(good.URL, "demo", store, journal, logger)
	down := NewClient(dead.URL, "demo", store, journal, logger)

	up.ListStocks(context.Background())
	record()
	down.ListStocks(context.Background())
	record()
	up.ListStocks(context.Background())
	record()

	want := []bool{true, false, true}
	for i := range want {
		if transitions[i] != want[i] {
			t.Fatalf("transitions = %v, want %v", transitions, want)
		}
	}
}

func TestSubmitTradeRequestShape(t *testing.T) {
	var gotPath string
	var gotBody tradeRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"trade": domain.Trade{
				Symbol: "DDOG", Side: domain.SideBuy, Quantity: 3, Price: 120.5,
			},
		})
	}))
	defer srv.Close()

	client, _, _ := newTestClient(srv.URL)

	trade, err := client.SubmitTrade(context.Background(), domain.SideBuy, "DDOG", 3)
	if err != nil {
		t.Fatalf("SubmitTrade returned error: %v", err)
	}
	if gotPath != "/api/trade/buy" {
		t.Errorf("path = %q, want /api/trade/buy", gotPath)
	}
	if gotBody.UserID != "demo" || gotBody.Symbol != "DDOG" || gotBody.Quantity != 3 {
		t.Errorf("body = %+v, want user_id/symbol/quantity", gotBody)
	}
	if trade.Quantity != 3 || trade.Price != 120.5 {
		t.Errorf("trade = %+v", trade)
	}
}

func TestSubmitTradeRejectsUnknownSide(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	client, _, _ := newTestClient(srv.URL)

	_, err := client.SubmitTrade(context.Background(), domain.Side("short"), "DDOG", 1)
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	if calls != 0 {
		t.Errorf("server saw %d calls, want 0 for a guard failure", calls)
	}
}

func TestGetPortfolioPath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(domain.Portfolio{CashBalance: 1000})
	}))
	defer srv.Close()

	client, _, _ := newTestClient(srv.URL)

	p, err := client.GetPortfolio(context.Background())
	if err != nil {
		t.Fatalf("GetPortfolio returned error: %v", err)
	}
	if gotPath != "/api/portfolio/demo" {
		t.Errorf("path = %q, want /api/portfolio/demo", gotPath)
	}
	if p.CashBalance != 1000 {
		t.Errorf("CashBalance = %v, want 1000", p.CashBalance)
	}
}

func TestAllHistories(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("days") != "90" {
			t.Errorf("days = %q, want 90", r.URL.Query().Get("days"))
		}
		json.NewEncoder(w).Encode(map[string]any{
			"histories": map[string][]float64{"DDOG": {100, 101, 102}},
			"days":      90,
		})
	}))
	defer srv.Close()

	client, _, _ := newTestClient(srv.URL)

	histories, err := client.AllHistories(context.Background(), 90)
	if err != nil {
		t.Fatalf("AllHistories returned error: %v", err)
	}
	if len(histories["DDOG"]) != 3 {
		t.Errorf("histories[DDOG] = %v, want 3 prices", histories["DDOG"])
	}
}
