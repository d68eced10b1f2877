package store

import (
	"context"
	"path/filepath"
	"testing"

	"tradesim/internal/domain"
)

func newTempCache(t *testing.T) *SQLiteCache {
	t.Helper()
	cache, err := NewSQLiteCache(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("NewSQLiteCache: %v", err)
	}
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestSnapshotRoundTrip(t *testing.T) {
	cache := newTempCache(t)
	ctx := context.Background()

	stocks := []domain.Stock{
		{Symbol: "DDOG", Name: "Datadog", Sector: "Observability", Price: 120.5, DailyChange: 1.5, DailyChangePct: 1.26, TotalChangePct: 20.5},
		{Symbol: "SPLK", Name: "Splunk", Sector: "Observability", Price: 150, DailyChange: -0.5, DailyChangePct: -0.33, TotalChangePct: 50},
	}
	histories := map[string][]float64{
		"DDOG": {100, 110, 120.5},
		"SPLK": {150.5, 150},
	}

	if err := cache.SaveSnapshot(ctx, stocks, histories); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	gotStocks, err := cache.LoadStocks(ctx)
	if err != nil {
		t.Fatalf("LoadStocks: %v", err)
	}
	if len(gotStocks) != 2 {
		t.Fatalf("LoadStocks returned %d stocks, want 2", len(gotStocks))
	}
	if gotStocks[0].Symbol != "DDOG" || gotStocks[0].Price != 120.5 {
		t.Errorf("first stock = %+v", gotStocks[0])
	}

	gotHistories, err := cache.LoadHistories(ctx)
	if err != nil {
		t.Fatalf("LoadHistories: %v", err)
	}
	if len(gotHistories["DDOG"]) != 3 || gotHistories["DDOG"][2] != 120.5 {
		t.Errorf("DDOG history = %v", gotHistories["DDOG"])
	}
	if len(gotHistories["SPLK"]) != 2 || gotHistories["SPLK"][0] != 150.5 {
		t.Errorf("SPLK history = %v, want oldest first", gotHistories["SPLK"])
	}
}

func TestSaveSnapshotReplacesWholesale(t *testing.T) {
	cache := newTempCache(t)
	ctx := context.Background()

	first := []domain.Stock{{Symbol: "DDOG"}, {Symbol: "SPLK"}}
	if err := cache.SaveSnapshot(ctx, first, map[string][]float64{"DDOG": {1, 2}}); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	second := []domain.Stock{{Symbol: "ESTC"}}
	if err := cache.SaveSnapshot(ctx, second, map[string][]float64{"ESTC": {3}}); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	stocks, err := cache.LoadStocks(ctx)
	if err != nil {
		t.Fatalf("LoadStocks: %v", err)
	}
	if len(stocks) != 1 || stocks[0].Symbol != "ESTC" {
		t.Errorf("stocks = %v, want only ESTC after replacement", stocks)
	}

	histories, err := cache.LoadHistories(ctx)
	if err != nil {
		t.Fatalf("LoadHistories: %v", err)
	}
	if _, ok := histories["DDOG"]; ok {
		t.Error("DDOG history survived replacement")
	}
}

func TestEmptyCache(t *testing.T) {
	cache := newTempCache(t)
	ctx := context.Background()

	stocks, err := cache.LoadStocks(ctx)
	if err != nil {
		t.Fatalf("LoadStocks on empty cache: %v", err)
	}
	if len(stocks) != 0 {
		t.Errorf("stocks = %v, want none", stocks)
	}

	histories, err := cache.LoadHistories(ctx)
	if err != nil {
		t.Fatalf("LoadHistories on empty cache: %v", err)
	}
	if len(histories) != 0 {
		t.Errorf("histories = %v, want none", histories)
	}
}
