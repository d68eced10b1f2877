package session

import (
	"testing"

	"tradesim/internal/domain"
)

func TestReplaceStocksIsWholesale(t *testing.T) {
	s := NewStore()
	s.ReplaceStocks([]domain.Stock{
		{Symbol: "DDOG", Price: 120.5},
		{Symbol: "AAPL", Price: 189.0},
	})
	s.ReplaceStocks([]domain.Stock{{Symbol: "MSFT", Price: 378.0}})

	stocks := s.Stocks()
	if len(stocks) != 1 || stocks[0].Symbol != "MSFT" {
		t.Errorf("snapshot was merged, want wholesale replacement: %v", stocks)
	}
	if _, ok := s.Stock("DDOG"); ok {
		t.Error("DDOG survived a snapshot replacement")
	}
}

func TestStocksReturnsCopy(t *testing.T) {
	s := NewStore()
	s.ReplaceStocks([]domain.Stock{{Symbol: "DDOG", Price: 120.5}})

	got := s.Stocks()
	got[0].Price = 1.0

	again := s.Stocks()
	if again[0].Price != 120.5 {
		t.Errorf("caller mutation leaked into store: price = %v", again[0].Price)
	}
}

func TestHistoryCopyAndLookup(t *testing.T) {
	s := NewStore()
	s.ReplaceHistories(map[string][]float64{"DDOG": {100, 101, 102}})

	h := s.History("DDOG")
	if len(h) != 3 {
		t.Fatalf("len(history) = %d, want 3", len(h))
	}
	h[0] = -1
	if s.History("DDOG")[0] != 100 {
		t.Error("caller mutation leaked into stored history")
	}

	if s.History("MISSING") != nil {
		t.Error("unknown symbol should return nil history")
	}
}

func TestConnectivityFlag(t *testing.T) {
	s := NewStore()
	if s.Connected() {
		t.Error("new store should start disconnected")
	}
	s.SetConnected(true)
	if !s.Connected() {
		t.Error("SetConnected(true) not observed")
	}
	s.SetConnected(false)
	if s.Connected() {
		t.Error("SetConnected(false) not observed")
	}
}

func TestPortfolioAndPosition(t *testing.T) {
	s := NewStore()
	s.ReplacePortfolio(domain.Portfolio{
		CashBalance: 1000,
		Positions: []domain.Position{
			{Symbol: "DDOG", Quantity: 10, AvgCost: 5, TotalCost: 50},
		},
	})

	pos, ok := s.Position("DDOG")
	if !ok {
		t.Fatal("Position(DDOG) not found")
	}
	if pos.Quantity != 10 {
		t.Errorf("Quantity = %d, want 10", pos.Quantity)
	}
	if _, ok := s.Position("AAPL"); ok {
		t.Error("Position(AAPL) should not exist")
	}

	p := s.Portfolio()
	p.Positions[0].Quantity = 0
	if got, _ := s.Position("DDOG"); got.Quantity != 10 {
		t.Error("caller mutation leaked into stored portfolio")
	}
}

func TestSelectionLifecycle(t *testing.T) {
	s := NewStore()
	if _, ok := s.Selection(); ok {
		t.Error("new store should have no selection")
	}

	s.SetSelection("DDOG", domain.SideBuy)
	sel, ok := s.Selection()
	if !ok || sel.Symbol != "DDOG" || sel.Side != domain.SideBuy {
		t.Errorf("Selection() = %+v, %v", sel, ok)
	}

	s.ClearSelection()
	if _, ok := s.Selection(); ok {
		t.Error("selection survived ClearSelection")
	}
}
