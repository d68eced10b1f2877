// Package session holds the client's runtime state: the latest market
// and portfolio snapshots, connectivity health, the trade-modal
// selection, and the activity journal.
package session

import (
	"sync"

	"tradesim/internal/domain"
)

// Selection is the stock/side pair the trade modal is acting on. It
// exists only while the modal is open.
type Selection struct {
	Symbol string
	Side   domain.Side
}

// Store is the single mutable snapshot of runtime state. Writers replace
// whole snapshots; readers receive copies. Concurrent replacement is
// last-write-wins, which is safe because snapshots are self-consistent
// and never merged.
type Store struct {
	mu        sync.RWMutex
	stocks    []domain.Stock
	histories map[string][]float64
	portfolio domain.Portfolio
	trades    []domain.Trade
	connected bool
	selection *Selection
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{histories: make(map[string][]float64)}
}

// ---------------------------------------------------------------------------
// Connectivity
// ---------------------------------------------------------------------------

// SetConnected records the outcome of the most recent service call.
func (s *Store) SetConnected(up bool) {
	s.mu.Lock()
	s.connected = up
	s.mu.Unlock()
}

// Connected reports whether the most recent service call reached the
// backend.
func (s *Store) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// ---------------------------------------------------------------------------
// Market snapshot
// ---------------------------------------------------------------------------

// ReplaceStocks installs a new market snapshot wholesale.
func (s *Store) ReplaceStocks(stocks []domain.Stock) {
	s.mu.Lock()
	s.stocks = stocks
	s.mu.Unlock()
}

// Stocks returns a copy of the current market snapshot.
func (s *Store) Stocks() []domain.Stock {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Stock, len(s.stocks))
	copy(out, s.stocks)
	return out
}

// Stock looks up one symbol in the current snapshot.
func (s *Store) Stock(symbol string) (domain.Stock, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.stocks {
		if st.Symbol == symbol {
			return st, true
		}
	}
	return domain.Stock{}, false
}

// ReplaceHistories installs a new price-history map wholesale.
func (s *Store) ReplaceHistories(histories map[string][]float64) {
	if histories == nil {
		histories = make(map[string][]float64)
	}
	s.mu.Lock()
	s.histories = histories
	s.mu.Unlock()
}

// History returns a copy of one symbol's price sequence, oldest first.
func (s *Store) History(symbol string) []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.histories[symbol]
	if !ok {
		return nil
	}
	out := make([]float64, len(h))
	copy(out, h)
	return out
}

// Histories returns a copy of the full price-history map.
func (s *Store) Histories() map[string][]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]float64, len(s.histories))
	for sym, h := range s.histories {
		seq := make([]float64, len(h))
		copy(seq, h)
		out[sym] = seq
	}
	return out
}

// ---------------------------------------------------------------------------
// Portfolio and trades
// ---------------------------------------------------------------------------

// ReplacePortfolio installs a new portfolio snapshot wholesale.
func (s *Store) ReplacePortfolio(p domain.Portfolio) {
	s.mu.Lock()
	s.portfolio = p
	s.mu.Unlock()
}

// Portfolio returns a copy of the current portfolio snapshot.
func (s *Store) Portfolio() domain.Portfolio {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.portfolio
	p.Positions = make([]domain.Position, len(s.portfolio.Positions))
	copy(p.Positions, s.portfolio.Positions)
	return p
}

// Position looks up a held position by symbol.
func (s *Store) Position(symbol string) (domain.Position, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, pos := range s.portfolio.Positions {
		if pos.Symbol == symbol {
			return pos, true
		}
	}
	return domain.Position{}, false
}

// ReplaceTrades installs a new trade-history projection wholesale.
func (s *Store) ReplaceTrades(trades []domain.Trade) {
	s.mu.Lock()
	s.trades = trades
	s.mu.Unlock()
}

// Trades returns a copy of the current trade-history projection.
func (s *Store) Trades() []domain.Trade {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Trade, len(s.trades))
	copy(out, s.trades)
	return out
}

// ---------------------------------------------------------------------------
// Trade-modal selection
// ---------------------------------------------------------------------------

// SetSelection records the stock/side pair the trade modal is open on.
func (s *Store) SetSelection(symbol string, side domain.Side) {
	s.mu.Lock()
	s.selection = &Selection{Symbol: symbol, Side: side}
	s.mu.Unlock()
}

// ClearSelection removes the selection when the modal closes.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	s.selection = nil
	s.mu.Unlock()
}

// Selection returns the current modal selection, or false when no modal
// is open.
func (s *Store) Selection() (Selection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selection == nil {
		return Selection{}, false
	}
	return *s.selection, true
}
