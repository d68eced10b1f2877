// Package domain defines the data types exchanged with the trading
// service and held in client state.
package domain

// Side is the direction of a trade.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Stock is one entry of the market snapshot. The snapshot is replaced
// wholesale on every refresh; fields are never patched individually.
type Stock struct {
	Symbol         string  `json:"symbol"`
	Name           string  `json:"name"`
	Sector         string  `json:"sector,omitempty"`
	Price          float64 `json:"price"`
	DailyChange    float64 `json:"daily_change"`
	DailyChangePct float64 `json:"daily_change_pct"`
	TotalChange    float64 `json:"total_change,omitempty"`
	TotalChangePct float64 `json:"total_change_pct"`
	Description    string  `json:"description,omitempty"`
}

// Position is a held lot inside a portfolio. The service removes a
// position from the list once its quantity reaches zero.
type Position struct {
	Symbol    string  `json:"symbol"`
	Quantity  int     `json:"quantity"`
	AvgCost   float64 `json:"avg_cost"`
	TotalCost float64 `json:"total_cost"`
}

// Portfolio is the service-owned account snapshot.
type Portfolio struct {
	UserID      string     `json:"user_id,omitempty"`
	CashBalance float64    `json:"cash_balance"`
	Positions   []Position `json:"positions"`
	TotalTrades int        `json:"total_trades,omitempty"`
}

// Trade is one executed order as reported by the service. The client
// holds only a recent-history projection; records are append-only.
type Trade struct {
	TradeID    string  `json:"trade_id,omitempty"`
	UserID     string  `json:"user_id,omitempty"`
	Symbol     string  `json:"symbol"`
	Side       Side    `json:"side"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
	TotalValue float64 `json:"total_value,omitempty"`
	Fees       float64 `json:"fees,omitempty"`
	Status     string  `json:"status,omitempty"`
	ExecutedAt string  `json:"executed_at"`
}

// PricePoint is one entry of a per-symbol history response. The service
// emits both "close" and the legacy "price" key; Value prefers close.
type PricePoint struct {
	Date  string  `json:"date"`
	Open  float64 `json:"open,omitempty"`
	High  float64 `json:"high,omitempty"`
	Low   float64 `json:"low,omitempty"`
	Close float64 `json:"close"`
	Price float64 `json:"price"`
}

// Value returns the closing price, falling back to the legacy price
// field when close is absent.
func (p PricePoint) Value() float64 {
	if p.Close != 0 {
		return p.Close
	}
	return p.Price
}
