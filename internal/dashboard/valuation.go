// Package dashboard provides the pure view-model layer: portfolio
// valuation, chart geometry, and display formatting. Nothing here
// touches the network or the terminal, so everything is unit-testable
// without a rendering surface.
package dashboard

import (
	"tradesim/internal/domain"
)

// PositionValue is the computed worth of one held position.
type PositionValue struct {
	Symbol       string
	Quantity     int
	CurrentValue float64
	PnL          float64
	PnLPct       float64
}

// Valuation is the computed worth of a whole portfolio.
type Valuation struct {
	Cash           float64
	PositionsValue float64
	TotalValue     float64
	PerPosition    []PositionValue
}

// Valuate prices a portfolio against the current stock snapshot. No
// rounding happens here; formatting is a presentation concern.
//
// A position whose symbol is missing from the snapshot is valued at its
// recorded total cost rather than dropped. A zero average cost yields
// zero P&L rather than a division by zero.
func Valuate(p domain.Portfolio, stocks []domain.Stock) Valuation {
	prices := make(map[string]float64, len(stocks))
	for _, s := range stocks {
		prices[s.Symbol] = s.Price
	}

	v := Valuation{Cash: p.CashBalance}
	for _, pos := range p.Positions {
		pv := PositionValue{Symbol: pos.Symbol, Quantity: pos.Quantity}

		if price, ok := prices[pos.Symbol]; ok {
			pv.CurrentValue = float64(pos.Quantity) * price
		} else {
			pv.CurrentValue = pos.TotalCost
		}

		costBasis := float64(pos.Quantity) * pos.AvgCost
		if costBasis != 0 {
			pv.PnL = pv.CurrentValue - costBasis
			pv.PnLPct = (pv.CurrentValue/costBasis - 1) * 100
		}

		v.PositionsValue += pv.CurrentValue
		v.PerPosition = append(v.PerPosition, pv)
	}

	v.TotalValue = v.Cash + v.PositionsValue
	return v
}
