// Package trade implements the order-submission workflow as an explicit
// state machine, enforced independently of any presentation layer.
package trade

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"tradesim/internal/api"
	"tradesim/internal/domain"
	"tradesim/internal/metrics"
	"tradesim/internal/session"
)

// State is the workflow's position in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateModalOpen
	StateSubmitting
)

// ErrNotFound reports an attempt to open the modal for a symbol absent
// from the current market snapshot.
var ErrNotFound = errors.New("symbol not in current market snapshot")

// ErrSubmitInFlight reports a re-entrant submit while one is already
// being processed. At most one submission runs per client.
var ErrSubmitInFlight = errors.New("a trade submission is already in flight")

// Gateway is the slice of the service client the workflow drives.
type Gateway interface {
	SubmitTrade(ctx context.Context, side domain.Side, symbol string, quantity int) (*domain.Trade, error)
	GetPortfolio(ctx context.Context) (*domain.Portfolio, error)
	TradeHistory(ctx context.Context) ([]domain.Trade, error)
}

// ModalView is the display snapshot captured when the modal opens. It is
// deliberately not live-updated while the modal stays open.
type ModalView struct {
	Symbol         string
	Side           domain.Side
	Price          float64
	DailyChange    float64
	DailyChangePct float64
	Owned          int
}

// Workflow runs the Idle -> ModalOpen -> Submitting lifecycle. Its own
// state, not the session store, is the single-flight guard.
type Workflow struct {
	gw      Gateway
	store   *session.Store
	journal *session.ActivityLog
	log     *slog.Logger

	mu    sync.Mutex
	state State
	view  ModalView
}

// NewWorkflow wires a workflow in the Idle state.
func NewWorkflow(gw Gateway, store *session.Store, journal *session.ActivityLog, log *slog.Logger) *Workflow {
	return &Workflow{gw: gw, store: store, journal: journal, log: log}
}

// State returns the current lifecycle state.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// View returns the modal snapshot captured at open time.
func (w *Workflow) View() ModalView {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.view
}

// Open moves Idle -> ModalOpen for a stock in the current snapshot,
// capturing price, change, and owned quantity as they are right now.
func (w *Workflow) Open(symbol string, side domain.Side) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == StateSubmitting {
		return ErrSubmitInFlight
	}

	stock, ok := w.store.Stock(symbol)
	if !ok {
		w.log.Warn("trade modal rejected", "symbol", symbol, "reason", "unknown symbol")
		return ErrNotFound
	}

	owned := 0
	if pos, held := w.store.Position(symbol); held {
		owned = pos.Quantity
	}

	w.view = ModalView{
		Symbol:         symbol,
		Side:           side,
		Price:          stock.Price,
		DailyChange:    stock.DailyChange,
		DailyChangePct: stock.DailyChangePct,
		Owned:          owned,
	}
	w.state = StateModalOpen
	w.store.SetSelection(symbol, side)
	return nil
}

// Close abandons the modal and returns to Idle. A no-op while a
// submission is in flight.
func (w *Workflow) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateModalOpen {
		return
	}
	w.state = StateIdle
	w.view = ModalView{}
	w.store.ClearSelection()
}

// Quote estimates the order total for a quantity against the open-time
// price snapshot.
func (w *Workflow) Quote(quantity int) (float64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == StateIdle {
		return 0, &api.ValidationError{Reason: "no stock selected"}
	}
	if quantity <= 0 {
		return 0, &api.ValidationError{Reason: fmt.Sprintf("invalid quantity %d", quantity)}
	}
	return float64(quantity) * w.view.Price, nil
}

// Submit executes the open modal's order. On success it refetches the
// portfolio and trade history, clears the selection, and returns to
// Idle; on failure the modal stays open with the same selection so the
// user can retry. Re-entrant submits are rejected before any network
// call.
func (w *Workflow) Submit(ctx context.Context, quantity int) (*domain.Trade, error) {
	w.mu.Lock()
	if w.state == StateSubmitting {
		w.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	if w.state != StateModalOpen {
		w.mu.Unlock()
		err := &api.ValidationError{Reason: "no stock selected"}
		w.journal.Append(session.LevelError, "trade rejected: "+err.Reason)
		return nil, err
	}
	if quantity <= 0 {
		w.mu.Unlock()
		err := &api.ValidationError{Reason: fmt.Sprintf("invalid quantity %d", quantity)}
		w.journal.Append(session.LevelError, "trade rejected: "+err.Reason)
		return nil, err
	}
	view := w.view
	w.state = StateSubmitting
	w.mu.Unlock()

	executed, err := w.gw.SubmitTrade(ctx, view.Side, view.Symbol, quantity)
	if err != nil {
		metrics.TradeSubmitted(string(view.Side), "error")
		w.journal.Append(session.LevelError,
			fmt.Sprintf("%s %d %s failed: %v", view.Side, quantity, view.Symbol, err))
		w.log.Error("trade submission failed", "symbol", view.Symbol,
			"side", view.Side, "quantity", quantity, "error", err)

		w.mu.Lock()
		w.state = StateModalOpen
		w.mu.Unlock()
		return nil, err
	}

	metrics.TradeSubmitted(string(view.Side), "ok")
	w.journal.Append(session.LevelSuccess,
		fmt.Sprintf("%s %d %s @ %.2f", view.Side, executed.Quantity, executed.Symbol, executed.Price))
	w.log.Info("trade executed", "trade_id", executed.TradeID,
		"symbol", executed.Symbol, "side", executed.Side, "quantity", executed.Quantity)

	w.refreshAccount(ctx)

	w.mu.Lock()
	w.state = StateIdle
	w.view = ModalView{}
	w.mu.Unlock()
	w.store.ClearSelection()

	return executed, nil
}

// refreshAccount refetches the portfolio and trade history after a fill.
// Failures here never undo a completed trade; the next sync cycle will
// catch the store up.
func (w *Workflow) refreshAccount(ctx context.Context) {
	if portfolio, err := w.gw.GetPortfolio(ctx); err != nil {
		w.log.Warn("portfolio refetch after trade failed", "error", err)
	} else {
		w.store.ReplacePortfolio(*portfolio)
	}

	if trades, err := w.gw.TradeHistory(ctx); err != nil {
		w.log.Warn("trade history refetch after trade failed", "error", err)
	} else {
		w.store.ReplaceTrades(trades)
	}
}
