package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"tradesim/internal/domain"
)

// ListStocks fetches the current market snapshot.
func (c *Client) ListStocks(ctx context.Context) ([]domain.Stock, error) {
	var resp struct {
		Stocks []domain.Stock `json:"stocks"`
	}
	if err := c.Call(ctx, http.MethodGet, "/api/market/stocks", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Stocks, nil
}

// AllHistories fetches the close-price history of every stock, oldest
// first, bounded to the given day window.
func (c *Client) AllHistories(ctx context.Context, days int) (map[string][]float64, error) {
	var resp struct {
		Histories map[string][]float64 `json:"histories"`
	}
	path := fmt.Sprintf("/api/market/history/all?days=%d", days)
	if err := c.Call(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Histories, nil
}

// StockHistory fetches one symbol's dated history window.
func (c *Client) StockHistory(ctx context.Context, symbol string, days int) ([]domain.PricePoint, error) {
	var resp struct {
		Symbol  string              `json:"symbol"`
		History []domain.PricePoint `json:"history"`
	}
	path := fmt.Sprintf("/api/market/stocks/%s/history?days=%d", url.PathEscape(symbol), days)
	if err := c.Call(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.History, nil
}

// MarketTick asks the service to apply one simulated market movement.
func (c *Client) MarketTick(ctx context.Context) error {
	return c.Call(ctx, http.MethodPost, "/api/market/tick", nil, nil)
}

// GetPortfolio fetches the account snapshot for the configured user.
func (c *Client) GetPortfolio(ctx context.Context) (*domain.Portfolio, error) {
	var p domain.Portfolio
	path := "/api/portfolio/" + url.PathEscape(c.userID)
	if err := c.Call(ctx, http.MethodGet, path, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SetBalance resets the configured user's cash balance.
func (c *Client) SetBalance(ctx context.Context, balance float64) error {
	body := map[string]float64{"balance": balance}
	path := "/api/portfolio/" + url.PathEscape(c.userID) + "/balance"
	return c.Call(ctx, http.MethodPost, path, body, nil)
}

// tradeRequest is the order submission body.
type tradeRequest struct {
	UserID   string `json:"user_id"`
	Symbol   string `json:"symbol"`
	Quantity int    `json:"quantity"`
}

// SubmitTrade executes a buy or sell order and returns the trade record.
func (c *Client) SubmitTrade(ctx context.Context, side domain.Side, symbol string, quantity int) (*domain.Trade, error) {
	if side != domain.SideBuy && side != domain.SideSell {
		return nil, &ValidationError{Reason: fmt.Sprintf("unknown trade side %q", side)}
	}

	var resp struct {
		Success bool         `json:"success"`
		Trade   domain.Trade `json:"trade"`
	}
	body := tradeRequest{UserID: c.userID, Symbol: symbol, Quantity: quantity}
	if err := c.Call(ctx, http.MethodPost, "/api/trade/"+string(side), body, &resp); err != nil {
		return nil, err
	}
	return &resp.Trade, nil
}

// TradeHistory fetches the user's recent trade records.
func (c *Client) TradeHistory(ctx context.Context) ([]domain.Trade, error) {
	var resp struct {
		Trades []domain.Trade `json:"trades"`
	}
	path := "/api/trade/history/" + url.PathEscape(c.userID)
	if err := c.Call(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Trades, nil
}

// ServerMetrics fetches the service's aggregate stats blob, read-only.
func (c *Client) ServerMetrics(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.Call(ctx, http.MethodGet, "/metrics", nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Health probes the service health endpoint. Used by the startup probe;
// the body is not inspected.
func (c *Client) Health(ctx context.Context) error {
	return c.Call(ctx, http.MethodGet, "/health", nil, nil)
}
