// Package api provides the REST client for the trading service. Every
// call is timed, classified by outcome, journaled exactly once, and
// reflected in the connectivity flag. Retry policy belongs to callers;
// the client never retries on its own.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"tradesim/internal/metrics"
	"tradesim/internal/session"
)

// Client issues requests to the trading service API.
type Client struct {
	baseURL    string
	userID     string
	httpClient *http.Client
	store      *session.Store
	journal    *session.ActivityLog
	log        *slog.Logger
}

// NewClient creates a client for the service at baseURL acting as
// userID. Connectivity updates land in store; per-call summaries in
// journal.
func NewClient(baseURL, userID string, store *session.Store, journal *session.ActivityLog, log *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		userID:     userID,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		store:      store,
		journal:    journal,
		log:        log,
	}
}

// errorBody is the failure shape the service emits on non-2xx responses.
type errorBody struct {
	Error string `json:"error"`
}

// Call performs one request against the service. A non-nil body is
// JSON-encoded; a non-nil out receives the decoded response. The outcome
// is classified as *NetworkError, *HTTPError, or *DecodeError.
func (c *Client) Call(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	// Correlation ID, mirrored back by the service in X-Request-ID.
	reqID := uuid.NewString()[:8]
	req.Header.Set("X-Request-ID", reqID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)

	if err != nil {
		c.store.SetConnected(false)
		metrics.ObserveRequest(method, "network_error", elapsed)
		c.journal.Append(session.LevelError,
			fmt.Sprintf("%s %s failed after %dms: backend unreachable", method, path, elapsed.Milliseconds()))
		c.log.Error("request failed", "method", method, "path", path,
			"request_id", reqID, "duration_ms", elapsed.Milliseconds(), "error", err)
		return &NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.store.SetConnected(false)
		metrics.ObserveRequest(method, "network_error", elapsed)
		c.journal.Append(session.LevelError,
			fmt.Sprintf("%s %s failed after %dms: response truncated", method, path, elapsed.Milliseconds()))
		c.log.Error("reading response", "method", method, "path", path, "request_id", reqID, "error", err)
		return &NetworkError{URL: url, Err: err}
	}

	// A response arrived, so the backend is reachable even when it
	// reports a failure.
	c.store.SetConnected(true)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := fmt.Sprintf("request failed with status %d", resp.StatusCode)
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil && eb.Error != "" {
			msg = eb.Error
		}
		metrics.ObserveRequest(method, "http_error", elapsed)
		c.journal.Append(session.LevelWarning,
			fmt.Sprintf("%s %s -> %d (%dms): %s", method, path, resp.StatusCode, elapsed.Milliseconds(), msg))
		c.log.Warn("request rejected", "method", method, "path", path,
			"request_id", reqID, "status", resp.StatusCode, "duration_ms", elapsed.Milliseconds())
		return &HTTPError{Status: resp.StatusCode, Message: msg}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			metrics.ObserveRequest(method, "decode_error", elapsed)
			c.journal.Append(session.LevelError,
				fmt.Sprintf("%s %s -> %d (%dms): malformed response", method, path, resp.StatusCode, elapsed.Milliseconds()))
			c.log.Error("decoding response", "method", method, "path", path, "request_id", reqID, "error", err)
			return &DecodeError{Err: err}
		}
	}

	metrics.ObserveRequest(method, "ok", elapsed)
	c.journal.Append(session.LevelInfo,
		fmt.Sprintf("%s %s -> %d (%dms)", method, path, resp.StatusCode, elapsed.Milliseconds()))
	c.log.Debug("request ok", "method", method, "path", path,
		"request_id", reqID, "status", resp.StatusCode, "duration_ms", elapsed.Milliseconds())
	return nil
}
