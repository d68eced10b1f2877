// Package market drives manual and periodic refresh of market data
// through the service client, writing snapshots into the session store.
package market

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"tradesim/internal/domain"
	"tradesim/internal/metrics"
	"tradesim/internal/session"
)

// Gateway is the slice of the service client the syncer drives.
type Gateway interface {
	ListStocks(ctx context.Context) ([]domain.Stock, error)
	AllHistories(ctx context.Context, days int) (map[string][]float64, error)
	GetPortfolio(ctx context.Context) (*domain.Portfolio, error)
	MarketTick(ctx context.Context) error
}

// SnapshotCache persists the latest snapshot for offline startup. May be
// nil when no cache is configured.
type SnapshotCache interface {
	SaveSnapshot(ctx context.Context, stocks []domain.Stock, histories map[string][]float64) error
	LoadStocks(ctx context.Context) ([]domain.Stock, error)
	LoadHistories(ctx context.Context) (map[string][]float64, error)
}

// Syncer keeps the session store current. Manual refreshes always hit
// the network; the periodic loop is gated on connectivity and treats
// every failure as "skip this cycle".
type Syncer struct {
	gw           Gateway
	store        *session.Store
	journal      *session.ActivityLog
	cache        SnapshotCache
	log          *slog.Logger
	tick         time.Duration
	refreshEvery time.Duration
	historyDays  int

	skips    atomic.Int64
	failures atomic.Int64
}

// NewSyncer wires a syncer. tick is the market-tick cadence,
// refreshEvery the slower full-refresh cadence. cache may be nil.
func NewSyncer(gw Gateway, store *session.Store, journal *session.ActivityLog, cache SnapshotCache, log *slog.Logger, tick, refreshEvery time.Duration, historyDays int) *Syncer {
	return &Syncer{
		gw:           gw,
		store:        store,
		journal:      journal,
		cache:        cache,
		log:          log,
		tick:         tick,
		refreshEvery: refreshEvery,
		historyDays:  historyDays,
	}
}

// Refresh fetches the stock snapshot and the full price-history map and
// installs both. It runs unconditionally, even while disconnected: the
// attempt itself is the recovery probe. Errors surface to the caller.
func (s *Syncer) Refresh(ctx context.Context) error {
	stocks, err := s.gw.ListStocks(ctx)
	if err != nil {
		return err
	}
	histories, err := s.gw.AllHistories(ctx, s.historyDays)
	if err != nil {
		return err
	}

	s.store.ReplaceStocks(stocks)
	s.store.ReplaceHistories(histories)

	if s.cache != nil {
		if err := s.cache.SaveSnapshot(ctx, stocks, histories); err != nil {
			// Cache write failure never fails a refresh.
			s.log.Warn("writing snapshot cache", "error", err)
		}
	}
	return nil
}

// LoadCached seeds the store from the snapshot cache so the dashboard
// shows last-known data before the first network round trip. An empty or
// missing cache is not an error.
func (s *Syncer) LoadCached(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	stocks, err := s.cache.LoadStocks(ctx)
	if err != nil {
		return err
	}
	histories, err := s.cache.LoadHistories(ctx)
	if err != nil {
		return err
	}
	if len(stocks) == 0 && len(histories) == 0 {
		return nil
	}
	s.store.ReplaceStocks(stocks)
	s.store.ReplaceHistories(histories)
	s.log.Info("seeded store from snapshot cache", "stocks", len(stocks), "histories", len(histories))
	return nil
}

// Run drives both periodic loops until ctx is done. Tick cycles while
// disconnected are skipped and counted; failed cycles are journaled,
// counted, and dropped. The slower full refresh runs unconditionally on
// its own cadence, so it doubles as the recovery probe during an
// outage. Neither loop ever stops on error.
func (s *Syncer) Run(ctx context.Context) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	refresh := time.NewTicker(s.refreshEvery)
	defer refresh.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runCycle(ctx)
		case <-refresh.C:
			s.runRefresh(ctx)
		}
	}
}

func (s *Syncer) runRefresh(ctx context.Context) {
	if err := s.Refresh(ctx); err != nil {
		s.log.Warn("periodic refresh failed", "error", err)
	}
}

func (s *Syncer) runCycle(ctx context.Context) {
	if !s.store.Connected() {
		s.skips.Add(1)
		metrics.SyncSkipped()
		s.log.Debug("sync cycle skipped, backend down")
		return
	}
	if err := s.cycle(ctx); err != nil {
		s.failures.Add(1)
		metrics.SyncCycleFailed()
		s.journal.Append(session.LevelWarning, "periodic sync cycle skipped: "+err.Error())
		s.log.Warn("sync cycle failed", "error", err)
	}
}

// cycle applies one market movement and refetches everything the
// dashboard displays.
func (s *Syncer) cycle(ctx context.Context) error {
	if err := s.gw.MarketTick(ctx); err != nil {
		return err
	}
	if err := s.Refresh(ctx); err != nil {
		return err
	}
	portfolio, err := s.gw.GetPortfolio(ctx)
	if err != nil {
		return err
	}
	s.store.ReplacePortfolio(*portfolio)
	return nil
}

// Skips reports how many periodic cycles were skipped while
// disconnected.
func (s *Syncer) Skips() int64 { return s.skips.Load() }

// Failures reports how many periodic cycles failed and were dropped.
func (s *Syncer) Failures() int64 { return s.failures.Load() }
