package store

import (
	"context"
	"database/sql"
	"fmt"

	"tradesim/internal/domain"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface check.
var _ SnapshotCache = (*SQLiteCache)(nil)

// SQLiteCache implements SnapshotCache backed by a SQLite database.
type SQLiteCache struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS stocks (
	symbol           TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	sector           TEXT NOT NULL,
	price            REAL NOT NULL,
	daily_change     REAL NOT NULL,
	daily_change_pct REAL NOT NULL,
	total_change_pct REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS histories (
	symbol TEXT NOT NULL,
	idx    INTEGER NOT NULL,
	close  REAL NOT NULL,
	PRIMARY KEY (symbol, idx)
);
`

// NewSQLiteCache opens (or creates) a SQLite database at dbPath and
// ensures the snapshot tables exist.
func NewSQLiteCache(dbPath string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening cache %s: %w", dbPath, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache tables: %w", err)
	}
	return &SQLiteCache{db: db}, nil
}

// Close closes the underlying database connection.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

// SaveSnapshot replaces the cached snapshot wholesale, mirroring the
// replace-never-merge semantics of the in-memory store.
func (c *SQLiteCache) SaveSnapshot(ctx context.Context, stocks []domain.Stock, histories map[string][]float64) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM stocks`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM histories`); err != nil {
		return err
	}

	for _, s := range stocks {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO stocks (symbol, name, sector, price, daily_change, daily_change_pct, total_change_pct)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			s.Symbol, s.Name, s.Sector, s.Price, s.DailyChange, s.DailyChangePct, s.TotalChangePct)
		if err != nil {
			return err
		}
	}

	for symbol, prices := range histories {
		for i, close := range prices {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO histories (symbol, idx, close) VALUES (?, ?, ?)`,
				symbol, i, close)
			if err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// LoadStocks returns the cached stock snapshot. An empty cache yields an
// empty slice, not an error.
func (c *SQLiteCache) LoadStocks(ctx context.Context) ([]domain.Stock, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT symbol, name, sector, price, daily_change, daily_change_pct, total_change_pct
		 FROM stocks ORDER BY symbol`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stocks []domain.Stock
	for rows.Next() {
		var s domain.Stock
		if err := rows.Scan(&s.Symbol, &s.Name, &s.Sector, &s.Price,
			&s.DailyChange, &s.DailyChangePct, &s.TotalChangePct); err != nil {
			return nil, err
		}
		stocks = append(stocks, s)
	}
	return stocks, rows.Err()
}

// LoadHistories returns the cached price histories, oldest first per
// symbol.
func (c *SQLiteCache) LoadHistories(ctx context.Context) (map[string][]float64, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT symbol, close FROM histories ORDER BY symbol, idx`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	histories := make(map[string][]float64)
	for rows.Next() {
		var symbol string
		var close float64
		if err := rows.Scan(&symbol, &close); err != nil {
			return nil, err
		}
		histories[symbol] = append(histories[symbol], close)
	}
	return histories, rows.Err()
}
