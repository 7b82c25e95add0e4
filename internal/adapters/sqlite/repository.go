package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"optionSim/internal/domain"
	"optionSim/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements ports.LedgerRepository using SQLite. It persists the
// stream of settled trades so history survives restarts; the engine's
// in-memory ledger stays authoritative during a session.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite ledger repository.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/option_sim.db" // Default path
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// SQLite handles concurrency internally; the Go driver works best with a
	// single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	repo := &Repository{db: db, logger: cfg.Logger}

	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "SQLite ledger initialized", map[string]interface{}{"path": dbPath})

	return repo, nil
}

func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS settled_trades (
		seq INTEGER PRIMARY KEY AUTOINCREMENT, -- persistence order = settlement order
		id TEXT NOT NULL UNIQUE,
		symbol TEXT NOT NULL,
		direction TEXT NOT NULL,
		amount REAL NOT NULL,
		entry_price REAL NOT NULL,
		settle_price REAL NOT NULL,
		payout REAL NOT NULL,
		status TEXT NOT NULL,
		opened_at TIMESTAMP NOT NULL,
		expires_at TIMESTAMP NOT NULL,
		settled_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_settled_trades_symbol ON settled_trades (symbol, settled_at);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite ledger")
		return r.db.Close()
	}
	return nil
}

// SaveTrade appends a settled trade to the persistent ledger.
func (r *Repository) SaveTrade(ctx context.Context, trade *domain.Trade) error {
	const query = `
	INSERT INTO settled_trades (id, symbol, direction, amount, entry_price, settle_price,
	                            payout, status, opened_at, expires_at, settled_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		trade.ID, trade.Symbol, string(trade.Direction), trade.Amount, trade.EntryPrice,
		trade.SettlePrice, trade.Payout, string(trade.Status),
		trade.OpenedAt, trade.ExpiresAt, trade.SettledAt)
	if err != nil {
		return fmt.Errorf("failed to insert settled trade %s: %w", trade.ID, err)
	}
	r.logger.Debug(ctx, "Settled trade persisted", map[string]interface{}{"tradeID": trade.ID, "status": trade.Status})
	return nil
}

// FindRecent retrieves the most recently settled trades, newest first, up to
// limit. A non-positive limit returns all of them.
func (r *Repository) FindRecent(ctx context.Context, limit int) ([]*domain.Trade, error) {
	query := `
	SELECT id, symbol, direction, amount, entry_price, settle_price, payout, status,
	       opened_at, expires_at, settled_at
	FROM settled_trades
	ORDER BY seq DESC`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query settled trades: %w", err)
	}
	defer rows.Close()

	trades := make([]*domain.Trade, 0)
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settled trade: %w", err)
		}
		trades = append(trades, trade)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating settled trade rows: %w", err)
	}
	return trades, nil
}

// TotalProfit sums the realized profit of every persisted trade.
func (r *Repository) TotalProfit(ctx context.Context) (float64, error) {
	const query = `SELECT COALESCE(SUM(payout - amount), 0) FROM settled_trades WHERE status = ?`
	var wonProfit float64
	if err := r.db.QueryRowContext(ctx, query, string(domain.StatusWon)).Scan(&wonProfit); err != nil {
		return 0, fmt.Errorf("failed to sum winning profit: %w", err)
	}

	const lossQuery = `SELECT COALESCE(SUM(amount), 0) FROM settled_trades WHERE status = ?`
	var lostStake float64
	if err := r.db.QueryRowContext(ctx, lossQuery, string(domain.StatusLost)).Scan(&lostStake); err != nil {
		return 0, fmt.Errorf("failed to sum forfeited stakes: %w", err)
	}
	return wonProfit - lostStake, nil
}

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanTrade scans a row into a domain.Trade struct.
func scanTrade(s scanner) (*domain.Trade, error) {
	t := &domain.Trade{}
	var direction, status string
	err := s.Scan(
		&t.ID, &t.Symbol, &direction, &t.Amount, &t.EntryPrice, &t.SettlePrice,
		&t.Payout, &status, &t.OpenedAt, &t.ExpiresAt, &t.SettledAt)
	if err != nil {
		return nil, err
	}
	t.Direction = domain.Direction(direction)
	t.Status = domain.TradeStatus(status)
	return t, nil
}
