// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	apperrors "trading-coach/internal/errors"
	"trading-coach/internal/logging"
	"trading-coach/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string, logger zerolog.Logger) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool for concurrent access
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{
		db:     db,
		logger: logging.WithOperation(logger, "store"),
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Completed trades
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		timestamp DATETIME NOT NULL,
		symbol TEXT NOT NULL,
		side TEXT NOT NULL,
		entry_price REAL NOT NULL,
		exit_price REAL NOT NULL,
		position_size REAL NOT NULL,
		profit REAL NOT NULL,
		duration INTEGER NOT NULL DEFAULT 0,
		stop_loss REAL,
		take_profit REAL,
		notes TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Coaching sessions
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		last_active DATETIME NOT NULL,
		metadata TEXT NOT NULL DEFAULT '{}'
	);

	-- Session transcript, oldest first by seq
	CREATE TABLE IF NOT EXISTS session_messages (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		session_id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		type TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_trades_symbol ON trades(symbol);
	CREATE INDEX IF NOT EXISTS idx_trades_timestamp ON trades(timestamp);
	CREATE INDEX IF NOT EXISTS idx_messages_session ON session_messages(session_id, seq);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ============================================================================
// Trades Methods
// ============================================================================

const tradeColumns = "id, timestamp, symbol, side, entry_price, exit_price, position_size, profit, duration, stop_loss, take_profit, notes"

// SaveTrade inserts a trade, replacing any trade with the same ID.
func (s *SQLiteStore) SaveTrade(ctx context.Context, trade *models.Trade) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO trades (`+tradeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, trade.ID, trade.Timestamp.UTC(), trade.Symbol, string(trade.Side), trade.EntryPrice, trade.ExitPrice,
		trade.PositionSize, trade.Profit, trade.DurationMinutes, nullFloat(trade.StopLoss), nullFloat(trade.TakeProfit), trade.Notes)
	if err != nil {
		return apperrors.NewStoreError("save_trade", fmt.Errorf("%w: %v", apperrors.ErrDatabaseError, err))
	}
	return nil
}

// GetTrade retrieves a single trade by ID.
func (s *SQLiteStore) GetTrade(ctx context.Context, id string) (*models.Trade, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+tradeColumns+" FROM trades WHERE id = ?", id)
	t, err := scanTrade(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewStoreError("get_trade", fmt.Errorf("%w: %s", apperrors.ErrTradeNotFound, id))
	}
	if err != nil {
		return nil, apperrors.NewStoreError("get_trade", fmt.Errorf("%w: %v", apperrors.ErrDatabaseError, err))
	}
	return &t, nil
}

// GetTrades retrieves trades newest first.
func (s *SQLiteStore) GetTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error) {
	query := "SELECT " + tradeColumns + " FROM trades WHERE 1=1"
	args := []interface{}{}

	if filter.Symbol != "" {
		query += " AND symbol = ?"
		args = append(args, filter.Symbol)
	}
	if !filter.StartDate.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, filter.StartDate.UTC())
	}
	if !filter.EndDate.IsZero() {
		query += " AND timestamp <= ?"
		args = append(args, filter.EndDate.UTC())
	}

	query += " ORDER BY timestamp DESC, id ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreError("get_trades", fmt.Errorf("%w: %v", apperrors.ErrDatabaseError, err))
	}
	defer rows.Close()

	trades := []models.Trade{}
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, apperrors.NewStoreError("get_trades", fmt.Errorf("failed to scan trade: %w", err))
		}
		trades = append(trades, t)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreError("get_trades", fmt.Errorf("error iterating trades: %w", err))
	}

	return trades, nil
}

// UpdateTrade overwrites an existing trade.
func (s *SQLiteStore) UpdateTrade(ctx context.Context, trade *models.Trade) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE trades SET timestamp = ?, symbol = ?, side = ?, entry_price = ?, exit_price = ?, position_size = ?,
			profit = ?, duration = ?, stop_loss = ?, take_profit = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, trade.Timestamp.UTC(), trade.Symbol, string(trade.Side), trade.EntryPrice, trade.ExitPrice, trade.PositionSize,
		trade.Profit, trade.DurationMinutes, nullFloat(trade.StopLoss), nullFloat(trade.TakeProfit), trade.Notes, trade.ID)
	if err != nil {
		return apperrors.NewStoreError("update_trade", fmt.Errorf("%w: %v", apperrors.ErrDatabaseError, err))
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apperrors.NewStoreError("update_trade", fmt.Errorf("%w: %s", apperrors.ErrTradeNotFound, trade.ID))
	}
	return nil
}

// DeleteTrade removes a trade.
func (s *SQLiteStore) DeleteTrade(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM trades WHERE id = ?", id)
	if err != nil {
		return apperrors.NewStoreError("delete_trade", fmt.Errorf("%w: %v", apperrors.ErrDatabaseError, err))
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apperrors.NewStoreError("delete_trade", fmt.Errorf("%w: %s", apperrors.ErrTradeNotFound, id))
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTrade(r rowScanner) (models.Trade, error) {
	var t models.Trade
	var side string
	var stopLoss, takeProfit sql.NullFloat64
	if err := r.Scan(&t.ID, &t.Timestamp, &t.Symbol, &side, &t.EntryPrice, &t.ExitPrice, &t.PositionSize,
		&t.Profit, &t.DurationMinutes, &stopLoss, &takeProfit, &t.Notes); err != nil {
		return t, err
	}
	t.Side = models.Side(side)
	if stopLoss.Valid {
		t.StopLoss = &stopLoss.Float64
	}
	if takeProfit.Valid {
		t.TakeProfit = &takeProfit.Float64
	}
	return t, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
