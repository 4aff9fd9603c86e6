// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"trading-coach/internal/models"
)

// MaxSessionMessages is how many messages a session keeps; older ones are dropped.
const MaxSessionMessages = 50

// DataStore defines the interface for data persistence.
type DataStore interface {
	// Trades
	SaveTrade(ctx context.Context, trade *models.Trade) error
	GetTrade(ctx context.Context, id string) (*models.Trade, error)
	GetTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error)
	UpdateTrade(ctx context.Context, trade *models.Trade) error
	DeleteTrade(ctx context.Context, id string) error

	// Coaching sessions
	GetOrCreateSession(ctx context.Context, id string) (*models.Session, error)
	AppendMessage(ctx context.Context, sessionID string, msg *models.Message) error
	GetMessages(ctx context.Context, sessionID string, filter MessageFilter) ([]models.Message, int, error)
	ClearMessages(ctx context.Context, sessionID string) error
	UpdateSessionMetadata(ctx context.Context, sessionID string, updates map[string]interface{}) (map[string]interface{}, error)
	ListSessions(ctx context.Context) ([]models.SessionSummary, error)

	// Lifecycle
	Close() error
}

// TradeFilter represents filters for querying trades.
type TradeFilter struct {
	Symbol    string
	StartDate time.Time
	EndDate   time.Time
	Limit     int
}

// MessageFilter selects session messages. An empty Type or "all" matches
// every type; Limit keeps the newest N.
type MessageFilter struct {
	Type  models.MessageType
	Limit int
}
