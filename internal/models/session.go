package models

import "time"

// MessageType tags a coaching session message.
type MessageType string

const (
	MessageCoaching MessageType = "coaching"
	MessageAnalysis MessageType = "analysis"
	MessageReview   MessageType = "review"
)

// Message is one entry in a coaching session transcript.
type Message struct {
	ID        string      `json:"id"`
	Role      string      `json:"role"`
	Content   string      `json:"content"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
}

// Session is a coaching conversation with free-form metadata.
type Session struct {
	ID         string                 `json:"id"`
	CreatedAt  time.Time              `json:"createdAt"`
	LastActive time.Time              `json:"lastActive"`
	Messages   []Message              `json:"messages"`
	Metadata   map[string]interface{} `json:"metadata"`
}

// SessionSummary is the listing form of a session.
type SessionSummary struct {
	ID           string                 `json:"id"`
	CreatedAt    time.Time              `json:"createdAt"`
	LastActive   time.Time              `json:"lastActive"`
	MessageCount int                    `json:"messageCount"`
	Metadata     map[string]interface{} `json:"metadata"`
}

// DefaultSessionMetadata returns the metadata a new session starts with.
func DefaultSessionMetadata() map[string]interface{} {
	return map[string]interface{}{
		"tradeCount":     0,
		"totalProfit":    0,
		"winRate":        0,
		"biasesDetected": []string{},
	}
}
