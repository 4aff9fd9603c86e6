package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "trading-coach/internal/errors"
	"trading-coach/internal/models"
)

// ============================================================================
// Session Methods
// ============================================================================

// GetOrCreateSession loads a session with its transcript, creating it when
// missing. An empty id creates a fresh session. Either way LastActive is
// bumped.
func (s *SQLiteStore) GetOrCreateSession(ctx context.Context, id string) (*models.Session, error) {
	if id == "" {
		id = "session_" + uuid.NewString()
	}
	now := time.Now().UTC()

	meta, _ := json.Marshal(models.DefaultSessionMetadata())
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.NewStoreError("get_session", fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO sessions (id, created_at, last_active, metadata) VALUES (?, ?, ?, ?)
	`, id, now, now, string(meta))
	if err != nil {
		return nil, apperrors.NewStoreError("get_session", fmt.Errorf("%w: %v", apperrors.ErrDatabaseError, err))
	}
	if created, _ := result.RowsAffected(); created == 1 {
		s.logger.Debug().Str("session_id", id).Msg("Session created")
	}

	if _, err := tx.ExecContext(ctx, "UPDATE sessions SET last_active = ? WHERE id = ?", now, id); err != nil {
		return nil, apperrors.NewStoreError("get_session", fmt.Errorf("%w: %v", apperrors.ErrDatabaseError, err))
	}

	sess, err := loadSession(ctx, tx, id)
	if err != nil {
		return nil, apperrors.NewStoreError("get_session", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.NewStoreError("get_session", fmt.Errorf("failed to commit transaction: %w", err))
	}
	return sess, nil
}

// AppendMessage adds a message to a session transcript, assigning an ID and
// timestamp when unset. Only the newest MaxSessionMessages are kept.
func (s *SQLiteStore) AppendMessage(ctx context.Context, sessionID string, msg *models.Message) error {
	if msg.ID == "" {
		msg.ID = "msg_" + uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	if msg.Type == "" {
		msg.Type = models.MessageCoaching
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewStoreError("append_message", fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	if err := touchSession(ctx, tx, sessionID); err != nil {
		return apperrors.NewStoreError("append_message", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO session_messages (id, session_id, role, content, type, timestamp) VALUES (?, ?, ?, ?, ?, ?)
	`, msg.ID, sessionID, msg.Role, msg.Content, string(msg.Type), msg.Timestamp.UTC())
	if err != nil {
		return apperrors.NewStoreError("append_message", fmt.Errorf("%w: %v", apperrors.ErrDatabaseError, err))
	}

	result, err := tx.ExecContext(ctx, `
		DELETE FROM session_messages WHERE session_id = ? AND seq NOT IN (
			SELECT seq FROM session_messages WHERE session_id = ? ORDER BY seq DESC LIMIT ?
		)
	`, sessionID, sessionID, MaxSessionMessages)
	if err != nil {
		return apperrors.NewStoreError("append_message", fmt.Errorf("failed to trim messages: %w", err))
	}
	if dropped, _ := result.RowsAffected(); dropped > 0 {
		s.logger.Debug().Str("session_id", sessionID).Int64("dropped", dropped).Msg("Trimmed session transcript")
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewStoreError("append_message", fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}

// GetMessages returns the filtered transcript oldest first together with the
// total number of stored messages in the session.
func (s *SQLiteStore) GetMessages(ctx context.Context, sessionID string, filter MessageFilter) ([]models.Message, int, error) {
	if err := s.sessionExists(ctx, sessionID); err != nil {
		return nil, 0, apperrors.NewStoreError("get_messages", err)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM session_messages WHERE session_id = ?", sessionID).Scan(&total); err != nil {
		return nil, 0, apperrors.NewStoreError("get_messages", fmt.Errorf("%w: %v", apperrors.ErrDatabaseError, err))
	}

	query := "SELECT id, role, content, type, timestamp FROM session_messages WHERE session_id = ?"
	args := []interface{}{sessionID}
	if filter.Type != "" && filter.Type != "all" {
		query += " AND type = ?"
		args = append(args, string(filter.Type))
	}
	query += " ORDER BY seq DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, apperrors.NewStoreError("get_messages", fmt.Errorf("%w: %v", apperrors.ErrDatabaseError, err))
	}
	defer rows.Close()

	msgs, err := scanMessages(rows)
	if err != nil {
		return nil, 0, apperrors.NewStoreError("get_messages", err)
	}
	// newest N were read newest first
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, total, nil
}

// ClearMessages empties a session transcript.
func (s *SQLiteStore) ClearMessages(ctx context.Context, sessionID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewStoreError("clear_messages", fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	if err := touchSession(ctx, tx, sessionID); err != nil {
		return apperrors.NewStoreError("clear_messages", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM session_messages WHERE session_id = ?", sessionID); err != nil {
		return apperrors.NewStoreError("clear_messages", fmt.Errorf("%w: %v", apperrors.ErrDatabaseError, err))
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewStoreError("clear_messages", fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}

// UpdateSessionMetadata merges updates into the session metadata and returns
// the result. Keys in updates replace existing keys.
func (s *SQLiteStore) UpdateSessionMetadata(ctx context.Context, sessionID string, updates map[string]interface{}) (map[string]interface{}, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.NewStoreError("update_metadata", fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	var raw string
	err = tx.QueryRowContext(ctx, "SELECT metadata FROM sessions WHERE id = ?", sessionID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewStoreError("update_metadata", fmt.Errorf("%w: %s", apperrors.ErrSessionNotFound, sessionID))
	}
	if err != nil {
		return nil, apperrors.NewStoreError("update_metadata", fmt.Errorf("%w: %v", apperrors.ErrDatabaseError, err))
	}

	meta := map[string]interface{}{}
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return nil, apperrors.NewStoreError("update_metadata", fmt.Errorf("corrupt session metadata: %w", err))
	}
	for k, v := range updates {
		meta[k] = v
	}

	merged, err := json.Marshal(meta)
	if err != nil {
		return nil, apperrors.NewStoreError("update_metadata", fmt.Errorf("failed to encode metadata: %w", err))
	}
	if _, err := tx.ExecContext(ctx, "UPDATE sessions SET metadata = ?, last_active = ? WHERE id = ?",
		string(merged), time.Now().UTC(), sessionID); err != nil {
		return nil, apperrors.NewStoreError("update_metadata", fmt.Errorf("%w: %v", apperrors.ErrDatabaseError, err))
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.NewStoreError("update_metadata", fmt.Errorf("failed to commit transaction: %w", err))
	}

	// round-trip so callers see the stored JSON types
	out := map[string]interface{}{}
	_ = json.Unmarshal(merged, &out)
	return out, nil
}

// ListSessions returns every session, most recently active first.
func (s *SQLiteStore) ListSessions(ctx context.Context) ([]models.SessionSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.created_at, s.last_active, s.metadata, COUNT(m.seq)
		FROM sessions s LEFT JOIN session_messages m ON m.session_id = s.id
		GROUP BY s.id
		ORDER BY s.last_active DESC
	`)
	if err != nil {
		return nil, apperrors.NewStoreError("list_sessions", fmt.Errorf("%w: %v", apperrors.ErrDatabaseError, err))
	}
	defer rows.Close()

	out := []models.SessionSummary{}
	for rows.Next() {
		var sum models.SessionSummary
		var raw string
		if err := rows.Scan(&sum.ID, &sum.CreatedAt, &sum.LastActive, &raw, &sum.MessageCount); err != nil {
			return nil, apperrors.NewStoreError("list_sessions", fmt.Errorf("failed to scan session: %w", err))
		}
		sum.Metadata = map[string]interface{}{}
		json.Unmarshal([]byte(raw), &sum.Metadata)
		out = append(out, sum)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreError("list_sessions", fmt.Errorf("error iterating sessions: %w", err))
	}
	return out, nil
}

func (s *SQLiteStore) sessionExists(ctx context.Context, id string) error {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM sessions WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", apperrors.ErrSessionNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrDatabaseError, err)
	}
	return nil
}

// touchSession bumps last_active, failing when the session does not exist.
func touchSession(ctx context.Context, tx *sql.Tx, id string) error {
	result, err := tx.ExecContext(ctx, "UPDATE sessions SET last_active = ? WHERE id = ?", time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrDatabaseError, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrSessionNotFound, id)
	}
	return nil
}

func loadSession(ctx context.Context, tx *sql.Tx, id string) (*models.Session, error) {
	sess := &models.Session{ID: id}
	var raw string
	err := tx.QueryRowContext(ctx, "SELECT created_at, last_active, metadata FROM sessions WHERE id = ?", id).
		Scan(&sess.CreatedAt, &sess.LastActive, &raw)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	sess.Metadata = map[string]interface{}{}
	if err := json.Unmarshal([]byte(raw), &sess.Metadata); err != nil {
		return nil, fmt.Errorf("corrupt session metadata: %w", err)
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT id, role, content, type, timestamp FROM session_messages WHERE session_id = ? ORDER BY seq ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	defer rows.Close()

	sess.Messages, err = scanMessages(rows)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func scanMessages(rows *sql.Rows) ([]models.Message, error) {
	msgs := []models.Message{}
	for rows.Next() {
		var m models.Message
		var typ string
		if err := rows.Scan(&m.ID, &m.Role, &m.Content, &typ, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Type = models.MessageType(typ)
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}
	return msgs, nil
}
