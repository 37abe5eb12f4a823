package telegram

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SessionCoachChat links a Telegram user to the conversation the bot keeps
// appending to.
const SessionCoachChat = "coach_chat"

// Session represents an active user session.
type Session struct {
	ID             int64
	UserID         string
	SessionType    string
	ConversationID string
	ExpiresAt      time.Time
	CreatedAt      time.Time
}

// SessionRepository provides access to session persistence operations
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository instance
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create creates a new session and returns its ID
func (sr *SessionRepository) Create(ctx context.Context, userID, sessionType, conversationID string, ttl time.Duration) (int64, error) {
	now := time.Now().UTC()
	res, err := sr.db.ExecContext(ctx, `
		INSERT INTO telegram_sessions (user_id, session_type, conversation_id, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		userID, sessionType, conversationID, now.Add(ttl), now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create session for user %s: %w", userID, err)
	}
	return res.LastInsertId()
}

// GetActive retrieves the most recent non-expired session of the given type,
// or nil.
func (sr *SessionRepository) GetActive(ctx context.Context, userID, sessionType string, now time.Time) (*Session, error) {
	var s Session
	err := sr.db.QueryRowContext(ctx, `
		SELECT id, user_id, session_type, conversation_id, expires_at, created_at
		FROM telegram_sessions
		WHERE user_id = ? AND session_type = ? AND expires_at > ?
		ORDER BY created_at DESC
		LIMIT 1`, userID, sessionType, now.UTC(),
	).Scan(&s.ID, &s.UserID, &s.SessionType, &s.ConversationID, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active session for user %s: %w", userID, err)
	}
	return &s, nil
}

// Extend pushes the expiry of a session.
func (sr *SessionRepository) Extend(ctx context.Context, sessionID int64, expiresAt time.Time) error {
	_, err := sr.db.ExecContext(ctx,
		`UPDATE telegram_sessions SET expires_at = ? WHERE id = ?`, expiresAt.UTC(), sessionID)
	if err != nil {
		return fmt.Errorf("failed to extend session %d: %w", sessionID, err)
	}
	return nil
}

// Delete removes a session
func (sr *SessionRepository) Delete(ctx context.Context, sessionID int64) error {
	if _, err := sr.db.ExecContext(ctx, `DELETE FROM telegram_sessions WHERE id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to delete session %d: %w", sessionID, err)
	}
	return nil
}

// CleanupExpired removes all sessions expired before now.
func (sr *SessionRepository) CleanupExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := sr.db.ExecContext(ctx, `DELETE FROM telegram_sessions WHERE expires_at <= ?`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup sessions: %w", err)
	}
	return res.RowsAffected()
}
