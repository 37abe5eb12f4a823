// Package chat stores coach conversations and their messages.
package chat

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Roles a stored message can have.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// TempConversationID marks a chat that is not persisted.
const TempConversationID = "temp"

type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Message struct {
	ID             int64     `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// Repository is a database-backed repository for conversations.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create starts a new conversation for the user.
func (r *Repository) Create(ctx context.Context, userID, title string) (*Conversation, error) {
	now := time.Now().UTC()
	c := &Conversation{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO conversations (id, user_id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Title, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return c, nil
}

// Latest returns the most recently active conversation of the user, or nil.
func (r *Repository) Latest(ctx context.Context, userID string) (*Conversation, error) {
	var c Conversation
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, created_at, updated_at
		FROM conversations
		WHERE user_id = ?
		ORDER BY updated_at DESC
		LIMIT 1`, userID,
	).Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest conversation for user %s: %w", userID, err)
	}
	return &c, nil
}

// Owns reports whether the conversation exists and belongs to the user.
func (r *Repository) Owns(ctx context.Context, userID, conversationID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM conversations WHERE id = ? AND user_id = ?`, conversationID, userID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check conversation %s: %w", conversationID, err)
	}
	return n > 0, nil
}

// AddMessages appends messages to a conversation in order and bumps its
// activity time.
func (r *Repository) AddMessages(ctx context.Context, conversationID string, msgs ...Message) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, m := range msgs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO chat_messages (conversation_id, role, content, created_at)
			VALUES (?, ?, ?, ?)`,
			conversationID, m.Role, m.Content, now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert %s message: %w", m.Role, err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE conversations SET updated_at = ? WHERE id = ?`, now, conversationID,
	); err != nil {
		return fmt.Errorf("failed to touch conversation: %w", err)
	}
	return tx.Commit()
}

// Messages returns the messages of a conversation in insertion order.
func (r *Repository) Messages(ctx context.Context, conversationID string) ([]Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, conversation_id, role, content, created_at
		FROM chat_messages
		WHERE conversation_id = ?
		ORDER BY id`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages of %s: %w", conversationID, err)
	}
	defer rows.Close()

	msgs := []Message{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
