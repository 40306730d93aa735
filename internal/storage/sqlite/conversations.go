package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shoppit/backend/internal/storage"
	"github.com/shoppit/backend/internal/storage/models"
	"github.com/shoppit/backend/pkg/logger"
)

// RecordExchange stores a user message and the bot reply under the session's
// conversation, creating the conversation on first use.
func (c *Client) RecordExchange(ctx context.Context, sessionID string, user, bot models.Turn) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	startedAt := user.CreatedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO chatbot_conversations (session_id, started_at) VALUES (?, ?) ON CONFLICT(session_id) DO NOTHING`,
		sessionID, startedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}

	var conversationID int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM chatbot_conversations WHERE session_id = ?`, sessionID).Scan(&conversationID)
	if err != nil {
		return fmt.Errorf("failed to load conversation: %w", err)
	}

	for _, turn := range []models.Turn{user, bot} {
		ts := turn.CreatedAt
		if ts.IsZero() {
			ts = time.Now()
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO chatbot_messages (conversation_id, sender, message, timestamp) VALUES (?, ?, ?, ?)`,
			conversationID, string(turn.Role), turn.Text, ts.Unix(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit exchange: %w", err)
	}

	logger.Debug("Exchange recorded", zap.String("session_id", sessionID), zap.Int64("conversation_id", conversationID))
	return nil
}

func (c *Client) GetConversation(ctx context.Context, sessionID string) (*models.Conversation, error) {
	query := `SELECT id, session_id, started_at, ended_at, feedback FROM chatbot_conversations WHERE session_id = ?`

	var conv models.Conversation
	var startedAt int64
	var endedAt, feedback sql.NullInt64

	err := c.db.QueryRowContext(ctx, query, sessionID).Scan(&conv.ID, &conv.SessionID, &startedAt, &endedAt, &feedback)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	conv.StartedAt = time.Unix(startedAt, 0)
	if endedAt.Valid {
		t := time.Unix(endedAt.Int64, 0)
		conv.EndedAt = &t
	}
	if feedback.Valid {
		f := int(feedback.Int64)
		conv.Feedback = &f
	}

	return &conv, nil
}

// SetFeedback stores a 1-5 rating and closes the conversation.
func (c *Client) SetFeedback(ctx context.Context, sessionID string, rating int) error {
	if rating < 1 || rating > 5 {
		return storage.ErrInvalidFeedback
	}

	res, err := c.db.ExecContext(ctx,
		`UPDATE chatbot_conversations SET feedback = ?, ended_at = COALESCE(ended_at, ?) WHERE session_id = ?`,
		rating, time.Now().Unix(), sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to store feedback: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to store feedback: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}

	logger.Info("Feedback stored", zap.String("session_id", sessionID), zap.Int("feedback", rating))
	return nil
}

// ListMessages returns the most recent limit messages of a session, oldest
// first.
func (c *Client) ListMessages(ctx context.Context, sessionID string, limit int) ([]models.Message, error) {
	query := `
		SELECT id, conversation_id, sender, message, timestamp FROM (
			SELECT m.id, m.conversation_id, m.sender, m.message, m.timestamp
			FROM chatbot_messages m
			JOIN chatbot_conversations c ON c.id = m.conversation_id
			WHERE c.session_id = ?
			ORDER BY m.id DESC
			LIMIT ?
		) ORDER BY id ASC
	`

	rows, err := c.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		var sender string
		var ts int64

		if err := rows.Scan(&m.ID, &m.ConversationID, &sender, &m.Text, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		m.Sender = models.Role(sender)
		m.Timestamp = time.Unix(ts, 0)
		messages = append(messages, m)
	}

	return messages, rows.Err()
}
