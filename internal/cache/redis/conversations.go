package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shoppit/backend/internal/storage/models"
)

const conversationPrefix = "chat:history:"

// ConversationStore keeps each session as a capped Redis list, letting
// several API instances share history.
type ConversationStore struct {
	c     *Client
	limit int
	ttl   time.Duration
}

// NewConversationStore keeps the latest limit turns per session. A positive
// ttl expires idle sessions.
func NewConversationStore(c *Client, limit int, ttl time.Duration) *ConversationStore {
	if limit <= 0 {
		limit = 20
	}
	return &ConversationStore{c: c, limit: limit, ttl: ttl}
}

func (s *ConversationStore) key(sessionID string) string {
	return conversationPrefix + sessionID
}

// Append pushes and trims in one MULTI/EXEC so concurrent appends to a
// session never leave the list above the limit.
func (s *ConversationStore) Append(ctx context.Context, sessionID string, turn models.Turn) error {
	data, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("failed to marshal turn: %w", err)
	}

	key := s.key(sessionID)
	_, err = s.c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, data)
		pipe.LTrim(ctx, key, int64(-s.limit), -1)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append turn: %w", err)
	}
	return nil
}

func (s *ConversationStore) Recent(ctx context.Context, sessionID string, n int) ([]models.Turn, error) {
	if n <= 0 {
		n = 5
	}

	raw, err := s.c.client.LRange(ctx, s.key(sessionID), int64(-n), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	turns := make([]models.Turn, 0, len(raw))
	for _, item := range raw {
		var t models.Turn
		if err := json.Unmarshal([]byte(item), &t); err != nil {
			return nil, fmt.Errorf("failed to unmarshal turn: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, nil
}
