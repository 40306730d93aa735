// Package conversation keeps per-session turn history so follow-up messages
// can refer to earlier answers.
package conversation

import (
	"context"
	"sync"

	"github.com/shoppit/backend/internal/storage/models"
)

const (
	DefaultHistoryLimit = 20
	DefaultRecentTurns  = 5
)

// Store keeps the most recent turns of every session. Implementations must
// make each Append atomic and serialize appends to the same session.
type Store interface {
	Append(ctx context.Context, sessionID string, turn models.Turn) error
	// Recent returns up to n of the latest turns, oldest first. Unknown
	// sessions yield an empty slice.
	Recent(ctx context.Context, sessionID string, n int) ([]models.Turn, error)
}

type session struct {
	mu    sync.Mutex
	turns []models.Turn
}

// MemoryStore keeps sessions in process memory for the process lifetime.
type MemoryStore struct {
	limit int

	mu       sync.RWMutex
	sessions map[string]*session
}

func NewMemoryStore(limit int) *MemoryStore {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &MemoryStore{limit: limit, sessions: make(map[string]*session)}
}

func (s *MemoryStore) session(id string, create bool) *session {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok || !create {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok = s.sessions[id]; !ok {
		sess = &session{}
		s.sessions[id] = sess
	}
	return sess
}

func (s *MemoryStore) Append(ctx context.Context, sessionID string, turn models.Turn) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sess := s.session(sessionID, true)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	turn.ProductIDs = append([]int64(nil), turn.ProductIDs...)

	// Build the replacement slice before publishing it so readers never see
	// a list above the limit.
	next := make([]models.Turn, 0, min(len(sess.turns)+1, s.limit))
	if drop := len(sess.turns) + 1 - s.limit; drop > 0 {
		next = append(next, sess.turns[drop:]...)
	} else {
		next = append(next, sess.turns...)
	}
	sess.turns = append(next, turn)
	return nil
}

func (s *MemoryStore) Recent(ctx context.Context, sessionID string, n int) ([]models.Turn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n <= 0 {
		n = DefaultRecentTurns
	}

	sess := s.session(sessionID, false)
	if sess == nil {
		return []models.Turn{}, nil
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	start := max(0, len(sess.turns)-n)
	out := make([]models.Turn, len(sess.turns)-start)
	copy(out, sess.turns[start:])
	return out, nil
}

// Sessions reports how many sessions are held.
func (s *MemoryStore) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// LastBotTurn returns the most recent bot turn in turns.
func LastBotTurn(turns []models.Turn) (models.Turn, bool) {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == models.RoleBot {
			return turns[i], true
		}
	}
	return models.Turn{}, false
}
