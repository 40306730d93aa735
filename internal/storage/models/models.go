package models

import "time"

type Product struct {
	ID          int64
	Name        string
	Slug        string
	Description string
	Price       float64
	Category    string
	CreatedAt   time.Time
}

// FAQ is a stored question/answer pair. Keywords is the raw comma separated
// list as kept in the record store.
type FAQ struct {
	ID        int64
	Question  string
	Answer    string
	Keywords  string
	Category  string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleBot
}

// Turn is one entry of a session's history. ProductIDs carries the products a
// bot turn suggested so follow-ups can refer to them by position.
type Turn struct {
	Role       Role      `json:"role"`
	Text       string    `json:"text"`
	ProductIDs []int64   `json:"product_ids,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type Conversation struct {
	ID        int64
	SessionID string
	StartedAt time.Time
	EndedAt   *time.Time
	Feedback  *int
}

type Message struct {
	ID             int64
	ConversationID int64
	Sender         Role
	Text           string
	Timestamp      time.Time
}
