package domain

import "time"

// MaxMemoBodyLength is the maximum number of characters allowed in a memo body.
// Oversized bodies are rejected outright, never truncated.
const MaxMemoBodyLength = 5000

// Memo is a private note a user attaches to a book. Ownership is fixed at
// creation: UserID, BookID, and CreatedAt never change. Only Body is mutable.
type Memo struct {
	ID        string    `json:"id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UserID    string    `json:"user_id"`
	BookID    string    `json:"book_id"`
}

// OwnedBy reports whether the memo belongs to the given user.
func (m *Memo) OwnedBy(userID string) bool {
	return m.UserID == userID
}
