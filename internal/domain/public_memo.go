package domain

import "time"

// AnonymousAuthorName is the attribution used when a memo is shared without
// an explicit author name.
const AnonymousAuthorName = "Anonymous reader"

// PublicMemo is a published snapshot of a memo. Sharing copies Body and
// CreatedAt from the source memo at that moment; later edits or deletion of
// the source never touch the snapshot. SharedAt records the publication time.
type PublicMemo struct {
	ID         string    `json:"id"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"` // Copied from the source memo
	SharedAt   time.Time `json:"shared_at"`
	BookID     string    `json:"book_id"`
	AuthorID   string    `json:"author_id"` // Empty when shared anonymously
	AuthorName string    `json:"author_name"`
}
