package dto

// CreateMemoRequest is the payload for creating a memo. Book is optional:
// when present with a non-empty ID it is upserted alongside the memo so a
// client can attach a note to a book the server has never seen.
type CreateMemoRequest struct {
	Body string `json:"body" validate:"max=5000"`
	Book *Book  `json:"book,omitempty"`
}

// UpdateMemoRequest is the payload for rewriting a memo's body.
type UpdateMemoRequest struct {
	Body string `json:"body" validate:"max=5000"`
}

// ShareMemoRequest is the payload for publishing a memo to a book's public
// feed. AuthorName is the display attribution; empty means anonymous.
type ShareMemoRequest struct {
	MemoID     string `json:"memoId" validate:"required"`
	AuthorName string `json:"authorName,omitempty"`
}
