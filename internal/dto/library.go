// Package dto provides Data Transfer Objects for API responses.
//
// DTOs are projections of domain entities: private memos never expose their
// owner, and public memos carry a nested author block instead of raw
// attribution columns. Field names follow the wire format the clients were
// built against (camelCase).
package dto

import (
	"time"

	"github.com/marginaliaapp/marginalia-server/internal/domain"
)

// Book is the client-facing representation of a catalog book.
type Book struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	Authors       []string `json:"authors,omitempty"`
	Thumbnail     string   `json:"thumbnail,omitempty"`
	InfoLink      string   `json:"infoLink,omitempty"`
	PublishedDate string   `json:"publishedDate,omitempty"`
	Source        string   `json:"source,omitempty"`
}

// Memo is the client-facing representation of a private memo.
// UserID and BookID are deliberately absent: the caller already knows both
// from the route, and memos are never shown outside their owner's context.
type Memo struct {
	ID        string    `json:"id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// MemoAuthor is the attribution block on a public memo.
type MemoAuthor struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// PublicMemo is the client-facing representation of a published memo snapshot.
type PublicMemo struct {
	ID        string     `json:"id"`
	Body      string     `json:"body"`
	CreatedAt time.Time  `json:"createdAt"`
	SharedAt  time.Time  `json:"sharedAt"`
	Author    MemoAuthor `json:"author"`
}

// LibraryEntry pairs a book with the requesting user's memos for it.
type LibraryEntry struct {
	Book  Book   `json:"book"`
	Memos []Memo `json:"memos"`
}

// BookFromDomain converts a domain book to its DTO form.
func BookFromDomain(b *domain.Book) Book {
	return Book{
		ID:            b.ID,
		Title:         b.Title,
		Description:   b.Description,
		Authors:       b.Authors,
		Thumbnail:     b.Thumbnail,
		InfoLink:      b.InfoLink,
		PublishedDate: b.PublishedDate,
		Source:        b.Source,
	}
}

// MemoFromDomain converts a domain memo to its DTO form.
func MemoFromDomain(m *domain.Memo) Memo {
	return Memo{
		ID:        m.ID,
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
	}
}

// MemosFromDomain converts a slice of domain memos, returning an empty
// (non-nil) slice for empty input so JSON renders [] rather than null.
func MemosFromDomain(memos []*domain.Memo) []Memo {
	out := make([]Memo, 0, len(memos))
	for _, m := range memos {
		out = append(out, MemoFromDomain(m))
	}
	return out
}

// PublicMemoFromDomain converts a domain public memo to its DTO form.
func PublicMemoFromDomain(p *domain.PublicMemo) PublicMemo {
	return PublicMemo{
		ID:        p.ID,
		Body:      p.Body,
		CreatedAt: p.CreatedAt,
		SharedAt:  p.SharedAt,
		Author: MemoAuthor{
			ID:   p.AuthorID,
			Name: p.AuthorName,
		},
	}
}

// PublicMemosFromDomain converts a slice of domain public memos.
func PublicMemosFromDomain(memos []*domain.PublicMemo) []PublicMemo {
	out := make([]PublicMemo, 0, len(memos))
	for _, p := range memos {
		out = append(out, PublicMemoFromDomain(p))
	}
	return out
}
