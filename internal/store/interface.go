// Package store defines the persistence interface for the Marginalia server.
package store

import (
	"context"

	"github.com/marginaliaapp/marginalia-server/internal/domain"
)

// Store defines the interface for all persistence operations.
type Store interface {
	// Lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Books
	UpsertBook(ctx context.Context, book *domain.Book) error
	GetBook(ctx context.Context, id string) (*domain.Book, error)

	// Memos
	//
	// CreateMemo persists the memo and, when book is non-nil, upserts the
	// book in the same transaction. Either both writes land or neither does.
	CreateMemo(ctx context.Context, memo *domain.Memo, book *domain.Book) error
	GetMemo(ctx context.Context, id string) (*domain.Memo, error)
	UpdateMemo(ctx context.Context, memo *domain.Memo) error
	DeleteMemo(ctx context.Context, id string) error
	ListMemosByUser(ctx context.Context, userID string) ([]*domain.Memo, error)
	ListMemosByUserAndBook(ctx context.Context, userID, bookID string) ([]*domain.Memo, error)
	DeleteMemosByUserAndBook(ctx context.Context, userID, bookID string) error

	// Public memos
	CreatePublicMemo(ctx context.Context, memo *domain.PublicMemo) error
	ListPublicMemosByBook(ctx context.Context, bookID string) ([]*domain.PublicMemo, error)
	DeletePublicMemosByBook(ctx context.Context, bookID string) error
}
