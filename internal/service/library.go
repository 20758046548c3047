package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/marginaliaapp/marginalia-server/internal/domain"
	"github.com/marginaliaapp/marginalia-server/internal/dto"
	domainerrors "github.com/marginaliaapp/marginalia-server/internal/errors"
	"github.com/marginaliaapp/marginalia-server/internal/id"
	"github.com/marginaliaapp/marginalia-server/internal/store"
	"github.com/marginaliaapp/marginalia-server/internal/validation"
)

// LibraryService orchestrates memo and book operations with ownership
// enforcement. Ownership is checked here, not in the store: a memo that
// exists but belongs to someone else is Forbidden, never NotFound.
type LibraryService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewLibraryService creates a new library service.
func NewLibraryService(st store.Store, validator *validation.Validator, logger *slog.Logger) *LibraryService {
	return &LibraryService{
		store:     st,
		validator: validator,
		logger:    logger,
	}
}

// GetUserLibrary returns the user's memos grouped by book, keyed by book ID.
// Groups whose book is missing from the catalog are silently dropped; a user
// with no memos gets an empty map.
func (s *LibraryService) GetUserLibrary(ctx context.Context, userID string) (map[string]dto.LibraryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	memos, err := s.store.ListMemosByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list memos for user: %w", err)
	}

	// Group by book, preserving per-book memo order from the store.
	grouped := make(map[string][]*domain.Memo)
	var bookIDs []string
	for _, m := range memos {
		if _, seen := grouped[m.BookID]; !seen {
			bookIDs = append(bookIDs, m.BookID)
		}
		grouped[m.BookID] = append(grouped[m.BookID], m)
	}

	library := make(map[string]dto.LibraryEntry, len(bookIDs))
	for _, bookID := range bookIDs {
		book, err := s.store.GetBook(ctx, bookID)
		if domainerrors.Is(err, store.ErrNotFound) {
			// Memos can reference books the catalog never stored.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get book %s: %w", bookID, err)
		}
		library[bookID] = dto.LibraryEntry{
			Book:  dto.BookFromDomain(book),
			Memos: dto.MemosFromDomain(grouped[bookID]),
		}
	}

	return library, nil
}

// GetMemosForBook returns the user's memos for one book. Unknown users or
// books yield an empty list, never an error.
func (s *LibraryService) GetMemosForBook(ctx context.Context, userID, bookID string) ([]dto.Memo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	memos, err := s.store.ListMemosByUserAndBook(ctx, userID, bookID)
	if err != nil {
		return nil, fmt.Errorf("list memos for book: %w", err)
	}
	return dto.MemosFromDomain(memos), nil
}

// CreateMemo creates a memo for the user on the given book. When the request
// carries a book payload with a non-empty ID, the book is upserted in the
// same storage transaction as the memo insert.
func (s *LibraryService) CreateMemo(ctx context.Context, userID, bookID string, req dto.CreateMemoRequest) (dto.Memo, error) {
	if err := ctx.Err(); err != nil {
		return dto.Memo{}, err
	}

	if err := s.validator.Validate(req); err != nil {
		return dto.Memo{}, err
	}

	memoID, err := id.Generate("memo")
	if err != nil {
		return dto.Memo{}, fmt.Errorf("generate memo ID: %w", err)
	}

	memo := &domain.Memo{
		ID:        memoID,
		Body:      req.Body,
		CreatedAt: time.Now(),
		UserID:    userID,
		BookID:    bookID,
	}

	var book *domain.Book
	if req.Book != nil && req.Book.ID != "" {
		book = &domain.Book{
			ID:            req.Book.ID,
			Title:         req.Book.Title,
			Description:   req.Book.Description,
			Authors:       req.Book.Authors,
			Thumbnail:     req.Book.Thumbnail,
			InfoLink:      req.Book.InfoLink,
			PublishedDate: req.Book.PublishedDate,
			Source:        req.Book.Source,
		}
	}

	if err := s.store.CreateMemo(ctx, memo, book); err != nil {
		return dto.Memo{}, fmt.Errorf("create memo: %w", err)
	}

	s.logger.Info("memo created",
		"memo_id", memoID,
		"user_id", userID,
		"book_id", bookID,
		"with_book", book != nil,
	)

	return dto.MemoFromDomain(memo), nil
}

// UpdateMemo rewrites a memo's body. CreatedAt, UserID, and BookID are
// immutable.
func (s *LibraryService) UpdateMemo(ctx context.Context, userID, memoID string, req dto.UpdateMemoRequest) (dto.Memo, error) {
	if err := ctx.Err(); err != nil {
		return dto.Memo{}, err
	}

	if err := s.validator.Validate(req); err != nil {
		return dto.Memo{}, err
	}

	memo, err := s.getOwnedMemo(ctx, userID, memoID)
	if err != nil {
		return dto.Memo{}, err
	}

	memo.Body = req.Body
	if err := s.store.UpdateMemo(ctx, memo); err != nil {
		return dto.Memo{}, fmt.Errorf("update memo: %w", err)
	}

	s.logger.Info("memo updated",
		"memo_id", memoID,
		"user_id", userID,
	)

	return dto.MemoFromDomain(memo), nil
}

// DeleteMemo removes a memo. Public snapshots previously shared from it stay
// published.
func (s *LibraryService) DeleteMemo(ctx context.Context, userID, memoID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := s.getOwnedMemo(ctx, userID, memoID); err != nil {
		return err
	}

	if err := s.store.DeleteMemo(ctx, memoID); err != nil {
		return fmt.Errorf("delete memo: %w", err)
	}

	s.logger.Info("memo deleted",
		"memo_id", memoID,
		"user_id", userID,
	)

	return nil
}

// DeleteMemosForBook removes every memo the user has for a book. Zero
// matches is a success, so the operation is idempotent.
func (s *LibraryService) DeleteMemosForBook(ctx context.Context, userID, bookID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.store.DeleteMemosByUserAndBook(ctx, userID, bookID); err != nil {
		return fmt.Errorf("delete memos for book: %w", err)
	}

	s.logger.Info("memos cleared for book",
		"user_id", userID,
		"book_id", bookID,
	)

	return nil
}

// ShareMemo publishes a snapshot of one of the user's memos to a book's
// public feed. Body and CreatedAt are copied as they stand at share time;
// the snapshot gets a fresh ID and lives independently of the source memo.
// The book ID on the snapshot is the one the caller addressed, taken as-is.
func (s *LibraryService) ShareMemo(ctx context.Context, userID, bookID string, req dto.ShareMemoRequest) (dto.PublicMemo, error) {
	if err := ctx.Err(); err != nil {
		return dto.PublicMemo{}, err
	}

	if err := s.validator.Validate(req); err != nil {
		return dto.PublicMemo{}, err
	}

	memo, err := s.getOwnedMemo(ctx, userID, req.MemoID)
	if err != nil {
		return dto.PublicMemo{}, err
	}

	publicID, err := id.Generate("pub")
	if err != nil {
		return dto.PublicMemo{}, fmt.Errorf("generate public memo ID: %w", err)
	}

	authorName := req.AuthorName
	if authorName == "" {
		authorName = domain.AnonymousAuthorName
	}

	public := &domain.PublicMemo{
		ID:         publicID,
		Body:       memo.Body,
		CreatedAt:  memo.CreatedAt,
		SharedAt:   time.Now(),
		BookID:     bookID,
		AuthorID:   userID,
		AuthorName: authorName,
	}

	if err := s.store.CreatePublicMemo(ctx, public); err != nil {
		return dto.PublicMemo{}, fmt.Errorf("create public memo: %w", err)
	}

	s.logger.Info("memo shared",
		"memo_id", req.MemoID,
		"public_memo_id", publicID,
		"user_id", userID,
		"book_id", bookID,
	)

	return dto.PublicMemoFromDomain(public), nil
}

// GetPublicMemosForBook returns every published snapshot for a book. No
// ownership applies; the feed is public.
func (s *LibraryService) GetPublicMemosForBook(ctx context.Context, bookID string) ([]dto.PublicMemo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	memos, err := s.store.ListPublicMemosByBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("list public memos: %w", err)
	}
	return dto.PublicMemosFromDomain(memos), nil
}

// ClearPublicMemosForBook removes every published snapshot for a book.
// Clearing an empty feed succeeds.
func (s *LibraryService) ClearPublicMemosForBook(ctx context.Context, bookID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.store.DeletePublicMemosByBook(ctx, bookID); err != nil {
		return fmt.Errorf("clear public memos: %w", err)
	}

	s.logger.Info("public memos cleared for book",
		"book_id", bookID,
	)

	return nil
}

// getOwnedMemo fetches a memo and verifies ownership. The order matters:
// absence is NotFound, presence under a different owner is Forbidden.
func (s *LibraryService) getOwnedMemo(ctx context.Context, userID, memoID string) (*domain.Memo, error) {
	memo, err := s.store.GetMemo(ctx, memoID)
	if domainerrors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFound("memo not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get memo: %w", err)
	}

	if !memo.OwnedBy(userID) {
		return nil, domainerrors.Forbidden("you do not own this memo")
	}

	return memo, nil
}
