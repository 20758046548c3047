package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/marginaliaapp/marginalia-server/internal/dto"
)

func (s *Server) registerLibraryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getUserLibrary",
		Method:      http.MethodGet,
		Path:        "/api/library/{userId}",
		Summary:     "Get user library",
		Description: "Returns the user's memos grouped by book, keyed by book ID",
		Tags:        []string{"Library"},
	}, s.handleGetUserLibrary)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBookMemos",
		Method:      http.MethodGet,
		Path:        "/api/library/{userId}/books/{bookId}/memos",
		Summary:     "List memos for a book",
		Description: "Returns the user's memos for one book in creation order",
		Tags:        []string{"Memos"},
	}, s.handleListBookMemos)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createMemo",
		Method:        http.MethodPost,
		Path:          "/api/library/{userId}/books/{bookId}/memos",
		Summary:       "Create memo",
		Description:   "Creates a memo on a book, optionally storing the book metadata alongside",
		Tags:          []string{"Memos"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateMemo)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateMemo",
		Method:      http.MethodPut,
		Path:        "/api/library/{userId}/memos/{memoId}",
		Summary:     "Update memo",
		Description: "Rewrites a memo's body (owner only)",
		Tags:        []string{"Memos"},
	}, s.handleUpdateMemo)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteMemo",
		Method:        http.MethodDelete,
		Path:          "/api/library/{userId}/memos/{memoId}",
		Summary:       "Delete memo",
		Description:   "Deletes a memo (owner only); shared snapshots stay published",
		Tags:          []string{"Memos"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteMemo)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteBookMemos",
		Method:        http.MethodDelete,
		Path:          "/api/library/{userId}/books/{bookId}/memos",
		Summary:       "Delete all memos for a book",
		Description:   "Removes every memo the user has on a book; deleting none is a success",
		Tags:          []string{"Memos"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteBookMemos)

	huma.Register(s.api, huma.Operation{
		OperationID:   "shareMemo",
		Method:        http.MethodPost,
		Path:          "/api/library/{userId}/books/{bookId}/memos/share",
		Summary:       "Share memo",
		Description:   "Publishes a snapshot of a memo to the book's public feed",
		Tags:          []string{"Public feed"},
		DefaultStatus: http.StatusCreated,
	}, s.handleShareMemo)

	huma.Register(s.api, huma.Operation{
		OperationID: "listPublicBookMemos",
		Method:      http.MethodGet,
		Path:        "/api/library/public/books/{bookId}/memos",
		Summary:     "List public memos for a book",
		Description: "Returns every published snapshot for a book, no authentication required",
		Tags:        []string{"Public feed"},
	}, s.handleListPublicBookMemos)
}

// === DTOs ===

// GetUserLibraryInput contains parameters for fetching a user's library.
type GetUserLibraryInput struct {
	UserID string `path:"userId" doc:"User ID"`
}

// LibraryOutput wraps the library response for Huma.
type LibraryOutput struct {
	Body map[string]dto.LibraryEntry
}

// ListBookMemosInput contains parameters for listing a book's memos.
type ListBookMemosInput struct {
	UserID string `path:"userId" doc:"User ID"`
	BookID string `path:"bookId" doc:"Book ID"`
}

// MemoListOutput wraps a list of memos for Huma.
type MemoListOutput struct {
	Body []dto.Memo
}

// CreateMemoInput wraps the create memo request for Huma.
type CreateMemoInput struct {
	UserID string `path:"userId" doc:"User ID"`
	BookID string `path:"bookId" doc:"Book ID"`
	Body   dto.CreateMemoRequest
}

// MemoOutput wraps a single memo for Huma.
type MemoOutput struct {
	Body dto.Memo
}

// UpdateMemoInput wraps the update memo request for Huma.
type UpdateMemoInput struct {
	UserID string `path:"userId" doc:"User ID"`
	MemoID string `path:"memoId" doc:"Memo ID"`
	Body   dto.UpdateMemoRequest
}

// DeleteMemoInput contains parameters for deleting a memo.
type DeleteMemoInput struct {
	UserID string `path:"userId" doc:"User ID"`
	MemoID string `path:"memoId" doc:"Memo ID"`
}

// DeleteBookMemosInput contains parameters for clearing a book's memos.
type DeleteBookMemosInput struct {
	UserID string `path:"userId" doc:"User ID"`
	BookID string `path:"bookId" doc:"Book ID"`
}

// ShareMemoInput wraps the share memo request for Huma.
type ShareMemoInput struct {
	UserID string `path:"userId" doc:"User ID"`
	BookID string `path:"bookId" doc:"Book ID"`
	Body   dto.ShareMemoRequest
}

// PublicMemoOutput wraps a single public memo for Huma.
type PublicMemoOutput struct {
	Body dto.PublicMemo
}

// ListPublicBookMemosInput contains parameters for the public feed.
type ListPublicBookMemosInput struct {
	BookID string `path:"bookId" doc:"Book ID"`
}

// PublicMemoListOutput wraps a list of public memos for Huma.
type PublicMemoListOutput struct {
	Body []dto.PublicMemo
}

// === Handlers ===

func (s *Server) handleGetUserLibrary(ctx context.Context, input *GetUserLibraryInput) (*LibraryOutput, error) {
	library, err := s.services.Library.GetUserLibrary(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	return &LibraryOutput{Body: library}, nil
}

func (s *Server) handleListBookMemos(ctx context.Context, input *ListBookMemosInput) (*MemoListOutput, error) {
	memos, err := s.services.Library.GetMemosForBook(ctx, input.UserID, input.BookID)
	if err != nil {
		return nil, err
	}
	return &MemoListOutput{Body: memos}, nil
}

func (s *Server) handleCreateMemo(ctx context.Context, input *CreateMemoInput) (*MemoOutput, error) {
	memo, err := s.services.Library.CreateMemo(ctx, input.UserID, input.BookID, input.Body)
	if err != nil {
		return nil, err
	}
	return &MemoOutput{Body: memo}, nil
}

func (s *Server) handleUpdateMemo(ctx context.Context, input *UpdateMemoInput) (*MemoOutput, error) {
	memo, err := s.services.Library.UpdateMemo(ctx, input.UserID, input.MemoID, input.Body)
	if err != nil {
		return nil, err
	}
	return &MemoOutput{Body: memo}, nil
}

func (s *Server) handleDeleteMemo(ctx context.Context, input *DeleteMemoInput) (*struct{}, error) {
	if err := s.services.Library.DeleteMemo(ctx, input.UserID, input.MemoID); err != nil {
		return nil, err
	}
	return &struct{}{}, nil
}

func (s *Server) handleDeleteBookMemos(ctx context.Context, input *DeleteBookMemosInput) (*struct{}, error) {
	if err := s.services.Library.DeleteMemosForBook(ctx, input.UserID, input.BookID); err != nil {
		return nil, err
	}
	return &struct{}{}, nil
}

func (s *Server) handleShareMemo(ctx context.Context, input *ShareMemoInput) (*PublicMemoOutput, error) {
	public, err := s.services.Library.ShareMemo(ctx, input.UserID, input.BookID, input.Body)
	if err != nil {
		return nil, err
	}
	return &PublicMemoOutput{Body: public}, nil
}

func (s *Server) handleListPublicBookMemos(ctx context.Context, input *ListPublicBookMemosInput) (*PublicMemoListOutput, error) {
	memos, err := s.services.Library.GetPublicMemosForBook(ctx, input.BookID)
	if err != nil {
		return nil, err
	}
	return &PublicMemoListOutput{Body: memos}, nil
}
