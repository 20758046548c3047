package service

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marginaliaapp/marginalia-server/internal/domain"
	"github.com/marginaliaapp/marginalia-server/internal/dto"
	domainerrors "github.com/marginaliaapp/marginalia-server/internal/errors"
	"github.com/marginaliaapp/marginalia-server/internal/store/sqlite"
	"github.com/marginaliaapp/marginalia-server/internal/validation"
)

func setupLibraryTest(t *testing.T) (*LibraryService, *sqlite.Store) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	st, err := sqlite.Open(dbPath, logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	svc := NewLibraryService(st, validation.New(), logger)
	return svc, st
}

func testBookPayload(id, title string) *dto.Book {
	return &dto.Book{
		ID:      id,
		Title:   title,
		Authors: []string{"Test Author"},
		Source:  "google-books",
	}
}

func createTestMemo(t *testing.T, svc *LibraryService, userID, bookID, body string, book *dto.Book) dto.Memo {
	t.Helper()
	memo, err := svc.CreateMemo(context.Background(), userID, bookID, dto.CreateMemoRequest{
		Body: body,
		Book: book,
	})
	require.NoError(t, err)
	return memo
}

func TestCreateMemo(t *testing.T) {
	svc, _ := setupLibraryTest(t)
	ctx := context.Background()

	memo, err := svc.CreateMemo(ctx, "user-1", "vol-1", dto.CreateMemoRequest{
		Body: "A note on chapter one",
		Book: testBookPayload("vol-1", "Dune"),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, memo.ID)
	assert.True(t, strings.HasPrefix(memo.ID, "memo-"))
	assert.Equal(t, "A note on chapter one", memo.Body)
	assert.False(t, memo.CreatedAt.IsZero())

	// The book was upserted alongside the memo.
	library, err := svc.GetUserLibrary(ctx, "user-1")
	require.NoError(t, err)
	require.Contains(t, library, "vol-1")
	assert.Equal(t, "Dune", library["vol-1"].Book.Title)
}

func TestCreateMemo_WithoutBookPayload(t *testing.T) {
	svc, _ := setupLibraryTest(t)
	ctx := context.Background()

	memo, err := svc.CreateMemo(ctx, "user-1", "vol-unseen", dto.CreateMemoRequest{
		Body: "No book payload",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, memo.ID)

	// The memo exists but its book is unknown, so the library omits it.
	memos, err := svc.GetMemosForBook(ctx, "user-1", "vol-unseen")
	require.NoError(t, err)
	require.Len(t, memos, 1)

	library, err := svc.GetUserLibrary(ctx, "user-1")
	require.NoError(t, err)
	assert.NotContains(t, library, "vol-unseen")
}

func TestCreateMemo_IgnoresBookWithoutID(t *testing.T) {
	svc, _ := setupLibraryTest(t)
	ctx := context.Background()

	_, err := svc.CreateMemo(ctx, "user-1", "vol-1", dto.CreateMemoRequest{
		Body: "Book payload missing id",
		Book: &dto.Book{Title: "No ID Here"},
	})
	require.NoError(t, err)

	library, err := svc.GetUserLibrary(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, library)
}

func TestCreateMemo_BodyTooLong(t *testing.T) {
	svc, _ := setupLibraryTest(t)
	ctx := context.Background()

	_, err := svc.CreateMemo(ctx, "user-1", "vol-1", dto.CreateMemoRequest{
		Body: strings.Repeat("a", domain.MaxMemoBodyLength+1),
	})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

	// Nothing persisted, not even a truncated memo.
	memos, err := svc.GetMemosForBook(ctx, "user-1", "vol-1")
	require.NoError(t, err)
	assert.Empty(t, memos)
}

func TestCreateMemo_BodyAtLimit(t *testing.T) {
	svc, _ := setupLibraryTest(t)
	ctx := context.Background()

	body := strings.Repeat("a", domain.MaxMemoBodyLength)
	memo, err := svc.CreateMemo(ctx, "user-1", "vol-1", dto.CreateMemoRequest{Body: body})
	require.NoError(t, err)
	assert.Len(t, memo.Body, domain.MaxMemoBodyLength)
}

func TestGetUserLibrary_GroupsByBook(t *testing.T) {
	svc, _ := setupLibraryTest(t)
	ctx := context.Background()

	createTestMemo(t, svc, "user-1", "vol-a", "first on a", testBookPayload("vol-a", "Book A"))
	createTestMemo(t, svc, "user-1", "vol-a", "second on a", nil)
	createTestMemo(t, svc, "user-1", "vol-b", "first on b", testBookPayload("vol-b", "Book B"))
	createTestMemo(t, svc, "user-2", "vol-a", "someone else", nil)

	library, err := svc.GetUserLibrary(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, library, 2)

	entryA := library["vol-a"]
	assert.Equal(t, "Book A", entryA.Book.Title)
	require.Len(t, entryA.Memos, 2)
	assert.Equal(t, "first on a", entryA.Memos[0].Body)
	assert.Equal(t, "second on a", entryA.Memos[1].Body)

	entryB := library["vol-b"]
	require.Len(t, entryB.Memos, 1)
	assert.Equal(t, "first on b", entryB.Memos[0].Body)
}

func TestGetUserLibrary_Empty(t *testing.T) {
	svc, _ := setupLibraryTest(t)

	library, err := svc.GetUserLibrary(context.Background(), "user-nobody")
	require.NoError(t, err)
	assert.NotNil(t, library)
	assert.Empty(t, library)
}

func TestGetMemosForBook_UnknownIDs(t *testing.T) {
	svc, _ := setupLibraryTest(t)

	memos, err := svc.GetMemosForBook(context.Background(), "user-unknown", "vol-unknown")
	require.NoError(t, err)
	assert.NotNil(t, memos)
	assert.Empty(t, memos)
}

func TestUpdateMemo(t *testing.T) {
	svc, _ := setupLibraryTest(t)
	ctx := context.Background()

	memo := createTestMemo(t, svc, "user-1", "vol-1", "original", nil)

	updated, err := svc.UpdateMemo(ctx, "user-1", memo.ID, dto.UpdateMemoRequest{Body: "rewritten"})
	require.NoError(t, err)
	assert.Equal(t, memo.ID, updated.ID)
	assert.Equal(t, "rewritten", updated.Body)
	assert.Equal(t, memo.CreatedAt.Unix(), updated.CreatedAt.Unix())
}

func TestUpdateMemo_NotFound(t *testing.T) {
	svc, _ := setupLibraryTest(t)

	_, err := svc.UpdateMemo(context.Background(), "user-1", "memo-missing", dto.UpdateMemoRequest{Body: "x"})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestUpdateMemo_WrongOwner(t *testing.T) {
	svc, _ := setupLibraryTest(t)
	ctx := context.Background()

	memo := createTestMemo(t, svc, "user-1", "vol-1", "mine", nil)

	_, err := svc.UpdateMemo(ctx, "user-2", memo.ID, dto.UpdateMemoRequest{Body: "stolen"})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrForbidden))

	// The memo is untouched.
	memos, err := svc.GetMemosForBook(ctx, "user-1", "vol-1")
	require.NoError(t, err)
	require.Len(t, memos, 1)
	assert.Equal(t, "mine", memos[0].Body)
}

func TestDeleteMemo(t *testing.T) {
	svc, _ := setupLibraryTest(t)
	ctx := context.Background()

	memo := createTestMemo(t, svc, "user-1", "vol-1", "delete me", nil)

	require.NoError(t, svc.DeleteMemo(ctx, "user-1", memo.ID))

	// Second delete reports not found.
	err := svc.DeleteMemo(ctx, "user-1", memo.ID)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestDeleteMemo_WrongOwner(t *testing.T) {
	svc, _ := setupLibraryTest(t)
	ctx := context.Background()

	memo := createTestMemo(t, svc, "user-1", "vol-1", "mine", nil)

	err := svc.DeleteMemo(ctx, "user-2", memo.ID)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrForbidden))
}

func TestDeleteMemo_LeavesSharedSnapshot(t *testing.T) {
	svc, _ := setupLibraryTest(t)
	ctx := context.Background()

	memo := createTestMemo(t, svc, "user-1", "vol-1", "shared then deleted", nil)

	shared, err := svc.ShareMemo(ctx, "user-1", "vol-1", dto.ShareMemoRequest{MemoID: memo.ID})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteMemo(ctx, "user-1", memo.ID))

	feed, err := svc.GetPublicMemosForBook(ctx, "vol-1")
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, shared.ID, feed[0].ID)
	assert.Equal(t, "shared then deleted", feed[0].Body)
}

func TestDeleteMemosForBook(t *testing.T) {
	svc, _ := setupLibraryTest(t)
	ctx := context.Background()

	createTestMemo(t, svc, "user-1", "vol-a", "one", nil)
	createTestMemo(t, svc, "user-1", "vol-a", "two", nil)
	createTestMemo(t, svc, "user-1", "vol-b", "keep", nil)

	require.NoError(t, svc.DeleteMemosForBook(ctx, "user-1", "vol-a"))

	memos, err := svc.GetMemosForBook(ctx, "user-1", "vol-a")
	require.NoError(t, err)
	assert.Empty(t, memos)

	memos, err = svc.GetMemosForBook(ctx, "user-1", "vol-b")
	require.NoError(t, err)
	assert.Len(t, memos, 1)

	// Idempotent: clearing again succeeds.
	require.NoError(t, svc.DeleteMemosForBook(ctx, "user-1", "vol-a"))
}

func TestShareMemo(t *testing.T) {
	svc, _ := setupLibraryTest(t)
	ctx := context.Background()

	memo := createTestMemo(t, svc, "user-1", "vol-1", "worth sharing", nil)

	shared, err := svc.ShareMemo(ctx, "user-1", "vol-1", dto.ShareMemoRequest{
		MemoID:     memo.ID,
		AuthorName: "Alex",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, shared.ID)
	assert.NotEqual(t, memo.ID, shared.ID)
	assert.Equal(t, "worth sharing", shared.Body)
	assert.Equal(t, memo.CreatedAt.Unix(), shared.CreatedAt.Unix())
	assert.False(t, shared.SharedAt.IsZero())
	assert.Equal(t, "user-1", shared.Author.ID)
	assert.Equal(t, "Alex", shared.Author.Name)
}

func TestShareMemo_AnonymousDefault(t *testing.T) {
	svc, _ := setupLibraryTest(t)
	ctx := context.Background()

	memo := createTestMemo(t, svc, "user-1", "vol-1", "no name given", nil)

	shared, err := svc.ShareMemo(ctx, "user-1", "vol-1", dto.ShareMemoRequest{MemoID: memo.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.AnonymousAuthorName, shared.Author.Name)
}

func TestShareMemo_SnapshotIsImmutable(t *testing.T) {
	svc, _ := setupLibraryTest(t)
	ctx := context.Background()

	memo := createTestMemo(t, svc, "user-1", "vol-1", "version one", nil)

	_, err := svc.ShareMemo(ctx, "user-1", "vol-1", dto.ShareMemoRequest{MemoID: memo.ID})
	require.NoError(t, err)

	// Editing the source memo after sharing leaves the snapshot alone.
	_, err = svc.UpdateMemo(ctx, "user-1", memo.ID, dto.UpdateMemoRequest{Body: "version two"})
	require.NoError(t, err)

	feed, err := svc.GetPublicMemosForBook(ctx, "vol-1")
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "version one", feed[0].Body)
}

func TestShareMemo_NotFound(t *testing.T) {
	svc, _ := setupLibraryTest(t)

	_, err := svc.ShareMemo(context.Background(), "user-1", "vol-1", dto.ShareMemoRequest{MemoID: "memo-missing"})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestShareMemo_WrongOwner(t *testing.T) {
	svc, _ := setupLibraryTest(t)
	ctx := context.Background()

	memo := createTestMemo(t, svc, "user-1", "vol-1", "private", nil)

	_, err := svc.ShareMemo(ctx, "user-2", "vol-1", dto.ShareMemoRequest{MemoID: memo.ID})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrForbidden))

	// Nothing was published.
	feed, err := svc.GetPublicMemosForBook(ctx, "vol-1")
	require.NoError(t, err)
	assert.Empty(t, feed)
}

func TestShareMemo_UsesCallerBookID(t *testing.T) {
	svc, _ := setupLibraryTest(t)
	ctx := context.Background()

	// The memo lives on vol-1 but the caller shares it under vol-2; the
	// snapshot lands on the book the caller addressed.
	memo := createTestMemo(t, svc, "user-1", "vol-1", "migrating note", nil)

	shared, err := svc.ShareMemo(ctx, "user-1", "vol-2", dto.ShareMemoRequest{MemoID: memo.ID})
	require.NoError(t, err)

	feed, err := svc.GetPublicMemosForBook(ctx, "vol-2")
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, shared.ID, feed[0].ID)

	feed, err = svc.GetPublicMemosForBook(ctx, "vol-1")
	require.NoError(t, err)
	assert.Empty(t, feed)
}

func TestGetPublicMemosForBook_Empty(t *testing.T) {
	svc, _ := setupLibraryTest(t)

	feed, err := svc.GetPublicMemosForBook(context.Background(), "vol-nothing")
	require.NoError(t, err)
	assert.NotNil(t, feed)
	assert.Empty(t, feed)
}

func TestClearPublicMemosForBook(t *testing.T) {
	svc, _ := setupLibraryTest(t)
	ctx := context.Background()

	memo := createTestMemo(t, svc, "user-1", "vol-1", "shared", nil)
	_, err := svc.ShareMemo(ctx, "user-1", "vol-1", dto.ShareMemoRequest{MemoID: memo.ID})
	require.NoError(t, err)

	require.NoError(t, svc.ClearPublicMemosForBook(ctx, "vol-1"))

	feed, err := svc.GetPublicMemosForBook(ctx, "vol-1")
	require.NoError(t, err)
	assert.Empty(t, feed)

	// Clearing an empty feed succeeds.
	require.NoError(t, svc.ClearPublicMemosForBook(ctx, "vol-1"))
}

func TestCreateMemo_BookOverwrite(t *testing.T) {
	svc, _ := setupLibraryTest(t)
	ctx := context.Background()

	createTestMemo(t, svc, "user-1", "vol-1", "first", &dto.Book{
		ID:      "vol-1",
		Title:   "Old Title",
		Authors: []string{"A", "B"},
	})
	createTestMemo(t, svc, "user-2", "vol-1", "second", &dto.Book{
		ID:      "vol-1",
		Title:   "New Title",
		Authors: []string{"C"},
	})

	// Last write wins for the shared book record.
	library, err := svc.GetUserLibrary(ctx, "user-1")
	require.NoError(t, err)
	require.Contains(t, library, "vol-1")
	assert.Equal(t, "New Title", library["vol-1"].Book.Title)
	assert.Equal(t, []string{"C"}, library["vol-1"].Book.Authors)
}
