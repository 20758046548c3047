package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/marginaliaapp/marginalia-server/internal/domain"
	"github.com/marginaliaapp/marginalia-server/internal/store"
)

// publicMemoColumns is the ordered list of columns selected in public memo
// queries. Must match the scan order in scanPublicMemo.
const publicMemoColumns = `id, body, created_at, shared_at, book_id, author_id, author_name`

// scanPublicMemo scans a sql.Row (or sql.Rows via its Scan method) into a
// domain.PublicMemo.
func scanPublicMemo(scanner interface{ Scan(dest ...any) error }) (*domain.PublicMemo, error) {
	var p domain.PublicMemo

	var (
		createdAt string
		sharedAt  string
		authorID  sql.NullString
	)

	err := scanner.Scan(
		&p.ID,
		&p.Body,
		&createdAt,
		&sharedAt,
		&p.BookID,
		&authorID,
		&p.AuthorName,
	)
	if err != nil {
		return nil, err
	}

	p.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	p.SharedAt, err = parseTime(sharedAt)
	if err != nil {
		return nil, err
	}

	p.AuthorID = authorID.String

	return &p, nil
}

// CreatePublicMemo inserts a published memo snapshot.
// Returns store.ErrAlreadyExists on duplicate ID.
func (s *Store) CreatePublicMemo(ctx context.Context, memo *domain.PublicMemo) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO public_memos (
			id, body, created_at, shared_at, book_id, author_id, author_name
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		memo.ID,
		memo.Body,
		formatTime(memo.CreatedAt),
		formatTime(memo.SharedAt),
		memo.BookID,
		nullString(memo.AuthorID),
		memo.AuthorName,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// ListPublicMemosByBook returns every published snapshot for a book in
// insertion order.
func (s *Store) ListPublicMemosByBook(ctx context.Context, bookID string) ([]*domain.PublicMemo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+publicMemoColumns+` FROM public_memos WHERE book_id = ? ORDER BY rowid`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memos []*domain.PublicMemo
	for rows.Next() {
		p, err := scanPublicMemo(rows)
		if err != nil {
			return nil, err
		}
		memos = append(memos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return memos, nil
}

// DeletePublicMemosByBook clears a book's public feed.
// Deleting zero rows is not an error.
func (s *Store) DeletePublicMemosByBook(ctx context.Context, bookID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM public_memos WHERE book_id = ?`, bookID)
	return err
}
