package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/marginaliaapp/marginalia-server/internal/domain"
	"github.com/marginaliaapp/marginalia-server/internal/store"
)

// memoColumns is the ordered list of columns selected in memo queries.
// Must match the scan order in scanMemo.
const memoColumns = `id, body, created_at, user_id, book_id`

// scanMemo scans a sql.Row (or sql.Rows via its Scan method) into a domain.Memo.
func scanMemo(scanner interface{ Scan(dest ...any) error }) (*domain.Memo, error) {
	var m domain.Memo

	var createdAt string

	err := scanner.Scan(
		&m.ID,
		&m.Body,
		&createdAt,
		&m.UserID,
		&m.BookID,
	)
	if err != nil {
		return nil, err
	}

	m.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &m, nil
}

// CreateMemo inserts a new memo. When book is non-nil its upsert shares the
// memo's transaction, so a failed insert leaves no book behind and vice versa.
// Returns store.ErrAlreadyExists on duplicate memo ID.
func (s *Store) CreateMemo(ctx context.Context, memo *domain.Memo, book *domain.Book) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if book != nil {
		if err := upsertBookTx(ctx, tx, book); err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO memos (id, body, created_at, user_id, book_id)
		VALUES (?, ?, ?, ?, ?)`,
		memo.ID,
		memo.Body,
		formatTime(memo.CreatedAt),
		memo.UserID,
		memo.BookID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}

	return tx.Commit()
}

// GetMemo retrieves a memo by ID.
// Returns store.ErrNotFound if the memo does not exist.
func (s *Store) GetMemo(ctx context.Context, id string) (*domain.Memo, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+memoColumns+` FROM memos WHERE id = ?`, id)

	m, err := scanMemo(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// UpdateMemo overwrites a memo's body. The other columns are immutable and
// deliberately absent from the UPDATE.
// Returns store.ErrNotFound if the memo does not exist.
func (s *Store) UpdateMemo(ctx context.Context, memo *domain.Memo) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE memos SET body = ? WHERE id = ?`,
		memo.Body, memo.ID,
	)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteMemo performs a hard delete on a memo. Public snapshots derived from
// it are untouched.
// Returns store.ErrNotFound if the memo does not exist.
func (s *Store) DeleteMemo(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM memos WHERE id = ?`, id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListMemosByUser returns all memos belonging to a user in insertion order.
func (s *Store) ListMemosByUser(ctx context.Context, userID string) ([]*domain.Memo, error) {
	return s.listMemos(ctx,
		`SELECT `+memoColumns+` FROM memos WHERE user_id = ? ORDER BY rowid`, userID)
}

// ListMemosByUserAndBook returns a user's memos for one book in insertion order.
func (s *Store) ListMemosByUserAndBook(ctx context.Context, userID, bookID string) ([]*domain.Memo, error) {
	return s.listMemos(ctx,
		`SELECT `+memoColumns+` FROM memos WHERE user_id = ? AND book_id = ? ORDER BY rowid`,
		userID, bookID)
}

func (s *Store) listMemos(ctx context.Context, query string, args ...any) ([]*domain.Memo, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memos []*domain.Memo
	for rows.Next() {
		m, err := scanMemo(rows)
		if err != nil {
			return nil, err
		}
		memos = append(memos, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return memos, nil
}

// DeleteMemosByUserAndBook removes every memo a user has for a book.
// Deleting zero rows is not an error.
func (s *Store) DeleteMemosByUserAndBook(ctx context.Context, userID, bookID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM memos WHERE user_id = ? AND book_id = ?`,
		userID, bookID,
	)
	return err
}
