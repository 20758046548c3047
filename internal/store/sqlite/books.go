package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/marginaliaapp/marginalia-server/internal/domain"
	"github.com/marginaliaapp/marginalia-server/internal/store"
)

// bookColumns is the ordered list of columns selected in book queries.
// Must match the scan order in scanBook.
const bookColumns = `id, title, description, thumbnail, info_link, published_date, source`

// scanBook scans a sql.Row (or sql.Rows via its Scan method) into a domain.Book.
// Authors are loaded separately from book_authors.
func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var b domain.Book

	var (
		description   sql.NullString
		thumbnail     sql.NullString
		infoLink      sql.NullString
		publishedDate sql.NullString
		source        sql.NullString
	)

	err := scanner.Scan(
		&b.ID,
		&b.Title,
		&description,
		&thumbnail,
		&infoLink,
		&publishedDate,
		&source,
	)
	if err != nil {
		return nil, err
	}

	b.Description = description.String
	b.Thumbnail = thumbnail.String
	b.InfoLink = infoLink.String
	b.PublishedDate = publishedDate.String
	b.Source = source.String

	return &b, nil
}

// loadBookAuthors loads the ordered author names for a book from book_authors.
func (s *Store) loadBookAuthors(ctx context.Context, bookID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM book_authors WHERE book_id = ? ORDER BY position`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var authors []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		authors = append(authors, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return authors, nil
}

// upsertBookTx writes a book and its author rows inside an existing transaction.
// An existing row with the same id is fully overwritten, authors included.
func upsertBookTx(ctx context.Context, tx *sql.Tx, book *domain.Book) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO books (
			id, title, description, thumbnail, info_link, published_date, source
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			thumbnail = excluded.thumbnail,
			info_link = excluded.info_link,
			published_date = excluded.published_date,
			source = excluded.source`,
		book.ID,
		book.Title,
		nullString(book.Description),
		nullString(book.Thumbnail),
		nullString(book.InfoLink),
		nullString(book.PublishedDate),
		nullString(book.Source),
	)
	if err != nil {
		return err
	}

	// Replace book_authors: delete existing, then re-insert in order.
	if _, err := tx.ExecContext(ctx, `DELETE FROM book_authors WHERE book_id = ?`, book.ID); err != nil {
		return err
	}

	for i, name := range book.Authors {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO book_authors (book_id, name, position)
			VALUES (?, ?, ?)`,
			book.ID, name, i,
		)
		if err != nil {
			return fmt.Errorf("insert book_author %q: %w", name, err)
		}
	}

	return nil
}

// UpsertBook inserts or fully overwrites a book and its author list.
// Returns store.ErrInvalidInput when the book has no ID.
func (s *Store) UpsertBook(ctx context.Context, book *domain.Book) error {
	if book.ID == "" {
		return store.ErrInvalidInput.WithMessage("book id is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := upsertBookTx(ctx, tx, book); err != nil {
		return err
	}

	return tx.Commit()
}

// GetBook retrieves a book by its catalog ID, including ordered Authors.
// Returns store.ErrNotFound if the book does not exist.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = ?`, id)

	b, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	b.Authors, err = s.loadBookAuthors(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load book authors: %w", err)
	}

	return b, nil
}
