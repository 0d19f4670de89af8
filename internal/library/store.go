// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package library persists user bookshelves in SQLite and keeps a
// full-text index over titles, authors, descriptions and categories.
package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/bookshelf-engine/pkg/types"
)

// ErrBookNotFound is returned when a shelf entry id does not exist.
var ErrBookNotFound = errors.New("book not found")

// bookColumns is the scan order shared by every book query.
const bookColumns = `id, user_id, title, authors, description, cover_url, rating, categories, created_at, updated_at`

// Store manages the bookshelf SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the bookshelf database at cfg.DBPath and
// creates the schema if it does not exist.
func NewStore(cfg types.LibraryConfig) (*Store, error) {
	path := cfg.DBPath
	if path == "" {
		path = "bookshelf.db"
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS books (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			authors TEXT,
			description TEXT,
			cover_url TEXT,
			rating REAL,
			categories TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_books_user_id ON books(user_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='books_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE books_fts USING fts5(title, authors, description, categories, content=books, content_rowid=rowid)`,
			`CREATE TRIGGER books_ai AFTER INSERT ON books BEGIN
				INSERT INTO books_fts(rowid, title, authors, description, categories)
				VALUES (new.rowid, new.title, new.authors, new.description, new.categories);
			END`,
			`CREATE TRIGGER books_ad AFTER DELETE ON books BEGIN
				INSERT INTO books_fts(books_fts, rowid, title, authors, description, categories)
				VALUES('delete', old.rowid, old.title, old.authors, old.description, old.categories);
			END`,
			`CREATE TRIGGER books_au AFTER UPDATE ON books BEGIN
				INSERT INTO books_fts(books_fts, rowid, title, authors, description, categories)
				VALUES('delete', old.rowid, old.title, old.authors, old.description, old.categories);
				INSERT INTO books_fts(rowid, title, authors, description, categories)
				VALUES (new.rowid, new.title, new.authors, new.description, new.categories);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// Add stores a new shelf entry. A blank id gets a fresh UUID; timestamps
// default to now in UTC.
func (s *Store) Add(ctx context.Context, book types.Book) (types.Book, error) {
	if book.UserID == "" {
		return types.Book{}, fmt.Errorf("book needs a user id")
	}
	if strings.TrimSpace(book.Title) == "" {
		return types.Book{}, fmt.Errorf("book needs a title")
	}

	if book.ID == "" {
		book.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	book.UpdatedAt = now

	authorsJSON, _ := json.Marshal(book.Authors)
	categoriesJSON, _ := json.Marshal(book.Categories)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO books (`+bookColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		book.ID, book.UserID, book.Title, string(authorsJSON), book.Description,
		book.CoverURL, book.Rating, string(categoriesJSON),
		formatTime(book.CreatedAt), formatTime(book.UpdatedAt),
	)
	if err != nil {
		return types.Book{}, fmt.Errorf("inserting book: %w", err)
	}
	return book, nil
}

// Get returns the shelf entry with the given id.
func (s *Store) Get(ctx context.Context, id string) (types.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = ?`, id)

	book, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Book{}, fmt.Errorf("%w: %s", ErrBookNotFound, id)
	}
	if err != nil {
		return types.Book{}, fmt.Errorf("reading book: %w", err)
	}
	return book, nil
}

// Update rewrites a shelf entry's mutable fields and bumps its update
// time. Ownership (user_id) never changes. The entry must exist.
func (s *Store) Update(ctx context.Context, book types.Book) (types.Book, error) {
	if book.ID == "" {
		return types.Book{}, fmt.Errorf("book needs an id")
	}
	if strings.TrimSpace(book.Title) == "" {
		return types.Book{}, fmt.Errorf("book needs a title")
	}

	authorsJSON, _ := json.Marshal(book.Authors)
	categoriesJSON, _ := json.Marshal(book.Categories)

	res, err := s.db.ExecContext(ctx,
		`UPDATE books SET title=?, authors=?, description=?, cover_url=?, rating=?, categories=?, updated_at=?
		 WHERE id = ?`,
		book.Title, string(authorsJSON), book.Description, book.CoverURL,
		book.Rating, string(categoriesJSON), formatTime(time.Now().UTC()), book.ID,
	)
	if err != nil {
		return types.Book{}, fmt.Errorf("updating book: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.Book{}, fmt.Errorf("%w: %s", ErrBookNotFound, book.ID)
	}
	return s.Get(ctx, book.ID)
}

// Delete removes a shelf entry. The entry must exist.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting book: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrBookNotFound, id)
	}
	return nil
}

// ListByUser returns a user's shelf, newest first. An unknown user yields
// an empty shelf, never an error.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]types.Book, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE user_id = ?
		 ORDER BY created_at DESC, rowid DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing books: %w", err)
	}
	defer rows.Close()

	return collectBooks(rows)
}

// SearchShelf runs an FTS5 query over a user's shelf, best match first.
func (s *Store) SearchShelf(ctx context.Context, userID, query string) ([]types.Book, error) {
	if strings.TrimSpace(query) == "" {
		return s.ListByUser(ctx, userID)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT b.id, b.user_id, b.title, b.authors, b.description, b.cover_url,
			b.rating, b.categories, b.created_at, b.updated_at
		 FROM books_fts
		 JOIN books b ON b.rowid = books_fts.rowid
		 WHERE books_fts MATCH ? AND b.user_id = ?
		 ORDER BY books_fts.rank`, query, userID)
	if err != nil {
		return nil, fmt.Errorf("searching shelf: %w", err)
	}
	defer rows.Close()

	return collectBooks(rows)
}

// TextsForUser returns the profile text of each shelf entry, newest
// first. Entries with no usable text are dropped.
func (s *Store) TextsForUser(ctx context.Context, userID string) ([]string, error) {
	books, err := s.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	texts := make([]string, 0, len(books))
	for _, b := range books {
		if t := b.Text(); t != "" {
			texts = append(texts, t)
		}
	}
	return texts, nil
}

// Count returns the total number of shelf entries across all users.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM books`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting books: %w", err)
	}
	return n, nil
}

func collectBooks(rows *sql.Rows) ([]types.Book, error) {
	books := make([]types.Book, 0, 8)
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(sc rowScanner) (types.Book, error) {
	var (
		b           types.Book
		authorsJSON sql.NullString
		catsJSON    sql.NullString
		createdAt   string
		updatedAt   string
	)
	if err := sc.Scan(&b.ID, &b.UserID, &b.Title, &authorsJSON, &b.Description,
		&b.CoverURL, &b.Rating, &catsJSON, &createdAt, &updatedAt); err != nil {
		return types.Book{}, err
	}

	if authorsJSON.Valid {
		json.Unmarshal([]byte(authorsJSON.String), &b.Authors)
	}
	if catsJSON.Valid {
		json.Unmarshal([]byte(catsJSON.String), &b.Categories)
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		b.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		b.UpdatedAt = t
	}
	return b, nil
}

// formatTime stores timestamps at second precision so the TEXT column
// sorts chronologically; rowid breaks same-second ties.
func formatTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}
