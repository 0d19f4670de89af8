package library

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/bookshelf-engine/pkg/types"
)

// --- test helpers ---

func testStore(t *testing.T) *Store {
	t.Helper()
	cfg := types.LibraryConfig{DBPath: filepath.Join(t.TempDir(), "bookshelf.db")}
	store, err := NewStore(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleBook(userID, title string) types.Book {
	return types.Book{
		UserID:      userID,
		Title:       title,
		Authors:     []string{"岸本斉史"},
		Description: "忍者を目指す少年の成長を描く物語",
		CoverURL:    "https://books.example.com/cover.jpg",
		Rating:      4.5,
		Categories:  []string{"Comics & Graphic Novels"},
	}
}

func addBook(t *testing.T, store *Store, book types.Book) types.Book {
	t.Helper()
	added, err := store.Add(context.Background(), book)
	if err != nil {
		t.Fatal(err)
	}
	return added
}

// --- schema tests ---

func TestNewStoreCreatesSchema(t *testing.T) {
	store := testStore(t)

	tables := []string{"books", "books_fts"}
	for _, table := range tables {
		var count int
		err := store.db.QueryRow(
			`SELECT count(*) FROM sqlite_master WHERE type IN ('table','view') AND name = ?`, table,
		).Scan(&count)
		if err != nil {
			t.Fatalf("checking table %s: %v", table, err)
		}
		if count == 0 {
			t.Errorf("table %s does not exist", table)
		}
	}
}

func TestNewStoreCreatesParentDir(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "data", "nested", "bookshelf.db")

	store, err := NewStore(types.LibraryConfig{DBPath: dbPath})
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file not created at %s", dbPath)
	}
}

func TestNewStoreReopensExisting(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "bookshelf.db")
	cfg := types.LibraryConfig{DBPath: dbPath}

	first, err := NewStore(cfg)
	if err != nil {
		t.Fatal(err)
	}
	added := addBook(t, first, sampleBook("alice", "NARUTO 1"))
	first.Close()

	second, err := NewStore(cfg)
	if err != nil {
		t.Fatalf("reopening store: %v", err)
	}
	defer second.Close()

	got, err := second.Get(context.Background(), added.ID)
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if got.Title != "NARUTO 1" {
		t.Errorf("Title = %q, want %q", got.Title, "NARUTO 1")
	}
}

// --- add tests ---

func TestAddAssignsIDAndTimestamps(t *testing.T) {
	store := testStore(t)

	added := addBook(t, store, sampleBook("alice", "NARUTO 1"))
	if added.ID == "" {
		t.Error("Add did not assign an id")
	}
	if added.CreatedAt.IsZero() {
		t.Error("Add did not set CreatedAt")
	}
	if added.UpdatedAt.IsZero() {
		t.Error("Add did not set UpdatedAt")
	}
}

func TestAddKeepsCallerID(t *testing.T) {
	store := testStore(t)

	book := sampleBook("alice", "NARUTO 1")
	book.ID = "book-fixed-id"
	added := addBook(t, store, book)
	if added.ID != "book-fixed-id" {
		t.Errorf("ID = %q, want %q", added.ID, "book-fixed-id")
	}
}

func TestAddValidation(t *testing.T) {
	store := testStore(t)

	tests := []struct {
		name string
		book types.Book
	}{
		{"missing user", types.Book{Title: "NARUTO 1"}},
		{"missing title", types.Book{UserID: "alice"}},
		{"blank title", types.Book{UserID: "alice", Title: "   "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := store.Add(context.Background(), tt.book); err == nil {
				t.Error("Add accepted an invalid book")
			}
		})
	}
}

func TestAddRoundTripsAllFields(t *testing.T) {
	store := testStore(t)

	added := addBook(t, store, sampleBook("alice", "NARUTO 1"))
	got, err := store.Get(context.Background(), added.ID)
	if err != nil {
		t.Fatal(err)
	}

	if got.UserID != "alice" {
		t.Errorf("UserID = %q, want %q", got.UserID, "alice")
	}
	if got.Title != "NARUTO 1" {
		t.Errorf("Title = %q, want %q", got.Title, "NARUTO 1")
	}
	if len(got.Authors) != 1 || got.Authors[0] != "岸本斉史" {
		t.Errorf("Authors = %v, want [岸本斉史]", got.Authors)
	}
	if got.Description == "" {
		t.Error("Description was not stored")
	}
	if got.CoverURL != "https://books.example.com/cover.jpg" {
		t.Errorf("CoverURL = %q", got.CoverURL)
	}
	if got.Rating != 4.5 {
		t.Errorf("Rating = %f, want 4.5", got.Rating)
	}
	if len(got.Categories) != 1 || got.Categories[0] != "Comics & Graphic Novels" {
		t.Errorf("Categories = %v", got.Categories)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("timestamps did not round-trip")
	}
}

// --- get / update / delete tests ---

func TestGetNotFound(t *testing.T) {
	store := testStore(t)

	_, err := store.Get(context.Background(), "no-such-book")
	if !errors.Is(err, ErrBookNotFound) {
		t.Errorf("err = %v, want ErrBookNotFound", err)
	}
}

func TestUpdate(t *testing.T) {
	store := testStore(t)

	added := addBook(t, store, sampleBook("alice", "NARUTO 1"))

	added.Title = "NARUTO 2"
	added.Rating = 5.0
	updated, err := store.Update(context.Background(), added)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if updated.Title != "NARUTO 2" {
		t.Errorf("Title = %q, want %q", updated.Title, "NARUTO 2")
	}
	if updated.Rating != 5.0 {
		t.Errorf("Rating = %f, want 5.0", updated.Rating)
	}
	if updated.UserID != "alice" {
		t.Errorf("UserID = %q, want %q", updated.UserID, "alice")
	}
	if !updated.CreatedAt.Equal(added.CreatedAt) {
		t.Errorf("CreatedAt changed: %v -> %v", added.CreatedAt, updated.CreatedAt)
	}
	if updated.UpdatedAt.Before(updated.CreatedAt) {
		t.Errorf("UpdatedAt %v is before CreatedAt %v", updated.UpdatedAt, updated.CreatedAt)
	}
}

func TestUpdateNotFound(t *testing.T) {
	store := testStore(t)

	book := sampleBook("alice", "NARUTO 1")
	book.ID = "no-such-book"
	if _, err := store.Update(context.Background(), book); !errors.Is(err, ErrBookNotFound) {
		t.Errorf("err = %v, want ErrBookNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	store := testStore(t)

	added := addBook(t, store, sampleBook("alice", "NARUTO 1"))
	if err := store.Delete(context.Background(), added.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := store.Get(context.Background(), added.ID); !errors.Is(err, ErrBookNotFound) {
		t.Errorf("book still present after delete: %v", err)
	}
}

func TestDeleteNotFound(t *testing.T) {
	store := testStore(t)

	if err := store.Delete(context.Background(), "no-such-book"); !errors.Is(err, ErrBookNotFound) {
		t.Errorf("err = %v, want ErrBookNotFound", err)
	}
}

// --- list tests ---

func TestListByUserNewestFirst(t *testing.T) {
	store := testStore(t)

	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	for i, title := range []string{"NARUTO 1", "NARUTO 2", "ONE PIECE 1"} {
		book := sampleBook("alice", title)
		book.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		addBook(t, store, book)
	}

	books, err := store.ListByUser(context.Background(), "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(books) != 3 {
		t.Fatalf("got %d books, want 3", len(books))
	}

	want := []string{"ONE PIECE 1", "NARUTO 2", "NARUTO 1"}
	for i, title := range want {
		if books[i].Title != title {
			t.Errorf("books[%d].Title = %q, want %q", i, books[i].Title, title)
		}
	}
}

func TestListByUserSameSecondUsesInsertOrder(t *testing.T) {
	store := testStore(t)

	ts := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	for _, title := range []string{"first", "second", "third"} {
		book := sampleBook("alice", title)
		book.CreatedAt = ts
		addBook(t, store, book)
	}

	books, err := store.ListByUser(context.Background(), "alice")
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"third", "second", "first"}
	for i, title := range want {
		if books[i].Title != title {
			t.Errorf("books[%d].Title = %q, want %q", i, books[i].Title, title)
		}
	}
}

func TestListByUserScopedToUser(t *testing.T) {
	store := testStore(t)

	addBook(t, store, sampleBook("alice", "NARUTO 1"))
	addBook(t, store, sampleBook("bob", "BLEACH 1"))

	books, err := store.ListByUser(context.Background(), "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(books) != 1 || books[0].Title != "NARUTO 1" {
		t.Errorf("alice's shelf = %v", books)
	}
}

func TestListByUserUnknownUser(t *testing.T) {
	store := testStore(t)

	books, err := store.ListByUser(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if books == nil {
		t.Error("expected empty slice, got nil")
	}
	if len(books) != 0 {
		t.Errorf("got %d books, want 0", len(books))
	}
}

// --- shelf search tests ---

func TestSearchShelf(t *testing.T) {
	store := testStore(t)

	ninja := sampleBook("alice", "NARUTO 1")
	ninja.Description = "A young ninja dreams of becoming the leader of his village"
	addBook(t, store, ninja)

	pirate := sampleBook("alice", "ONE PIECE 1")
	pirate.Description = "A pirate crew searches for the ultimate treasure"
	addBook(t, store, pirate)

	books, err := store.SearchShelf(context.Background(), "alice", "ninja")
	if err != nil {
		t.Fatalf("SearchShelf: %v", err)
	}
	if len(books) != 1 {
		t.Fatalf("got %d books, want 1", len(books))
	}
	if books[0].Title != "NARUTO 1" {
		t.Errorf("Title = %q, want %q", books[0].Title, "NARUTO 1")
	}
}

func TestSearchShelfScopedToUser(t *testing.T) {
	store := testStore(t)

	ninja := sampleBook("alice", "NARUTO 1")
	ninja.Description = "A young ninja dreams of becoming the leader of his village"
	addBook(t, store, ninja)

	other := sampleBook("bob", "NARUTO 1")
	other.Description = "A young ninja dreams of becoming the leader of his village"
	addBook(t, store, other)

	books, err := store.SearchShelf(context.Background(), "alice", "ninja")
	if err != nil {
		t.Fatal(err)
	}
	if len(books) != 1 || books[0].UserID != "alice" {
		t.Errorf("search leaked across users: %v", books)
	}
}

func TestSearchShelfEmptyQueryListsAll(t *testing.T) {
	store := testStore(t)

	addBook(t, store, sampleBook("alice", "NARUTO 1"))
	addBook(t, store, sampleBook("alice", "ONE PIECE 1"))

	books, err := store.SearchShelf(context.Background(), "alice", "  ")
	if err != nil {
		t.Fatal(err)
	}
	if len(books) != 2 {
		t.Errorf("got %d books, want 2", len(books))
	}
}

func TestSearchShelfTracksUpdates(t *testing.T) {
	store := testStore(t)

	added := addBook(t, store, sampleBook("alice", "NARUTO 1"))

	added.Title = "BLEACH 1"
	if _, err := store.Update(context.Background(), added); err != nil {
		t.Fatal(err)
	}

	// The FTS index follows the update: the old title is gone, the new
	// title is searchable.
	hits, err := store.SearchShelf(context.Background(), "alice", "NARUTO")
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("stale index entry: got %d hits for old title", len(hits))
	}

	hits, err = store.SearchShelf(context.Background(), "alice", "BLEACH")
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Errorf("got %d hits for new title, want 1", len(hits))
	}
}

func TestSearchShelfTracksDeletes(t *testing.T) {
	store := testStore(t)

	added := addBook(t, store, sampleBook("alice", "NARUTO 1"))
	if err := store.Delete(context.Background(), added.ID); err != nil {
		t.Fatal(err)
	}

	hits, err := store.SearchShelf(context.Background(), "alice", "NARUTO")
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("deleted book still indexed: %d hits", len(hits))
	}
}

// --- profile text tests ---

func TestTextsForUser(t *testing.T) {
	store := testStore(t)

	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	first := sampleBook("alice", "NARUTO 1")
	first.CreatedAt = base
	addBook(t, store, first)

	second := sampleBook("alice", "ONE PIECE 1")
	second.CreatedAt = base.Add(time.Hour)
	addBook(t, store, second)

	texts, err := store.TextsForUser(context.Background(), "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(texts) != 2 {
		t.Fatalf("got %d texts, want 2", len(texts))
	}
	if !strings.HasPrefix(texts[0], "ONE PIECE 1") {
		t.Errorf("texts[0] = %q, want newest book first", texts[0])
	}
}

func TestTextsForUserEmptyShelf(t *testing.T) {
	store := testStore(t)

	texts, err := store.TextsForUser(context.Background(), "nobody")
	if err != nil {
		t.Fatal(err)
	}
	if len(texts) != 0 {
		t.Errorf("got %d texts, want 0", len(texts))
	}
}

// --- count tests ---

func TestCount(t *testing.T) {
	store := testStore(t)

	for i := 0; i < 3; i++ {
		addBook(t, store, sampleBook("alice", fmt.Sprintf("Book %d", i)))
	}
	addBook(t, store, sampleBook("bob", "BLEACH 1"))

	n, err := store.Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Errorf("Count = %d, want 4", n)
	}
}

// --- export tests ---

func TestExportYAML(t *testing.T) {
	store := testStore(t)

	addBook(t, store, sampleBook("alice", "NARUTO 1"))
	addBook(t, store, sampleBook("alice", "ONE PIECE 1"))
	addBook(t, store, sampleBook("bob", "BLEACH 1"))

	var buf bytes.Buffer
	if err := store.ExportYAML(context.Background(), "alice", &buf); err != nil {
		t.Fatalf("ExportYAML: %v", err)
	}

	var entries []ShelfEntry
	if err := yaml.Unmarshal(buf.Bytes(), &entries); err != nil {
		t.Fatalf("parsing exported YAML: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	for _, e := range entries {
		if e.ID == "" || e.Title == "" {
			t.Errorf("incomplete entry: %+v", e)
		}
	}
}

func TestExportJSON(t *testing.T) {
	store := testStore(t)

	addBook(t, store, sampleBook("alice", "NARUTO 1"))

	var buf bytes.Buffer
	if err := store.ExportJSON(context.Background(), "alice", &buf); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}

	var entries []ShelfEntry
	if err := json.Unmarshal(buf.Bytes(), &entries); err != nil {
		t.Fatalf("parsing exported JSON: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].Title != "NARUTO 1" {
		t.Errorf("Title = %q, want %q", entries[0].Title, "NARUTO 1")
	}
	if entries[0].Rating != 4.5 {
		t.Errorf("Rating = %f, want 4.5", entries[0].Rating)
	}
}

func TestExportJSONEmptyShelf(t *testing.T) {
	store := testStore(t)

	var buf bytes.Buffer
	if err := store.ExportJSON(context.Background(), "nobody", &buf); err != nil {
		t.Fatal(err)
	}

	var entries []ShelfEntry
	if err := json.Unmarshal(buf.Bytes(), &entries); err != nil {
		t.Fatalf("parsing exported JSON: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries, want 0", len(entries))
	}
}
