// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pdiddy/bookshelf-engine/internal/library"
	"github.com/pdiddy/bookshelf-engine/pkg/types"
)

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Books   int    `json:"books"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	n, err := s.store.Count(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("health check failed")
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "degraded", Version: s.version})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: s.version, Books: n})
}

type shelfResponse struct {
	UserID string       `json:"user_id"`
	Count  int          `json:"count"`
	Books  []types.Book `json:"books"`
}

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	books, err := s.store.ListByUser(r.Context(), userID)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("listing shelf")
		writeError(w, http.StatusInternalServerError, "listing shelf failed")
		return
	}
	writeJSON(w, http.StatusOK, shelfResponse{UserID: userID, Count: len(books), Books: books})
}

// requireOwner checks that the request identity is authenticated as userID.
// On failure it writes the error response and returns false.
func (s *Server) requireOwner(w http.ResponseWriter, r *http.Request, userID string) bool {
	uid, ok := types.UserIDOf(IdentityFrom(r.Context()))
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return false
	}
	if uid != userID {
		writeError(w, http.StatusForbidden, "shelf belongs to another user")
		return false
	}
	return true
}

func (s *Server) handleAddBook(w http.ResponseWriter, r *http.Request) {
	var book types.Book
	if err := json.NewDecoder(r.Body).Decode(&book); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	uid, ok := types.UserIDOf(IdentityFrom(r.Context()))
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if book.UserID == "" {
		book.UserID = uid
	}
	if book.UserID != uid {
		writeError(w, http.StatusForbidden, "shelf belongs to another user")
		return
	}
	if strings.TrimSpace(book.Title) == "" {
		writeError(w, http.StatusBadRequest, "book needs a title")
		return
	}

	added, err := s.store.Add(r.Context(), book)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", uid).Msg("adding book")
		writeError(w, http.StatusInternalServerError, "adding book failed")
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	existing, err := s.store.Get(r.Context(), id)
	if errors.Is(err, library.ErrBookNotFound) {
		writeError(w, http.StatusNotFound, "book not found")
		return
	}
	if err != nil {
		s.log.Error().Err(err).Str("book_id", id).Msg("reading book")
		writeError(w, http.StatusInternalServerError, "reading book failed")
		return
	}
	if !s.requireOwner(w, r, existing.UserID) {
		return
	}

	var book types.Book
	if err := json.NewDecoder(r.Body).Decode(&book); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(book.Title) == "" {
		writeError(w, http.StatusBadRequest, "book needs a title")
		return
	}
	book.ID = id
	book.UserID = existing.UserID

	updated, err := s.store.Update(r.Context(), book)
	if errors.Is(err, library.ErrBookNotFound) {
		writeError(w, http.StatusNotFound, "book not found")
		return
	}
	if err != nil {
		s.log.Error().Err(err).Str("book_id", id).Msg("updating book")
		writeError(w, http.StatusInternalServerError, "updating book failed")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	existing, err := s.store.Get(r.Context(), id)
	if errors.Is(err, library.ErrBookNotFound) {
		writeError(w, http.StatusNotFound, "book not found")
		return
	}
	if err != nil {
		s.log.Error().Err(err).Str("book_id", id).Msg("reading book")
		writeError(w, http.StatusInternalServerError, "reading book failed")
		return
	}
	if !s.requireOwner(w, r, existing.UserID) {
		return
	}

	if err := s.store.Delete(r.Context(), id); err != nil {
		s.log.Error().Err(err).Str("book_id", id).Msg("deleting book")
		writeError(w, http.StatusInternalServerError, "deleting book failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
