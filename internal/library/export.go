// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.yaml.in/yaml/v3"
)

// ShelfEntry is the export representation of one shelf book.
type ShelfEntry struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Authors     []string  `json:"authors,omitempty" yaml:"authors,omitempty"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	CoverURL    string    `json:"cover_url,omitempty" yaml:"cover_url,omitempty"`
	Rating      float64   `json:"rating" yaml:"rating"`
	Categories  []string  `json:"categories,omitempty" yaml:"categories,omitempty"`
	AddedAt     time.Time `json:"added_at" yaml:"added_at"`
}

// ExportYAML writes a user's shelf to w as YAML, newest first.
func (s *Store) ExportYAML(ctx context.Context, userID string, w io.Writer) error {
	entries, err := s.exportEntries(ctx, userID)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// ExportJSON writes a user's shelf to w as indented JSON, newest first.
func (s *Store) ExportJSON(ctx context.Context, userID string, w io.Writer) error {
	entries, err := s.exportEntries(ctx, userID)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func (s *Store) exportEntries(ctx context.Context, userID string) ([]ShelfEntry, error) {
	books, err := s.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ShelfEntry, len(books))
	for i, b := range books {
		entries[i] = ShelfEntry{
			ID:          b.ID,
			Title:       b.Title,
			Authors:     b.Authors,
			Description: b.Description,
			CoverURL:    b.CoverURL,
			Rating:      b.Rating,
			Categories:  b.Categories,
			AddedAt:     b.CreatedAt,
		}
	}

	return entries, nil
}
