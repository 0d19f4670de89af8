// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"strings"
	"time"
)

// DefaultBookRating is assumed when a shelf entry carries no rating.
const DefaultBookRating = 3.0

// Book is a shelf entry in a user's library.
type Book struct {
	// ID is the store-assigned entry identifier.
	ID string `json:"id" yaml:"id"`

	// UserID is the shelf owner.
	UserID string `json:"user_id" yaml:"user_id"`

	// Title is the book title as shelved.
	Title string `json:"title" yaml:"title"`

	Authors     []string `json:"authors,omitempty" yaml:"authors,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	CoverURL    string   `json:"cover_url,omitempty" yaml:"cover_url,omitempty"`

	// Rating is the user's rating on a 0-5 scale; 0 means unrated and reads
	// as DefaultBookRating wherever a rating weight is needed.
	Rating float64 `json:"rating,omitempty" yaml:"rating,omitempty"`

	Categories []string `json:"categories,omitempty" yaml:"categories,omitempty"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Text returns the free text a term profile is built from: title, authors,
// description, and categories joined with single spaces.
func (b Book) Text() string {
	parts := make([]string, 0, 3+len(b.Authors)+len(b.Categories))
	if b.Title != "" {
		parts = append(parts, b.Title)
	}
	parts = append(parts, b.Authors...)
	if b.Description != "" {
		parts = append(parts, b.Description)
	}
	parts = append(parts, b.Categories...)
	return strings.Join(parts, " ")
}

// RatingWeight returns the rating normalized to 0-1 for profile weighting,
// substituting DefaultBookRating when the entry is unrated.
func (b Book) RatingWeight() float64 {
	r := b.Rating
	if r <= 0 {
		r = DefaultBookRating
	}
	if r > 5 {
		r = 5
	}
	return r / 5.0
}
