// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the bookshelf-engine
// pipeline: catalog candidates, scored results, shelf entries, request
// identity, and per-stage configuration.
package types

// DefaultMaxResults caps ranked search results when SearchOptions.MaxResults
// is left zero.
const DefaultMaxResults = 12

// Candidate represents a book volume returned by a catalog query. Fields the
// catalog did not supply stay zero-valued; scoring treats them as contributing
// nothing. A Candidate is read-only once constructed: no engine stage mutates
// one, and ranking always copies before reordering.
type Candidate struct {
	// ExternalID is the canonical volume identifier from the catalog.
	ExternalID string `json:"external_id" yaml:"external_id"`

	// Title is the volume title as returned by the catalog.
	Title string `json:"title" yaml:"title"`

	// Authors lists the authors in catalog order.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Description is the catalog synopsis or blurb.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// CoverURL is the cover thumbnail URL, when the catalog has one.
	CoverURL string `json:"cover_url,omitempty" yaml:"cover_url,omitempty"`

	// Rating is the average catalog rating on a 0-5 scale; 0 means unrated.
	Rating float64 `json:"rating,omitempty" yaml:"rating,omitempty"`

	// RatingsCount is the number of ratings behind Rating.
	RatingsCount int `json:"ratings_count,omitempty" yaml:"ratings_count,omitempty"`

	// PublishedYear is the publication year; 0 means unknown.
	PublishedYear int `json:"published_year,omitempty" yaml:"published_year,omitempty"`

	// Categories lists catalog subject labels (e.g. "Comics & Graphic Novels").
	Categories []string `json:"categories,omitempty" yaml:"categories,omitempty"`

	// Source identifies which backend found this candidate (e.g. "google_books").
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
}

// ScoredCandidate is a Candidate with engine scores attached. The ranking
// path fills RelevanceScore; the recommendation path additionally fills
// SimilarityScore, RecommendationReason, and Algorithm.
type ScoredCandidate struct {
	Candidate `yaml:",inline"`

	// RelevanceScore is the additive heuristic score assigned by the ranker.
	// Higher is better; negative totals are possible.
	RelevanceScore float64 `json:"relevance_score" yaml:"relevance_score"`

	// SimilarityScore is the cosine similarity between this candidate and the
	// user's library profile, between 0.0 and 1.0.
	SimilarityScore float64 `json:"similarity_score,omitempty" yaml:"similarity_score,omitempty"`

	// RecommendationReason names the profile terms this candidate matched,
	// in display form. Empty outside the recommendation path.
	RecommendationReason string `json:"recommendation_reason,omitempty" yaml:"recommendation_reason,omitempty"`

	// Algorithm identifies the scoring algorithm that produced this entry.
	Algorithm string `json:"algorithm,omitempty" yaml:"algorithm,omitempty"`
}

// SearchOptions controls variant filtering, first-volume promotion, and
// result count during ranking. The zero value is not the standard set; use
// DefaultSearchOptions for the defaults callers usually want.
type SearchOptions struct {
	// PrioritizeFirstVolume moves detected first volumes ahead of other
	// results after truncation, preserving relative order within each group.
	PrioritizeFirstVolume bool `json:"prioritize_first_volume" yaml:"prioritize_first_volume"`

	// ExcludeVariants drops spin-off and variant editions before scoring.
	ExcludeVariants bool `json:"exclude_variants" yaml:"exclude_variants"`

	// MaxResults caps the number of ranked results. Zero means
	// DefaultMaxResults; negative values are rejected.
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// DefaultSearchOptions returns the standard option set: variants excluded,
// first volumes prioritized, DefaultMaxResults results.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		PrioritizeFirstVolume: true,
		ExcludeVariants:       true,
		MaxResults:            DefaultMaxResults,
	}
}
