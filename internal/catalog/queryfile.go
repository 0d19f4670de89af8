// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/bookshelf-engine/pkg/types"
)

// QueryFile is the on-disk representation of a ranked catalog search. A
// search can be saved to a file and reloaded later without re-querying the
// catalog.
type QueryFile struct {
	Query   QueryFileQuery   `yaml:"query"`
	Results []QueryFileEntry `yaml:"results"`
	Summary QuerySummary     `yaml:"summary"`
}

// QueryFileQuery stores the search term and options that produced the
// results.
type QueryFileQuery struct {
	Term                  string `yaml:"term"`
	MaxResults            int    `yaml:"max_results"`
	ExcludeVariants       bool   `yaml:"exclude_variants"`
	PrioritizeFirstVolume bool   `yaml:"prioritize_first_volume"`
}

// QueryFileEntry is one ranked result in serializable form.
type QueryFileEntry struct {
	ExternalID    string   `yaml:"external_id,omitempty"`
	Title         string   `yaml:"title"`
	Authors       []string `yaml:"authors,omitempty"`
	Description   string   `yaml:"description,omitempty"`
	CoverURL      string   `yaml:"cover_url,omitempty"`
	Rating        float64  `yaml:"rating,omitempty"`
	RatingsCount  int      `yaml:"ratings_count,omitempty"`
	PublishedYear int      `yaml:"published_year,omitempty"`
	Categories    []string `yaml:"categories,omitempty"`
	Score         float64  `yaml:"score"`
}

// QuerySummary stores result statistics and a timestamp.
type QuerySummary struct {
	Total     int       `yaml:"total"`
	Timestamp time.Time `yaml:"timestamp"`
}

// WriteQueryFile saves a ranked search to a YAML file.
func WriteQueryFile(path, term string, opts types.SearchOptions, results []types.ScoredCandidate) error {
	qf := QueryFile{
		Query: QueryFileQuery{
			Term:                  term,
			MaxResults:            opts.MaxResults,
			ExcludeVariants:       opts.ExcludeVariants,
			PrioritizeFirstVolume: opts.PrioritizeFirstVolume,
		},
		Results: make([]QueryFileEntry, len(results)),
		Summary: QuerySummary{
			Total:     len(results),
			Timestamp: time.Now(),
		},
	}
	for i, r := range results {
		qf.Results[i] = QueryFileEntry{
			ExternalID:    r.ExternalID,
			Title:         r.Title,
			Authors:       r.Authors,
			Description:   r.Description,
			CoverURL:      r.CoverURL,
			Rating:        r.Rating,
			RatingsCount:  r.RatingsCount,
			PublishedYear: r.PublishedYear,
			Categories:    r.Categories,
			Score:         r.RelevanceScore,
		}
	}

	data, err := yaml.Marshal(&qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadQueryFile loads a previously saved search from disk.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	return &qf, nil
}

// Scored converts the stored entries back into scored candidates, preserving
// the saved order.
func (f *QueryFile) Scored() []types.ScoredCandidate {
	out := make([]types.ScoredCandidate, len(f.Results))
	for i, e := range f.Results {
		out[i] = types.ScoredCandidate{
			Candidate: types.Candidate{
				ExternalID:    e.ExternalID,
				Title:         e.Title,
				Authors:       e.Authors,
				Description:   e.Description,
				CoverURL:      e.CoverURL,
				Rating:        e.Rating,
				RatingsCount:  e.RatingsCount,
				PublishedYear: e.PublishedYear,
				Categories:    e.Categories,
			},
			RelevanceScore: e.Score,
		}
	}
	return out
}
