// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog fronts the external book catalog. It turns search terms
// into catalog queries, fans query sets out concurrently, deduplicates the
// merged pages and runs them through relevance ranking.
package catalog

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
	"unicode"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/pdiddy/bookshelf-engine/internal/rank"
	"github.com/pdiddy/bookshelf-engine/pkg/types"
)

// Backend searches a single book catalog API. Google Books is the only
// production implementation; the interface keeps the seam for substitutes.
type Backend interface {
	Name() string
	Search(ctx context.Context, query string, cfg types.CatalogConfig) ([]types.Candidate, error)
	Volume(ctx context.Context, id string, cfg types.CatalogConfig) (types.Candidate, error)
}

// Service wraps a Backend with a circuit breaker and the search pipeline.
// Backend failures degrade to empty pages with a warning on warn rather
// than surfacing to callers.
type Service struct {
	backend Backend
	cfg     types.CatalogConfig
	breaker *gobreaker.CircuitBreaker[[]types.Candidate]
	warn    io.Writer
}

// NewService builds a Service around backend. The breaker opens after five
// consecutive backend failures and probes again after thirty seconds.
func NewService(backend Backend, cfg types.CatalogConfig, warn io.Writer) *Service {
	if warn == nil {
		warn = io.Discard
	}
	breaker := gobreaker.NewCircuitBreaker[[]types.Candidate](gobreaker.Settings{
		Name:        backend.Name(),
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &Service{backend: backend, cfg: cfg, breaker: breaker, warn: warn}
}

// Config returns the catalog configuration the service was built with.
func (s *Service) Config() types.CatalogConfig { return s.cfg }

// Search runs one search term through the full pipeline: query building,
// candidate fetch, variant filtering and relevance ranking. A blank term
// yields an empty page. The only error path is invalid options.
func (s *Service) Search(ctx context.Context, term string, opts types.SearchOptions) ([]types.ScoredCandidate, error) {
	query := rank.BuildQuery(term)
	if query == "" {
		return []types.ScoredCandidate{}, nil
	}
	return rank.Rank(s.fetch(ctx, query), term, opts)
}

// GatherOutput holds fan-out results and dedup statistics.
type GatherOutput struct {
	Candidates  []types.Candidate
	DupsRemoved int
	QueryErrors []string
}

// Gather fans the raw queries out concurrently and merges the result
// pages, deduplicating by volume id and normalized title. Pages are
// concatenated in query order so downstream tie-breaks stay deterministic
// regardless of arrival order.
func (s *Service) Gather(ctx context.Context, queries []string) GatherOutput {
	pages := make([][]types.Candidate, len(queries))
	errs := make([]error, len(queries))

	var wg sync.WaitGroup
	for i, q := range queries {
		wg.Add(1)
		go func(i int, q string) {
			defer wg.Done()
			pages[i], errs[i] = s.breaker.Execute(func() ([]types.Candidate, error) {
				return s.backend.Search(ctx, q, s.cfg)
			})
		}(i, q)
	}
	wg.Wait()

	var all []types.Candidate
	var queryErrors []string
	for i := range queries {
		if errs[i] != nil {
			queryErrors = append(queryErrors, fmt.Sprintf("%s: %v", queries[i], errs[i]))
			fmt.Fprintf(s.warn, "warning: catalog query %q failed: %v\n", queries[i], errs[i])
			continue
		}
		all = append(all, pages[i]...)
	}

	deduped, removed := deduplicate(all)
	return GatherOutput{Candidates: deduped, DupsRemoved: removed, QueryErrors: queryErrors}
}

// Volume fetches a single catalog volume by its id.
func (s *Service) Volume(ctx context.Context, id string) (types.Candidate, error) {
	return s.backend.Volume(ctx, id, s.cfg)
}

// Lookup resolves a user-typed identifier: volume ids fetch the exact
// volume, ISBNs search with the isbn: qualifier, anything else searches
// as free text.
func (s *Service) Lookup(ctx context.Context, input string) ([]types.Candidate, error) {
	kind, normalized := Classify(input)
	if kind == KindVolumeID {
		c, err := s.backend.Volume(ctx, normalized, s.cfg)
		if err != nil {
			return nil, err
		}
		return []types.Candidate{c}, nil
	}
	return s.backend.Search(ctx, SearchTerm(kind, normalized), s.cfg)
}

// fetch retrieves candidates for one raw query through the circuit
// breaker. Failures are reported as warnings and yield no candidates.
func (s *Service) fetch(ctx context.Context, query string) []types.Candidate {
	out, err := s.breaker.Execute(func() ([]types.Candidate, error) {
		return s.backend.Search(ctx, query, s.cfg)
	})
	if err != nil {
		fmt.Fprintf(s.warn, "warning: catalog query %q failed: %v\n", query, err)
		return nil
	}
	return out
}

// deduplicate merges candidates that share a volume id or normalized title.
func deduplicate(candidates []types.Candidate) ([]types.Candidate, int) {
	seen := make(map[string]int) // dedup key → index in deduped
	var deduped []types.Candidate
	removed := 0

	for _, c := range candidates {
		key := dedupKey(c)
		if key != "" {
			if idx, ok := seen[key]; ok {
				mergeInto(&deduped[idx], c)
				removed++
				continue
			}
		}

		// Also check by normalized title.
		titleKey := "title:" + normalizeTitle(c.Title)
		if titleKey != "title:" {
			if idx, ok := seen[titleKey]; ok {
				mergeInto(&deduped[idx], c)
				removed++
				continue
			}
		}

		idx := len(deduped)
		deduped = append(deduped, c)
		if key != "" {
			seen[key] = idx
		}
		if titleKey != "title:" {
			seen[titleKey] = idx
		}
	}
	return deduped, removed
}

// dedupKey returns a key for id-based dedup.
func dedupKey(c types.Candidate) string {
	if c.ExternalID != "" {
		return "id:" + c.ExternalID
	}
	return ""
}

// mergeInto fills empty fields of dst from src and keeps the stronger
// rating signal.
func mergeInto(dst *types.Candidate, src types.Candidate) {
	if dst.Title == "" && src.Title != "" {
		dst.Title = src.Title
	}
	if len(dst.Authors) == 0 && len(src.Authors) > 0 {
		dst.Authors = src.Authors
	}
	if dst.Description == "" && src.Description != "" {
		dst.Description = src.Description
	}
	if dst.CoverURL == "" && src.CoverURL != "" {
		dst.CoverURL = src.CoverURL
	}
	if len(dst.Categories) == 0 && len(src.Categories) > 0 {
		dst.Categories = src.Categories
	}
	if dst.PublishedYear == 0 && src.PublishedYear != 0 {
		dst.PublishedYear = src.PublishedYear
	}
	if src.RatingsCount > dst.RatingsCount {
		dst.RatingsCount = src.RatingsCount
	}
	if src.Rating > dst.Rating {
		dst.Rating = src.Rating
	}
	if dst.Source != src.Source && src.Source != "" && !strings.Contains(dst.Source, src.Source) {
		dst.Source = dst.Source + "," + src.Source
	}
}

// normalizeTitle returns a lowercased, punctuation-stripped version of the
// title. Letters of any script survive, so "NARUTO -ナルト- 1" and
// "NARUTO ナルト 1" dedup to the same key.
func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
