// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank scores and orders catalog candidates for a series query. It
// holds the engine's relevance heuristics: text normalization, volume-number
// detection, variant filtering, query building, and the ranking pipeline
// itself. Everything here is pure: inputs are never mutated and the same
// inputs always produce the same order.
package rank

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/bookshelf-engine/pkg/types"
)

// ErrNegativeMaxResults is returned when SearchOptions.MaxResults is negative.
var ErrNegativeMaxResults = errors.New("max results must not be negative")

// Score computes the additive relevance score of a candidate for a query
// term. Contributions are independent, so evaluation order never matters;
// missing candidate fields contribute nothing. Negative totals are possible
// when the variant penalty outweighs the rest.
func Score(c types.Candidate, term string, w Weights) float64 {
	title := Normalize(c.Title)
	q := Normalize(term)

	var s float64
	if q != "" && title != "" {
		// Exact, prefix, and contains stack: an exact match earns all three.
		if title == q {
			s += w.ExactTitle
		}
		if strings.HasPrefix(title, q) {
			s += w.TitlePrefix
		}
		if strings.Contains(title, q) {
			s += w.TitleContains
		}
	}
	if DetectsFirstVolume(c.Title) {
		s += w.FirstVolume
	}
	s += w.PerRatingsCount * float64(c.RatingsCount)
	s += w.PerAvgRating * c.Rating
	if HasVariantKeyword(c.Title) {
		s += w.VariantPenalty
	}
	if len(c.Authors) > 0 {
		s += w.HasAuthor
	}
	if c.CoverURL != "" {
		s += w.HasCover
	}
	if c.PublishedYear > w.PublishedAfterYear {
		s += float64(c.PublishedYear - w.PublishedAfterYear)
	}
	return s
}

// ShouldExclude reports whether a candidate is a variant edition that the
// options ask to drop. With ExcludeVariants off it is a strict no-op.
func ShouldExclude(c types.Candidate, opts types.SearchOptions) bool {
	if !opts.ExcludeVariants {
		return false
	}
	return HasVariantKeyword(c.Title)
}

// Rank filters, scores, and orders candidates for a query term:
//
//  1. drop variant editions when opts.ExcludeVariants is set
//  2. score the survivors
//  3. stable sort by score descending (ties keep input order)
//  4. truncate to opts.MaxResults
//  5. when opts.PrioritizeFirstVolume is set, stably move detected first
//     volumes ahead of the rest of the truncated page
//
// The input slice is never reordered or mutated. An empty term or empty
// candidate list yields an empty result and a nil error.
func Rank(candidates []types.Candidate, term string, opts types.SearchOptions) ([]types.ScoredCandidate, error) {
	if opts.MaxResults < 0 {
		return nil, fmt.Errorf("rank: %w: %d", ErrNegativeMaxResults, opts.MaxResults)
	}
	max := opts.MaxResults
	if max == 0 {
		max = types.DefaultMaxResults
	}

	scored := make([]types.ScoredCandidate, 0, len(candidates))
	if Normalize(term) == "" {
		return scored, nil
	}

	w := DefaultWeights()
	for _, c := range candidates {
		if ShouldExclude(c, opts) {
			continue
		}
		scored = append(scored, types.ScoredCandidate{
			Candidate:      c,
			RelevanceScore: Score(c, term, w),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].RelevanceScore > scored[j].RelevanceScore
	})

	if len(scored) > max {
		scored = scored[:max]
	}

	if opts.PrioritizeFirstVolume {
		scored = promoteFirstVolumes(scored)
	}
	return scored, nil
}

// promoteFirstVolumes partitions the page into detected first volumes and
// everything else, first volumes ahead, relative order preserved within each
// group. It runs after truncation so promotion reorders the visible page
// rather than pulling in candidates that did not make the cut.
func promoteFirstVolumes(scored []types.ScoredCandidate) []types.ScoredCandidate {
	firsts := make([]types.ScoredCandidate, 0, len(scored))
	rest := make([]types.ScoredCandidate, 0, len(scored))
	for _, sc := range scored {
		if DetectsFirstVolume(sc.Title) {
			firsts = append(firsts, sc)
		} else {
			rest = append(rest, sc)
		}
	}
	return append(firsts, rest...)
}
