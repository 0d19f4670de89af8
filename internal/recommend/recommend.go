// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package recommend scores catalog candidates against a text profile of the
// user's library. The profile is a TF-IDF vector over a request-scoped
// corpus holding one document per candidate plus a single user document;
// candidates are ordered by cosine similarity to that profile and each hit
// carries a human-readable reason naming the terms it matched.
package recommend

import (
	"sort"
	"strings"

	"github.com/pdiddy/bookshelf-engine/internal/rank"
	"github.com/pdiddy/bookshelf-engine/pkg/types"
)

// Algorithm identifies the scoring method attached to every recommendation.
const Algorithm = "tfidf-cosine"

const (
	defaultLimit       = 10
	defaultReasonTerms = 3
	defaultTopTerms    = 10
)

// Recommend orders candidates by similarity to the user's library profile.
//
// The corpus is one document per candidate plus one user document joining
// every library text; document frequencies span all of them. Similarity is
// cosine similarity in [0, 1], sorted descending with ties keeping candidate
// order, truncated to cfg.Limit. cfg.Epsilon is a reserved diversification
// knob: the engine currently applies no perturbation regardless of its
// value, so output is deterministic.
//
// An empty candidate list or a library with no usable text yields an empty
// result. Inputs are never mutated.
func Recommend(candidates []types.Candidate, libraryTexts []string, cfg types.RecommendConfig) []types.ScoredCandidate {
	limit := cfg.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	reasonTerms := cfg.MaxReasonTerms
	if reasonTerms <= 0 {
		reasonTerms = defaultReasonTerms
	}

	out := make([]types.ScoredCandidate, 0, len(candidates))
	if len(candidates) == 0 || !hasText(libraryTexts) {
		return out
	}

	docs := make([]string, 0, len(candidates)+1)
	for _, c := range candidates {
		docs = append(docs, candidateDoc(c))
	}
	docs = append(docs, strings.Join(libraryTexts, " "))

	corp := newCorpus(docs)
	profile := corp.vector(len(candidates))
	if len(profile) == 0 {
		return out
	}

	for i, c := range candidates {
		vec := corp.vector(i)
		out = append(out, types.ScoredCandidate{
			Candidate:            c,
			SimilarityScore:      cosine(profile, vec),
			RecommendationReason: reason(profile, vec, reasonTerms),
			Algorithm:            Algorithm,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SimilarityScore > out[j].SimilarityScore
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Analysis summarizes a user's term profile for inspection.
type Analysis struct {
	Algorithm   string         `json:"algorithm" yaml:"algorithm"`
	LibraryDocs int            `json:"library_docs" yaml:"library_docs"`
	CorpusDocs  int            `json:"corpus_docs" yaml:"corpus_docs"`
	UniqueTerms int            `json:"unique_terms" yaml:"unique_terms"`
	TopTerms    []WeightedTerm `json:"top_terms" yaml:"top_terms"`
}

// Analyze reports the aggregate profile of a library: each library text is
// its own document, context candidates pad the corpus so document
// frequencies mean something for small shelves, and the profile is the mean
// of the per-text vectors. topN caps TopTerms (default 10).
func Analyze(libraryTexts []string, contexts []types.Candidate, topN int) Analysis {
	a := Analysis{Algorithm: Algorithm, TopTerms: []WeightedTerm{}}

	docs := make([]string, 0, len(libraryTexts)+len(contexts))
	for _, t := range libraryTexts {
		if strings.TrimSpace(t) != "" {
			docs = append(docs, t)
		}
	}
	a.LibraryDocs = len(docs)
	if a.LibraryDocs == 0 {
		return a
	}
	for _, c := range contexts {
		docs = append(docs, candidateDoc(c))
	}

	corp := newCorpus(docs)
	a.CorpusDocs = corp.n
	a.UniqueTerms = len(corp.df)

	profile := make(TermProfile)
	for i := 0; i < a.LibraryDocs; i++ {
		for term, w := range corp.vector(i) {
			profile[term] += w
		}
	}
	n := float64(a.LibraryDocs)
	for term := range profile {
		profile[term] /= n
	}

	if topN <= 0 {
		topN = defaultTopTerms
	}
	a.TopTerms = profile.TopTerms(topN)
	return a
}

// candidateDoc flattens a candidate into one corpus document. The title is
// reduced to its series base first so volume markers stay out of the
// vocabulary.
func candidateDoc(c types.Candidate) string {
	parts := make([]string, 0, 3+len(c.Authors)+len(c.Categories))
	if base := rank.BaseTitle(c.Title); base != "" {
		parts = append(parts, base)
	}
	parts = append(parts, c.Authors...)
	if c.Description != "" {
		parts = append(parts, c.Description)
	}
	parts = append(parts, c.Categories...)
	return strings.Join(parts, " ")
}

// reason names the top overlapping profile terms behind a match, e.g.
// 「進撃」「巨人」に関連. Empty when nothing overlaps.
func reason(profile, vec TermProfile, max int) string {
	type overlap struct {
		term   string
		weight float64
	}
	var shared []overlap
	for _, term := range sortedTerms(vec) {
		if pw, ok := profile[term]; ok {
			shared = append(shared, overlap{term: term, weight: pw * vec[term]})
		}
	}
	if len(shared) == 0 {
		return ""
	}
	sort.SliceStable(shared, func(i, j int) bool {
		return shared[i].weight > shared[j].weight
	})
	if len(shared) > max {
		shared = shared[:max]
	}

	var b strings.Builder
	for _, o := range shared {
		b.WriteString("「")
		b.WriteString(o.term)
		b.WriteString("」")
	}
	b.WriteString("に関連")
	return b.String()
}

func hasText(texts []string) bool {
	for _, t := range texts {
		if strings.TrimSpace(t) != "" {
			return true
		}
	}
	return false
}
