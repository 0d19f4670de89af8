// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pdiddy/bookshelf-engine/internal/analyze"
	"github.com/pdiddy/bookshelf-engine/internal/recommend"
	"github.com/pdiddy/bookshelf-engine/pkg/types"
)

type recommendationsResponse struct {
	Strategy        string            `json:"strategy"`
	ContentType     string            `json:"content_type"`
	UserKeywords    []string          `json:"user_keywords,omitempty"`
	WeightBalance   float64           `json:"weight_balance"`
	PreferVolumeOne bool              `json:"prefer_volume_one"`
	UserBooksCount  int               `json:"user_books_count"`
	Queries         []analyze.Query   `json:"queries,omitempty"`
	QueryErrors     []string          `json:"query_errors,omitempty"`
	TotalFound      int               `json:"total_found"`
	Recommendations []types.Candidate `json:"recommendations"`
	Message         string            `json:"message,omitempty"`
}

// handleRecommendations serves the rule-based path: profile the shelf, run
// the generated catalog queries, drop what the user already owns, and prefer
// series starting points.
func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	limit, err := intQuery(r, "limit", s.rec.Limit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	if limit < 0 {
		writeError(w, http.StatusBadRequest, "limit must not be negative")
		return
	}
	if limit == 0 {
		limit = 10
	}

	balance, err := floatQuery(r, "weight_balance", 0.5)
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	preferFirst, err := boolQuery(r, "prefer_volume_one", true)
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	keywords := splitKeywords(r.URL.Query().Get("keywords"))
	contentType := r.URL.Query().Get("content_type")
	if contentType == "" || contentType == "auto" {
		contentType = analyze.ContentTypeManga
	}

	books, err := s.store.ListByUser(r.Context(), userID)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("listing shelf")
		writeError(w, http.StatusInternalServerError, "listing shelf failed")
		return
	}

	resp := recommendationsResponse{
		Strategy:        "rule-based",
		ContentType:     contentType,
		UserKeywords:    keywords,
		WeightBalance:   balance,
		PreferVolumeOne: preferFirst,
		UserBooksCount:  len(books),
		Recommendations: []types.Candidate{},
	}
	if len(books) == 0 {
		resp.Message = "shelf is empty"
		writeJSON(w, http.StatusOK, resp)
		return
	}

	profile := analyze.Profile(books)
	queries := analyze.SmartQueries(profile, keywords, contentType, balance)
	texts := make([]string, len(queries))
	for i, q := range queries {
		texts[i] = q.Text
	}

	out := s.catalog.Gather(r.Context(), texts)
	resp.Queries = queries
	resp.QueryErrors = out.QueryErrors
	resp.TotalFound = len(out.Candidates)

	kept := analyze.FilterOwned(out.Candidates, books)
	if len(kept) > limit {
		kept = kept[:limit]
	}
	if preferFirst {
		kept = analyze.PreferFirstVolumes(out.Candidates, kept)
	}
	resp.Recommendations = kept

	writeJSON(w, http.StatusOK, resp)
}

type mlRecommendationsResponse struct {
	Algorithm          string                  `json:"algorithm"`
	UserBooksCount     int                     `json:"user_books_count"`
	ExternalBooksCount int                     `json:"external_books_count"`
	Queries            []string                `json:"queries,omitempty"`
	QueryErrors        []string                `json:"query_errors,omitempty"`
	Recommendations    []types.ScoredCandidate `json:"recommendations"`
	Message            string                  `json:"message,omitempty"`
}

// handleMLRecommendations serves the TF-IDF path: gather discovery
// candidates, drop owned series, and rank by cosine similarity against the
// shelf profile.
func (s *Server) handleMLRecommendations(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	limit, err := intQuery(r, "limit", s.rec.Limit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	if limit < 0 {
		writeError(w, http.StatusBadRequest, "limit must not be negative")
		return
	}
	keywords := splitKeywords(r.URL.Query().Get("keywords"))

	books, err := s.store.ListByUser(r.Context(), userID)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("listing shelf")
		writeError(w, http.StatusInternalServerError, "listing shelf failed")
		return
	}

	resp := mlRecommendationsResponse{
		Algorithm:       recommend.Algorithm,
		UserBooksCount:  len(books),
		Recommendations: []types.ScoredCandidate{},
	}
	if len(books) == 0 {
		resp.Message = "shelf is empty"
		writeJSON(w, http.StatusOK, resp)
		return
	}

	queries := analyze.DiscoveryQueries(keywords)

	out := s.catalog.Gather(r.Context(), queries)
	resp.Queries = queries
	resp.QueryErrors = out.QueryErrors
	resp.ExternalBooksCount = len(out.Candidates)
	if len(out.Candidates) == 0 {
		resp.Message = "no catalog results"
		writeJSON(w, http.StatusOK, resp)
		return
	}

	texts := make([]string, 0, len(books))
	for _, b := range books {
		if t := b.Text(); t != "" {
			texts = append(texts, t)
		}
	}

	pool := analyze.FilterOwned(out.Candidates, books)
	cfg := s.rec
	cfg.Limit = limit
	resp.Recommendations = recommend.Recommend(pool, texts, cfg)

	writeJSON(w, http.StatusOK, resp)
}

type mlAnalysisResponse struct {
	UserID string `json:"user_id"`
	recommend.Analysis
	Message string `json:"message,omitempty"`
}

// handleMLAnalysis reports the TF-IDF view of a shelf: corpus counts and the
// strongest profile terms, with a small catalog sample padding the corpus.
func (s *Server) handleMLAnalysis(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	texts, err := s.store.TextsForUser(r.Context(), userID)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("reading shelf texts")
		writeError(w, http.StatusInternalServerError, "reading shelf failed")
		return
	}

	if len(texts) == 0 {
		writeJSON(w, http.StatusOK, mlAnalysisResponse{
			UserID:   userID,
			Analysis: recommend.Analyze(nil, nil, 10),
			Message:  "shelf is empty",
		})
		return
	}

	out := s.catalog.Gather(r.Context(), []string{"人気 漫画"})
	analysis := recommend.Analyze(texts, out.Candidates, 10)

	writeJSON(w, http.StatusOK, mlAnalysisResponse{UserID: userID, Analysis: analysis})
}
