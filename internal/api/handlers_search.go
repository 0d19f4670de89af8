// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/pdiddy/bookshelf-engine/internal/rank"
	"github.com/pdiddy/bookshelf-engine/pkg/types"
)

type searchResponse struct {
	Query   string                  `json:"query"`
	Count   int                     `json:"count"`
	Results []types.ScoredCandidate `json:"results"`
}

// handleSearch runs a ranked catalog search. Query parameters: q (required),
// max (result cap), variants=true keeps variant editions, first=false
// disables first-volume promotion.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	if term == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}

	opts := types.DefaultSearchOptions()

	max, err := intQuery(r, "max", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	opts.MaxResults = max

	variants, err := boolQuery(r, "variants", false)
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	opts.ExcludeVariants = !variants

	first, err := boolQuery(r, "first", true)
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	opts.PrioritizeFirstVolume = first

	results, err := s.catalog.Search(r.Context(), term, opts)
	if errors.Is(err, rank.ErrNegativeMaxResults) {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	if err != nil {
		s.log.Error().Err(err).Str("term", term).Msg("catalog search")
		writeError(w, http.StatusInternalServerError, "catalog search failed")
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{Query: term, Count: len(results), Results: results})
}
