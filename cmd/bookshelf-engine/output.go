package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pdiddy/bookshelf-engine/pkg/types"
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// clip shortens s to width runes, ellipsizing the tail. Catalog titles mix
// scripts, so clipping runs on runes rather than bytes.
func clip(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

func yearCell(year int) string {
	if year == 0 {
		return "-"
	}
	return strconv.Itoa(year)
}

func ratingCell(rating float64) string {
	if rating == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f", rating)
}

// formatCandidates prints plain candidates as a table, or JSON when
// jsonOutput is set.
func formatCandidates(candidates []types.Candidate, jsonOutput bool) error {
	if jsonOutput {
		return printJSON(candidates)
	}

	if len(candidates) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-40s  %-20s  %-6s  %s\n",
		"Rank", "Title", "Authors", "Year", "Rating")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 84))
	for i, c := range candidates {
		fmt.Fprintf(os.Stdout, "%-4d  %-40s  %-20s  %-6s  %s\n",
			i+1, clip(c.Title, 40), clip(strings.Join(c.Authors, ", "), 20),
			yearCell(c.PublishedYear), ratingCell(c.Rating))
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(candidates))
	return nil
}

// formatRanked prints relevance-ranked search results.
func formatRanked(results []types.ScoredCandidate, jsonOutput bool) error {
	if jsonOutput {
		return printJSON(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-7s  %-40s  %-20s  %s\n",
		"Rank", "Score", "Title", "Authors", "Year")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 84))
	for i, r := range results {
		fmt.Fprintf(os.Stdout, "%-4d  %-7.0f  %-40s  %-20s  %s\n",
			i+1, r.RelevanceScore, clip(r.Title, 40),
			clip(strings.Join(r.Authors, ", "), 20), yearCell(r.PublishedYear))
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// formatRecommended prints similarity-ranked recommendations with their
// match reasons.
func formatRecommended(recs []types.ScoredCandidate, jsonOutput bool) error {
	if jsonOutput {
		return printJSON(recs)
	}

	if len(recs) == 0 {
		fmt.Println("No recommendations.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-10s  %-40s  %s\n",
		"Rank", "Similarity", "Title", "Reason")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))
	for i, r := range recs {
		fmt.Fprintf(os.Stdout, "%-4d  %-10.3f  %-40s  %s\n",
			i+1, r.SimilarityScore, clip(r.Title, 40), r.RecommendationReason)
	}

	fmt.Fprintf(os.Stdout, "\n%d recommendations\n", len(recs))
	return nil
}

// formatBooks prints shelf entries as a table.
func formatBooks(books []types.Book, jsonOutput bool) error {
	if jsonOutput {
		return printJSON(books)
	}

	if len(books) == 0 {
		fmt.Println("Shelf is empty.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-36s  %-36s  %-18s  %-6s  %s\n",
		"ID", "Title", "Authors", "Rating", "Added")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 108))
	for _, b := range books {
		fmt.Fprintf(os.Stdout, "%-36s  %-36s  %-18s  %-6s  %s\n",
			b.ID, clip(b.Title, 36), clip(strings.Join(b.Authors, ", "), 18),
			ratingCell(b.Rating), b.CreatedAt.Format("2006-01-02"))
	}

	fmt.Fprintf(os.Stdout, "\n%d books\n", len(books))
	return nil
}
