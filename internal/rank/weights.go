// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import "strings"

// Weights gathers every relevance-scoring constant in one structure. Callers
// that need the stock behavior use DefaultWeights; nothing in the engine
// hard-codes a score at a call site.
type Weights struct {
	// ExactTitle rewards a normalized title equal to the query term.
	ExactTitle float64

	// TitlePrefix rewards a title beginning with the term.
	TitlePrefix float64

	// TitleContains rewards a title containing the term anywhere.
	TitleContains float64

	// FirstVolume rewards a title detected as volume one of a series.
	FirstVolume float64

	// PerRatingsCount is added once per catalog rating on the volume.
	PerRatingsCount float64

	// PerAvgRating is multiplied by the 0-5 average rating.
	PerAvgRating float64

	// VariantPenalty is added (negative) when the title carries a variant
	// edition keyword.
	VariantPenalty float64

	// HasAuthor rewards candidates with at least one listed author.
	HasAuthor float64

	// HasCover rewards candidates with a cover image.
	HasCover float64

	// PublishedAfterYear is the cutoff year for the recency bonus: a
	// candidate published later earns one point per year past it.
	PublishedAfterYear int
}

// DefaultWeights returns the stock scoring weights.
func DefaultWeights() Weights {
	return Weights{
		ExactTitle:         1000,
		TitlePrefix:        500,
		TitleContains:      200,
		FirstVolume:        800,
		PerRatingsCount:    2,
		PerAvgRating:       10,
		VariantPenalty:     -300,
		HasAuthor:          50,
		HasCover:           30,
		PublishedAfterYear: 2010,
	}
}

// variantKeywords marks spin-off and variant editions of a series: the
// English keyword families plus the Japanese edition markers the catalog
// actually returns. One list feeds both the exclusion filter and the scoring
// penalty. Matched against normalized titles, so the latin entries are
// lowercase.
var variantKeywords = []string{
	"アンソロジー", "anthology",
	"スピンオフ", "spin-off", "spinoff",
	"ガイドブック", "guidebook", "guide book",
	"ファンブック", "fan book", "fanbook",
	"画集", "art book", "artbook",
	"4コマ", "４コマ", "4-panel", "yonkoma",
	"番外編", "外伝", "side story",
	"完全版", "カラー版", "新装版", "ショート",
}

// HasVariantKeyword reports whether a title names a variant edition.
func HasVariantKeyword(title string) bool {
	t := Normalize(title)
	if t == "" {
		return false
	}
	for _, kw := range variantKeywords {
		if strings.Contains(t, kw) {
			return true
		}
	}
	return false
}
