package rank

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/pdiddy/bookshelf-engine/pkg/types"
)

// --- Score ---

func TestScoreComponents(t *testing.T) {
	w := DefaultWeights()
	tests := []struct {
		name string
		c    types.Candidate
		term string
		want float64
	}{
		{
			// An exact title also prefixes and contains, so all three stack.
			name: "exact title stacks prefix and contains",
			c:    types.Candidate{Title: "Naruto"},
			term: "naruto",
			want: 1700,
		},
		{
			name: "prefix match",
			c:    types.Candidate{Title: "Naruto Shippuden"},
			term: "naruto",
			want: 700,
		},
		{
			name: "contains match",
			c:    types.Candidate{Title: "The Art of Naruto Fighting"},
			term: "naruto",
			want: 200,
		},
		{
			name: "first volume without text match",
			c:    types.Candidate{Title: "Bleach 1"},
			term: "naruto",
			want: 800,
		},
		{
			name: "ratings count",
			c:    types.Candidate{Title: "Bleach", RatingsCount: 500},
			term: "naruto",
			want: 1000,
		},
		{
			name: "average rating",
			c:    types.Candidate{Title: "Bleach", Rating: 4.5},
			term: "naruto",
			want: 45,
		},
		{
			name: "variant penalty",
			c:    types.Candidate{Title: "完全版"},
			term: "naruto",
			want: -300,
		},
		{
			name: "has author",
			c:    types.Candidate{Title: "Bleach", Authors: []string{"久保帯人"}},
			term: "naruto",
			want: 50,
		},
		{
			name: "has cover",
			c:    types.Candidate{Title: "Bleach", CoverURL: "http://example.com/c.jpg"},
			term: "naruto",
			want: 30,
		},
		{
			name: "published after cutoff",
			c:    types.Candidate{Title: "Bleach", PublishedYear: 2015},
			term: "naruto",
			want: 5,
		},
		{
			name: "published at cutoff",
			c:    types.Candidate{Title: "Bleach", PublishedYear: 2010},
			term: "naruto",
			want: 0,
		},
		{
			name: "published before cutoff",
			c:    types.Candidate{Title: "Bleach", PublishedYear: 1999},
			term: "naruto",
			want: 0,
		},
		{
			name: "empty candidate contributes nothing",
			c:    types.Candidate{},
			term: "naruto",
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.c, tt.term, w); got != tt.want {
				t.Errorf("Score = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScoreIsPure(t *testing.T) {
	c := types.Candidate{Title: "Naruto 1", RatingsCount: 500, Rating: 4.5}
	w := DefaultWeights()
	first := Score(c, "Naruto", w)
	for i := 0; i < 5; i++ {
		if got := Score(c, "Naruto", w); got != first {
			t.Fatalf("Score not deterministic: %v then %v", first, got)
		}
	}
}

// --- ShouldExclude ---

func TestShouldExclude(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		exclude bool
		want    bool
	}{
		{"anthology excluded", "Naruto アンソロジー", true, true},
		{"english anthology excluded", "Naruto Anthology", true, true},
		{"spin-off excluded", "進撃の巨人 スピンオフ", true, true},
		{"guidebook excluded", "ワンピース ガイドブック", true, true},
		{"yonkoma excluded", "鬼滅の刃 4コマ", true, true},
		{"side story excluded", "Bleach 番外編", true, true},
		{"fan book excluded", "Haikyuu Fan Book", true, true},
		{"full edition excluded", "ドラゴンボール 完全版", true, true},
		{"main series kept", "Naruto 1", true, false},
		{"filter off keeps anthology", "Naruto アンソロジー", false, false},
		{"filter off keeps everything", "進撃の巨人 スピンオフ", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := types.Candidate{Title: tt.title}
			opts := types.SearchOptions{ExcludeVariants: tt.exclude}
			if got := ShouldExclude(c, opts); got != tt.want {
				t.Errorf("ShouldExclude(%q, exclude=%v) = %v, want %v",
					tt.title, tt.exclude, got, tt.want)
			}
		})
	}
}

// --- Rank ---

func TestRankNarutoScenario(t *testing.T) {
	candidates := []types.Candidate{
		{Title: "Naruto 1", RatingsCount: 500, Rating: 4.5},
		{Title: "Naruto Anthology"},
		{Title: "Naruto 2"},
	}

	got, err := Rank(candidates, "Naruto", types.DefaultSearchOptions())
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(got) = %d, want 2 (anthology excluded)", len(got))
	}
	if got[0].Title != "Naruto 1" {
		t.Errorf("got[0].Title = %q, want %q", got[0].Title, "Naruto 1")
	}
	if got[1].Title != "Naruto 2" {
		t.Errorf("got[1].Title = %q, want %q", got[1].Title, "Naruto 2")
	}
}

func TestRankEmptyCandidates(t *testing.T) {
	got, err := Rank(nil, "Naruto", types.DefaultSearchOptions())
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len(got) = %d, want 0", len(got))
	}
	if got == nil {
		t.Error("result should be empty, not nil")
	}
}

func TestRankEmptyTerm(t *testing.T) {
	candidates := []types.Candidate{{Title: "Naruto 1"}}
	for _, term := range []string{"", "   "} {
		got, err := Rank(candidates, term, types.DefaultSearchOptions())
		if err != nil {
			t.Fatalf("Rank(term=%q): %v", term, err)
		}
		if len(got) != 0 {
			t.Errorf("Rank(term=%q) returned %d results, want 0", term, len(got))
		}
	}
}

func TestRankNegativeMaxResults(t *testing.T) {
	opts := types.DefaultSearchOptions()
	opts.MaxResults = -1
	_, err := Rank([]types.Candidate{{Title: "Naruto"}}, "Naruto", opts)
	if !errors.Is(err, ErrNegativeMaxResults) {
		t.Errorf("err = %v, want ErrNegativeMaxResults", err)
	}
}

func TestRankTruncates(t *testing.T) {
	var candidates []types.Candidate
	for i := 0; i < 30; i++ {
		candidates = append(candidates, types.Candidate{
			Title:        fmt.Sprintf("Series %d", i+2),
			RatingsCount: 30 - i,
		})
	}

	opts := types.DefaultSearchOptions()
	opts.MaxResults = 5
	got, err := Rank(candidates, "Series", opts)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(got) != 5 {
		t.Errorf("len(got) = %d, want 5", len(got))
	}
}

func TestRankDefaultMaxResults(t *testing.T) {
	var candidates []types.Candidate
	for i := 0; i < 40; i++ {
		candidates = append(candidates, types.Candidate{Title: fmt.Sprintf("Series %d", i+2)})
	}

	got, err := Rank(candidates, "Series", types.SearchOptions{})
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(got) != types.DefaultMaxResults {
		t.Errorf("len(got) = %d, want %d", len(got), types.DefaultMaxResults)
	}
}

func TestRankStableOnTies(t *testing.T) {
	// Identical shapes score identically; input order must survive.
	candidates := []types.Candidate{
		{ExternalID: "a", Title: "Same Title"},
		{ExternalID: "b", Title: "Same Title"},
		{ExternalID: "c", Title: "Same Title"},
	}

	opts := types.DefaultSearchOptions()
	opts.PrioritizeFirstVolume = false
	got, err := Rank(candidates, "other", opts)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len(got) = %d, want 3", len(got))
	}
	for i, id := range []string{"a", "b", "c"} {
		if got[i].ExternalID != id {
			t.Errorf("got[%d].ExternalID = %q, want %q (tie order broken)", i, got[i].ExternalID, id)
		}
	}
}

func TestRankDoesNotMutateInput(t *testing.T) {
	candidates := []types.Candidate{
		{Title: "Series 3"},
		{Title: "Series 1", RatingsCount: 10},
		{Title: "Series", RatingsCount: 999},
	}
	snapshot := make([]types.Candidate, len(candidates))
	copy(snapshot, candidates)

	if _, err := Rank(candidates, "Series", types.DefaultSearchOptions()); err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if !reflect.DeepEqual(candidates, snapshot) {
		t.Errorf("input mutated:\n got %+v\nwant %+v", candidates, snapshot)
	}
}

func TestRankPromotesFirstVolume(t *testing.T) {
	// The bare series title outscores volume one, but promotion moves the
	// detected first volume to the top of the page.
	candidates := []types.Candidate{
		{Title: "Fullmetal Alchemist", RatingsCount: 1000},
		{Title: "Fullmetal Alchemist 1"},
	}

	opts := types.DefaultSearchOptions()
	got, err := Rank(candidates, "Fullmetal", opts)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if got[0].Title != "Fullmetal Alchemist 1" {
		t.Errorf("got[0].Title = %q, want first volume promoted", got[0].Title)
	}

	opts.PrioritizeFirstVolume = false
	got, err = Rank(candidates, "Fullmetal", opts)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if got[0].Title != "Fullmetal Alchemist" {
		t.Errorf("got[0].Title = %q, want score order without promotion", got[0].Title)
	}
}

func TestRankPromotionStaysWithinPage(t *testing.T) {
	// Promotion runs after truncation: a first volume that misses the page
	// on score does not displace anything.
	candidates := []types.Candidate{
		{Title: "Series", RatingsCount: 1000},
		{Title: "Series Deluxe", RatingsCount: 500},
		{Title: "Series 1"},
	}

	opts := types.DefaultSearchOptions()
	opts.MaxResults = 2
	got, err := Rank(candidates, "Series", opts)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(got) = %d, want 2", len(got))
	}
	for _, sc := range got {
		if sc.Title == "Series 1" {
			t.Errorf("truncated first volume reappeared in page: %+v", got)
		}
	}
}

func TestRankVariantFirstVolumeOverlap(t *testing.T) {
	// A title can read as both a first volume and a variant edition. The
	// variant filter runs before scoring and wins; with the filter off the
	// same title is promoted like any other first volume.
	c := types.Candidate{Title: "Naruto アンソロジー 1巻"}

	opts := types.DefaultSearchOptions()
	got, err := Rank([]types.Candidate{c}, "Naruto", opts)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("variant first volume should be excluded, got %+v", got)
	}

	opts.ExcludeVariants = false
	got, err = Rank([]types.Candidate{c}, "Naruto", opts)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(got) = %d, want 1 with filter off", len(got))
	}
	if !DetectsFirstVolume(got[0].Title) {
		t.Error("overlapping title should still detect as first volume")
	}
	if got[0].RelevanceScore >= Score(types.Candidate{Title: "Naruto 1巻"}, "Naruto", DefaultWeights()) {
		t.Error("overlapping title should still carry the variant penalty")
	}
}

func TestRankScoresDescending(t *testing.T) {
	candidates := []types.Candidate{
		{Title: "Hunter x Hunter 3"},
		{Title: "Hunter x Hunter", RatingsCount: 800, Rating: 4.2},
		{Title: "Hunter x Hunter Guidebook"},
		{Title: "Hunter x Hunter 1", RatingsCount: 300},
	}

	opts := types.DefaultSearchOptions()
	opts.PrioritizeFirstVolume = false
	got, err := Rank(candidates, "Hunter x Hunter", opts)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	for i := 1; i < len(got); i++ {
		if got[i].RelevanceScore > got[i-1].RelevanceScore {
			t.Errorf("not descending: [%d]=%f > [%d]=%f",
				i, got[i].RelevanceScore, i-1, got[i-1].RelevanceScore)
		}
	}
}
