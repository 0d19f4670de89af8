package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bookshelf-engine/internal/analyze"
	"github.com/pdiddy/bookshelf-engine/internal/catalog"
	"github.com/pdiddy/bookshelf-engine/internal/library"
	"github.com/pdiddy/bookshelf-engine/internal/recommend"
	"github.com/pdiddy/bookshelf-engine/pkg/types"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend [user]",
	Short: "Recommend unread series for a user's shelf",
	Long: `Recommend suggests series the shelf does not hold yet. The default
rule-based path infers genres and favorite authors from the shelf, builds
catalog queries from them, and drops everything already owned. With --ml
the TF-IDF path ranks discovery results by text similarity to the shelf
instead.`,
	RunE: runRecommend,
}

func init() {
	recommendCmd.Flags().Bool("ml", false, "use TF-IDF similarity instead of the rule-based path")
	recommendCmd.Flags().String("keywords", "", "comma-separated keywords steering the catalog queries")
	recommendCmd.Flags().Int("limit", 0, "maximum recommendations (0 = default)")
	recommendCmd.Flags().Float64("balance", 0.5, "blend of automatic shelf analysis into rule-based queries (0-1)")
	recommendCmd.Flags().Bool("no-first-volume", false, "disable swapping mid-series hits for volume one")
	recommendCmd.Flags().Bool("json", false, "output recommendations as JSON")

	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("provide exactly one user id")
	}
	userID := args[0]

	limit, _ := cmd.Flags().GetInt("limit")
	if limit < 0 {
		return fmt.Errorf("limit must not be negative")
	}

	cfg := engineConfig()
	if limit == 0 {
		limit = cfg.Recommend.Limit
	}

	store, err := library.NewStore(cfg.Library)
	if err != nil {
		return err
	}
	defer store.Close()

	books, err := store.ListByUser(context.Background(), userID)
	if err != nil {
		return err
	}
	if len(books) == 0 {
		fmt.Println("Shelf is empty; add books before asking for recommendations.")
		return nil
	}

	keywordsFlag, _ := cmd.Flags().GetString("keywords")
	keywords := splitList(keywordsFlag)
	jsonOutput, _ := cmd.Flags().GetBool("json")
	svc := newCatalog(cfg)

	if ml, _ := cmd.Flags().GetBool("ml"); ml {
		return recommendML(svc, cfg, books, keywords, limit, jsonOutput)
	}
	return recommendRuleBased(cmd, svc, books, keywords, limit, jsonOutput)
}

// recommendRuleBased mirrors the API's rule-based path: profile, generated
// queries, ownership filtering, first-volume preference.
func recommendRuleBased(cmd *cobra.Command, svc *catalog.Service, books []types.Book, keywords []string, limit int, jsonOutput bool) error {
	balance, _ := cmd.Flags().GetFloat64("balance")
	noFirst, _ := cmd.Flags().GetBool("no-first-volume")

	profile := analyze.Profile(books)
	queries := analyze.SmartQueries(profile, keywords, analyze.ContentTypeManga, balance)
	texts := make([]string, len(queries))
	for i, q := range queries {
		texts[i] = q.Text
	}

	out := svc.Gather(context.Background(), texts)
	kept := analyze.FilterOwned(out.Candidates, books)
	if len(kept) > limit {
		kept = kept[:limit]
	}
	if !noFirst {
		kept = analyze.PreferFirstVolumes(out.Candidates, kept)
	}
	return formatCandidates(kept, jsonOutput)
}

// recommendML runs discovery queries and ranks the pool by similarity to
// the shelf's text profile.
func recommendML(svc *catalog.Service, cfg types.EngineConfig, books []types.Book, keywords []string, limit int, jsonOutput bool) error {
	out := svc.Gather(context.Background(), analyze.DiscoveryQueries(keywords))
	if len(out.Candidates) == 0 {
		fmt.Println("No catalog results for the discovery queries.")
		return nil
	}

	texts := make([]string, 0, len(books))
	for _, b := range books {
		if t := b.Text(); t != "" {
			texts = append(texts, t)
		}
	}

	pool := analyze.FilterOwned(out.Candidates, books)
	rcfg := cfg.Recommend
	rcfg.Limit = limit
	return formatRecommended(recommend.Recommend(pool, texts, rcfg), jsonOutput)
}

// splitList splits a comma-separated flag value, trimming blanks.
func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
