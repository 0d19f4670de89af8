package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bookshelf-engine/internal/analyze"
	"github.com/pdiddy/bookshelf-engine/internal/library"
	"github.com/pdiddy/bookshelf-engine/internal/recommend"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [user]",
	Short: "Show a shelf's inferred profile and strongest terms",
	Long: `Analyze prints what the engine reads out of a shelf: the inferred
genres and favorite authors driving rule-based queries, and the TF-IDF
term weights driving similarity recommendations.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().Int("top", 10, "number of top terms to show")
	analyzeCmd.Flags().Bool("json", false, "output the analysis as JSON")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("provide exactly one user id")
	}
	userID := args[0]

	cfg := engineConfig()
	store, err := library.NewStore(cfg.Library)
	if err != nil {
		return err
	}
	defer store.Close()

	books, err := store.ListByUser(context.Background(), userID)
	if err != nil {
		return err
	}

	texts := make([]string, 0, len(books))
	for _, b := range books {
		if t := b.Text(); t != "" {
			texts = append(texts, t)
		}
	}

	top, _ := cmd.Flags().GetInt("top")
	profile := analyze.Profile(books)
	analysis := recommend.Analyze(texts, nil, top)

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return printJSON(struct {
			UserID   string                 `json:"user_id"`
			Profile  analyze.LibraryProfile `json:"profile"`
			Analysis recommend.Analysis     `json:"analysis"`
		}{UserID: userID, Profile: profile, Analysis: analysis})
	}

	fmt.Printf("Shelf: %d books, %d with usable text\n", len(books), analysis.LibraryDocs)
	fmt.Printf("Genres:  %s\n", orNone(strings.Join(profile.Genres, ", ")))
	fmt.Printf("Authors: %s\n", orNone(strings.Join(profile.Authors, ", ")))

	if len(analysis.TopTerms) == 0 {
		fmt.Println("\nNo profile terms; the shelf has no usable text.")
		return nil
	}

	fmt.Printf("\nTop terms (%s, %d unique):\n", analysis.Algorithm, analysis.UniqueTerms)
	for _, term := range analysis.TopTerms {
		fmt.Printf("  %-16s %.4f\n", term.Term, term.Weight)
	}
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
