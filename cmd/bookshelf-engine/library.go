// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bookshelf-engine/internal/library"
	"github.com/pdiddy/bookshelf-engine/pkg/types"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Manage shelves in the local library store",
	Long: `Library manages the SQLite shelf store directly: add and remove books,
list a shelf, search it with full-text queries, or export it to YAML or
JSON.`,
}

// --- add subcommand ---

var libraryAddCmd = &cobra.Command{
	Use:   "add [title...]",
	Short: "Add a book to a shelf",
	RunE:  runLibraryAdd,
}

func runLibraryAdd(cmd *cobra.Command, args []string) error {
	user, err := requireUser(cmd)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("provide the book title")
	}

	authors, _ := cmd.Flags().GetString("authors")
	description, _ := cmd.Flags().GetString("description")
	rating, _ := cmd.Flags().GetFloat64("rating")
	categories, _ := cmd.Flags().GetString("categories")

	store, err := openShelf(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	added, err := store.Add(context.Background(), types.Book{
		UserID:      user,
		Title:       strings.Join(args, " "),
		Authors:     splitList(authors),
		Description: description,
		Rating:      rating,
		Categories:  splitList(categories),
	})
	if err != nil {
		return err
	}

	fmt.Printf("Added %q to %s's shelf (%s)\n", added.Title, user, added.ID)
	return nil
}

// --- list subcommand ---

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a shelf, newest first",
	RunE:  runLibraryList,
}

func runLibraryList(cmd *cobra.Command, args []string) error {
	user, err := requireUser(cmd)
	if err != nil {
		return err
	}

	store, err := openShelf(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	books, err := store.ListByUser(context.Background(), user)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatBooks(books, jsonOutput)
}

// --- remove subcommand ---

var libraryRemoveCmd = &cobra.Command{
	Use:   "remove [book-id]",
	Short: "Remove a book from the store by its id",
	RunE:  runLibraryRemove,
}

func runLibraryRemove(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("provide exactly one book id")
	}

	store, err := openShelf(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Delete(context.Background(), args[0]); err != nil {
		return err
	}
	fmt.Printf("Removed %s\n", args[0])
	return nil
}

// --- search subcommand ---

var librarySearchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Full-text search within a shelf",
	RunE:  runLibrarySearch,
}

func runLibrarySearch(cmd *cobra.Command, args []string) error {
	user, err := requireUser(cmd)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("provide a search query")
	}

	store, err := openShelf(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	books, err := store.SearchShelf(context.Background(), user, strings.Join(args, " "))
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatBooks(books, jsonOutput)
}

// --- export subcommand ---

var libraryExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a shelf to YAML or JSON",
	Long: `Export writes a shelf to stdout, or to --output when given. The
format flag picks YAML (the default) or JSON.`,
	RunE: runLibraryExport,
}

func runLibraryExport(cmd *cobra.Command, args []string) error {
	user, err := requireUser(cmd)
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	store, err := openShelf(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "yaml", "":
		err = store.ExportYAML(context.Background(), user, w)
	case "json":
		err = store.ExportJSON(context.Background(), user, w)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}

	if output != "" {
		fmt.Printf("Exported %s's shelf to %s\n", user, output)
	}
	return nil
}

// --- shared helpers ---

func requireUser(cmd *cobra.Command) (string, error) {
	user, _ := cmd.Flags().GetString("user")
	if user == "" {
		return "", fmt.Errorf("provide the shelf owner with --user")
	}
	return user, nil
}

// openShelf opens the configured store, honoring a --db override.
func openShelf(cmd *cobra.Command) (*library.Store, error) {
	cfg := engineConfig()
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.Library.DBPath = db
	}
	return library.NewStore(cfg.Library)
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	libraryCmd.PersistentFlags().String("user", "", "shelf owner")
	libraryCmd.PersistentFlags().String("db", "", "sqlite database path (default from config)")

	// Add flags.
	libraryAddCmd.Flags().String("authors", "", "comma-separated author names")
	libraryAddCmd.Flags().String("description", "", "synopsis or notes")
	libraryAddCmd.Flags().Float64("rating", 0, "your rating on a 0-5 scale")
	libraryAddCmd.Flags().String("categories", "", "comma-separated category labels")

	// Output flags.
	libraryListCmd.Flags().Bool("json", false, "output the shelf as JSON")
	librarySearchCmd.Flags().Bool("json", false, "output matches as JSON")

	// Export flags.
	libraryExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	libraryExportCmd.Flags().String("output", "", "write to a file instead of stdout")

	// Wire subcommands.
	libraryCmd.AddCommand(libraryAddCmd)
	libraryCmd.AddCommand(libraryListCmd)
	libraryCmd.AddCommand(libraryRemoveCmd)
	libraryCmd.AddCommand(librarySearchCmd)
	libraryCmd.AddCommand(libraryExportCmd)

	rootCmd.AddCommand(libraryCmd)
}
