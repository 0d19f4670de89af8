// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the bookshelf-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/bookshelf-engine/internal/catalog"
	"github.com/pdiddy/bookshelf-engine/internal/secrets"
	"github.com/pdiddy/bookshelf-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the bookshelf-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "bookshelf-engine",
	Short: "Personal bookshelf: catalog search, shelf storage, recommendations",
	Long: `bookshelf-engine manages a personal manga shelf. It searches the Google
Books catalog with series-aware ranking, keeps shelves in a local SQLite
database, and recommends unread series either through rule-based shelf
analysis or TF-IDF text similarity.

Each concern is a subcommand: search, library, recommend, analyze, and
serve (the HTTP API behind the bookshelf front end).`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./bookshelf-engine.yaml or ~/.config/bookshelf-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("bookshelf-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "bookshelf-engine"))
		}
	}

	viper.SetEnvPrefix("BOOKSHELF_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// engineConfig layers config file and environment values over the engine
// defaults, then fills the catalog API key from loaded secrets when the
// config left it empty.
func engineConfig() types.EngineConfig {
	cfg := types.DefaultEngineConfig()

	if v := viper.GetString("catalog.api_key"); v != "" {
		cfg.Catalog.APIKey = v
	}
	if v := viper.GetInt("catalog.max_results"); v > 0 {
		cfg.Catalog.MaxResults = v
	}
	if viper.IsSet("catalog.language_restrict") {
		cfg.Catalog.LanguageRestrict = viper.GetString("catalog.language_restrict")
	}
	if v := viper.GetString("library.db_path"); v != "" {
		cfg.Library.DBPath = v
	}
	if v := viper.GetInt("recommend.limit"); v > 0 {
		cfg.Recommend.Limit = v
	}
	if v := viper.GetString("server.addr"); v != "" {
		cfg.Server.Addr = v
	}
	if viper.IsSet("server.allowed_origins") {
		cfg.Server.AllowedOrigins = viper.GetStringSlice("server.allowed_origins")
	}
	if viper.IsSet("server.requests_per_minute") {
		cfg.Server.RequestsPerMinute = viper.GetInt("server.requests_per_minute")
	}
	if v := viper.GetString("server.log_level"); v != "" {
		cfg.Server.LogLevel = v
	}
	if v := viper.GetString("server.log_format"); v != "" {
		cfg.Server.LogFormat = v
	}

	cfg.Catalog.APIKey = secretDefault(secrets.KeyGoogleBooks, cfg.Catalog.APIKey)
	return cfg
}

// newCatalog builds the catalog service the CLI commands query. Degraded
// catalog queries warn on stderr and yield empty pages.
func newCatalog(cfg types.EngineConfig) *catalog.Service {
	backend := catalog.NewGoogleBooksBackend(nil, cfg.Catalog)
	return catalog.NewService(backend, cfg.Catalog, os.Stderr)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
