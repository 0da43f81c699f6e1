package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/reelrec/reel/internal/config"
	"github.com/reelrec/reel/internal/store"
)

var version = "0.1.0-dev"

const defaultConfigYAML = `# Reel configuration
# All fields optional; defaults shown.

# vocabulary_size: 5000
# metadata_fields: [genres, cast, directors, keywords]
# top_k_default: 5
# cast_limit: 3
# max_neighbors: 50

# server:
#   addr: ":8080"

# posters:
#   api_key: ""    # TMDB API key; empty disables poster lookups
`

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "reel",
		Short: "Reel - content-based movie recommendations",
		Long: `reel builds a content-based recommendation model from a movie catalog.

It combines genre, cast, director, and keyword metadata into count
vectors, precomputes pairwise cosine similarity, and answers top-K
"movies like this one" queries from the result.`,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("root", ".", "Project root directory")

	rootCmd.AddCommand(
		newVersionCmd(),
		newInitCmd(),
		newBuildCmd(),
		newRecommendCmd(),
		newServeCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(os.Stdout).Encode(map[string]string{"version": version})
			} else {
				fmt.Printf("reel version %s\n", version)
			}
		},
	}
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the data directory in the project root",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")

			dir, err := store.EnsureDataDir(root)
			if err != nil {
				return fmt.Errorf("failed to create %s directory: %w", store.DataDirName, err)
			}
			if err := store.EnsureGitignore(dir); err != nil {
				return fmt.Errorf("failed to write .gitignore: %w", err)
			}

			// Seed a commented default config on first init.
			cfgPath := filepath.Join(dir, config.FileName)
			if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
				if err := os.WriteFile(cfgPath, []byte(defaultConfigYAML), 0644); err != nil {
					return fmt.Errorf("failed to create %s: %w", config.FileName, err)
				}
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(os.Stdout).Encode(map[string]string{
					"status": "initialized",
					"path":   dir,
				})
			} else {
				fmt.Printf("Initialized %s/ in %s\n", store.DataDirName, root)
			}
			return nil
		},
	}
}

// dataDir resolves the data directory for a command, failing with a
// hint when init has not been run.
func dataDir(cmd *cobra.Command) (string, error) {
	root, _ := cmd.Flags().GetString("root")
	dir := store.DataPath(root)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return "", fmt.Errorf("%s not initialized. Run 'reel init' first", store.DataDirName)
	}
	return dir, nil
}
