package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/reelrec/reel/internal/catalog"
	"github.com/reelrec/reel/internal/config"
	"github.com/reelrec/reel/internal/engine"
	"github.com/reelrec/reel/internal/store"
)

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the recommendation model from a catalog CSV",
		Long: `Build loads a movie catalog, vectorizes each movie's metadata, and
precomputes the pairwise similarity matrix. The result is persisted so
'reel recommend' answers without rebuilding.

Rebuilding replaces the previous model entirely. A changed catalog
always requires a rebuild; there is no incremental update.

Example:
  reel build --csv movies.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			csvPath, _ := cmd.Flags().GetString("csv")
			root, _ := cmd.Flags().GetString("root")

			dir, err := store.EnsureDataDir(root)
			if err != nil {
				return fmt.Errorf("failed to create data directory: %w", err)
			}

			cfg, err := config.Load(dir)
			if err != nil {
				return err
			}

			start := time.Now()
			movies, loadStats, err := catalog.Load(csvPath, catalog.Options{CastLimit: cfg.CastLimit})
			if err != nil {
				return fmt.Errorf("failed to load catalog: %w", err)
			}

			model, err := engine.Build(movies, cfg.Engine())
			if err != nil {
				return fmt.Errorf("failed to build model: %w", err)
			}

			st, err := store.Open(dir)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer st.Close()

			if err := st.SaveModel(cmd.Context(), model, cfg.MaxNeighbors); err != nil {
				return fmt.Errorf("failed to save model: %w", err)
			}

			elapsed := time.Since(start)
			buildStats := model.Stats()

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(os.Stdout).Encode(map[string]any{
					"status":           "built",
					"movies":           buildStats.Movies,
					"vocabulary":       buildStats.VocabularyLen,
					"skipped_rows":     loadStats.SkippedRows,
					"duplicate_titles": loadStats.DuplicateTitles,
					"missing_fields":   buildStats.MissingFields,
					"empty_movies":     buildStats.EmptyMovies,
					"elapsed_ms":       elapsed.Milliseconds(),
				})
			} else {
				fmt.Printf("Built model from %s in %s\n", csvPath, elapsed.Round(time.Millisecond))
				fmt.Printf("  Movies:     %d\n", buildStats.Movies)
				fmt.Printf("  Vocabulary: %d tokens\n", buildStats.VocabularyLen)
				if loadStats.SkippedRows > 0 {
					fmt.Printf("  Skipped:    %d rows without a title\n", loadStats.SkippedRows)
				}
				if loadStats.DuplicateTitles > 0 {
					fmt.Printf("  Duplicates: %d titles dropped (first occurrence kept)\n", loadStats.DuplicateTitles)
				}
				if buildStats.MissingFields > 0 {
					fmt.Printf("  Missing:    %d metadata fields treated as empty\n", buildStats.MissingFields)
				}
				if buildStats.EmptyMovies > 0 {
					fmt.Printf("  Empty:      %d movies with no metadata at all\n", buildStats.EmptyMovies)
				}
			}
			return nil
		},
	}

	cmd.Flags().String("csv", "", "Path to the catalog CSV file (required)")
	cmd.MarkFlagRequired("csv")

	return cmd
}
