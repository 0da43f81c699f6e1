package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reelrec/reel/internal/config"
	"github.com/reelrec/reel/internal/engine"
	"github.com/reelrec/reel/internal/posters"
	"github.com/reelrec/reel/internal/store"
)

func newRecommendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend <title>",
		Short: "Recommend movies similar to the given title",
		Long: `Recommend answers from the persisted model. Title matching is
case-insensitive and whitespace-tolerant.

Example:
  reel recommend "The Dark Knight" -k 10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := args[0]
			k, _ := cmd.Flags().GetInt("k")

			dir, err := dataDir(cmd)
			if err != nil {
				return err
			}

			cfg, err := config.Load(dir)
			if err != nil {
				return err
			}
			if k <= 0 {
				k = cfg.TopKDefault
			}

			st, err := store.Open(dir)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer st.Close()

			recs, err := st.Neighbors(cmd.Context(), title, k)
			if err != nil {
				if errors.Is(err, store.ErrNoModel) {
					return fmt.Errorf("no model built yet. Run 'reel build' first")
				}
				if errors.Is(err, engine.ErrTitleNotFound) {
					return fmt.Errorf("title not found: %q", title)
				}
				return err
			}

			if cfg.Posters.APIKey != "" {
				var opts []posters.Option
				if cfg.Posters.BaseURL != "" {
					opts = append(opts, posters.WithBaseURL(cfg.Posters.BaseURL))
				}
				client := posters.NewClient(cfg.Posters.APIKey, opts...)
				for i := range recs {
					recs[i].PosterURL = client.PosterURL(cmd.Context(), recs[i].MovieID)
				}
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(os.Stdout).Encode(map[string]any{
					"title":           title,
					"recommendations": recs,
				})
			} else {
				if len(recs) == 0 {
					fmt.Printf("No recommendations for %q (catalog too small).\n", title)
					return nil
				}
				fmt.Printf("Movies similar to %q:\n\n", title)
				for i, rec := range recs {
					fmt.Printf("%d. %s (score %.3f)\n", i+1, rec.Title, rec.Score)
					if rec.PosterURL != "" {
						fmt.Printf("   %s\n", rec.PosterURL)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().IntP("k", "k", 0, "Number of recommendations (default from config)")

	return cmd
}
