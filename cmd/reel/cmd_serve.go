package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/reelrec/reel/internal/config"
	"github.com/reelrec/reel/internal/engine"
	"github.com/reelrec/reel/internal/posters"
	"github.com/reelrec/reel/internal/server"
	"github.com/reelrec/reel/internal/store"
	"github.com/reelrec/reel/internal/vectorindex"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve recommendations over HTTP",
		Long: `Serve rebuilds the in-memory model from the persisted catalog and
answers recommendation queries over HTTP until interrupted.

Endpoints:
  GET  /health
  GET  /search?q=<substring>
  POST /recommend  {"title": "...", "k": 5}
  GET  /similar?title=<title>&k=5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")

			dir, err := dataDir(cmd)
			if err != nil {
				return err
			}

			cfg, err := config.Load(dir)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			log := zerolog.New(os.Stderr).With().Timestamp().Logger()

			st, err := store.Open(dir)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer st.Close()

			movies, err := st.Movies(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load catalog: %w", err)
			}
			if len(movies) == 0 {
				return fmt.Errorf("no model built yet. Run 'reel build' first")
			}

			start := time.Now()
			model, err := engine.Build(movies, cfg.Engine())
			if err != nil {
				return fmt.Errorf("failed to build model: %w", err)
			}
			log.Info().
				Int("movies", model.Len()).
				Dur("elapsed", time.Since(start)).
				Msg("model built")

			// The index is derived from the model on every startup; a
			// file persisted by a previous run may contain titles that
			// have since left the catalog.
			if err := vectorindex.ResetSaved(dir); err != nil {
				return fmt.Errorf("failed to reset vector index: %w", err)
			}
			idx := vectorindex.NewTiered(vectorindex.TieredConfig{
				HNSW: vectorindex.HNSWConfig{Dir: dir},
			})
			defer idx.Close()
			for i := 0; i < model.Len(); i++ {
				vec := model.Vector(i)
				v32 := make([]float32, len(vec))
				for j, x := range vec {
					v32[j] = float32(x)
				}
				if err := idx.Add(cmd.Context(), model.Movie(i).Title, v32); err != nil {
					return fmt.Errorf("failed to index %q: %w", model.Movie(i).Title, err)
				}
			}

			var posterClient *posters.Client
			if cfg.Posters.APIKey != "" {
				var opts []posters.Option
				if cfg.Posters.BaseURL != "" {
					opts = append(opts, posters.WithBaseURL(cfg.Posters.BaseURL))
				}
				posterClient = posters.NewClient(cfg.Posters.APIKey, opts...)
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           server.New(model, idx, posterClient, log).Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("addr", addr).Msg("listening")
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			case <-ctx.Done():
				log.Info().Msg("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					return fmt.Errorf("shutdown: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default from config, :8080)")

	return cmd
}
