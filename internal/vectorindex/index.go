// Package vectorindex provides nearest neighbor search over movie count
// vectors for the serving path. The index is populated once from a
// built model and then only searched; there is no incremental update —
// a corpus change rebuilds the model and the index with it.
package vectorindex

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
)

// Result pairs a movie title with its cosine similarity score.
type Result struct {
	Title string
	Score float64 // cosine similarity in [0, 1] for count vectors, higher = more similar
}

// Index provides top-K nearest neighbor search over movie vectors.
// Implementations must be safe for concurrent searches from multiple
// goroutines.
type Index interface {
	// Add inserts or replaces the vector for the given movie title.
	Add(ctx context.Context, title string, vector []float32) error

	// Search returns the topK most similar vectors to query, sorted by
	// descending score. Returns fewer than topK results if the index
	// contains fewer vectors.
	Search(ctx context.Context, query []float32, topK int) ([]Result, error)

	// Len returns the number of vectors currently in the index.
	Len() int

	// Save persists the index state to its backing store.
	// Implementations without persistence should no-op.
	Save(ctx context.Context) error

	// Close releases resources. Implementations should save before closing.
	Close() error
}

// ResetSaved removes any persisted index file in dir. Callers that
// rebuild the index from scratch must reset first: NewHNSW loads an
// existing file, so a graph persisted by a previous run would resurface
// titles that are no longer in the catalog. Missing file is not an
// error.
func ResetSaved(dir string) error {
	err := os.Remove(filepath.Join(dir, hnswFileName))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// isZero32 reports whether every component of v is zero. A zero vector
// has no direction and is similar to nothing.
func isZero32(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// cosine32 is the similarity used by the brute-force index. Zero
// vectors score 0, matching the similarity engine's zero-vector rule.
func cosine32(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
