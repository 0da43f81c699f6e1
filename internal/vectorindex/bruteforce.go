package vectorindex

import (
	"context"
	"sort"
	"sync"
)

// BruteForce performs exhaustive nearest neighbor search using cosine
// similarity. Exact results, O(M·V) per query; the right choice for
// small and medium catalogs.
type BruteForce struct {
	mu      sync.RWMutex
	vectors map[string][]float32
}

// NewBruteForce creates an empty BruteForce index.
func NewBruteForce() *BruteForce {
	return &BruteForce{
		vectors: make(map[string][]float32),
	}
}

// Add inserts or replaces the vector for the given movie title.
func (b *BruteForce) Add(_ context.Context, title string, vector []float32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	cp := make([]float32, len(vector))
	copy(cp, vector)
	b.vectors[title] = cp
	return nil
}

// Search returns the topK most similar vectors to query, sorted by
// descending score with lexicographic title tie-break for stable output.
func (b *BruteForce) Search(_ context.Context, query []float32, topK int) ([]Result, error) {
	if len(query) == 0 || topK <= 0 {
		return nil, nil
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.vectors) == 0 {
		return nil, nil
	}

	results := make([]Result, 0, len(b.vectors))
	for title, vec := range b.vectors {
		results = append(results, Result{
			Title: title,
			Score: cosine32(query, vec),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Title < results[j].Title
	})

	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK], nil
}

// Len returns the number of vectors in the index.
func (b *BruteForce) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.vectors)
}

// Save is a no-op for the in-memory brute-force index.
func (b *BruteForce) Save(_ context.Context) error {
	return nil
}

// Close is a no-op for the in-memory brute-force index.
func (b *BruteForce) Close() error {
	return nil
}

var _ Index = (*BruteForce)(nil)
