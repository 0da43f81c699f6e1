package vectorindex

import (
	"context"
	"fmt"
	"sync"
)

// DefaultTierThreshold is the catalog size at which Tiered promotes
// from brute-force to HNSW search.
const DefaultTierThreshold = 1000

// Tiered starts with exact brute-force search and promotes to an HNSW
// graph once the catalog crosses a size threshold. Small catalogs get
// exact results with zero graph overhead; large ones get sublinear
// search.
type Tiered struct {
	mu        sync.RWMutex
	active    Index
	bf        *BruteForce
	threshold int
	hnswCfg   HNSWConfig
	promoted  bool
}

// TieredConfig configures a Tiered index.
type TieredConfig struct {
	// Threshold is the vector count that triggers promotion to HNSW.
	// Default: DefaultTierThreshold.
	Threshold int

	// HNSW configures the graph created at promotion time.
	HNSW HNSWConfig
}

// NewTiered creates a Tiered index in its brute-force tier.
func NewTiered(cfg TieredConfig) *Tiered {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultTierThreshold
	}
	bf := NewBruteForce()
	return &Tiered{
		active:    bf,
		bf:        bf,
		threshold: cfg.Threshold,
		hnswCfg:   cfg.HNSW,
	}
}

// promote copies every vector from the brute-force tier into a fresh
// HNSW graph. Caller must hold t.mu for writing.
func (t *Tiered) promote(ctx context.Context) error {
	h, err := NewHNSW(t.hnswCfg)
	if err != nil {
		return fmt.Errorf("creating hnsw tier: %w", err)
	}

	t.bf.mu.RLock()
	defer t.bf.mu.RUnlock()
	for title, vec := range t.bf.vectors {
		if err := h.Add(ctx, title, vec); err != nil {
			return fmt.Errorf("migrating %q to hnsw tier: %w", title, err)
		}
	}

	t.active = h
	t.promoted = true
	return nil
}

// Add inserts or replaces the vector for the given movie title,
// promoting to HNSW when the catalog crosses the threshold.
func (t *Tiered) Add(ctx context.Context, title string, vector []float32) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.active.Add(ctx, title, vector); err != nil {
		return err
	}
	if !t.promoted && t.active.Len() >= t.threshold {
		if err := t.promote(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Search delegates to the active tier.
func (t *Tiered) Search(ctx context.Context, query []float32, topK int) ([]Result, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.active.Search(ctx, query, topK)
}

// Len returns the number of vectors in the active tier.
func (t *Tiered) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.active.Len()
}

// Promoted reports whether the index has switched to its HNSW tier.
func (t *Tiered) Promoted() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.promoted
}

// Save persists the active tier.
func (t *Tiered) Save(ctx context.Context) error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.active.Save(ctx)
}

// Close closes the active tier.
func (t *Tiered) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active.Close()
}

var _ Index = (*Tiered)(nil)
