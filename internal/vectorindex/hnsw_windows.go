//go:build windows

package vectorindex

import "context"

const hnswFileName = "hnsw.bin"

// HNSWConfig holds the graph parameters.
type HNSWConfig struct {
	// Dir is the directory where the graph is persisted.
	// If empty, the graph is in-memory only and Save is a no-op.
	Dir string

	// M is the maximum number of neighbors per node. Default: 16.
	M int

	// EfSearch is the number of candidates considered during search. Default: 100.
	EfSearch int

	// Ml is the level generation factor. Default: 0.25.
	Ml float64
}

func (c *HNSWConfig) withDefaults() HNSWConfig {
	out := *c
	if out.M == 0 {
		out.M = 16
	}
	if out.EfSearch == 0 {
		out.EfSearch = 100
	}
	if out.Ml == 0 {
		out.Ml = 0.25
	}
	return out
}

// HNSW on Windows falls back to BruteForce. The coder/hnsw library
// depends on google/renameio which is not available on Windows.
type HNSW struct {
	bf *BruteForce
}

// NewHNSW creates a BruteForce-backed fallback on Windows.
func NewHNSW(_ HNSWConfig) (*HNSW, error) {
	return &HNSW{bf: NewBruteForce()}, nil
}

func (h *HNSW) Add(ctx context.Context, title string, vector []float32) error {
	return h.bf.Add(ctx, title, vector)
}

func (h *HNSW) Search(ctx context.Context, query []float32, topK int) ([]Result, error) {
	return h.bf.Search(ctx, query, topK)
}

func (h *HNSW) Len() int {
	return h.bf.Len()
}

// Save is a no-op on Windows (no HNSW persistence).
func (h *HNSW) Save(_ context.Context) error {
	return nil
}

// Close is a no-op on Windows.
func (h *HNSW) Close() error {
	return nil
}

var _ Index = (*HNSW)(nil)
