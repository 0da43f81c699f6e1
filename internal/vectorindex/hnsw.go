//go:build !windows

package vectorindex

import (
	"context"
	"math"
	"path/filepath"
	"sync"

	"github.com/coder/hnsw"
)

const hnswFileName = "hnsw.bin"

// HNSW performs approximate nearest neighbor search using a
// Hierarchical Navigable Small World graph backed by github.com/coder/hnsw.
// Approximate results in sublinear time; worth it for large catalogs
// where brute force gets slow.
//
// Replacing an existing title rebuilds the graph: hnsw.Graph.Delete can
// leave dangling neighbor pointers that panic during Search, so a
// shadow map of all vectors is kept for safe reconstruction.
type HNSW struct {
	mu      sync.RWMutex
	graph   *hnsw.SavedGraph[string]
	vectors map[string][]float32
}

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

func newHNSWGraph(cfg HNSWConfig, path string, nodes []hnsw.Node[string]) *hnsw.SavedGraph[string] {
	g := hnsw.NewGraph[string]()
	g.M = cfg.M
	g.EfSearch = cfg.EfSearch
	g.Ml = cfg.Ml
	g.Distance = hnsw.CosineDistance
	if len(nodes) > 0 {
		g.Add(nodes...)
	}
	return &hnsw.SavedGraph[string]{Graph: g, Path: path}
}

// NewHNSW creates an HNSW index. If cfg.Dir is non-empty, the graph is
// loaded from (or created at) that directory and persisted on Save.
func NewHNSW(cfg HNSWConfig) (*HNSW, error) {
	cfg = cfg.withDefaults()

	var (
		sg   *hnsw.SavedGraph[string]
		path string
	)

	if cfg.Dir != "" {
		path = filepath.Join(cfg.Dir, hnswFileName)
		loaded, err := hnsw.LoadSavedGraph[string](path)
		if err != nil {
			return nil, err
		}
		sg = loaded
		sg.M = cfg.M
		sg.EfSearch = cfg.EfSearch
		sg.Ml = cfg.Ml
		sg.Distance = hnsw.CosineDistance
	} else {
		sg = newHNSWGraph(cfg, "", nil)
	}

	// Rebuild the shadow map from a loaded graph. The library exposes
	// no iterator, so probe with a zero vector and the full count.
	vecs := make(map[string][]float32, sg.Len())
	if sg.Len() > 0 {
		dims := sg.Dims()
		if dims > 0 {
			probe := make([]float32, dims)
			for _, n := range sg.Search(probe, sg.Len()) {
				vecs[n.Key] = n.Value
			}
		}
	}

	return &HNSW{graph: sg, vectors: vecs}, nil
}

// rebuild constructs a fresh graph from the shadow map.
// Caller must hold h.mu for writing.
func (h *HNSW) rebuild() {
	nodes := make([]hnsw.Node[string], 0, len(h.vectors))
	for title, vec := range h.vectors {
		nodes = append(nodes, hnsw.MakeNode(title, vec))
	}
	cfg := HNSWConfig{M: h.graph.M, EfSearch: h.graph.EfSearch, Ml: h.graph.Ml}
	h.graph = newHNSWGraph(cfg, h.graph.Path, nodes)
}

// Add inserts or replaces the vector for the given movie title.
func (h *HNSW) Add(_ context.Context, title string, vector []float32) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	cp := make([]float32, len(vector))
	copy(cp, vector)

	_, existed := h.vectors[title]
	h.vectors[title] = cp

	if existed {
		h.rebuild()
	} else {
		h.graph.Add(hnsw.MakeNode(title, cp))
	}

	return nil
}

// Search returns the topK most similar vectors to query, sorted by
// descending score. Score is 1.0 - CosineDistance(query, result).
// A zero query matches nothing, same as the zero-vector rule in
// cosine32.
func (h *HNSW) Search(_ context.Context, query []float32, topK int) ([]Result, error) {
	if len(query) == 0 || topK <= 0 || isZero32(query) {
		return nil, nil
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.graph.Len() == 0 {
		return nil, nil
	}

	nodes := h.graph.Search(query, topK)

	results := make([]Result, 0, len(nodes))
	for _, n := range nodes {
		// CosineDistance divides by the norms, so a stored zero vector
		// yields NaN. Clamp to 0 per the zero-vector rule.
		score := 1.0 - float64(hnsw.CosineDistance(query, n.Value))
		if math.IsNaN(score) {
			score = 0
		}
		results = append(results, Result{
			Title: n.Key,
			Score: score,
		})
	}
	return results, nil
}

// Len returns the number of vectors in the index.
func (h *HNSW) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.vectors)
}

// Save persists the graph to disk. No-op if Dir was empty at creation time.
func (h *HNSW) Save(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.graph.Path == "" {
		return nil
	}
	return h.graph.Save()
}

// Close saves and releases resources.
func (h *HNSW) Close() error {
	return h.Save(context.Background())
}

var _ Index = (*HNSW)(nil)
