//go:build !windows

package vectorindex

import (
	"context"
	"math"
	"testing"
)

func TestHNSW_AddAndSearch(t *testing.T) {
	idx, err := NewHNSW(HNSWConfig{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer idx.Close()

	ctx := context.Background()
	if err := idx.Add(ctx, "Heat", []float32{1, 1, 0, 0}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := idx.Add(ctx, "Ronin", []float32{1, 1, 1, 0}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := idx.Add(ctx, "Amelie", []float32{0, 0, 0, 1}); err != nil {
		t.Fatalf("add: %v", err)
	}

	results, err := idx.Search(ctx, []float32{1, 1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Title != "Heat" {
		t.Errorf("closest match = %q, want Heat", results[0].Title)
	}
	if results[0].Score < results[1].Score {
		t.Errorf("results not sorted by score: %v", results)
	}
}

func TestHNSW_ReplaceRebuildsGraph(t *testing.T) {
	idx, err := NewHNSW(HNSWConfig{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer idx.Close()

	ctx := context.Background()
	if err := idx.Add(ctx, "Heat", []float32{1, 0}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := idx.Add(ctx, "Heat", []float32{0, 1}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if idx.Len() != 1 {
		t.Fatalf("expected 1 vector after replace, got %d", idx.Len())
	}

	results, err := idx.Search(ctx, []float32{0, 1}, 1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if results[0].Score < 0.99 {
		t.Errorf("replaced vector should match query, score = %f", results[0].Score)
	}
}

func TestHNSW_SaveAndReload(t *testing.T) {
	dir := t.TempDir()

	idx, err := NewHNSW(HNSWConfig{Dir: dir})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	ctx := context.Background()
	if err := idx.Add(ctx, "Heat", []float32{1, 0, 0}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := idx.Add(ctx, "Ronin", []float32{0, 1, 0}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reloaded, err := NewHNSW(HNSWConfig{Dir: dir})
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	defer reloaded.Close()

	if reloaded.Len() != 2 {
		t.Fatalf("reloaded len = %d, want 2", reloaded.Len())
	}
	results, err := reloaded.Search(ctx, []float32{1, 0, 0}, 1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if results[0].Title != "Heat" {
		t.Errorf("closest after reload = %q, want Heat", results[0].Title)
	}
}

func TestHNSW_ZeroQueryMatchesNothing(t *testing.T) {
	idx, err := NewHNSW(HNSWConfig{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer idx.Close()

	ctx := context.Background()
	if err := idx.Add(ctx, "Heat", []float32{1, 0}); err != nil {
		t.Fatalf("add: %v", err)
	}

	results, err := idx.Search(ctx, []float32{0, 0}, 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("zero query should match nothing, got %v", results)
	}
}

func TestHNSW_StoredZeroVectorScoresZero(t *testing.T) {
	idx, err := NewHNSW(HNSWConfig{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer idx.Close()

	ctx := context.Background()
	if err := idx.Add(ctx, "Heat", []float32{1, 0}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := idx.Add(ctx, "Blank", []float32{0, 0}); err != nil {
		t.Fatalf("add: %v", err)
	}

	results, err := idx.Search(ctx, []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	for _, res := range results {
		if math.IsNaN(res.Score) {
			t.Errorf("score for %q is NaN", res.Title)
		}
		if res.Title == "Blank" && res.Score != 0 {
			t.Errorf("zero vector score = %f, want 0", res.Score)
		}
	}
}

func TestHNSW_EmptyIndex(t *testing.T) {
	idx, err := NewHNSW(HNSWConfig{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer idx.Close()

	results, err := idx.Search(context.Background(), []float32{1, 0}, 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results from empty index, got %d", len(results))
	}
}
