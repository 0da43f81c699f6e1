package engine

import (
	"errors"
	"reflect"
	"testing"

	"github.com/reelrec/reel/internal/models"
)

func testCorpus() []models.Movie {
	return []models.Movie{
		{ID: 1, Title: "Title A", Genres: []string{"Action"}, Cast: []string{"Tom Hanks"}},
		{ID: 2, Title: "Title B", Genres: []string{"Action"}, Cast: []string{"Tom Hanks"}},
		{ID: 3, Title: "Title C", Genres: []string{"Drama"}, Cast: []string{"Jane Doe"}},
	}
}

func TestBuild_EmptyCorpus(t *testing.T) {
	_, err := Build(nil, Config{})
	if err == nil {
		t.Fatal("expected error for empty corpus")
	}
}

func TestRecommend_RankedByDescendingSimilarity(t *testing.T) {
	m, err := Build(testCorpus(), Config{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	recs, err := m.Recommend("Title A", 2)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 results, got %d", len(recs))
	}
	if recs[0].Title != "Title B" || recs[1].Title != "Title C" {
		t.Errorf("order = [%s, %s], want [Title B, Title C]", recs[0].Title, recs[1].Title)
	}
	if recs[0].Score <= recs[1].Score {
		t.Errorf("Title B score %v not strictly greater than Title C score %v", recs[0].Score, recs[1].Score)
	}
}

func TestRecommend_NeverReturnsQueryTitle(t *testing.T) {
	m, err := Build(testCorpus(), Config{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	recs, err := m.Recommend("Title B", 10)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	for _, r := range recs {
		if r.Title == "Title B" {
			t.Error("query title returned in its own results")
		}
	}
}

func TestRecommend_KExceedsCorpus(t *testing.T) {
	m, err := Build(testCorpus(), Config{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	recs, err := m.Recommend("Title A", 100)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	// min(K, M-1)
	if len(recs) != 2 {
		t.Errorf("expected 2 results, got %d", len(recs))
	}
}

func TestRecommend_TitleNotFound(t *testing.T) {
	m, err := Build(testCorpus(), Config{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	_, err = m.Recommend("No Such Movie", 5)
	if !errors.Is(err, ErrTitleNotFound) {
		t.Errorf("expected ErrTitleNotFound, got %v", err)
	}
}

func TestRecommend_CaseInsensitiveLookup(t *testing.T) {
	m, err := Build(testCorpus(), Config{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if _, err := m.Recommend("  title   a ", 1); err != nil {
		t.Errorf("normalized lookup failed: %v", err)
	}
}

func TestRecommend_TieBreakAscendingRowIndex(t *testing.T) {
	corpus := []models.Movie{
		{ID: 1, Title: "Query", Genres: []string{"Action"}},
		{ID: 2, Title: "Twin One", Genres: []string{"Action"}},
		{ID: 3, Title: "Twin Two", Genres: []string{"Action"}},
	}
	m, err := Build(corpus, Config{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	recs, err := m.Recommend("Query", 2)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	// Equal scores break by ascending row index.
	if recs[0].Title != "Twin One" || recs[1].Title != "Twin Two" {
		t.Errorf("tie-break order = [%s, %s], want [Twin One, Twin Two]", recs[0].Title, recs[1].Title)
	}
}

func TestBuild_EmptyMetadataYieldsZeroSimilarity(t *testing.T) {
	corpus := []models.Movie{
		{ID: 1, Title: "Normal", Genres: []string{"Action"}},
		{ID: 2, Title: "Bare"},
	}
	m, err := Build(corpus, Config{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if m.Similarity(1, 0) != 0 || m.Similarity(0, 1) != 0 {
		t.Errorf("zero-vector movie should score 0 against others")
	}
	if m.Similarity(1, 1) != 0 {
		t.Errorf("zero-vector movie should score 0 against itself, got %v", m.Similarity(1, 1))
	}
	if m.Stats().EmptyMovies != 1 {
		t.Errorf("EmptyMovies = %d, want 1", m.Stats().EmptyMovies)
	}
}

func TestBuild_DuplicateTitleFirstOccurrenceWins(t *testing.T) {
	corpus := []models.Movie{
		{ID: 1, Title: "Solaris", Genres: []string{"Drama"}},
		{ID: 2, Title: "SOLARIS", Genres: []string{"Horror"}},
		{ID: 3, Title: "Other", Genres: []string{"Drama"}},
	}
	m, err := Build(corpus, Config{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	row, err := m.Lookup("solaris")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if row != 0 {
		t.Errorf("row = %d, want 0 (first occurrence)", row)
	}
}

func TestBuild_Reproducible(t *testing.T) {
	corpus := testCorpus()
	a, err := Build(corpus, Config{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	b, err := Build(corpus, Config{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if !reflect.DeepEqual(a.vocab.Tokens(), b.vocab.Tokens()) {
		t.Error("vocabulary index assignment differs between identical builds")
	}
	if !reflect.DeepEqual(a.vectors, b.vectors) {
		t.Error("vector matrix differs between identical builds")
	}
	if !reflect.DeepEqual(a.sims, b.sims) {
		t.Error("similarity matrix differs between identical builds")
	}
}

func TestSimilarityMatrix_Symmetry(t *testing.T) {
	m, err := Build(testCorpus(), Config{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for i := 0; i < m.Len(); i++ {
		for j := 0; j < m.Len(); j++ {
			if m.Similarity(i, j) != m.Similarity(j, i) {
				t.Errorf("similarity(%d,%d) != similarity(%d,%d)", i, j, j, i)
			}
		}
	}
}

func TestRecommend_DefaultK(t *testing.T) {
	corpus := testCorpus()
	m, err := Build(corpus, Config{TopKDefault: 1})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	recs, err := m.Recommend("Title A", 0)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if len(recs) != 1 {
		t.Errorf("k=0 should use configured default, got %d results", len(recs))
	}
}
