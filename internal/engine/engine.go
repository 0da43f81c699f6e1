// Package engine assembles the recommendation pipeline: it normalizes a
// movie corpus into tag sequences, fits the vocabulary, vectorizes, and
// computes the similarity matrix, producing an immutable Model that
// answers top-K queries.
//
// A Model is built once per corpus. Any change to the underlying corpus
// requires a full rebuild; there is no incremental update path. All
// query methods are pure reads over the built state and safe to call
// concurrently without locking.
package engine

import (
	"errors"
	"fmt"
	"sort"

	"github.com/reelrec/reel/internal/models"
	"github.com/reelrec/reel/internal/normalize"
	"github.com/reelrec/reel/internal/similarity"
	"github.com/reelrec/reel/internal/vectorize"
	"github.com/reelrec/reel/internal/vocab"
)

// ErrTitleNotFound is returned when a query title has no exact
// (case-insensitive) match in the catalog. No fuzzy fallback happens
// here; that belongs to the caller.
var ErrTitleNotFound = errors.New("engine: title not found")

// DefaultTopK is the default number of recommendations per query.
const DefaultTopK = 5

// Config controls the build.
type Config struct {
	// VocabularySize caps retained tokens. <= 0 means vocab.DefaultMaxSize.
	VocabularySize int

	// MetadataFields is the ordered list of movie fields merged into the
	// tag sequence. Empty means DefaultMetadataFields.
	MetadataFields []string

	// TopKDefault is used when Recommend is called with k <= 0.
	TopKDefault int
}

// DefaultMetadataFields is the field merge order used when none is
// configured.
var DefaultMetadataFields = []string{
	models.FieldGenres,
	models.FieldCast,
	models.FieldDirectors,
	models.FieldKeywords,
}

func (c Config) withDefaults() Config {
	if len(c.MetadataFields) == 0 {
		c.MetadataFields = DefaultMetadataFields
	}
	if c.TopKDefault <= 0 {
		c.TopKDefault = DefaultTopK
	}
	return c
}

// BuildStats summarizes what the build skipped. Skipped fields and
// empty tag sequences are normal, documented behavior, not errors.
type BuildStats struct {
	Movies        int `json:"movies"`
	VocabularyLen int `json:"vocabulary_len"`
	MissingFields int `json:"missing_fields"`
	EmptyMovies   int `json:"empty_movies"`
}

// Model holds the fitted state: vocabulary, vector matrix, similarity
// matrix, and title index. Immutable after Build; rebuild-vs-reuse is
// explicit at call sites.
type Model struct {
	movies  []models.Movie
	titles  map[string]int // normalized title -> row
	vocab   *vocab.Vocabulary
	vectors [][]float64
	sims    [][]float64
	topK    int
	stats   BuildStats
}

// Build runs the four pipeline stages over the corpus in order. The
// movie slice order becomes the canonical row order of every derived
// structure. Duplicate normalized titles keep their first occurrence in
// the title index; later rows become unreachable by title lookup.
func Build(corpus []models.Movie, cfg Config) (*Model, error) {
	if len(corpus) == 0 {
		return nil, fmt.Errorf("building model: %w", vocab.ErrEmptyCorpus)
	}
	cfg = cfg.withDefaults()

	stats := BuildStats{Movies: len(corpus)}

	tagSeqs := make([][]string, len(corpus))
	for i, m := range corpus {
		tags, missing := normalize.TagSequence(m, cfg.MetadataFields)
		tagSeqs[i] = tags
		stats.MissingFields += len(missing)
		if len(tags) == 0 {
			stats.EmptyMovies++
		}
	}

	voc, err := vocab.Build(tagSeqs, cfg.VocabularySize)
	if err != nil {
		return nil, fmt.Errorf("building vocabulary: %w", err)
	}
	stats.VocabularyLen = voc.Size()

	vectors := vectorize.Matrix(tagSeqs, voc)
	for i, vec := range vectors {
		if err := vectorize.Check(vec, voc); err != nil {
			return nil, fmt.Errorf("vectorizing %q: %w", corpus[i].Title, err)
		}
	}

	sims := similarity.Matrix(vectors)

	titles := make(map[string]int, len(corpus))
	for i, m := range corpus {
		key := normalize.Title(m.Title)
		if _, exists := titles[key]; exists {
			continue // first occurrence wins
		}
		titles[key] = i
	}

	return &Model{
		movies:  corpus,
		titles:  titles,
		vocab:   voc,
		vectors: vectors,
		sims:    sims,
		topK:    cfg.TopKDefault,
		stats:   stats,
	}, nil
}

// Recommend returns up to k movies most similar to the given title,
// ordered by descending similarity with ascending-row-index tie-break.
// The query movie itself is never included. k <= 0 uses the configured
// default; k beyond the catalog size returns all other movies.
func (m *Model) Recommend(title string, k int) ([]models.Recommendation, error) {
	row, ok := m.titles[normalize.Title(title)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTitleNotFound, title)
	}
	if k <= 0 {
		k = m.topK
	}
	return m.Neighbors(row, k), nil
}

// Neighbors returns the top-k most similar movies to the given row,
// excluding the row itself. Pure read over the precomputed matrix:
// O(M log M) per call.
func (m *Model) Neighbors(row, k int) []models.Recommendation {
	scores := m.sims[row]

	candidates := make([]int, 0, len(m.movies)-1)
	for i := range m.movies {
		if i != row {
			candidates = append(candidates, i)
		}
	}
	sort.Slice(candidates, func(a, b int) bool {
		if scores[candidates[a]] != scores[candidates[b]] {
			return scores[candidates[a]] > scores[candidates[b]]
		}
		return candidates[a] < candidates[b]
	})

	if k > len(candidates) {
		k = len(candidates)
	}
	out := make([]models.Recommendation, 0, k)
	for _, i := range candidates[:k] {
		out = append(out, models.Recommendation{
			MovieID: m.movies[i].ID,
			Title:   m.movies[i].Title,
			Score:   scores[i],
		})
	}
	return out
}

// Lookup resolves a title to its row index.
func (m *Model) Lookup(title string) (int, error) {
	row, ok := m.titles[normalize.Title(title)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrTitleNotFound, title)
	}
	return row, nil
}

// Movie returns the record at the given row.
func (m *Model) Movie(row int) models.Movie {
	return m.movies[row]
}

// Len returns the number of movies in the model.
func (m *Model) Len() int {
	return len(m.movies)
}

// Vector returns the count vector for the given row. Callers must treat
// it as read-only.
func (m *Model) Vector(row int) []float64 {
	return m.vectors[row]
}

// Similarity returns the cosine similarity between two rows.
func (m *Model) Similarity(i, j int) float64 {
	return m.sims[i][j]
}

// Stats returns the build summary.
func (m *Model) Stats() BuildStats {
	return m.stats
}
