// Package vectorize converts tag sequences into dense count vectors
// over a fitted vocabulary. No scaling is applied here; cosine
// similarity downstream normalizes by vector magnitude.
package vectorize

import (
	"errors"
	"fmt"

	"github.com/reelrec/reel/internal/vocab"
)

// ErrDimensionMismatch signals a vector whose length disagrees with the
// fitted vocabulary size, which means the vector and vocabulary come
// from different builds.
var ErrDimensionMismatch = errors.New("vectorize: vector length disagrees with vocabulary size")

// Vector counts vocabulary tokens in a single tag sequence. Tokens
// outside the vocabulary contribute nothing. A pure function of its
// inputs: identical (tags, vocabulary) always yields an identical
// vector. An empty sequence yields the zero vector.
func Vector(tags []string, v *vocab.Vocabulary) []float64 {
	vec := make([]float64, v.Size())
	for _, tok := range tags {
		if i, ok := v.Index(tok); ok {
			vec[i]++
		}
	}
	return vec
}

// Matrix vectorizes the whole corpus. Row order follows the corpus
// order, which is the canonical movie order fixed at load time.
func Matrix(corpus [][]string, v *vocab.Vocabulary) [][]float64 {
	rows := make([][]float64, len(corpus))
	for i, tags := range corpus {
		rows[i] = Vector(tags, v)
	}
	return rows
}

// Check verifies that a vector was produced against the given
// vocabulary. A length disagreement means stale or rebuilt state and is
// fatal for the caller.
func Check(vec []float64, v *vocab.Vocabulary) error {
	if len(vec) != v.Size() {
		return fmt.Errorf("%w: got %d, vocabulary has %d", ErrDimensionMismatch, len(vec), v.Size())
	}
	return nil
}
