// Package vocab builds the fixed token vocabulary from a corpus of tag
// sequences. The vocabulary assigns each retained token a stable column
// index; vectors produced against the same vocabulary are comparable.
package vocab

import (
	"errors"
	"sort"
)

// DefaultMaxSize is the default cap on retained tokens. Tokens outside
// the top-N by corpus frequency are dropped from vectorization.
const DefaultMaxSize = 5000

// ErrEmptyCorpus is returned when Build is given no tag sequences.
var ErrEmptyCorpus = errors.New("vocab: empty corpus")

// Vocabulary is a bijective token <-> column index mapping, immutable
// after Build. Index assignment is deterministic: tokens are ordered by
// descending corpus frequency with lexicographic tie-break, so two
// builds over identical input assign identical indices.
type Vocabulary struct {
	index  map[string]int
	tokens []string
}

// Build scans the full corpus, counts token frequency, and retains the
// maxSize most frequent distinct tokens. maxSize <= 0 means
// DefaultMaxSize. An empty corpus returns ErrEmptyCorpus; a corpus of
// only empty sequences yields an empty (zero-column) vocabulary.
func Build(corpus [][]string, maxSize int) (*Vocabulary, error) {
	if len(corpus) == 0 {
		return nil, ErrEmptyCorpus
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	freq := make(map[string]int)
	for _, tags := range corpus {
		for _, tok := range tags {
			freq[tok]++
		}
	}

	tokens := make([]string, 0, len(freq))
	for tok := range freq {
		tokens = append(tokens, tok)
	}
	sort.Slice(tokens, func(i, j int) bool {
		if freq[tokens[i]] != freq[tokens[j]] {
			return freq[tokens[i]] > freq[tokens[j]]
		}
		return tokens[i] < tokens[j]
	})

	if len(tokens) > maxSize {
		tokens = tokens[:maxSize]
	}

	index := make(map[string]int, len(tokens))
	for i, tok := range tokens {
		index[tok] = i
	}

	return &Vocabulary{index: index, tokens: tokens}, nil
}

// Index returns the column index for a token. The second return is
// false for out-of-vocabulary tokens.
func (v *Vocabulary) Index(token string) (int, bool) {
	i, ok := v.index[token]
	return i, ok
}

// Token returns the token at the given column index.
func (v *Vocabulary) Token(i int) string {
	return v.tokens[i]
}

// Size returns the number of retained tokens, which is the vector width.
func (v *Vocabulary) Size() int {
	return len(v.tokens)
}

// Tokens returns a copy of the retained tokens in index order.
func (v *Vocabulary) Tokens() []string {
	out := make([]string, len(v.tokens))
	copy(out, v.tokens)
	return out
}
