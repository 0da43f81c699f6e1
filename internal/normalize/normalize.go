// Package normalize converts the textual metadata of a movie record into
// a flat sequence of tokens suitable for bag-of-words vectorization.
//
// Each configured metadata field is a list of named entities. Every
// entity is collapsed into a single token: lowercased, punctuation
// stripped, internal whitespace removed. "Tom Hanks" becomes "tomhanks"
// rather than the two unrelated tokens "tom" and "hanks". Tokens keep
// field order then within-field order so identical input always yields
// an identical sequence.
package normalize

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/reelrec/reel/internal/models"
)

// MissingFieldError reports a configured metadata field that the movie
// record does not carry. The field is skipped; the error exists so the
// caller can surface which movie and field were affected.
type MissingFieldError struct {
	Title string
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("movie %q has no metadata field %q", e.Title, e.Field)
}

// TagSequence builds the normalized token sequence for one movie from
// the given ordered field names. Unknown fields are skipped and reported
// via MissingFieldError values; known-but-empty fields contribute no
// tokens and are not errors. A movie whose fields are all empty yields
// an empty (but valid) sequence, which vectorizes to the zero vector.
func TagSequence(m models.Movie, fields []string) ([]string, []*MissingFieldError) {
	var tags []string
	var missing []*MissingFieldError

	for _, field := range fields {
		entities, ok := m.Field(field)
		if !ok {
			missing = append(missing, &MissingFieldError{Title: m.Title, Field: field})
			continue
		}
		for _, entity := range entities {
			if tok := Token(entity); tok != "" {
				tags = append(tags, tok)
			}
		}
	}

	return tags, missing
}

// Token normalizes a single named entity into one token: lowercase,
// letters and digits only. Whitespace and punctuation are dropped so a
// multi-word entity never splits into independent tokens.
func Token(entity string) string {
	var b strings.Builder
	b.Grow(len(entity))
	for _, r := range entity {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// Title normalizes a movie title for case-insensitive lookup: lowercase,
// trimmed, internal whitespace collapsed to single spaces. Unlike Token
// it keeps spaces and punctuation so distinct titles stay distinct.
func Title(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}
