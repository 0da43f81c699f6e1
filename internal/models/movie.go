// Package models defines the value types shared across the recommendation
// pipeline. All types are plain immutable records; the pipeline never
// mutates a Movie after catalog load.
package models

// Metadata field names recognized by Movie.Field.
const (
	FieldGenres    = "genres"
	FieldCast      = "cast"
	FieldDirectors = "directors"
	FieldKeywords  = "keywords"
)

// Movie is one record in the catalog. Title is the unique lookup key;
// the list fields hold short named entities (genre names, cast member
// names, director names, plot keyword phrases).
type Movie struct {
	ID        int      `json:"id" yaml:"id"`
	Title     string   `json:"title" yaml:"title"`
	Genres    []string `json:"genres" yaml:"genres"`
	Cast      []string `json:"cast" yaml:"cast"`
	Directors []string `json:"directors" yaml:"directors"`
	Keywords  []string `json:"keywords" yaml:"keywords"`
}

// Field returns the metadata list for the given field name.
// The second return is false for field names the record does not carry.
func (m Movie) Field(name string) ([]string, bool) {
	switch name {
	case FieldGenres:
		return m.Genres, true
	case FieldCast:
		return m.Cast, true
	case FieldDirectors:
		return m.Directors, true
	case FieldKeywords:
		return m.Keywords, true
	default:
		return nil, false
	}
}

// Recommendation pairs a movie with its similarity score against a query
// title. Score is cosine similarity in [0, 1] for count vectors.
type Recommendation struct {
	MovieID   int     `json:"movie_id"`
	Title     string  `json:"title"`
	Score     float64 `json:"score"`
	PosterURL string  `json:"poster_url,omitempty"`
}
