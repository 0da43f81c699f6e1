// Package catalog loads movie records from CSV. It is the input
// collaborator of the recommendation pipeline: it hands the engine a
// clean, de-duplicated, ordered slice of movies and does nothing else.
package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/reelrec/reel/internal/models"
	"github.com/reelrec/reel/internal/normalize"
)

// Expected CSV columns. List-valued columns use '|' between entries,
// matching the MovieLens export convention.
const (
	colMovieID   = "movie_id"
	colTitle     = "title"
	colGenres    = "genres"
	colCast      = "cast"
	colDirectors = "directors"
	colKeywords  = "keywords"
)

// listSeparator splits multi-valued CSV cells.
const listSeparator = "|"

// Options controls catalog loading.
type Options struct {
	// CastLimit keeps only the first N cast members per movie.
	// <= 0 keeps all.
	CastLimit int
}

// Stats summarizes a load. Skipped rows and duplicate titles are
// normal for messy exports, not errors.
type Stats struct {
	Loaded          int `json:"loaded"`
	SkippedRows     int `json:"skipped_rows"`
	DuplicateTitles int `json:"duplicate_titles"`
}

// Load reads the movies CSV at path. Rows missing a title are skipped.
// Titles that normalize to an already-seen key are skipped too: the
// first occurrence wins, so row order in the file fixes the canonical
// movie order used by every downstream structure.
func Load(path string, opts Options) ([]models.Movie, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("opening movies file: %w", err)
	}
	defer f.Close()

	movies, stats, err := Read(f, opts)
	if err != nil {
		return nil, stats, fmt.Errorf("reading %s: %w", path, err)
	}
	return movies, stats, nil
}

// Read parses movie records from CSV data.
func Read(r io.Reader, opts Options) ([]models.Movie, Stats, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, Stats{}, fmt.Errorf("reading header: %w", err)
	}
	idx := headerIndex(header)
	if _, ok := idx[colTitle]; !ok {
		return nil, Stats{}, fmt.Errorf("missing required column %q", colTitle)
	}

	var movies []models.Movie
	var stats Stats
	seen := make(map[string]bool)

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			stats.SkippedRows++
			continue
		}

		title := strings.TrimSpace(cell(row, idx, colTitle))
		if title == "" {
			stats.SkippedRows++
			continue
		}

		key := normalize.Title(title)
		if seen[key] {
			stats.DuplicateTitles++
			continue
		}
		seen[key] = true

		cast := parseList(cell(row, idx, colCast))
		if opts.CastLimit > 0 && len(cast) > opts.CastLimit {
			cast = cast[:opts.CastLimit]
		}

		movies = append(movies, models.Movie{
			ID:        parseInt(cell(row, idx, colMovieID)),
			Title:     title,
			Genres:    parseList(cell(row, idx, colGenres)),
			Cast:      cast,
			Directors: parseList(cell(row, idx, colDirectors)),
			Keywords:  parseList(cell(row, idx, colKeywords)),
		})
		stats.Loaded++
	}

	return movies, stats, nil
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[strings.TrimSpace(strings.ToLower(col))] = i
	}
	return idx
}

func cell(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, listSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func parseInt(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}
