package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/reelrec/reel/internal/engine"
	"github.com/reelrec/reel/internal/models"
	"github.com/reelrec/reel/internal/normalize"
)

// DBFileName is the sqlite database file inside the data directory.
const DBFileName = "reel.db"

// schemaVersion bumps when the table layout changes; an old database is
// dropped and rebuilt rather than migrated, since the source of truth
// is the movies CSV.
const schemaVersion = "1"

// ErrNoModel is returned when the database holds no built model yet.
var ErrNoModel = errors.New("store: no model built yet")

const listSeparator = "|"

// Store is a sqlite-backed snapshot of a built model: the movie catalog
// in canonical row order plus each movie's precomputed neighbor list.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database inside dir and ensures the
// schema is current. A database written by an older schema is reset.
func Open(dir string) (*Store, error) {
	db, err := sql.Open("sqlite", filepath.Join(dir, DBFileName))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS movies (
	row_idx          INTEGER PRIMARY KEY,
	movie_id         INTEGER NOT NULL,
	title            TEXT NOT NULL,
	normalized_title TEXT NOT NULL UNIQUE,
	genres           TEXT NOT NULL DEFAULT '',
	cast_list        TEXT NOT NULL DEFAULT '',
	directors        TEXT NOT NULL DEFAULT '',
	keywords         TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS neighbors (
	movie_row      INTEGER NOT NULL,
	rank           INTEGER NOT NULL,
	neighbor_id    INTEGER NOT NULL,
	neighbor_title TEXT NOT NULL,
	score          REAL NOT NULL,
	PRIMARY KEY (movie_row, rank)
);`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	var version string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := s.db.Exec(`INSERT INTO meta (key, value) VALUES ('schema_version', ?)`, schemaVersion); err != nil {
			return fmt.Errorf("recording schema version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("reading schema version: %w", err)
	case version != schemaVersion:
		if _, err := s.db.Exec(`DELETE FROM movies`); err != nil {
			return fmt.Errorf("resetting stale schema: %w", err)
		}
		if _, err := s.db.Exec(`DELETE FROM neighbors`); err != nil {
			return fmt.Errorf("resetting stale schema: %w", err)
		}
		if _, err := s.db.Exec(`UPDATE meta SET value = ? WHERE key = 'schema_version'`, schemaVersion); err != nil {
			return fmt.Errorf("resetting stale schema: %w", err)
		}
	}
	return nil
}

// SaveModel replaces the stored snapshot with the given model. Each
// movie's neighbor list is truncated to maxNeighbors entries; queries
// asking for more get at most what was stored.
func (s *Store) SaveModel(ctx context.Context, m *engine.Model, maxNeighbors int) error {
	if maxNeighbors <= 0 {
		maxNeighbors = engine.DefaultTopK
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM movies`); err != nil {
		return fmt.Errorf("clearing movies: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM neighbors`); err != nil {
		return fmt.Errorf("clearing neighbors: %w", err)
	}

	insertMovie, err := tx.PrepareContext(ctx, `
		INSERT INTO movies (row_idx, movie_id, title, normalized_title, genres, cast_list, directors, keywords)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing movie insert: %w", err)
	}
	defer insertMovie.Close()

	insertNeighbor, err := tx.PrepareContext(ctx, `
		INSERT INTO neighbors (movie_row, rank, neighbor_id, neighbor_title, score)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing neighbor insert: %w", err)
	}
	defer insertNeighbor.Close()

	for row := 0; row < m.Len(); row++ {
		mv := m.Movie(row)
		_, err := insertMovie.ExecContext(ctx, row, mv.ID, mv.Title, normalize.Title(mv.Title),
			joinList(mv.Genres), joinList(mv.Cast), joinList(mv.Directors), joinList(mv.Keywords))
		if err != nil {
			return fmt.Errorf("inserting movie %q: %w", mv.Title, err)
		}

		for rank, rec := range m.Neighbors(row, maxNeighbors) {
			if _, err := insertNeighbor.ExecContext(ctx, row, rank, rec.MovieID, rec.Title, rec.Score); err != nil {
				return fmt.Errorf("inserting neighbors of %q: %w", mv.Title, err)
			}
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO meta (key, value) VALUES ('built_at', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, now); err != nil {
		return fmt.Errorf("recording build time: %w", err)
	}

	return tx.Commit()
}

// Neighbors returns the stored neighbor list for a title, truncated to
// k entries. Returns engine.ErrTitleNotFound for unknown titles and
// ErrNoModel when nothing was built yet.
func (s *Store) Neighbors(ctx context.Context, title string, k int) ([]models.Recommendation, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM movies`).Scan(&count); err != nil {
		return nil, fmt.Errorf("counting movies: %w", err)
	}
	if count == 0 {
		return nil, ErrNoModel
	}

	var row int
	err := s.db.QueryRowContext(ctx,
		`SELECT row_idx FROM movies WHERE normalized_title = ?`, normalize.Title(title)).Scan(&row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", engine.ErrTitleNotFound, title)
	}
	if err != nil {
		return nil, fmt.Errorf("looking up title: %w", err)
	}

	if k <= 0 {
		k = engine.DefaultTopK
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT neighbor_id, neighbor_title, score
		FROM neighbors WHERE movie_row = ? ORDER BY rank LIMIT ?`, row, k)
	if err != nil {
		return nil, fmt.Errorf("querying neighbors: %w", err)
	}
	defer rows.Close()

	var out []models.Recommendation
	for rows.Next() {
		var rec models.Recommendation
		if err := rows.Scan(&rec.MovieID, &rec.Title, &rec.Score); err != nil {
			return nil, fmt.Errorf("scanning neighbor: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Movies returns the stored catalog in canonical row order, for
// rebuilding the in-memory model without re-reading the CSV.
func (s *Store) Movies(ctx context.Context) ([]models.Movie, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT movie_id, title, genres, cast_list, directors, keywords
		FROM movies ORDER BY row_idx`)
	if err != nil {
		return nil, fmt.Errorf("querying movies: %w", err)
	}
	defer rows.Close()

	var out []models.Movie
	for rows.Next() {
		var m models.Movie
		var genres, cast, directors, keywords string
		if err := rows.Scan(&m.ID, &m.Title, &genres, &cast, &directors, &keywords); err != nil {
			return nil, fmt.Errorf("scanning movie: %w", err)
		}
		m.Genres = splitList(genres)
		m.Cast = splitList(cast)
		m.Directors = splitList(directors)
		m.Keywords = splitList(keywords)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNoModel
	}
	return out, nil
}

// BuiltAt returns when the stored model was built.
func (s *Store) BuiltAt(ctx context.Context) (time.Time, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'built_at'`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, ErrNoModel
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("reading build time: %w", err)
	}
	return time.Parse(time.RFC3339, raw)
}

func joinList(items []string) string {
	return strings.Join(items, listSeparator)
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, listSeparator)
}
