// Package server exposes the recommendation engine over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/reelrec/reel/internal/engine"
	"github.com/reelrec/reel/internal/models"
	"github.com/reelrec/reel/internal/normalize"
	"github.com/reelrec/reel/internal/posters"
	"github.com/reelrec/reel/internal/vectorindex"
)

// Server serves recommendations from an in-memory model. The model is
// immutable once built; a catalog change requires a rebuild and restart.
type Server struct {
	model   *engine.Model
	index   vectorindex.Index
	posters *posters.Client
	log     zerolog.Logger
}

// New creates a Server. index and posterClient may be nil, which
// disables /similar and poster URLs respectively.
func New(model *engine.Model, index vectorindex.Index, posterClient *posters.Client, log zerolog.Logger) *Server {
	return &Server{
		model:   model,
		index:   index,
		posters: posterClient,
		log:     log,
	}
}

// Handler returns the HTTP routing tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", s.handleHealth)
	r.Get("/search", s.handleSearch)
	r.Post("/recommend", s.handleRecommend)
	r.Get("/similar", s.handleSimilar)

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"movies": s.model.Len(),
	})
}

// handleSearch returns titles containing the query as a case-insensitive
// substring, in catalog order.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := normalize.Title(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}

	var titles []string
	for i := 0; i < s.model.Len(); i++ {
		title := s.model.Movie(i).Title
		if strings.Contains(normalize.Title(title), q) {
			titles = append(titles, title)
		}
	}
	if titles == nil {
		titles = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"titles": titles})
}

type recommendRequest struct {
	Title string `json:"title"`
	K     int    `json:"k"`
}

type recommendResponse struct {
	Title           string                  `json:"title"`
	Recommendations []models.Recommendation `json:"recommendations"`
}

// handleRecommend returns the top-K neighbors from the exact similarity
// matrix, annotated with poster URLs when a TMDB client is configured.
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "missing title")
		return
	}

	recs, err := s.model.Recommend(req.Title, req.K)
	if err != nil {
		if errors.Is(err, engine.ErrTitleNotFound) {
			writeError(w, http.StatusNotFound, "title not found: "+req.Title)
			return
		}
		s.log.Error().Err(err).Str("title", req.Title).Msg("recommend failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if s.posters != nil {
		for i := range recs {
			recs[i].PosterURL = s.posters.PosterURL(r.Context(), recs[i].MovieID)
		}
	}
	if recs == nil {
		recs = []models.Recommendation{}
	}
	writeJSON(w, http.StatusOK, recommendResponse{Title: req.Title, Recommendations: recs})
}

type similarResponse struct {
	Title   string              `json:"title"`
	Results []vectorindex.Result `json:"results"`
}

// handleSimilar answers from the approximate vector index instead of
// the full matrix. Results may differ slightly from /recommend on
// large catalogs; that is the tradeoff for sublinear search.
func (s *Server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	if s.index == nil {
		writeError(w, http.StatusNotFound, "similarity index not enabled")
		return
	}

	title := r.URL.Query().Get("title")
	if title == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter title")
		return
	}

	k := engine.DefaultTopK
	if raw := r.URL.Query().Get("k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "k must be a positive integer")
			return
		}
		k = parsed
	}

	row, err := s.model.Lookup(title)
	if err != nil {
		writeError(w, http.StatusNotFound, "title not found: "+title)
		return
	}

	query := toFloat32(s.model.Vector(row))
	// Over-fetch by one so the query movie can be dropped from its own
	// result list.
	results, err := s.index.Search(r.Context(), query, k+1)
	if err != nil {
		s.log.Error().Err(err).Str("title", title).Msg("index search failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	queryTitle := s.model.Movie(row).Title
	filtered := make([]vectorindex.Result, 0, k)
	for _, res := range results {
		if res.Title == queryTitle {
			continue
		}
		filtered = append(filtered, res)
		if len(filtered) == k {
			break
		}
	}
	writeJSON(w, http.StatusOK, similarResponse{Title: queryTitle, Results: filtered})
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
