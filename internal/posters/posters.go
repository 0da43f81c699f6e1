// Package posters resolves movie poster image URLs from the TMDB API.
// Lookups are cached in memory with a TTL so repeated recommendations
// for popular movies do not burn through the API rate limit.
package posters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

const (
	defaultBaseURL  = "https://api.themoviedb.org/3"
	imageBaseURL    = "https://image.tmdb.org/t/p/w500"
	defaultTTL      = time.Hour
	defaultTimeout  = 10 * time.Second
	maxRetries      = 3
	retryBaseDelay  = time.Second

	// PlaceholderNoImage is returned when TMDB has no poster for a movie.
	PlaceholderNoImage = "https://via.placeholder.com/500x750?text=No+Image"

	// PlaceholderError is returned when the lookup fails after retries.
	PlaceholderError = "https://via.placeholder.com/500x750?text=Error"
)

// Client fetches poster URLs from TMDB. Safe for concurrent use.
type Client struct {
	apiKey     string
	baseURL    string
	http       *http.Client
	ttl        time.Duration
	retryDelay time.Duration

	mu    sync.RWMutex
	cache map[int]cacheEntry
}

type cacheEntry struct {
	url     string
	expires time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithBaseURL overrides the TMDB API base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithTTL overrides the cache TTL.
func WithTTL(ttl time.Duration) Option {
	return func(c *Client) { c.ttl = ttl }
}

// NewClient creates a poster client. An empty apiKey disables lookups:
// PosterURL then always returns PlaceholderNoImage without a request.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		http:       &http.Client{Timeout: defaultTimeout},
		ttl:        defaultTTL,
		retryDelay: retryBaseDelay,
		cache:      make(map[int]cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PosterURL returns the w500 poster image URL for the given TMDB movie
// ID. Never returns an error to callers: failures degrade to a
// placeholder URL so a recommendation list still renders.
func (c *Client) PosterURL(ctx context.Context, movieID int) string {
	if c.apiKey == "" {
		return PlaceholderNoImage
	}

	if url, ok := c.cached(movieID); ok {
		return url
	}

	url, err := c.fetch(ctx, movieID)
	if err != nil {
		// Error placeholders are not cached; the next lookup retries.
		return PlaceholderError
	}

	c.mu.Lock()
	c.cache[movieID] = cacheEntry{url: url, expires: time.Now().Add(c.ttl)}
	c.mu.Unlock()
	return url
}

func (c *Client) cached(movieID int) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[movieID]
	if !ok || time.Now().After(entry.expires) {
		return "", false
	}
	return entry.url, true
}

func (c *Client) fetch(ctx context.Context, movieID int) (string, error) {
	endpoint := fmt.Sprintf("%s/movie/%d?api_key=%s&language=en-US", c.baseURL, movieID, c.apiKey)

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		url, retry, err := c.doRequest(ctx, endpoint, attempt)
		if err == nil {
			return url, nil
		}
		lastErr = err
		if !retry {
			return "", err
		}
		if attempt < maxRetries-1 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}
	}
	return "", fmt.Errorf("fetching poster for movie %d: %w", movieID, lastErr)
}

// doRequest performs one attempt. On 429 it sleeps with exponential
// backoff before reporting a retryable failure.
func (c *Client) doRequest(ctx context.Context, endpoint string, attempt int) (url string, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		backoff := time.Duration(1<<attempt) * c.retryDelay
		select {
		case <-ctx.Done():
			return "", false, ctx.Err()
		case <-time.After(backoff):
		}
		return "", true, fmt.Errorf("rate limited")
	}
	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body struct {
		PosterPath string `json:"poster_path"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", false, fmt.Errorf("decoding response: %w", err)
	}

	if body.PosterPath == "" {
		return PlaceholderNoImage, false, nil
	}
	return imageBaseURL + body.PosterPath, false, nil
}
