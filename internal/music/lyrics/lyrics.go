// Package lyrics looks up song lyrics over HTTP and caches results briefly
// so button mashing does not hammer the service.
package lyrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/Maselkov/Toothy/pkg/retrylimit"
)

const (
	// DefaultBaseURL points at the public lyrics service.
	DefaultBaseURL = "https://some-random-api.ml"

	cacheTTL        = 10 * time.Minute
	janitorInterval = time.Minute
	requestTimeout  = 10 * time.Second
)

// ErrNoLyrics means the service has no lyrics for the title.
var ErrNoLyrics = errors.New("no lyrics found for this song")

// Lyrics is one lookup result.
type Lyrics struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Text   string `json:"lyrics"`
	Links  struct {
		Genius string `json:"genius"`
	} `json:"links"`
}

type cacheEntry struct {
	lyrics  Lyrics
	err     error
	expires time.Time
}

// Client fetches lyrics by title with an in-memory TTL cache and adaptive
// retrying around the HTTP calls.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *retrylimit.AdaptiveLimiter

	mu    sync.Mutex
	cache map[string]cacheEntry
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
		limiter: retrylimit.NewAdaptiveLimiter(5, 1, 10, 1, 0.5),
		cache:   make(map[string]cacheEntry),
	}
}

// Get returns the lyrics for a title. Results, including misses, are cached
// for ten minutes.
func (c *Client) Get(ctx context.Context, title string) (Lyrics, error) {
	c.mu.Lock()
	if entry, ok := c.cache[title]; ok && time.Now().Before(entry.expires) {
		c.mu.Unlock()
		return entry.lyrics, entry.err
	}
	c.mu.Unlock()

	var result Lyrics
	err := retrylimit.WithRetry(ctx, func() error {
		var fetchErr error
		result, fetchErr = c.fetch(ctx, title)
		return fetchErr
	}, c.limiter)

	if errors.Is(err, ErrNoLyrics) {
		err = ErrNoLyrics
	} else if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("lyrics lookup: %w", err)
	}

	// Cache misses too; retrying an unknown song every click buys nothing.
	if err == nil || errors.Is(err, ErrNoLyrics) {
		c.mu.Lock()
		c.cache[title] = cacheEntry{lyrics: result, err: err, expires: time.Now().Add(cacheTTL)}
		c.mu.Unlock()
	}
	return result, err
}

type statusError struct {
	code int
}

func (e *statusError) Error() string   { return "lyrics service returned " + http.StatusText(e.code) }
func (e *statusError) StatusCode() int { return e.code }

func (c *Client) fetch(ctx context.Context, title string) (Lyrics, error) {
	u := c.baseURL + "/lyrics?title=" + url.QueryEscape(title)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Lyrics{}, &retrylimit.FatalError{Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Lyrics{}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Lyrics{}, &retrylimit.FatalError{Err: ErrNoLyrics}
	case resp.StatusCode != http.StatusOK:
		return Lyrics{}, &statusError{code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Lyrics{}, err
	}

	var result Lyrics
	if err := json.Unmarshal(body, &result); err != nil {
		return Lyrics{}, &retrylimit.FatalError{Err: fmt.Errorf("decode lyrics response: %w", err)}
	}
	if result.Text == "" {
		return Lyrics{}, &retrylimit.FatalError{Err: ErrNoLyrics}
	}
	return result, nil
}

// RunJanitor evicts expired cache entries every minute until ctx is done.
func (c *Client) RunJanitor(ctx context.Context) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.evictExpired()
		}
	}
}

func (c *Client) evictExpired() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for title, entry := range c.cache {
		if now.After(entry.expires) {
			delete(c.cache, title)
		}
	}
}
