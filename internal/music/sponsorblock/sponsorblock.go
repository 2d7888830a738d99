// Package sponsorblock fetches community-submitted sponsor segments for a
// YouTube video so playback can seek past them.
package sponsorblock

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	DefaultBaseURL = "https://sponsor.ajay.app"

	requestTimeout = 10 * time.Second
)

// Segment is one span of a video to skip.
type Segment struct {
	Start time.Duration
	End   time.Duration
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

// apiSegment mirrors the skipSegments response: each entry carries a
// [start, end] pair in seconds.
type apiSegment struct {
	Segment  [2]float64 `json:"segment"`
	Category string     `json:"category"`
}

// SkipSegments returns the sponsor segments for a video, oldest-first as the
// API sends them. A video with no submissions yields an empty slice.
func (c *Client) SkipSegments(ctx context.Context, videoID string) ([]Segment, error) {
	endpoint := fmt.Sprintf("%s/api/skipSegments?videoID=%s&category=sponsor", c.baseURL, url.QueryEscape(videoID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch skip segments: %w", err)
	}
	defer resp.Body.Close()

	// The API answers 404 for videos nobody has submitted segments for.
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("skip segments: unexpected status %d", resp.StatusCode)
	}

	var raw []apiSegment
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode skip segments: %w", err)
	}

	segments := make([]Segment, 0, len(raw))
	for _, s := range raw {
		if s.Segment[1] <= s.Segment[0] {
			continue
		}
		segments = append(segments, Segment{
			Start: time.Duration(s.Segment[0] * float64(time.Second)),
			End:   time.Duration(s.Segment[1] * float64(time.Second)),
		})
	}
	return segments, nil
}
