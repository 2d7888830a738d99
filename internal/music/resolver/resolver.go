// Package resolver turns user input - a search phrase, a video link or a
// playlist link - into playable tracks.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	youtube "github.com/kkdai/youtube/v2"
	"github.com/ppalone/ytsearch"

	"github.com/Maselkov/Toothy/internal/music/track"
)

var (
	ErrNoResults      = errors.New("no results found")
	ErrUnsupportedURL = errors.New("unsupported URL format")
)

// SearchLimit caps how many results ByQuery returns; autocomplete shows at
// most this many suggestions anyway.
const SearchLimit = 10

type Resolver struct {
	yt     *youtube.Client
	search *ytsearch.Client

	http      *http.Client
	oembedURL string
}

func New() *Resolver {
	httpClient := &http.Client{Timeout: 15 * time.Second}
	return &Resolver{
		yt:        &youtube.Client{HTTPClient: httpClient},
		search:    ytsearch.NewClient(nil),
		http:      httpClient,
		oembedURL: spotifyOEmbedURL,
	}
}

// Resolve dispatches on the shape of the input: URLs go through ByURL,
// anything else is treated as a search phrase and the first hit wins.
func (r *Resolver) Resolve(ctx context.Context, input string) ([]track.Track, error) {
	input = strings.TrimSpace(input)
	if IsURL(input) {
		return r.ByURL(ctx, input)
	}
	results, err := r.ByQuery(ctx, input)
	if err != nil {
		return nil, err
	}
	return results[:1], nil
}

// ByQuery runs a text search and normalizes the hits.
func (r *Resolver) ByQuery(ctx context.Context, query string) ([]track.Track, error) {
	res, err := r.search.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	if len(res.Results) == 0 {
		return nil, ErrNoResults
	}

	tracks := make([]track.Track, 0, SearchLimit)
	for _, v := range res.Results {
		if len(tracks) == SearchLimit {
			break
		}
		tracks = append(tracks, track.Track{
			ID:        v.VideoID,
			URL:       watchURL(v.VideoID),
			Title:     v.Title,
			Duration:  parseClockDuration(v.Duration),
			Thumbnail: thumbnailURL(v.VideoID),
		})
	}
	return tracks, nil
}

// ByURL resolves a video or playlist link. Playlists expand to every entry.
func (r *Resolver) ByURL(ctx context.Context, rawURL string) ([]track.Track, error) {
	if id, ok := playlistID(rawURL); ok {
		return r.byPlaylist(ctx, id)
	}

	id, err := ExtractVideoID(rawURL)
	if err != nil {
		return nil, err
	}
	video, err := r.yt.GetVideoContext(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch video %s: %w", id, err)
	}
	return []track.Track{normalizeVideo(video)}, nil
}

func (r *Resolver) byPlaylist(ctx context.Context, id string) ([]track.Track, error) {
	playlist, err := r.yt.GetPlaylistContext(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch playlist %s: %w", id, err)
	}
	if len(playlist.Videos) == 0 {
		return nil, ErrNoResults
	}

	tracks := make([]track.Track, 0, len(playlist.Videos))
	for _, entry := range playlist.Videos {
		tracks = append(tracks, track.Track{
			ID:        entry.ID,
			URL:       watchURL(entry.ID),
			Title:     entry.Title,
			Duration:  entry.Duration,
			Thumbnail: bestThumbnail(entry.Thumbnails),
		})
	}
	return tracks, nil
}

func normalizeVideo(v *youtube.Video) track.Track {
	return track.Track{
		ID:        v.ID,
		URL:       watchURL(v.ID),
		Title:     v.Title,
		Duration:  v.Duration,
		Thumbnail: bestThumbnail(v.Thumbnails),
	}
}

func bestThumbnail(thumbs youtube.Thumbnails) string {
	var best youtube.Thumbnail
	for _, t := range thumbs {
		if t.Width > best.Width {
			best = t
		}
	}
	return best.URL
}

// IsURL reports whether the input looks like a link rather than a search
// phrase.
func IsURL(input string) bool {
	return strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://")
}

// ExtractVideoID pulls the video ID out of the common YouTube link shapes.
func ExtractVideoID(rawURL string) (string, error) {
	switch {
	case strings.Contains(rawURL, "youtu.be/"):
		parts := strings.Split(rawURL, "youtu.be/")
		if len(parts) != 2 || parts[1] == "" {
			return "", ErrUnsupportedURL
		}
		return strings.Split(parts[1], "?")[0], nil

	case strings.Contains(rawURL, "youtube.com/watch"):
		u, err := url.Parse(rawURL)
		if err != nil {
			return "", ErrUnsupportedURL
		}
		id := u.Query().Get("v")
		if id == "" {
			return "", ErrUnsupportedURL
		}
		return id, nil

	case strings.Contains(rawURL, "youtube.com/shorts/"):
		parts := strings.Split(rawURL, "shorts/")
		if len(parts) != 2 || parts[1] == "" {
			return "", ErrUnsupportedURL
		}
		return strings.Split(parts[1], "?")[0], nil

	default:
		return "", ErrUnsupportedURL
	}
}

// playlistID returns the list parameter of a playlist link. Watch links that
// merely carry a list parameter alongside a video are treated as videos.
func playlistID(rawURL string) (string, bool) {
	if !strings.Contains(rawURL, "youtube.com/playlist") {
		return "", false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	id := u.Query().Get("list")
	return id, id != ""
}

func watchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

func thumbnailURL(id string) string {
	return "https://i.ytimg.com/vi/" + id + "/hqdefault.jpg"
}

// parseClockDuration parses colon durations like "3:20" or "1:05:20".
func parseClockDuration(s string) time.Duration {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0
	}

	var total time.Duration
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0
		}
		total = total*60 + time.Duration(n)*time.Second
	}
	return total
}
