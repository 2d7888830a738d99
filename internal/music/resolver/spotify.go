package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Maselkov/Toothy/internal/music/track"
)

var ErrInvalidSpotifyURL = errors.New("invalid Spotify URL")

// spotifyOEmbedURL serves track metadata without authentication. Only the
// title is needed to hand the track over to a YouTube search.
const spotifyOEmbedURL = "https://open.spotify.com/oembed"

// IsSpotifyURL reports whether the link points at open.spotify.com.
func IsSpotifyURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Host == "open.spotify.com"
}

// BySpotify resolves a Spotify track link by looking up its title through
// the oEmbed endpoint and searching YouTube for it. Album and playlist
// links are rejected.
func (r *Resolver) BySpotify(ctx context.Context, rawURL string) ([]track.Track, error) {
	if _, err := spotifyTrackID(rawURL); err != nil {
		return nil, err
	}

	title, err := r.spotifyTitle(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	results, err := r.ByQuery(ctx, title)
	if err != nil {
		return nil, err
	}
	return results[:1], nil
}

func (r *Resolver) spotifyTitle(ctx context.Context, rawURL string) (string, error) {
	endpoint := r.oembedURL + "?url=" + url.QueryEscape(rawURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build oembed request: %w", err)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch spotify metadata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", ErrInvalidSpotifyURL
	}

	var payload struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode spotify metadata: %w", err)
	}
	if payload.Title == "" {
		return "", ErrInvalidSpotifyURL
	}
	return payload.Title, nil
}

// spotifyTrackID pulls the track ID out of an open.spotify.com link.
// Locale prefixes like /intl-de/ are tolerated; anything that is not a
// track link fails.
func spotifyTrackID(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host != "open.spotify.com" {
		return "", ErrInvalidSpotifyURL
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) > 0 && strings.HasPrefix(parts[0], "intl-") {
		parts = parts[1:]
	}
	if len(parts) != 2 || parts[0] != "track" || parts[1] == "" {
		return "", ErrInvalidSpotifyURL
	}
	return parts[1], nil
}
