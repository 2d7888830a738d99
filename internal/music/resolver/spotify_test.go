package resolver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSpotifyTrackID(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{"track link", "https://open.spotify.com/track/4cOdK2wGLETKBW3PvgPWqT", "4cOdK2wGLETKBW3PvgPWqT", false},
		{"track link with params", "https://open.spotify.com/track/4cOdK2wGLETKBW3PvgPWqT?si=abc", "4cOdK2wGLETKBW3PvgPWqT", false},
		{"localized track link", "https://open.spotify.com/intl-de/track/4cOdK2wGLETKBW3PvgPWqT", "4cOdK2wGLETKBW3PvgPWqT", false},
		{"album link", "https://open.spotify.com/album/6QaVfG1pHYl1z15ZxkvVDW", "", true},
		{"playlist link", "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M", "", true},
		{"bare host", "https://open.spotify.com/", "", true},
		{"other site", "https://example.com/track/abc", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := spotifyTrackID(tt.url)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSpotifyURL) {
					t.Errorf("spotifyTrackID(%q) err = %v, want ErrInvalidSpotifyURL", tt.url, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("spotifyTrackID(%q) err = %v", tt.url, err)
			}
			if got != tt.want {
				t.Errorf("spotifyTrackID(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestIsSpotifyURL(t *testing.T) {
	if !IsSpotifyURL("https://open.spotify.com/track/abc") {
		t.Error("spotify link not recognized")
	}
	if IsSpotifyURL("https://www.youtube.com/watch?v=x") || IsSpotifyURL("not a link") {
		t.Error("non-spotify input recognized as spotify link")
	}
}

func TestSpotifyTitle_FetchedFromOEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if got := req.URL.Query().Get("url"); got != "https://open.spotify.com/track/abc" {
			t.Errorf("oembed url param = %q", got)
		}
		w.Write([]byte(`{"title": "Rick Astley - Never Gonna Give You Up"}`))
	}))
	defer srv.Close()

	r := New()
	r.oembedURL = srv.URL

	title, err := r.spotifyTitle(context.Background(), "https://open.spotify.com/track/abc")
	if err != nil {
		t.Fatalf("spotifyTitle err = %v", err)
	}
	if title != "Rick Astley - Never Gonna Give You Up" {
		t.Errorf("title = %q", title)
	}
}

func TestSpotifyTitle_NotFoundIsInvalid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	r := New()
	r.oembedURL = srv.URL

	if _, err := r.spotifyTitle(context.Background(), "https://open.spotify.com/track/gone"); !errors.Is(err, ErrInvalidSpotifyURL) {
		t.Errorf("err = %v, want ErrInvalidSpotifyURL", err)
	}
}
