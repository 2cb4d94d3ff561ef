// Package catalog searches the Spotify track catalog
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/samber/lo"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"
)

// LinkPrefix is prepended to a track code to build its public link
const LinkPrefix = "https://open.spotify.com/track/"

// Item is one track returned by a catalog search
type Item struct {
	URI     string
	Name    string
	Artists []string
}

// Code returns the identifying code of the track, taken from a spotify:track:{code} URI
func (i Item) Code() (string, bool) {
	return TrackCode(i.URI)
}

// TrackCode extracts the code from a spotify:track:{code} URI
func TrackCode(uri string) (string, bool) {
	parts := strings.Split(uri, ":")
	if len(parts) != 3 || parts[0] != "spotify" || parts[1] != "track" || parts[2] == "" {
		return "", false
	}
	return parts[2], true
}

// TrackLink builds the public link for a track code
func TrackLink(code string) string {
	return LinkPrefix + code
}

// Spotify is a catalog backed by the Spotify Web API
type Spotify struct {
	client *spotify.Client
	limit  int
	logger *slog.Logger
}

// NewSpotify authenticates with the client-credentials flow. The token is refreshed by the returned client.
func NewSpotify(ctx context.Context, clientID, clientSecret string, logger *slog.Logger) *Spotify {
	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	return NewSpotifyWithClient(spotify.New(cfg.Client(ctx)), logger)
}

// NewSpotifyWithClient wraps an already configured API client
func NewSpotifyWithClient(client *spotify.Client, logger *slog.Logger) *Spotify {
	return &Spotify{client: client, limit: 1, logger: logger}
}

// NewSpotifyAt talks to a Spotify-compatible API at baseURL without authentication
func NewSpotifyAt(baseURL string, httpClient *http.Client, logger *slog.Logger) *Spotify {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return NewSpotifyWithClient(spotify.New(httpClient, spotify.WithBaseURL(baseURL)), logger)
}

// Search runs a track search with Spotify field filters (artist:, track:)
func (s *Spotify) Search(ctx context.Context, query string) ([]Item, error) {
	res, err := s.client.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(s.limit))
	if err != nil {
		return nil, fmt.Errorf("searching catalog: %w", err)
	}
	if res.Tracks == nil {
		return nil, nil
	}

	s.logger.Debug("catalog search", "query", query, "results", len(res.Tracks.Tracks))

	return lo.Map(res.Tracks.Tracks, func(t spotify.FullTrack, _ int) Item {
		return Item{
			URI:     string(t.URI),
			Name:    t.Name,
			Artists: lo.Map(t.Artists, func(a spotify.SimpleArtist, _ int) string { return a.Name }),
		}
	}), nil
}
