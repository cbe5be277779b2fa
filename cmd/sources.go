package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/KarlieKKY/spotify-discovery-analyzer/internal/source"
	"github.com/KarlieKKY/spotify-discovery-analyzer/internal/source/lastfm"
	"github.com/KarlieKKY/spotify-discovery-analyzer/internal/source/spotify"
	"github.com/KarlieKKY/spotify-discovery-analyzer/internal/store"
)

type SourceConfig struct {
	Name string
	User string

	SpotifyClientID     string
	SpotifyClientSecret string
	SpotifyRedirectURI  string
	SpotifyBaseURL      string

	LastFmApiKey string
	LastFmSecret string
}

// provider wraps a source.Provider with whatever must happen once fetching is
// done, such as storing a refreshed access token.
type provider struct {
	source.Provider
	finish func() error
}

func newProvider(ctx context.Context, config SourceConfig, db *store.Store, logger *zap.Logger) (*provider, error) {
	switch config.Name {
	case "lastfm":
		p := lastfm.New(config.LastFmApiKey, config.LastFmSecret, config.User, logger)
		return &provider{Provider: p, finish: func() error { return nil }}, nil
	case "spotify", "":
		return newSpotifyProvider(ctx, config, db, logger)
	}
	return nil, fmt.Errorf("unknown source %q: expected spotify or lastfm", config.Name)
}

func newSpotifyProvider(ctx context.Context, config SourceConfig, db *store.Store, logger *zap.Logger) (*provider, error) {
	saved, err := db.GetToken(config.User)
	if err != nil {
		return nil, err
	}
	if saved.AccessToken == "" && saved.RefreshToken == "" {
		return nil, fmt.Errorf("no Spotify token for %q, run authenticate first", config.User)
	}

	tok := &oauth2.Token{
		AccessToken:  saved.AccessToken,
		RefreshToken: saved.RefreshToken,
		TokenType:    saved.TokenType,
		Expiry:       saved.Expiry,
	}
	auth := spotify.AuthConfig(config.SpotifyClientID, config.SpotifyClientSecret, config.SpotifyRedirectURI)
	ts := auth.TokenSource(ctx, tok)
	client := spotify.NewClient(oauth2.NewClient(ctx, ts), config.SpotifyBaseURL, logger)

	finish := func() error {
		current, err := ts.Token()
		if err != nil {
			return fmt.Errorf("refreshing Spotify token: %w", err)
		}
		if current.AccessToken == saved.AccessToken {
			return nil
		}
		logger.Debug("storing refreshed token", zap.String("user", config.User), zap.Time("expiry", current.Expiry))
		return db.SaveToken(config.User, tokenFromOAuth(current))
	}
	return &provider{Provider: client, finish: finish}, nil
}

func tokenFromOAuth(tok *oauth2.Token) store.Token {
	return store.Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
	}
}
