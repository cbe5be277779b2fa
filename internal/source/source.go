// Package source fetches a listener's per-window top artists and tracks from
// an upstream catalog service.
package source

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/KarlieKKY/spotify-discovery-analyzer/internal/insight"
)

// Provider is an upstream catalog that ranks a listener's artists and tracks
// over each window.
type Provider interface {
	TopArtists(ctx context.Context, w insight.Window) ([]insight.Artist, error)
	TopTracks(ctx context.Context, w insight.Window) ([]insight.Track, error)
	Name() string
}

// FetchError reports which collection could not be fetched.
type FetchError struct {
	Source string
	Window insight.Window
	Kind   string // "artists" or "tracks"
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %s %s from %s: %v", insight.ErrUpstreamFetch, e.Window, e.Kind, e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Is(target error) bool {
	return target == insight.ErrUpstreamFetch
}

// Fetch retrieves all six collections concurrently. The first failure cancels
// the remaining requests and is returned as a *FetchError; no partial
// Listening is returned.
func Fetch(ctx context.Context, p Provider, logger *zap.Logger) (insight.Listening, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("source", p.Name()))

	var l insight.Listening
	g, ctx := errgroup.WithContext(ctx)
	for _, w := range insight.Windows {
		w := w
		data := l.Window(w)

		g.Go(func() error {
			artists, err := p.TopArtists(ctx, w)
			if err != nil {
				return &FetchError{Source: p.Name(), Window: w, Kind: "artists", Err: err}
			}
			logger.Debug("fetched artists", zap.Stringer("window", w), zap.Int("count", len(artists)))
			data.Artists = artists
			return nil
		})

		g.Go(func() error {
			tracks, err := p.TopTracks(ctx, w)
			if err != nil {
				return &FetchError{Source: p.Name(), Window: w, Kind: "tracks", Err: err}
			}
			logger.Debug("fetched tracks", zap.Stringer("window", w), zap.Int("count", len(tracks)))
			data.Tracks = tracks
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Warn("fetch failed", zap.Error(err))
		return insight.Listening{}, err
	}
	return l, nil
}
