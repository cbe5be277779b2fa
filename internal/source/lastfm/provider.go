// Package lastfm reads a listener's top artists and tracks from last.fm, using
// each artist's top tags as its genres.
package lastfm

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/KarlieKKY/spotify-discovery-analyzer/internal/insight"
	"github.com/KarlieKKY/spotify-discovery-analyzer/internal/source"
)

const pageLimit = 50

type trackKey struct {
	artist string
	name   string
}

type tagCount struct {
	name  string
	count int
}

// backend is the subset of the last.fm API the provider needs.
type backend interface {
	topArtists(user, period string) ([]string, error)
	topTracks(user, period string) ([]trackKey, error)
	topTags(artist string) ([]tagCount, error)
}

// Provider is a source.Provider backed by last.fm. Artist ids are lowercased
// artist names, since last.fm has no stable artist id for every artist.
type Provider struct {
	api     backend
	user    string
	limiter *rate.Limiter
	logger  *zap.Logger

	mu   sync.Mutex
	tags map[string][]string
}

var _ source.Provider = (*Provider)(nil)

// New returns a provider for the given last.fm user.
func New(apiKey, secret, user string, logger *zap.Logger) *Provider {
	return newProvider(newAPI(apiKey, secret), user, logger)
}

func newProvider(api backend, user string, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		api:     api,
		user:    user,
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
		logger:  logger,
		tags:    make(map[string][]string),
	}
}

func (p *Provider) Name() string {
	return "lastfm"
}

func (p *Provider) TopArtists(ctx context.Context, w insight.Window) ([]insight.Artist, error) {
	var names []string
	err := p.call(ctx, func() error {
		var err error
		names, err = p.api.topArtists(p.user, period(w))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetching top artists: %w", err)
	}

	artists := make([]insight.Artist, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		id := strings.ToLower(name)
		if seen[id] {
			continue
		}
		seen[id] = true

		genres, err := p.genres(ctx, name)
		if err != nil {
			return nil, err
		}
		artists = append(artists, insight.Artist{ID: id, Name: name, Genres: genres})
	}
	return artists, nil
}

func (p *Provider) TopTracks(ctx context.Context, w insight.Window) ([]insight.Track, error) {
	var keys []trackKey
	err := p.call(ctx, func() error {
		var err error
		keys, err = p.api.topTracks(p.user, period(w))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetching top tracks: %w", err)
	}

	tracks := make([]insight.Track, 0, len(keys))
	for _, k := range keys {
		tracks = append(tracks, insight.Track{ID: strings.ToLower(k.artist + " - " + k.name)})
	}
	return tracks, nil
}

// genres returns the artist's normalized tags, fetching them at most once per
// provider. A failed tag lookup leaves the artist without genres rather than
// failing the window.
func (p *Provider) genres(ctx context.Context, artist string) ([]string, error) {
	key := strings.ToLower(artist)

	p.mu.Lock()
	cached, ok := p.tags[key]
	p.mu.Unlock()
	if ok {
		return cached, nil
	}

	var tags []tagCount
	err := p.call(ctx, func() error {
		var err error
		tags, err = p.api.topTags(artist)
		return err
	})
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		p.logger.Warn("fetching tags failed", zap.String("artist", artist), zap.Error(err))
		return []string{}, nil
	}

	names := make([]string, 0, len(tags))
	counts := make([]int, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.name)
		counts = append(counts, t.count)
	}
	genres := normalizeTags(names, counts)

	p.mu.Lock()
	p.tags[key] = genres
	p.mu.Unlock()
	return genres, nil
}

func (p *Provider) call(ctx context.Context, fn func() error) error {
	return retryCall(ctx, p.limiter, p.logger, fn)
}

func period(w insight.Window) string {
	switch w {
	case insight.Recent:
		return "1month"
	case insight.Medium:
		return "6month"
	default:
		return "overall"
	}
}
