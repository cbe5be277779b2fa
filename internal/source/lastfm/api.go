package lastfm

import (
	"context"
	"errors"
	"strconv"

	"github.com/ademuri/lastfm-go/lastfm"
	"github.com/avast/retry-go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type lastfmAPI struct {
	client *lastfm.Api
}

func newAPI(apiKey, secret string) *lastfmAPI {
	return &lastfmAPI{client: lastfm.New(apiKey, secret)}
}

func (a *lastfmAPI) topArtists(user, period string) ([]string, error) {
	res, err := a.client.User.GetTopArtists(lastfm.P{
		"user":   user,
		"period": period,
		"limit":  pageLimit,
	})
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(res.Artists))
	for _, artist := range res.Artists {
		names = append(names, artist.Name)
	}
	return names, nil
}

func (a *lastfmAPI) topTracks(user, period string) ([]trackKey, error) {
	res, err := a.client.User.GetTopTracks(lastfm.P{
		"user":   user,
		"period": period,
		"limit":  pageLimit,
	})
	if err != nil {
		return nil, err
	}

	keys := make([]trackKey, 0, len(res.Tracks))
	for _, t := range res.Tracks {
		keys = append(keys, trackKey{artist: t.Artist.Name, name: t.Name})
	}
	return keys, nil
}

func (a *lastfmAPI) topTags(artist string) ([]tagCount, error) {
	res, err := a.client.Artist.GetTopTags(lastfm.P{
		"artist":      artist,
		"autocorrect": 1,
	})
	if err != nil {
		return nil, err
	}

	tags := make([]tagCount, 0, len(res.Tags))
	for _, t := range res.Tags {
		c, _ := strconv.Atoi(t.Count)
		tags = append(tags, tagCount{name: t.Name, count: c})
	}
	return tags, nil
}

// retryCall paces fn through limiter and retries it while last.fm reports a
// server-side error.
func retryCall(ctx context.Context, limiter *rate.Limiter, logger *zap.Logger, fn func() error) error {
	return retry.Do(
		func() error {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
			return fn()
		},
		retry.Context(ctx),
		retry.Attempts(5),
		retry.LastErrorOnly(true),
		retry.RetryIf(isServerError),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("last.fm errored, retrying", zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
}

func isServerError(err error) bool {
	var lerr *lastfm.LastfmError
	if errors.As(err, &lerr) {
		return lerr.Code/100 == 5
	}
	return false
}
