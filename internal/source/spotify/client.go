// Package spotify reads a listener's top artists and tracks from the Spotify
// Web API.
package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/KarlieKKY/spotify-discovery-analyzer/internal/insight"
	"github.com/KarlieKKY/spotify-discovery-analyzer/internal/source"
)

const (
	DefaultBaseURL = "https://api.spotify.com/v1"

	// Spotify's maximum page size for the top items endpoints.
	pageLimit = 50
)

var ErrUnauthorized = errors.New("spotify: unauthorized")

// StatusError is a non-200 response from the Web API. RetryAfter is the wait
// the server asked for, or 0.
type StatusError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("spotify: status %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// Client is a source.Provider backed by the Spotify Web API. The http.Client
// is expected to authorize requests, usually via oauth2.NewClient.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     *zap.Logger

	attempts uint
	delay    time.Duration
}

var _ source.Provider = (*Client)(nil)

func NewClient(httpClient *http.Client, baseURL string, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		limiter:    rate.NewLimiter(rate.Every(200*time.Millisecond), 2),
		logger:     logger,
		attempts:   5,
		delay:      500 * time.Millisecond,
	}
}

func (c *Client) Name() string {
	return "spotify"
}

func (c *Client) TopArtists(ctx context.Context, w insight.Window) ([]insight.Artist, error) {
	var page topArtistsPage
	if err := c.getTop(ctx, "artists", w, &page); err != nil {
		return nil, err
	}
	return page.toArtists(), nil
}

func (c *Client) TopTracks(ctx context.Context, w insight.Window) ([]insight.Track, error) {
	var page topTracksPage
	if err := c.getTop(ctx, "tracks", w, &page); err != nil {
		return nil, err
	}
	return page.toTracks(), nil
}

func (c *Client) getTop(ctx context.Context, kind string, w insight.Window, out any) error {
	endpoint := fmt.Sprintf("%s/me/top/%s?limit=%d&time_range=%s", c.baseURL, kind, pageLimit, timeRange(w))

	return retry.Do(
		func() error {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
			return c.get(ctx, endpoint, out)
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.DelayType(retryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn("spotify request failed, retrying",
				zap.String("kind", kind),
				zap.Stringer("window", w),
				zap.Uint("attempt", n+1),
				zap.Error(err))
		}),
	)
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("spotify: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("spotify: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("spotify: decoding %s: %w", endpoint, err)
	}
	return nil
}

// retryable reports whether a failed request is worth repeating: rate
// limiting, server errors and transport failures are.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= 500
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// retryDelay waits as long as the server asked, falling back to exponential
// backoff.
func retryDelay(n uint, err error, config *retry.Config) time.Duration {
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.RetryAfter > 0 {
		return statusErr.RetryAfter
	}
	return retry.BackOffDelay(n, err, config)
}

// parseRetryAfter accepts both forms of the header: delay seconds and an
// HTTP date.
func parseRetryAfter(value string, now time.Time) time.Duration {
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if when, err := http.ParseTime(value); err == nil {
		if until := when.Sub(now); until > 0 {
			return until
		}
	}
	return 0
}

func timeRange(w insight.Window) string {
	switch w {
	case insight.Recent:
		return "short_term"
	case insight.Medium:
		return "medium_term"
	default:
		return "long_term"
	}
}
