package vue

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/donaldgifford/ticket-watcher/internal/metrics"
	domain "github.com/donaldgifford/ticket-watcher/pkg/types"
)

const (
	defaultMovieURL  = "https://www.vuecinemas.nl/movies.json"
	defaultUserAgent = "ticket-watcher"
	defaultTimeout   = 15 * time.Second

	// maxBodyBytes bounds how much of a catalog response is read.
	maxBodyBytes = 8 << 20
)

// Client implements Catalog over the public Vue Cinemas JSON endpoints.
type Client struct {
	movieURL  string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
}

// Option configures the Client.
type Option func(*Client)

// WithMovieURL overrides the default movie metadata endpoint.
func WithMovieURL(u string) Option {
	return func(c *Client) {
		c.movieURL = u
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithRateLimit caps requests to perSecond with the given burst. Every
// request waits on the limiter before it is sent.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// NewClient creates a catalog client. timeout bounds every single request;
// zero selects the default. Requests are traced through the global tracer
// provider.
func NewClient(timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		movieURL:  defaultMovieURL,
		userAgent: defaultUserAgent,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Movie implements Catalog.Movie.
func (c *Client) Movie(ctx context.Context, movieID int) (*domain.Movie, error) {
	u, err := url.Parse(c.movieURL)
	if err != nil {
		return nil, fmt.Errorf("parsing movie URL: %w", err)
	}
	params := u.Query()
	params.Set("movie_id", strconv.Itoa(movieID))
	u.RawQuery = params.Encode()

	var movie domain.Movie
	if err := c.getJSON(ctx, "movie", u.String(), &movie); err != nil {
		return nil, fmt.Errorf("fetching movie %d: %w", movieID, err)
	}
	if !movie.ID.IsSet() || movie.ID.String() == "" {
		return nil, fmt.Errorf("fetching movie %d: %w", movieID, ErrMissingMovieID)
	}
	return &movie, nil
}

// Performances implements Catalog.Performances. An empty JSON array yields
// an empty, non-nil slice.
func (c *Client) Performances(ctx context.Context, u string) ([]domain.Performance, error) {
	perfs := []domain.Performance{}
	if err := c.getJSON(ctx, "performances", u, &perfs); err != nil {
		return nil, fmt.Errorf("fetching performances: %w", err)
	}
	return perfs, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint, u string, dst any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating HTTP request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.CatalogRequestDuration.WithLabelValues(endpoint, "error").
			Observe(time.Since(start).Seconds())
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	metrics.CatalogRequestDuration.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).
		Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w (status %d): %s", ErrUnexpectedStatus, resp.StatusCode, truncate(body, 256))
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("parsing %s response: %w", endpoint, err)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
