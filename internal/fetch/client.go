// Package fetch downloads submarine cable and landing point GeoJSON.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/netsim/topogen/internal/groundtruth"
)

const (
	// BaseURL is the public submarine cable map API.
	BaseURL = "https://www.submarinecablemap.com/api/v3"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 60 * time.Second

	// RateLimit is the default number of requests per second.
	RateLimit = 1.0

	// Paths below BaseURL.
	LandingPointsPath = "landing-point/landing-point-geo.json"
	CablesPath        = "cable/cable-geo.json"

	// Output file names written by Save.
	LandingPointsFile = "landing-points.json"
	CablesFile        = "cables.json"

	// tripAfter consecutive server faults open the breaker.
	tripAfter = 3

	maxBody = 256 << 20
)

// Client is a rate-limited HTTP client guarded by a circuit breaker.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	baseURL    string
	logger     *zap.Logger
	cooldown   time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithRate sets the request rate in requests per second.
func WithRate(perSecond float64) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithLogger sets the logger for breaker state changes.
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// WithCooldown sets how long the breaker stays open before probing again.
func WithCooldown(d time.Duration) ClientOption {
	return func(c *Client) {
		c.cooldown = d
	}
}

// NewClient creates a cable data client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    BaseURL,
		logger:     zap.NewNop(),
		cooldown:   30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "cable-data",
		MaxRequests: 1,
		Timeout:     c.cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= tripAfter
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		IsSuccessful: func(err error) bool {
			return !serverFault(err)
		},
	})
	return c
}

// Get downloads baseURL/path.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	url := c.baseURL + "/" + strings.TrimLeft(path, "/")
	body, err := c.breaker.Execute(func() (interface{}, error) {
		return c.get(ctx, url)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, err
	}
	return body.([]byte), nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: url}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrNetwork, err)
	}
	return data, nil
}

// Download is a fetched and validated cable dataset.
type Download struct {
	LandingPoints []byte
	Cables        []byte
	Stats         Stats
}

// Stats counts the features in a Download.
type Stats struct {
	LandingPoints int `json:"landing_points"`
	Cables        int `json:"cables"`
}

// FetchDataset downloads both GeoJSON files and checks that they parse.
func (c *Client) FetchDataset(ctx context.Context) (*Download, error) {
	lp, err := c.Get(ctx, LandingPointsPath)
	if err != nil {
		return nil, fmt.Errorf("fetching landing points: %w", err)
	}
	cables, err := c.Get(ctx, CablesPath)
	if err != nil {
		return nil, fmt.Errorf("fetching cables: %w", err)
	}

	points, err := groundtruth.ParseLandingPoints(bytes.NewReader(lp))
	if err != nil {
		return nil, fmt.Errorf("%w: landing points: %v", ErrInvalidResponse, err)
	}
	lines, err := groundtruth.ParseCables(bytes.NewReader(cables))
	if err != nil {
		return nil, fmt.Errorf("%w: cables: %v", ErrInvalidResponse, err)
	}

	return &Download{
		LandingPoints: lp,
		Cables:        cables,
		Stats:         Stats{LandingPoints: len(points), Cables: len(lines)},
	}, nil
}

// Save writes the dataset into dir and returns the two file paths.
func (d *Download) Save(dir string) (landingPoints, cables string, err error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", fmt.Errorf("creating %s: %w", dir, err)
	}
	landingPoints = filepath.Join(dir, LandingPointsFile)
	cables = filepath.Join(dir, CablesFile)
	if err := writeFileAtomic(landingPoints, d.LandingPoints); err != nil {
		return "", "", err
	}
	if err := writeFileAtomic(cables, d.Cables); err != nil {
		return "", "", err
	}
	return landingPoints, cables, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming to %s: %w", path, err)
	}
	return nil
}
