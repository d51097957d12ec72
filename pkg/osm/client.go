// Package osm provides rate-limited clients for the OpenStreetMap services
// used in live mode: Nominatim, Overpass and OSRM.
package osm

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/sydneyguide/sydneymcp/pkg/cache"
)

const (
	// DefaultUserAgent is the default User-Agent string
	DefaultUserAgent = "SydneyGuide/0.1.0"

	// geocodeCacheTTL bounds how long a reverse-geocoded address is reused.
	geocodeCacheTTL = 24 * time.Hour
	geocodeCacheMax = 1000
)

// Service names an upstream OSM service.
type Service string

const (
	ServiceNominatim Service = "Nominatim"
	ServiceOverpass  Service = "Overpass"
	ServiceOSRM      Service = "OSRM"
)

var (
	// Global HTTP client with connection pooling
	httpClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
		Timeout: 30 * time.Second,
	}

	// User agent string
	userAgent     = DefaultUserAgent
	userAgentLock sync.RWMutex
)

// SetUserAgent sets the User-Agent string
func SetUserAgent(ua string) {
	if ua == "" {
		return
	}
	userAgentLock.Lock()
	defer userAgentLock.Unlock()
	userAgent = ua
}

// GetUserAgent returns the current User-Agent string
func GetUserAgent() string {
	userAgentLock.RLock()
	defer userAgentLock.RUnlock()
	return userAgent
}

// StatusError reports a non-200 answer from an upstream service.
type StatusError struct {
	Service    Service
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.Service, e.StatusCode)
}

// Client talks to the OSM services. Each service has its own limiter; the
// public instances allow roughly one request per second.
type Client struct {
	logger   *slog.Logger
	http     *http.Client
	baseURLs map[Service]string
	limiters map[Service]*rate.Limiter
	geocodes *cache.TTLCache[string, *Address]
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the client's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient replaces the shared pooled HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithBaseURL points a service at a different endpoint.
func WithBaseURL(svc Service, baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURLs[svc] = baseURL
		}
	}
}

// WithRateLimit replaces the limiter of a service.
func WithRateLimit(svc Service, rps float64, burst int) Option {
	return func(c *Client) {
		c.limiters[svc] = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewOSMClient creates a new OSM API client
func NewOSMClient(opts ...Option) *Client {
	c := &Client{
		logger: slog.Default(),
		http:   httpClient,
		baseURLs: map[Service]string{
			ServiceNominatim: NominatimBaseURL,
			ServiceOverpass:  OverpassBaseURL,
			ServiceOSRM:      OSRMBaseURL,
		},
		limiters: map[Service]*rate.Limiter{
			ServiceNominatim: rate.NewLimiter(rate.Limit(1), 1),
			ServiceOverpass:  rate.NewLimiter(rate.Limit(1), 1),
			ServiceOSRM:      rate.NewLimiter(rate.Limit(1), 1),
		},
		geocodes: cache.NewTTLCache[string, *Address](geocodeCacheTTL, time.Hour, geocodeCacheMax),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "osm")
	return c
}

// Close releases the client's cache janitor.
func (c *Client) Close() {
	c.geocodes.Stop()
}

// NewRequestWithUserAgent creates a new HTTP request with proper User-Agent header
func NewRequestWithUserAgent(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	// Required by Nominatim's usage policy
	req.Header.Set("User-Agent", GetUserAgent())
	return req, nil
}

// do performs req after waiting on the service limiter. Non-200 answers are
// returned as *StatusError with the body already closed.
func (c *Client) do(ctx context.Context, svc Service, req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", GetUserAgent())

	if lim, ok := c.limiters[svc]; ok {
		if err := lim.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s rate limit: %w", svc, err)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", svc, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		c.logger.Error("upstream service returned error", "service", svc, "status", resp.StatusCode)
		return nil, &StatusError{Service: svc, StatusCode: resp.StatusCode}
	}
	return resp, nil
}
