package maps

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"itinerary-scoring-service/internal/ports"
)

const DefaultBaseURL = "https://maps.googleapis.com/maps/api"

// GoogleConfig configures a GoogleProvider. Zero values fall back to defaults.
type GoogleConfig struct {
	APIKey        string
	BaseURL       string
	Language      string
	Region        string
	RetryAttempts int
	RetryBackoff  time.Duration
	HTTPClient    *http.Client
}

// GoogleProvider implements PlaceProvider and RouteProvider on top of the
// Google Maps Places and Directions web services.
//
// It does no caching of its own; resolvers put a cache in front of it.
// The provider is safe for concurrent use.
type GoogleProvider struct {
	session  *http.Client
	apiKey   string
	baseURL  string
	language string
	region   string
	attempts int
	backoff  time.Duration
}

var (
	_ ports.PlaceProvider = (*GoogleProvider)(nil)
	_ ports.RouteProvider = (*GoogleProvider)(nil)
)

func NewGoogleProvider(cfg GoogleConfig) (*GoogleProvider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("google maps api key is empty: %w", ports.ErrUnavailable)
	}

	p := &GoogleProvider{
		session:  cfg.HTTPClient,
		apiKey:   strings.TrimSpace(cfg.APIKey),
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		language: cfg.Language,
		region:   cfg.Region,
		attempts: cfg.RetryAttempts,
		backoff:  cfg.RetryBackoff,
	}

	if p.session == nil {
		p.session = &http.Client{Timeout: 10 * time.Second}
	}
	if p.baseURL == "" {
		p.baseURL = DefaultBaseURL
	}
	if p.attempts < 1 {
		p.attempts = 3
	}
	if p.backoff <= 0 {
		p.backoff = 200 * time.Millisecond
	}

	return p, nil
}

// normalize collapses whitespace so equivalent queries hit the same cache entry.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// wrapStatus maps no-result statuses onto ports.ErrNotFound.
func wrapStatus(op string, err error) error {
	if isNoResult(err) {
		return fmt.Errorf("%s: %w: %w", op, ports.ErrNotFound, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

const (
	checkQuery   = "台北車站"
	checkTimeout = 3 * time.Second
)

// Check issues one text search to confirm the key is accepted.
// A query that matches nothing still counts as healthy.
func (g *GoogleProvider) Check(ctx context.Context) error {
	if g == nil || g.apiKey == "" {
		return ports.ErrUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("query", checkQuery)

	var found textSearchResponse
	if err := g.getJSON(ctx, "/place/textsearch/json", params, &found); err != nil && !isNoResult(err) {
		return fmt.Errorf("maps health check: %w", err)
	}
	return nil
}

var errEmptyQuery = errors.New("query must be non-empty")
