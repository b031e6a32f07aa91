package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fieldservice/internal/core/domain/model/kernel"
	"fieldservice/internal/core/ports"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const maxResponseBytes = 1 << 20

var (
	// ErrRateLimited is returned without calling the provider when the local limiter is exhausted.
	ErrRateLimited = errors.New("routing: rate limit exceeded")
	// ErrCircuitOpen is returned while the breaker rejects calls.
	ErrCircuitOpen = errors.New("routing: circuit breaker is open")
)

// StatusError is a non-2xx answer of the routing service.
type StatusError struct {
	Code int
	Body string
}

// Error includes the status code and the start of the body.
func (e *StatusError) Error() string {
	return fmt.Sprintf("routing: unexpected status %d: %s", e.Code, e.Body)
}

// Config holds the connection and protection settings. Zero values take defaults.
type Config struct {
	BaseURL string
	APIKey  string
	// Timeout bounds one HTTP round trip.
	Timeout time.Duration
	// RequestsPerSecond and Burst size the token bucket; zero disables limiting.
	RequestsPerSecond float64
	Burst             int
	// BreakerFailures consecutive failures open the breaker for BreakerOpenTimeout.
	BreakerFailures    uint32
	BreakerOpenTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = 2 * time.Second
	}
	if c.Burst <= 0 {
		c.Burst = max(1, int(c.RequestsPerSecond))
	}
	if c.BreakerFailures == 0 {
		c.BreakerFailures = 5
	}
	if c.BreakerOpenTimeout <= 0 {
		c.BreakerOpenTimeout = 30 * time.Second
	}
	return c
}

// BreakerObserver is notified of circuit breaker transitions.
type BreakerObserver interface {
	ObserveBreakerState(name string, state string)
}

// HTTPProvider calls the routing service.
type HTTPProvider struct {
	baseURL  string
	apiKey   string
	client   *http.Client
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker[[]byte]
	logger   *slog.Logger
	observer BreakerObserver
}

// ProviderOption configures an HTTPProvider.
type ProviderOption func(*HTTPProvider)

// WithHTTPClient replaces the default client, e.g. with a test server client.
func WithHTTPClient(client *http.Client) ProviderOption {
	return func(p *HTTPProvider) {
		if client != nil {
			p.client = client
		}
	}
}

// WithBreakerObserver reports circuit breaker state changes.
func WithBreakerObserver(observer BreakerObserver) ProviderOption {
	return func(p *HTTPProvider) { p.observer = observer }
}

// NewHTTPProvider creates a provider for cfg.BaseURL with a rate limiter and a
// circuit breaker in front of every call.
//
// Parameters:
//   - cfg: base URL, API key, timeout, limiter and breaker settings
//   - logger: base logger; nil means slog.Default
//   - opts: optional client and observer
//
// Example:
//
//	provider := routing.NewHTTPProvider(cfg, logger, routing.WithBreakerObserver(m))
func NewHTTPProvider(cfg Config, logger *slog.Logger, opts ...ProviderOption) *HTTPProvider {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}

	p := &HTTPProvider{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger.With("component", "routing-provider"),
	}
	if cfg.RequestsPerSecond > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)
	}
	for _, opt := range opts {
		opt(p)
	}

	p.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "routing",
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		IsSuccessful: func(err error) bool {
			// Client errors are our fault, not the service's.
			var status *StatusError
			if errors.As(err, &status) {
				return status.Code < http.StatusInternalServerError
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			p.logger.Info("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
			if p.observer != nil {
				p.observer.ObserveBreakerState(name, to.String())
			}
		},
	})

	return p
}

type pointJSON struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

func toPoint(l kernel.Location) pointJSON {
	return pointJSON{Latitude: l.Latitude(), Longitude: l.Longitude()}
}

type travelTimeResponse struct {
	DistanceKm               float64  `json:"distance_km"`
	DurationMinutes          float64  `json:"duration_minutes"`
	DurationInTrafficMinutes *float64 `json:"duration_in_traffic_minutes,omitempty"`
}

type routeRequest struct {
	Start     pointJSON   `json:"start"`
	End       pointJSON   `json:"end"`
	Waypoints []pointJSON `json:"waypoints"`
}

type routeResponse struct {
	Ordering []int `json:"ordering"`
	Legs     []struct {
		DistanceKm      float64 `json:"distance_km"`
		DurationMinutes float64 `json:"duration_minutes"`
	} `json:"legs"`
}

// TravelTime asks GET /v1/travel-time for one origin/destination pair.
func (p *HTTPProvider) TravelTime(
	ctx context.Context,
	origin, destination kernel.Location,
	departure *time.Time,
) (ports.TravelTime, error) {
	q := url.Values{}
	q.Set("origin", formatPoint(origin))
	q.Set("destination", formatPoint(destination))
	if departure != nil {
		q.Set("departure", departure.UTC().Format(time.RFC3339))
	}

	body, err := p.do(ctx, http.MethodGet, "/v1/travel-time?"+q.Encode(), nil)
	if err != nil {
		return ports.TravelTime{}, err
	}

	var resp travelTimeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return ports.TravelTime{}, fmt.Errorf("routing: decode travel time: %w", err)
	}

	return ports.TravelTime{
		DistanceKm:               resp.DistanceKm,
		DurationMinutes:          resp.DurationMinutes,
		DurationInTrafficMinutes: resp.DurationInTrafficMinutes,
	}, nil
}

// OptimalRoute asks POST /v1/route for a waypoint visiting order.
func (p *HTTPProvider) OptimalRoute(
	ctx context.Context,
	start, end kernel.Location,
	waypoints []kernel.Location,
) (ports.Route, error) {
	req := routeRequest{Start: toPoint(start), End: toPoint(end), Waypoints: make([]pointJSON, 0, len(waypoints))}
	for _, w := range waypoints {
		req.Waypoints = append(req.Waypoints, toPoint(w))
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return ports.Route{}, err
	}

	body, err := p.do(ctx, http.MethodPost, "/v1/route", payload)
	if err != nil {
		return ports.Route{}, err
	}

	var resp routeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return ports.Route{}, fmt.Errorf("routing: decode route: %w", err)
	}

	route := ports.Route{Ordering: resp.Ordering, Legs: make([]ports.RouteLeg, 0, len(resp.Legs))}
	for _, leg := range resp.Legs {
		route.Legs = append(route.Legs, ports.RouteLeg{DistanceKm: leg.DistanceKm, DurationMinutes: leg.DurationMinutes})
	}
	return route, nil
}

// do sends one request through the limiter and the breaker and returns the body.
func (p *HTTPProvider) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	if p.limiter != nil && !p.limiter.Allow() {
		return nil, ErrRateLimited
	}

	body, err := p.breaker.Execute(func() ([]byte, error) {
		return p.roundTrip(ctx, method, path, payload)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrCircuitOpen
	}
	return body, err
}

func (p *HTTPProvider) roundTrip(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}

func formatPoint(l kernel.Location) string {
	return strconv.FormatFloat(l.Latitude(), 'f', 6, 64) + "," + strconv.FormatFloat(l.Longitude(), 'f', 6, 64)
}
