package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"fieldservice/internal/core/domain/model/kernel"
	"fieldservice/internal/core/ports"
)

const (
	// FallbackSpeedKmh converts Haversine distance to minutes when no provider answers.
	FallbackSpeedKmh = 30.0
	// DefaultProviderTimeout bounds a single provider call.
	DefaultProviderTimeout = 2 * time.Second
	// MaxTravelDistanceKm is slightly above half the Earth's circumference.
	// Longer provider distances are treated as invalid.
	MaxTravelDistanceKm = 20100.0
	// MaxTravelMinutes is one week. Longer provider durations are treated as invalid.
	MaxTravelMinutes = 7 * 24 * 60.0
)

// TravelSource tells where an estimate came from.
type TravelSource string

const (
	SourceProvider TravelSource = "provider"
	SourceFallback TravelSource = "fallback"
)

// TravelEstimate is a distance/duration pair between two locations.
type TravelEstimate struct {
	DistanceKm      float64
	DurationMinutes float64
	Source          TravelSource
}

// RouteEstimate is a visiting order for waypoints with per-leg estimates.
type RouteEstimate struct {
	Ordering             []int
	Legs                 []TravelEstimate
	TotalDistanceKm      float64
	TotalDurationMinutes float64
	Source               TravelSource
}

// EstimateObserver receives the outcome of every estimate. err is the provider
// error that caused a fallback, or nil.
type EstimateObserver interface {
	ObserveEstimate(source TravelSource, err error, elapsed time.Duration)
}

// TravelEstimator computes travel between two points. It never fails: provider
// errors, timeouts and invalid answers fall back to Haversine distance at
// FallbackSpeedKmh. The provider is called at most once per estimate.
type TravelEstimator struct {
	provider ports.TravelTimeProvider
	timeout  time.Duration
	observer EstimateObserver
	logger   *slog.Logger
}

// EstimatorOption configures a TravelEstimator.
type EstimatorOption func(*TravelEstimator)

// WithProviderTimeout bounds each provider call. Non-positive values keep
// DefaultProviderTimeout.
func WithProviderTimeout(timeout time.Duration) EstimatorOption {
	return func(e *TravelEstimator) {
		if timeout > 0 {
			e.timeout = timeout
		}
	}
}

// WithEstimateObserver reports the source and provider error of every estimate.
func WithEstimateObserver(observer EstimateObserver) EstimatorOption {
	return func(e *TravelEstimator) { e.observer = observer }
}

// WithEstimatorLogger sets the logger for fallback diagnostics. nil is ignored.
func WithEstimatorLogger(logger *slog.Logger) EstimatorOption {
	return func(e *TravelEstimator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewTravelEstimator creates an estimator. A nil provider yields a purely local estimator.
func NewTravelEstimator(provider ports.TravelTimeProvider, opts ...EstimatorOption) *TravelEstimator {
	e := &TravelEstimator{
		provider: provider,
		timeout:  DefaultProviderTimeout,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "travel-estimator")
	return e
}

// Estimate returns the travel between origin and destination.
func (e *TravelEstimator) Estimate(
	ctx context.Context,
	origin, destination kernel.Location,
	departure *time.Time,
) TravelEstimate {
	if e.provider == nil {
		return fallbackEstimate(origin, destination)
	}

	started := time.Now()
	tt, err := e.callProvider(ctx, origin, destination, departure)
	if err == nil {
		err = validateTravelTime(tt)
	}
	if err != nil {
		e.logger.DebugContext(ctx, "travel provider unavailable, using fallback", "error", err)
		e.observe(SourceFallback, err, time.Since(started))
		return fallbackEstimate(origin, destination)
	}

	duration := tt.DurationMinutes
	if tt.DurationInTrafficMinutes != nil {
		duration = *tt.DurationInTrafficMinutes
	}
	e.observe(SourceProvider, nil, time.Since(started))

	return TravelEstimate{DistanceKm: tt.DistanceKm, DurationMinutes: duration, Source: SourceProvider}
}

// EstimateRoute orders waypoints between start and end. Without a usable provider
// answer it visits the nearest unvisited waypoint next.
func (e *TravelEstimator) EstimateRoute(
	ctx context.Context,
	start, end kernel.Location,
	waypoints []kernel.Location,
) RouteEstimate {
	if e.provider != nil {
		started := time.Now()
		route, err := e.callRoute(ctx, start, end, waypoints)
		if err == nil {
			err = validateRoute(route, len(waypoints))
		}
		if err == nil {
			e.observe(SourceProvider, nil, time.Since(started))
			return routeFromProvider(route)
		}
		e.logger.DebugContext(ctx, "route provider unavailable, using nearest neighbour", "error", err)
		e.observe(SourceFallback, err, time.Since(started))
	}

	return nearestNeighbourRoute(start, end, waypoints)
}

func (e *TravelEstimator) callProvider(
	ctx context.Context,
	origin, destination kernel.Location,
	departure *time.Time,
) (ports.TravelTime, error) {
	return callWithTimeout(ctx, e.timeout, func(ctx context.Context) (ports.TravelTime, error) {
		return e.provider.TravelTime(ctx, origin, destination, departure)
	})
}

func (e *TravelEstimator) callRoute(
	ctx context.Context,
	start, end kernel.Location,
	waypoints []kernel.Location,
) (ports.Route, error) {
	return callWithTimeout(ctx, e.timeout, func(ctx context.Context) (ports.Route, error) {
		return e.provider.OptimalRoute(ctx, start, end, waypoints)
	})
}

type callOutcome[T any] struct {
	value T
	err   error
}

// callWithTimeout runs call in its own goroutine so a provider that ignores ctx
// still cannot hold the caller past timeout. Panics become errors.
func callWithTimeout[T any](
	ctx context.Context,
	timeout time.Duration,
	call func(context.Context) (T, error),
) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan callOutcome[T], 1)
	go func() {
		var out callOutcome[T]
		defer func() {
			if r := recover(); r != nil {
				out.err = fmt.Errorf("provider panicked: %v", r)
			}
			done <- out
		}()
		out.value, out.err = call(ctx)
	}()

	select {
	case out := <-done:
		return out.value, out.err
	case <-ctx.Done():
		var zero T
		return zero, fmt.Errorf("provider call abandoned: %w", ctx.Err())
	}
}

func (e *TravelEstimator) observe(source TravelSource, err error, elapsed time.Duration) {
	if e.observer != nil {
		e.observer.ObserveEstimate(source, err, elapsed)
	}
}

func validateTravelTime(tt ports.TravelTime) error {
	if !isPlausibleDistance(tt.DistanceKm) || !isPlausibleDuration(tt.DurationMinutes) {
		return fmt.Errorf("provider returned invalid travel time %+v", tt)
	}
	if tt.DurationInTrafficMinutes != nil && !isPlausibleDuration(*tt.DurationInTrafficMinutes) {
		return fmt.Errorf("provider returned invalid traffic duration %v", *tt.DurationInTrafficMinutes)
	}
	return nil
}

func validateRoute(route ports.Route, waypoints int) error {
	if len(route.Ordering) != waypoints {
		return fmt.Errorf("route has %d stops, expected %d", len(route.Ordering), waypoints)
	}
	seen := make([]bool, waypoints)
	for _, idx := range route.Ordering {
		if idx < 0 || idx >= waypoints || seen[idx] {
			return fmt.Errorf("route ordering %v is not a permutation", route.Ordering)
		}
		seen[idx] = true
	}
	if len(route.Legs) != waypoints+1 {
		return fmt.Errorf("route has %d legs, expected %d", len(route.Legs), waypoints+1)
	}
	for _, leg := range route.Legs {
		if !isPlausibleDistance(leg.DistanceKm) || !isPlausibleDuration(leg.DurationMinutes) {
			return fmt.Errorf("route leg %+v is invalid", leg)
		}
	}
	return nil
}

func routeFromProvider(route ports.Route) RouteEstimate {
	out := RouteEstimate{
		Ordering: append([]int(nil), route.Ordering...),
		Legs:     make([]TravelEstimate, 0, len(route.Legs)),
		Source:   SourceProvider,
	}
	for _, leg := range route.Legs {
		out.Legs = append(out.Legs, TravelEstimate{
			DistanceKm:      leg.DistanceKm,
			DurationMinutes: leg.DurationMinutes,
			Source:          SourceProvider,
		})
		out.TotalDistanceKm += leg.DistanceKm
		out.TotalDurationMinutes += leg.DurationMinutes
	}
	return out
}

func nearestNeighbourRoute(start, end kernel.Location, waypoints []kernel.Location) RouteEstimate {
	out := RouteEstimate{
		Ordering: make([]int, 0, len(waypoints)),
		Legs:     make([]TravelEstimate, 0, len(waypoints)+1),
		Source:   SourceFallback,
	}
	visited := make([]bool, len(waypoints))
	current := start

	addLeg := func(to kernel.Location) {
		leg := fallbackEstimate(current, to)
		out.Legs = append(out.Legs, leg)
		out.TotalDistanceKm += leg.DistanceKm
		out.TotalDurationMinutes += leg.DurationMinutes
		current = to
	}

	for range waypoints {
		best, bestDist := -1, math.Inf(1)
		for i, wp := range waypoints {
			if visited[i] {
				continue
			}
			if d := haversine(current, wp); d < bestDist {
				best, bestDist = i, d
			}
		}
		visited[best] = true
		out.Ordering = append(out.Ordering, best)
		addLeg(waypoints[best])
	}
	addLeg(end)

	return out
}

func fallbackEstimate(origin, destination kernel.Location) TravelEstimate {
	d := haversine(origin, destination)
	return TravelEstimate{
		DistanceKm:      d,
		DurationMinutes: d / FallbackSpeedKmh * 60,
		Source:          SourceFallback,
	}
}

func haversine(a, b kernel.Location) float64 {
	return kernel.HaversineKm(a.Latitude(), a.Longitude(), b.Latitude(), b.Longitude())
}

func isPlausibleDistance(km float64) bool {
	return isNonNegative(km) && km <= MaxTravelDistanceKm
}

func isPlausibleDuration(m float64) bool {
	return isNonNegative(m) && m <= MaxTravelMinutes
}

func isNonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
