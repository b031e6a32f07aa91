package ports

import (
	"context"
	"time"

	"fieldservice/internal/core/domain/model/kernel"
)

// TravelTime is a provider's answer for one origin/destination pair.
type TravelTime struct {
	DistanceKm      float64
	DurationMinutes float64
	// DurationInTrafficMinutes is set when the provider has live traffic data.
	DurationInTrafficMinutes *float64
}

// RouteLeg is one hop of an optimised route.
type RouteLeg struct {
	DistanceKm      float64
	DurationMinutes float64
}

// Route is a waypoint visiting order. Ordering holds indexes into the waypoints
// passed to OptimalRoute; Legs has len(Ordering)+1 entries (start → ... → end).
type Route struct {
	Ordering []int
	Legs     []RouteLeg
}

// TravelTimeProvider is an external routing service. Implementations must honour
// ctx cancellation; callers bound every call with a timeout.
type TravelTimeProvider interface {
	TravelTime(ctx context.Context, origin, destination kernel.Location, departure *time.Time) (TravelTime, error)
	OptimalRoute(ctx context.Context, start, end kernel.Location, waypoints []kernel.Location) (Route, error)
}
