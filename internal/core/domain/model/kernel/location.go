package kernel

import (
	"errors"
	"fmt"
	"math"

	"fieldservice/internal/pkg/errs"
	"fieldservice/internal/pkg/guard"
)

const (
	// MinLatitude is the southern bound of a valid latitude in degrees.
	MinLatitude = -90.0
	// MaxLatitude is the northern bound of a valid latitude in degrees.
	MaxLatitude = 90.0
	// MinLongitude is the western bound of a valid longitude in degrees.
	MinLongitude = -180.0
	// MaxLongitude is the eastern bound of a valid longitude in degrees.
	MaxLongitude = 180.0

	// EarthRadiusKm is the mean Earth radius used by the Haversine formula.
	EarthRadiusKm = 6371.0
)

// ErrLocationIsNotConstructed is returned when a zero Location is used.
var ErrLocationIsNotConstructed = errs.NewValueIsRequiredError(
	"location must be created via NewLocation constructor")

// Location is an immutable WGS84 coordinate pair.
// The zero value is invalid; build instances with NewLocation.
//
// Example:
//
//	depot, err := kernel.NewLocation(52.5200, 13.4050)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(depot) // Location(52.520000,13.405000)
type Location struct { //nolint:recvcheck //using for validation
	latitude  float64
	longitude float64
	guard     guard.ConstructorGuard
}

// NewLocation validates both coordinates and returns the location.
// All range violations are reported together.
func NewLocation(latitude, longitude float64) (Location, error) {
	loc := Location{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(loc.setLatitude(latitude), loc.setLongitude(longitude)); err != nil {
		return Location{}, err
	}

	return loc, nil
}

// MustNewLocation is NewLocation for literals known to be valid; it panics otherwise.
func MustNewLocation(latitude, longitude float64) Location {
	loc, err := NewLocation(latitude, longitude)
	if err != nil {
		panic(err)
	}
	return loc
}

// Validate reports whether the location was built through NewLocation.
func (l Location) Validate() error {
	return l.guard.Validate(ErrLocationIsNotConstructed)
}

// Latitude returns the latitude in degrees.
func (l Location) Latitude() float64 {
	return l.latitude
}

// Longitude returns the longitude in degrees.
func (l Location) Longitude() float64 {
	return l.longitude
}

// String formats the coordinates as "Location(lat,lon)" for logs.
func (l Location) String() string {
	return fmt.Sprintf("Location(%f,%f)", l.latitude, l.longitude)
}

// IsEqual compares coordinates of two constructed locations.
func (l Location) IsEqual(other Location) (bool, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return false, err
	}

	return l.latitude == other.latitude && l.longitude == other.longitude, nil
}

// DistanceKm returns the great-circle distance to other using the Haversine formula:
//
//	a = sin²(Δlat/2) + cos(lat1)·cos(lat2)·sin²(Δlon/2)
//	d = 2·R·asin(√a)
//
// The result is symmetric and zero for identical points.
func (l Location) DistanceKm(other Location) (float64, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return 0, err
	}

	return HaversineKm(l.latitude, l.longitude, other.latitude, other.longitude), nil
}

// HaversineKm is the raw Haversine distance between two coordinate pairs in degrees.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	dPhi := toRadians(lat2 - lat1)
	dLambda := toRadians(lon2 - lon1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)

	return 2 * EarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(a)))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func (l *Location) setLatitude(latitude float64) error {
	if math.IsNaN(latitude) || latitude < MinLatitude || latitude > MaxLatitude {
		return errs.NewValueIsOutOfRangeError("latitude", latitude, MinLatitude, MaxLatitude)
	}

	l.latitude = latitude
	return nil
}

func (l *Location) setLongitude(longitude float64) error {
	if math.IsNaN(longitude) || longitude < MinLongitude || longitude > MaxLongitude {
		return errs.NewValueIsOutOfRangeError("longitude", longitude, MinLongitude, MaxLongitude)
	}

	l.longitude = longitude
	return nil
}
