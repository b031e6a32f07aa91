package routing

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"fieldservice/internal/core/domain/model/kernel"
	"fieldservice/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "fieldservice:travel:"
	// departureBucket groups departures so nearby requests share an entry.
	departureBucket = 15 * time.Minute
)

// CachedProvider keeps TravelTime answers in Redis. Redis failures are logged
// and the call goes to the wrapped provider. OptimalRoute is never cached.
type CachedProvider struct {
	inner  ports.TravelTimeProvider
	client redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

var _ ports.TravelTimeProvider = (*CachedProvider)(nil)

// NewCachedProvider wraps inner with a Redis cache. Non-positive ttl means ten
// minutes; a nil logger means slog.Default.
func NewCachedProvider(
	inner ports.TravelTimeProvider,
	client redis.Cmdable,
	ttl time.Duration,
	logger *slog.Logger,
) *CachedProvider {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedProvider{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger.With("component", "routing-cache"),
	}
}

type cachedTravelTime struct {
	DistanceKm               float64  `json:"distance_km"`
	DurationMinutes          float64  `json:"duration_minutes"`
	DurationInTrafficMinutes *float64 `json:"duration_in_traffic_minutes,omitempty"`
}

// TravelTime serves the answer from Redis when present, otherwise asks inner
// and stores the answer for ttl. Provider errors are never cached.
func (c *CachedProvider) TravelTime(
	ctx context.Context,
	origin, destination kernel.Location,
	departure *time.Time,
) (ports.TravelTime, error) {
	key := CacheKey(origin, destination, departure)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached cachedTravelTime
		if jsonErr := json.Unmarshal(data, &cached); jsonErr == nil {
			return ports.TravelTime(cached), nil
		}
		c.logger.Warn("discarding malformed cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("cache read failed", "key", key, "error", err)
	}

	result, err := c.inner.TravelTime(ctx, origin, destination, departure)
	if err != nil {
		return ports.TravelTime{}, err
	}

	payload, err := json.Marshal(cachedTravelTime(result))
	if err == nil {
		if setErr := c.client.Set(ctx, key, payload, c.ttl).Err(); setErr != nil {
			c.logger.Warn("cache write failed", "key", key, "error", setErr)
		}
	}

	return result, nil
}

// OptimalRoute delegates to inner.
func (c *CachedProvider) OptimalRoute(
	ctx context.Context,
	start, end kernel.Location,
	waypoints []kernel.Location,
) (ports.Route, error) {
	return c.inner.OptimalRoute(ctx, start, end, waypoints)
}

// CacheKey is the Redis key of one travel-time lookup. Coordinates are rounded
// to five decimals (about a metre); departures fall into 15 minute buckets.
func CacheKey(origin, destination kernel.Location, departure *time.Time) string {
	bucket := "any"
	if departure != nil {
		bucket = strconv.FormatInt(departure.UTC().Truncate(departureBucket).Unix(), 10)
	}
	return keyPrefix + coord(origin) + ":" + coord(destination) + ":" + bucket
}

func coord(l kernel.Location) string {
	return strconv.FormatFloat(l.Latitude(), 'f', 5, 64) + "," + strconv.FormatFloat(l.Longitude(), 'f', 5, 64)
}
