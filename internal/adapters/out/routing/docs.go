// Package routing adapts an external routing service to ports.TravelTimeProvider.
//
// HTTPProvider talks JSON over HTTP and protects the service with a
// non-blocking rate limiter and a circuit breaker; both surface as errors so
// the travel estimator falls back to straight-line estimates. CachedProvider
// keeps travel-time answers in Redis.
//
//	provider := routing.NewHTTPProvider(routing.Config{BaseURL: "http://router:8080"}, logger)
//	cached := routing.NewCachedProvider(provider, redisClient, 10*time.Minute, logger)
//	estimator := services.NewTravelEstimator(cached)
package routing
