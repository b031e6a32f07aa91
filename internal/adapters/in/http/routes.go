package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// HTTPObserver receives one observation per handled request.
type HTTPObserver interface {
	ObserveHTTP(method, path string, status int, elapsed time.Duration)
}

// RequestMetrics reports method, route template and status of every request.
func RequestMetrics(observer HTTPObserver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			started := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				} else {
					status = http.StatusInternalServerError
				}
			}
			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			observer.ObserveHTTP(c.Request().Method, path, status, time.Since(started))
			return err
		}
	}
}

// RouteOptions configure Register. A nil field disables its route or middleware.
type RouteOptions struct {
	MetricsHandler  http.Handler
	RequestObserver HTTPObserver
}

// Register mounts the API on e: health, metrics, the API description with a
// Swagger UI, and the validated /api/v1 routes.
func (s *Server) Register(e *echo.Echo, opts RouteOptions) error {
	doc, err := LoadOpenAPI()
	if err != nil {
		return err
	}
	validator, err := RequestValidator(doc)
	if err != nil {
		return err
	}

	if opts.RequestObserver != nil {
		e.Use(RequestMetrics(opts.RequestObserver))
	}

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	if opts.MetricsHandler != nil {
		e.GET("/metrics", echo.WrapHandler(opts.MetricsHandler))
	}
	e.GET("/openapi.yaml", func(c echo.Context) error {
		return c.Blob(http.StatusOK, "application/yaml", openAPIDocument)
	})
	e.GET("/swagger/*", echoSwagger.EchoWrapHandler(echoSwagger.URL("/openapi.yaml")))

	api := e.Group("/api/v1", validator)
	api.POST("/scheduling/jobs", s.ScheduleJob)
	api.POST("/scheduling/batch", s.ScheduleBatch)
	api.POST("/jobs/schedule-pending", s.SchedulePendingJobs)
	api.POST("/jobs/:jobId/schedule", s.ScheduleStoredJob)
	api.GET("/jobs/:jobId/results", s.GetJobResults)

	return nil
}
