package workforce

import (
	"math"

	"fieldservice/internal/pkg/errs"
)

// WorkloadCapacity holds a worker's hard limits. A zero limit means unlimited.
type WorkloadCapacity struct {
	maxConcurrentJobs   int
	maxDailyHours       float64
	maxWeeklyHours      float64
	maxTravelDistanceKm float64
}

// UnlimitedCapacity imposes no limits.
func UnlimitedCapacity() WorkloadCapacity {
	return WorkloadCapacity{}
}

// NewWorkloadCapacity rejects negative limits; use 0 to disable a limit.
func NewWorkloadCapacity(maxConcurrentJobs int, maxDailyHours, maxWeeklyHours, maxTravelDistanceKm float64) (WorkloadCapacity, error) {
	if maxConcurrentJobs < 0 {
		return WorkloadCapacity{}, errs.NewValueIsOutOfRangeError("max concurrent jobs", maxConcurrentJobs, 0, math.MaxInt)
	}
	for _, limit := range []struct {
		name  string
		value float64
	}{
		{"max daily hours", maxDailyHours},
		{"max weekly hours", maxWeeklyHours},
		{"max travel distance km", maxTravelDistanceKm},
	} {
		if math.IsNaN(limit.value) || limit.value < 0 {
			return WorkloadCapacity{}, errs.NewValueIsOutOfRangeError(limit.name, limit.value, 0, math.Inf(1))
		}
	}
	if maxDailyHours > 24 {
		return WorkloadCapacity{}, errs.NewValueIsOutOfRangeError("max daily hours", maxDailyHours, 0, 24)
	}

	return WorkloadCapacity{
		maxConcurrentJobs:   maxConcurrentJobs,
		maxDailyHours:       maxDailyHours,
		maxWeeklyHours:      maxWeeklyHours,
		maxTravelDistanceKm: maxTravelDistanceKm,
	}, nil
}

// MaxConcurrentJobs returns the active job limit, or 0 when unlimited.
func (c WorkloadCapacity) MaxConcurrentJobs() int {
	return c.maxConcurrentJobs
}

// MaxDailyHours returns the booked hours limit for one day, or 0 when unlimited.
func (c WorkloadCapacity) MaxDailyHours() float64 {
	return c.maxDailyHours
}

// MaxWeeklyHours returns the booked hours limit for one week, or 0 when unlimited.
func (c WorkloadCapacity) MaxWeeklyHours() float64 {
	return c.maxWeeklyHours
}

// MaxTravelDistanceKm returns the longest accepted trip to a job site, or 0 when unlimited.
func (c WorkloadCapacity) MaxTravelDistanceKm() float64 {
	return c.maxTravelDistanceKm
}
