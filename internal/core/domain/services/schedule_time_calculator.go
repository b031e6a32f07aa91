package services

import (
	"fmt"
	"time"

	"fieldservice/internal/core/domain/model/job"
)

// PrepBuffer is added between now + travel and the scheduled start.
const PrepBuffer = time.Hour

// ScheduleTimeCalculator derives the service window for the winning candidate:
// start = now + travel + PrepBuffer, end = start + estimated duration.
//
// It ignores the worker's calendar; availability is reflected in ranking only.
type ScheduleTimeCalculator struct {
	clock Clock
}

// NewScheduleTimeCalculator creates a calculator reading now from clock.
// A nil clock means the system clock.
func NewScheduleTimeCalculator(clock Clock) ScheduleTimeCalculator {
	if clock == nil {
		clock = SystemClock{}
	}
	return ScheduleTimeCalculator{clock: clock}
}

// Window returns the scheduled window. The result always has end after start
// because requests have a positive duration.
//
// Returns an error when travelMinutes is negative, not finite or above MaxTravelMinutes.
func (c ScheduleTimeCalculator) Window(travelMinutes float64, request *job.Request) (job.TimeWindow, error) {
	if !isPlausibleDuration(travelMinutes) {
		return job.TimeWindow{}, fmt.Errorf("travel time %v minutes is out of range", travelMinutes)
	}
	start := c.clock.Now().Add(minutes(travelMinutes) + PrepBuffer)
	return job.NewTimeWindow(start, start.Add(request.EstimatedDuration()))
}
