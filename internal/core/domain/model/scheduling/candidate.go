package scheduling

import (
	"fieldservice/internal/core/domain/model/kernel"
	"fieldservice/internal/core/domain/model/workforce"
)

// Candidate is one worker scored against one job. It lives for a single
// scheduling call and is never persisted.
type Candidate struct {
	Worker              *workforce.CapabilityProfile
	SkillMatch          float64
	TravelMinutes       float64
	TravelDistanceKm    float64
	Efficiency          float64
	CurrentWorkload     int
	ScheduledHoursToday float64
	Availability        float64
	CostPerHour         float64
	PriorityBonus       float64
	Score               float64
}

// WorkerID returns the identifier of the candidate worker.
func (c Candidate) WorkerID() kernel.UUID {
	return c.Worker.WorkerID()
}
