package services

import (
	"time"

	"fieldservice/internal/core/domain/model/job"
	"fieldservice/internal/core/domain/model/scheduling"
)

// FilterOutcome is the survivors of a filter pass and the names of the
// constraints that removed at least one candidate, in first-seen order.
type FilterOutcome struct {
	Feasible []scheduling.Candidate
	Violated []string
}

// ConstraintFilter applies hard constraints. A dropped candidate is never
// ranked, assigned or listed as an alternative.
//
// Business rules:
//   - supplied constraints are checked first, in order
//   - then the worker's own capacity: concurrent jobs, daily hours, weekly
//     hours and travel distance
//   - then the job's required certifications, each of which must be valid at
//     the service start (preferred window start, or now + travel + PrepBuffer)
//
// Weekly hours are checked against the hours already booked today, the only
// booked load a profile carries.
type ConstraintFilter struct {
	clock Clock
}

// NewConstraintFilter creates a filter that reads now from clock when it needs
// the service start. A nil clock means the system clock.
func NewConstraintFilter(clock Clock) ConstraintFilter {
	if clock == nil {
		clock = SystemClock{}
	}
	return ConstraintFilter{clock: clock}
}

// Filter keeps the candidates that pass every supplied constraint and their own
// workload capacity for this request.
func (f ConstraintFilter) Filter(
	request *job.Request,
	candidates []scheduling.Candidate,
	constraints []scheduling.Constraint,
) FilterOutcome {
	out := FilterOutcome{Feasible: make([]scheduling.Candidate, 0, len(candidates))}
	seen := make(map[string]struct{})
	record := func(name string) {
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			out.Violated = append(out.Violated, name)
		}
	}

	for _, c := range candidates {
		if violated, ok := f.Check(request, c, constraints); !ok {
			record(violated.String())
			continue
		}
		out.Feasible = append(out.Feasible, c)
	}

	return out
}

// Check returns the first constraint the candidate violates, if any. Supplied
// constraints are checked in order before the worker's capacity.
func (f ConstraintFilter) Check(
	request *job.Request,
	c scheduling.Candidate,
	constraints []scheduling.Constraint,
) (scheduling.ConstraintType, bool) {
	for _, con := range constraints {
		if !passes(con, c, request.EstimatedDurationHours()) {
			return con.Type(), false
		}
	}

	capacity := c.Worker.Capacity()
	if limit := capacity.MaxConcurrentJobs(); limit > 0 && c.CurrentWorkload >= limit {
		return scheduling.MaxConcurrentJobs, false
	}
	if limit := capacity.MaxDailyHours(); limit > 0 && c.ScheduledHoursToday+request.EstimatedDurationHours() > limit {
		return scheduling.MaxDailyHours, false
	}
	if limit := capacity.MaxWeeklyHours(); limit > 0 && c.ScheduledHoursToday+request.EstimatedDurationHours() > limit {
		return scheduling.MaxWeeklyHours, false
	}
	if limit := capacity.MaxTravelDistanceKm(); limit > 0 && c.TravelDistanceKm > limit {
		return scheduling.MaxTravelDistance, false
	}

	if required := request.RequiredCertifications(); len(required) > 0 {
		at := f.serviceStart(request, c)
		for _, id := range required {
			if !c.Worker.HasValidCertification(id, at) {
				return scheduling.RequiredCertification, false
			}
		}
	}

	return scheduling.ConstraintUnknown, true
}

func (f ConstraintFilter) serviceStart(request *job.Request, c scheduling.Candidate) time.Time {
	if w := request.PreferredWindow(); w != nil {
		return w.Start()
	}
	clock := f.clock
	if clock == nil {
		clock = SystemClock{}
	}
	return clock.Now().Add(minutes(c.TravelMinutes) + PrepBuffer)
}

func passes(con scheduling.Constraint, c scheduling.Candidate, jobHours float64) bool {
	switch con.Type() {
	case scheduling.MaxTravelTime:
		return c.TravelMinutes <= con.Value()
	case scheduling.MinSkillScore:
		return c.SkillMatch >= con.Value()
	case scheduling.MaxWorkload:
		return float64(c.CurrentWorkload) < con.Value()
	case scheduling.MaxConcurrentJobs:
		return float64(c.CurrentWorkload) < con.Value()
	case scheduling.MaxDailyHours, scheduling.MaxWeeklyHours:
		return c.ScheduledHoursToday+jobHours <= con.Value()
	case scheduling.MaxTravelDistance:
		return c.TravelDistanceKm <= con.Value()
	default:
		return true
	}
}
