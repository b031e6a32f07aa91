package services

import (
	"context"
	"time"

	"fieldservice/internal/core/domain/model/job"
	"fieldservice/internal/core/domain/model/scheduling"
	"fieldservice/internal/core/domain/model/workforce"
)

const (
	// MissingSkillCredit is the partial credit for a required skill the worker lacks.
	MissingSkillCredit = 0.2
	// PriorityBonusTravelMinutes is the travel limit for earning a priority bonus.
	PriorityBonusTravelMinutes = 15.0
)

// PriorityBonusFunc returns the additive ranking bonus for a candidate.
type PriorityBonusFunc func(request *job.Request, candidate scheduling.Candidate) float64

// DefaultPriorityBonus favours nearby workers for the most urgent jobs:
// +0.10 for emergencies and +0.05 for urgent jobs within 15 travel minutes.
func DefaultPriorityBonus(request *job.Request, c scheduling.Candidate) float64 {
	if c.TravelMinutes > PriorityBonusTravelMinutes {
		return 0
	}
	switch request.Priority() {
	case job.Emergency:
		return 0.10
	case job.Urgent:
		return 0.05
	default:
		return 0
	}
}

// NoPriorityBonus disables the bonus.
func NoPriorityBonus(*job.Request, scheduling.Candidate) float64 {
	return 0
}

// CandidateGenerator scores every worker of a pool against one job.
type CandidateGenerator struct {
	estimator    *TravelEstimator
	availability AvailabilityScorer
	bonus        PriorityBonusFunc
}

// NewCandidateGenerator wires the collaborators used to build candidates.
// Any nil argument takes its default.
//
// Parameters:
//   - estimator: travel between home base and job site (nil: Haversine only)
//   - availability: availability score per worker (nil: WindowAvailabilityScorer on the system clock)
//   - bonus: priority bonus per candidate (nil: DefaultPriorityBonus)
//
// Example:
//
//	generator := services.NewCandidateGenerator(
//	    services.NewTravelEstimator(provider),
//	    services.NewWindowAvailabilityScorer(clock),
//	    services.DefaultPriorityBonus,
//	)
//	candidates := generator.Generate(ctx, request, workers)
func NewCandidateGenerator(
	estimator *TravelEstimator,
	availability AvailabilityScorer,
	bonus PriorityBonusFunc,
) *CandidateGenerator {
	if estimator == nil {
		estimator = NewTravelEstimator(nil)
	}
	if availability == nil {
		availability = NewWindowAvailabilityScorer(nil)
	}
	if bonus == nil {
		bonus = DefaultPriorityBonus
	}
	return &CandidateGenerator{estimator: estimator, availability: availability, bonus: bonus}
}

// Generate returns one candidate per valid worker, in pool order. Invalid
// profiles are skipped.
func (g *CandidateGenerator) Generate(
	ctx context.Context,
	request *job.Request,
	workers []*workforce.CapabilityProfile,
) []scheduling.Candidate {
	candidates := make([]scheduling.Candidate, 0, len(workers))
	for _, w := range workers {
		if w.Validate() != nil {
			continue
		}
		candidates = append(candidates, g.candidate(ctx, request, w))
	}
	return candidates
}

func (g *CandidateGenerator) candidate(
	ctx context.Context,
	request *job.Request,
	worker *workforce.CapabilityProfile,
) scheduling.Candidate {
	travel := g.estimator.Estimate(ctx, worker.HomeBase(), request.Location(), departureOf(request))

	c := scheduling.Candidate{
		Worker:              worker,
		SkillMatch:          SkillMatch(request.RequiredSkills(), worker),
		TravelMinutes:       travel.DurationMinutes,
		TravelDistanceKm:    travel.DistanceKm,
		Efficiency:          worker.EfficiencyMultiplier(),
		CurrentWorkload:     worker.CurrentWorkload(),
		ScheduledHoursToday: worker.ScheduledHoursToday(),
		CostPerHour:         worker.CostPerHour(),
	}
	c.Availability = clamp01(g.availability.Score(ctx, request, worker, c.TravelMinutes))
	c.PriorityBonus = max(0, g.bonus(request, c))

	return c
}

// SkillMatch averages, over the required skills, the worker's level multiplier
// (capped at 1) or MissingSkillCredit when the worker lacks the skill.
func SkillMatch(required []string, worker *workforce.CapabilityProfile) float64 {
	if len(required) == 0 {
		return 0
	}

	var total float64
	for _, id := range required {
		if s, ok := worker.FindSkill(id); ok {
			total += min(1.0, s.Level().Multiplier())
		} else {
			total += MissingSkillCredit
		}
	}
	return total / float64(len(required))
}

func departureOf(request *job.Request) *time.Time {
	if w := request.PreferredWindow(); w != nil {
		start := w.Start()
		return &start
	}
	return nil
}
