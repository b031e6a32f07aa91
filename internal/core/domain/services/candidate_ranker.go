package services

import (
	"slices"

	"fieldservice/internal/core/domain/model/scheduling"
)

// CandidateRanker scores candidates with weighted objectives and orders them.
type CandidateRanker struct{}

// NewCandidateRanker returns a ranker. It holds no state; weights are passed
// per call so one ranker serves every objective set.
func NewCandidateRanker() CandidateRanker {
	return CandidateRanker{}
}

// Rank sets Score on a copy of every candidate and returns them best first.
// Equal scores are ordered by shorter travel, then by ascending worker id, so
// the result does not depend on input order.
func (r CandidateRanker) Rank(candidates []scheduling.Candidate, objectives scheduling.Objectives) []scheduling.Candidate {
	ranked := make([]scheduling.Candidate, len(candidates))
	for i, c := range candidates {
		c.Score = r.Score(c, objectives)
		ranked[i] = c
	}

	slices.SortStableFunc(ranked, compareCandidates)
	return ranked
}

// Score is the clamped weighted sum of the ranking terms plus the priority bonus.
func (r CandidateRanker) Score(c scheduling.Candidate, w scheduling.Objectives) float64 {
	score := w.Skill*c.SkillMatch +
		w.Travel*TravelScore(c.TravelMinutes) +
		w.Availability*c.Availability +
		w.Efficiency*min(c.Efficiency, 1) +
		w.WorkloadBalance*WorkloadScore(c.CurrentWorkload) +
		c.PriorityBonus

	return clamp01(score)
}

// TravelScore buckets travel minutes: ≤15 → 1, ≤30 → .8, ≤45 → .6, ≤60 → .4, else .2.
func TravelScore(minutes float64) float64 {
	switch {
	case minutes <= 15:
		return 1.0
	case minutes <= 30:
		return 0.8
	case minutes <= 45:
		return 0.6
	case minutes <= 60:
		return 0.4
	default:
		return 0.2
	}
}

// WorkloadScore buckets active jobs: 0 → 1, ≤2 → .8, ≤4 → .6, else .4.
func WorkloadScore(active int) float64 {
	switch {
	case active <= 0:
		return 1.0
	case active <= 2:
		return 0.8
	case active <= 4:
		return 0.6
	default:
		return 0.4
	}
}

func compareCandidates(a, b scheduling.Candidate) int {
	switch {
	case a.Score > b.Score:
		return -1
	case a.Score < b.Score:
		return 1
	case a.TravelMinutes < b.TravelMinutes:
		return -1
	case a.TravelMinutes > b.TravelMinutes:
		return 1
	}

	ai, bi := a.WorkerID().String(), b.WorkerID().String()
	switch {
	case ai < bi:
		return -1
	case ai > bi:
		return 1
	default:
		return 0
	}
}
