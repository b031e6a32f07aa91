package services_test

import (
	"testing"

	"fieldservice/internal/core/domain/model/scheduling"
	"fieldservice/internal/core/domain/model/workforce"
	"fieldservice/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTravelScore(t *testing.T) {
	testCases := []struct {
		minutes float64
		want    float64
	}{
		{0, 1.0}, {15, 1.0}, {15.1, 0.8}, {30, 0.8}, {45, 0.6}, {60, 0.4}, {60.5, 0.2}, {300, 0.2},
	}
	for _, tc := range testCases {
		assert.InDelta(t, tc.want, services.TravelScore(tc.minutes), 1e-9, "minutes=%v", tc.minutes)
	}
}

func TestWorkloadScore(t *testing.T) {
	testCases := []struct {
		active int
		want   float64
	}{
		{0, 1.0}, {1, 0.8}, {2, 0.8}, {3, 0.6}, {4, 0.6}, {5, 0.4}, {12, 0.4},
	}
	for _, tc := range testCases {
		assert.InDelta(t, tc.want, services.WorkloadScore(tc.active), 1e-9, "active=%d", tc.active)
	}
}

func TestCandidateRanker(t *testing.T) {
	ranker := services.NewCandidateRanker()
	objectives := scheduling.DefaultObjectives()

	t.Run("should compute the weighted score", func(t *testing.T) {
		c := scheduling.Candidate{
			SkillMatch:      0.9,
			TravelMinutes:   25,
			Availability:    0.5,
			Efficiency:      0.8,
			CurrentWorkload: 3,
		}

		want := 0.30*0.9 + 0.25*0.8 + 0.20*0.5 + 0.15*0.8 + 0.10*0.6
		assert.InDelta(t, want, ranker.Score(c, objectives), 1e-9)
	})

	t.Run("should cap efficiency and clamp the total", func(t *testing.T) {
		c := scheduling.Candidate{
			SkillMatch:    1,
			Availability:  1,
			Efficiency:    1.5,
			PriorityBonus: 0.1,
		}

		assert.InDelta(t, 1.0, ranker.Score(c, objectives), 1e-9)
		assert.InDelta(t, 0.15, ranker.Score(scheduling.Candidate{Efficiency: 3, TravelMinutes: 500, CurrentWorkload: 9},
			scheduling.Objectives{Efficiency: 0.15}), 1e-9)
	})

	t.Run("should order by score, travel, then worker id", func(t *testing.T) {
		base := scheduling.Candidate{SkillMatch: 1, Availability: 0.5, Efficiency: 1}
		candidates := make([]scheduling.Candidate, 4)
		for i := range candidates {
			candidates[i] = base
			candidates[i].Worker = newWorker(t, jobSite)
		}
		candidates[0].SkillMatch = 0.2
		candidates[1].TravelMinutes = 5

		first, second := candidates[2].WorkerID(), candidates[3].WorkerID()
		if second.Less(first) {
			first, second = second, first
		}

		ranked := ranker.Rank(candidates, objectives)

		require.Len(t, ranked, 4)
		assert.True(t, ranked[0].WorkerID().IsEqual(first))
		assert.True(t, ranked[1].WorkerID().IsEqual(second))
		assert.True(t, ranked[2].WorkerID().IsEqual(candidates[1].WorkerID()))
		assert.True(t, ranked[3].WorkerID().IsEqual(candidates[0].WorkerID()))
		assert.InDelta(t, ranked[0].Score, ranked[2].Score, 1e-9)
	})

	t.Run("should be deterministic regardless of input order", func(t *testing.T) {
		var candidates []scheduling.Candidate
		for i := 0; i < 6; i++ {
			candidates = append(candidates, scheduling.Candidate{
				Worker:        newWorker(t, jobSite, workforce.WithCurrentLoad(i%2, 0)),
				SkillMatch:    1,
				TravelMinutes: float64(10 * (i % 3)),
				Availability:  0.5,
				Efficiency:    1,
			})
		}
		reversed := make([]scheduling.Candidate, len(candidates))
		for i, c := range candidates {
			reversed[len(candidates)-1-i] = c
		}

		first := ranker.Rank(candidates, objectives)
		second := ranker.Rank(reversed, objectives)

		for i := range first {
			assert.True(t, first[i].WorkerID().IsEqual(second[i].WorkerID()))
		}
	})

	t.Run("should not modify the input", func(t *testing.T) {
		candidates := []scheduling.Candidate{{Worker: newWorker(t, jobSite), SkillMatch: 1}}

		ranker.Rank(candidates, objectives)

		assert.Zero(t, candidates[0].Score)
	})
}
