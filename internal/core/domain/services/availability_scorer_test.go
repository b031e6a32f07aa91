package services_test

import (
	"context"
	"testing"
	"time"

	"fieldservice/internal/core/domain/model/job"
	"fieldservice/internal/core/domain/model/kernel"
	"fieldservice/internal/core/domain/model/workforce"
	"fieldservice/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWindow(t *testing.T, day time.Weekday, fromHour, toHour int, kind workforce.AvailabilityType) workforce.AvailabilityWindow {
	t.Helper()

	w, err := workforce.NewAvailabilityWindow(day, fromHour*60, toHour*60, kind)
	require.NoError(t, err)
	return w
}

func TestWindowAvailabilityScorer(t *testing.T) {
	ctx := context.Background()
	scorer := services.NewWindowAvailabilityScorer(services.FixedClock(testNow))
	// Travel 0 puts the service interval at Monday 09:00-11:00.
	req := newRequest(t, job.Medium, 2)

	testCases := []struct {
		name    string
		windows []workforce.AvailabilityWindow
		want    float64
	}{
		{"unknown without windows", nil, 0.5},
		{"regular window covering the job", []workforce.AvailabilityWindow{
			newWindow(t, time.Monday, 8, 17, workforce.Regular),
		}, 1.0},
		{"overtime window covering the job", []workforce.AvailabilityWindow{
			newWindow(t, time.Monday, 6, 12, workforce.Overtime),
		}, 0.7},
		{"on call window covering half", []workforce.AvailabilityWindow{
			newWindow(t, time.Monday, 10, 12, workforce.OnCall),
		}, 0.25},
		{"best type wins where windows overlap", []workforce.AvailabilityWindow{
			newWindow(t, time.Monday, 6, 12, workforce.OnCall),
			newWindow(t, time.Monday, 9, 10, workforce.Regular),
		}, 0.75},
		{"window on another weekday", []workforce.AvailabilityWindow{
			newWindow(t, time.Tuesday, 8, 17, workforce.Regular),
		}, 0},
		{"unavailable block", []workforce.AvailabilityWindow{
			newWindow(t, time.Monday, 8, 17, workforce.Regular),
			newWindow(t, time.Monday, 10, 11, workforce.Unavailable),
		}, 0},
	}

	for _, tc := range testCases {
		t.Run("should score "+tc.name, func(t *testing.T) {
			worker := newWorker(t, jobSite, workforce.WithAvailability(tc.windows...))

			assert.InDelta(t, tc.want, scorer.Score(ctx, req, worker, 0), 1e-9)
		})
	}

	t.Run("should account for travel before the job", func(t *testing.T) {
		worker := newWorker(t, jobSite, workforce.WithAvailability(newWindow(t, time.Monday, 8, 11, workforce.Regular)))

		// 60 minutes of travel moves the job to 10:00-12:00.
		assert.InDelta(t, 0.5, scorer.Score(ctx, req, worker, 60), 1e-9)
	})

	t.Run("should reduce by booked share of daily hours", func(t *testing.T) {
		worker := newWorker(t, jobSite,
			workforce.WithAvailability(newWindow(t, time.Monday, 8, 17, workforce.Regular)),
			workforce.WithCapacity(newCapacity(t, 0, 8, 0)),
			workforce.WithCurrentLoad(1, 2),
		)

		assert.InDelta(t, 0.75, scorer.Score(ctx, req, worker, 0), 1e-9)
	})

	t.Run("should use the preferred window", func(t *testing.T) {
		tuesday := testNow.AddDate(0, 0, 1)
		window, err := job.NewTimeWindow(tuesday.Add(6*time.Hour), tuesday.Add(8*time.Hour))
		require.NoError(t, err)
		preferred, err := job.NewRequest(kernel.NewUUID(), jobSite, []string{"hvac"}, job.Low, 2,
			job.WithPreferredWindow(window))
		require.NoError(t, err)
		worker := newWorker(t, jobSite, workforce.WithAvailability(newWindow(t, time.Tuesday, 13, 18, workforce.Regular)))

		assert.InDelta(t, 1.0, scorer.Score(ctx, preferred, worker, 0), 1e-9)
		assert.InDelta(t, 0, scorer.Score(ctx, req, worker, 0), 1e-9)
	})

	t.Run("should split intervals crossing midnight", func(t *testing.T) {
		late := time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC)
		window, err := job.NewTimeWindow(late, late.Add(2*time.Hour))
		require.NoError(t, err)
		overnight, err := job.NewRequest(kernel.NewUUID(), jobSite, []string{"hvac"}, job.Urgent, 2,
			job.WithPreferredWindow(window))
		require.NoError(t, err)
		worker := newWorker(t, jobSite, workforce.WithAvailability(
			newWindow(t, time.Monday, 20, 24, workforce.OnCall),
			newWindow(t, time.Tuesday, 0, 6, workforce.OnCall),
		))

		assert.InDelta(t, 0.5, scorer.Score(ctx, overnight, worker, 0), 1e-9)
	})
}
