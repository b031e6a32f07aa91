package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"fieldservice/internal/core/domain/model/job"
	"fieldservice/internal/core/domain/model/kernel"
	"fieldservice/internal/core/domain/model/scheduling"
	"fieldservice/internal/core/domain/model/workforce"
	"fieldservice/internal/core/domain/services"
	"fieldservice/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Monday.
var testNow = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

var jobSite = kernel.MustNewLocation(52.5200, 13.4050)

type mockTravelProvider struct {
	mock.Mock
}

func (m *mockTravelProvider) TravelTime(
	ctx context.Context,
	origin, destination kernel.Location,
	departure *time.Time,
) (ports.TravelTime, error) {
	args := m.Called(ctx, origin, destination, departure)
	return args.Get(0).(ports.TravelTime), args.Error(1)
}

func (m *mockTravelProvider) OptimalRoute(
	ctx context.Context,
	start, end kernel.Location,
	waypoints []kernel.Location,
) (ports.Route, error) {
	args := m.Called(ctx, start, end, waypoints)
	return args.Get(0).(ports.Route), args.Error(1)
}

// minutesProvider answers with fixed travel minutes per origin.
type minutesProvider map[kernel.Location]float64

func (p minutesProvider) TravelTime(
	_ context.Context,
	origin, _ kernel.Location,
	_ *time.Time,
) (ports.TravelTime, error) {
	m := p[origin]
	return ports.TravelTime{DistanceKm: m / 2, DurationMinutes: m}, nil
}

func (p minutesProvider) OptimalRoute(context.Context, kernel.Location, kernel.Location, []kernel.Location) (ports.Route, error) {
	return ports.Route{}, nil
}

type recordingObserver struct {
	mu      sync.Mutex
	sources []services.TravelSource
	errs    []error
}

func (o *recordingObserver) ObserveEstimate(source services.TravelSource, err error, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sources = append(o.sources, source)
	o.errs = append(o.errs, err)
}

func newRequest(t *testing.T, priority job.Priority, hours float64, skills ...string) *job.Request {
	t.Helper()

	if len(skills) == 0 {
		skills = []string{"electrical"}
	}
	req, err := job.NewRequest(kernel.NewUUID(), jobSite, skills, priority, hours)
	require.NoError(t, err)
	return req
}

func newSkill(t *testing.T, id string, level workforce.ProficiencyLevel) workforce.Skill {
	t.Helper()

	s, err := workforce.NewSkill(id, "trade", level, 3)
	require.NoError(t, err)
	return s
}

func newWorker(t *testing.T, home kernel.Location, opts ...workforce.ProfileOption) *workforce.CapabilityProfile {
	t.Helper()

	p, err := workforce.NewCapabilityProfile(kernel.NewUUID(), home, opts...)
	require.NoError(t, err)
	return p
}

func newCapacity(t *testing.T, maxJobs int, maxDaily, maxDistance float64) workforce.WorkloadCapacity {
	t.Helper()

	c, err := workforce.NewWorkloadCapacity(maxJobs, maxDaily, 0, maxDistance)
	require.NoError(t, err)
	return c
}

func newConstraint(t *testing.T, kind string, value float64) scheduling.Constraint {
	t.Helper()

	ct, err := scheduling.ParseConstraintType(kind)
	require.NoError(t, err)
	c, err := scheduling.NewConstraint(ct, value)
	require.NoError(t, err)
	return c
}

// newScheduler wires a deterministic scheduler: fixed clock, constant availability.
func newScheduler(provider ports.TravelTimeProvider) *services.JobScheduler {
	clock := services.FixedClock(testNow)
	generator := services.NewCandidateGenerator(
		services.NewTravelEstimator(provider),
		services.ConstantAvailability(0.5),
		services.DefaultPriorityBonus,
	)
	return services.NewJobScheduler(generator, services.NewScheduleTimeCalculator(clock), nil)
}
