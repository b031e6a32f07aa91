package commands_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"fieldservice/internal/core/application/usecases/commands"
	"fieldservice/internal/core/domain/model/job"
	"fieldservice/internal/core/domain/model/kernel"
	"fieldservice/internal/core/domain/model/scheduling"
	"fieldservice/internal/core/domain/model/workforce"
	"fieldservice/internal/core/domain/services"
	"fieldservice/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Monday morning.
var (
	testNow      = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	testDayStart = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	testDayEnd   = time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	jobSite      = kernel.MustNewLocation(52.5200, 13.4050)
)

type MockJobRepository struct{ mock.Mock }

func (m *MockJobRepository) Add(ctx context.Context, j *job.Job) error {
	args := m.Called(ctx, j)
	return args.Error(0)
}

func (m *MockJobRepository) Update(ctx context.Context, j *job.Job) error {
	args := m.Called(ctx, j)
	return args.Error(0)
}

func (m *MockJobRepository) Get(ctx context.Context, id kernel.UUID) (*job.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*job.Job), args.Error(1)
}

func (m *MockJobRepository) GetAllPending(ctx context.Context) ([]*job.Job, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*job.Job), args.Error(1)
}

func (m *MockJobRepository) GetScheduledLoad(
	ctx context.Context,
	from, to time.Time,
) (map[kernel.UUID]ports.WorkerLoad, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[kernel.UUID]ports.WorkerLoad), args.Error(1)
}

type MockWorkerRepository struct{ mock.Mock }

func (m *MockWorkerRepository) Add(ctx context.Context, p *workforce.CapabilityProfile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockWorkerRepository) Get(ctx context.Context, id kernel.UUID) (*workforce.CapabilityProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workforce.CapabilityProfile), args.Error(1)
}

func (m *MockWorkerRepository) GetAll(ctx context.Context) ([]*workforce.CapabilityProfile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*workforce.CapabilityProfile), args.Error(1)
}

type MockResultRepository struct{ mock.Mock }

func (m *MockResultRepository) Add(ctx context.Context, result scheduling.Result, attemptedAt time.Time) error {
	args := m.Called(ctx, result, attemptedAt)
	return args.Error(0)
}

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) JobRepository() ports.JobRepository {
	args := m.Called()
	return args.Get(0).(ports.JobRepository)
}

func (m *MockUoW) WorkerRepository() ports.WorkerRepository {
	args := m.Called()
	return args.Get(0).(ports.WorkerRepository)
}

func (m *MockUoW) ResultRepository() ports.ResultRepository {
	args := m.Called()
	return args.Get(0).(ports.ResultRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type recordingObserver struct {
	mu    sync.Mutex
	modes []string
	count []int
}

func (o *recordingObserver) ObserveResults(mode string, results []scheduling.Result, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.modes = append(o.modes, mode)
	o.count = append(o.count, len(results))
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestScheduler() *services.JobScheduler {
	clock := services.FixedClock(testNow)
	generator := services.NewCandidateGenerator(nil, services.ConstantAvailability(1), nil)
	return services.NewJobScheduler(generator, services.NewScheduleTimeCalculator(clock), quietLogger())
}

func newPendingJob(t *testing.T, priority job.Priority, hours float64, skills ...string) *job.Job {
	t.Helper()

	if len(skills) == 0 {
		skills = []string{"electrical"}
	}
	req, err := job.NewRequest(kernel.NewUUID(), jobSite, skills, priority, hours)
	require.NoError(t, err)
	j, err := job.NewJob(req)
	require.NoError(t, err)
	return j
}

func newElectrician(t *testing.T, opts ...workforce.ProfileOption) *workforce.CapabilityProfile {
	t.Helper()

	skill, err := workforce.NewSkill("electrical", "trade", workforce.Expert, 5)
	require.NoError(t, err)
	opts = append([]workforce.ProfileOption{workforce.WithSkills(skill)}, opts...)
	p, err := workforce.NewCapabilityProfile(kernel.NewUUID(), jobSite, opts...)
	require.NoError(t, err)
	return p
}

func withMaxJobs(t *testing.T, maxJobs int) workforce.ProfileOption {
	t.Helper()

	c, err := workforce.NewWorkloadCapacity(maxJobs, 0, 0, 0)
	require.NoError(t, err)
	return workforce.WithCapacity(c)
}

func hasStatus(status job.Status) any {
	return mock.MatchedBy(func(j *job.Job) bool { return j.Status() == status })
}
