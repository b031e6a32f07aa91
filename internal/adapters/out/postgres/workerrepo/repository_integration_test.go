package workerrepo_test

import (
	"context"
	"testing"
	"time"

	"fieldservice/internal/adapters/out/postgres/workerrepo"
	"fieldservice/internal/core/domain/model/kernel"
	"fieldservice/internal/core/domain/model/workforce"
	"fieldservice/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate any) {
	m.Called(id, aggregate)
}

type WorkerRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *workerrepo.GormWorkerRepository
	tracker    *MockAggregateTracker
}

func (suite *WorkerRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(
		&workerrepo.WorkerDTO{},
		&workerrepo.SkillDTO{},
		&workerrepo.CertificationDTO{},
		&workerrepo.AvailabilityWindowDTO{},
	))
}

func (suite *WorkerRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec(
		"TRUNCATE TABLE workers, worker_skills, worker_certifications, worker_availability").Error)

	suite.tracker = new(MockAggregateTracker)
	suite.repository = workerrepo.NewGormWorkerRepository(suite.db, suite.tracker)
}

func (suite *WorkerRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *WorkerRepositoryIntegrationTestSuite) TestAdd_ThenGet_RoundTripsProfile() {
	ctx := context.Background()
	original := suite.newProfile()
	suite.tracker.On("TrackAggregate", original.WorkerID(), original).Once()

	suite.Require().NoError(suite.repository.Add(ctx, original))

	restored, err := suite.repository.Get(ctx, original.WorkerID())
	suite.Require().NoError(err)

	suite.True(original.WorkerID().IsEqual(restored.WorkerID()))
	suite.Equal("Dana Field", restored.DisplayName())
	suite.InDelta(48.8566, restored.HomeBase().Latitude(), 1e-9)
	suite.InDelta(42.5, restored.CostPerHour(), 1e-9)
	suite.InDelta(1.2, restored.EfficiencyMultiplier(), 1e-9)
	suite.Equal(1, restored.CurrentWorkload())
	suite.InDelta(3.0, restored.ScheduledHoursToday(), 1e-9)
	suite.Equal(3, restored.Capacity().MaxConcurrentJobs())
	suite.InDelta(8.0, restored.Capacity().MaxDailyHours(), 1e-9)

	suite.Require().Len(restored.Skills(), 2)
	suite.Equal("electrical", restored.Skills()[0].ID())
	suite.Equal(workforce.Expert, restored.Skills()[0].Level())
	suite.Require().NotNil(restored.Skills()[0].ProficiencyScore())
	suite.InDelta(88.0, *restored.Skills()[0].ProficiencyScore(), 1e-9)
	suite.Equal("hvac", restored.Skills()[1].ID())
	suite.Nil(restored.Skills()[1].ProficiencyScore())

	suite.Require().Len(restored.Certifications(), 1)
	suite.True(restored.HasValidCertification("hv-license", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)))

	suite.Require().Len(restored.Availability(), 2)
	suite.Equal(time.Monday, restored.Availability()[0].Weekday())
	suite.Equal(workforce.Regular, restored.Availability()[0].Type())
	suite.Equal(workforce.OnCall, restored.Availability()[1].Type())

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *WorkerRepositoryIntegrationTestSuite) TestAdd_UnconstructedProfile_ReturnsError() {
	err := suite.repository.Add(context.Background(), &workforce.CapabilityProfile{})

	suite.Require().ErrorIs(err, workforce.ErrProfileIsNotConstructed)
	suite.tracker.AssertNotCalled(suite.T(), "TrackAggregate", mock.Anything, mock.Anything)
}

func (suite *WorkerRepositoryIntegrationTestSuite) TestGet_NonExistentWorker_ReturnsNotFoundError() {
	restored, err := suite.repository.Get(context.Background(), kernel.NewUUID())

	suite.Nil(restored)
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *WorkerRepositoryIntegrationTestSuite) TestGetAll_ReturnsProfilesOrderedByID() {
	ctx := context.Background()
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything).Times(3)

	for range 3 {
		suite.Require().NoError(suite.repository.Add(ctx, suite.newProfile()))
	}

	profiles, err := suite.repository.GetAll(ctx)
	suite.Require().NoError(err)

	suite.Require().Len(profiles, 3)
	for i := 1; i < len(profiles); i++ {
		suite.True(profiles[i-1].WorkerID().Less(profiles[i].WorkerID()))
	}
	for _, p := range profiles {
		suite.Len(p.Skills(), 2)
	}
	suite.tracker.AssertExpectations(suite.T())
}

func (suite *WorkerRepositoryIntegrationTestSuite) newProfile() *workforce.CapabilityProfile {
	electrical, err := workforce.NewSkill("electrical", "trade", workforce.Expert, 6)
	suite.Require().NoError(err)
	electrical, err = electrical.WithProficiencyScore(88)
	suite.Require().NoError(err)
	hvac, err := workforce.NewSkill("hvac", "trade", workforce.Intermediate, 2)
	suite.Require().NoError(err)

	until := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cert, err := workforce.NewCertification("hv-license", "High voltage", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), &until)
	suite.Require().NoError(err)

	monday, err := workforce.NewAvailabilityWindow(time.Monday, 8*60, 17*60, workforce.Regular)
	suite.Require().NoError(err)
	saturday, err := workforce.NewAvailabilityWindow(time.Saturday, 0, workforce.MinutesPerDay, workforce.OnCall)
	suite.Require().NoError(err)

	capacity, err := workforce.NewWorkloadCapacity(3, 8, 40, 60)
	suite.Require().NoError(err)

	profile, err := workforce.NewCapabilityProfile(kernel.NewUUID(), kernel.MustNewLocation(48.8566, 2.3522),
		workforce.WithDisplayName("Dana Field"),
		workforce.WithSkills(electrical, hvac),
		workforce.WithCertifications(cert),
		workforce.WithAvailability(monday, saturday),
		workforce.WithCapacity(capacity),
		workforce.WithCostPerHour(42.5),
		workforce.WithEfficiency(1.2),
		workforce.WithCurrentLoad(1, 3),
	)
	suite.Require().NoError(err)
	return profile
}

func TestWorkerRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(WorkerRepositoryIntegrationTestSuite))
}
