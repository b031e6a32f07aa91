package cmd

import (
	"log/slog"
	"sync"

	apihttp "fieldservice/internal/adapters/in/http"
	"fieldservice/internal/adapters/out/metrics"
	"fieldservice/internal/adapters/out/postgres"
	"fieldservice/internal/adapters/out/routing"
	"fieldservice/internal/core/application/usecases/commands"
	"fieldservice/internal/core/application/usecases/queries"
	"fieldservice/internal/core/domain/services"
	"fieldservice/internal/core/ports"
	"fieldservice/internal/jobs"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CompositionRoot builds the object graph. Services are created once and
// shared; the pending batch handler is a singleton because it serialises runs.
type CompositionRoot struct {
	config     Config
	gormDB     *gorm.DB
	redis      redis.Cmdable
	uowFactory *postgres.GormUnitOfWorkFactory
	metrics    *metrics.Metrics
	clock      services.Clock
	logger     *slog.Logger

	once           sync.Once
	scheduler      *services.JobScheduler
	batch          *services.BatchScheduler
	optimizer      *services.SwapOptimizer
	pendingHandler *commands.SchedulePendingJobsCommandHandler
}

// NewCompositionRoot wires the application. redisClient may be nil.
func NewCompositionRoot(config Config, gormDB *gorm.DB, redisClient redis.Cmdable, logger *slog.Logger) *CompositionRoot {
	return &CompositionRoot{
		config:     config,
		gormDB:     gormDB,
		redis:      redisClient,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		metrics:    metrics.New(),
		clock:      services.SystemClock{},
		logger:     logger,
	}
}

// Metrics returns the shared collectors.
func (c *CompositionRoot) Metrics() *metrics.Metrics {
	return c.metrics
}

// TravelProvider returns the routing provider chain, or nil when no routing
// service is configured.
func (c *CompositionRoot) TravelProvider() ports.TravelTimeProvider {
	if c.config.RoutingBaseURL == "" {
		return nil
	}
	var provider ports.TravelTimeProvider = routing.NewHTTPProvider(routing.Config{
		BaseURL:            c.config.RoutingBaseURL,
		APIKey:             c.config.RoutingAPIKey,
		Timeout:            c.config.RoutingTimeout,
		RequestsPerSecond:  c.config.RoutingRequestsPerSecond,
		Burst:              c.config.RoutingBurst,
		BreakerFailures:    c.config.RoutingBreakerFailures,
		BreakerOpenTimeout: c.config.RoutingBreakerOpen,
	}, c.logger, routing.WithBreakerObserver(c.metrics))
	if c.redis != nil {
		provider = routing.NewCachedProvider(provider, c.redis, c.config.RedisCacheTTL, c.logger)
	}
	return provider
}

func (c *CompositionRoot) buildServices() {
	c.once.Do(func() {
		estimator := services.NewTravelEstimator(c.TravelProvider(),
			services.WithProviderTimeout(c.config.RoutingTimeout),
			services.WithEstimateObserver(c.metrics),
			services.WithEstimatorLogger(c.logger),
		)
		generator := services.NewCandidateGenerator(estimator, services.NewWindowAvailabilityScorer(c.clock), nil)
		calculator := services.NewScheduleTimeCalculator(c.clock)

		c.scheduler = services.NewJobScheduler(generator, calculator, c.logger)
		c.batch = services.NewBatchScheduler(c.scheduler, c.clock, c.logger)
		c.optimizer = services.NewSwapOptimizer(generator, calculator, c.config.SwapPasses, c.logger)
		c.pendingHandler = commands.NewSchedulePendingJobsCommandHandler(
			c.commandUoWFactory(), c.batch, c.optimizer, c.clock, c.metrics, c.logger)
	})
}

func (c *CompositionRoot) commandUoWFactory() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

// CreateScheduleJobCommandHandler wires the stored-job use case.
func (c *CompositionRoot) CreateScheduleJobCommandHandler() *commands.ScheduleJobCommandHandler {
	c.buildServices()
	return commands.NewScheduleJobCommandHandler(c.commandUoWFactory(), c.scheduler, c.clock, c.metrics, c.logger)
}

// SchedulePendingJobsCommandHandler wires the pending-jobs use case.
func (c *CompositionRoot) SchedulePendingJobsCommandHandler() *commands.SchedulePendingJobsCommandHandler {
	c.buildServices()
	return c.pendingHandler
}

// CreateGetJobResultsQueryHandler wires the result history query.
func (c *CompositionRoot) CreateGetJobResultsQueryHandler() queries.GetJobResultsQueryHandler {
	return queries.NewGetJobResultsQueryHandler(c.gormDB)
}

// CreateHTTPServer wires every API handler.
func (c *CompositionRoot) CreateHTTPServer() *apihttp.Server {
	c.buildServices()
	return apihttp.NewServer(apihttp.Dependencies{
		Scheduler:         c.scheduler,
		Batch:             c.batch,
		Optimizer:         c.optimizer,
		ScheduleJob:       c.CreateScheduleJobCommandHandler(),
		SchedulePending:   c.SchedulePendingJobsCommandHandler(),
		JobResults:        c.CreateGetJobResultsQueryHandler(),
		Observer:          c.metrics,
		OptimizeByDefault: c.config.SchedulerOptimize,
		Logger:            c.logger,
	})
}

// CreateJobManager registers the background jobs enabled in the config.
func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	manager := jobs.NewJobManager()
	manager.Add("batch scheduling", jobs.NewBatchSchedulingJob(
		c.SchedulePendingJobsCommandHandler(),
		jobs.BatchSchedulingConfig{
			Schedule:   c.config.SchedulerCron,
			Objectives: c.config.Objectives,
			Optimize:   c.config.SchedulerOptimize,
			Timeout:    c.config.SchedulerTimeout,
		},
		c.logger,
	))
	return manager
}

// FuncUoWFactory adapts a function to commands.UoWFactory.
type FuncUoWFactory func() commands.UoW

// Create calls f.
func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
