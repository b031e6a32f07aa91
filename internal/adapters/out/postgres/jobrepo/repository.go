package jobrepo

import (
	"context"
	"errors"
	"time"

	"fieldservice/internal/core/domain/model/job"
	"fieldservice/internal/core/domain/model/kernel"
	"fieldservice/internal/core/ports"
	"fieldservice/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormJobRepository implements ports.JobRepository using GORM.
type GormJobRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormJobRepository creates a repository on db. Saved jobs are reported to
// tracker so the unit of work knows what changed.
func NewGormJobRepository(db *gorm.DB, tracker aggregateTracker) *GormJobRepository {
	return &GormJobRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new job.
func (r *GormJobRepository) Add(ctx context.Context, aggregate *job.Job) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update writes the status and assignment of an existing job.
func (r *GormJobRepository) Update(ctx context.Context, aggregate *job.Job) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&JobDTO{}).Where("id = ?", dto.ID).Updates(map[string]any{
		"status":             dto.Status,
		"assigned_worker_id": dto.AssignedWorkerID,
		"scheduled_start":    dto.ScheduledStart,
		"scheduled_end":      dto.ScheduledEnd,
	})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundErrorWithCause("job", aggregate.ID().String(), gorm.ErrRecordNotFound)
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves a job by ID.
func (r *GormJobRepository) Get(ctx context.Context, id kernel.UUID) (*job.Job, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto JobDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("job", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetAllPending retrieves the jobs awaiting assignment, oldest first.
func (r *GormJobRepository) GetAllPending(ctx context.Context) ([]*job.Job, error) {
	var dtos []JobDTO
	if err := r.db.WithContext(ctx).
		Where("status IN ?", []int{int(job.Pending), int(job.Unschedulable)}).
		Order("created_at, id").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	jobs := make([]*job.Job, 0, len(dtos))
	for _, dto := range dtos {
		j, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}

	return jobs, nil
}

type loadRow struct {
	WorkerID uuid.UUID
	Jobs     int
	Hours    float64
}

// GetScheduledLoad sums the scheduled jobs per worker starting in [from, to).
func (r *GormJobRepository) GetScheduledLoad(
	ctx context.Context,
	from, to time.Time,
) (map[kernel.UUID]ports.WorkerLoad, error) {
	var rows []loadRow
	if err := r.db.WithContext(ctx).Raw(
		`SELECT assigned_worker_id AS worker_id,
		        COUNT(*) AS jobs,
		        COALESCE(SUM(estimated_duration_hours), 0) AS hours
		   FROM jobs
		  WHERE status = ?
		    AND assigned_worker_id IS NOT NULL
		    AND scheduled_start >= ? AND scheduled_start < ?
		  GROUP BY assigned_worker_id`,
		int(job.Scheduled), from, to,
	).Scan(&rows).Error; err != nil {
		return nil, err
	}

	loads := make(map[kernel.UUID]ports.WorkerLoad, len(rows))
	for _, row := range rows {
		id, err := kernel.UUIDFromBytes(row.WorkerID[:])
		if err != nil {
			return nil, err
		}
		loads[id] = ports.WorkerLoad{Jobs: row.Jobs, Hours: row.Hours}
	}

	return loads, nil
}
