package resultrepo

import (
	"context"
	"time"

	"fieldservice/internal/core/domain/model/kernel"
	"fieldservice/internal/core/domain/model/scheduling"

	"gorm.io/gorm"
)

// GormResultRepository implements ports.ResultRepository using GORM.
type GormResultRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormResultRepository creates a repository on db. Appended results are
// reported to tracker.
func NewGormResultRepository(db *gorm.DB, tracker aggregateTracker) *GormResultRepository {
	return &GormResultRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add appends a scheduling attempt. Results of stateless requests that have no
// stored job are accepted too; the table has no foreign key to jobs.
func (r *GormResultRepository) Add(ctx context.Context, result scheduling.Result, attemptedAt time.Time) error {
	if err := result.JobID().Validate(); err != nil {
		return err
	}

	dto := fromDomain(result, attemptedAt)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(result.JobID(), result)
	return nil
}
