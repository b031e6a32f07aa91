package workerrepo

import (
	"context"
	"errors"

	"fieldservice/internal/core/domain/model/kernel"
	"fieldservice/internal/core/domain/model/workforce"
	"fieldservice/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormWorkerRepository implements ports.WorkerRepository using GORM.
type GormWorkerRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormWorkerRepository creates a read-mostly repository of worker profiles on db.
func NewGormWorkerRepository(db *gorm.DB, tracker aggregateTracker) *GormWorkerRepository {
	return &GormWorkerRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a profile together with its skills, certifications and windows.
func (r *GormWorkerRepository) Add(ctx context.Context, profile *workforce.CapabilityProfile) error {
	if err := profile.Validate(); err != nil {
		return err
	}

	dto := fromDomain(profile)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(profile.WorkerID(), profile)
	return nil
}

// Get retrieves a profile by worker ID.
func (r *GormWorkerRepository) Get(ctx context.Context, id kernel.UUID) (*workforce.CapabilityProfile, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto WorkerDTO
	if err := r.withChildren(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("worker", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetAll retrieves every profile ordered by worker ID.
func (r *GormWorkerRepository) GetAll(ctx context.Context) ([]*workforce.CapabilityProfile, error) {
	var dtos []WorkerDTO
	if err := r.withChildren(ctx).Order("id").Find(&dtos).Error; err != nil {
		return nil, err
	}

	profiles := make([]*workforce.CapabilityProfile, 0, len(dtos))
	for _, dto := range dtos {
		p, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}

	return profiles, nil
}

func (r *GormWorkerRepository) withChildren(ctx context.Context) *gorm.DB {
	byPosition := func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	}
	return r.db.WithContext(ctx).
		Preload("Skills", byPosition).
		Preload("Certifications", byPosition).
		Preload("Availability", byPosition)
}
