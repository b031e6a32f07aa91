package ports

import (
	"context"

	"fieldservice/internal/core/domain/model/kernel"
	"fieldservice/internal/core/domain/model/workforce"
)

// WorkerRepository reads capability profiles maintained by the workforce system.
// Add exists for seeding and tests; the scheduler itself never writes profiles.
type WorkerRepository interface {
	Add(ctx context.Context, profile *workforce.CapabilityProfile) error

	// Get retrieves a profile with skills, certifications and availability.
	// Returns errs.ErrObjectNotFound when missing.
	Get(ctx context.Context, id kernel.UUID) (*workforce.CapabilityProfile, error)

	// GetAll retrieves every profile ordered by worker id.
	GetAll(ctx context.Context) ([]*workforce.CapabilityProfile, error)
}
