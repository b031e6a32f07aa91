package ports

import (
	"context"
	"time"

	"fieldservice/internal/core/domain/model/job"
	"fieldservice/internal/core/domain/model/kernel"
)

// WorkerLoad is the booked work of one worker inside a time range.
type WorkerLoad struct {
	Jobs  int
	Hours float64
}

// JobRepository defines the persistence contract for job aggregates.
type JobRepository interface {
	// Add persists a new job aggregate.
	Add(ctx context.Context, aggregate *job.Job) error

	// Update persists status and assignment changes of an existing job.
	Update(ctx context.Context, aggregate *job.Job) error

	// Get retrieves a job by identifier. Returns errs.ErrObjectNotFound when missing.
	Get(ctx context.Context, id kernel.UUID) (*job.Job, error)

	// GetAllPending retrieves every job awaiting assignment (Pending or
	// Unschedulable), oldest first.
	GetAllPending(ctx context.Context) ([]*job.Job, error)

	// GetScheduledLoad sums Scheduled jobs per worker whose start falls in [from, to).
	// Workers without such jobs are absent from the map.
	GetScheduledLoad(ctx context.Context, from, to time.Time) (map[kernel.UUID]WorkerLoad, error)
}
