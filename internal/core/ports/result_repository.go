package ports

import (
	"context"
	"time"

	"fieldservice/internal/core/domain/model/scheduling"
)

// ResultRepository appends scheduling attempts to the job's history.
type ResultRepository interface {
	Add(ctx context.Context, result scheduling.Result, attemptedAt time.Time) error
}
