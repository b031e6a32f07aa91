package queries

import (
	"context"

	"fieldservice/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// GetJobResultsQueryHandler reads the scheduling_results table directly,
// bypassing the aggregates.
type GetJobResultsQueryHandler struct {
	db *gorm.DB
}

// NewGetJobResultsQueryHandler creates a read-side handler that queries db directly.
func NewGetJobResultsQueryHandler(db *gorm.DB) GetJobResultsQueryHandler {
	return GetJobResultsQueryHandler{db: db}
}

// Handle returns at most query.Limit() attempts ordered by attempt time, newest
// first. An unknown job yields an empty slice.
func (h GetJobResultsQueryHandler) Handle(
	ctx context.Context,
	query GetJobResultsQuery,
) ([]GetJobResultsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	attempts := make([]GetJobResultsQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			attempted_at,
			assigned_worker_id,
			scheduled_start,
			scheduled_end,
			travel_minutes,
			confidence,
			alternatives,
			notes,
			constraints_violated,
			failure
		FROM scheduling_results
		WHERE job_id = ?
		ORDER BY attempted_at DESC, id
		LIMIT ?
	`, query.JobID().Bytes(), query.Limit()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var resp GetJobResultsQueryResponse
		var workerID *uuid.UUID
		var alternatives, violated pq.StringArray

		err = rows.Scan(
			&resp.AttemptedAt,
			&workerID,
			&resp.ScheduledStart,
			&resp.ScheduledEnd,
			&resp.TravelMinutes,
			&resp.Confidence,
			&alternatives,
			&resp.Notes,
			&violated,
			&resp.Failure,
		)
		if err != nil {
			return nil, err
		}

		if workerID != nil {
			id, idErr := kernel.UUIDFromBytes(workerID[:])
			if idErr != nil {
				return nil, idErr
			}
			resp.AssignedWorkerID = &id
		}

		resp.Alternatives = make([]kernel.UUID, 0, len(alternatives))
		for _, raw := range alternatives {
			id, idErr := kernel.UUIDFromString(raw)
			if idErr != nil {
				return nil, idErr
			}
			resp.Alternatives = append(resp.Alternatives, id)
		}
		resp.ConstraintsViolated = []string(violated)
		resp.AttemptedAt = resp.AttemptedAt.UTC()

		attempts = append(attempts, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return attempts, nil
}
