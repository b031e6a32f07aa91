// Package resultrepo stores the history of scheduling attempts, one row per
// result, feasible or not.
package resultrepo

import (
	"time"

	"fieldservice/internal/core/domain/model/scheduling"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ResultDTO is the row of the scheduling_results table.
type ResultDTO struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey"`
	JobID               uuid.UUID  `gorm:"type:uuid;not null;index:idx_results_job_attempt,priority:1"`
	AttemptedAt         time.Time  `gorm:"not null;index:idx_results_job_attempt,priority:2"`
	AssignedWorkerID    *uuid.UUID `gorm:"type:uuid;index"`
	ScheduledStart      *time.Time
	ScheduledEnd        *time.Time
	TravelMinutes       *float64       `gorm:"type:double precision"`
	Confidence          *float64       `gorm:"type:double precision"`
	Alternatives        pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	Notes               string         `gorm:"type:text;not null;default:''"`
	ConstraintsViolated pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	Failure             string         `gorm:"type:varchar(32);not null"`
}

// TableName returns the scheduling results table name.
func (ResultDTO) TableName() string {
	return "scheduling_results"
}

func fromDomain(result scheduling.Result, attemptedAt time.Time) ResultDTO {
	var workerID *uuid.UUID
	if id := result.AssignedWorkerID(); id != nil {
		raw := id.Bytes()
		workerID = &raw
	}

	alternatives := make(pq.StringArray, 0, len(result.Alternatives()))
	for _, alt := range result.Alternatives() {
		alternatives = append(alternatives, alt.String())
	}

	violated := result.ConstraintsViolated()
	if violated == nil {
		violated = []string{}
	}

	return ResultDTO{
		ID:                  uuid.New(),
		JobID:               result.JobID().Bytes(),
		AttemptedAt:         attemptedAt.UTC(),
		AssignedWorkerID:    workerID,
		ScheduledStart:      result.ScheduledStart(),
		ScheduledEnd:        result.ScheduledEnd(),
		TravelMinutes:       result.TravelMinutes(),
		Confidence:          result.Confidence(),
		Alternatives:        alternatives,
		Notes:               result.Notes(),
		ConstraintsViolated: violated,
		Failure:             result.Failure().String(),
	}
}
