// Package jobrepo persists job aggregates: the request, its lifecycle status and
// the assignment made by the scheduler.
package jobrepo

import (
	"time"

	"fieldservice/internal/core/domain/model/job"
	"fieldservice/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// JobDTO is the row of the jobs table. Jobs are written by the intake system;
// the scheduler only updates status and assignment columns.
type JobDTO struct {
	ID                     uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Location               LocationDTO    `gorm:"embedded;embeddedPrefix:location_"`
	RequiredSkills         pq.StringArray `gorm:"type:text[];not null"`
	Priority               int            `gorm:"type:smallint;not null"`
	DueDate                *time.Time
	EstimatedDurationHours float64 `gorm:"type:double precision;not null"`
	PreferredStart         *time.Time
	PreferredEnd           *time.Time
	RequiredCertifications pq.StringArray `gorm:"type:text[]"`
	Status                 int            `gorm:"type:smallint;not null;index"`
	AssignedWorkerID       *uuid.UUID     `gorm:"type:uuid;index"`
	ScheduledStart         *time.Time     `gorm:"index"`
	ScheduledEnd           *time.Time
	CreatedAt              time.Time `gorm:"autoCreateTime"`
}

// TableName returns the jobs table name.
func (JobDTO) TableName() string {
	return "jobs"
}

// LocationDTO is the embedded job site.
type LocationDTO struct {
	Latitude  float64 `gorm:"type:double precision"`
	Longitude float64 `gorm:"type:double precision"`
}

func fromDomain(aggregate *job.Job) JobDTO {
	req := aggregate.Request()

	var workerID *uuid.UUID
	if id := aggregate.AssignedWorker(); id != nil {
		raw := id.Bytes()
		workerID = &raw
	}

	var preferredStart, preferredEnd *time.Time
	if w := req.PreferredWindow(); w != nil {
		start, end := w.Start(), w.End()
		preferredStart, preferredEnd = &start, &end
	}

	return JobDTO{
		ID: aggregate.ID().Bytes(),
		Location: LocationDTO{
			Latitude:  req.Location().Latitude(),
			Longitude: req.Location().Longitude(),
		},
		RequiredSkills:         pq.StringArray(req.RequiredSkills()),
		Priority:               int(req.Priority()),
		DueDate:                req.DueDate(),
		EstimatedDurationHours: req.EstimatedDurationHours(),
		PreferredStart:         preferredStart,
		PreferredEnd:           preferredEnd,
		RequiredCertifications: pq.StringArray(req.RequiredCertifications()),
		Status:                 int(aggregate.Status()),
		AssignedWorkerID:       workerID,
		ScheduledStart:         aggregate.ScheduledStart(),
		ScheduledEnd:           aggregate.ScheduledEnd(),
	}
}

func toDomain(dto JobDTO) (*job.Job, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	loc, err := kernel.NewLocation(dto.Location.Latitude, dto.Location.Longitude)
	if err != nil {
		return nil, err
	}

	var opts []job.RequestOption
	if dto.DueDate != nil {
		opts = append(opts, job.WithDueDate(*dto.DueDate))
	}
	if dto.PreferredStart != nil && dto.PreferredEnd != nil {
		window, windowErr := job.NewTimeWindow(*dto.PreferredStart, *dto.PreferredEnd)
		if windowErr != nil {
			return nil, windowErr
		}
		opts = append(opts, job.WithPreferredWindow(window))
	}
	if len(dto.RequiredCertifications) > 0 {
		opts = append(opts, job.WithRequiredCertifications(dto.RequiredCertifications...))
	}

	req, err := job.NewRequest(id, loc, dto.RequiredSkills, job.Priority(dto.Priority), dto.EstimatedDurationHours, opts...)
	if err != nil {
		return nil, err
	}

	var workerID *kernel.UUID
	if dto.AssignedWorkerID != nil {
		wID, workerErr := kernel.UUIDFromBytes((*dto.AssignedWorkerID)[:])
		if workerErr != nil {
			return nil, workerErr
		}
		workerID = &wID
	}

	return job.RestoreJob(req, job.Status(dto.Status), workerID, dto.ScheduledStart, dto.ScheduledEnd)
}
