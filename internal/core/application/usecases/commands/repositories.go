// Package commands contains business operations that modify system state.
// Every handler follows the same shape: validate the command, open a unit of
// work, run the domain services, persist, commit.
package commands

import (
	"context"
	"time"

	"fieldservice/internal/core/domain/model/scheduling"
	"fieldservice/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// JobRepoFactory provides access to the job repository within a transaction.
	JobRepoFactory interface {
		JobRepository() ports.JobRepository
	}

	// WorkerRepoFactory provides access to the worker repository within a transaction.
	WorkerRepoFactory interface {
		WorkerRepository() ports.WorkerRepository
	}

	// ResultRepoFactory provides access to the result history within a transaction.
	ResultRepoFactory interface {
		ResultRepository() ports.ResultRepository
	}

	// UoW spans jobs, workers and results. Scheduling reads workers and the
	// booked load, then writes job status and the attempt history atomically.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   jobRepo := uow.JobRepository()
	//   resultRepo := uow.ResultRepository()
	//   // ... perform operations
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		JobRepoFactory
		WorkerRepoFactory
		ResultRepoFactory
	}

	// UoWFactory creates new unit of work instances.
	UoWFactory interface {
		Create() UoW
	}
)

// SchedulingObserver records the outcome of scheduling runs.
type SchedulingObserver interface {
	ObserveResults(mode string, results []scheduling.Result, elapsed time.Duration)
}

// Scheduling modes reported to the SchedulingObserver.
const (
	ModeSingle  = "single"
	ModePending = "pending"
)
