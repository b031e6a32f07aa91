package postgres

import (
	"fieldservice/internal/adapters/out/postgres/jobrepo"
	"fieldservice/internal/adapters/out/postgres/resultrepo"
	"fieldservice/internal/adapters/out/postgres/workerrepo"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates every table the repositories use.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&jobrepo.JobDTO{},
		&workerrepo.WorkerDTO{},
		&workerrepo.SkillDTO{},
		&workerrepo.CertificationDTO{},
		&workerrepo.AvailabilityWindowDTO{},
		&resultrepo.ResultDTO{},
	)
}
