// Package workerrepo persists capability profiles. Profiles are owned by the
// workforce system; the scheduler reads them and writes only when seeding.
package workerrepo

import (
	"time"

	"fieldservice/internal/core/domain/model/kernel"
	"fieldservice/internal/core/domain/model/workforce"

	"github.com/google/uuid"
)

// WorkerDTO is the row of the workers table with its child collections.
type WorkerDTO struct {
	ID                   uuid.UUID   `gorm:"type:uuid;primaryKey"`
	DisplayName          string      `gorm:"type:varchar(255);not null;default:''"`
	HomeBase             LocationDTO `gorm:"embedded;embeddedPrefix:home_"`
	Capacity             CapacityDTO `gorm:"embedded;embeddedPrefix:capacity_"`
	CostPerHour          float64     `gorm:"type:double precision;not null"`
	EfficiencyMultiplier float64     `gorm:"type:double precision;not null"`
	CurrentWorkload      int         `gorm:"not null"`
	ScheduledHoursToday  float64     `gorm:"type:double precision;not null"`

	Skills         []SkillDTO              `gorm:"foreignKey:WorkerID;constraint:OnDelete:CASCADE"`
	Certifications []CertificationDTO      `gorm:"foreignKey:WorkerID;constraint:OnDelete:CASCADE"`
	Availability   []AvailabilityWindowDTO `gorm:"foreignKey:WorkerID;constraint:OnDelete:CASCADE"`
}

// TableName returns the workers table name.
func (WorkerDTO) TableName() string {
	return "workers"
}

// LocationDTO is the embedded home base.
type LocationDTO struct {
	Latitude  float64 `gorm:"type:double precision"`
	Longitude float64 `gorm:"type:double precision"`
}

// CapacityDTO holds the hard limits; zero disables a limit.
type CapacityDTO struct {
	MaxConcurrentJobs   int
	MaxDailyHours       float64 `gorm:"type:double precision"`
	MaxWeeklyHours      float64 `gorm:"type:double precision"`
	MaxTravelDistanceKm float64 `gorm:"type:double precision"`
}

// SkillDTO is a row of worker_skills.
type SkillDTO struct {
	WorkerID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	SkillID           string    `gorm:"type:varchar(100);primaryKey"`
	Position          int       `gorm:"not null"`
	Category          string    `gorm:"type:varchar(100);not null;default:''"`
	Level             int       `gorm:"type:smallint;not null"`
	YearsOfExperience float64   `gorm:"type:double precision;not null"`
	ProficiencyScore  *float64  `gorm:"type:double precision"`
}

// TableName returns the worker skills table name.
func (SkillDTO) TableName() string {
	return "worker_skills"
}

// CertificationDTO is a row of worker_certifications.
type CertificationDTO struct {
	WorkerID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CertificationID string    `gorm:"type:varchar(100);primaryKey"`
	Position        int       `gorm:"not null"`
	Name            string    `gorm:"type:varchar(255);not null"`
	ValidFrom       time.Time `gorm:"not null"`
	ValidUntil      *time.Time
}

// TableName returns the worker certifications table name.
func (CertificationDTO) TableName() string {
	return "worker_certifications"
}

// AvailabilityWindowDTO is a row of worker_availability.
type AvailabilityWindowDTO struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	WorkerID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Position    int       `gorm:"not null"`
	Weekday     int       `gorm:"type:smallint;not null"`
	StartMinute int       `gorm:"not null"`
	EndMinute   int       `gorm:"not null"`
	Type        int       `gorm:"type:smallint;not null"`
}

// TableName returns the worker availability table name.
func (AvailabilityWindowDTO) TableName() string {
	return "worker_availability"
}

func fromDomain(profile *workforce.CapabilityProfile) WorkerDTO {
	workerID := profile.WorkerID().Bytes()
	capacity := profile.Capacity()

	skills := make([]SkillDTO, 0, len(profile.Skills()))
	for i, s := range profile.Skills() {
		skills = append(skills, SkillDTO{
			WorkerID:          workerID,
			SkillID:           s.ID(),
			Position:          i,
			Category:          s.Category(),
			Level:             int(s.Level()),
			YearsOfExperience: s.YearsOfExperience(),
			ProficiencyScore:  s.ProficiencyScore(),
		})
	}

	certs := make([]CertificationDTO, 0, len(profile.Certifications()))
	for i, c := range profile.Certifications() {
		certs = append(certs, CertificationDTO{
			WorkerID:        workerID,
			CertificationID: c.ID(),
			Position:        i,
			Name:            c.Name(),
			ValidFrom:       c.ValidFrom(),
			ValidUntil:      c.ValidUntil(),
		})
	}

	windows := make([]AvailabilityWindowDTO, 0, len(profile.Availability()))
	for i, w := range profile.Availability() {
		windows = append(windows, AvailabilityWindowDTO{
			WorkerID:    workerID,
			Position:    i,
			Weekday:     int(w.Weekday()),
			StartMinute: w.StartMinute(),
			EndMinute:   w.EndMinute(),
			Type:        int(w.Type()),
		})
	}

	return WorkerDTO{
		ID:          workerID,
		DisplayName: profile.DisplayName(),
		HomeBase: LocationDTO{
			Latitude:  profile.HomeBase().Latitude(),
			Longitude: profile.HomeBase().Longitude(),
		},
		Capacity: CapacityDTO{
			MaxConcurrentJobs:   capacity.MaxConcurrentJobs(),
			MaxDailyHours:       capacity.MaxDailyHours(),
			MaxWeeklyHours:      capacity.MaxWeeklyHours(),
			MaxTravelDistanceKm: capacity.MaxTravelDistanceKm(),
		},
		CostPerHour:          profile.CostPerHour(),
		EfficiencyMultiplier: profile.EfficiencyMultiplier(),
		CurrentWorkload:      profile.CurrentWorkload(),
		ScheduledHoursToday:  profile.ScheduledHoursToday(),
		Skills:               skills,
		Certifications:       certs,
		Availability:         windows,
	}
}

func toDomain(dto WorkerDTO) (*workforce.CapabilityProfile, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	home, err := kernel.NewLocation(dto.HomeBase.Latitude, dto.HomeBase.Longitude)
	if err != nil {
		return nil, err
	}

	capacity, err := workforce.NewWorkloadCapacity(
		dto.Capacity.MaxConcurrentJobs,
		dto.Capacity.MaxDailyHours,
		dto.Capacity.MaxWeeklyHours,
		dto.Capacity.MaxTravelDistanceKm,
	)
	if err != nil {
		return nil, err
	}

	skills := make([]workforce.Skill, 0, len(dto.Skills))
	for _, s := range dto.Skills {
		skill, skillErr := skillToDomain(s)
		if skillErr != nil {
			return nil, skillErr
		}
		skills = append(skills, skill)
	}

	certs := make([]workforce.Certification, 0, len(dto.Certifications))
	for _, c := range dto.Certifications {
		cert, certErr := workforce.NewCertification(c.CertificationID, c.Name, c.ValidFrom, c.ValidUntil)
		if certErr != nil {
			return nil, certErr
		}
		certs = append(certs, cert)
	}

	windows := make([]workforce.AvailabilityWindow, 0, len(dto.Availability))
	for _, w := range dto.Availability {
		window, windowErr := workforce.NewAvailabilityWindow(
			time.Weekday(w.Weekday), w.StartMinute, w.EndMinute, workforce.AvailabilityType(w.Type))
		if windowErr != nil {
			return nil, windowErr
		}
		windows = append(windows, window)
	}

	return workforce.NewCapabilityProfile(id, home,
		workforce.WithDisplayName(dto.DisplayName),
		workforce.WithSkills(skills...),
		workforce.WithCertifications(certs...),
		workforce.WithAvailability(windows...),
		workforce.WithCapacity(capacity),
		workforce.WithCostPerHour(dto.CostPerHour),
		workforce.WithEfficiency(dto.EfficiencyMultiplier),
		workforce.WithCurrentLoad(dto.CurrentWorkload, dto.ScheduledHoursToday),
	)
}

func skillToDomain(dto SkillDTO) (workforce.Skill, error) {
	skill, err := workforce.NewSkill(dto.SkillID, dto.Category, workforce.ProficiencyLevel(dto.Level), dto.YearsOfExperience)
	if err != nil {
		return workforce.Skill{}, err
	}
	if dto.ProficiencyScore != nil {
		return skill.WithProficiencyScore(*dto.ProficiencyScore)
	}
	return skill, nil
}
