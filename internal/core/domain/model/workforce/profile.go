package workforce

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"fieldservice/internal/core/domain/model/kernel"
	"fieldservice/internal/pkg/errs"
	"fieldservice/internal/pkg/guard"
)

// DefaultEfficiencyMultiplier applies when a profile does not set one.
const DefaultEfficiencyMultiplier = 1.0

var ErrProfileIsNotConstructed = errors.New("CapabilityProfile must be created via NewCapabilityProfile constructor")

// CapabilityProfile is a read-only snapshot of a worker's capabilities and load.
//
// Invariants:
//   - workerID and homeBase are constructed values
//   - costPerHour >= 0, efficiencyMultiplier > 0
//   - currentWorkload >= 0, scheduledHoursToday >= 0
//
// Example:
//
//	home, _ := kernel.NewLocation(48.8566, 2.3522)
//	wiring, _ := workforce.NewSkill("electrical", "trade", workforce.Expert, 6)
//	profile, err := workforce.NewCapabilityProfile(workerID, home,
//	    workforce.WithSkills(wiring),
//	    workforce.WithCostPerHour(55),
//	)
type CapabilityProfile struct {
	workerID             kernel.UUID
	displayName          string
	homeBase             kernel.Location
	skills               []Skill
	certifications       []Certification
	availability         []AvailabilityWindow
	capacity             WorkloadCapacity
	costPerHour          float64
	efficiencyMultiplier float64
	currentWorkload      int
	scheduledHoursToday  float64
	guard                guard.ConstructorGuard
}

// ProfileOption sets an optional attribute of a CapabilityProfile.
type ProfileOption func(*CapabilityProfile)

// WithDisplayName sets the name shown in logs and results.
func WithDisplayName(name string) ProfileOption {
	return func(p *CapabilityProfile) { p.displayName = name }
}

// WithSkills appends skills. Each must be a constructed Skill.
func WithSkills(skills ...Skill) ProfileOption {
	return func(p *CapabilityProfile) { p.skills = append(p.skills, skills...) }
}

// WithCertifications appends certifications. Each must be a constructed Certification.
func WithCertifications(certs ...Certification) ProfileOption {
	return func(p *CapabilityProfile) { p.certifications = append(p.certifications, certs...) }
}

// WithAvailability appends weekly availability windows.
func WithAvailability(windows ...AvailabilityWindow) ProfileOption {
	return func(p *CapabilityProfile) { p.availability = append(p.availability, windows...) }
}

// WithCapacity sets the worker's own limits. The default is UnlimitedCapacity.
func WithCapacity(capacity WorkloadCapacity) ProfileOption {
	return func(p *CapabilityProfile) { p.capacity = capacity }
}

// WithCostPerHour sets the hourly rate. It must not be negative.
func WithCostPerHour(cost float64) ProfileOption {
	return func(p *CapabilityProfile) { p.costPerHour = cost }
}

// WithEfficiency sets the efficiency multiplier. It must be greater than 0;
// the default is DefaultEfficiencyMultiplier.
func WithEfficiency(multiplier float64) ProfileOption {
	return func(p *CapabilityProfile) { p.efficiencyMultiplier = multiplier }
}

// WithCurrentLoad sets the active job count and hours already booked today.
func WithCurrentLoad(workload int, hoursToday float64) ProfileOption {
	return func(p *CapabilityProfile) {
		p.currentWorkload = workload
		p.scheduledHoursToday = hoursToday
	}
}

// NewCapabilityProfile validates all attributes and returns the profile.
func NewCapabilityProfile(workerID kernel.UUID, homeBase kernel.Location, opts ...ProfileOption) (*CapabilityProfile, error) {
	p := &CapabilityProfile{
		efficiencyMultiplier: DefaultEfficiencyMultiplier,
		guard:                guard.NewConstructorGuard(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if err := errors.Join(
		p.setWorkerID(workerID),
		p.setHomeBase(homeBase),
		p.validateParts(),
		p.validateRates(),
		p.validateLoad(p.currentWorkload, p.scheduledHoursToday),
	); err != nil {
		return nil, err
	}

	return p, nil
}

// Validate ensures the profile was built through NewCapabilityProfile.
func (p *CapabilityProfile) Validate() error {
	if p == nil {
		return ErrProfileIsNotConstructed
	}
	return p.guard.Validate(ErrProfileIsNotConstructed)
}

// WithWorkload returns a copy with the active job count and today's booked hours replaced.
func (p *CapabilityProfile) WithWorkload(currentWorkload int, scheduledHoursToday float64) (*CapabilityProfile, error) {
	if err := p.validateLoad(currentWorkload, scheduledHoursToday); err != nil {
		return nil, err
	}

	cp := *p
	cp.currentWorkload = currentWorkload
	cp.scheduledHoursToday = scheduledHoursToday
	return &cp, nil
}

// WorkerID returns the worker identifier.
func (p *CapabilityProfile) WorkerID() kernel.UUID {
	return p.workerID
}

// DisplayName returns the display name. It may be empty.
func (p *CapabilityProfile) DisplayName() string {
	return p.displayName
}

// HomeBase returns the location travel is measured from.
func (p *CapabilityProfile) HomeBase() kernel.Location {
	return p.homeBase
}

// Skills returns a copy of the worker's skills.
func (p *CapabilityProfile) Skills() []Skill {
	return append([]Skill(nil), p.skills...)
}

// Certifications returns a copy of the worker's certifications.
func (p *CapabilityProfile) Certifications() []Certification {
	return append([]Certification(nil), p.certifications...)
}

// Availability returns a copy of the weekly availability windows.
func (p *CapabilityProfile) Availability() []AvailabilityWindow {
	return append([]AvailabilityWindow(nil), p.availability...)
}

// Capacity returns the worker's own limits.
func (p *CapabilityProfile) Capacity() WorkloadCapacity {
	return p.capacity
}

// CostPerHour returns the hourly rate.
func (p *CapabilityProfile) CostPerHour() float64 {
	return p.costPerHour
}

// EfficiencyMultiplier returns the efficiency relative to a standard worker.
func (p *CapabilityProfile) EfficiencyMultiplier() float64 {
	return p.efficiencyMultiplier
}

// CurrentWorkload returns the number of active jobs.
func (p *CapabilityProfile) CurrentWorkload() int {
	return p.currentWorkload
}

// ScheduledHoursToday returns the hours already booked for today.
func (p *CapabilityProfile) ScheduledHoursToday() float64 {
	return p.scheduledHoursToday
}

// FindSkill looks a skill up by identifier, ignoring case.
func (p *CapabilityProfile) FindSkill(id string) (Skill, bool) {
	for _, s := range p.skills {
		if s.Matches(id) {
			return s, true
		}
	}
	return Skill{}, false
}

// HasValidCertification reports whether a certification with the given id,
// matched ignoring case, is valid at t.
func (p *CapabilityProfile) HasValidCertification(id string, at time.Time) bool {
	for _, c := range p.certifications {
		if strings.EqualFold(c.id, strings.TrimSpace(id)) && c.IsValidAt(at) {
			return true
		}
	}
	return false
}

func (p *CapabilityProfile) setWorkerID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	p.workerID = id
	return nil
}

func (p *CapabilityProfile) setHomeBase(location kernel.Location) error {
	if err := location.Validate(); err != nil {
		return err
	}
	p.homeBase = location
	return nil
}

func (p *CapabilityProfile) validateParts() error {
	var errList []error
	for _, s := range p.skills {
		errList = append(errList, s.Validate())
	}
	for _, c := range p.certifications {
		errList = append(errList, c.Validate())
	}
	for _, w := range p.availability {
		errList = append(errList, w.Validate())
	}
	return errors.Join(errList...)
}

func (p *CapabilityProfile) validateRates() error {
	var costErr, efficiencyErr error
	if math.IsNaN(p.costPerHour) || p.costPerHour < 0 {
		costErr = errs.NewValueIsInvalidErrorWithCause(
			"cost per hour is invalid", fmt.Errorf("%v is negative", p.costPerHour))
	}
	if math.IsNaN(p.efficiencyMultiplier) || p.efficiencyMultiplier <= 0 {
		efficiencyErr = errs.NewValueIsInvalidErrorWithCause(
			"efficiency multiplier is invalid", fmt.Errorf("%v is not greater than 0", p.efficiencyMultiplier))
	}
	return errors.Join(costErr, efficiencyErr)
}

func (p *CapabilityProfile) validateLoad(workload int, hoursToday float64) error {
	var workloadErr, hoursErr error
	if workload < 0 {
		workloadErr = errs.NewValueIsInvalidErrorWithCause(
			"current workload is invalid", fmt.Errorf("%d is negative", workload))
	}
	if math.IsNaN(hoursToday) || hoursToday < 0 {
		hoursErr = errs.NewValueIsInvalidErrorWithCause(
			"scheduled hours today is invalid", fmt.Errorf("%v is negative", hoursToday))
	}
	return errors.Join(workloadErr, hoursErr)
}
