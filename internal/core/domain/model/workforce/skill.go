package workforce

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"fieldservice/internal/pkg/errs"
	"fieldservice/internal/pkg/guard"
)

const (
	MinProficiencyScore = 0.0
	MaxProficiencyScore = 100.0
)

var ErrSkillIsNotConstructed = errs.NewValueIsRequiredError("skill must be created via NewSkill constructor")

// Skill is a worker's competence in one skill identifier.
type Skill struct {
	id                string
	category          string
	level             ProficiencyLevel
	yearsOfExperience float64
	proficiencyScore  *float64
	guard             guard.ConstructorGuard
}

// NewSkill validates and returns a skill without a proficiency score.
func NewSkill(id, category string, level ProficiencyLevel, yearsOfExperience float64) (Skill, error) {
	s := Skill{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		s.setID(id),
		s.setCategory(category),
		s.setLevel(level),
		s.setYearsOfExperience(yearsOfExperience),
	); err != nil {
		return Skill{}, err
	}

	return s, nil
}

// WithProficiencyScore returns a copy carrying an assessed score in [0, 100].
func (s Skill) WithProficiencyScore(score float64) (Skill, error) {
	if math.IsNaN(score) || score < MinProficiencyScore || score > MaxProficiencyScore {
		return Skill{}, errs.NewValueIsOutOfRangeError("proficiency score", score, MinProficiencyScore, MaxProficiencyScore)
	}
	s.proficiencyScore = &score
	return s, nil
}

// Validate ensures the skill was built through NewSkill.
func (s Skill) Validate() error {
	return s.guard.Validate(ErrSkillIsNotConstructed)
}

// ID returns the skill identifier jobs refer to.
func (s Skill) ID() string {
	return s.id
}

// Category returns the trade the skill belongs to.
func (s Skill) Category() string {
	return s.category
}

// Level returns the proficiency level.
func (s Skill) Level() ProficiencyLevel {
	return s.level
}

// YearsOfExperience returns the years the worker has practised the skill.
func (s Skill) YearsOfExperience() float64 {
	return s.yearsOfExperience
}

// ProficiencyScore returns the assessed score, or nil if none was recorded.
func (s Skill) ProficiencyScore() *float64 {
	if s.proficiencyScore == nil {
		return nil
	}
	v := *s.proficiencyScore
	return &v
}

// Matches reports whether the skill satisfies the required skill identifier,
// ignoring case and surrounding whitespace.
func (s Skill) Matches(required string) bool {
	return strings.EqualFold(s.id, strings.TrimSpace(required))
}

func (s *Skill) setID(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errs.NewValueIsRequiredError("skill id")
	}
	s.id = id
	return nil
}

func (s *Skill) setCategory(category string) error {
	s.category = strings.TrimSpace(category)
	return nil
}

func (s *Skill) setLevel(level ProficiencyLevel) error {
	if err := level.Validate(); err != nil {
		return err
	}
	s.level = level
	return nil
}

func (s *Skill) setYearsOfExperience(years float64) error {
	if math.IsNaN(years) || years < 0 {
		return errs.NewValueIsInvalidErrorWithCause(
			"years of experience is invalid", fmt.Errorf("%v is negative", years))
	}
	s.yearsOfExperience = years
	return nil
}
