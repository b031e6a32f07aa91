package workforce

import (
	"fmt"
	"strings"

	"fieldservice/internal/pkg/errs"
)

// ProficiencyLevel grades how well a worker masters a skill.
type ProficiencyLevel int

const (
	// ProficiencyUnknown is the zero value and is never valid.
	ProficiencyUnknown ProficiencyLevel = iota
	Beginner
	Intermediate
	Advanced
	Expert
	Master
)

type proficiencyInfo struct {
	wire       string
	display    string
	multiplier float64
}

func getProficiencyInfo() map[ProficiencyLevel]proficiencyInfo {
	//nolint:exhaustive // ProficiencyUnknown is intentionally excluded as it's invalid
	return map[ProficiencyLevel]proficiencyInfo{
		Beginner:     {wire: "beginner", display: "Beginner", multiplier: 0.6},
		Intermediate: {wire: "intermediate", display: "Intermediate", multiplier: 0.75},
		Advanced:     {wire: "advanced", display: "Advanced", multiplier: 0.9},
		Expert:       {wire: "expert", display: "Expert", multiplier: 1.0},
		Master:       {wire: "master", display: "Master", multiplier: 1.1},
	}
}

// ParseProficiencyLevel maps a wire value ("beginner" .. "master") to a level.
func ParseProficiencyLevel(s string) (ProficiencyLevel, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for level, info := range getProficiencyInfo() {
		if info.wire == needle {
			return level, nil
		}
	}
	return ProficiencyUnknown, errs.NewValueIsInvalidErrorWithCause(
		"proficiency level is invalid", fmt.Errorf("%q is not a known proficiency level", s))
}

// Validate rejects values outside the enumeration.
func (l ProficiencyLevel) Validate() error {
	if _, ok := getProficiencyInfo()[l]; !ok {
		return errs.NewValueIsInvalidErrorWithCause(
			"proficiency level is invalid", fmt.Errorf("%d is not a valid proficiency level", l))
	}
	return nil
}

// String returns the wire value, e.g. "expert".
func (l ProficiencyLevel) String() string {
	if info, ok := getProficiencyInfo()[l]; ok {
		return info.wire
	}
	return "unknown"
}

// DisplayName returns a human-readable label, e.g. "Expert".
func (l ProficiencyLevel) DisplayName() string {
	if info, ok := getProficiencyInfo()[l]; ok {
		return info.display
	}
	return "Unknown"
}

// Multiplier is the skill match credit of the level before clipping to 1.
// Master exceeds 1 so callers clip it where a normalized score is required.
func (l ProficiencyLevel) Multiplier() float64 {
	return getProficiencyInfo()[l].multiplier
}
