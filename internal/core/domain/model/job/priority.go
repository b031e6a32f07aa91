package job

import (
	"fmt"
	"strings"

	"fieldservice/internal/pkg/errs"
)

// Priority is the urgency class of a job. Higher priorities are processed first
// by batch scheduling and may earn a ranking bonus.
type Priority int

const (
	// PriorityUnknown is the zero value and is never valid.
	PriorityUnknown Priority = iota
	Low
	Medium
	High
	Urgent
	Emergency
)

type priorityInfo struct {
	wire    string
	display string
	weight  float64
}

func getPriorityInfo() map[Priority]priorityInfo {
	//nolint:exhaustive // PriorityUnknown is intentionally excluded as it's invalid
	return map[Priority]priorityInfo{
		Low:       {wire: "low", display: "Low", weight: 20},
		Medium:    {wire: "medium", display: "Medium", weight: 40},
		High:      {wire: "high", display: "High", weight: 60},
		Urgent:    {wire: "urgent", display: "Urgent", weight: 80},
		Emergency: {wire: "emergency", display: "Emergency", weight: 100},
	}
}

// ParsePriority maps a wire value ("low" .. "emergency", case-insensitive) to a Priority.
func ParsePriority(s string) (Priority, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for p, info := range getPriorityInfo() {
		if info.wire == needle {
			return p, nil
		}
	}
	return PriorityUnknown, errs.NewValueIsInvalidErrorWithCause(
		"priority is invalid", fmt.Errorf("%q is not a known priority", s))
}

// Validate rejects PriorityUnknown and values outside the enumeration.
func (p Priority) Validate() error {
	if _, ok := getPriorityInfo()[p]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("priority is invalid", fmt.Errorf("%d is not a valid priority", p))
	}
	return nil
}

// String returns the wire value, e.g. "emergency".
func (p Priority) String() string {
	if info, ok := getPriorityInfo()[p]; ok {
		return info.wire
	}
	return "unknown"
}

// DisplayName returns the human readable label, e.g. "Emergency".
func (p Priority) DisplayName() string {
	if info, ok := getPriorityInfo()[p]; ok {
		return info.display
	}
	return "Unknown"
}

// Weight is the base priority score used to order batch scheduling.
// Invalid priorities weigh 0.
func (p Priority) Weight() float64 {
	return getPriorityInfo()[p].weight
}
