package workforce

import (
	"fmt"
	"strings"
	"time"

	"fieldservice/internal/pkg/errs"
	"fieldservice/internal/pkg/guard"
)

var ErrCertificationIsNotConstructed = errs.NewValueIsRequiredError(
	"certification must be created via NewCertification constructor")

// Certification is a credential valid from a date and, optionally, until a date.
type Certification struct {
	id         string
	name       string
	validFrom  time.Time
	validUntil *time.Time
	guard      guard.ConstructorGuard
}

// NewCertification validates and returns a certification. validUntil may be nil
// for credentials that never expire.
func NewCertification(id, name string, validFrom time.Time, validUntil *time.Time) (Certification, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Certification{}, errs.NewValueIsRequiredError("certification id")
	}
	if validUntil != nil && !validUntil.After(validFrom) {
		return Certification{}, errs.NewValueIsInvalidErrorWithCause(
			"certification validity is invalid",
			fmt.Errorf("valid until %s is not after valid from %s",
				validUntil.Format(time.RFC3339), validFrom.Format(time.RFC3339)),
		)
	}

	c := Certification{
		id:        id,
		name:      strings.TrimSpace(name),
		validFrom: validFrom,
		guard:     guard.NewConstructorGuard(),
	}
	if validUntil != nil {
		until := *validUntil
		c.validUntil = &until
	}
	return c, nil
}

// Validate ensures the certification was built through NewCertification.
func (c Certification) Validate() error {
	return c.guard.Validate(ErrCertificationIsNotConstructed)
}

// ID returns the identifier jobs refer to, e.g. "gas-safe".
func (c Certification) ID() string {
	return c.id
}

// Name returns the human-readable name. It may be empty.
func (c Certification) Name() string {
	return c.name
}

// ValidFrom returns the first instant the certification is valid.
func (c Certification) ValidFrom() time.Time {
	return c.validFrom
}

// ValidUntil returns a copy of the expiry, or nil when it never expires.
func (c Certification) ValidUntil() *time.Time {
	if c.validUntil == nil {
		return nil
	}
	until := *c.validUntil
	return &until
}

// IsValidAt reports whether at falls within [validFrom, validUntil).
func (c Certification) IsValidAt(at time.Time) bool {
	if at.Before(c.validFrom) {
		return false
	}
	return c.validUntil == nil || at.Before(*c.validUntil)
}
