// Package guard lets value objects detect that they were built as a zero value
// instead of through their constructor.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when no specific error is supplied.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard is embedded in structs whose invariants are established by a
// constructor. The zero value reports "not constructed".
//
//	type Skill struct {
//	    id    string
//	    guard guard.ConstructorGuard
//	}
//
//	func NewSkill(id string) (Skill, error) {
//	    if id == "" {
//	        return Skill{}, errs.NewValueIsRequiredError("skill id")
//	    }
//	    return Skill{id: id, guard: guard.NewConstructorGuard()}, nil
//	}
//
//	func (s Skill) Validate() error {
//	    return s.guard.Validate(ErrSkillIsNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard returns a guard marked as constructed.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns validationError (or ErrDefaultConstructorGuard when it is nil)
// if the guard is a zero value, and nil otherwise.
func (g ConstructorGuard) Validate(validationError error) error {
	if validationError == nil {
		validationError = ErrDefaultConstructorGuard
	}
	if !g.isConstructed {
		return validationError
	}
	return nil
}
