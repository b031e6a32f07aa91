// Package kernel provides the value objects shared by every scheduling aggregate:
// identifiers (UUID) and geographic coordinates (Location).
//
// Both are immutable, constructor validated and safe for concurrent use. The zero
// value of each type is invalid and fails Validate.
package kernel
