// Package errs provides the typed validation and lookup errors shared by the
// scheduling domain, the application layer and the adapters.
//
// Every error type wraps a sentinel (ErrValueIsRequired, ErrValueIsInvalid,
// ErrValueIsOutOfRange, ErrObjectNotFound) so callers can classify failures with
// errors.Is while still reading the parameter that failed.
package errs
