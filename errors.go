package gauge

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by gauge operations. Callers should branch on
// these with errors.Is, never on the error string.
var (
	// ErrOutOfRange is returned by a mutator when the resulting value would
	// fall outside the current [min, max] range and Outbound is ERROR, or
	// is ONCE while the gauge is already out of range.
	ErrOutOfRange = errors.New("gauge: value out of range")

	// ErrBadMomentum is returned when Since >= Until and both are finite.
	ErrBadMomentum = errors.New("gauge: since must be before until")

	// ErrMomentumNotPresent is returned by RemoveMomentum when the given
	// momentum is not a live member of the gauge's momenta set.
	ErrMomentumNotPresent = errors.New("gauge: momentum not present")

	// ErrUnreachable is returned by When when the requested value is never
	// reached, or fewer than after+1 occurrences exist. Whenever reports
	// the same condition as an empty result, not as this error.
	ErrUnreachable = errors.New("gauge: value is unreachable")

	// ErrPastRebase is returned by ForgetPast when at precedes the gauge's
	// own base time: a gauge cannot forget into its own prehistory.
	ErrPastRebase = errors.New("gauge: cannot forget past the base time")

	// errBoundaryExhausted is internal: a boundary's line iterator ran out
	// of lines. It should never happen because every iterator ends in an
	// infinite Horizon; surfacing it indicates a construction bug.
	errBoundaryExhausted = errors.New("gauge: boundary iterator exhausted")
)

// wrapf prefixes an inner error with method context while preserving the
// sentinel for errors.Is, e.g. wrapf("SetMax", ErrPastRebase).
func wrapf(method string, err error) error {
	return fmt.Errorf("%s: %w", method, err)
}
