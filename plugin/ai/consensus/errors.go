package consensus

import (
	"context"
	"errors"
)

// Oracle contract errors. An oracle may return any other error for
// transport or availability failures; the sampler treats all of them as a
// skipped attempt.
var (
	// ErrNoCandidate indicates the oracle answered but produced no value.
	ErrNoCandidate = errors.New("oracle produced no candidate")

	// ErrSchemaMismatch indicates the oracle output could not be interpreted
	// as the requested value type.
	ErrSchemaMismatch = errors.New("oracle output does not match schema")
)

// ErrOracleExhausted is returned when every attempt failed and not a single
// usable sample was obtained. It is distinct from a quorum miss, which is
// reported through Result.Agreed and is not an error.
var ErrOracleExhausted = errors.New("oracle exhausted without a usable sample")

// ErrOracleUnavailable is wrapped alongside ErrOracleExhausted when every
// attempt failed in transport or timed out, so the oracle never answered.
var ErrOracleUnavailable = errors.New("oracle unavailable")

const (
	classNoCandidate    = "no_candidate"
	classSchemaMismatch = "schema_mismatch"
	classTimeout        = "timeout"
	classOracleError    = "oracle_error"
)

// failureClass labels a skipped attempt for logging.
func failureClass(err error) string {
	switch {
	case errors.Is(err, ErrNoCandidate):
		return classNoCandidate
	case errors.Is(err, ErrSchemaMismatch):
		return classSchemaMismatch
	case errors.Is(err, context.DeadlineExceeded):
		return classTimeout
	default:
		return classOracleError
	}
}
