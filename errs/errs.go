// Package errs implements the error taxonomy from spec §7: every error
// that crosses a component boundary (adapter, converter, writer,
// checkpoint store) is wrapped in an *Error carrying a Kind, so the
// coordinator can decide retry vs. fatal vs. graceful-stop without
// string-matching messages.
package errs

import "fmt"

// Kind classifies an error by how the coordinator should react to it.
type Kind string

const (
	// Configuration: missing/invalid flag, env var or connection string.
	// Fatal - the operator must fix the invocation.
	Configuration Kind = "configuration"
	// Connectivity: a source or target connection could not be
	// established or was lost mid-operation. Retryable with backoff.
	Connectivity Kind = "connectivity"
	// CaptureSetup: the backend's CDC mechanism could not be prepared
	// (trigger install failed, replication slot missing, change
	// stream unsupported). Fatal for that source.
	CaptureSetup Kind = "capture_setup"
	// StaleCheckpoint: a resumed checkpoint is no longer valid at the
	// source (slot rotated past it, audit rows pruned). Requires a
	// fresh full sync; never silently skipped.
	StaleCheckpoint Kind = "stale_checkpoint"
	// Conversion: a source value could not be mapped into the unified
	// value model. Converters with a fallback (decimal, base64) log a
	// warning and keep the value as a string instead of raising this
	// kind; an error of this kind returned by an adapter (e.g. a record
	// without its id field) ends the run.
	Conversion Kind = "conversion"
	// TargetWrite: the target rejected a batch. Retryable a bounded
	// number of times, then fatal for that batch.
	TargetWrite Kind = "target_write"
	// Cancellation: the full dump's context was cancelled before it
	// finished. Graceful. Incremental sync that reaches its deadline,
	// --incremental-to or max-messages bound returns nil, not this kind.
	Cancellation Kind = "cancellation"
)

// Error wraps an underlying error with the Kind and the operation
// (adapter method, coordinator phase, ...) in which it occurred.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether err carries the given Kind, looking through any
// number of wrapping *Error layers.
func Is(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			if e.Kind == kind {
				return true
			}
			err = e.Err
			continue
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Retryable reports whether the coordinator should retry the operation
// that produced err rather than abort, per the §7 policy table.
func Retryable(err error) bool {
	return Is(err, Connectivity) || Is(err, TargetWrite)
}

// Fatal reports whether err should abort the whole sync run.
func Fatal(err error) bool {
	return Is(err, Configuration) || Is(err, CaptureSetup) || Is(err, StaleCheckpoint)
}
