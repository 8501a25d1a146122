// Package fault defines the error taxonomy shared by the combat core.
//
// Three classes are surfaced to callers: validation failures, missing
// records, and concurrency conflicts. Data-integrity problems in content
// configuration are not errors; they are self-healed and logged by the
// owning component.
package fault

import (
	"errors"
	"fmt"
)

// ValidationError reports a request the caller built incorrectly:
// insufficient MP/SP, an item in the wrong slot, a malformed effect.
// Never retried automatically.
type ValidationError struct {
	// Reason is a machine-readable identifier, e.g. "insufficient_sp".
	Reason string
	// Detail is the human-readable explanation.
	Detail string
}

// Error returns "reason: detail".
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

// NotFoundError reports a lookup that yielded no record.
// Callers decide whether this is benign (e.g. "no active battle").
type NotFoundError struct {
	// Kind names the missing entity: "battle", "character", "skill", ...
	Kind string
	// Key identifies the record that was requested.
	Key string
}

// Error returns "kind not found: key".
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Key)
}

// ConflictError reports an action attempted against a battle session that is
// no longer active, or a losing concurrent write. Retryable by the caller.
type ConflictError struct {
	// Detail describes the conflicting operation.
	Detail string
}

// Error returns the conflict detail.
func (e *ConflictError) Error() string {
	return e.Detail
}

// Validationf builds a ValidationError with a formatted detail message.
//
// Postcondition: Returns a non-nil *ValidationError.
func Validationf(reason, format string, args ...any) *ValidationError {
	return &ValidationError{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// NotFound builds a NotFoundError for the given entity kind and key.
func NotFound(kind, key string) *NotFoundError {
	return &NotFoundError{Kind: kind, Key: key}
}

// Conflictf builds a ConflictError with a formatted detail message.
func Conflictf(format string, args ...any) *ConflictError {
	return &ConflictError{Detail: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}

// IsConflict reports whether err is or wraps a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
