package core

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure from the job service or object storage so
// retry decisions stay a pure function of classification plus attempt count.
type ErrorKind string

const (
	// KindUnknown is an unclassified failure. It is not retried; looping on
	// errors we cannot name hides real defects.
	KindUnknown ErrorKind = "unknown"

	// KindThrottled is an API rate-limit rejection.
	KindThrottled ErrorKind = "throttled"

	// KindTransient is a temporary network or service failure.
	KindTransient ErrorKind = "transient"

	// KindInvalidRequest is a malformed or rejected request.
	KindInvalidRequest ErrorKind = "invalid-request"

	// KindPermissionDenied is a permanent authorization failure.
	KindPermissionDenied ErrorKind = "permission-denied"

	// KindNotFound is a missing remote resource.
	KindNotFound ErrorKind = "not-found"

	// KindInvariant is a programming-error class, distinct from service
	// errors: terminal-record transitions, duplicate remote identifiers.
	KindInvariant ErrorKind = "invariant"
)

// Retryable reports whether the kind is eligible for retry at all.
func (k ErrorKind) Retryable() bool {
	return k == KindThrottled || k == KindTransient
}

// Invariant violations and validation sentinels.
var (
	ErrTerminalTransition = errors.New("batchkit: status transition on terminal record")
	ErrUnknownStatus      = errors.New("batchkit: unknown job status")
	ErrDuplicateRemoteID  = errors.New("batchkit: remote id already assigned")
	ErrRecordNotFound     = errors.New("batchkit: job record not found")

	ErrMissingName       = errors.New("batchkit: job spec name is required")
	ErrNameTooLong       = errors.New("batchkit: job spec name too long")
	ErrInvalidName       = errors.New("batchkit: job spec name must be alphanumeric, start with letter")
	ErrMissingQueue      = errors.New("batchkit: job queue is required")
	ErrMissingDefinition = errors.New("batchkit: job definition is required")
	ErrInvalidResources  = errors.New("batchkit: resource requirements must be positive")
)

// ServiceError is a classified failure from an external collaborator.
type ServiceError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError wraps err with a classification for op.
func NewServiceError(kind ErrorKind, op string, err error) *ServiceError {
	return &ServiceError{Kind: kind, Op: op, Err: err}
}

// NewInvariantError wraps a defect-class error for op.
func NewInvariantError(op string, err error) *ServiceError {
	return &ServiceError{Kind: KindInvariant, Op: op, Err: err}
}

// KindOf extracts the classification from err. Unclassified errors are
// KindUnknown.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}
