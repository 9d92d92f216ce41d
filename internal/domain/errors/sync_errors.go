package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrValidation indicates a request failed validation before any write
	ErrValidation = errors.New("validation failed")

	// ErrDuplicateEntity indicates a record with the same natural key already exists
	ErrDuplicateEntity = errors.New("entity already exists")

	// ErrNotFound indicates the requested local record does not exist
	ErrNotFound = errors.New("entity not found")

	// ErrCustomerNotFound indicates the referenced local customer does not exist
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrCustomerLinkageMismatch indicates the caller's customer provider id
	// differs from the id stored on the customer
	ErrCustomerLinkageMismatch = errors.New("customer linkage mismatch")

	// ErrMissingExternalID indicates an update was requested without the
	// provider id needed to locate the record
	ErrMissingExternalID = errors.New("missing external id")

	// ErrRemoteWriteFailed indicates a provider rejected a create or read
	ErrRemoteWriteFailed = errors.New("remote write failed")

	// ErrRemoteUpdateFailed indicates a provider rejected an update and the
	// local change was rolled back
	ErrRemoteUpdateFailed = errors.New("remote update failed")

	// ErrNoToken indicates the provider was never authorized
	ErrNoToken = errors.New("no provider token stored, authorization required")

	// ErrRefreshExpired indicates the refresh token expired and the provider
	// must be authorized again
	ErrRefreshExpired = errors.New("provider refresh token expired, authorization required")
)

// ValidationError lists the offending fields with a reason for each.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: reason}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %s", k, e.Fields[k]))
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// RemoteError wraps a provider failure during a sync step. It matches
// ErrRemoteUpdateFailed for updates and ErrRemoteWriteFailed otherwise, and
// still exposes the underlying provider error to errors.As.
type RemoteError struct {
	Provider string
	Op       string
	Update   bool
	Err      error
}

func (e *RemoteError) Error() string {
	kind := ErrRemoteWriteFailed
	if e.Update {
		kind = ErrRemoteUpdateFailed
	}
	return fmt.Sprintf("%s: %s %s: %v", kind.Error(), e.Provider, e.Op, e.Err)
}

func (e *RemoteError) Unwrap() []error {
	if e.Update {
		return []error{ErrRemoteUpdateFailed, e.Err}
	}
	return []error{ErrRemoteWriteFailed, e.Err}
}

// LinkageMismatchError reports which provider id disagreed.
type LinkageMismatchError struct {
	CustomerID uint
	Provider   string
	Stored     string
	Claimed    string
}

func (e *LinkageMismatchError) Error() string {
	return fmt.Sprintf("%s: customer %d has %s id %q, request claims %q",
		ErrCustomerLinkageMismatch.Error(), e.CustomerID, e.Provider, e.Stored, e.Claimed)
}

func (e *LinkageMismatchError) Unwrap() error {
	return ErrCustomerLinkageMismatch
}
