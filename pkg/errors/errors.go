// Package errors provides custom error types for the contactbridge system.
// These errors enable programmatic error checking and carry enough context
// to distinguish run-aborting failures (configuration, lock acquisition)
// from per-row failures that a sync run records and moves past.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the contactbridge system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidConfig indicates that the sync configuration is invalid
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrLockTimeout indicates the shared sync lock was not acquired in time
	ErrLockTimeout = errors.New("lock timeout")

	// ErrLockNotHeld indicates a release of a lock that was never acquired
	ErrLockNotHeld = errors.New("lock not held")

	// ErrStaleToken indicates a directory write failed its concurrency check
	ErrStaleToken = errors.New("stale concurrency token")

	// ErrRowMalformed indicates a buffer row payload could not be decoded
	ErrRowMalformed = errors.New("malformed buffer row")
)

// ConfigError represents a configuration error. It is fatal: a run aborts
// before any buffer access when the configuration does not validate.
type ConfigError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// NewConfigError creates a new ConfigError
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// LockError represents a failure to acquire the shared sync lock within the
// configured timeout. Recoverable: the caller relies on the next schedule tick.
type LockError struct {
	Name    string
	Timeout string
	Err     error
}

// Error implements the error interface
func (e *LockError) Error() string {
	if e.Timeout != "" {
		return fmt.Sprintf("could not acquire lock %s within %s", e.Name, e.Timeout)
	}
	return fmt.Sprintf("could not acquire lock %s", e.Name)
}

// Unwrap implements errors.Unwrap
func (e *LockError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *LockError) Is(target error) bool {
	return target == ErrLockTimeout
}

// NewLockError creates a new LockError
func NewLockError(name, timeout string, err error) *LockError {
	return &LockError{Name: name, Timeout: timeout, Err: err}
}

// RowError represents a failure local to one buffer row. The run records it
// and continues with the next row.
type RowError struct {
	Fingerprint string
	Message     string
	Err         error
}

// Error implements the error interface
func (e *RowError) Error() string {
	return fmt.Sprintf("buffer row %s: %s", e.Fingerprint, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *RowError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *RowError) Is(target error) bool {
	return target == ErrRowMalformed
}

// NewRowError creates a new RowError
func NewRowError(fingerprint, message string, err error) *RowError {
	return &RowError{Fingerprint: fingerprint, Message: message, Err: err}
}

// DirectoryError represents a failed directory operation (create, update,
// label, token refresh). Local to one record; the run records it and moves on.
type DirectoryError struct {
	Operation string // "create", "update", "label", "token", "list"
	ID        string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *DirectoryError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("directory %s failed for %s: %s", e.Operation, e.ID, e.Message)
	}
	return fmt.Sprintf("directory %s failed: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DirectoryError) Unwrap() error {
	return e.Err
}

// NewDirectoryError creates a new DirectoryError
func NewDirectoryError(operation, id string, err error) *DirectoryError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &DirectoryError{
		Operation: operation,
		ID:        id,
		Message:   message,
		Err:       err,
	}
}

// StoreError represents a failed buffer store, run-log, or lock backend
// operation.
type StoreError struct {
	Operation string
	Err       error
}

// Error implements the error interface
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("store error %s: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("store error %s", e.Operation)
}

// Unwrap implements errors.Unwrap
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError
func NewStoreError(operation string, err error) *StoreError {
	return &StoreError{Operation: operation, Err: err}
}

// APIError represents an error from the upstream directory's network API.
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error (status %d) at %s: %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("API error at %s: %s", e.Endpoint, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *APIError) Is(target error) bool {
	if e.StatusCode == 404 {
		return target == ErrNotFound
	}
	if e.StatusCode == 409 || e.StatusCode == 412 {
		return target == ErrStaleToken
	}
	return false
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, endpoint, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
	}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "yaml"
	Subject string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("parse error in %s %s: %s", e.Format, e.Subject, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, subject, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		Subject: subject,
		Message: message,
		Err:     err,
	}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsLockTimeout checks if an error is a lock acquisition timeout
func IsLockTimeout(err error) bool {
	return errors.Is(err, ErrLockTimeout)
}

// IsInvalidConfig checks if an error is a configuration error
func IsInvalidConfig(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}

// IsStaleToken checks if an error is a concurrency token conflict
func IsStaleToken(err error) bool {
	return errors.Is(err, ErrStaleToken)
}

// IsRowMalformed checks if an error is a row deserialization failure
func IsRowMalformed(err error) bool {
	return errors.Is(err, ErrRowMalformed)
}

// Helper wrapping functions for common patterns

// WrapParse wraps an error as a ParseError
func WrapParse(format, subject string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, subject, err.Error(), err)
}

// WrapDirectory wraps an error as a DirectoryError
func WrapDirectory(operation, id string, err error) error {
	if err == nil {
		return nil
	}
	return NewDirectoryError(operation, id, err)
}

// WrapStore wraps an error as a StoreError
func WrapStore(operation string, err error) error {
	if err == nil {
		return nil
	}
	return NewStoreError(operation, err)
}
