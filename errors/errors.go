/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrFetchFailed is returned when a source page cannot be fetched. It aborts the run.
	ErrFetchFailed = errors.New("page fetch failed")

	// ErrProvisionFailed is returned when the destination container cannot be ensured. It aborts the run.
	ErrProvisionFailed = errors.New("destination provisioning failed")

	// ErrPermanent marks a destination error that retrying cannot fix
	ErrPermanent = errors.New("permanent error")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingID is returned when a record has no usable identifier
	ErrMissingID = errors.New("record has no identifier")

	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("record not found")
)

// NotFoundError represents an error when a record is not found
type NotFoundError struct {
	Container string
	Key       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s record with key %q not found", e.Container, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// FetchError represents a failure to pull a page from the source
type FetchError struct {
	Page int
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching page %d: %v", e.Page, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Is(target error) bool {
	return target == ErrFetchFailed
}

// ProvisionError represents a failure to create or describe the destination container
type ProvisionError struct {
	Container string
	Err       error
}

func (e *ProvisionError) Error() string {
	return fmt.Sprintf("provisioning container %q: %v", e.Container, e.Err)
}

func (e *ProvisionError) Unwrap() error {
	return e.Err
}

func (e *ProvisionError) Is(target error) bool {
	return target == ErrProvisionFailed
}

// PermanentError wraps a destination error that must not be retried
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("permanent: %v", e.Err)
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

func (e *PermanentError) Is(target error) bool {
	return target == ErrPermanent
}

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Validation failures are never fixed by retrying, so they also match ErrPermanent.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput || target == ErrPermanent
}

// MissingIDError represents a record without its identifier attribute
type MissingIDError struct {
	Attribute string
}

func (e *MissingIDError) Error() string {
	return fmt.Sprintf("record has no identifier attribute %q", e.Attribute)
}

func (e *MissingIDError) Is(target error) bool {
	return target == ErrMissingID || target == ErrInvalidInput || target == ErrPermanent
}

// Helper functions for creating errors

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(container, key string) error {
	return &NotFoundError{Container: container, Key: key}
}

// NewFetchError creates a new FetchError
func NewFetchError(page int, err error) error {
	return &FetchError{Page: page, Err: err}
}

// NewProvisionError creates a new ProvisionError
func NewProvisionError(container string, err error) error {
	return &ProvisionError{Container: container, Err: err}
}

// NewPermanentError wraps err so that retry loops stop on it. A nil err stays nil.
func NewPermanentError(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewMissingIDError creates a new MissingIDError
func NewMissingIDError(attribute string) error {
	return &MissingIDError{Attribute: attribute}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsFetchFailed checks if an error is a page fetch failure
func IsFetchFailed(err error) bool {
	return errors.Is(err, ErrFetchFailed)
}

// IsProvisionFailed checks if an error is a provisioning failure
func IsProvisionFailed(err error) bool {
	return errors.Is(err, ErrProvisionFailed)
}

// IsFatal checks if an error aborts a migration run
func IsFatal(err error) bool {
	return IsFetchFailed(err) || IsProvisionFailed(err)
}

// IsPermanent checks if an error must not be retried
func IsPermanent(err error) bool {
	return errors.Is(err, ErrPermanent)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsMissingID checks if an error is a missing identifier error
func IsMissingID(err error) bool {
	return errors.Is(err, ErrMissingID)
}
