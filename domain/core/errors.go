package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error taxonomy
var (
	// ErrData marks a malformed or unusable table or column.
	ErrData = errors.New("data error")
	// ErrConfiguration marks an invalid model_type/algorithm/chart_kind combination.
	ErrConfiguration = errors.New("configuration error")
	// ErrState marks an operation invoked outside its lifecycle state.
	ErrState = errors.New("state error")
	// ErrFormat marks a persisted artifact that does not match the expected shape.
	ErrFormat = errors.New("format error")
	// ErrExternalService marks a document store or ingestion collaborator failure.
	ErrExternalService = errors.New("external service error")

	ErrColumnNotFound   = fmt.Errorf("%w: column not found", ErrData)
	ErrEmptyTable       = fmt.Errorf("%w: table is empty", ErrData)
	ErrInsufficientRows = fmt.Errorf("%w: insufficient rows", ErrData)
	ErrNotTrained       = fmt.Errorf("%w: model must be trained before use", ErrState)
)

// NewDataError wraps a transform or model failure with the operation and stage that raised it.
func NewDataError(op, stage string, err error) error {
	if stage == "" {
		return fmt.Errorf("%w: %s failed: %v", ErrData, op, err)
	}
	return fmt.Errorf("%w: %s failed at %s: %v", ErrData, op, stage, err)
}

// NewConfigurationError reports an invalid setting.
func NewConfigurationError(field, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrConfiguration, field, reason)
}

// NewStateError reports an operation invoked in the wrong lifecycle state.
func NewStateError(op, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrState, op, reason)
}

// NewFormatError reports a persisted artifact that could not be decoded.
func NewFormatError(artifact string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrFormat, artifact, err)
}

// NewExternalServiceError wraps a collaborator failure.
func NewExternalServiceError(service string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrExternalService, service, err)
}

// NewColumnNotFoundError names the missing column.
func NewColumnNotFoundError(column string) error {
	return fmt.Errorf("%w: %s", ErrColumnNotFound, column)
}

// Error checking helpers
func IsDataError(err error) bool {
	return errors.Is(err, ErrData)
}

func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

func IsStateError(err error) bool {
	return errors.Is(err, ErrState)
}

func IsFormatError(err error) bool {
	return errors.Is(err, ErrFormat)
}

func IsExternalServiceError(err error) bool {
	return errors.Is(err, ErrExternalService)
}

// IsClientFault reports whether the error stems from caller input rather than the server.
func IsClientFault(err error) bool {
	return IsDataError(err) || IsConfigurationError(err)
}
