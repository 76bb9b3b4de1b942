package model

import (
	"errors"
	"fmt"
)

// ErrDatasetMissing is returned when there is no dataset to load
var ErrDatasetMissing = errors.New("dataset is missing")

// ModelBuildError reports input that cannot be turned into a model: an unresolvable reference,
// an uncoverable course or insufficient data
type ModelBuildError struct {
	Entity string
	Reason string
}

func (err *ModelBuildError) Error() string {
	if err.Entity == "" {
		return fmt.Sprintf("cannot build model: %v", err.Reason)
	}
	return fmt.Sprintf("cannot build model: %v: %v", err.Entity, err.Reason)
}

func newModelBuildError(entity, format string, args ...any) *ModelBuildError {
	return &ModelBuildError{
		Entity: entity,
		Reason: fmt.Sprintf(format, args...),
	}
}

// InternalConsistencyError reports a solution that violates a model invariant.
// It indicates a bug in the solver or the encoding and must never be swallowed
type InternalConsistencyError struct {
	Violation string
}

func (err *InternalConsistencyError) Error() string {
	return fmt.Sprintf("internal consistency violation: %v", err.Violation)
}

func newInternalConsistencyError(format string, args ...any) *InternalConsistencyError {
	return &InternalConsistencyError{Violation: fmt.Sprintf(format, args...)}
}
