package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/limaJavier/coursetimetable/internal/dataset"
	"github.com/limaJavier/coursetimetable/internal/scheduler"
	"github.com/limaJavier/coursetimetable/pkg/model"
	"github.com/limaJavier/coursetimetable/pkg/sat"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

var (
	ErrDatasetMissing      = New("DATASET_MISSING", http.StatusNotFound, "dataset is missing")
	ErrModelBuildFailure   = New("MODEL_BUILD_FAILURE", http.StatusUnprocessableEntity, "cannot build model")
	ErrInfeasible          = New("INFEASIBLE", http.StatusUnprocessableEntity, "no feasible timetable exists")
	ErrTimeout             = New("TIMEOUT", http.StatusRequestTimeout, "time limit reached before a verdict")
	ErrConflict            = New("CONFLICT", http.StatusConflict, "a timetable is already being generated")
	ErrValidation          = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternalConsistency = New("INTERNAL_CONSISTENCY", http.StatusInternalServerError, "solution violates the model")
	ErrInternal            = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
)

// FromError normalises any error into an *Error, recognising the domain errors.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	var buildErr *model.ModelBuildError
	var consistencyErr *model.InternalConsistencyError
	switch {
	case errors.As(err, &e):
		return e
	case errors.Is(err, model.ErrDatasetMissing):
		return Wrap(err, ErrDatasetMissing.Code, ErrDatasetMissing.Status, ErrDatasetMissing.Message)
	case errors.As(err, &buildErr):
		return Wrap(err, ErrModelBuildFailure.Code, ErrModelBuildFailure.Status, buildErr.Error())
	case errors.Is(err, sat.ErrTimeout):
		return Wrap(err, ErrTimeout.Code, ErrTimeout.Status, ErrTimeout.Message)
	case errors.Is(err, scheduler.ErrSolveInProgress):
		return Wrap(err, ErrConflict.Code, ErrConflict.Status, ErrConflict.Message)
	case errors.Is(err, scheduler.ErrInvalidTimeLimit), errors.Is(err, dataset.ErrInvalidDataset):
		return Wrap(err, ErrValidation.Code, ErrValidation.Status, err.Error())
	case errors.As(err, &consistencyErr):
		return Wrap(err, ErrInternalConsistency.Code, ErrInternalConsistency.Status, ErrInternalConsistency.Message)
	default:
		return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
	}
}

// FromStatus maps an unsuccessful solve outcome to its error.
func FromStatus(result scheduler.Result) *Error {
	switch result.Status {
	case scheduler.StatusInfeasible:
		return ErrInfeasible
	case scheduler.StatusTimeout:
		return ErrTimeout
	case scheduler.StatusModelBuildFailure:
		return Clone(ErrModelBuildFailure, result.Reason)
	default:
		return nil
	}
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
