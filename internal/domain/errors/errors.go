package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Faitltd/FAIT-sub005/internal/domain/entities"
)

// Domain errors
var (
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidState      = errors.New("transition not allowed from current status")
	ErrMissingDocuments  = errors.New("required documents missing")
	ErrMissingReason     = errors.New("rejection reason is required")
	ErrValidation        = errors.New("validation failed")
	ErrStorageFailure    = errors.New("document storage failed")
	ErrNotEligible       = errors.New("not eligible for renewal")
	ErrConflict          = errors.New("concurrent modification")
	ErrStepNotReachable  = errors.New("onboarding step not reachable")
	ErrInvalidType       = fmt.Errorf("%w: unsupported content type", ErrValidation)
	ErrTooLarge          = fmt.Errorf("%w: file too large", ErrValidation)
	ErrContentMismatch   = fmt.Errorf("%w: content does not match declared type", ErrValidation)
	ErrUnknownDocType    = fmt.Errorf("%w: unknown document type", ErrValidation)
	ErrUnknownLevel      = fmt.Errorf("%w: unknown verification level", ErrValidation)
	ErrInAppRecordFailed = errors.New("in-app notification record failed")
	ErrDeliveryFailed    = errors.New("notification delivery failed")
)

// Error codes returned to API clients
const (
	CodeNotFound         = "ERR_NOT_FOUND"
	CodeBadRequest       = "ERR_BAD_REQUEST"
	CodeUnauthorized     = "ERR_UNAUTHORIZED"
	CodeForbidden        = "ERR_FORBIDDEN"
	CodeInvalidState     = "ERR_INVALID_STATE"
	CodeMissingDocuments = "ERR_MISSING_DOCUMENTS"
	CodeMissingReason    = "ERR_MISSING_REASON"
	CodeValidation       = "ERR_VALIDATION"
	CodeStorageFailure   = "ERR_STORAGE_FAILURE"
	CodeNotEligible      = "ERR_NOT_ELIGIBLE"
	CodeConflict         = "ERR_CONFLICT"
	CodeStepNotReachable = "ERR_STEP_NOT_REACHABLE"
	CodeInternalError    = "ERR_INTERNAL"
)

// MissingDocumentsError lists the document types a submission lacks
type MissingDocumentsError struct {
	Types []entities.DocumentType
}

func (e *MissingDocumentsError) Error() string {
	names := make([]string, len(e.Types))
	for i, t := range e.Types {
		names[i] = string(t)
	}
	return fmt.Sprintf("%s: %s", ErrMissingDocuments.Error(), strings.Join(names, ", "))
}

// Is matches ErrMissingDocuments
func (e *MissingDocumentsError) Is(target error) bool {
	return target == ErrMissingDocuments
}

// NewMissingDocuments builds a MissingDocumentsError
func NewMissingDocuments(types []entities.DocumentType) error {
	return &MissingDocumentsError{Types: append([]entities.DocumentType(nil), types...)}
}

// MissingTypes extracts the missing list from err, if any.
func MissingTypes(err error) ([]entities.DocumentType, bool) {
	var mde *MissingDocumentsError
	if errors.As(err, &mde) {
		return mde.Types, true
	}
	return nil, false
}

// AppError represents application error with HTTP status
type AppError struct {
	Status  int                     `json:"-"`
	Code    string                  `json:"code"`
	Message string                  `json:"message"`
	Missing []entities.DocumentType `json:"missingDocuments,omitempty"`
	Err     error                   `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeBadRequest, message, ErrInvalidInput)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeForbidden, message, ErrForbidden)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, "internal server error", err)
}

// FromError maps a domain error onto an AppError. Unknown errors become 500s.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return NewAppError(http.StatusNotFound, CodeNotFound, err.Error(), err)
	case errors.Is(err, ErrMissingDocuments):
		e := NewAppError(http.StatusUnprocessableEntity, CodeMissingDocuments, err.Error(), err)
		e.Missing, _ = MissingTypes(err)
		return e
	case errors.Is(err, ErrInvalidState):
		return NewAppError(http.StatusConflict, CodeInvalidState, err.Error(), err)
	case errors.Is(err, ErrConflict):
		return NewAppError(http.StatusConflict, CodeConflict, err.Error(), err)
	case errors.Is(err, ErrNotEligible):
		return NewAppError(http.StatusUnprocessableEntity, CodeNotEligible, err.Error(), err)
	case errors.Is(err, ErrStepNotReachable):
		return NewAppError(http.StatusUnprocessableEntity, CodeStepNotReachable, err.Error(), err)
	case errors.Is(err, ErrMissingReason):
		return NewAppError(http.StatusBadRequest, CodeMissingReason, err.Error(), err)
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidInput):
		return NewAppError(http.StatusBadRequest, CodeValidation, err.Error(), err)
	case errors.Is(err, ErrStorageFailure):
		return NewAppError(http.StatusBadGateway, CodeStorageFailure, "document storage unavailable", err)
	case errors.Is(err, ErrUnauthorized):
		return NewAppError(http.StatusUnauthorized, CodeUnauthorized, err.Error(), err)
	case errors.Is(err, ErrForbidden):
		return NewAppError(http.StatusForbidden, CodeForbidden, err.Error(), err)
	}
	return InternalError(err)
}
