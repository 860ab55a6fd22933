package errors

import (
	stderrors "errors"
	"fmt"
)

type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Code extracts the domain error code, or empty string for non-domain errors.
func Code(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// Domain error codes
const (
	ErrCodeInvalidTransition        = "INVALID_TRANSITION"
	ErrCodeDuplicateClaim           = "DUPLICATE_CLAIM"
	ErrCodeDonationNotClaimable     = "DONATION_NOT_CLAIMABLE"
	ErrCodeDonationAlreadyFulfilled = "DONATION_ALREADY_FULFILLED"
	ErrCodeNotFound                 = "NOT_FOUND"
	ErrCodeUnauthorized             = "UNAUTHORIZED"
	ErrCodeAlreadyCompleted         = "ALREADY_COMPLETED"
	ErrCodeValidationFailed         = "VALIDATION_FAILED"
	ErrCodeInternalError            = "INTERNAL_ERROR"
)
