package apperrors

import "errors"

// Error codes shared by the weather domain and the HTTP layer.
const (
	CodeLocationNotFound   = "location_not_found"
	CodeServiceUnavailable = "service_unavailable"
	CodeTransientFailure   = "transient_failure"
	CodePermanentFailure   = "permanent_failure"
	CodeContractViolation  = "contract_violation"
	CodeInvalidInput       = "invalid_input"
)

// AppError encodes domain specific error details.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Wrap produces a new AppError instance.
func Wrap(code, message string, err error) error {
	if err == nil {
		return &AppError{Code: code, Message: message}
	}
	return &AppError{Code: code, Message: message, Err: err}
}

// IsCode helps callers differentiate failures.
func IsCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// CodeOf returns the code of the outermost AppError in the chain, or "".
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// HasCode reports whether any AppError in the chain carries code.
func HasCode(err error, code string) bool {
	for err != nil {
		var appErr *AppError
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Err
	}
	return false
}
