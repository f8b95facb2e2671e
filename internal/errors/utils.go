package errors

import (
	"errors"
)

// Wrap wraps an error with additional context, creating an *Error if the input is not already one
func Wrap(err error, errType ErrorType, code, message string) *Error {
	if err == nil {
		return nil
	}

	// Keep the inner component and context so the outer error still reports them
	var e *Error
	if errors.As(err, &e) {
		return &Error{
			Type:      errType,
			Code:      code,
			Message:   message,
			Cause:     e,
			Context:   e.Context,
			Component: e.Component,
			Path:      e.Path,
		}
	}

	return &Error{
		Type:    errType,
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// WrapConfig wraps an error as a configuration error
func WrapConfig(err error, message string) *Error {
	return Wrap(err, ErrorTypeConfig, ErrCodeConfigInvalid, message)
}

// HasErrorCode checks if any *Error in the chain carries code
func HasErrorCode(err error, code string) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}

	return false
}

// HasErrorType checks if the outermost *Error has the given type
func HasErrorType(err error, errType ErrorType) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == errType
	}

	return false
}

// IsAlreadyExists reports whether err is an AlreadyExists failure.
func IsAlreadyExists(err error) bool { return errors.Is(err, ErrAlreadyExists) }

// IsTemplateNotFound reports whether err is a TemplateNotFound failure.
func IsTemplateNotFound(err error) bool { return errors.Is(err, ErrTemplateNotFound) }

// IsSourceNotFound reports whether err is a SourceNotFound failure.
func IsSourceNotFound(err error) bool { return errors.Is(err, ErrSourceNotFound) }

// IsIOFailure reports whether err is an IoFailure.
func IsIOFailure(err error) bool { return errors.Is(err, ErrIOFailure) }

// IsInternal reports whether err is an internal failure such as cancellation.
func IsInternal(err error) bool { return HasErrorType(err, ErrorTypeInternal) }
