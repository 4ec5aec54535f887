package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// Kind classifies an error for transport mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthorized
	KindForbidden
	KindValidation
	KindNotFound
	KindConflict
	KindExternalService
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindExternalService:
		return "external_service"
	default:
		return "internal"
	}
}

// HTTPStatus returns the status code used when an error of this kind reaches a handler.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindExternalService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is the tagged error carried across service boundaries.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details map[string]interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error with the same kind and code, which lets package-level
// sentinels work with errors.Is even after WithDetails copies.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code != "" && e.Code == t.Code
}

// WithDetails returns a copy of e carrying the supplied details.
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	clone := *e
	clone.Details = details
	return &clone
}

// New constructs an error of the given kind.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap attaches a cause to a new error of the given kind.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Unauthorized(message string) *Error {
	return New(KindUnauthorized, "unauthorized", message)
}

func Forbidden(message string) *Error {
	return New(KindForbidden, "forbidden", message)
}

func Validation(message string, details map[string]interface{}) *Error {
	return &Error{Kind: KindValidation, Code: "validation", Message: message, Details: details}
}

func NotFound(message string) *Error {
	return New(KindNotFound, "not_found", message)
}

func Conflict(message string) *Error {
	return New(KindConflict, "conflict", message)
}

func External(message string, err error) *Error {
	return Wrap(KindExternalService, message, err)
}

func Internal(message string, err error) *Error {
	return Wrap(KindInternal, message, err)
}

// KindOf classifies any error. Validator errors count as validation failures;
// unknown errors are internal.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return KindValidation
	}
	return KindInternal
}

// From normalises err into an *Error.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return FromValidation(validationErrors)
	}
	return Internal("internal error", err)
}

// FromValidation converts validator output into field-level details.
func FromValidation(errs validator.ValidationErrors) *Error {
	details := make(map[string]interface{}, len(errs))
	for _, fieldErr := range errs {
		details[fieldErr.Field()] = fieldErr.Tag()
	}
	return &Error{Kind: KindValidation, Code: "validation", Message: "invalid payload", Details: details, Err: errs}
}
