package endpoint

import (
	"errors"
	"fmt"
	"net/http"
)

// UserError is a business-rule or configuration failure. At save time it
// blocks persistence; at request time the dispatcher logs the cause and
// surfaces a generic bad request to the HTTP layer.
type UserError struct {
	Msg string
}

func (e *UserError) Error() string { return e.Msg }

// ValidationError is a constraint violation raised by snippet logic.
// It is translated exactly like UserError.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// HTTPError carries a protocol-level status to the HTTP layer.
type HTTPError struct {
	Status int
	Msg    string
}

func (e *HTTPError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return http.StatusText(e.Status)
}

func NewUserError(format string, args ...any) *UserError {
	return &UserError{Msg: fmt.Sprintf(format, args...)}
}

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func ErrNotFound() *HTTPError            { return &HTTPError{Status: http.StatusNotFound} }
func ErrBadRequest() *HTTPError          { return &HTTPError{Status: http.StatusBadRequest} }
func ErrUnauthorized() *HTTPError        { return &HTTPError{Status: http.StatusUnauthorized} }
func ErrMethodNotAllowed() *HTTPError    { return &HTTPError{Status: http.StatusMethodNotAllowed} }
func ErrUnsupportedMediaType() *HTTPError {
	return &HTTPError{Status: http.StatusUnsupportedMediaType}
}

// IsBadRequest reports whether err is one of the recognized business-rule
// failures that the dispatcher masks as a generic 400. The evaluator may
// wrap script errors, so unwrapping matters here.
func IsBadRequest(err error) bool {
	var ue *UserError
	var ve *ValidationError
	return errors.As(err, &ue) || errors.As(err, &ve)
}
