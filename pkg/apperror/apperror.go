package apperror

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindForbidden    Kind = "forbidden"
	KindInvalidState Kind = "invalid_state"
	KindValidation   Kind = "validation"
	KindInternal     Kind = "internal"
)

// Error is a domain error with a stable machine-readable code.
type Error struct {
	Kind    Kind   `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap returns a copy of e carrying err as its cause.
func (e *Error) Wrap(err error) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: e.Message, Err: err}
}

// WithMessage returns a copy of e with a more specific message, keeping the code.
func (e *Error) WithMessage(message string) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: message, Err: e.Err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same code, so wrapped copies still compare equal to their sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// As extracts the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the kind of err, or KindInternal for errors outside the taxonomy.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindInternal
}

func NotFound(code, message string) *Error {
	return New(KindNotFound, code, message)
}

func Conflict(code, message string) *Error {
	return New(KindConflict, code, message)
}

func Forbidden(code, message string) *Error {
	return New(KindForbidden, code, message)
}

func InvalidState(code, message string) *Error {
	return New(KindInvalidState, code, message)
}

func Validation(code, message string) *Error {
	return New(KindValidation, code, message)
}
