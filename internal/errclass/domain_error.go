package errclass

import "fmt"

// DomainError is a self-describing failure: it carries a message that
// is already safe to show an end user, plus a code, the module it
// originated from, and structured detail for operators. The sanitized
// message is propagated verbatim to the user surface.
type DomainError struct {
	Message string
	Code    string
	Module  string
	Details map[string]any
	Err     error
}

func (e *DomainError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain inspection.
func (e *DomainError) Unwrap() error { return e.Err }

// NewDomainError creates a domain error with a user-facing message.
func NewDomainError(message, code, module string) *DomainError {
	return &DomainError{Message: message, Code: code, Module: module}
}

// WithDetail adds a detail field to the error context.
func (e *DomainError) WithDetail(key string, value any) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause records the original failure behind this error.
func (e *DomainError) WithCause(err error) *DomainError {
	e.Err = err
	return e
}
