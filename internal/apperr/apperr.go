// Package apperr defines the domain error taxonomy and the canonical JSON
// error envelope. All errors returned to clients go through this package so
// that responses stay consistent and internal details (stack traces, DB
// errors) never leak.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies the class of a domain error. Handlers map kinds to HTTP
// status codes in exactly one place (Status).
type Kind string

const (
	KindCycle          Kind = "cycle"
	KindImmutableField Kind = "immutable_field"
	KindInvalidQuery   Kind = "invalid_query"
	KindNotFound       Kind = "not_found"
	KindAuthorization  Kind = "authorization"
	KindForbidden      Kind = "forbidden"
	KindValidation     Kind = "validation"
	KindConflict       Kind = "conflict"
)

// Error is a domain error with a machine-readable kind and a human message.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string { return e.Message }

// Cycle reports a supplier assignment that would make a node its own direct
// or transitive supplier.
func Cycle(msg string) *Error { return &Error{Kind: KindCycle, Message: msg} }

// ImmutableField reports an attempt to set a protected field through the
// general update path.
func ImmutableField(field string) *Error {
	return &Error{
		Kind:    KindImmutableField,
		Message: fmt.Sprintf("field %q cannot be set through this operation", field),
		Fields:  map[string]string{field: "immutable"},
	}
}

// InvalidQuery reports an unknown filter key, unknown ordering field, or a
// malformed range.
func InvalidQuery(msg string) *Error { return &Error{Kind: KindInvalidQuery, Message: msg} }

// NotFound reports a missing node, item, or employee.
func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

// Authorization reports a caller that is not authenticated or not active.
func Authorization(msg string) *Error { return &Error{Kind: KindAuthorization, Message: msg} }

// Forbidden reports an authenticated caller whose role does not allow the
// operation.
func Forbidden(msg string) *Error { return &Error{Kind: KindForbidden, Message: msg} }

// Validation reports a structural violation in the input.
func Validation(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }

// ValidationFields reports per-field validation failures.
func ValidationFields(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: "validation failed", Fields: fields}
}

// Conflict reports an operation blocked by the current state, e.g. deleting
// a node that still supplies dependents.
func Conflict(msg string) *Error { return &Error{Kind: KindConflict, Message: msg} }

// Status maps a domain error kind to its HTTP status code. Unrecognized
// errors map to 500.
func Status(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindCycle, KindImmutableField, KindInvalidQuery:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAuthorization:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// ── JSON envelope ────────────────────────────────────────────────────────────

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields,omitempty"`
}

func New(msg string) *APIError { return &APIError{Detail: msg} }

// Envelope renders err as the response body. Non-domain errors collapse to a
// generic message so internals never reach the client.
func Envelope(err error) *APIError {
	var e *Error
	if !errors.As(err, &e) {
		return &APIError{Detail: "internal server error"}
	}
	return &APIError{Detail: e.Message, Fields: e.Fields}
}
