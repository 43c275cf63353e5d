// Package nldierrors defines the typed error kinds that cross component
// boundaries in the NLDI service. Domain packages raise a Kind; the HTTP
// router is the only place a Kind is translated into a status code.
package nldierrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the purposes of HTTP status mapping and
// logging. It is not a type hierarchy — just an enum carried on Error.
type Kind string

const (
	NotFound           Kind = "NotFound"
	InvalidInput        Kind = "InvalidInput"
	DatabaseUnavailable Kind = "DatabaseUnavailable"
	RemoteServiceError  Kind = "RemoteServiceError"
	RemoteTimeout       Kind = "RemoteTimeout"
	GeometryError       Kind = "GeometryError"
	ConfigurationError  Kind = "ConfigurationError"
	Internal            Kind = "Internal"
)

// Error wraps an underlying cause with a Kind and a short, wire-safe
// message. The underlying cause is never exposed on the wire; it is logged
// once at the HTTP boundary.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a Kind-carrying error with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds a Kind-carrying error around an existing cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf returns the Kind carried by err, or Internal if err does not wrap
// an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err carries the given Kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
