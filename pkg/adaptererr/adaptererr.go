// Package adaptererr defines the error taxonomy returned by the streaming
// adapter core. Every error the core raises is an *AdapterError carrying a
// Kind and a human-readable structural path, following the same
// struct+constructor+predicate shape the rest of this codebase uses for its
// error types.
package adaptererr

import (
	"errors"
	"fmt"
)

// Kind classifies the failure.
type Kind string

const (
	// BadInput indicates a malformed request to the adapter facade itself
	// (e.g. a reserved option key, a missing model).
	BadInput Kind = "bad_input"

	// BadToolSpec indicates a tool specification failed validation or
	// conversion (duplicate name, invalid parameter schema).
	BadToolSpec Kind = "bad_tool_spec"

	// BadChunk indicates a provider stream chunk could not be normalized
	// (unrecognized shape, invalid usage totals).
	BadChunk Kind = "bad_chunk"

	// BadToolCall indicates a tool-call argument fragment failed to
	// reassemble into valid JSON, or failed tool-call validation.
	BadToolCall Kind = "bad_tool_call"

	// Transport indicates the underlying provider connection failed.
	Transport Kind = "transport"
)

// AdapterError is the single error type the adapter core returns.
type AdapterError struct {
	Kind    Kind
	Path    string // structural path, e.g. "tools[1].parameters.properties.city"
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *AdapterError) Error() string {
	if e.Path != "" {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %s (%s): %v", e.Kind, e.Message, e.Path, e.Cause)
		}
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Path)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *AdapterError) Unwrap() error {
	return e.Cause
}

// Is reports whether err is an *AdapterError of the given Kind.
func Is(err error, kind Kind) bool {
	var ae *AdapterError
	if !errors.As(err, &ae) {
		return false
	}
	return ae.Kind == kind
}

func newErr(kind Kind, path, message string, cause error) *AdapterError {
	return &AdapterError{Kind: kind, Path: path, Message: message, Cause: cause}
}

// NewBadInput builds a BadInput error.
func NewBadInput(path, message string, cause error) *AdapterError {
	return newErr(BadInput, path, message, cause)
}

// NewBadToolSpec builds a BadToolSpec error.
func NewBadToolSpec(path, message string, cause error) *AdapterError {
	return newErr(BadToolSpec, path, message, cause)
}

// NewBadChunk builds a BadChunk error.
func NewBadChunk(path, message string, cause error) *AdapterError {
	return newErr(BadChunk, path, message, cause)
}

// NewBadToolCall builds a BadToolCall error.
func NewBadToolCall(path, message string, cause error) *AdapterError {
	return newErr(BadToolCall, path, message, cause)
}

// NewTransport builds a Transport error.
func NewTransport(message string, cause error) *AdapterError {
	return newErr(Transport, "", message, cause)
}
