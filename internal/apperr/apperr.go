// Package apperr defines the error kinds surfaced by request handling and
// their mapping to HTTP status codes.
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrInvalidInput               = errors.New("invalid input")
	ErrInvalidRepositoryReference = errors.New("invalid repository reference")
	ErrUpstreamFetchFailed        = errors.New("upstream fetch failed")
	ErrGenerationFailed           = errors.New("generation failed")
	ErrPersistenceFailed          = errors.New("persistence failed")
)

var kinds = []error{
	ErrInvalidInput,
	ErrInvalidRepositoryReference,
	ErrUpstreamFetchFailed,
	ErrGenerationFailed,
	ErrPersistenceFailed,
}

type kindError struct {
	kind  error
	cause error
}

func (e *kindError) Error() string {
	if e.cause == nil {
		return e.kind.Error()
	}
	return e.kind.Error() + ": " + e.cause.Error()
}

func (e *kindError) Is(target error) bool { return target == e.kind }

func (e *kindError) Unwrap() error { return e.cause }

// Wrap tags cause with kind. If cause already carries kind it is returned
// unchanged; a nil cause yields the bare kind.
func Wrap(kind, cause error) error {
	if cause == nil {
		return kind
	}
	if errors.Is(cause, kind) {
		return cause
	}
	return &kindError{kind: kind, cause: cause}
}

// New tags a plain message with kind.
func New(kind error, msg string) error {
	return &kindError{kind: kind, cause: errors.New(msg)}
}

// KindOf returns the outermost kind carried by err, or nil.
func KindOf(err error) error {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.kind
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// HTTPStatus maps err to the status code returned to HTTP callers.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case ErrInvalidInput, ErrInvalidRepositoryReference:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
