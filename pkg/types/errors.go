// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

// Error kinds. Every per-item failure wraps exactly one of these so callers
// can classify it with errors.Is.
var (
	// ErrService marks a failed or unusable call to the extraction service.
	ErrService = errors.New("extraction service error")

	// ErrParse marks markup that could not be parsed into a record.
	ErrParse = errors.New("markup parse error")

	// ErrNetwork marks a failed document download.
	ErrNetwork = errors.New("download error")

	// ErrInvalidInput marks a URL or file name that does not have the
	// expected shape.
	ErrInvalidInput = errors.New("invalid input")
)

// Failure records one item (URL or document) that contributed nothing to a
// batch result, together with the reason.
type Failure struct {
	// Item identifies the failed input: a URL for downloads, a file name
	// for extraction.
	Item string `json:"item" yaml:"item"`

	// Err is the wrapped error. Its kind is one of the Err* sentinels.
	Err error `json:"-" yaml:"-"`
}

// Error implements error.
func (f Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Item, f.Err)
}

// Unwrap exposes the underlying error to errors.Is and errors.As.
func (f Failure) Unwrap() error {
	return f.Err
}

// Kind returns a short label for the failure's error kind, used in logs and
// metric labels.
func (f Failure) Kind() string {
	return ErrorKind(f.Err)
}

// ErrorKind returns "service", "parse", "network", "invalid_input", or
// "unknown" for err.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrService):
		return "service"
	case errors.Is(err, ErrParse):
		return "parse"
	case errors.Is(err, ErrNetwork):
		return "network"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	default:
		return "unknown"
	}
}
