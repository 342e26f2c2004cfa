package csvio

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by path validation and dialect resolution. Callers
// match them with errors.Is / errors.As to map onto user-facing error codes.
var (
	ErrNotRegularFile       = errors.New("path is not a regular file")
	ErrUnsupportedExtension = errors.New("unsupported file extension")
)

// UnknownEncodingError reports an encoding label this package cannot decode.
type UnknownEncodingError struct {
	Name string
}

func (e *UnknownEncodingError) Error() string {
	return fmt.Sprintf("unknown encoding %q", e.Name)
}
