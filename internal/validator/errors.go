package validator

import (
	"errors"
	"fmt"
)

var (
	ErrSizeExceeded    = errors.New("file exceeds maximum size")
	ErrUnsupportedType = errors.New("file type not allowed")
	ErrSuspiciousFile  = errors.New("suspicious file name")
)

// FileError names the file that failed validation.
type FileError struct {
	Name string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}
