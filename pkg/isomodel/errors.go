package isomodel

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingFile is returned when a building, defaults or weather file does not exist
	ErrMissingFile = errors.New("file not found")
	// ErrUnreadableFile is returned when a file exists but cannot be read
	ErrUnreadableFile = errors.New("file unreadable")
	// ErrMalformedFile is returned for syntax errors, missing required
	// properties and out of range values
	ErrMalformedFile = errors.New("malformed file")
	// ErrUnknownEndUse is returned for end use names or indexes outside the enumeration
	ErrUnknownEndUse = errors.New("unknown end use")
	// ErrNotLoaded is returned when converting a UserModel that has not loaded a building
	ErrNotLoaded = errors.New("user model not loaded")
)

// LoadError reports which file a load failed on
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedFile, fmt.Sprintf(format, args...))
}
