package loader

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("dataset not found")
	ErrParse    = errors.New("invalid dataset JSON")
)

// NotFoundError means nothing exists at the dataset location.
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("dataset not found at %s", e.Path)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// ParseError means the dataset exists but could not be decoded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid JSON in %s: %v", e.Path, e.Err)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
