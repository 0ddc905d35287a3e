package services

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an error for the transport layer.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindValidation
	KindConflict
)

var (
	ErrTokenNotFound = errors.New("token not found")
	ErrTableNotFound = errors.New("table not found")
	ErrUserNotFound  = errors.New("user not found")

	ErrInvalidState     = errors.New("invalid token state transition")
	ErrTableUnavailable = errors.New("table is not available")
	ErrTableInUse       = errors.New("cannot delete occupied table")
	ErrDuplicateTable   = errors.New("table number already exists")
	ErrDuplicateToken   = errors.New("token number already exists")
	ErrDuplicateUser    = errors.New("email already registered")

	ErrLockNotAcquired = errors.New("queue lock not acquired")
)

// ValidationError lists every field problem found in one input.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "; ")
}

func (e *ValidationError) add(format string, args ...interface{}) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

func (e *ValidationError) orNil() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}

// NewValidationError builds a ValidationError with a single problem.
func NewValidationError(format string, args ...interface{}) error {
	v := &ValidationError{}
	v.add(format, args...)
	return v
}

// KindOf maps err onto a Kind.
func KindOf(err error) Kind {
	var v *ValidationError
	switch {
	case err == nil:
		return KindInternal
	case errors.As(err, &v):
		return KindValidation
	case errors.Is(err, ErrTokenNotFound), errors.Is(err, ErrTableNotFound), errors.Is(err, ErrUserNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidState), errors.Is(err, ErrTableUnavailable), errors.Is(err, ErrTableInUse),
		errors.Is(err, ErrDuplicateTable), errors.Is(err, ErrDuplicateToken), errors.Is(err, ErrDuplicateUser):
		return KindConflict
	}
	return KindInternal
}
