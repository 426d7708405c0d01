// Package errs holds the error types shared by the connection layer and the
// hour-tracking manager.
package errs

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound marks a legitimate absence of data, as opposed to a failure.
var ErrNotFound = errors.New("not found")

// Kind classifies a failed statement.
type Kind int

const (
	KindOther Kind = iota
	KindSyntax
	KindConstraint
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindSyntax:
		return "syntax"
	case KindConstraint:
		return "constraint"
	case KindTimeout:
		return "timeout"
	default:
		return "other"
	}
}

// ConnectionError is returned when a connection cannot be acquired.
type ConnectionError struct {
	Driver string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect %s: %v", e.Driver, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// QueryError is returned when a statement fails to execute.
type QueryError struct {
	Query string
	Kind  Kind
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed (%s): %v", e.Kind, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// Timeout reports whether the statement hit its deadline.
func (e *QueryError) Timeout() bool { return e.Kind == KindTimeout }

// Retryable reports whether running the statement again may succeed.
// Only timeouts qualify; the manager itself never retries.
func (e *QueryError) Retryable() bool { return e.Timeout() }

// NewQueryError classifies err and wraps it together with the statement.
// A nil err yields nil.
func NewQueryError(query string, err error) error {
	if err == nil {
		return nil
	}
	var qe *QueryError
	if errors.As(err, &qe) {
		return err
	}
	return &QueryError{Query: query, Kind: Classify(err), Err: err}
}

// IsNotFound reports whether err marks an absence.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsTimeout reports whether err is a statement timeout.
func IsTimeout(err error) bool {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Timeout()
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// IsConstraint reports whether err is a constraint violation.
func IsConstraint(err error) bool {
	var qe *QueryError
	return errors.As(err, &qe) && qe.Kind == KindConstraint
}

// IsConnection reports whether err came from acquiring a connection.
func IsConnection(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}
