package domain

import (
	"errors"
	"fmt"
)

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

// InvalidSegmentError covers src/dst pairs that do not form a forward
// segment on the variant (missing stop, src order >= dst order, src == dst).
type InvalidSegmentError struct {
	Msg string
}

func (e InvalidSegmentError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "invalid source or destination order"
}

// SeatConflictError means the requested seat already carries a booking
// whose segment overlaps the requested one on the same bus and date.
type SeatConflictError struct {
	Seat int
}

func (e SeatConflictError) Error() string {
	if e.Seat > 0 {
		return fmt.Sprintf("seat %d is already booked for an overlapping segment", e.Seat)
	}
	return "seat is already booked for an overlapping segment"
}

type AlreadyProcessedError struct {
	Msg string
}

func (e AlreadyProcessedError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "already processed"
}

type ForbiddenError struct {
	Msg string
}

func (e ForbiddenError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "access denied"
}

// TimeoutError is returned when a booking or structural transaction could
// not complete within its bound; the transaction is rolled back.
type TimeoutError struct {
	Op  string
	Err error
}

func (e TimeoutError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s timed out", e.Op)
	}
	return "operation timed out"
}

func (e TimeoutError) Unwrap() error { return e.Err }

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsInvalidSegment(err error) bool {
	var target InvalidSegmentError
	return errors.As(err, &target)
}

func IsSeatConflict(err error) bool {
	var target SeatConflictError
	return errors.As(err, &target)
}

func IsAlreadyProcessed(err error) bool {
	var target AlreadyProcessedError
	return errors.As(err, &target)
}

func IsForbidden(err error) bool {
	var target ForbiddenError
	return errors.As(err, &target)
}

func IsTimeout(err error) bool {
	var target TimeoutError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}
