// Package validate guards the numeric arguments of srcset generation.
// Every check fails loudly; nothing is clamped.
package validate

import (
	"errors"
	"fmt"
)

// MinTolerance is the smallest accepted width tolerance (one percent).
const MinTolerance = 0.01

// ErrInvalid is matched by every *Error through errors.Is.
var ErrInvalid = errors.New("invalid srcset argument")

// Error describes a rejected argument.
type Error struct {
	Field  string
	Value  any
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid %s (%v): %s", e.Field, e.Value, e.Reason)
}

func (e *Error) Is(target error) bool {
	return target == ErrInvalid
}

// MinWidth rejects a negative beginning width.
func MinWidth(begin int) error {
	if begin < 0 {
		return &Error{Field: "begin", Value: begin, Reason: "width must not be negative"}
	}
	return nil
}

// MaxWidth rejects a negative ending width.
func MaxWidth(end int) error {
	if end < 0 {
		return &Error{Field: "end", Value: end, Reason: "width must not be negative"}
	}
	return nil
}

// Range checks both ends and requires begin <= end.
func Range(begin, end int) error {
	if err := MinWidth(begin); err != nil {
		return err
	}
	if err := MaxWidth(end); err != nil {
		return err
	}
	if end < begin {
		return &Error{
			Field:  "end",
			Value:  end,
			Reason: fmt.Sprintf("must not be less than begin (%d)", begin),
		}
	}
	return nil
}

// Tolerance requires tol >= MinTolerance.
func Tolerance(tol float64) error {
	if tol < MinTolerance {
		return &Error{Field: "tolerance", Value: tol, Reason: "must be at least 0.01"}
	}
	return nil
}

// Widths requires a non-empty list without negative values.
func Widths(widths []int) error {
	if widths == nil {
		return &Error{Field: "widths", Value: "nil", Reason: "list is required"}
	}
	if len(widths) == 0 {
		return &Error{Field: "widths", Value: "[]", Reason: "list must not be empty"}
	}
	for i, w := range widths {
		if w < 0 {
			return &Error{
				Field:  fmt.Sprintf("widths[%d]", i),
				Value:  w,
				Reason: "width must not be negative",
			}
		}
	}
	return nil
}
