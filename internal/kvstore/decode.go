package kvstore

import (
	"encoding/json"
	"fmt"
)

type Status int

const (
	Absent Status = iota
	Invalid
	Ok
)

func (s Status) String() string {
	switch s {
	case Absent:
		return "absent"
	case Invalid:
		return "invalid"
	case Ok:
		return "ok"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result is the outcome of decoding a persisted record: Ok carries a value, Invalid
// carries the reason the record was rejected, Absent carries nothing.
type Result[T any] struct {
	value  T
	status Status
	err    error
}

func (r Result[T]) Status() Status { return r.status }

// Err is the decode or validation failure of an Invalid result, nil otherwise.
func (r Result[T]) Err() error { return r.err }

// Get returns the value and true only for Ok results.
func (r Result[T]) Get() (T, bool) {
	if r.status != Ok {
		var zero T
		return zero, false
	}
	return r.value, true
}

// OrElse returns the decoded value, or fallback for Absent and Invalid results.
func (r Result[T]) OrElse(fallback T) T {
	if v, ok := r.Get(); ok {
		return v
	}
	return fallback
}

// Decode parses raw as JSON into T and runs validate on the result. validate may be
// nil. Anything that fails to parse or validate becomes Invalid.
func Decode[T any](raw string, found bool, validate func(T) error) Result[T] {
	if !found {
		return Result[T]{status: Absent}
	}
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return Result[T]{status: Invalid, err: fmt.Errorf("malformed json: %w", err)}
	}
	if validate != nil {
		if err := validate(v); err != nil {
			return Result[T]{status: Invalid, err: err}
		}
	}
	return Result[T]{value: v, status: Ok}
}
