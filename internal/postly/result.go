package postly

import "github.com/postlyhq/postly/internal/apperr"

// ResultState discriminates a Result. Exactly one state is active at a time.
type ResultState int

const (
	StateIdle ResultState = iota
	StateLoading
	StateSuccess
	StateError
)

// Result is the uniform outcome vocabulary of engine operations: either a
// value or an *apperr.Error, never a raw error from a collaborator.
type Result[T any] struct {
	state ResultState
	value T
	err   *apperr.Error
}

func Idle[T any]() Result[T] {
	return Result[T]{state: StateIdle}
}

func Loading[T any]() Result[T] {
	return Result[T]{state: StateLoading}
}

func Ok[T any](value T) Result[T] {
	return Result[T]{state: StateSuccess, value: value}
}

func Fail[T any](err *apperr.Error) Result[T] {
	return Result[T]{state: StateError, err: err}
}

func (r Result[T]) State() ResultState { return r.state }

func (r Result[T]) IsSuccess() bool { return r.state == StateSuccess }

func (r Result[T]) IsError() bool { return r.state == StateError }

// Value returns the success value and whether the result holds one.
func (r Result[T]) Value() (T, bool) {
	return r.value, r.state == StateSuccess
}

// MustValue is for call sites that have already checked IsSuccess.
func (r Result[T]) MustValue() T {
	if r.state != StateSuccess {
		panic("postly: MustValue on non-success result")
	}
	return r.value
}

// Err returns the error when the result is in the error state, nil otherwise.
func (r Result[T]) Err() *apperr.Error {
	if r.state != StateError {
		return nil
	}
	return r.err
}
