package model

import (
	"github.com/m-mizutani/goerr/v2"
)

// Failure classes surfaced to callers of the planning core. Use errors.Is to
// tell them apart.
var (
	ErrStorageFailure   = goerr.New("storage failure")
	ErrKeyNotFound      = goerr.New("key not found")
	ErrInvalidPattern   = goerr.New("invalid pattern")
	ErrSynthesisFailure = goerr.New("synthesis failure")

	ErrInvalidCode  = goerr.New("invalid code")
	ErrBlobNotFound = goerr.New("blob not found")
)

// Keys for goerr values
const (
	KeyKey      = "key"
	RecordIDKey = "record_id"
	RuleIDKey   = "rule_id"
	TaskKey     = "task"
	ReasonKey   = "reason"
)

// Classify wraps cause with msg and marks the result as belonging to class.
// Both class and cause stay reachable through errors.Is. errors.As on
// *goerr.Error finds the wrapped cause, not the class sentinel.
func Classify(class, cause error, msg string, opts ...goerr.Option) error {
	return &classifiedError{class: class, err: goerr.Wrap(cause, msg, opts...)}
}

type classifiedError struct {
	class error
	err   error
}

func (e *classifiedError) Error() string {
	return e.class.Error() + ": " + e.err.Error()
}

func (e *classifiedError) Unwrap() []error {
	return []error{e.err, e.class}
}
