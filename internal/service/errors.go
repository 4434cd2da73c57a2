package service

import "fmt"

// ValidationError reports input rejected before any side effect
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// PersistenceError reports a failed store write. The store message is kept verbatim.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// AuthenticationError reports a missing session where one was required
type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string {
	return e.Reason
}

// DataFetchError reports a failed read that aborted an aggregation
type DataFetchError struct {
	View string
	Err  error
}

func (e *DataFetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.View, e.Err)
}

func (e *DataFetchError) Unwrap() error { return e.Err }
