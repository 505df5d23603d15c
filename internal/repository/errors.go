package repository

import (
	"errors"
	"fmt"
)

// ErrStaleStatus is returned when a conditional status update matched no row
// because the report changed since it was read.
var ErrStaleStatus = errors.New("report status changed concurrently")

type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

type InsertError struct {
	Err error
}

func (e *InsertError) Error() string {
	return fmt.Sprintf("insert report: %v", e.Err)
}

func (e *InsertError) Unwrap() error { return e.Err }

type UpdateError struct {
	Op  string
	Err error
}

func (e *UpdateError) Error() string {
	return fmt.Sprintf("update %s: %v", e.Op, e.Err)
}

func (e *UpdateError) Unwrap() error { return e.Err }
