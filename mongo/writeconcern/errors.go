// Copyright (C) MongoDB, Inc. 2026-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package writeconcern

import (
	"errors"
	"fmt"
)

// ErrNegativeW indicates that a negative integer `w` field was specified.
var ErrNegativeW = errors.New("write concern `w` field cannot be a negative number")

// ErrWOverflow indicates that an integer `w` field does not fit in an int32.
var ErrWOverflow = errors.New("write concern `w` field overflows int32")

// ErrEmptyWMode indicates that an empty string `w` field was specified.
var ErrEmptyWMode = errors.New("write concern `w` field cannot be an empty string")

// ErrNonPositiveWTimeout indicates that a zero or negative WTimeout was specified.
var ErrNonPositiveWTimeout = errors.New("write concern `wtimeout` field must be positive")

// ValidationError is returned when a write concern or one of its fields is
// constructed from an invalid value. Err is one of the sentinel errors
// declared in this package.
type ValidationError struct {
	Field string
	Value interface{}
	Err   error
}

func newValidationError(field string, value interface{}, err error) *ValidationError {
	return &ValidationError{Field: field, Value: value, Err: err}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid write concern %s %v: %v", e.Field, e.Value, e.Err)
}

// Unwrap returns the underlying sentinel error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}
